package slack

import (
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// Failure records one recipient that did not get the message
type Failure struct {
	Name   string `json:"name"`
	Reason string `json:"reason"`
}

// Delivery summarises a fan-out
type Delivery struct {
	Sent   []string  `json:"sent"`
	Failed []Failure `json:"failed"`
}

// FailedNames lists the recipients that failed, in send order
func (d Delivery) FailedNames() []string {
	names := make([]string, len(d.Failed))
	for i, f := range d.Failed {
		names[i] = f.Name
	}
	return names
}

// Broadcaster sends the same text to many people one at a time. Sends are
// paced by a limiter and rate-limited sends are retried. A failed send is
// recorded and the loop moves on.
type Broadcaster struct {
	pub     Publisher
	limiter *rate.Limiter
	retry   *Retrier
	log     *zap.Logger
}

// NewBroadcaster paces sends at one per interval. A zero interval disables
// pacing.
func NewBroadcaster(pub Publisher, interval time.Duration, retry *Retrier, log *zap.Logger) *Broadcaster {
	limit := rate.Inf
	if interval > 0 {
		limit = rate.Every(interval)
	}
	return &Broadcaster{
		pub:     pub,
		limiter: rate.NewLimiter(limit, 1),
		retry:   retry,
		log:     log,
	}
}

// Wait blocks for the next send slot
func (b *Broadcaster) Wait(ctx context.Context) error {
	return b.limiter.Wait(ctx)
}

// SendOne paces and sends a single message with retries
func (b *Broadcaster) SendOne(ctx context.Context, target, text string) error {
	if err := b.limiter.Wait(ctx); err != nil {
		return err
	}
	return b.retry.Do(ctx, func() error {
		return b.pub.Send(ctx, target, text)
	})
}

// DirectMessage resolves each name against users and sends text to it.
// Only context cancellation stops the loop early.
func (b *Broadcaster) DirectMessage(ctx context.Context, names []string, users []User, text string) (Delivery, error) {
	var d Delivery
	for i, name := range names {
		log := b.log.With(zap.String("recipient", name), zap.Int("n", i+1), zap.Int("of", len(names)))

		id, ok := Resolve(name, users)
		if !ok {
			log.Warn("User not found in directory")
			d.Failed = append(d.Failed, Failure{Name: name, Reason: "user not found"})
			continue
		}

		if err := b.SendOne(ctx, id, text); err != nil {
			if ctx.Err() != nil {
				return d, ctx.Err()
			}
			log.Warn("Send failed", zap.Error(err))
			d.Failed = append(d.Failed, Failure{Name: name, Reason: err.Error()})
			continue
		}
		log.Debug("Sent")
		d.Sent = append(d.Sent, name)
	}
	return d, nil
}
