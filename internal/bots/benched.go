package bots

import (
	"context"
	"fmt"

	"github.com/pbaille/teambots/internal/config"
	"github.com/pbaille/teambots/internal/render"
)

// Benched reports who sits in the bench group, through the incoming
// webhook.
type Benched struct {
	base
	bot config.BenchedConfig
}

func NewBenched(cfg *config.Config, d Deps) (Bot, error) {
	return &Benched{base: newBase("benched", cfg, d), bot: cfg.Bots.Benched}, nil
}

func (b *Benched) Run(ctx context.Context) (*Report, error) {
	rep := b.report()
	if b.deps.Webhook == nil {
		return nil, fmt.Errorf("benched: SLACK_WEBHOOK_URL not set")
	}

	items, err := b.fetch(ctx, b.bot.Board, false)
	if err != nil {
		return nil, err
	}
	rep.Items = len(items)

	names := itemNames(items)
	rep.Matched = len(names)

	msg := render.Benched(names, b.today())
	err = b.deps.Retry.Do(ctx, func() error {
		return b.deps.Webhook.Send(ctx, "", msg)
	})
	if err != nil {
		return nil, fmt.Errorf("send webhook: %w", err)
	}
	b.log.Info("Posted bench report")
	rep.Posted = 1
	return rep, nil
}
