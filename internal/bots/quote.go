package bots

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/pbaille/teambots/internal/config"
	"github.com/pbaille/teambots/internal/render"
)

// Quote posts a generated motivational quote and remembers it so later
// runs do not repeat it.
type Quote struct {
	base
	bot config.QuoteConfig
}

func NewQuote(cfg *config.Config, d Deps) (Bot, error) {
	if d.Generator == nil {
		return nil, fmt.Errorf("quote: no text generator configured")
	}
	return &Quote{base: newBase("quote", cfg, d), bot: cfg.Bots.Quote}, nil
}

func (q *Quote) Run(ctx context.Context) (*Report, error) {
	rep := q.report()

	var recent []string
	if q.deps.History != nil {
		past, err := q.deps.History.Load(ctx)
		if err != nil {
			return nil, fmt.Errorf("load history: %w", err)
		}
		recent = tail(past, q.bot.Recent)
	}
	rep.Items = len(recent)

	prompt := render.QuotePrompt(q.bot.Audience, recent)
	quote, err := q.deps.Generator.Generate(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("generate quote: %w", err)
	}

	if q.repeats(ctx, quote, recent) {
		q.log.Info("Quote too close to a recent one, retrying", zap.String("quote", quote))
		retry, err := q.deps.Generator.Generate(ctx, prompt+"\nThe previous suggestion was too similar to an earlier quote; write something different.")
		if err != nil {
			return nil, fmt.Errorf("generate quote: %w", err)
		}
		quote = retry
	}
	if quote == "" {
		return nil, fmt.Errorf("generate quote: empty response")
	}
	rep.Matched = 1

	if err := q.post(ctx, q.bot.Channel, render.Quote(quote)); err != nil {
		return nil, err
	}
	rep.Posted = 1

	if q.deps.History != nil {
		if err := q.deps.History.Append(ctx, quote, q.cfg.History.Limit); err != nil {
			return rep, fmt.Errorf("save history: %w", err)
		}
	}
	return rep, nil
}

// repeats reports an exact (case-insensitive) repeat, or a near duplicate
// when an embedder is configured. Embedding failures are logged and treated
// as no match.
func (q *Quote) repeats(ctx context.Context, quote string, recent []string) bool {
	for _, r := range recent {
		if strings.EqualFold(strings.TrimSpace(r), strings.TrimSpace(quote)) {
			return true
		}
	}
	if q.deps.Embedder == nil || len(recent) == 0 {
		return false
	}
	sim, err := q.deps.Embedder.MaxSimilarity(ctx, quote, recent)
	if err != nil {
		q.log.Warn("Similarity check failed", zap.Error(err))
		return false
	}
	q.log.Debug("Similarity", zap.Float64("max", sim))
	return sim >= q.cfg.Embedding.MaxSimilarity
}
