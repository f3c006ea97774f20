package bots

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/pbaille/teambots/internal/config"
	"github.com/pbaille/teambots/internal/render"
	"github.com/pbaille/teambots/internal/slack"
)

// Pulse direct-messages the monthly survey to every active employee and
// sends a delivery summary to the results user.
type Pulse struct {
	base
	bot config.PulseConfig
}

func NewPulse(cfg *config.Config, d Deps) (Bot, error) {
	return &Pulse{base: newBase("pulse", cfg, d), bot: cfg.Bots.Pulse}, nil
}

func (p *Pulse) Run(ctx context.Context) (*Report, error) {
	rep := p.report()
	if p.deps.Directory == nil || p.deps.Publisher == nil {
		return nil, fmt.Errorf("pulse: needs a Slack directory and publisher")
	}

	items, err := p.fetch(ctx, p.bot.Board, false)
	if err != nil {
		return nil, err
	}
	rep.Items = len(items)

	names := itemNames(items)
	rep.Matched = len(names)
	if len(names) == 0 {
		rep.Skipped = "no active employees"
		return rep, nil
	}

	users, err := p.deps.Directory.Users(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	p.log.Info("Loaded directory", zap.Int("users", len(users)), zap.Int("recipients", len(names)))

	month := p.today().Format("January 2006")
	b := slack.NewBroadcaster(p.deps.Publisher, p.cfg.Slack.SendInterval, p.deps.Retry, p.log)

	delivery, err := b.DirectMessage(ctx, names, users, render.PulsePrompt(month, p.cfg.Org))
	rep.Posted = len(delivery.Sent)
	rep.Failed = delivery.Failed
	if err != nil {
		return rep, err
	}
	p.log.Info("Pulse sent", zap.Int("sent", len(delivery.Sent)), zap.Int("failed", len(delivery.Failed)))

	if err := p.deps.Sleep(ctx, p.bot.SummaryDelay); err != nil {
		return rep, err
	}

	id, ok := slack.Resolve(p.bot.ResultsUser, users)
	if !ok {
		p.log.Warn("Results user not found", zap.String("user", p.bot.ResultsUser))
		return rep, nil
	}
	summary := render.PulseSummary(month, len(delivery.Sent), delivery.FailedNames())
	if err := b.SendOne(ctx, id, summary); err != nil {
		return rep, fmt.Errorf("send summary: %w", err)
	}
	p.log.Info("Notified results user", zap.String("user", p.bot.ResultsUser))
	return rep, nil
}
