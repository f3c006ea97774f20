package bots

import (
	"context"
	"fmt"
	"slices"

	"go.uber.org/zap"

	"github.com/pbaille/teambots/internal/config"
	"github.com/pbaille/teambots/internal/render"
)

// Checkin posts the morning prompt: a quote or a fun fact depending on
// the weekday, avoiding recent picks.
type Checkin struct {
	base
	bot config.CheckinConfig
}

func NewCheckin(cfg *config.Config, d Deps) (Bot, error) {
	return &Checkin{base: newBase("checkin", cfg, d), bot: cfg.Bots.Checkin}, nil
}

func (c *Checkin) Run(ctx context.Context) (*Report, error) {
	rep := c.report()
	day := c.today().Weekday()
	kind := render.CheckinKindFor(day)

	var pool []string
	switch kind {
	case render.CheckinQuote:
		pool = c.bot.Quotes
	case render.CheckinFact:
		pool = c.bot.Facts
	}
	rep.Items = len(pool)

	if kind != render.CheckinWeekend && len(pool) == 0 {
		return nil, fmt.Errorf("checkin: nothing configured for %s", day)
	}

	var recent []string
	if c.deps.History != nil && kind != render.CheckinWeekend {
		past, err := c.deps.History.Load(ctx)
		if err != nil {
			return nil, fmt.Errorf("load history: %w", err)
		}
		recent = tail(past, c.bot.Avoid)
	}

	var pick string
	if kind != render.CheckinWeekend {
		pick = Pick(pool, recent, c.deps.Rand.IntN)
		rep.Matched = 1
	}
	c.log.Info("Check-in", zap.Stringer("day", day), zap.String("pick", pick))

	if err := c.post(ctx, c.bot.Channel, render.Checkin(c.bot.Team, day, pick)); err != nil {
		return nil, err
	}
	rep.Posted = 1

	if pick != "" && c.deps.History != nil {
		if err := c.deps.History.Append(ctx, pick, c.cfg.History.Limit); err != nil {
			return rep, fmt.Errorf("save history: %w", err)
		}
	}
	return rep, nil
}

// Pick chooses from pool, skipping entries in recent unless that would
// leave nothing.
func Pick(pool, recent []string, intn func(int) int) string {
	var fresh []string
	for _, p := range pool {
		if !slices.Contains(recent, p) {
			fresh = append(fresh, p)
		}
	}
	if len(fresh) == 0 {
		fresh = pool
	}
	return fresh[intn(len(fresh))]
}

func tail(s []string, n int) []string {
	if n <= 0 {
		return nil
	}
	if len(s) > n {
		return s[len(s)-n:]
	}
	return s
}
