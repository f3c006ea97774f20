package bots

import (
	"context"

	"go.uber.org/zap"

	"github.com/pbaille/teambots/internal/config"
	"github.com/pbaille/teambots/internal/render"
)

// Coffee shuffles active staff into small groups and posts them
type Coffee struct {
	base
	bot config.CoffeeConfig
}

func NewCoffee(cfg *config.Config, d Deps) (Bot, error) {
	return &Coffee{base: newBase("coffee", cfg, d), bot: cfg.Bots.Coffee}, nil
}

func (c *Coffee) Run(ctx context.Context) (*Report, error) {
	rep := c.report()

	items, err := c.fetch(ctx, c.bot.Board, false)
	if err != nil {
		return nil, err
	}
	rep.Items = len(items)

	names := itemNames(items)
	rep.Matched = len(names)
	if len(names) < 2 {
		rep.Skipped = "not enough people for coffee groups"
		return rep, nil
	}

	c.deps.Rand.Shuffle(len(names), func(i, j int) { names[i], names[j] = names[j], names[i] })
	groups := CoffeeGroups(names)
	c.log.Info("Grouped", zap.Int("people", len(names)), zap.Int("groups", len(groups)))

	if err := c.post(ctx, c.bot.Channel, render.Coffee(groups, c.bot.Meet)); err != nil {
		return nil, err
	}
	rep.Posted = 1
	return rep, nil
}

// CoffeeGroups splits names in order into groups alternating four and
// three people. A final remainder of one or two joins the last group.
func CoffeeGroups(names []string) [][]string {
	var groups [][]string
	for i := 0; i < len(names); {
		rem := len(names) - i
		switch {
		case rem >= 4:
			size := 4
			if len(groups)%2 == 1 {
				size = 3
			}
			groups = append(groups, append([]string(nil), names[i:i+size]...))
			i += size
		case rem == 3:
			groups = append(groups, append([]string(nil), names[i:]...))
			i = len(names)
		default:
			if len(groups) == 0 {
				groups = append(groups, append([]string(nil), names[i:]...))
			} else {
				last := len(groups) - 1
				groups[last] = append(groups[last], names[i:]...)
			}
			i = len(names)
		}
	}
	return groups
}
