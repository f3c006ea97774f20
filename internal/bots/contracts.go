package bots

import (
	"context"
	"math"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/pbaille/teambots/internal/classify"
	"github.com/pbaille/teambots/internal/config"
	"github.com/pbaille/teambots/internal/dates"
	"github.com/pbaille/teambots/internal/domain"
	"github.com/pbaille/teambots/internal/extract"
	"github.com/pbaille/teambots/internal/render"
)

// Contracts posts the contracts that have expired or end within the
// configured thresholds, grouped by project.
type Contracts struct {
	base
	bot config.ContractsConfig
}

func NewContracts(cfg *config.Config, d Deps) (Bot, error) {
	return &Contracts{base: newBase("contracts", cfg, d), bot: cfg.Bots.Contracts}, nil
}

func (c *Contracts) Run(ctx context.Context) (*Report, error) {
	rep := c.report()

	items, err := c.fetch(ctx, c.bot.Board, true)
	if err != nil {
		return nil, err
	}
	rep.Items = len(items)

	layouts := layoutsOr(c.bot.Layouts, dates.ContractLayouts)
	var contracts []domain.Contract
	for _, it := range items {
		name := strings.TrimSpace(it.Name)
		if name == "" {
			continue
		}
		f := extract.Extract(it.ColumnValues, c.bot.Rules)
		end, ok := ContractEnd(f, layouts)
		if !ok {
			c.log.Debug("No contract end date",
				zap.String("item", name),
				zap.String("start", f.Get(domain.AttrStartDate)),
				zap.String("duration", f.Get(domain.AttrDurationMonths)))
			continue
		}
		contracts = append(contracts, domain.Contract{
			Name:     name,
			Position: f.Get(domain.AttrPosition),
			Project:  f.Get(domain.AttrProject),
			Status:   f.Get(domain.AttrContractStatus),
			EndDate:  end,
		})
	}

	today := c.today()
	classified := classify.Apply(contracts,
		func(k domain.Contract) (time.Time, bool) { return k.EndDate, true },
		today, c.bot.Policy)
	rep.Matched = len(classified)

	c.log.Info("Classified contracts",
		zap.String("today", today.Format(dates.ISO)),
		zap.Int("with_dates", len(contracts)),
		zap.Int("alerts", len(classified)),
		zap.Any("counts", classify.Counts(classified)))

	msg := render.Contracts(classified, c.bot.Policy.Categories())
	if msg == "" {
		rep.Skipped = "no contracts within thresholds"
		return rep, nil
	}
	if err := c.post(ctx, c.bot.Channel, msg); err != nil {
		return nil, err
	}
	rep.Posted = 1
	return rep, nil
}

// ContractEnd returns the contract end date: the end-date field when it
// parses, otherwise the start date plus the duration in whole months.
func ContractEnd(f domain.Fields, layouts []string) (time.Time, bool) {
	if end, ok := dates.ParseTime(f.Get(domain.AttrEndDate), layouts); ok {
		return end, true
	}
	start, ok := dates.ParseTime(f.Get(domain.AttrStartDate), layouts)
	if !ok {
		return time.Time{}, false
	}
	months, ok := parseMonths(f.Get(domain.AttrDurationMonths))
	if !ok {
		return time.Time{}, false
	}
	return dates.AddMonths(start, months), true
}

// parseMonths accepts whole numbers, including "12.0"
func parseMonths(s string) (int, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || v < 0 || v != math.Trunc(v) {
		return 0, false
	}
	return int(v), true
}
