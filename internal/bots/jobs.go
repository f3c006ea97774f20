package bots

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/pbaille/teambots/internal/classify"
	"github.com/pbaille/teambots/internal/config"
	"github.com/pbaille/teambots/internal/dates"
	"github.com/pbaille/teambots/internal/domain"
	"github.com/pbaille/teambots/internal/extract"
	"github.com/pbaille/teambots/internal/monday"
	"github.com/pbaille/teambots/internal/render"
)

// Jobs posts newly listed positions and those left open too long
type Jobs struct {
	base
	bot config.JobsConfig
}

func NewJobs(cfg *config.Config, d Deps) (Bot, error) {
	return &Jobs{base: newBase("jobs", cfg, d), bot: cfg.Bots.Jobs}, nil
}

func (j *Jobs) Run(ctx context.Context) (*Report, error) {
	rep := j.report()

	items, err := j.fetch(ctx, j.bot.Board, true)
	if err != nil {
		return nil, err
	}
	rep.Items = len(items)

	today := j.today()
	layouts := layoutsOr(j.bot.Layouts, dates.JobLayouts)

	var fresh, stale []render.JobLine
	for _, it := range items {
		job := jobFromFields(it, extract.Extract(it.ColumnValues, j.bot.Rules))
		log := j.log.With(zap.String("item", job.Title))

		if !classify.StatusAllowed(job.RoleStatus, j.bot.AllowedStatuses) {
			log.Debug("Skipping role status", zap.String("status", job.RoleStatus))
			continue
		}
		listed, ok := dates.ParseTime(job.listedText, layouts)
		if !ok {
			log.Debug("No listed date", zap.String("listed", job.listedText))
			continue
		}
		job.ListedAt = listed

		age, days := j.bot.Window.Classify(listed, today)
		line := render.JobLine{
			Job:     job.Job,
			AgeDays: days,
			URL:     monday.ItemURL(j.cfg.Monday.AccountURL, j.bot.Board.ID, job.ID),
		}
		switch age {
		case classify.AgeNew:
			fresh = append(fresh, line)
		case classify.AgeStale:
			stale = append(stale, line)
		}
	}
	rep.Matched = len(fresh) + len(stale)

	j.log.Info("Classified jobs", zap.Int("new", len(fresh)), zap.Int("stale", len(stale)))

	msg := render.Jobs(fresh, stale, j.bot.Window.StaleDays)
	if msg == "" {
		rep.Skipped = "no new or long-open jobs"
		return rep, nil
	}
	if err := j.post(ctx, j.bot.Channel, msg); err != nil {
		return nil, err
	}
	rep.Posted = 1
	return rep, nil
}

type jobRecord struct {
	domain.Job
	listedText string
}

func jobFromFields(it domain.Item, f domain.Fields) jobRecord {
	return jobRecord{
		Job: domain.Job{
			ID:         it.ID,
			Title:      strings.TrimSpace(it.Name),
			Recruiter:  f.Get(domain.AttrRecruiter),
			Status:     f.Get(domain.AttrHiringStatus),
			RoleStatus: f.Get(domain.AttrRoleStatus),
			Client:     f.Get(domain.AttrClient),
			Location:   f.Get(domain.AttrLocation),
			Skills:     f.Get(domain.AttrSkills),
			TopSkills:  f.Get(domain.AttrTopSkills),
		},
		listedText: f.Get(domain.AttrListedDate),
	}
}
