package bots

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/pbaille/teambots/internal/config"
	"github.com/pbaille/teambots/internal/dates"
	"github.com/pbaille/teambots/internal/domain"
	"github.com/pbaille/teambots/internal/extract"
	"github.com/pbaille/teambots/internal/render"
)

// Birthdays posts one greeting per person born on today's month and day
type Birthdays struct {
	base
	bot config.BirthdaysConfig
}

func NewBirthdays(cfg *config.Config, d Deps) (Bot, error) {
	return &Birthdays{base: newBase("birthdays", cfg, d), bot: cfg.Bots.Birthdays}, nil
}

func (b *Birthdays) Run(ctx context.Context) (*Report, error) {
	rep := b.report()

	items, err := b.fetch(ctx, b.bot.Board, true)
	if err != nil {
		return nil, err
	}
	rep.Items = len(items)

	today := b.today()
	layouts := layoutsOr(b.bot.Layouts, dates.BirthdayLayouts)

	var people []domain.Person
	for _, it := range items {
		f := extract.Extract(it.ColumnValues, b.bot.Rules)
		name := strings.TrimSpace(f.Get(domain.AttrFirstName) + " " + f.Get(domain.AttrLastName))
		if name == "" {
			name = strings.TrimSpace(it.Name)
		}
		people = append(people, domain.Person{
			Name:      name,
			BirthDate: dates.Parse(f.Get(domain.AttrBirthDate), layouts),
		})
	}

	var names []string
	for _, p := range Celebrants(people, today) {
		names = append(names, p.Name)
	}
	rep.Matched = len(names)

	if len(names) == 0 {
		rep.Skipped = "no birthdays today"
		return rep, nil
	}
	for _, name := range names {
		if err := b.post(ctx, b.bot.Channel, render.Birthday(name)); err != nil {
			return rep, err
		}
		rep.Posted++
	}
	return rep, nil
}

// Celebrants returns the named people whose birthday falls on today, in
// board order.
func Celebrants(people []domain.Person, today time.Time) []domain.Person {
	var out []domain.Person
	for _, p := range people {
		if p.Name == "" {
			continue
		}
		birth, ok := dates.ParseTime(p.BirthDate, []string{dates.ISO})
		if ok && dates.SameMonthDay(birth, today) {
			out = append(out, p)
		}
	}
	return out
}

// Welcome greets people whose start date is today and names a buddy from
// the same project.
type Welcome struct {
	base
	bot config.WelcomeConfig
}

func NewWelcome(cfg *config.Config, d Deps) (Bot, error) {
	return &Welcome{base: newBase("welcome", cfg, d), bot: cfg.Bots.Welcome}, nil
}

func (w *Welcome) Run(ctx context.Context) (*Report, error) {
	rep := w.report()

	items, err := w.fetch(ctx, w.bot.Board, true)
	if err != nil {
		return nil, err
	}
	rep.Items = len(items)

	layouts := layoutsOr(w.bot.Layouts, dates.ContractLayouts)
	var people []domain.Person
	for _, it := range items {
		name := strings.TrimSpace(it.Name)
		if name == "" {
			continue
		}
		f := extract.Extract(it.ColumnValues, w.bot.Rules)
		people = append(people, domain.Person{
			Name:      name,
			Position:  f.Get(domain.AttrPosition),
			Project:   f.Get(domain.AttrProject),
			StartDate: dates.Parse(f.Get(domain.AttrStartDate), layouts),
		})
	}

	today := w.today()
	todayISO := today.Format(dates.ISO)

	var hires []domain.Person
	for _, p := range people {
		if p.StartDate == todayISO {
			hires = append(hires, p)
		}
	}
	rep.Matched = len(hires)

	if len(hires) == 0 {
		rep.Skipped = "no new hires today"
		return rep, nil
	}

	for _, h := range hires {
		buddy := Buddy(h, people)
		w.log.Info("New hire", zap.String("name", h.Name), zap.String("buddy", buddy))

		msg := render.WelcomeMessage(render.Welcome{
			Org:           w.cfg.Org,
			Name:          h.Name,
			Position:      or(h.Position, w.bot.DefaultPosition),
			Project:       or(h.Project, w.bot.DefaultProject),
			StartDate:     render.LongDate(today),
			Buddy:         buddy,
			PacketChannel: w.bot.PacketChannel,
		})
		if err := w.post(ctx, w.bot.Channel, msg); err != nil {
			return rep, err
		}
		rep.Posted++
	}
	return rep, nil
}

// Buddy picks the longest-serving person on the hire's project: same
// non-empty project, a known start date different from the hire's, the
// earliest such date. Ties go to the first in board order.
func Buddy(hire domain.Person, people []domain.Person) string {
	if hire.Project == "" {
		return ""
	}
	var best *domain.Person
	for i := range people {
		p := &people[i]
		if p.Project != hire.Project || p.StartDate == "" || p.StartDate == hire.StartDate {
			continue
		}
		if best == nil || p.StartDate < best.StartDate {
			best = p
		}
	}
	if best == nil {
		return ""
	}
	return best.Name
}

func or(s, fallback string) string {
	if strings.TrimSpace(s) == "" {
		return fallback
	}
	return s
}
