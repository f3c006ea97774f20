// Package bots holds the one-shot jobs that read the boards and post to
// Slack. Each bot runs its pipeline once per call to Run.
package bots

import (
	"context"
	"fmt"
	"math/rand/v2"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/pbaille/teambots/internal/config"
	"github.com/pbaille/teambots/internal/dates"
	"github.com/pbaille/teambots/internal/domain"
	"github.com/pbaille/teambots/internal/generate"
	"github.com/pbaille/teambots/internal/history"
	"github.com/pbaille/teambots/internal/monday"
	"github.com/pbaille/teambots/internal/slack"
)

// Board reads groups and items from a board
type Board interface {
	Groups(ctx context.Context, q monday.BoardQuery) ([]domain.Group, error)
}

// Embedder scores how close a text is to earlier ones
type Embedder interface {
	MaxSimilarity(ctx context.Context, candidate string, past []string) (float64, error)
}

// Deps are the collaborators a bot may use. Bots that do not need a
// collaborator ignore it; Embedder and History may be nil.
type Deps struct {
	Board     Board
	Publisher slack.Publisher
	Webhook   slack.Publisher
	Directory slack.Directory
	Generator generate.Generator
	Embedder  Embedder
	History   history.Store
	Retry     *slack.Retrier
	Log       *zap.Logger
	Now       func() time.Time
	Rand      *rand.Rand
	Sleep     func(ctx context.Context, d time.Duration) error
}

func (d Deps) withDefaults() Deps {
	if d.Log == nil {
		d.Log = zap.NewNop()
	}
	if d.Now == nil {
		d.Now = time.Now
	}
	if d.Rand == nil {
		d.Rand = rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), 0))
	}
	if d.Retry == nil {
		d.Retry = slack.NewRetrier(1, 0, d.Log)
	}
	if d.Sleep == nil {
		d.Sleep = sleep
	}
	return d
}

// Report summarises one run
type Report struct {
	Bot     string          `json:"bot"`
	Items   int             `json:"items"`
	Matched int             `json:"matched"`
	Posted  int             `json:"posted"`
	Failed  []slack.Failure `json:"failed,omitempty"`
	Skipped string          `json:"skipped,omitempty"`
}

// Bot is one runnable job
type Bot interface {
	Name() string
	Run(ctx context.Context) (*Report, error)
}

// Factory builds a bot from the configuration and its collaborators
type Factory func(cfg *config.Config, d Deps) (Bot, error)

// Registry maps bot names to factories
type Registry struct {
	factories map[string]Factory
}

// NewRegistry returns a registry holding every bot
func NewRegistry() *Registry {
	return &Registry{factories: map[string]Factory{
		"benched":   NewBenched,
		"birthdays": NewBirthdays,
		"checkin":   NewCheckin,
		"coffee":    NewCoffee,
		"contracts": NewContracts,
		"jobs":      NewJobs,
		"pulse":     NewPulse,
		"quote":     NewQuote,
		"welcome":   NewWelcome,
	}}
}

// Names lists the registered bots in sorted order
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Has reports whether a bot is registered under name
func (r *Registry) Has(name string) bool {
	_, ok := r.factories[name]
	return ok
}

// New builds the named bot
func (r *Registry) New(name string, cfg *config.Config, d Deps) (Bot, error) {
	f, ok := r.factories[name]
	if !ok {
		return nil, fmt.Errorf("unknown bot: %q (valid: %s)", name, strings.Join(r.Names(), ", "))
	}
	return f(cfg, d.withDefaults())
}

// UsesHistory reports whether the named bot reads or writes history
func UsesHistory(name string) bool {
	return name == "quote" || name == "checkin"
}

// base carries what every bot shares
type base struct {
	name string
	cfg  *config.Config
	deps Deps
	log  *zap.Logger
}

func newBase(name string, cfg *config.Config, d Deps) base {
	return base{name: name, cfg: cfg, deps: d, log: d.Log.With(zap.String("bot", name))}
}

func (b base) Name() string { return b.name }

func (b base) report() *Report {
	return &Report{Bot: b.name}
}

func (b base) today() time.Time {
	return dates.Today(b.deps.Now(), dates.Location(b.cfg.UTCOffsetHours))
}

// fetch reads the configured board and keeps the groups passing its filter
func (b base) fetch(ctx context.Context, board config.Board, columns bool) ([]domain.Item, error) {
	if b.deps.Board == nil {
		return nil, fmt.Errorf("%s: no board client", b.name)
	}
	groups, err := b.deps.Board.Groups(ctx, monday.BoardQuery{
		BoardID:  board.ID,
		GroupIDs: board.GroupIDs,
		Limit:    board.Limit,
		Columns:  columns,
	})
	if err != nil {
		return nil, fmt.Errorf("fetch board %s: %w", board.ID, err)
	}

	var items []domain.Item
	for _, g := range board.Groups.Select(groups) {
		b.log.Debug("Reading group", zap.String("group", g.Title), zap.Int("items", len(g.Items)))
		items = append(items, g.Items...)
	}
	return items, nil
}

// post sends one channel message
func (b base) post(ctx context.Context, channel, text string) error {
	if b.deps.Publisher == nil {
		return fmt.Errorf("%s: no publisher", b.name)
	}
	err := b.deps.Retry.Do(ctx, func() error {
		return b.deps.Publisher.Send(ctx, channel, text)
	})
	if err != nil {
		return fmt.Errorf("post to %s: %w", channel, err)
	}
	b.log.Info("Posted", zap.String("channel", channel), zap.Int("chars", len(text)))
	return nil
}

func layoutsOr(configured, fallback []string) []string {
	if len(configured) > 0 {
		return configured
	}
	return fallback
}

func itemNames(items []domain.Item) []string {
	var names []string
	for _, it := range items {
		if n := strings.TrimSpace(it.Name); n != "" {
			names = append(names, n)
		}
	}
	return names
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
