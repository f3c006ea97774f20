package bots

import (
	"context"
	"errors"
	"math/rand/v2"
	"slices"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/pbaille/teambots/internal/config"
	"github.com/pbaille/teambots/internal/domain"
	"github.com/pbaille/teambots/internal/monday"
	"github.com/pbaille/teambots/internal/slack"
)

type fakeBoard struct {
	groups  []domain.Group
	err     error
	queries []monday.BoardQuery
}

func (f *fakeBoard) Groups(_ context.Context, q monday.BoardQuery) ([]domain.Group, error) {
	f.queries = append(f.queries, q)
	if f.err != nil {
		return nil, f.err
	}
	if len(q.GroupIDs) == 0 {
		return f.groups, nil
	}
	var out []domain.Group
	for _, g := range f.groups {
		if slices.Contains(q.GroupIDs, g.ID) {
			out = append(out, g)
		}
	}
	return out, nil
}

type fakeDirectory struct {
	users []slack.User
}

func (f fakeDirectory) Users(context.Context) ([]slack.User, error) {
	return f.users, nil
}

type fakeGenerator struct {
	replies []string
	prompts []string
}

func (f *fakeGenerator) Generate(_ context.Context, prompt string) (string, error) {
	f.prompts = append(f.prompts, prompt)
	if len(f.replies) == 0 {
		return "", errors.New("no reply")
	}
	r := f.replies[0]
	f.replies = f.replies[1:]
	return r, nil
}

type fakeEmbedder struct {
	sim float64
	err error
}

func (f fakeEmbedder) MaxSimilarity(context.Context, string, []string) (float64, error) {
	return f.sim, f.err
}

func col(id, label, text, value string) domain.ColumnValue {
	return domain.ColumnValue{ID: id, Label: label, Text: text, Value: value}
}

func item(id, name string, cols ...domain.ColumnValue) domain.Item {
	return domain.Item{ID: id, Name: name, ColumnValues: cols}
}

func slackUser(id, handle, real string) slack.User {
	return slack.User{ID: id, Name: handle, RealName: real}
}

// manilaNoon returns a clock reading noon in Manila on the given date
func manilaNoon(y int, m time.Month, d int) func() time.Time {
	return func() time.Time { return time.Date(y, m, d, 4, 0, 0, 0, time.UTC) }
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg, err := config.Default()
	require.NoError(t, err)
	cfg.Slack.SendInterval = 0
	return cfg
}

func testDeps(board *fakeBoard, pub slack.Publisher) Deps {
	return Deps{
		Board:     board,
		Publisher: pub,
		Log:       zap.NewNop(),
		Now:       manilaNoon(2025, time.January, 1),
		Rand:      rand.New(rand.NewPCG(1, 2)),
		Sleep:     func(context.Context, time.Duration) error { return nil },
	}
}

func runBot(t *testing.T, name string, cfg *config.Config, d Deps) (*Report, error) {
	t.Helper()
	bot, err := NewRegistry().New(name, cfg, d)
	require.NoError(t, err)
	assert.Equal(t, name, bot.Name())
	return bot.Run(t.Context())
}

func TestRegistry(t *testing.T) {
	r := NewRegistry()
	assert.Equal(t, []string{
		"benched", "birthdays", "checkin", "coffee", "contracts",
		"jobs", "pulse", "quote", "welcome",
	}, r.Names())

	assert.True(t, r.Has("pulse"))
	assert.False(t, r.Has("contrcts"))

	_, err := r.New("nope", testConfig(t), Deps{})
	assert.ErrorContains(t, err, "unknown bot")

	_, err = r.New("quote", testConfig(t), Deps{})
	assert.Error(t, err, "quote needs a generator")
}

func TestFetchErrorAborts(t *testing.T) {
	board := &fakeBoard{err: &monday.APIError{Messages: []string{"boom"}}}
	_, err := runBot(t, "contracts", testConfig(t), testDeps(board, &slack.Recorder{}))
	require.Error(t, err)

	var apiErr *monday.APIError
	assert.ErrorAs(t, err, &apiErr)
}
