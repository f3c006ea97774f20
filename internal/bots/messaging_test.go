package bots

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pbaille/teambots/internal/domain"
	"github.com/pbaille/teambots/internal/history"
	"github.com/pbaille/teambots/internal/slack"
)

// rejectingPublisher fails sends to one target and records the rest
type rejectingPublisher struct {
	slack.Recorder
	reject string
}

func (p *rejectingPublisher) Send(ctx context.Context, target, text string) error {
	if target == p.reject {
		return &slack.APIError{Method: "chat.postMessage", Code: "channel_not_found"}
	}
	return p.Recorder.Send(ctx, target, text)
}

func TestPulseRun(t *testing.T) {
	board := &fakeBoard{groups: []domain.Group{{Title: "Active Employees", Items: []domain.Item{
		item("", "Ann Lee"), item("", "Bob"), item("", "Zed"), item("", "Cat"),
	}}}}
	pub := &rejectingPublisher{reject: "U4"}

	d := testDeps(board, pub)
	d.Directory = fakeDirectory{users: []slack.User{
		slackUser("U1", "ann", "Ann Lee"),
		slackUser("U2", "bstone", "Bob Stone"),
		slackUser("U3", "den", "Den Cruz"),
		slackUser("U4", "cat", "Cat Ng"),
	}}
	var slept []time.Duration
	d.Sleep = func(_ context.Context, dur time.Duration) error {
		slept = append(slept, dur)
		return nil
	}

	rep, err := runBot(t, "pulse", testConfig(t), d)
	require.NoError(t, err)
	assert.Equal(t, 2, rep.Posted)
	require.Len(t, rep.Failed, 2)
	assert.Equal(t, "Zed", rep.Failed[0].Name)
	assert.Equal(t, "user not found", rep.Failed[0].Reason)
	assert.Equal(t, "Cat", rep.Failed[1].Name)
	assert.Equal(t, []time.Duration{2 * time.Second}, slept)

	msgs := pub.Messages()
	require.Len(t, msgs, 3)
	assert.Equal(t, "U1", msgs[0].Target)
	assert.Equal(t, "U2", msgs[1].Target)
	assert.Contains(t, msgs[0].Text, "*Monthly Pulse Check - January 2025*")
	assert.Contains(t, msgs[0].Text, "*Would you recommend Adaca to your friend?*")

	assert.Equal(t, "U3", msgs[2].Target)
	assert.Contains(t, msgs[2].Text, "✅ Sent to 2 employees")
	assert.Contains(t, msgs[2].Text, "⚠️ Failed to send to 2 employees:\nZed, Cat")
}

func TestPulseCancelled(t *testing.T) {
	board := &fakeBoard{groups: []domain.Group{{Title: "Active Employees", Items: []domain.Item{item("", "Ann Lee")}}}}
	d := testDeps(board, &slack.Recorder{})
	d.Directory = fakeDirectory{users: []slack.User{slackUser("U1", "ann", "Ann Lee")}}

	bot, err := NewRegistry().New("pulse", testConfig(t), d)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(t.Context())
	cancel()
	_, err = bot.Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func checkinConfigDeps(t *testing.T, now func() time.Time, store history.Store) (*slack.Recorder, Deps) {
	t.Helper()
	rec := &slack.Recorder{}
	d := testDeps(&fakeBoard{}, rec)
	d.Now = now
	d.History = store
	return rec, d
}

func TestCheckinAvoidsRecentPick(t *testing.T) {
	cfg := testConfig(t)
	cfg.Bots.Checkin.Quotes = []string{"Quote A", "Quote B"}
	store := history.NewMemory("Quote A")

	// 2025-01-06 is a Monday.
	rec, d := checkinConfigDeps(t, manilaNoon(2025, time.January, 6), store)
	_, err := runBot(t, "checkin", cfg, d)
	require.NoError(t, err)

	msgs := rec.Messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, "recruitmentteam-suicidesquad", msgs[0].Target)
	assert.Contains(t, msgs[0].Text, "✨ _Quote B_")

	got, err := store.Load(t.Context())
	require.NoError(t, err)
	assert.Equal(t, []string{"Quote A", "Quote B"}, got)
}

func TestCheckinWeekend(t *testing.T) {
	store := history.NewMemory()
	rec, d := checkinConfigDeps(t, manilaNoon(2025, time.January, 4), store)
	_, err := runBot(t, "checkin", testConfig(t), d)
	require.NoError(t, err)

	require.Len(t, rec.Messages(), 1)
	assert.Contains(t, rec.Messages()[0].Text, "😎 *Happy Saturday!*")

	got, err := store.Load(t.Context())
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestCheckinNoFacts(t *testing.T) {
	cfg := testConfig(t)
	cfg.Bots.Checkin.Facts = nil
	// 2025-01-07 is a Tuesday.
	_, d := checkinConfigDeps(t, manilaNoon(2025, time.January, 7), nil)
	_, err := runBot(t, "checkin", cfg, d)
	assert.Error(t, err)
}

func TestPick(t *testing.T) {
	first := func(int) int { return 0 }
	assert.Equal(t, "b", Pick([]string{"a", "b", "c"}, []string{"a"}, first))
	assert.Equal(t, "a", Pick([]string{"a"}, []string{"a"}, first))
}

func TestQuoteRetriesOnRepeat(t *testing.T) {
	store := history.NewMemory("Keep going.")
	gen := &fakeGenerator{replies: []string{"keep going.", "Every hire changes a life."}}
	rec := &slack.Recorder{}
	d := testDeps(&fakeBoard{}, rec)
	d.Generator = gen
	d.History = store

	_, err := runBot(t, "quote", testConfig(t), d)
	require.NoError(t, err)

	require.Len(t, gen.prompts, 2)
	assert.Contains(t, gen.prompts[0], "- Keep going.")

	msgs := rec.Messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, "general", msgs[0].Target)
	assert.Equal(t, "☀️ *Daily Motivation*\n\nEvery hire changes a life.\n\n_Have a great day, team!_", msgs[0].Text)

	got, err := store.Load(t.Context())
	require.NoError(t, err)
	assert.Equal(t, []string{"Keep going.", "Every hire changes a life."}, got)
}

func TestQuoteNearDuplicate(t *testing.T) {
	tests := []struct {
		name     string
		embedder fakeEmbedder
		calls    int
	}{
		{"similar", fakeEmbedder{sim: 0.95}, 2},
		{"distinct", fakeEmbedder{sim: 0.4}, 1},
		{"embedder down", fakeEmbedder{err: errors.New("quota")}, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig(t)
			cfg.Embedding.MaxSimilarity = 0.9

			gen := &fakeGenerator{replies: []string{"One.", "Two."}}
			d := testDeps(&fakeBoard{}, &slack.Recorder{})
			d.Generator = gen
			d.Embedder = tt.embedder
			d.History = history.NewMemory("Zero.")

			_, err := runBot(t, "quote", cfg, d)
			require.NoError(t, err)
			assert.Len(t, gen.prompts, tt.calls)
		})
	}
}

func TestQuoteGeneratorError(t *testing.T) {
	d := testDeps(&fakeBoard{}, &slack.Recorder{})
	d.Generator = &fakeGenerator{}
	_, err := runBot(t, "quote", testConfig(t), d)
	assert.ErrorContains(t, err, "generate quote")
}

func TestBenchedRun(t *testing.T) {
	board := &fakeBoard{groups: []domain.Group{
		{ID: "not_active_employees__bench_", Title: "Bench", Items: []domain.Item{item("", "Ann"), item("", "Bob")}},
		{ID: "topics", Title: "Active Employees", Items: []domain.Item{item("", "Cy")}},
	}}
	hook := &slack.Recorder{}
	d := testDeps(board, nil)
	d.Webhook = hook

	rep, err := runBot(t, "benched", testConfig(t), d)
	require.NoError(t, err)
	assert.Equal(t, 2, rep.Matched)
	assert.Equal(t, []string{"not_active_employees__bench_"}, board.queries[0].GroupIDs)

	msgs := hook.Messages()
	require.Len(t, msgs, 1)
	assert.Contains(t, msgs[0].Text, ":warning: *Benched Employees Report - January 01, 2025*")
	assert.Contains(t, msgs[0].Text, "• Ann\n• Bob")
	assert.NotContains(t, msgs[0].Text, "Cy")
}

func TestBenchedEmptyAndMissingWebhook(t *testing.T) {
	board := &fakeBoard{groups: []domain.Group{{ID: "not_active_employees__bench_", Title: "Bench"}}}
	hook := &slack.Recorder{}
	d := testDeps(board, nil)
	d.Webhook = hook

	_, err := runBot(t, "benched", testConfig(t), d)
	require.NoError(t, err)
	require.Len(t, hook.Messages(), 1)
	assert.Contains(t, hook.Messages()[0].Text, "no employees on the bench")

	d.Webhook = nil
	_, err = runBot(t, "benched", testConfig(t), d)
	assert.Error(t, err)
}
