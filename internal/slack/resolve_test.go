package slack

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func user(id, handle, real, display string) User {
	u := User{ID: id, Name: handle, RealName: real}
	u.Profile.DisplayName = display
	return u
}

func TestResolve(t *testing.T) {
	users := []User{
		user("U1", "den.cruz", "Den Cruz", "Den C"),
		user("U2", "ana", "Ana Reyes", "Ana"),
		user("U3", "marco", "Marco Santos", "Marc"),
	}

	tests := []struct {
		name string
		want string
		ok   bool
	}{
		{"Ana Reyes", "U2", true}, // real name
		{"Marco", "U3", true},     // lowercase handle
		{"Den C", "U1", true},     // profile display name
		{"Den", "U1", true},       // contained in real name
		{"den cruz", "U1", true},  // containment ignores case
		{"Zed", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		got, ok := Resolve(tt.name, users)
		assert.Equal(t, tt.ok, ok, "Resolve(%q)", tt.name)
		assert.Equal(t, tt.want, got, "Resolve(%q)", tt.name)
	}
}

func TestResolveRulePriorityBeatsDirectoryOrder(t *testing.T) {
	users := []User{
		user("U1", "x", "Ana Reyes-Lim", ""),
		user("U2", "y", "Ana Reyes", ""),
	}
	id, ok := Resolve("Ana Reyes", users)
	require.True(t, ok)
	assert.Equal(t, "U2", id)
}

func TestResolveAmbiguousTakesFirst(t *testing.T) {
	// Two users contain "Den"; no disambiguation is attempted.
	users := []User{
		user("U1", "dennis", "Dennis Uy", ""),
		user("U2", "dcruz", "Den Cruz", ""),
	}
	id, ok := Resolve("Den", users)
	require.True(t, ok)
	assert.Equal(t, "U1", id)
}

func TestResolveSkipsDeletedAndBots(t *testing.T) {
	gone := user("U1", "den", "Den Cruz", "")
	gone.Deleted = true
	bot := user("U2", "denbot", "Den Bot", "")
	bot.IsBot = true
	_, ok := Resolve("Den", []User{gone, bot})
	assert.False(t, ok)
}

type fakePublisher struct {
	fail map[string]error
	sent []string
}

func (f *fakePublisher) Send(_ context.Context, target, _ string) error {
	if err := f.fail[target]; err != nil {
		return err
	}
	f.sent = append(f.sent, target)
	return nil
}

func TestDirectMessageCollectsFailures(t *testing.T) {
	users := []User{
		user("U1", "den", "Den Cruz", ""),
		user("U2", "ana", "Ana Reyes", ""),
		user("U3", "marco", "Marco Santos", ""),
	}
	pub := &fakePublisher{fail: map[string]error{"U2": &APIError{Method: "chat.postMessage", Code: "is_archived"}}}
	retry, _ := testRetrier(3)
	b := NewBroadcaster(pub, 0, retry, zap.NewNop())

	d, err := b.DirectMessage(t.Context(), []string{"Den Cruz", "Ana Reyes", "Nobody", "Marco Santos"}, users, "How are you?")
	require.NoError(t, err)
	assert.Equal(t, []string{"Den Cruz", "Marco Santos"}, d.Sent)
	assert.Equal(t, []string{"Ana Reyes", "Nobody"}, d.FailedNames())
	assert.Equal(t, "user not found", d.Failed[1].Reason)
	assert.Equal(t, []string{"U1", "U3"}, pub.sent)
}

type flakyPublisher struct {
	calls int
}

func (f *flakyPublisher) Send(context.Context, string, string) error {
	f.calls++
	if f.calls == 1 {
		return &RateLimitError{Method: "chat.postMessage"}
	}
	return nil
}

func TestSendOneRetriesRateLimit(t *testing.T) {
	pub := &flakyPublisher{}
	retry, ns := testRetrier(3)
	b := NewBroadcaster(pub, 0, retry, zap.NewNop())

	require.NoError(t, b.SendOne(t.Context(), "U1", "hi"))
	assert.Equal(t, 2, pub.calls)
	assert.Equal(t, []time.Duration{10 * time.Second}, ns.waits)
}

func TestDirectMessageStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(t.Context())
	cancel()
	retry, _ := testRetrier(1)
	b := NewBroadcaster(&fakePublisher{}, time.Hour, retry, zap.NewNop())

	_, err := b.DirectMessage(ctx, []string{"Den"}, []User{user("U1", "den", "Den Cruz", "")}, "x")
	assert.True(t, errors.Is(err, context.Canceled))
}
