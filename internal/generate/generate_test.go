package generate

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClean(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"  Keep going.  ", "Keep going."},
		{`"Keep going."`, "Keep going."},
		{"“Keep going.”", "Keep going."},
		{"```\nKeep going.\n```", "Keep going."},
		{`"`, `"`},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Clean(tt.in), "Clean(%q)", tt.in)
	}
}

func TestAnthropicGenerate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "sk-test", r.Header.Get("x-api-key"))
		assert.Equal(t, "2023-06-01", r.Header.Get("anthropic-version"))

		var req apiRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "claude-test", req.Model)
		assert.Equal(t, 256, req.MaxTokens)
		require.Len(t, req.Messages, 1)
		assert.Equal(t, "user", req.Messages[0].Role)
		assert.Equal(t, "write a quote", req.Messages[0].Content)

		w.Write([]byte(`{"content":[{"type":"text","text":"\"Every hire changes a life.\"\n"}]}`))
	}))
	defer srv.Close()

	a, err := NewAnthropic(srv.URL, "sk-test", "claude-test", 256, 5*time.Second)
	require.NoError(t, err)

	got, err := a.Generate(t.Context(), "write a quote")
	require.NoError(t, err)
	assert.Equal(t, "Every hire changes a life.", got)
}

func TestAnthropicErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error":{"message":"invalid x-api-key"}}`))
	}))
	defer srv.Close()

	a, err := NewAnthropic(srv.URL, "bad", "", 0, time.Second)
	require.NoError(t, err)
	_, err = a.Generate(t.Context(), "x")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 401")
}

func TestAnthropicEmptyContent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"content":[]}`))
	}))
	defer srv.Close()

	a, err := NewAnthropic(srv.URL, "k", "", 0, time.Second)
	require.NoError(t, err)
	_, err = a.Generate(t.Context(), "x")
	assert.EqualError(t, err, "empty response")
}

func TestNewRejectsUnknownProvider(t *testing.T) {
	_, err := New(t.Context(), Options{Provider: "markov"})
	assert.Error(t, err)
}

func TestNewRequiresKey(t *testing.T) {
	_, err := New(t.Context(), Options{Provider: "anthropic"})
	assert.Error(t, err)
	_, err = New(t.Context(), Options{Provider: "gemini"})
	assert.Error(t, err)
}
