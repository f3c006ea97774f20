// Package generate wraps the text-generation services used for short
// message bodies.
package generate

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// Generator turns a prompt into a short text
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Options selects and configures a provider
type Options struct {
	Provider  string
	Model     string
	MaxTokens int
	APIKey    string
	URL       string
	Timeout   time.Duration
}

// New builds the configured provider
func New(ctx context.Context, opts Options) (Generator, error) {
	switch opts.Provider {
	case "anthropic", "":
		return NewAnthropic(opts.URL, opts.APIKey, opts.Model, opts.MaxTokens, opts.Timeout)
	case "gemini":
		return NewGemini(ctx, opts.APIKey, opts.Model, opts.MaxTokens)
	default:
		return nil, fmt.Errorf("unknown provider: %q (valid: anthropic, gemini)", opts.Provider)
	}
}

// Clean trims whitespace, code fences and wrapping quotes from model output
func Clean(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	s = strings.TrimSpace(s)
	for _, pair := range [][2]string{{`"`, `"`}, {"“", "”"}, {"'", "'"}} {
		if len(s) >= len(pair[0])+len(pair[1]) && strings.HasPrefix(s, pair[0]) && strings.HasSuffix(s, pair[1]) {
			s = strings.TrimSpace(s[len(pair[0]) : len(s)-len(pair[1])])
		}
	}
	return s
}
