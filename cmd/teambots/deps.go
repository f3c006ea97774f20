package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/pbaille/teambots/internal/bots"
	"github.com/pbaille/teambots/internal/config"
	"github.com/pbaille/teambots/internal/embedding"
	"github.com/pbaille/teambots/internal/generate"
	"github.com/pbaille/teambots/internal/history"
	"github.com/pbaille/teambots/internal/monday"
	"github.com/pbaille/teambots/internal/slack"
)

// newBot wires the named bot from the loaded configuration. A non-nil out
// replaces every outbound channel and makes history read-only. Such runs
// are not paced.
func newBot(ctx context.Context, name string, out slack.Publisher, log *zap.Logger) (bots.Bot, func(), error) {
	release := func() {}
	reg := bots.NewRegistry()
	if !reg.Has(name) {
		return nil, release, fmt.Errorf("unknown bot: %q (valid: %s)", name, strings.Join(reg.Names(), ", "))
	}

	botCfg := cfg
	d := bots.Deps{
		Log:   log,
		Retry: slack.NewRetrier(cfg.Slack.RetryAttempts, cfg.Slack.RetryStep, log),
	}
	if out != nil {
		botCfg, d = unpaced(cfg, d)
	}

	switch name {
	case "checkin", "quote":
	default:
		board, err := monday.New(cfg.Monday.URL, cfg.Monday.Token, cfg.Monday.Timeout, log)
		if err != nil {
			return nil, release, err
		}
		d.Board = board
	}

	if out != nil {
		d.Publisher = out
		d.Webhook = out
	} else if name == "benched" {
		if cfg.Slack.WebhookURL != "" {
			hook, err := slack.NewWebhook(cfg.Slack.WebhookURL, cfg.Slack.Timeout)
			if err != nil {
				return nil, release, err
			}
			d.Webhook = hook
		}
	}

	if name != "benched" && (out == nil || name == "pulse") {
		client, err := slack.New(cfg.Slack.URL, cfg.Slack.Token, cfg.Slack.Timeout, d.Retry, log)
		if err != nil {
			return nil, release, err
		}
		if out == nil {
			d.Publisher = client
		}
		d.Directory = client
	}

	if name == "quote" {
		gen, err := generate.New(ctx, generate.Options{
			Provider:  cfg.AI.Provider,
			Model:     cfg.AI.Model,
			MaxTokens: cfg.AI.MaxTokens,
			APIKey:    cfg.AI.APIKey(),
			URL:       cfg.AI.URL,
			Timeout:   cfg.AI.Timeout,
		})
		if err != nil {
			return nil, release, fmt.Errorf("text generator: %w", err)
		}
		d.Generator = gen

		if cfg.Embedding.Enabled {
			emb, err := embedding.New(cfg.Embedding.URL, cfg.Embedding.APIKey, cfg.Embedding.Model, cfg.Embedding.Timeout)
			if err != nil {
				return nil, release, fmt.Errorf("embeddings: %w", err)
			}
			d.Embedder = emb
		}
	}

	if bots.UsesHistory(name) {
		store, err := openHistory(name)
		if err != nil {
			return nil, release, err
		}
		release = func() {
			if err := store.Close(); err != nil {
				log.Warn("Closing history failed", zap.Error(err))
			}
		}
		if out != nil {
			d.History = history.ReadOnly(store)
		} else {
			d.History = store
		}
	}

	bot, err := reg.New(name, botCfg, d)
	if err != nil {
		release()
		return nil, func() {}, err
	}
	return bot, release, nil
}

// unpaced drops send pacing and pauses for runs whose messages are only
// recorded.
func unpaced(c *config.Config, d bots.Deps) (*config.Config, bots.Deps) {
	cp := *c
	cp.Slack.SendInterval = 0
	d.Sleep = func(ctx context.Context, _ time.Duration) error { return ctx.Err() }
	return &cp, d
}

func openHistory(bot string) (history.Store, error) {
	path, err := cfg.HistoryPath(bot)
	if err != nil {
		return nil, err
	}
	store, err := history.Open(path, bot)
	if err != nil {
		return nil, fmt.Errorf("open history: %w", err)
	}
	return store, nil
}
