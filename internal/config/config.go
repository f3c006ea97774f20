// Package config loads the bot settings: embedded defaults, an optional
// YAML override file and secrets from the environment.
package config

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"gopkg.in/yaml.v3"

	"github.com/pbaille/teambots/internal/classify"
	"github.com/pbaille/teambots/internal/domain"
	"github.com/pbaille/teambots/internal/extract"
	"github.com/pbaille/teambots/internal/history"
)

//go:embed default_config.yaml
var defaultConfigFS embed.FS

type Config struct {
	Org            string          `yaml:"org"`
	UTCOffsetHours int             `yaml:"utc_offset_hours"`
	Monday         MondayConfig    `yaml:"monday"`
	Slack          SlackConfig     `yaml:"slack"`
	AI             AIConfig        `yaml:"ai"`
	Embedding      EmbeddingConfig `yaml:"embedding"`
	History        HistoryConfig   `yaml:"history"`
	Bots           BotsConfig      `yaml:"bots"`
}

type MondayConfig struct {
	URL        string        `yaml:"url"`
	AccountURL string        `yaml:"account_url"`
	Timeout    time.Duration `yaml:"timeout"`
	Token      string        `yaml:"-"`
}

type SlackConfig struct {
	URL           string        `yaml:"url"`
	Timeout       time.Duration `yaml:"timeout"`
	SendInterval  time.Duration `yaml:"send_interval"`
	RetryAttempts int           `yaml:"retry_attempts"`
	RetryStep     time.Duration `yaml:"retry_step"`
	Token         string        `yaml:"-"`
	WebhookURL    string        `yaml:"-"`
}

type AIConfig struct {
	Provider     string        `yaml:"provider"` // "anthropic" or "gemini"
	Model        string        `yaml:"model"`
	URL          string        `yaml:"url,omitempty"`
	MaxTokens    int           `yaml:"max_tokens"`
	Timeout      time.Duration `yaml:"timeout"`
	AnthropicKey string        `yaml:"-"`
	GeminiKey    string        `yaml:"-"`
}

// APIKey returns the key for the configured provider
func (c AIConfig) APIKey() string {
	if c.Provider == "gemini" {
		return c.GeminiKey
	}
	return c.AnthropicKey
}

type EmbeddingConfig struct {
	Enabled       bool          `yaml:"enabled"`
	URL           string        `yaml:"url,omitempty"`
	Model         string        `yaml:"model"`
	MaxSimilarity float64       `yaml:"max_similarity"`
	Timeout       time.Duration `yaml:"timeout"`
	APIKey        string        `yaml:"-"`
}

type HistoryConfig struct {
	Path  string `yaml:"path"`
	Limit int    `yaml:"limit"`
}

// Board selects the part of a board a bot reads
type Board struct {
	ID       string              `yaml:"id"`
	Groups   extract.GroupFilter `yaml:"groups,omitempty"`
	GroupIDs []string            `yaml:"group_ids,omitempty"`
	Limit    int                 `yaml:"limit,omitempty"`
}

type BotsConfig struct {
	Contracts ContractsConfig `yaml:"contracts"`
	Jobs      JobsConfig      `yaml:"jobs"`
	Birthdays BirthdaysConfig `yaml:"birthdays"`
	Welcome   WelcomeConfig   `yaml:"welcome"`
	Coffee    CoffeeConfig    `yaml:"coffee"`
	Pulse     PulseConfig     `yaml:"pulse"`
	Checkin   CheckinConfig   `yaml:"checkin"`
	Quote     QuoteConfig     `yaml:"quote"`
	Benched   BenchedConfig   `yaml:"benched"`
}

type ContractsConfig struct {
	Board   Board           `yaml:"board"`
	Channel string          `yaml:"channel"`
	Layouts []string        `yaml:"layouts,omitempty"`
	Policy  classify.Policy `yaml:"policy"`
	Rules   []extract.Rule  `yaml:"rules"`
}

type JobsConfig struct {
	Board           Board              `yaml:"board"`
	Channel         string             `yaml:"channel"`
	Layouts         []string           `yaml:"layouts,omitempty"`
	Window          classify.JobWindow `yaml:"window"`
	AllowedStatuses []string           `yaml:"allowed_statuses"`
	Rules           []extract.Rule     `yaml:"rules"`
}

type BirthdaysConfig struct {
	Board   Board          `yaml:"board"`
	Channel string         `yaml:"channel"`
	Layouts []string       `yaml:"layouts,omitempty"`
	Rules   []extract.Rule `yaml:"rules"`
}

type WelcomeConfig struct {
	Board           Board          `yaml:"board"`
	Channel         string         `yaml:"channel"`
	Layouts         []string       `yaml:"layouts,omitempty"`
	DefaultPosition string         `yaml:"default_position"`
	DefaultProject  string         `yaml:"default_project"`
	PacketChannel   string         `yaml:"packet_channel"`
	Rules           []extract.Rule `yaml:"rules"`
}

type CoffeeConfig struct {
	Board   Board  `yaml:"board"`
	Channel string `yaml:"channel"`
	Meet    string `yaml:"meet"`
}

type PulseConfig struct {
	Board        Board         `yaml:"board"`
	ResultsUser  string        `yaml:"results_user"`
	SummaryDelay time.Duration `yaml:"summary_delay"`
}

type CheckinConfig struct {
	Channel string   `yaml:"channel"`
	Team    string   `yaml:"team"`
	Avoid   int      `yaml:"avoid"`
	Quotes  []string `yaml:"quotes"`
	Facts   []string `yaml:"facts"`
}

type QuoteConfig struct {
	Channel  string `yaml:"channel"`
	Audience string `yaml:"audience"`
	// Recent is how many past quotes go into the prompt
	Recent int `yaml:"recent"`
}

type BenchedConfig struct {
	Board Board `yaml:"board"`
}

// DefaultPath is the override file looked up when --config is not given
func DefaultPath() string {
	return filepath.Join(xdg.ConfigHome, "teambots", "config.yaml")
}

// Default returns the embedded defaults without env or override file
func Default() (*Config, error) {
	data, err := defaultConfigFS.ReadFile("default_config.yaml")
	if err != nil {
		return nil, fmt.Errorf("reading embedded config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded config: %w", err)
	}
	return &cfg, nil
}

// Load builds the configuration. An empty path falls back to DefaultPath,
// which may be absent; an explicit path must exist.
func Load(path string) (*Config, error) {
	cfg, err := Default()
	if err != nil {
		return nil, err
	}

	explicit := path != ""
	if !explicit {
		path = DefaultPath()
	}

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", path, err)
		}
	case errors.Is(err, fs.ErrNotExist) && !explicit:
	default:
		return nil, fmt.Errorf("reading config: %w", err)
	}

	cfg.applyEnv(os.Getenv)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func (c *Config) applyEnv(getenv func(string) string) {
	c.Monday.Token = getenv("MONDAY_API_TOKEN")
	c.Slack.Token = getenv("SLACK_BOT_TOKEN")
	c.Slack.WebhookURL = getenv("SLACK_WEBHOOK_URL")
	c.AI.AnthropicKey = getenv("ANTHROPIC_API_KEY")
	c.AI.GeminiKey = getenv("GEMINI_API_KEY")
	c.Embedding.APIKey = getenv("VOYAGE_API_KEY")
}

// Validate checks the parts of the configuration a run depends on
func (c *Config) Validate() error {
	switch c.AI.Provider {
	case "anthropic", "gemini":
	default:
		return fmt.Errorf("ai.provider: unknown provider %q (valid: anthropic, gemini)", c.AI.Provider)
	}
	if c.History.Limit < 1 || c.History.Limit > 500 {
		return fmt.Errorf("history.limit: must be within 1..500, got %d", c.History.Limit)
	}
	if c.UTCOffsetHours < -12 || c.UTCOffsetHours > 14 {
		return fmt.Errorf("utc_offset_hours: out of range: %d", c.UTCOffsetHours)
	}
	if c.Embedding.Enabled && (c.Embedding.MaxSimilarity <= 0 || c.Embedding.MaxSimilarity > 1) {
		return fmt.Errorf("embedding.max_similarity: must be within (0, 1], got %g", c.Embedding.MaxSimilarity)
	}
	if c.Slack.RetryAttempts < 1 {
		return fmt.Errorf("slack.retry_attempts: must be at least 1")
	}

	if err := c.Bots.Contracts.Policy.Validate(); err != nil {
		return fmt.Errorf("bots.contracts.policy: %w", err)
	}
	if c.Bots.Jobs.Window.StaleDays <= c.Bots.Jobs.Window.NewDays {
		return fmt.Errorf("bots.jobs.window: stale_days must exceed new_days")
	}

	tables := map[string][]extract.Rule{
		"contracts": c.Bots.Contracts.Rules,
		"jobs":      c.Bots.Jobs.Rules,
		"birthdays": c.Bots.Birthdays.Rules,
		"welcome":   c.Bots.Welcome.Rules,
	}
	for bot, rules := range tables {
		if err := validateRules(rules); err != nil {
			return fmt.Errorf("bots.%s.rules: %w", bot, err)
		}
	}

	boards := map[string]string{
		"contracts": c.Bots.Contracts.Board.ID,
		"jobs":      c.Bots.Jobs.Board.ID,
		"birthdays": c.Bots.Birthdays.Board.ID,
		"welcome":   c.Bots.Welcome.Board.ID,
		"coffee":    c.Bots.Coffee.Board.ID,
		"pulse":     c.Bots.Pulse.Board.ID,
		"benched":   c.Bots.Benched.Board.ID,
	}
	for bot, id := range boards {
		if strings.TrimSpace(id) == "" {
			return fmt.Errorf("bots.%s.board.id: required", bot)
		}
	}
	return nil
}

func validateRules(rules []extract.Rule) error {
	for i, r := range rules {
		if _, err := domain.ParseAttr(string(r.Attr)); err != nil {
			return fmt.Errorf("rule %d: %w", i, err)
		}
		if len(r.Match) == 0 {
			return fmt.Errorf("rule %d (%s): no matchers", i, r.Attr)
		}
		for j, m := range r.Match {
			if m.ID == "" && len(m.IDContains) == 0 && m.Label == "" {
				return fmt.Errorf("rule %d (%s): matcher %d is empty", i, r.Attr, j)
			}
		}
	}
	return nil
}

// HistoryPath returns where bot keeps its history
func (c *Config) HistoryPath(bot string) (string, error) {
	p := c.History.Path
	switch strings.ToLower(filepath.Ext(p)) {
	case ".db", ".sqlite", ".sqlite3":
		return p, nil
	}
	if p == "" {
		return history.DefaultPath(bot)
	}
	return filepath.Join(p, bot+"_history.json"), nil
}
