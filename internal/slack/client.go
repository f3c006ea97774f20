package slack

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	slackapi "github.com/slack-go/slack"
	"go.uber.org/zap"
)

const DefaultURL = "https://slack.com/api/"

// Publisher delivers a text message to a channel name or user id
type Publisher interface {
	Send(ctx context.Context, target, text string) error
}

// Directory lists the workspace members
type Directory interface {
	Users(ctx context.Context) ([]User, error)
}

// User is a workspace member as returned by users.list
type User struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	RealName string `json:"real_name"`
	Deleted  bool   `json:"deleted"`
	IsBot    bool   `json:"is_bot"`
	Profile  struct {
		DisplayName string `json:"display_name"`
	} `json:"profile"`
}

// APIError is a response with ok=false
type APIError struct {
	Method string
	Code   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("slack %s: %s", e.Method, e.Code)
}

// RateLimitError is returned for HTTP 429 or a "ratelimited" error code
type RateLimitError struct {
	Method     string
	RetryAfter time.Duration
	Err        error
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("slack %s: rate limited (retry after %s)", e.Method, e.RetryAfter)
}

func (e *RateLimitError) Unwrap() error { return e.Err }

// IsRateLimited reports whether err is a rate-limit response
func IsRateLimited(err error) bool {
	_, _, ok := rateLimit(err)
	return ok
}

// rateLimit extracts the method and server wait from a rate-limit error
func rateLimit(err error) (string, time.Duration, bool) {
	var rl *RateLimitError
	if errors.As(err, &rl) {
		return rl.Method, rl.RetryAfter, true
	}
	var sl *slackapi.RateLimitedError
	if errors.As(err, &sl) {
		return "", sl.RetryAfter, true
	}
	return "", 0, false
}

// wrapError maps slack-go errors onto APIError and RateLimitError
func wrapError(method string, err error) error {
	if err == nil {
		return nil
	}
	var sl *slackapi.RateLimitedError
	if errors.As(err, &sl) {
		return &RateLimitError{Method: method, RetryAfter: sl.RetryAfter, Err: err}
	}
	var resp slackapi.SlackErrorResponse
	if errors.As(err, &resp) {
		if resp.Err == "ratelimited" {
			return &RateLimitError{Method: method, Err: err}
		}
		return &APIError{Method: method, Code: resp.Err}
	}
	return fmt.Errorf("slack %s: %w", method, err)
}

// Client calls the Web API with a bot token
type Client struct {
	api   *slackapi.Client
	retry *Retrier
	log   *zap.Logger
}

// New creates a Client. An empty baseURL uses DefaultURL.
func New(baseURL, token string, timeout time.Duration, retry *Retrier, log *zap.Logger) (*Client, error) {
	if token == "" {
		return nil, fmt.Errorf("SLACK_BOT_TOKEN environment variable not set")
	}
	if baseURL == "" {
		baseURL = DefaultURL
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	if retry == nil {
		retry = NewRetrier(1, 0, log)
	}
	api := slackapi.New(token,
		slackapi.OptionAPIURL(strings.TrimSuffix(baseURL, "/")+"/"),
		slackapi.OptionHTTPClient(&http.Client{Timeout: timeout}),
	)
	return &Client{api: api, retry: retry, log: log}, nil
}

// Send posts text with chat.postMessage, link previews off. It makes a
// single attempt; callers that fan out wrap it in a Retrier.
func (c *Client) Send(ctx context.Context, target, text string) error {
	_, _, err := c.api.PostMessageContext(ctx, target,
		slackapi.MsgOptionText(text, false),
		slackapi.MsgOptionDisableLinkUnfurl(),
	)
	return wrapError("chat.postMessage", err)
}

// Users returns every member. Pagination and HTTP 429 waits happen inside
// slack-go; a "ratelimited" error code restarts the listing through the
// Retrier.
func (c *Client) Users(ctx context.Context) ([]User, error) {
	var members []slackapi.User
	err := c.retry.Do(ctx, func() error {
		var err error
		members, err = c.api.GetUsersContext(ctx)
		return wrapError("users.list", err)
	})
	if err != nil {
		return nil, err
	}

	users := make([]User, 0, len(members))
	for _, m := range members {
		u := User{
			ID:       m.ID,
			Name:     m.Name,
			RealName: m.RealName,
			Deleted:  m.Deleted,
			IsBot:    m.IsBot,
		}
		u.Profile.DisplayName = m.Profile.DisplayName
		users = append(users, u)
	}
	c.log.Info("Fetched workspace users", zap.Int("users", len(users)))
	return users, nil
}
