package monday

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/pbaille/teambots/internal/domain"
)

const DefaultURL = "https://api.monday.com/v2"

// APIError is returned when the GraphQL response carries errors
type APIError struct {
	Messages []string
}

func (e *APIError) Error() string {
	return "monday api error: " + strings.Join(e.Messages, "; ")
}

// ShapeError is returned when the response lacks the expected nesting.
// Payload holds the raw body for diagnostics.
type ShapeError struct {
	Path    string
	Payload []byte
}

func (e *ShapeError) Error() string {
	return fmt.Sprintf("unexpected response shape: missing %s", e.Path)
}

// Client talks to the board GraphQL endpoint
type Client struct {
	url    string
	token  string
	client *http.Client
	log    *zap.Logger
}

// New creates a Client. An empty url uses DefaultURL.
func New(url, token string, timeout time.Duration, log *zap.Logger) (*Client, error) {
	if token == "" {
		return nil, fmt.Errorf("MONDAY_API_TOKEN environment variable not set")
	}
	if url == "" {
		url = DefaultURL
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		url:    url,
		token:  token,
		client: &http.Client{Timeout: timeout},
		log:    log,
	}, nil
}

// Groups fetches the groups of one board with their items
func (c *Client) Groups(ctx context.Context, q BoardQuery) ([]domain.Group, error) {
	body, err := c.call(ctx, q.String())
	if err != nil {
		return nil, err
	}

	var resp struct {
		Data *struct {
			Boards []struct {
				Groups []wireGroup `json:"groups"`
			} `json:"boards"`
		} `json:"data"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("unmarshal response: %w", err)
	}
	if resp.Data == nil || len(resp.Data.Boards) == 0 {
		return nil, c.shapeError("data.boards[0]", body)
	}

	wg := resp.Data.Boards[0].Groups
	groups := make([]domain.Group, 0, len(wg))
	for _, g := range wg {
		page := g.ItemsPage
		for page.Cursor != "" {
			next, err := c.nextPage(ctx, q, page.Cursor)
			if err != nil {
				return nil, fmt.Errorf("group %s: %w", g.ID, err)
			}
			c.log.Debug("Fetched next page", zap.String("group", g.ID), zap.Int("items", len(next.Items)))
			g.ItemsPage.Items = append(g.ItemsPage.Items, next.Items...)
			page = next
		}
		groups = append(groups, g.toDomain())
	}

	items := 0
	for _, g := range groups {
		items += len(g.Items)
	}
	c.log.Debug("Fetched board",
		zap.String("board", q.BoardID),
		zap.Int("groups", len(groups)),
		zap.Int("items", items))

	return groups, nil
}

func (c *Client) nextPage(ctx context.Context, q BoardQuery, cursor string) (wirePage, error) {
	body, err := c.call(ctx, q.NextPage(cursor))
	if err != nil {
		return wirePage{}, err
	}
	var resp struct {
		Data *struct {
			NextItemsPage *wirePage `json:"next_items_page"`
		} `json:"data"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return wirePage{}, fmt.Errorf("unmarshal response: %w", err)
	}
	if resp.Data == nil || resp.Data.NextItemsPage == nil {
		return wirePage{}, c.shapeError("data.next_items_page", body)
	}
	return *resp.Data.NextItemsPage, nil
}

// Columns lists a board's columns
func (c *Client) Columns(ctx context.Context, boardID string) ([]domain.Column, error) {
	body, err := c.call(ctx, ColumnsQuery(boardID))
	if err != nil {
		return nil, err
	}

	var resp struct {
		Data *struct {
			Boards []struct {
				Columns []domain.Column `json:"columns"`
			} `json:"boards"`
		} `json:"data"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("unmarshal response: %w", err)
	}
	if resp.Data == nil || len(resp.Data.Boards) == 0 {
		return nil, c.shapeError("data.boards[0]", body)
	}
	return resp.Data.Boards[0].Columns, nil
}

func (c *Client) shapeError(path string, body []byte) error {
	c.log.Error("Unexpected response shape",
		zap.String("missing", path),
		zap.ByteString("payload", body))
	return &ShapeError{Path: path, Payload: body}
}

type apiRequest struct {
	Query string `json:"query"`
}

func (c *Client) call(ctx context.Context, query string) ([]byte, error) {
	jsonBody, err := json.Marshal(apiRequest{Query: query})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(jsonBody))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", c.token)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("api error (status %d): %s", resp.StatusCode, string(body))
	}

	var envelope struct {
		Errors []struct {
			Message string `json:"message"`
		} `json:"errors"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("unmarshal response: %w", err)
	}
	if len(envelope.Errors) > 0 {
		apiErr := &APIError{}
		for _, e := range envelope.Errors {
			apiErr.Messages = append(apiErr.Messages, e.Message)
		}
		c.log.Error("GraphQL errors", zap.Strings("errors", apiErr.Messages))
		return nil, apiErr
	}

	return body, nil
}

type wireGroup struct {
	ID        string   `json:"id"`
	Title     string   `json:"title"`
	ItemsPage wirePage `json:"items_page"`
}

// wirePage is one page of items; a null or empty cursor ends the listing
type wirePage struct {
	Cursor string     `json:"cursor"`
	Items  []wireItem `json:"items"`
}

type wireItem struct {
	ID           string            `json:"id"`
	Name         string            `json:"name"`
	ColumnValues []wireColumnValue `json:"column_values"`
}

type wireColumnValue struct {
	ID     string  `json:"id"`
	Text   *string `json:"text"`
	Value  *string `json:"value"`
	Column *struct {
		Title string `json:"title"`
	} `json:"column"`
}

func (g wireGroup) toDomain() domain.Group {
	out := domain.Group{ID: g.ID, Title: g.Title}
	for _, it := range g.ItemsPage.Items {
		item := domain.Item{ID: it.ID, Name: strings.TrimSpace(it.Name)}
		for _, cv := range it.ColumnValues {
			v := domain.ColumnValue{ID: cv.ID}
			if cv.Text != nil {
				v.Text = *cv.Text
			}
			if cv.Value != nil {
				v.Value = *cv.Value
			}
			if cv.Column != nil {
				v.Label = cv.Column.Title
			}
			item.ColumnValues = append(item.ColumnValues, v)
		}
		out.Items = append(out.Items, item)
	}
	return out
}
