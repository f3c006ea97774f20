package monday

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	c, err := New(srv.URL, "token-123", 5*time.Second, zap.NewNop())
	require.NoError(t, err)
	return c
}

const boardResponse = `{
  "data": {
    "boards": [{
      "groups": [{
        "id": "topics",
        "title": "Active Employees",
        "items_page": {"items": [{
          "id": "101",
          "name": " Den Cruz ",
          "column_values": [
            {"id": "position", "text": "Engineer", "value": null, "column": {"title": "Position"}},
            {"id": "date_4", "text": null, "value": "{\"date\":\"2025-01-06\"}", "column": {"title": "Start Date"}}
          ]
        }]}
      }]
    }]
  }
}`

func TestGroups(t *testing.T) {
	var gotQuery string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "token-123", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		var req apiRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		gotQuery = req.Query
		w.Write([]byte(boardResponse))
	})

	groups, err := c.Groups(t.Context(), BoardQuery{BoardID: "6329303796", Limit: 500, Columns: true})
	require.NoError(t, err)

	assert.Contains(t, gotQuery, "boards(ids: 6329303796)")
	assert.Contains(t, gotQuery, "items_page(limit: 500)")
	assert.Contains(t, gotQuery, "column { title }")

	require.Len(t, groups, 1)
	assert.Equal(t, "Active Employees", groups[0].Title)
	require.Len(t, groups[0].Items, 1)
	item := groups[0].Items[0]
	assert.Equal(t, "Den Cruz", item.Name)
	assert.Equal(t, "101", item.ID)
	require.Len(t, item.ColumnValues, 2)
	assert.Equal(t, "Position", item.ColumnValues[0].Label)
	assert.Equal(t, "Engineer", item.ColumnValues[0].Text)
	assert.Equal(t, "", item.ColumnValues[1].Text)
	assert.Equal(t, `{"date":"2025-01-06"}`, item.ColumnValues[1].Value)
}

func TestGroupsFollowsCursor(t *testing.T) {
	var queries []string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var req apiRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		queries = append(queries, req.Query)
		switch len(queries) {
		case 1:
			w.Write([]byte(`{"data":{"boards":[{"groups":[{"id":"g1","title":"Active Employees","items_page":{"cursor":"c1","items":[{"id":"1","name":"Ann"}]}}]}]}}`))
		case 2:
			w.Write([]byte(`{"data":{"next_items_page":{"cursor":"c2","items":[{"id":"2","name":"Bob"}]}}}`))
		default:
			w.Write([]byte(`{"data":{"next_items_page":{"cursor":null,"items":[{"id":"3","name":"Cy"}]}}}`))
		}
	})

	groups, err := c.Groups(t.Context(), BoardQuery{BoardID: "1", Limit: 1})
	require.NoError(t, err)
	require.Len(t, queries, 3)
	assert.Contains(t, queries[0], "cursor")
	assert.Contains(t, queries[1], `next_items_page(limit: 1, cursor: "c1")`)
	assert.Contains(t, queries[2], `cursor: "c2"`)

	require.Len(t, groups, 1)
	var names []string
	for _, it := range groups[0].Items {
		names = append(names, it.Name)
	}
	assert.Equal(t, []string{"Ann", "Bob", "Cy"}, names)
}

func TestGroupsNextPageShape(t *testing.T) {
	calls := 0
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			w.Write([]byte(`{"data":{"boards":[{"groups":[{"id":"g1","title":"T","items_page":{"cursor":"c1","items":[]}}]}]}}`))
			return
		}
		w.Write([]byte(`{"data":{}}`))
	})

	_, err := c.Groups(t.Context(), BoardQuery{BoardID: "1"})
	var shapeErr *ShapeError
	require.True(t, errors.As(err, &shapeErr))
	assert.Equal(t, "data.next_items_page", shapeErr.Path)
}

func TestGroupsGraphQLErrors(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"errors":[{"message":"Field 'foo' doesn't exist"}]}`))
	})

	_, err := c.Groups(t.Context(), BoardQuery{BoardID: "1"})
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, []string{"Field 'foo' doesn't exist"}, apiErr.Messages)
}

func TestGroupsMissingBoard(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data":{"boards":[]}}`))
	})

	_, err := c.Groups(t.Context(), BoardQuery{BoardID: "1"})
	var shapeErr *ShapeError
	require.True(t, errors.As(err, &shapeErr))
	assert.Equal(t, "data.boards[0]", shapeErr.Path)
	assert.Contains(t, string(shapeErr.Payload), `"boards":[]`)
}

func TestGroupsHTTPStatus(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
	})

	_, err := c.Groups(t.Context(), BoardQuery{BoardID: "1"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 401")
}

func TestColumns(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data":{"boards":[{"columns":[{"id":"status7","title":"Role Status","type":"status"}]}]}}`))
	})

	cols, err := c.Columns(t.Context(), "6239668497")
	require.NoError(t, err)
	require.Len(t, cols, 1)
	assert.Equal(t, "status7", cols[0].ID)
	assert.Equal(t, "Role Status", cols[0].Title)
	assert.Equal(t, "status", cols[0].Type)
}

func TestNewRequiresToken(t *testing.T) {
	_, err := New("", "", 0, zap.NewNop())
	assert.Error(t, err)
}

func TestBoardQueryString(t *testing.T) {
	q := BoardQuery{BoardID: "6329303796", GroupIDs: []string{"not_active_employees__bench_"}}.String()
	assert.Contains(t, q, `groups(ids: ["not_active_employees__bench_"])`)
	assert.Contains(t, q, "items_page {")
	assert.NotContains(t, q, "column_values")
}

func TestBoardQueryNextPage(t *testing.T) {
	q := BoardQuery{BoardID: "1", Limit: 500, Columns: true}.NextPage("abc")
	assert.Contains(t, q, `next_items_page(limit: 500, cursor: "abc") {`)
	assert.Contains(t, q, "column { title }")
	assert.Contains(t, q, "    cursor\n")
}

func TestItemURL(t *testing.T) {
	assert.Equal(t, "https://acme.monday.com/boards/42/pulses/7", ItemURL("https://acme.monday.com/", "42", "7"))
}
