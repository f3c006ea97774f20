package monday

import (
	"fmt"
	"strconv"
	"strings"
)

// BoardQuery describes which part of a board to fetch
type BoardQuery struct {
	BoardID  string
	GroupIDs []string
	// Limit is the page size; later pages are fetched by cursor
	Limit int
	// Columns requests column values; name-only bots leave it off
	Columns bool
}

// String renders the GraphQL query
func (q BoardQuery) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "query {\n  boards(ids: %s) {\n", q.BoardID)

	sb.WriteString("    groups")
	if len(q.GroupIDs) > 0 {
		quoted := make([]string, len(q.GroupIDs))
		for i, id := range q.GroupIDs {
			quoted[i] = strconv.Quote(id)
		}
		fmt.Fprintf(&sb, "(ids: [%s])", strings.Join(quoted, ", "))
	}
	sb.WriteString(" {\n      id\n      title\n      items_page")
	if q.Limit > 0 {
		fmt.Fprintf(&sb, "(limit: %d)", q.Limit)
	}
	sb.WriteString(" {\n")
	q.writeItems(&sb, "        ")
	sb.WriteString("      }\n    }\n  }\n}")
	return sb.String()
}

// NextPage renders the query for the page after cursor
func (q BoardQuery) NextPage(cursor string) string {
	var sb strings.Builder
	sb.WriteString("query {\n  next_items_page(")
	if q.Limit > 0 {
		fmt.Fprintf(&sb, "limit: %d, ", q.Limit)
	}
	fmt.Fprintf(&sb, "cursor: %s) {\n", strconv.Quote(cursor))
	q.writeItems(&sb, "    ")
	sb.WriteString("  }\n}")
	return sb.String()
}

func (q BoardQuery) writeItems(sb *strings.Builder, indent string) {
	fmt.Fprintf(sb, "%scursor\n%sitems {\n%s  id\n%s  name\n", indent, indent, indent, indent)
	if q.Columns {
		fmt.Fprintf(sb, "%s  column_values {\n%s    id\n%s    text\n%s    value\n%s    column { title }\n%s  }\n",
			indent, indent, indent, indent, indent, indent)
	}
	fmt.Fprintf(sb, "%s}\n", indent)
}

// ColumnsQuery lists the columns of a board
func ColumnsQuery(boardID string) string {
	return fmt.Sprintf("query {\n  boards(ids: %s) {\n    columns {\n      id\n      title\n      type\n    }\n  }\n}", boardID)
}

// ItemURL links to an item on the web UI
func ItemURL(accountURL, boardID, itemID string) string {
	return fmt.Sprintf("%s/boards/%s/pulses/%s", strings.TrimRight(accountURL, "/"), boardID, itemID)
}
