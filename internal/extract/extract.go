package extract

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/pbaille/teambots/internal/domain"
)

// Matcher selects a column by exact id, by id substrings (all must be
// present), or by exact label. Comparisons ignore case.
type Matcher struct {
	ID         string   `yaml:"id,omitempty"`
	IDContains []string `yaml:"id_contains,omitempty"`
	Label      string   `yaml:"label,omitempty"`
}

// Rule maps matching columns onto one canonical attribute. HTML marks
// rich-text columns whose markup is flattened; other text is kept as is.
type Rule struct {
	Attr  domain.Attr `yaml:"attr"`
	Match []Matcher   `yaml:"match"`
	HTML  bool        `yaml:"html,omitempty"`
}

// Matches reports whether the column satisfies this matcher
func (m Matcher) Matches(col domain.ColumnValue) bool {
	id := strings.ToLower(col.ID)
	switch {
	case m.ID != "":
		return id == strings.ToLower(m.ID)
	case len(m.IDContains) > 0:
		for _, part := range m.IDContains {
			if !strings.Contains(id, strings.ToLower(part)) {
				return false
			}
		}
		return true
	case m.Label != "":
		return strings.EqualFold(strings.TrimSpace(col.Label), strings.TrimSpace(m.Label))
	}
	return false
}

func (r Rule) matches(col domain.ColumnValue) bool {
	for _, m := range r.Match {
		if m.Matches(col) {
			return true
		}
	}
	return false
}

// Extract maps an item's columns onto canonical attributes.
//
// Columns are visited in order. The first rule (in table order) that
// matches a column claims it, and an attribute keeps the first non-empty
// value it receives. Ties between columns are therefore settled by column
// order, never by the later column.
func Extract(columns []domain.ColumnValue, rules []Rule) domain.Fields {
	fields := make(domain.Fields)
	for _, col := range columns {
		for _, rule := range rules {
			if !rule.matches(col) {
				continue
			}
			if _, taken := fields[rule.Attr]; !taken {
				if v := columnText(col, rule.HTML); v != "" {
					fields[rule.Attr] = v
				}
			}
			break
		}
	}
	return fields
}

func columnText(col domain.ColumnValue, rich bool) string {
	text := strings.TrimSpace(col.Text)
	if rich {
		text = PlainText(text)
	}
	if text != "" {
		return text
	}
	return ValueText(col.Value)
}

// valueKeys are the raw value fields tried, in order, when a column has no
// text rendering.
var valueKeys = []string{"date", "text", "label", "number"}

// ValueText pulls a printable value out of a column's raw JSON value
func ValueText(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" || raw == "null" {
		return ""
	}

	var obj map[string]any
	if err := json.Unmarshal([]byte(raw), &obj); err != nil {
		var s string
		if json.Unmarshal([]byte(raw), &s) == nil {
			return strings.TrimSpace(s)
		}
		return ""
	}

	for _, key := range valueKeys {
		switch v := obj[key].(type) {
		case string:
			if s := strings.TrimSpace(v); s != "" {
				return s
			}
		case float64:
			return strconv.FormatFloat(v, 'f', -1, 64)
		case map[string]any:
			if s, ok := v["text"].(string); ok && strings.TrimSpace(s) != "" {
				return strings.TrimSpace(s)
			}
		}
	}
	return ""
}

// GroupFilter selects board groups by exact title or by keyword sets.
// A group matches a keyword set when its title contains every keyword.
// A title containing any of Excludes is rejected before the other checks.
// A filter with no titles or keywords selects every group not excluded.
type GroupFilter struct {
	Titles   []string   `yaml:"titles,omitempty"`
	Keywords [][]string `yaml:"keywords,omitempty"`
	Excludes []string   `yaml:"excludes,omitempty"`
}

// Empty reports whether the filter selects everything
func (f GroupFilter) Empty() bool {
	return len(f.Titles) == 0 && len(f.Keywords) == 0 && len(f.Excludes) == 0
}

// Matches reports whether a group title passes the filter
func (f GroupFilter) Matches(title string) bool {
	t := strings.ToLower(strings.TrimSpace(title))
	for _, ex := range f.Excludes {
		if ex = strings.ToLower(strings.TrimSpace(ex)); ex != "" && strings.Contains(t, ex) {
			return false
		}
	}
	if len(f.Titles) == 0 && len(f.Keywords) == 0 {
		return true
	}
	for _, want := range f.Titles {
		if t == strings.ToLower(strings.TrimSpace(want)) {
			return true
		}
	}
	for _, set := range f.Keywords {
		if len(set) == 0 {
			continue
		}
		all := true
		for _, kw := range set {
			if !strings.Contains(t, strings.ToLower(kw)) {
				all = false
				break
			}
		}
		if all {
			return true
		}
	}
	return false
}

// Select returns the groups that pass the filter, in board order
func (f GroupFilter) Select(groups []domain.Group) []domain.Group {
	var out []domain.Group
	for _, g := range groups {
		if f.Matches(g.Title) {
			out = append(out, g)
		}
	}
	return out
}
