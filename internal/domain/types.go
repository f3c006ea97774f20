package domain

import (
	"fmt"
	"strings"
	"time"
)

// Group is a named section of a board
type Group struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Items []Item `json:"items"`
}

// Item is one row of a board
type Item struct {
	ID           string        `json:"id"`
	Name         string        `json:"name"`
	ColumnValues []ColumnValue `json:"column_values"`
}

// ColumnValue is one field of an item. Value holds the raw JSON
// encoding the board keeps for structured columns (dates, people).
type ColumnValue struct {
	ID    string `json:"id"`
	Label string `json:"label"`
	Text  string `json:"text"`
	Value string `json:"value,omitempty"`
}

// Column describes a board column
type Column struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Type  string `json:"type"`
}

// Attr is a canonical record attribute name
type Attr string

const (
	AttrPosition       Attr = "position"
	AttrProject        Attr = "project"
	AttrStartDate      Attr = "start_date"
	AttrEndDate        Attr = "end_date"
	AttrDurationMonths Attr = "duration_months"
	AttrContractStatus Attr = "contract_status"
	AttrFirstName      Attr = "first_name"
	AttrLastName       Attr = "last_name"
	AttrBirthDate      Attr = "birth_date"
	AttrRecruiter      Attr = "recruiter"
	AttrHiringStatus   Attr = "hiring_status"
	AttrRoleStatus     Attr = "role_status"
	AttrClient         Attr = "client"
	AttrLocation       Attr = "location"
	AttrSkills         Attr = "skills"
	AttrTopSkills      Attr = "top_skills"
	AttrListedDate     Attr = "listed_date"
)

var knownAttrs = map[Attr]bool{
	AttrPosition: true, AttrProject: true, AttrStartDate: true, AttrEndDate: true,
	AttrDurationMonths: true, AttrContractStatus: true, AttrFirstName: true,
	AttrLastName: true, AttrBirthDate: true, AttrRecruiter: true,
	AttrHiringStatus: true, AttrRoleStatus: true, AttrClient: true,
	AttrLocation: true, AttrSkills: true, AttrTopSkills: true, AttrListedDate: true,
}

// ParseAttr validates a configured attribute name
func ParseAttr(s string) (Attr, error) {
	a := Attr(strings.ToLower(strings.TrimSpace(s)))
	if !knownAttrs[a] {
		return "", fmt.Errorf("unknown attribute %q", s)
	}
	return a, nil
}

// UnmarshalText lets config files name attributes directly
func (a *Attr) UnmarshalText(b []byte) error {
	parsed, err := ParseAttr(string(b))
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}

// Fields holds the extracted attribute values of one item
type Fields map[Attr]string

// Get returns the value or "" when absent
func (f Fields) Get(a Attr) string {
	return f[a]
}

// Category is a classification bucket
type Category struct {
	Key    string `json:"key" yaml:"key"`
	Label  string `json:"label" yaml:"label"`
	Marker string `json:"marker,omitempty" yaml:"marker"`
	Short  string `json:"short,omitempty" yaml:"short"` // summary label
}

// Contract is an employee contract with a known end date
type Contract struct {
	Name     string
	Position string
	Project  string
	Status   string
	EndDate  time.Time
}

// Job is an open position on the recruitment board
type Job struct {
	ID         string
	Title      string
	Recruiter  string
	Status     string
	RoleStatus string
	Client     string
	Location   string
	Skills     string
	TopSkills  string
	ListedAt   time.Time
}

// Person is a member of staff as read from the employee board
type Person struct {
	Name      string
	Position  string
	Project   string
	StartDate string // ISO date or ""
	BirthDate string // ISO date or ""
}
