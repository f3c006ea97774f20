// Package dates parses the free-text dates found on boards and does the
// calendar arithmetic the bots need. Dates are civil dates: a time.Time at
// midnight UTC with no zone meaning attached.
package dates

import (
	"strings"
	"time"
)

// ISO is the normalised date layout
const ISO = "2006-01-02"

// Common layouts, most specific first. Month-first wins over day-first for
// ambiguous slash dates.
var (
	ContractLayouts = []string{
		"Jan 2, 2006",
		"January 2, 2006",
		"1/2/2006",
		"1/2/06",
		"2006-1-2",
		"2/1/2006",
		"2/1/06",
		"2006/1/2",
		"06/1/2",
	}
	JobLayouts = []string{
		"2006-1-2",
		"Jan 2, 2006",
		"January 2, 2006",
		"1/2/2006",
		"1/2/06",
		"2/1/2006",
		"2/1/06",
	}
	BirthdayLayouts = []string{
		"1/2/2006",
		"2006-1-2",
		"2/1/2006",
		"1-2-2006",
		"1/2/06",
	}
)

// ParseTime tries each layout in order and returns the first civil date
// that parses.
func ParseTime(text string, layouts []string) (time.Time, bool) {
	text = strings.TrimSpace(text)
	if text == "" {
		return time.Time{}, false
	}
	for _, layout := range layouts {
		t, err := time.Parse(layout, text)
		if err == nil {
			return civil(t), true
		}
	}
	return time.Time{}, false
}

// Parse normalises text to an ISO date, or returns "" when no layout matches
func Parse(text string, layouts []string) string {
	t, ok := ParseTime(text, layouts)
	if !ok {
		return ""
	}
	return t.Format(ISO)
}

// Location returns a fixed zone offsetHours east of UTC
func Location(offsetHours int) *time.Location {
	if offsetHours == 8 {
		return manila
	}
	return time.FixedZone("", offsetHours*3600)
}

var manila = time.FixedZone("Asia/Manila", 8*3600)

// Today is the civil date of now as seen in loc
func Today(now time.Time, loc *time.Location) time.Time {
	return civil(now.In(loc))
}

// DaysBetween returns the signed whole days from `from` to `to`
func DaysBetween(from, to time.Time) int {
	return int(civil(to).Sub(civil(from)).Hours() / 24)
}

// AddMonths adds n months, clamping the day to the end of the target month
func AddMonths(t time.Time, n int) time.Time {
	t = civil(t)
	first := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, n, 0)
	day := t.Day()
	if last := daysIn(first.Year(), first.Month()); day > last {
		day = last
	}
	return time.Date(first.Year(), first.Month(), day, 0, 0, 0, 0, time.UTC)
}

// SameMonthDay reports whether birth falls on today's month and day.
// Feb 29 is observed on Feb 28 in common years.
func SameMonthDay(birth, today time.Time) bool {
	if birth.Month() == time.February && birth.Day() == 29 && daysIn(today.Year(), time.February) == 28 {
		return today.Month() == time.February && today.Day() == 28
	}
	return birth.Month() == today.Month() && birth.Day() == today.Day()
}

// Long formats a date as "October 19, 2026"
func Long(t time.Time) string {
	return t.Format("January 2, 2006")
}

func daysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

func civil(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
