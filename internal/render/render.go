// Package render turns classified records into Slack mrkdwn messages.
package render

import (
	"strings"
	"time"
)

const (
	rule      = "━━━━━━━━━━━━━━━━━━━━━"
	na        = "N/A"
	noProject = "No Project"

	// longDate is the zero-padded long form used in message bodies
	longDate = "January 02, 2006"
)

// LongDate formats t the way message bodies show dates
func LongDate(t time.Time) string {
	return t.Format(longDate)
}

func orNA(s string) string {
	if strings.TrimSpace(s) == "" {
		return na
	}
	return s
}
