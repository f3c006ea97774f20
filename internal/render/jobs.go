package render

import (
	"fmt"
	"strings"

	"github.com/pbaille/teambots/internal/domain"
)

// JobLine is a listing ready to render
type JobLine struct {
	Job     domain.Job
	AgeDays int
	URL     string
}

// Jobs renders the weekly job alert. It returns "" when both lists are
// empty.
func Jobs(fresh, stale []JobLine, staleDays int) string {
	if len(fresh) == 0 && len(stale) == 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString("🎯 *WEEKLY JOB ALERTS* 🎯\n\n")

	if len(fresh) > 0 {
		fmt.Fprintf(&b, "🆕 *NEW JOBS THIS WEEK* (%d)\n\n", len(fresh))
		for _, j := range fresh {
			b.WriteString(rule + "\n")
			fmt.Fprintf(&b, "💼 *%s*\n", j.Job.Title)
			jobDetails(&b, j, false)
			fmt.Fprintf(&b, "📅 Posted: %s\n", j.Job.ListedAt.Format(longDate))
			fmt.Fprintf(&b, "📊 Role Status: %s\n", orNA(j.Job.RoleStatus))
			fmt.Fprintf(&b, "🔗 View: %s\n\n", j.URL)
		}
	}

	if len(stale) > 0 {
		fmt.Fprintf(&b, "\n⏰ *STILL OPEN - NEED URGENT ATTENTION* (%d)\n", len(stale))
		fmt.Fprintf(&b, "_These positions have been open for %d+ days_\n\n", staleDays)
		for _, j := range stale {
			b.WriteString(rule + "\n")
			fmt.Fprintf(&b, "💼 *%s* ⚠️\n", j.Job.Title)
			jobDetails(&b, j, true)
			fmt.Fprintf(&b, "📅 Originally Posted: %s\n", j.Job.ListedAt.Format(longDate))
			fmt.Fprintf(&b, "📊 Role Status: %s\n", orNA(j.Job.RoleStatus))
			fmt.Fprintf(&b, "🔗 View: %s\n\n", j.URL)
		}
	}

	b.WriteString(rule + "\n")
	b.WriteString("📊 *Summary*\n")
	fmt.Fprintf(&b, "🆕 New jobs: %d\n", len(fresh))
	fmt.Fprintf(&b, "⏰ Still open (%d+ days): %d\n", staleDays, len(stale))
	fmt.Fprintf(&b, "📋 Total: %d position(s)\n", len(fresh)+len(stale))
	b.WriteString("\n💪 Let's find amazing talent for these roles!")
	return b.String()
}

func jobDetails(b *strings.Builder, j JobLine, showAge bool) {
	if j.Job.Client != "" {
		fmt.Fprintf(b, "🏢 Client: *%s*\n", j.Job.Client)
	}
	if showAge {
		fmt.Fprintf(b, "⏳ Open for: *%d days*\n", j.AgeDays)
	}
	if j.Job.Location != "" {
		fmt.Fprintf(b, "📍 Location: %s\n", j.Job.Location)
	}
	switch {
	case j.Job.TopSkills != "":
		fmt.Fprintf(b, "⭐ Top 5 Skills: %s\n", j.Job.TopSkills)
	case j.Job.Skills != "":
		fmt.Fprintf(b, "🎓 Skills: %s\n", j.Job.Skills)
	}
	if j.Job.Recruiter != "" {
		fmt.Fprintf(b, "👤 Recruiter: %s\n", j.Job.Recruiter)
	}
}
