package render

import (
	"fmt"
	"sort"
	"strings"

	"github.com/pbaille/teambots/internal/classify"
	"github.com/pbaille/teambots/internal/dates"
	"github.com/pbaille/teambots/internal/domain"
)

// ProjectGroup is the contracts of one project, most urgent first
type ProjectGroup struct {
	Project   string
	Contracts []classify.Classified[domain.Contract]
}

// GroupByProject groups contracts by project. Groups are sorted by name,
// with an empty project shown as "No Project" and sorted by that label.
func GroupByProject(items []classify.Classified[domain.Contract]) []ProjectGroup {
	byProject := make(map[string][]classify.Classified[domain.Contract])
	for _, c := range items {
		p := strings.TrimSpace(c.Item.Project)
		if p == "" {
			p = noProject
		}
		byProject[p] = append(byProject[p], c)
	}

	groups := make([]ProjectGroup, 0, len(byProject))
	for p, cs := range byProject {
		classify.SortByUrgency(cs, func(c domain.Contract) string { return c.Name })
		groups = append(groups, ProjectGroup{Project: p, Contracts: cs})
	}
	sort.Slice(groups, func(i, j int) bool { return groups[i].Project < groups[j].Project })
	return groups
}

// ContractLine renders one contract block
func ContractLine(c classify.Classified[domain.Contract]) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s - %s\n", c.Category.Marker, orNA(c.Item.Name), orNA(c.Item.Position))
	fmt.Fprintf(&b, "   Contract End Date: %s (%s)\n", c.Date.Format(dates.ISO), c.Category.Label)
	if c.Days >= 0 {
		fmt.Fprintf(&b, "   Days remaining: %d\n", c.Days)
	} else {
		fmt.Fprintf(&b, "   Expired %d days ago\n", -c.Days)
	}
	fmt.Fprintf(&b, "   Status: %s\n", orNA(c.Item.Status))
	return b.String()
}

// Contracts renders the full alert. It returns "" when there is nothing to
// report. cats gives the summary order.
func Contracts(items []classify.Classified[domain.Contract], cats []domain.Category) string {
	if len(items) == 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString("🚦 *CONTRACT EXPIRATION ALERTS* 🚦\n\n")
	for _, g := range GroupByProject(items) {
		fmt.Fprintf(&b, "📁 *%s*\n", g.Project)
		for _, c := range g.Contracts {
			b.WriteString(ContractLine(c))
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	counts := classify.Counts(items)
	b.WriteString(rule + "\n")
	b.WriteString("📊 *Summary*\n")
	for _, cat := range cats {
		label := cat.Short
		if label == "" {
			label = cat.Label
		}
		fmt.Fprintf(&b, "%s %s: %d\n", cat.Marker, label, counts[cat.Key])
	}
	fmt.Fprintf(&b, "📋 Total contracts to review: %d\n", len(items))
	b.WriteString(rule + "\n")
	b.WriteString("💼 Please review and take necessary action for contract renewals.")
	return b.String()
}
