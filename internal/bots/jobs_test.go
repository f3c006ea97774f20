package bots

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pbaille/teambots/internal/domain"
	"github.com/pbaille/teambots/internal/slack"
)

func jobItem(id, title, status, listed string) domain.Item {
	return item(id, title,
		col("people", "Recruiter", "Mia", ""),
		col("status7", "Role Status", status, ""),
		col("dropdown", "Client", "Acme", ""),
		col("dropdown_mkxfm4d1", "Top 5 skills", "Go, SQL", ""),
		col("date_1_mkn7ny21", "Job Listed", listed, ""),
	)
}

func TestJobsRun(t *testing.T) {
	board := &fakeBoard{groups: []domain.Group{
		{Title: "Active Recruitment", Items: []domain.Item{
			jobItem("j1", "Go Engineer", "In Progress", "2024-12-30"),
			jobItem("j2", "QA Lead", "Sales – New  Lead", "2024-09-01"),
			jobItem("j3", "PM", "Filled", "2024-12-31"),
			jobItem("j4", "Dev", "Need More Profiles", "2024-12-01"),
			jobItem("j5", "Ops", "In Progress", ""),
		}},
		{Title: "Closed", Items: []domain.Item{
			jobItem("j6", "Old", "In Progress", "2024-12-31"),
		}},
	}}
	rec := &slack.Recorder{}

	rep, err := runBot(t, "jobs", testConfig(t), testDeps(board, rec))
	require.NoError(t, err)
	assert.Equal(t, 5, rep.Items)
	assert.Equal(t, 2, rep.Matched)

	msgs := rec.Messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, "job-hirings", msgs[0].Target)

	text := msgs[0].Text
	assert.Contains(t, text, "🆕 *NEW JOBS THIS WEEK* (1)")
	assert.Contains(t, text, "💼 *Go Engineer*\n🏢 Client: *Acme*\n")
	assert.Contains(t, text, "🔗 View: https://adacahq.monday.com/boards/6239668497/pulses/j1\n")
	assert.Contains(t, text, "⏰ *STILL OPEN - NEED URGENT ATTENTION* (1)")
	assert.Contains(t, text, "⏳ Open for: *122 days*")
	assert.Contains(t, text, "📊 Role Status: Sales – New  Lead\n")
	for _, skipped := range []string{"PM", "Dev", "Ops", "Old"} {
		assert.NotContains(t, text, "💼 *"+skipped+"*")
	}
}

func TestJobsNothingToPost(t *testing.T) {
	board := &fakeBoard{groups: []domain.Group{{Title: "active recruitment", Items: []domain.Item{
		jobItem("j4", "Dev", "In Progress", "2024-12-01"),
	}}}}
	rec := &slack.Recorder{}

	rep, err := runBot(t, "jobs", testConfig(t), testDeps(board, rec))
	require.NoError(t, err)
	assert.NotEmpty(t, rep.Skipped)
	assert.Empty(t, rec.Messages())
}
