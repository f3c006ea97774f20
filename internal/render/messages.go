package render

import (
	"fmt"
	"strings"
	"time"
)

// Benched renders the bench report, with a distinct message when nobody
// is benched.
func Benched(names []string, today time.Time) string {
	date := today.Format(longDate)
	if len(names) == 0 {
		return fmt.Sprintf(":white_check_mark: *Benched Employees Report - %s*\n\n"+
			"Great news! There are currently no employees on the bench.", date)
	}

	lines := make([]string, len(names))
	for i, n := range names {
		lines[i] = "• " + n
	}
	return fmt.Sprintf(":warning: *Benched Employees Report - %s*\n\n"+
		"The following employees are currently on the bench:\n\n%s\n\n"+
		"*Total: %d employee(s)*\n\n"+
		"_Please review and take appropriate action._",
		date, strings.Join(lines, "\n"), len(names))
}

func Birthday(name string) string {
	return fmt.Sprintf("🎂 *Happy Birthday, %s!* 🎉\n\n"+
		"Wishing you an amazing day filled with joy and celebration! Have a wonderful year ahead! 🎈", name)
}

// Welcome describes a new hire
type Welcome struct {
	Org           string
	Name          string
	Position      string
	Project       string
	StartDate     string
	Buddy         string
	PacketChannel string
}

func WelcomeMessage(w Welcome) string {
	var b strings.Builder
	fmt.Fprintf(&b, "🎉 *Welcome to %s, %s!* 🎉\n\n", w.Org, w.Name)
	b.WriteString("We're thrilled to have you join our team!\n\n")
	fmt.Fprintf(&b, "👤 *Role:* %s\n", w.Position)
	fmt.Fprintf(&b, "💼 *Project:* %s\n", w.Project)
	fmt.Fprintf(&b, "📅 *Start Date:* %s\n\n", w.StartDate)
	if w.Buddy != "" {
		fmt.Fprintf(&b, "🤝 *Buddy:* %s is working on the same project and will be your go-to person for questions and support!\n\n", w.Buddy)
	}
	if w.PacketChannel != "" {
		fmt.Fprintf(&b, "📋 Make sure to check out our Welcome Packet canvas in <#%s> for all the essentials to get you started!\n\n", w.PacketChannel)
	}
	b.WriteString("Welcome aboard! We're excited to see what you'll accomplish here! 🚀")
	return b.String()
}

// Coffee renders the coffee groups. meet is free text such as
// "8:30 AM on Thursday".
func Coffee(groups [][]string, meet string) string {
	var b strings.Builder
	b.WriteString("☕ *Coffee Dates Alert!* ☕\n\n")
	fmt.Fprintf(&b, "It's time to meet at %s! Here are your random coffee groups:\n\n", meet)
	for i, g := range groups {
		fmt.Fprintf(&b, "*Group %d:*\n", i+1)
		for _, p := range g {
			fmt.Fprintf(&b, "  • %s\n", p)
		}
		b.WriteString("\n")
	}
	fmt.Fprintf(&b, "_Connect with your group at %s for coffee ☕🍕💬_\n\n", meet)
	b.WriteString("Next pairings will be posted in two weeks!")
	return b.String()
}

func PulsePrompt(month, org string) string {
	return fmt.Sprintf(`📊 *Monthly Pulse Check - %s*

On a scale of 1 to 5, 5 being the highest:

*Would you recommend %s to your friend?*

Please reply with a number from 1 to 5:
- 1 ⭐ (Not likely)
- 2 ⭐⭐
- 3 ⭐⭐⭐ (Neutral)
- 4 ⭐⭐⭐⭐
- 5 ⭐⭐⭐⭐⭐ (Very likely)

_Your response is anonymous and helps us improve %s._`, month, org, org)
}

// maxListedFailures caps the names shown in the pulse summary
const maxListedFailures = 10

func PulseSummary(month string, sent int, failed []string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "📊 *Monthly Pulse Check Sent - %s*\n\n", month)
	fmt.Fprintf(&b, "✅ Sent to %d employees\n\n", sent)
	b.WriteString("_I'll send you the compiled results in 7 days. People will reply with their scores (1-5) to me via DM._")
	if len(failed) > 0 {
		shown := failed
		if len(shown) > maxListedFailures {
			shown = shown[:maxListedFailures]
		}
		fmt.Fprintf(&b, "\n\n⚠️ Failed to send to %d employees:\n%s", len(failed), strings.Join(shown, ", "))
		if len(failed) > maxListedFailures {
			fmt.Fprintf(&b, "\n...and %d more", len(failed)-maxListedFailures)
		}
	}
	return b.String()
}

// CheckinKind is what a weekday's check-in carries
type CheckinKind int

const (
	CheckinWeekend CheckinKind = iota
	CheckinQuote
	CheckinFact
)

// CheckinKindFor maps a weekday to its content
func CheckinKindFor(day time.Weekday) CheckinKind {
	switch day {
	case time.Monday, time.Wednesday, time.Friday:
		return CheckinQuote
	case time.Tuesday, time.Thursday:
		return CheckinFact
	}
	return CheckinWeekend
}

// Checkin renders the morning check-in for day. pick is the quote or fact;
// it is ignored on weekends.
func Checkin(team string, day time.Weekday, pick string) string {
	head := fmt.Sprintf("🌅 *Good morning, %s!*\n\n", team)
	const focus = "💭 *What's your main focus today?*\n\n"

	switch day {
	case time.Monday:
		return head + "✨ _" + pick + "_\n\n" + focus + "Drop your answer in the thread below! 👇"
	case time.Wednesday:
		return head + "💡 _" + pick + "_\n\n" + focus + "Share in the thread below! 👇"
	case time.Friday:
		return head + "🎉 *It's Friday!*\n\n✨ _" + pick + "_\n\n" + focus + "Share in the thread below! 👇"
	case time.Tuesday, time.Thursday:
		return head + "🎯 *Fun Fact of the Day:*\n" + pick + "\n\n" + focus + "Share in the thread below! 👇"
	}
	return head + fmt.Sprintf("😎 *Happy %s!*\n\nEnjoy your weekend and recharge! 💪", day)
}

func Quote(quote string) string {
	return fmt.Sprintf("☀️ *Daily Motivation*\n\n%s\n\n_Have a great day, team!_", quote)
}

// QuotePrompt asks for one new quote, listing recent ones to avoid
func QuotePrompt(audience string, recent []string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Generate one inspiring motivational quote for %s. ", audience)
	b.WriteString("Make it uplifting and relevant to their work helping people find careers. ")
	b.WriteString("Keep it concise (1-2 sentences). Don't include attribution or quotation marks.")
	if len(recent) > 0 {
		b.WriteString("\n\nDo not repeat or closely paraphrase any of these recent quotes:\n")
		for _, q := range recent {
			fmt.Fprintf(&b, "- %s\n", q)
		}
	}
	return b.String()
}
