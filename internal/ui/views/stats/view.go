package stats

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"readtrack/internal/modules/stats/domain"
	statsdto "readtrack/internal/modules/stats/dto"
	"readtrack/internal/ui/components"
	"readtrack/internal/ui/theme"
)

const (
	barWidth   = 24
	dailyShown = 7
)

// Render lays out a report for printing. width <= 0 means unbounded.
func Render(out statsdto.ReportOutput, width int) string {
	r := out.Report
	left := lipgloss.JoinVertical(lipgloss.Left,
		section("Overview", overview(r)),
		section("Level", level(r)),
		section("Next goal", goal(r)),
	)
	right := lipgloss.JoinVertical(lipgloss.Left,
		section(fmt.Sprintf("Last %d days", min(dailyShown, len(r.Daily))), daily(r)),
		section("Top categories", top(r)),
		section("Time of day", timeOfDay(r)),
	)
	body := lipgloss.JoinHorizontal(lipgloss.Top, left, "  ", right)
	if width > 0 && lipgloss.Width(body) > width {
		body = lipgloss.JoinVertical(lipgloss.Left, left, right)
	}
	parts := []string{theme.Title.Render("Reading statistics · " + r.Today), body}
	if len(r.Achievements) > 0 {
		parts = append(parts, section("Achievements", achievements(r)))
	}
	if out.Tip != "" {
		parts = append(parts, theme.Muted.Render("Tip: "+out.Tip))
	}
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func section(title, body string) string {
	return theme.Pane.Render(theme.Hot.Render(title) + "\n" + body)
}

func overview(r domain.Report) string {
	rows := [][2]string{
		{"Streak", fmt.Sprintf("%d days", r.Streak)},
		{"Notes", fmt.Sprint(r.Lifetime.Notes)},
		{"Categories", fmt.Sprint(r.Lifetime.Categories)},
		{"Sessions", fmt.Sprint(r.Lifetime.Sessions)},
		{"Reading time", formatSeconds(r.Lifetime.Seconds)},
		{"Notes per day", fmt.Sprintf("%.1f", r.Averages.NotesPerDay)},
		{"Per session", formatSeconds(r.Averages.SecondsPerSession)},
	}
	if r.BusiestReadingDay.Seconds > 0 {
		rows = append(rows, [2]string{"Busiest day", r.BusiestReadingDay.Date})
	}
	return table(rows)
}

func level(r domain.Report) string {
	lvl := r.Level
	line := fmt.Sprintf("%d · %s", lvl.Number, lvl.Title)
	if lvl.Max {
		return line + "\n" + theme.Good.Render("maximum level")
	}
	bar := components.Bar(float64(lvl.XP), domain.NotesPerLevel, barWidth)
	next := fmt.Sprintf("%d/%d notes to level %d", lvl.XP, domain.NotesPerLevel, lvl.Number+1)
	if r.Forecast.LevelReachable {
		next += fmt.Sprintf(", ~%d days", r.Forecast.DaysToNextLevel)
	}
	out := line + "\n" + bar + "\n" + theme.Muted.Render(next)
	if lvl.NextTitle != "" {
		out += "\n" + theme.Muted.Render(fmt.Sprintf("%s at %d notes", lvl.NextTitle, lvl.NextTierAt))
	}
	return out
}

func goal(r domain.Report) string {
	g := r.Goal
	out := g.Title + "\n" + components.Bar(float64(g.Current), float64(g.Target), barWidth) +
		fmt.Sprintf(" %3.0f%%", g.Progress()*100)
	if r.Forecast.GoalReachable {
		out += "\n" + theme.Muted.Render(fmt.Sprintf("~%d days at the current pace", r.Forecast.DaysToGoal))
	} else {
		out += "\n" + theme.Muted.Render("write a note to get a forecast")
	}
	return out
}

func daily(r domain.Report) string {
	days := r.Daily
	if len(days) > dailyShown {
		days = days[len(days)-dailyShown:]
	}
	var maxSeconds float64
	for _, d := range days {
		maxSeconds = max(maxSeconds, d.Seconds)
	}
	lines := make([]string, 0, len(days))
	for _, d := range days {
		lines = append(lines, fmt.Sprintf("%s %s %2d notes %s",
			d.Date[5:], components.Bar(d.Seconds, maxSeconds, barWidth/2), d.Notes, formatSeconds(d.Seconds)))
	}
	return strings.Join(lines, "\n")
}

func top(r domain.Report) string {
	if len(r.Top) == 0 {
		return theme.Muted.Render("no categories yet")
	}
	rows := make([][2]string, 0, len(r.Top))
	for i, c := range r.Top {
		rows = append(rows, [2]string{fmt.Sprintf("%d. %s", i+1, c.Name), fmt.Sprintf("%d notes · %s", c.Notes, formatSeconds(c.Seconds))})
	}
	return table(rows)
}

func timeOfDay(r domain.Report) string {
	t := r.TimeOfDay
	total := t.Total()
	rows := []struct {
		name    string
		seconds float64
	}{
		{"night", t.Night},
		{"morning", t.Morning},
		{"afternoon", t.Afternoon},
		{"evening", t.Evening},
	}
	lines := make([]string, 0, len(rows))
	for _, row := range rows {
		lines = append(lines, fmt.Sprintf("%-9s %s %s", row.name, components.Bar(row.seconds, total, barWidth/2), formatSeconds(row.seconds)))
	}
	return strings.Join(lines, "\n")
}

func achievements(r domain.Report) string {
	badges := make([]string, 0, len(r.Achievements))
	for _, a := range r.Achievements {
		badges = append(badges, theme.Badge.Render(a.Title))
	}
	return strings.Join(badges, " ")
}

func table(rows [][2]string) string {
	width := 0
	for _, row := range rows {
		width = max(width, lipgloss.Width(row[0]))
	}
	label := theme.Muted.Width(width + 2)
	lines := make([]string, 0, len(rows))
	for _, row := range rows {
		lines = append(lines, label.Render(row[0])+row[1])
	}
	return strings.Join(lines, "\n")
}

func formatSeconds(seconds float64) string {
	s := int(seconds)
	h, m := s/3600, s%3600/60
	switch {
	case h > 0 && m > 0:
		return fmt.Sprintf("%dh %dm", h, m)
	case h > 0:
		return fmt.Sprintf("%dh", h)
	case m > 0:
		return fmt.Sprintf("%dm", m)
	default:
		return fmt.Sprintf("%ds", s)
	}
}
