package chat

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/bnema/memochat/internal/application"
	"github.com/bnema/memochat/internal/domain"
	"github.com/charmbracelet/lipgloss"
)

const barWidth = 24

type RenderOptions struct {
	Now time.Time
}

func renderUsage(usage application.UsageSnapshot, opts RenderOptions, s styles) string {
	label := s.limitKey.Render("today:")
	bar := renderProgressBar(usage.Count, usage.Limit, barWidth, s)

	left := usage.Limit - usage.Count
	if left < 0 {
		left = 0
	}
	percentLeft := 0.0
	if usage.Limit > 0 {
		percentLeft = float64(left) / float64(usage.Limit) * 100
	}
	meta := lipgloss.NewStyle().Foreground(interpolateColor(percentLeft, 0, 100)).
		Render(fmt.Sprintf("%d / %d used, %d left", usage.Count, usage.Limit, left))

	line := lipgloss.JoinHorizontal(lipgloss.Top, label, " ", bar, " ", meta)
	if !opts.Now.IsZero() {
		line += " " + s.header.Render(fmt.Sprintf("(%s)", formatResetRelative(nextMidnight(opts.Now), opts.Now)))
	}
	if usage.LimitReached {
		line += " " + s.errorText.Render("[limit reached]")
	}
	return line
}

func renderFacts(facts domain.Facts, s styles) string {
	lines := []string{
		s.title.Render("Stored facts"),
		s.header.Render(fmt.Sprintf("facts: %d / %d", len(facts), domain.MaxFacts)),
	}
	if len(facts) == 0 {
		lines = append(lines, s.empty.Render("Nothing remembered yet."))
		return lipgloss.JoinVertical(lipgloss.Left, lines...)
	}

	width := 0
	for _, key := range facts.Keys() {
		width = max(width, lipgloss.Width(key))
	}
	for _, key := range facts.Keys() {
		lines = append(lines, fmt.Sprintf("  %s  %s",
			s.factKey.Render(key+strings.Repeat(" ", width-lipgloss.Width(key))),
			s.factValue.Render(facts[key])))
	}
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func renderMessage(msg domain.Message, s styles) string {
	if msg.Role == domain.RoleUser {
		return s.user.Render("you") + ": " + msg.Content
	}

	prefix := s.assistant.Render("assistant") + ": "
	switch msg.Kind {
	case domain.MessageWelcome:
		return prefix + s.welcome.Render(msg.Content)
	case domain.MessageError:
		return prefix + s.errorText.Render(msg.Content)
	case domain.MessageNotice:
		return s.notice.Render("! " + msg.Content)
	default:
		return prefix + msg.Content
	}
}

func renderProgressBar(used, limit, width int, s styles) string {
	if width <= 0 {
		return ""
	}

	fraction := 0.0
	if limit > 0 {
		fraction = float64(used) / float64(limit)
	}
	filled := int(math.Round(float64(width) * fraction))
	filled = min(max(filled, 0), width)

	return lipgloss.JoinHorizontal(
		lipgloss.Top,
		s.barBracket.Render("["),
		s.barFill.Render(strings.Repeat("=", filled)),
		s.barEmpty.Render(strings.Repeat("-", width-filled)),
		s.barBracket.Render("]"),
	)
}

func nextMidnight(now time.Time) time.Time {
	year, month, day := now.Date()
	return time.Date(year, month, day+1, 0, 0, 0, 0, now.Location())
}

func formatResetRelative(resetsAt, now time.Time) string {
	if !resetsAt.After(now) {
		return "resets now"
	}

	hours := int(math.Ceil(resetsAt.Sub(now).Hours()))
	if hours < 1 {
		hours = 1
	}
	suffix := "hours"
	if hours == 1 {
		suffix = "hour"
	}
	return fmt.Sprintf("resets in %d %s (%s)", hours, suffix, resetsAt.Format("15:04"))
}

// interpolateColor maps value onto the 240..255 greyscale ramp.
func interpolateColor(value, lo, hi float64) lipgloss.Color {
	if hi == lo {
		return lipgloss.Color("255")
	}
	normalized := math.Min(math.Max((value-lo)/(hi-lo), 0), 1)
	return lipgloss.Color(fmt.Sprintf("%d", int(240+15*normalized)))
}
