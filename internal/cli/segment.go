package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Usage is what the usage segment shows: one session or a whole
// conversation.
type Usage struct {
	CostUSD      float64
	Tokens       int64
	LinesAdded   int64
	LinesRemoved int64
	Sessions     int
	Estimated    bool
	Truncated    bool
}

// SegmentOptions carries the style and usage settings of the resolved config.
type SegmentOptions struct {
	Colors           bool
	Emoji            bool
	NerdFont         bool
	Precision        int
	ShowLinesAdded   bool
	ShowLinesRemoved bool
	// Theme colors the segment; the zero value means Classic.
	Theme Theme
}

func costColor(t Theme, cost float64) lipgloss.Color {
	switch {
	case cost > 1:
		return t.Red
	case cost > 0.1:
		return t.Yellow
	case cost > 0:
		return t.Green
	default:
		return t.TextMuted
	}
}

// RenderUsageSegment renders cost, conversation size and line counts.
// An estimated cost is prefixed with "~"; a conversation cut short by the
// depth bound shows "+" after its session count.
func RenderUsageSegment(u Usage, o SegmentOptions) string {
	theme := o.Theme
	if theme.Name == "" {
		theme = Classic
	}
	paint := func(c lipgloss.Color, text string) string {
		if !o.Colors {
			return text
		}
		return lipgloss.NewStyle().Foreground(c).Render(text)
	}

	var b strings.Builder
	switch {
	case o.NerdFont:
		b.WriteString("\uf155 ")
	case o.Emoji:
		b.WriteString("💰 ")
	}

	cost := FormatCostPrecision(u.CostUSD, o.Precision)
	if u.Estimated {
		cost = "~" + cost
	}
	b.WriteString(paint(costColor(theme, u.CostUSD), cost))

	if u.Sessions > 1 || u.Truncated {
		more := ""
		if u.Truncated {
			more = "+"
		}
		b.WriteString(paint(theme.TextMuted, fmt.Sprintf(" (%d%s sessions)", u.Sessions, more)))
	}
	if o.ShowLinesAdded && u.LinesAdded > 0 {
		b.WriteString(" ")
		b.WriteString(paint(theme.Green, fmt.Sprintf("+%d", u.LinesAdded)))
	}
	if o.ShowLinesRemoved && u.LinesRemoved > 0 {
		b.WriteString(" ")
		b.WriteString(paint(theme.Red, fmt.Sprintf("-%d", u.LinesRemoved)))
	}
	return b.String()
}

// RenderTokens renders a token count for the tokens component.
func RenderTokens(n int64, o SegmentOptions) string {
	if n <= 0 {
		return ""
	}
	text := FormatTokens(n) + " tok"
	if !o.Colors {
		return text
	}
	c := o.Theme.Blue
	if o.Theme.Name == "" {
		c = Classic.Blue
	}
	return lipgloss.NewStyle().Foreground(c).Render(text)
}

// JoinComponents joins the non-empty parts named in order with sep.
// Names without a part are skipped.
func JoinComponents(order []string, sep string, parts map[string]string) string {
	out := make([]string, 0, len(order))
	for _, name := range order {
		if p := parts[name]; p != "" {
			out = append(out, p)
		}
	}
	return strings.Join(out, sep)
}
