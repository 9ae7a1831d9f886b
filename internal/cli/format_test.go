package cli

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFormatTokens(t *testing.T) {
	tests := []struct {
		in   int64
		want string
	}{
		{0, "0"},
		{999, "999"},
		{1234, "1.2K"},
		{1_234_567, "1.2M"},
		{1_234_567_890, "1.2B"},
		{-1500, "-1.5K"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatTokens(tt.in), "FormatTokens(%d)", tt.in)
	}
}

func TestFormatCost(t *testing.T) {
	assert.Equal(t, "$0.13", FormatCost(0.13))
	assert.Equal(t, "$12.3", FormatCost(12.34))
	assert.Equal(t, "$123", FormatCost(123.4))
	assert.Equal(t, "$1,235", FormatCost(1234.6))
}

func TestFormatCostPrecision(t *testing.T) {
	assert.Equal(t, "$0.13", FormatCostPrecision(0.13, 2))
	assert.Equal(t, "$0.1300", FormatCostPrecision(0.13, 4))
	assert.Equal(t, "$0", FormatCostPrecision(0.13, -3))
	assert.Equal(t, "$1.0000000000", FormatCostPrecision(1, 50))
}

func TestFormatDuration(t *testing.T) {
	assert.Equal(t, "0s", FormatDuration(0))
	assert.Equal(t, "45s", FormatDuration(45_000))
	assert.Equal(t, "2m", FormatDuration(125_000))
	assert.Equal(t, "1h 2m", FormatDuration(3_725_000))
}

func TestFormatAge(t *testing.T) {
	now := time.Date(2025, 8, 1, 12, 0, 0, 0, time.UTC)
	assert.Equal(t, "-", FormatAge(now, time.Time{}))
	assert.Equal(t, "just now", FormatAge(now, now.Add(-10*time.Second)))
	assert.Equal(t, "5m ago", FormatAge(now, now.Add(-5*time.Minute)))
	assert.Equal(t, "3h ago", FormatAge(now, now.Add(-3*time.Hour)))
	assert.Equal(t, "2d ago", FormatAge(now, now.Add(-50*time.Hour)))
}

func TestFormatNumber(t *testing.T) {
	assert.Equal(t, "1,234,567", FormatNumber(1234567))
	assert.Equal(t, "-1,000", FormatNumber(-1000))
	assert.Equal(t, "12", FormatNumber(12))
}

func TestRenderUsageSegment_Plain(t *testing.T) {
	opts := SegmentOptions{Precision: 2, ShowLinesAdded: true, ShowLinesRemoved: true}

	assert.Equal(t, "$0.13", RenderUsageSegment(Usage{CostUSD: 0.13, Sessions: 1}, opts))
	assert.Equal(t, "~$0.13 (2 sessions) +12 -3",
		RenderUsageSegment(Usage{CostUSD: 0.13, Sessions: 2, Estimated: true, LinesAdded: 12, LinesRemoved: 3}, opts))
	assert.Equal(t, "$4.00 (64+ sessions)",
		RenderUsageSegment(Usage{CostUSD: 4, Sessions: 64, Truncated: true}, opts))

	opts.Emoji = true
	opts.ShowLinesRemoved = false
	assert.Equal(t, "💰 $0.50 +1", RenderUsageSegment(Usage{CostUSD: 0.5, LinesAdded: 1, LinesRemoved: 9}, opts))
}

func TestRenderUsageSegment_ColorsKeepText(t *testing.T) {
	got := RenderUsageSegment(Usage{CostUSD: 2.5}, SegmentOptions{Colors: true, Precision: 2})
	assert.Contains(t, got, "$2.50")
}

func TestJoinComponents(t *testing.T) {
	parts := map[string]string{"model": "Sonnet", "usage": "$0.10", "project": ""}
	got := JoinComponents([]string{"project", "model", "branch", "usage"}, " | ", parts)
	assert.Equal(t, "Sonnet | $0.10", got)
	assert.Empty(t, RenderTokens(0, SegmentOptions{}))
	assert.Equal(t, "1.5K tok", RenderTokens(1500, SegmentOptions{}))
}

func TestRenderTable(t *testing.T) {
	out := RenderTable(Table{
		Title:   "Sessions",
		Headers: []string{"Session", "Cost"},
		Rows:    [][]string{{"abc", "$0.10"}, {"---"}, {"total", "$0.10"}},
	})
	assert.Contains(t, out, "Sessions")
	assert.Contains(t, out, "abc")
	assert.Equal(t, 8, strings.Count(out, "\n"))
	assert.Empty(t, RenderTable(Table{}))
}

func TestThemeByName(t *testing.T) {
	th, ok := ThemeByName("Tokyo-Night")
	assert.True(t, ok)
	assert.Equal(t, TokyoNight, th)

	th, ok = ThemeByName("nope")
	assert.False(t, ok)
	assert.Equal(t, "classic", th.Name)
}

func TestCostColor(t *testing.T) {
	assert.Equal(t, Classic.Red, costColor(Classic, 1.5))
	assert.Equal(t, Classic.Yellow, costColor(Classic, 0.5))
	assert.Equal(t, Classic.Green, costColor(Classic, 0.05))
	assert.Equal(t, Classic.TextMuted, costColor(Classic, 0))
}
