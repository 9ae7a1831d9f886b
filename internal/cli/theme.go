package cli

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Theme defines the color roles used by tables and the statusline.
type Theme struct {
	Name      string
	Border    lipgloss.Color
	TextDim   lipgloss.Color // hints, table rules
	TextMuted lipgloss.Color // secondary text, zero cost
	Text      lipgloss.Color
	Accent    lipgloss.Color
	Green     lipgloss.Color
	Yellow    lipgloss.Color
	Red       lipgloss.Color
	Blue      lipgloss.Color
}

// Classic uses ANSI 16 colors only so it follows the terminal's palette.
var Classic = Theme{
	Name:      "classic",
	Border:    lipgloss.Color("8"),
	TextDim:   lipgloss.Color("8"),
	TextMuted: lipgloss.Color("7"),
	Text:      lipgloss.Color("15"),
	Accent:    lipgloss.Color("6"),
	Green:     lipgloss.Color("2"),
	Yellow:    lipgloss.Color("3"),
	Red:       lipgloss.Color("1"),
	Blue:      lipgloss.Color("4"),
}

// FlexokiDark is a warm, paper-inspired dark theme.
var FlexokiDark = Theme{
	Name:      "flexoki-dark",
	Border:    lipgloss.Color("#282726"),
	TextDim:   lipgloss.Color("#575653"),
	TextMuted: lipgloss.Color("#6F6E69"),
	Text:      lipgloss.Color("#FFFCF0"),
	Accent:    lipgloss.Color("#3AA99F"),
	Green:     lipgloss.Color("#879A39"),
	Yellow:    lipgloss.Color("#D0A215"),
	Red:       lipgloss.Color("#D14D41"),
	Blue:      lipgloss.Color("#4385BE"),
}

// CatppuccinMocha is a warm pastel theme.
var CatppuccinMocha = Theme{
	Name:      "catppuccin-mocha",
	Border:    lipgloss.Color("#585B70"),
	TextDim:   lipgloss.Color("#6C7086"),
	TextMuted: lipgloss.Color("#A6ADC8"),
	Text:      lipgloss.Color("#CDD6F4"),
	Accent:    lipgloss.Color("#89B4FA"),
	Green:     lipgloss.Color("#A6E3A1"),
	Yellow:    lipgloss.Color("#F9E2AF"),
	Red:       lipgloss.Color("#F38BA8"),
	Blue:      lipgloss.Color("#89B4FA"),
}

// TokyoNight is a cool blue/purple theme.
var TokyoNight = Theme{
	Name:      "tokyo-night",
	Border:    lipgloss.Color("#565F89"),
	TextDim:   lipgloss.Color("#565F89"),
	TextMuted: lipgloss.Color("#A9B1D6"),
	Text:      lipgloss.Color("#C0CAF5"),
	Accent:    lipgloss.Color("#7AA2F7"),
	Green:     lipgloss.Color("#9ECE6A"),
	Yellow:    lipgloss.Color("#E0AF68"),
	Red:       lipgloss.Color("#F7768E"),
	Blue:      lipgloss.Color("#7AA2F7"),
}

// Themes lists every built-in theme.
var Themes = []Theme{Classic, FlexokiDark, CatppuccinMocha, TokyoNight}

// ThemeByName looks a theme up case-insensitively. Unknown names fall back
// to Classic and report false.
func ThemeByName(name string) (Theme, bool) {
	for _, t := range Themes {
		if strings.EqualFold(t.Name, name) {
			return t, true
		}
	}
	return Classic, false
}
