package viz

import "github.com/charmbracelet/lipgloss"

// Theme defines the colour scheme of the terminal view.
type Theme struct {
	Name    string
	Chain   lipgloss.Color
	Accent  lipgloss.Color
	Text    lipgloss.Color
	Muted   lipgloss.Color
	Success lipgloss.Color
	Warning lipgloss.Color
	Error   lipgloss.Color
}

var (
	ThemeBrass = Theme{
		Name:    "brass",
		Chain:   lipgloss.Color("#e0b040"),
		Accent:  lipgloss.Color("#ffd27a"),
		Text:    lipgloss.Color("#f5f0e6"),
		Muted:   lipgloss.Color("#7a6a50"),
		Success: lipgloss.Color("#8fd16a"),
		Warning: lipgloss.Color("#ffb347"),
		Error:   lipgloss.Color("#ff5f56"),
	}

	ThemeSilver = Theme{
		Name:    "silver",
		Chain:   lipgloss.Color("#c0c8d0"),
		Accent:  lipgloss.Color("#7fb8ff"),
		Text:    lipgloss.Color("#ffffff"),
		Muted:   lipgloss.Color("#707880"),
		Success: lipgloss.Color("#00ff88"),
		Warning: lipgloss.Color("#ffcc00"),
		Error:   lipgloss.Color("#ff4444"),
	}

	ThemeRetroGreen = Theme{
		Name:    "retro",
		Chain:   lipgloss.Color("#00ff00"),
		Accent:  lipgloss.Color("#88ff88"),
		Text:    lipgloss.Color("#00ff00"),
		Muted:   lipgloss.Color("#005500"),
		Success: lipgloss.Color("#88ff88"),
		Warning: lipgloss.Color("#ffff00"),
		Error:   lipgloss.Color("#ff0000"),
	}

	ThemeSunset = Theme{
		Name:    "sunset",
		Chain:   lipgloss.Color("#ff6b6b"),
		Accent:  lipgloss.Color("#feca57"),
		Text:    lipgloss.Color("#fff5f5"),
		Muted:   lipgloss.Color("#8b6b8c"),
		Success: lipgloss.Color("#5fd068"),
		Warning: lipgloss.Color("#ffc048"),
		Error:   lipgloss.Color("#ff4757"),
	}

	Themes = []Theme{
		ThemeBrass,
		ThemeSilver,
		ThemeRetroGreen,
		ThemeSunset,
	}
)

// GetTheme returns a theme by name, falling back to brass.
func GetTheme(name string) Theme {
	for _, t := range Themes {
		if t.Name == name {
			return t
		}
	}
	return ThemeBrass
}

// NextTheme returns the theme after t in Themes, wrapping around.
func NextTheme(t Theme) Theme {
	for i, th := range Themes {
		if th.Name == t.Name {
			return Themes[(i+1)%len(Themes)]
		}
	}
	return Themes[0]
}

func ThemeNames() []string {
	names := make([]string, len(Themes))
	for i, t := range Themes {
		names[i] = t.Name
	}
	return names
}
