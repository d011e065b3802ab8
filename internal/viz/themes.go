package viz

import "github.com/charmbracelet/lipgloss"

// Theme colours the live view. Title is the gradient of the scene name.
type Theme struct {
	Name    string
	Bodies  lipgloss.Color
	Title   [2]lipgloss.Color
	Graph   lipgloss.Color
	Running lipgloss.Color
	Paused  lipgloss.Color
	Alert   lipgloss.Color
	Muted   lipgloss.Color
}

var Themes = []Theme{
	{
		Name:    "cyberpunk",
		Bodies:  "#ff00ff",
		Title:   [2]lipgloss.Color{"#ff00ff", "#00ffff"},
		Graph:   "#00ffaa",
		Running: "#00ff88",
		Paused:  "#ffaa00",
		Alert:   "#ff4444",
		Muted:   "#666688",
	},
	{
		Name:    "phosphor",
		Bodies:  "#33ff33",
		Title:   [2]lipgloss.Color{"#00ff00", "#88ff88"},
		Graph:   "#00cc00",
		Running: "#88ff88",
		Paused:  "#ffff00",
		Alert:   "#ff0000",
		Muted:   "#005500",
	},
	{
		Name:    "blueprint",
		Bodies:  "#e0f0ff",
		Title:   [2]lipgloss.Color{"#0077be", "#00a8cc"},
		Graph:   "#ffd700",
		Running: "#00ff88",
		Paused:  "#ffcc00",
		Alert:   "#ff4444",
		Muted:   "#4488aa",
	},
	{
		Name:    "mono",
		Bodies:  "#ffffff",
		Title:   [2]lipgloss.Color{"#ffffff", "#888888"},
		Graph:   "#cccccc",
		Running: "#ffffff",
		Paused:  "#aaaaaa",
		Alert:   "#ff0000",
		Muted:   "#666666",
	},
}

var CurrentTheme = Themes[0]

// SetTheme switches to the named theme and reports whether it exists.
func SetTheme(name string) bool {
	for _, t := range Themes {
		if t.Name == name {
			CurrentTheme = t
			return true
		}
	}
	return false
}

// NextTheme cycles to the theme after the current one.
func NextTheme() Theme {
	for i, t := range Themes {
		if t.Name == CurrentTheme.Name {
			CurrentTheme = Themes[(i+1)%len(Themes)]
			return CurrentTheme
		}
	}
	CurrentTheme = Themes[0]
	return CurrentTheme
}

func ThemeNames() []string {
	names := make([]string, len(Themes))
	for i, t := range Themes {
		names[i] = t.Name
	}
	return names
}
