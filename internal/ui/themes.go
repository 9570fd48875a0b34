package ui

import (
	"os"
	"sync"

	"github.com/charmbracelet/lipgloss"
)

// Theme defines a color scheme for CLI output.
type Theme struct {
	// Name is the identifier of the theme.
	Name string
	// Accent highlights headings and path labels.
	Accent lipgloss.TerminalColor
	// Text is the default foreground.
	Text lipgloss.TerminalColor
	// Success marks completed runs.
	Success lipgloss.TerminalColor
	// Warning marks iterations recorded as NaN.
	Warning lipgloss.TerminalColor
	// Error marks failures.
	Error lipgloss.TerminalColor
	// Dim is used for secondary details such as seeds and durations.
	Dim lipgloss.TerminalColor
}

var (
	// DarkTheme is optimized for dark terminal backgrounds.
	DarkTheme = Theme{
		Name:    "dark",
		Accent:  lipgloss.Color("39"),
		Text:    lipgloss.Color("252"),
		Success: lipgloss.Color("82"),
		Warning: lipgloss.Color("220"),
		Error:   lipgloss.Color("196"),
		Dim:     lipgloss.Color("245"),
	}

	// LightTheme is optimized for light terminal backgrounds.
	LightTheme = Theme{
		Name:    "light",
		Accent:  lipgloss.Color("27"),
		Text:    lipgloss.Color("235"),
		Success: lipgloss.Color("28"),
		Warning: lipgloss.Color("130"),
		Error:   lipgloss.Color("124"),
		Dim:     lipgloss.Color("240"),
	}

	// NoColorTheme disables all color output.
	// Used when NO_COLOR is set or --no-color is provided.
	NoColorTheme = Theme{
		Name:    "none",
		Accent:  lipgloss.NoColor{},
		Text:    lipgloss.NoColor{},
		Success: lipgloss.NoColor{},
		Warning: lipgloss.NoColor{},
		Error:   lipgloss.NoColor{},
		Dim:     lipgloss.NoColor{},
	}

	currentTheme = DarkTheme
	themeMutex   sync.RWMutex
)

// Styles are the lipgloss styles derived from a Theme.
type Styles struct {
	Heading lipgloss.Style
	Label   lipgloss.Style
	Value   lipgloss.Style
	Success lipgloss.Style
	Warning lipgloss.Style
	Error   lipgloss.Style
	Dim     lipgloss.Style
}

// Styles builds the rendering styles of t.
func (t Theme) Styles() Styles {
	base := lipgloss.NewStyle()
	return Styles{
		Heading: base.Foreground(t.Accent).Bold(t.Name != NoColorTheme.Name),
		Label:   base.Foreground(t.Accent),
		Value:   base.Foreground(t.Text),
		Success: base.Foreground(t.Success),
		Warning: base.Foreground(t.Warning),
		Error:   base.Foreground(t.Error),
		Dim:     base.Foreground(t.Dim),
	}
}

// GetCurrentTheme returns the currently active theme in a thread-safe manner.
func GetCurrentTheme() Theme {
	themeMutex.RLock()
	defer themeMutex.RUnlock()
	return currentTheme
}

// SetCurrentTheme sets the currently active theme in a thread-safe manner.
// This is primarily used for testing purposes to restore state.
func SetCurrentTheme(t Theme) {
	themeMutex.Lock()
	defer themeMutex.Unlock()
	currentTheme = t
}

// SetTheme changes the active theme by name.
// Valid names are "dark", "light" and "none"; unknown names select dark.
func SetTheme(name string) {
	themeMutex.Lock()
	defer themeMutex.Unlock()

	switch name {
	case "light":
		currentTheme = LightTheme
	case "none":
		currentTheme = NoColorTheme
	default:
		currentTheme = DarkTheme
	}
}

// InitTheme initializes the theme based on the noColor flag and environment.
// It respects the NO_COLOR environment variable (https://no-color.org/).
func InitTheme(noColor bool) {
	themeMutex.Lock()
	defer themeMutex.Unlock()

	if noColor {
		currentTheme = NoColorTheme
		return
	}
	if _, exists := os.LookupEnv("NO_COLOR"); exists {
		currentTheme = NoColorTheme
		return
	}
	currentTheme = DarkTheme
}
