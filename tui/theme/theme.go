// Package theme holds the color palettes and lipgloss styles shared by the
// editor and the CLI.
package theme

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// --- Kanagawa Dragon (dark) palette ---
const (
	darkGreen              = "#98BB6C"
	darkYellow             = "#FF9E3B"
	darkRed                = "#FF5D62"
	darkOrange             = "#FFA066"
	darkCyan               = "#7E9CD8"
	darkBlue               = "#7FB4CA"
	darkViolet             = "#957FB8"
	darkLightText          = "#DCD7BA"
	darkMutedText          = "#727169"
	darkBorder             = "#363646"
	darkSelectedBackground = "#223249"
)

// --- Kanagawa Wave (light) palette ---
const (
	lightGreen              = "#4E7C5A"
	lightYellow             = "#A68A64"
	lightRed                = "#C34043"
	lightOrange             = "#CC6B4E"
	lightCyan               = "#5B8BBE"
	lightBlue               = "#4F7CAC"
	lightViolet             = "#674D7A"
	lightLightText          = "#2B2F42"
	lightMutedText          = "#6C7086"
	lightBorder             = "#B5BDC5"
	lightSelectedBackground = "#E2E6F3"
)

// Colors is the palette a Theme is built from.
type Colors struct {
	Green              lipgloss.TerminalColor
	Yellow             lipgloss.TerminalColor
	Red                lipgloss.TerminalColor
	Orange             lipgloss.TerminalColor
	Cyan               lipgloss.TerminalColor
	Blue               lipgloss.TerminalColor
	Violet             lipgloss.TerminalColor
	LightText          lipgloss.TerminalColor
	MutedText          lipgloss.TerminalColor
	Border             lipgloss.TerminalColor
	SelectedBackground lipgloss.TerminalColor
}

// Theme holds the pre-configured styles.
type Theme struct {
	Name   string
	Colors Colors

	Header lipgloss.Style
	Title  lipgloss.Style

	Success lipgloss.Style
	Error   lipgloss.Style
	Warning lipgloss.Style
	Info    lipgloss.Style

	Bold     lipgloss.Style
	Italic   lipgloss.Style
	Muted    lipgloss.Style
	Selected lipgloss.Style
	// Marked is an entry that is part of a multi-selection but not under
	// the cursor.
	Marked lipgloss.Style
	Accent lipgloss.Style

	TableHeader lipgloss.Style
	TableRow    lipgloss.Style

	Panel        lipgloss.Style
	FocusedPanel lipgloss.Style
	StatusBar    lipgloss.Style
}

// DefaultTheme picks dark or light from the terminal background.
var DefaultTheme = New("auto")

// New returns the theme for mode: "dark", "light", "terminal" or "auto".
func New(mode string) *Theme {
	name := strings.ToLower(strings.TrimSpace(mode))
	switch name {
	case "dark", "light", "terminal":
	default:
		name = "light"
		if termenv.HasDarkBackground() {
			name = "dark"
		}
	}
	return fromColors(name, palette(name))
}

func palette(name string) Colors {
	switch name {
	case "light":
		return Colors{
			Green: lipgloss.Color(lightGreen), Yellow: lipgloss.Color(lightYellow),
			Red: lipgloss.Color(lightRed), Orange: lipgloss.Color(lightOrange),
			Cyan: lipgloss.Color(lightCyan), Blue: lipgloss.Color(lightBlue),
			Violet: lipgloss.Color(lightViolet), LightText: lipgloss.Color(lightLightText),
			MutedText: lipgloss.Color(lightMutedText), Border: lipgloss.Color(lightBorder),
			SelectedBackground: lipgloss.Color(lightSelectedBackground),
		}
	case "terminal":
		return Colors{
			Green: lipgloss.Color("2"), Yellow: lipgloss.Color("3"),
			Red: lipgloss.Color("1"), Orange: lipgloss.Color("208"),
			Cyan: lipgloss.Color("6"), Blue: lipgloss.Color("4"),
			Violet: lipgloss.Color("5"), LightText: lipgloss.Color("7"),
			MutedText: lipgloss.Color("8"), Border: lipgloss.Color("8"),
			SelectedBackground: lipgloss.Color("8"),
		}
	default:
		return Colors{
			Green: lipgloss.Color(darkGreen), Yellow: lipgloss.Color(darkYellow),
			Red: lipgloss.Color(darkRed), Orange: lipgloss.Color(darkOrange),
			Cyan: lipgloss.Color(darkCyan), Blue: lipgloss.Color(darkBlue),
			Violet: lipgloss.Color(darkViolet), LightText: lipgloss.Color(darkLightText),
			MutedText: lipgloss.Color(darkMutedText), Border: lipgloss.Color(darkBorder),
			SelectedBackground: lipgloss.Color(darkSelectedBackground),
		}
	}
}

func fromColors(name string, c Colors) *Theme {
	panel := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(c.Border).
		Padding(0, 1)

	return &Theme{
		Name:   name,
		Colors: c,

		Header: lipgloss.NewStyle().Bold(true).Foreground(c.Orange),
		Title:  lipgloss.NewStyle().Bold(true).Underline(true),

		Success: lipgloss.NewStyle().Foreground(c.Green).Bold(true),
		Error:   lipgloss.NewStyle().Foreground(c.Red).Bold(true),
		Warning: lipgloss.NewStyle().Foreground(c.Yellow).Bold(true),
		Info:    lipgloss.NewStyle().Foreground(c.Blue),

		Bold:     lipgloss.NewStyle().Bold(true),
		Italic:   lipgloss.NewStyle().Italic(true),
		Muted:    lipgloss.NewStyle().Foreground(c.MutedText),
		Selected: lipgloss.NewStyle().Bold(true).Foreground(c.LightText).Background(c.SelectedBackground),
		Marked:   lipgloss.NewStyle().Foreground(c.Cyan),
		Accent:   lipgloss.NewStyle().Foreground(c.Violet),

		TableHeader: lipgloss.NewStyle().Bold(true).Foreground(c.Blue),
		TableRow:    lipgloss.NewStyle(),

		Panel:        panel,
		FocusedPanel: panel.BorderForeground(c.Cyan),
		StatusBar:    lipgloss.NewStyle().Foreground(c.MutedText),
	}
}

// RenderStatus renders text with the style named by status.
func (t *Theme) RenderStatus(status, text string) string {
	switch status {
	case "success":
		return t.Success.Render(text)
	case "error":
		return t.Error.Render(text)
	case "warning":
		return t.Warning.Render(text)
	case "info":
		return t.Info.Render(text)
	default:
		return text
	}
}
