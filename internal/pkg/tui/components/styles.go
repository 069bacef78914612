package components

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/endorses/dashsync/internal/pkg/types"
)

// Solarized palette
var (
	colorBase03  = lipgloss.Color("#002b36")
	colorBase01  = lipgloss.Color("#586e75")
	colorBase0   = lipgloss.Color("#839496")
	colorBase3   = lipgloss.Color("#fdf6e3")
	colorYellow  = lipgloss.Color("#b58900")
	colorOrange  = lipgloss.Color("#cb4b16")
	colorRed     = lipgloss.Color("#dc322f")
	colorMagenta = lipgloss.Color("#d33682")
	colorBlue    = lipgloss.Color("#268bd2")
	colorCyan    = lipgloss.Color("#2aa198")
	colorGreen   = lipgloss.Color("#859900")
)

// LevelColor returns the display color of a log level
func LevelColor(level types.LogLevel) lipgloss.Color {
	switch level {
	case types.LevelTrace:
		return colorBase01
	case types.LevelDebug:
		return colorCyan
	case types.LevelInfo:
		return colorBlue
	case types.LevelWarning:
		return colorYellow
	case types.LevelError:
		return colorOrange
	case types.LevelCritical:
		return colorMagenta
	default:
		return colorBase0
	}
}

// StateColor returns the badge color of a channel state
func StateColor(state types.ChannelState) lipgloss.Color {
	switch state {
	case types.ChannelOpen:
		return colorGreen
	case types.ChannelReconnecting:
		return colorYellow
	case types.ChannelClosed:
		return colorRed
	default:
		return colorBlue
	}
}
