package components

import (
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/endorses/dashsync/internal/pkg/types"
)

// Header shows the title, the push channel state and the loading spinner
type Header struct {
	title      string
	state      types.ChannelState
	stateLabel string
	level      string
	loading    bool
	spinner    spinner.Model
	width      int
}

// NewHeader creates a header
func NewHeader(title string) Header {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(colorYellow)
	return Header{title: title, spinner: s, state: types.ChannelConnecting}
}

// SetState updates the channel badge
func (h *Header) SetState(state types.ChannelState, label string) {
	h.state = state
	h.stateLabel = label
}

// SetLevel shows the active level filter ("" for all)
func (h *Header) SetLevel(level string) {
	h.level = level
}

// SetLoading toggles the spinner. The returned command keeps it animating.
func (h *Header) SetLoading(loading bool) tea.Cmd {
	wasLoading := h.loading
	h.loading = loading
	if loading && !wasLoading {
		return h.spinner.Tick
	}
	return nil
}

// Loading returns whether the spinner is visible
func (h *Header) Loading() bool {
	return h.loading
}

// SetWidth updates the layout width
func (h *Header) SetWidth(width int) {
	h.width = width
}

// Update advances the spinner while loading
func (h *Header) Update(msg tea.Msg) tea.Cmd {
	if _, ok := msg.(spinner.TickMsg); !ok || !h.loading {
		return nil
	}
	var cmd tea.Cmd
	h.spinner, cmd = h.spinner.Update(msg)
	return cmd
}

// View renders the header line
func (h *Header) View() string {
	title := lipgloss.NewStyle().Bold(true).Foreground(colorBase3).Background(colorBlue).Padding(0, 1).Render(h.title)
	badge := lipgloss.NewStyle().Foreground(colorBase3).Background(StateColor(h.state)).Padding(0, 1).Render(h.stateLabel)

	level := "all levels"
	levelColor := colorBase0
	if h.level != "" {
		level = h.level
		levelColor = LevelColor(types.LogLevel(h.level))
	}
	filter := lipgloss.NewStyle().Foreground(levelColor).Padding(0, 1).Render("filter: " + level)

	spin := ""
	if h.loading {
		spin = " " + h.spinner.View()
	}
	left := lipgloss.JoinHorizontal(lipgloss.Top, title, " ", badge, filter, spin)
	return lipgloss.NewStyle().Width(h.width).Render(left)
}
