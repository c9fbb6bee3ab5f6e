// Package status provides status bar components for the TUI.
package status

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/refeel-health/refeel-cli/internal/adapters/driving/tui/keymap"
	"github.com/refeel-health/refeel-cli/internal/adapters/driving/tui/styles"
)

// State represents the current application state for display.
type State string

const (
	StateReady   State = "ready"
	StateSaving  State = "saving"
	StateError   State = "error"
	StateHelp    State = "help"
	StateMapping State = "mapping"
)

// Bar displays application status and keybinding hints.
type Bar struct {
	styles    *styles.Styles
	keymap    *keymap.KeyMap
	state     State
	message   string
	points    int
	unsaved   int
	selection bool
	width     int
}

// NewBar creates a new status bar component.
func NewBar(s *styles.Styles, km *keymap.KeyMap) *Bar {
	if s == nil {
		s = styles.Default()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}

	return &Bar{
		styles: s,
		keymap: km,
		state:  StateReady,
		width:  80,
	}
}

// Init initialises the status bar.
func (s *Bar) Init() tea.Cmd {
	return nil
}

// Update handles status bar messages.
func (s *Bar) Update(msg tea.Msg) (*Bar, tea.Cmd) {
	// Bar is passive, updated via Set methods
	return s, nil
}

// View renders the status bar.
func (s *Bar) View() string {
	left := s.renderLeft()
	right := s.renderRight()

	padding := s.width - lipgloss.Width(left) - lipgloss.Width(right)
	if padding < 1 {
		padding = 1
	}

	return s.styles.Bar.Width(s.width).Render(
		left + strings.Repeat(" ", padding) + right,
	)
}

// renderLeft renders the state and point counts.
func (s *Bar) renderLeft() string {
	switch s.state {
	case StateSaving:
		return s.styles.Hint.Render("Saving...")
	case StateError:
		if s.message != "" {
			return s.styles.Failure.Render(fmt.Sprintf("Error: %s", s.message))
		}
		return s.styles.Failure.Render("Error")
	case StateHelp:
		return s.styles.Text.Render("Help")
	case StateMapping:
		return s.styles.Mapping.Render("Mapping: tap the limb")
	case StateReady:
	}

	counts := fmt.Sprintf("%d points", s.points)
	if s.points == 1 {
		counts = "1 point"
	}
	if s.unsaved > 0 {
		counts += s.styles.Unsaved.Render(fmt.Sprintf(" (%d unsaved)", s.unsaved))
	}
	if s.message != "" {
		counts += s.styles.Hint.Render("  " + s.message)
	}
	return s.styles.Text.Render(counts)
}

// renderRight renders keybinding hints.
func (s *Bar) renderRight() string {
	bindings := s.keymap.ShortHelp()
	if s.selection {
		bindings = s.keymap.SelectionHelp()
	}

	hints := make([]string, 0, len(bindings))
	for _, b := range bindings {
		h := b.Help()
		hints = append(hints, fmt.Sprintf("%s: %s", h.Key, h.Desc))
	}
	return s.styles.Hint.Render(strings.Join(hints, " | "))
}

// SetState sets the current state.
func (s *Bar) SetState(state State) {
	s.state = state
}

// State returns the current state.
func (s *Bar) State() State {
	return s.state
}

// SetMessage sets a custom message.
func (s *Bar) SetMessage(message string) {
	s.message = message
}

// Message returns the current message.
func (s *Bar) Message() string {
	return s.message
}

// SetCounts sets the point and unsaved counts.
func (s *Bar) SetCounts(points, unsaved int) {
	s.points = points
	s.unsaved = unsaved
}

// Counts returns the point and unsaved counts.
func (s *Bar) Counts() (points, unsaved int) {
	return s.points, s.unsaved
}

// SetSelection switches the hints between idle and selected-point keys.
func (s *Bar) SetSelection(selected bool) {
	s.selection = selected
}

// SetWidth sets the status bar width.
func (s *Bar) SetWidth(width int) {
	s.width = width
}

// Width returns the current width.
func (s *Bar) Width() int {
	return s.width
}

// Clear resets the status bar to default state.
func (s *Bar) Clear() {
	s.state = StateReady
	s.message = ""
}
