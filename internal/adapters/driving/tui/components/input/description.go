// Package input provides text input components for the TUI.
package input

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/refeel-health/refeel-cli/internal/adapters/driving/tui/styles"
	"github.com/refeel-health/refeel-cli/internal/core/domain"
)

// Field indexes of the description form.
const (
	FieldStimulationType = iota
	FieldProgram
	FieldFrequency
	FieldSensation
	FieldDistance
	fieldCount
)

var fieldLabels = [fieldCount]string{
	"Stimulation",
	"Program",
	"Frequency",
	"Sensation",
	"Distance",
}

var fieldPlaceholders = [fieldCount]string{
	"e.g. TENS",
	"e.g. P3",
	"e.g. 80 Hz",
	"e.g. tingling",
	"e.g. 4 cm",
}

// DescriptionForm edits the clinical metadata of one point.
type DescriptionForm struct {
	inputs [fieldCount]textinput.Model
	styles *styles.Styles
	focus  int
	width  int
}

// NewDescriptionForm creates an empty form.
func NewDescriptionForm(s *styles.Styles) *DescriptionForm {
	if s == nil {
		s = styles.Default()
	}

	f := &DescriptionForm{styles: s, width: 50}
	for i := range f.inputs {
		ti := textinput.New()
		ti.Placeholder = fieldPlaceholders[i]
		ti.CharLimit = 128
		ti.Width = 30
		f.inputs[i] = ti
	}
	return f
}

// Load fills the form from d and focuses the first field.
func (f *DescriptionForm) Load(d domain.Description) tea.Cmd {
	f.inputs[FieldStimulationType].SetValue(d.StimulationType)
	f.inputs[FieldProgram].SetValue(d.Program)
	f.inputs[FieldFrequency].SetValue(d.Frequency)
	f.inputs[FieldSensation].SetValue(d.Sensation)
	f.inputs[FieldDistance].SetValue(d.DistanceFromStump)
	return f.setFocus(0)
}

// Value returns the trimmed form contents.
func (f *DescriptionForm) Value() domain.Description {
	v := func(i int) string { return strings.TrimSpace(f.inputs[i].Value()) }
	return domain.Description{
		StimulationType:   v(FieldStimulationType),
		Program:           v(FieldProgram),
		Frequency:         v(FieldFrequency),
		Sensation:         v(FieldSensation),
		DistanceFromStump: v(FieldDistance),
	}
}

// Init initialises the form.
func (f *DescriptionForm) Init() tea.Cmd {
	return textinput.Blink
}

// Update moves focus on tab and arrow keys and forwards everything else
// to the focused field.
func (f *DescriptionForm) Update(msg tea.Msg) (*DescriptionForm, tea.Cmd) {
	if k, ok := msg.(tea.KeyMsg); ok {
		switch k.String() {
		case "tab", "down":
			return f, f.setFocus((f.focus + 1) % fieldCount)
		case "shift+tab", "up":
			return f, f.setFocus((f.focus + fieldCount - 1) % fieldCount)
		}
	}

	var cmd tea.Cmd
	f.inputs[f.focus], cmd = f.inputs[f.focus].Update(msg)
	return f, cmd
}

// View renders the form.
func (f *DescriptionForm) View() string {
	rows := make([]string, 0, fieldCount)
	for i := range f.inputs {
		label := f.styles.Hint.Render(padRight(fieldLabels[i], 12))
		if i == f.focus {
			label = f.styles.Heading.Render(padRight(fieldLabels[i], 12))
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, label, f.inputs[i].View()))
	}
	return strings.Join(rows, "\n")
}

// Focused returns the index of the focused field.
func (f *DescriptionForm) Focused() int {
	return f.focus
}

// SetWidth sets the width of the form.
func (f *DescriptionForm) SetWidth(width int) {
	f.width = width
	inputWidth := width - 16
	if inputWidth < 12 {
		inputWidth = 12
	}
	for i := range f.inputs {
		f.inputs[i].Width = inputWidth
	}
}

// Width returns the current width.
func (f *DescriptionForm) Width() int {
	return f.width
}

func (f *DescriptionForm) setFocus(i int) tea.Cmd {
	f.inputs[f.focus].Blur()
	f.focus = i
	return f.inputs[i].Focus()
}

func padRight(s string, n int) string {
	if len(s) >= n {
		return s
	}
	return s + strings.Repeat(" ", n-len(s))
}
