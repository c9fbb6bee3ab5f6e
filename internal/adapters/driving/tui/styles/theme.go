// Package styles holds the colours and lipgloss styles of the mapper TUI.
package styles

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/refeel-health/refeel-cli/internal/core/domain"
)

// Palette is the set of colours the mapper draws with. Marker colours
// match the point states so the terminal agrees with the saved visuals.
type Palette struct {
	// Accent marks headings and the exam banner.
	Accent lipgloss.Color
	Ink    lipgloss.Color
	Dim    lipgloss.Color
	// Panel is the status bar background.
	Panel lipgloss.Color
	// Skin shades the model silhouette.
	Skin    lipgloss.Color
	Frame   lipgloss.Color
	Alert   lipgloss.Color
	Caution lipgloss.Color

	Committed   lipgloss.Color
	Uncommitted lipgloss.Color
	Selected    lipgloss.Color
}

// ClinicalPalette is the default palette: a dark surface with skin-toned
// models and the marker colours of the point states.
func ClinicalPalette() *Palette {
	return &Palette{
		Accent:      lipgloss.Color("#2DD4BF"),
		Ink:         lipgloss.Color("#E2E8F0"),
		Dim:         lipgloss.Color("#7B8794"),
		Panel:       lipgloss.Color("#111827"),
		Skin:        lipgloss.Color("#D8A48F"),
		Frame:       lipgloss.Color("#334155"),
		Alert:       lipgloss.Color("#F87171"),
		Caution:     lipgloss.Color("#FBBF24"),
		Committed:   markerColor(domain.ColorCommitted),
		Uncommitted: markerColor(domain.ColorUncommitted),
		Selected:    markerColor(domain.ColorSelected),
	}
}

func markerColor(rgb uint32) lipgloss.Color {
	return lipgloss.Color(domain.VisualStyle{Color: rgb}.HexColor())
}

// Styles are the rendered looks of the mapper, built from one palette.
type Styles struct {
	palette *Palette

	Heading lipgloss.Style
	Section lipgloss.Style
	Text    lipgloss.Style
	Hint    lipgloss.Style

	// Highlight is the selected row of the point list.
	Highlight lipgloss.Style
	// Unsaved marks points and counts not yet in the store.
	Unsaved lipgloss.Style
	// Mapping is the status shown while a point waits for its limb position.
	Mapping lipgloss.Style
	Prompt  lipgloss.Style
	Failure lipgloss.Style

	Bar    lipgloss.Style
	Banner lipgloss.Style
	Dialog lipgloss.Style
	Skin   lipgloss.Style
}

// New builds styles from p. A nil palette means ClinicalPalette.
func New(p *Palette) *Styles {
	if p == nil {
		p = ClinicalPalette()
	}

	return &Styles{
		palette: p,

		Heading: lipgloss.NewStyle().Bold(true).Foreground(p.Accent),
		Section: lipgloss.NewStyle().Bold(true).Foreground(p.Ink),
		Text:    lipgloss.NewStyle().Foreground(p.Ink),
		Hint:    lipgloss.NewStyle().Foreground(p.Dim),

		Highlight: lipgloss.NewStyle().
			Bold(true).
			Foreground(p.Panel).
			Background(p.Selected),
		Unsaved: lipgloss.NewStyle().Foreground(p.Uncommitted),
		Mapping: lipgloss.NewStyle().Bold(true).Foreground(p.Selected),
		Prompt:  lipgloss.NewStyle().Bold(true).Foreground(p.Caution),
		Failure: lipgloss.NewStyle().Bold(true).Foreground(p.Alert),

		Bar: lipgloss.NewStyle().
			Foreground(p.Dim).
			Background(p.Panel).
			Padding(0, 1),
		Banner: lipgloss.NewStyle().
			Bold(true).
			Foreground(p.Panel).
			Background(p.Accent).
			Padding(0, 1),
		Dialog: lipgloss.NewStyle().
			BorderStyle(lipgloss.ThickBorder()).
			BorderForeground(p.Frame).
			Padding(1, 2),
		Skin: lipgloss.NewStyle().Foreground(p.Skin),
	}
}

// Default returns styles for the clinical palette.
func Default() *Styles {
	return New(ClinicalPalette())
}

// Palette returns the colours these styles were built from.
func (s *Styles) Palette() *Palette {
	return s.palette
}

// Marker maps a resolved marker look to terminal attributes. The colour
// is taken from the palette when it is one of the point state colours.
// Selected markers are bold and translucent ones faint.
func (s *Styles) Marker(v domain.VisualStyle) lipgloss.Style {
	color := lipgloss.Color(v.HexColor())
	switch v.Color {
	case domain.ColorCommitted:
		color = s.palette.Committed
	case domain.ColorUncommitted:
		color = s.palette.Uncommitted
	case domain.ColorSelected:
		color = s.palette.Selected
	}
	return lipgloss.NewStyle().
		Foreground(color).
		Bold(v.Size >= domain.SizeSelected).
		Faint(v.Opacity < 0.85)
}
