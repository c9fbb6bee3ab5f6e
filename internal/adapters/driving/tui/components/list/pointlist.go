// Package list provides list display components for the TUI.
package list

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/refeel-health/refeel-cli/internal/adapters/driving/tui/styles"
	"github.com/refeel-health/refeel-cli/internal/core/domain"
)

// PointList displays the points of the open exam. Selection is owned by
// the lifecycle manager; the list only mirrors it.
type PointList struct {
	points   []domain.Point
	selected int
	styles   *styles.Styles
	width    int
	height   int
}

// NewPointList creates a new point list component.
func NewPointList(s *styles.Styles) *PointList {
	if s == nil {
		s = styles.Default()
	}

	return &PointList{
		selected: -1,
		styles:   s,
		width:    34,
		height:   10,
	}
}

// Init initialises the point list.
func (l *PointList) Init() tea.Cmd {
	return nil
}

// Update is a no-op; the app drives selection through the lifecycle.
func (l *PointList) Update(msg tea.Msg) (*PointList, tea.Cmd) {
	return l, nil
}

// View renders the point list.
func (l *PointList) View() string {
	header := l.styles.Section.Render(fmt.Sprintf("Points (%d)", len(l.points)))
	if len(l.points) == 0 {
		return header + "\n\n" + l.styles.Hint.Render("Tap the stump to add a point")
	}

	lines := make([]string, 0, len(l.points)+2)
	lines = append(lines, header, "")

	visible := l.height - 2
	if visible < 1 {
		visible = 1
	}
	start := 0
	if l.selected >= visible {
		start = l.selected - visible + 1
	}
	end := min(start+visible, len(l.points))

	for i := start; i < end; i++ {
		lines = append(lines, l.renderPoint(i, &l.points[i]))
	}
	return strings.Join(lines, "\n")
}

// renderPoint formats one row: number, save state, sensation, mapping
// and photo count.
func (l *PointList) renderPoint(index int, p *domain.Point) string {
	indicator := "  "
	if index == l.selected {
		indicator = "> "
	}

	state := " "
	switch p.State() {
	case domain.StateUncommitted:
		state = "+"
	case domain.StateCommittedDirty:
		state = "*"
	case domain.StateCommittedClean, domain.StateDeleted:
	}

	mapped := "-"
	if p.IsMapped() {
		mapped = "M"
	}

	photos := ""
	if n := len(p.Images()); n > 0 {
		photos = fmt.Sprintf(" [%d]", n)
	}

	sensation := p.Sensation
	if sensation == "" {
		sensation = "(no description)"
	}

	fixed := len(indicator) + 4 + 2 + 2 + len(photos)
	maxLen := l.width - fixed
	if maxLen < 6 {
		maxLen = 6
	}
	if len(sensation) > maxLen {
		sensation = sensation[:maxLen-3] + "..."
	}

	row := fmt.Sprintf("%s%2d%s %s %-*s%s", indicator, index+1, state, mapped, maxLen, sensation, photos)
	switch {
	case index == l.selected:
		return l.styles.Highlight.Render(row)
	case state != " ":
		return l.styles.Unsaved.Render(row)
	default:
		return l.styles.Text.Render(row)
	}
}

// SetPoints replaces the rows and the highlighted index. Pass -1 for no
// selection.
func (l *PointList) SetPoints(points []domain.Point, selected int) {
	l.points = points
	if selected < -1 || selected >= len(points) {
		selected = -1
	}
	l.selected = selected
}

// Points returns the current rows.
func (l *PointList) Points() []domain.Point {
	return l.points
}

// Selected returns the highlighted index, -1 when none.
func (l *PointList) Selected() int {
	return l.selected
}

// Next returns the index after the highlighted one, wrapping at the end.
// ok is false when the list is empty.
func (l *PointList) Next() (int, bool) {
	if len(l.points) == 0 {
		return 0, false
	}
	return (l.selected + 1) % len(l.points), true
}

// Prev returns the index before the highlighted one, wrapping at the top.
func (l *PointList) Prev() (int, bool) {
	if len(l.points) == 0 {
		return 0, false
	}
	if l.selected <= 0 {
		return len(l.points) - 1, true
	}
	return l.selected - 1, true
}

// SetDimensions sets the component dimensions.
func (l *PointList) SetDimensions(width, height int) {
	l.width = width
	l.height = height
}

// Width returns the current width.
func (l *PointList) Width() int {
	return l.width
}

// Height returns the current height.
func (l *PointList) Height() int {
	return l.height
}

// Count returns the number of points.
func (l *PointList) Count() int {
	return len(l.points)
}

// IsEmpty returns whether the list is empty.
func (l *PointList) IsEmpty() bool {
	return len(l.points) == 0
}
