package list

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/refeel-health/refeel-cli/internal/core/domain"
)

func samplePoints() []domain.Point {
	return []domain.Point{
		{
			ID:            domain.Committed{PersistedID: "a"},
			StumpPosition: &domain.Vec3{X: 0.1},
			LimbPosition:  &domain.Vec3{Y: 1},
			Sensation:     "tingling",
			ImageURLs:     []string{"u1", "u2"},
			Order:         1,
		},
		{
			ID:                domain.Committed{PersistedID: "b"},
			StumpPosition:     &domain.Vec3{X: 0.2},
			Sensation:         "pressure",
			HasUnsavedChanges: true,
			Order:             2,
		},
		{
			ID:            domain.Uncommitted{TempID: "temp_1"},
			StumpPosition: &domain.Vec3{X: 0.3},
			Order:         3,
		},
	}
}

func TestNewPointList(t *testing.T) {
	l := NewPointList(nil)

	require.NotNil(t, l)
	assert.NotNil(t, l.styles)
	assert.Equal(t, -1, l.Selected())
	assert.True(t, l.IsEmpty())
	assert.Nil(t, l.Init())

	updated, cmd := l.Update(tea.KeyMsg{Type: tea.KeyDown})
	assert.Equal(t, l, updated)
	assert.Nil(t, cmd)
}

func TestPointList_SetPoints(t *testing.T) {
	l := NewPointList(nil)

	l.SetPoints(samplePoints(), 1)
	assert.Equal(t, 3, l.Count())
	assert.Equal(t, 1, l.Selected())
	assert.Len(t, l.Points(), 3)

	l.SetPoints(samplePoints(), 7)
	assert.Equal(t, -1, l.Selected())
}

func TestPointList_NextPrev(t *testing.T) {
	l := NewPointList(nil)

	_, ok := l.Next()
	assert.False(t, ok)
	_, ok = l.Prev()
	assert.False(t, ok)

	l.SetPoints(samplePoints(), -1)
	next, ok := l.Next()
	require.True(t, ok)
	assert.Equal(t, 0, next)
	prev, ok := l.Prev()
	require.True(t, ok)
	assert.Equal(t, 2, prev)

	l.SetPoints(samplePoints(), 2)
	next, _ = l.Next()
	assert.Equal(t, 0, next)
	prev, _ = l.Prev()
	assert.Equal(t, 1, prev)
}

func TestPointList_View_Empty(t *testing.T) {
	l := NewPointList(nil)

	view := l.View()

	assert.Contains(t, view, "Points (0)")
	assert.Contains(t, view, "Tap the stump")
}

func TestPointList_View_Rows(t *testing.T) {
	l := NewPointList(nil)
	l.SetDimensions(40, 10)
	l.SetPoints(samplePoints(), 0)

	view := l.View()

	assert.Contains(t, view, "Points (3)")
	assert.Contains(t, view, ">  1  M tingling")
	assert.Contains(t, view, "[2]")
	assert.Contains(t, view, " 2* - pressure")
	assert.Contains(t, view, " 3+ - (no description)")
}

func TestPointList_View_ScrollsToSelection(t *testing.T) {
	l := NewPointList(nil)
	l.SetDimensions(40, 3)
	l.SetPoints(samplePoints(), 2)

	view := l.View()

	assert.Contains(t, view, "(no description)")
	assert.NotContains(t, view, "tingling")
}

func TestPointList_View_TruncatesSensation(t *testing.T) {
	l := NewPointList(nil)
	l.SetDimensions(20, 10)
	points := samplePoints()
	points[0].Sensation = "sharp shooting pain radiating to the heel"
	l.SetPoints(points[:1], -1)

	view := l.View()

	assert.Contains(t, view, "...")
	assert.NotContains(t, view, "heel")
}

func TestPointList_SetDimensions(t *testing.T) {
	l := NewPointList(nil)

	l.SetDimensions(50, 20)

	assert.Equal(t, 50, l.Width())
	assert.Equal(t, 20, l.Height())
}
