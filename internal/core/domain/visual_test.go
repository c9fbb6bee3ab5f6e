package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveVisual(t *testing.T) {
	committed := VisualStyle{Color: ColorCommitted, Size: SizeBase, Opacity: 0.8, Label: "3"}
	uncommitted := VisualStyle{Color: ColorUncommitted, Size: SizeUncommitted, Opacity: 0.9}
	selected := VisualStyle{Color: ColorSelected, Size: SizeSelected, Opacity: 1.0, Label: "3"}

	tests := []struct {
		name     string
		in       VisualInput
		expected VisualStyle
	}{
		{
			name:     "committed unselected",
			in:       VisualInput{Index: 2, View: ViewStump},
			expected: committed,
		},
		{
			name:     "uncommitted unselected",
			in:       VisualInput{Index: 2, Uncommitted: true, View: ViewStump},
			expected: uncommitted,
		},
		{
			name:     "selected committed on stump",
			in:       VisualInput{Index: 2, Selected: true, View: ViewStump},
			expected: selected,
		},
		{
			name:     "selected committed on limb",
			in:       VisualInput{Index: 2, Selected: true, View: ViewLimb},
			expected: selected,
		},
		{
			name:     "uncommitted wins over selected on stump",
			in:       VisualInput{Index: 2, Selected: true, Uncommitted: true, View: ViewStump},
			expected: uncommitted,
		},
		{
			name:     "selected wins over uncommitted on limb",
			in:       VisualInput{Index: 2, Selected: true, Uncommitted: true, View: ViewLimb},
			expected: selected,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ResolveVisual(tt.in))
		})
	}
}

func TestVisualStyle_HexColor(t *testing.T) {
	assert.Equal(t, "#FF0000", VisualStyle{Color: ColorCommitted}.HexColor())
	assert.Equal(t, "#4169E1", VisualStyle{Color: ColorUncommitted}.HexColor())
	assert.Equal(t, "#FFA500", VisualStyle{Color: ColorSelected}.HexColor())
}

func TestVisuals_SkipsUnmappedOnLimb(t *testing.T) {
	mapped := committedPoint("a", 1)
	mapped.LimbPosition = &Vec3{Y: 1}
	c := NewCollection(mapped, committedPoint("b", 2))

	stump := Visuals(c, nil, ViewStump)
	assert.Len(t, stump, 2)

	limb := Visuals(c, Committed{PersistedID: "a"}, ViewLimb)
	require.Len(t, limb, 1)
	assert.Equal(t, Vec3{Y: 1}, limb[0].Position)
	assert.Equal(t, ColorSelected, limb[0].Style.Color)
	assert.Equal(t, "1", limb[0].Style.Label)
}
