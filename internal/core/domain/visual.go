package domain

import "strconv"

// ViewKind identifies which model a point is rendered on.
type ViewKind int

const (
	// ViewStump is the stump model, where points are created and moved.
	ViewStump ViewKind = iota
	// ViewLimb is the full-limb model, where points are mapped.
	ViewLimb
)

// String returns the view name.
func (v ViewKind) String() string {
	if v == ViewLimb {
		return "limb"
	}
	return "stump"
}

// Marker colours.
const (
	ColorCommitted   uint32 = 0xFF0000
	ColorUncommitted uint32 = 0x4169E1
	ColorSelected    uint32 = 0xFFA500
)

// Marker sizes in model units.
const (
	SizeBase        = 0.08
	SizeUncommitted = 0.09
	SizeSelected    = 0.12
)

// VisualStyle is how a point marker is drawn.
type VisualStyle struct {
	Color   uint32
	Size    float64
	Opacity float64
	// Label is empty when suppressed.
	Label string
}

// HexColor formats the colour as #RRGGBB.
func (s VisualStyle) HexColor() string {
	const digits = "0123456789ABCDEF"
	b := []byte("#000000")
	for i := 0; i < 6; i++ {
		b[6-i] = digits[(s.Color>>(4*i))&0xF]
	}
	return string(b)
}

// VisualInput is everything ResolveVisual looks at.
type VisualInput struct {
	// Index is the zero-based presentation index.
	Index       int
	Selected    bool
	Uncommitted bool
	View        ViewKind
}

// ResolveVisual maps lifecycle and selection state to a marker style.
// On the stump view an unsaved point outranks selection; on the limb view
// the point being mapped outranks its unsaved state.
func ResolveVisual(in VisualInput) VisualStyle {
	label := strconv.Itoa(in.Index + 1)

	uncommitted := VisualStyle{Color: ColorUncommitted, Size: SizeUncommitted, Opacity: 0.9}
	selected := VisualStyle{Color: ColorSelected, Size: SizeSelected, Opacity: 1.0, Label: label}

	switch {
	case in.Uncommitted && in.Selected && in.View == ViewLimb:
		return selected
	case in.Uncommitted:
		return uncommitted
	case in.Selected:
		return selected
	default:
		return VisualStyle{Color: ColorCommitted, Size: SizeBase, Opacity: 0.8, Label: label}
	}
}

// VisualPoint is a positioned marker handed to the rendering surface.
type VisualPoint struct {
	Position Vec3
	Style    VisualStyle
}

// Visuals resolves markers for every point visible on view.
// Points without a position in that view's space are skipped.
func Visuals(c Collection, selected Identity, view ViewKind) []VisualPoint {
	ordered := c.Ordered()
	out := make([]VisualPoint, 0, len(ordered))
	for i, p := range ordered {
		pos := p.StumpPosition
		if view == ViewLimb {
			pos = p.LimbPosition
		}
		if pos == nil {
			continue
		}
		out = append(out, VisualPoint{
			Position: *pos,
			Style: ResolveVisual(VisualInput{
				Index:       i,
				Selected:    selected != nil && p.ID == selected,
				Uncommitted: !p.IsCommitted(),
				View:        view,
			}),
		})
	}
	return out
}
