package geometry

// Viewport is the on-screen rectangle a scene is rendered into, in pixels
// (or terminal cells).
type Viewport struct {
	X, Y          float64
	Width, Height float64
}

// Aspect returns width over height. Degenerate viewports report 1.
func (v Viewport) Aspect() float64 {
	if v.Width <= 0 || v.Height <= 0 {
		return 1
	}
	return v.Width / v.Height
}

// Contains reports whether a screen position lies inside the viewport.
func (v Viewport) Contains(px, py float64) bool {
	return px >= v.X && px < v.X+v.Width && py >= v.Y && py < v.Y+v.Height
}

// NDC converts a screen position to normalised device coordinates:
// x grows right, y grows up, both in [-1, 1] inside the viewport.
func (v Viewport) NDC(px, py float64) (float64, float64) {
	if v.Width <= 0 || v.Height <= 0 {
		return 0, 0
	}
	x := ((px-v.X)/v.Width)*2 - 1
	y := -((py-v.Y)/v.Height)*2 + 1
	return x, y
}
