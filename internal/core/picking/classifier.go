package picking

import (
	"math"
	"time"
)

// Default classification thresholds.
const (
	DefaultDragThreshold  = 5.0
	DefaultTapMaxDuration = 300 * time.Millisecond
)

// Gesture is what a pointer interaction turned out to be.
type Gesture int

const (
	// GestureNone means nothing actionable happened.
	GestureNone Gesture = iota
	// GestureDragging is reported for each move of a drag.
	GestureDragging
	// GestureTap is a completed tap; X and Y hold the up position.
	GestureTap
	// GestureDragEnd closes a drag.
	GestureDragEnd
)

// Outcome is the classifier's verdict for one event.
type Outcome struct {
	Gesture Gesture
	X, Y    float64
	// DX and DY are the motion since the previous sample while dragging.
	DX, DY float64
}

// Classifier separates taps from drags. A press that moves further than
// DragThreshold from its start becomes a drag for the rest of the
// interaction; a press held TapMaxDuration or longer is also a drag.
// Mouse and touch share the same thresholds and state.
type Classifier struct {
	DragThreshold  float64
	TapMaxDuration time.Duration

	pressed      bool
	dragging     bool
	downX, downY float64
	lastX, lastY float64
	downAt       time.Time
}

// NewClassifier returns a classifier. Non-positive values use the defaults.
func NewClassifier(dragThreshold float64, tapMax time.Duration) *Classifier {
	if dragThreshold <= 0 {
		dragThreshold = DefaultDragThreshold
	}
	if tapMax <= 0 {
		tapMax = DefaultTapMaxDuration
	}
	return &Classifier{DragThreshold: dragThreshold, TapMaxDuration: tapMax}
}

// Pressed reports whether an interaction is in progress.
func (c *Classifier) Pressed() bool {
	return c.pressed
}

// Handle advances the state machine. Moves and ups without a preceding
// down are ignored.
func (c *Classifier) Handle(ev PointerEvent) Outcome {
	switch ev.Kind {
	case EventDown:
		c.pressed = true
		c.dragging = false
		c.downX, c.downY = ev.X, ev.Y
		c.lastX, c.lastY = ev.X, ev.Y
		c.downAt = ev.At
		return Outcome{Gesture: GestureNone, X: ev.X, Y: ev.Y}

	case EventMove:
		if !c.pressed {
			return Outcome{}
		}
		c.track(ev)
		out := Outcome{Gesture: GestureNone, X: ev.X, Y: ev.Y}
		if c.dragging {
			out.Gesture = GestureDragging
			out.DX, out.DY = ev.X-c.lastX, ev.Y-c.lastY
		}
		c.lastX, c.lastY = ev.X, ev.Y
		return out

	case EventUp:
		if !c.pressed {
			return Outcome{}
		}
		c.track(ev)
		elapsed := ev.At.Sub(c.downAt)
		drag := c.dragging || elapsed >= c.TapMaxDuration
		c.pressed = false
		c.dragging = false
		if drag {
			return Outcome{Gesture: GestureDragEnd, X: ev.X, Y: ev.Y}
		}
		return Outcome{Gesture: GestureTap, X: ev.X, Y: ev.Y}
	}
	return Outcome{}
}

// Reset abandons any interaction in progress.
func (c *Classifier) Reset() {
	c.pressed = false
	c.dragging = false
}

func (c *Classifier) track(ev PointerEvent) {
	if c.dragging {
		return
	}
	if math.Hypot(ev.X-c.downX, ev.Y-c.downY) > c.DragThreshold {
		c.dragging = true
	}
}
