package picking

import "time"

// EventKind is the phase of a pointer interaction.
type EventKind int

const (
	// EventDown starts an interaction.
	EventDown EventKind = iota
	// EventMove reports pointer motion while pressed.
	EventMove
	// EventUp ends an interaction.
	EventUp
)

// Source is the input device behind an event.
type Source int

const (
	// SourceMouse is a mouse or trackpad.
	SourceMouse Source = iota
	// SourceTouch is a finger on a touch screen.
	SourceTouch
)

// String returns the device name.
func (s Source) String() string {
	if s == SourceTouch {
		return "touch"
	}
	return "mouse"
}

// PointerEvent is one pointer sample in screen coordinates.
type PointerEvent struct {
	Kind   EventKind
	Source Source
	X, Y   float64
	At     time.Time
}
