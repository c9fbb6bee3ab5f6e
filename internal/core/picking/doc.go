// Package picking turns raw pointer input over a rendered mesh into
// mesh-local positions.
//
// A Classifier decides whether a down/move/up sequence is a tap or a drag
// using one state machine for mouse and touch. A Picker feeds it events,
// casts a ray for taps and orbits the camera for drags.
package picking
