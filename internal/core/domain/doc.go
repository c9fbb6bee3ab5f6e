// Package domain defines the core clinical entities for refeel.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Exam: A mapping session for one patient and one limb model
//   - Point: A mapped sensation location on the stump (and optionally the full limb)
//   - Identity: The commit-state-carrying identifier of a point
//   - Collection: An immutable, identity-keyed snapshot of an exam's points
//   - VisualStyle: The render style resolved for a point marker
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
