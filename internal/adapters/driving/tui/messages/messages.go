// Package messages defines Bubbletea message types for the TUI.
// Messages represent events and commands that flow through the Elm architecture.
package messages

import (
	"github.com/refeel-health/refeel-cli/internal/core/domain"
	"github.com/refeel-health/refeel-cli/internal/geometry"
)

// ViewType identifies which view is currently active.
type ViewType int

const (
	// ViewStump shows the stump model, where points are placed.
	ViewStump ViewType = iota
	// ViewLimb shows the full-limb model, where points are mapped.
	ViewLimb
	// ViewHelp is the help/keybindings view.
	ViewHelp
)

// String returns the string representation of the view type.
func (v ViewType) String() string {
	switch v {
	case ViewStump:
		return "stump"
	case ViewLimb:
		return "limb"
	case ViewHelp:
		return "help"
	default:
		return "unknown"
	}
}

// Kind returns the model view a stage type renders.
func (v ViewType) Kind() domain.ViewKind {
	if v == ViewLimb {
		return domain.ViewLimb
	}
	return domain.ViewStump
}

// ExamLoaded carries the opened exam and its meshes.
type ExamLoaded struct {
	Exam  domain.Exam
	Stump *geometry.Mesh
	Limb  *geometry.Mesh
	Err   error
}

// PointSaved signals a commit finished.
type PointSaved struct {
	Point domain.Point
	Err   error
}

// AllSaved signals a bulk save finished.
type AllSaved struct {
	Count int
	Err   error
}

// PointDeleted signals a delete finished. Orphaned lists images whose
// remote delete failed.
type PointDeleted struct {
	Orphaned []string
	Err      error
}

// ModelChanged signals a model file changed on disk.
type ModelChanged struct {
	Name string
}

// ModelReloaded carries a re-read mesh for one view.
type ModelReloaded struct {
	Kind domain.ViewKind
	Mesh *geometry.Mesh
	Err  error
}

// ConfirmRequested asks the operator a yes/no question. The answer is
// sent on Reply exactly once.
type ConfirmRequested struct {
	Prompt string
	Reply  chan<- bool
}

// ErrorOccurred signals that an error happened.
type ErrorOccurred struct {
	Err error
}

// Quit signals the application should exit.
type Quit struct{}
