// Package tui provides an interactive terminal user interface for mapping
// phantom-limb sensations. It implements a driving adapter following
// hexagonal architecture principles.
package tui

import (
	"context"

	"github.com/refeel-health/refeel-cli/internal/core/domain"
	"github.com/refeel-health/refeel-cli/internal/core/ports/driving"
	"github.com/refeel-health/refeel-cli/internal/geometry"
)

// MeshLoader supplies the stump and full-limb models of an exam.
type MeshLoader interface {
	// Load returns both meshes of an exam.
	Load(exam domain.Exam) (stump, full *geometry.Mesh, err error)

	// LoadFile re-reads one model file for a view.
	LoadFile(name string, view domain.ViewKind) (*geometry.Mesh, error)

	// Watch reports model file names that changed on disk.
	Watch(ctx context.Context) (<-chan string, error)

	// Dir returns the model directory, empty when only built-ins are used.
	Dir() string
}

// Ports aggregates everything the TUI drives.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Lifecycle owns the points of the open exam.
	Lifecycle driving.PointLifecycle

	// Meshes loads and watches the model files.
	Meshes MeshLoader

	// Confirmer routes lifecycle confirmations into TUI modals. The
	// lifecycle must have been built with the same confirmer.
	Confirmer *ModalConfirmer
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p.Lifecycle == nil {
		return ErrMissingLifecycle
	}
	if p.Meshes == nil {
		return ErrMissingMeshes
	}
	if p.Confirmer == nil {
		return ErrMissingConfirmer
	}
	return nil
}
