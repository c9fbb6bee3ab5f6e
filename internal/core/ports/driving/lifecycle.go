package driving

import (
	"context"

	"github.com/refeel-health/refeel-cli/internal/core/domain"
)

// PointLifecycle is the single authority over point count, identity and
// commit decisions for the exam that is currently open.
type PointLifecycle interface {
	// LoadExam opens an exam and its stored points, replacing any open session.
	LoadExam(ctx context.Context, examID string) (domain.Exam, error)

	// CloseExam ends the session. Pending commit resolutions are discarded.
	CloseExam()

	// Exam returns the open exam.
	Exam() (domain.Exam, bool)

	// Points returns the current collection snapshot.
	Points() domain.Collection

	// HandleStumpPick moves the uncommitted point to pos, or creates one.
	// Returns domain.ErrCapacity when the exam is full.
	HandleStumpPick(pos domain.Vec3) (domain.Point, error)

	// HandleLimbPick sets the selected point's limb position if it has none.
	// placed is false when the point was already mapped.
	HandleLimbPick(pos domain.Vec3) (placed bool, err error)

	// UnmapLimb clears the limb position of the point at index.
	UnmapLimb(index int) error

	// Select selects the point at a zero-based index.
	Select(index int) error

	// ClearSelection deselects any point.
	ClearSelection()

	// Selected returns the selected point and its index.
	Selected() (domain.Point, int, bool)

	// SelectClosestPoint selects the nearest point to pos in the view's
	// space when it lies within maxDistance.
	SelectClosestPoint(pos domain.Vec3, maxDistance float64, view domain.ViewKind) (int, bool)

	// SetMappingMode enters or leaves limb mapping for the selected point.
	SetMappingMode(on bool) error

	// MappingMode reports whether limb picks place the selected point.
	MappingMode() bool

	// UpdateDescription edits clinical metadata and marks the point unsaved.
	UpdateDescription(index int, d domain.Description) (domain.Point, error)

	// CommitPoint persists a snapshot of a point.
	CommitPoint(ctx context.Context, snapshot domain.Point) (domain.Point, error)

	// CommitSelected persists the selected point and clears the selection.
	CommitSelected(ctx context.Context) (domain.Point, error)

	// CommitAll persists every uncommitted or dirty point.
	CommitAll(ctx context.Context) (saved int, err error)

	// AttachImage uploads a photo, appends it and saves committed points.
	AttachImage(ctx context.Context, index int, image []byte) (domain.Point, error)

	// RemoveImage deletes one photo of a point.
	RemoveImage(ctx context.Context, index int, url string) (domain.Point, error)

	// DeletePoint removes a point after confirmation. orphaned lists image
	// URLs whose remote delete failed.
	DeletePoint(ctx context.Context, index int) (orphaned []string, err error)

	// UpdateExam saves exam details. A limb or location change needs
	// confirmation and destroys every point first.
	UpdateExam(ctx context.Context, next domain.Exam) (deleted int, err error)

	// Visuals resolves marker styles for a view.
	Visuals(view domain.ViewKind) []domain.VisualPoint

	// UnsavedCount counts uncommitted and dirty points.
	UnsavedCount() int
}
