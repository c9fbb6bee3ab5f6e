package services

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/refeel-health/refeel-cli/internal/core/domain"
	"github.com/refeel-health/refeel-cli/internal/core/ports/driven"
	"github.com/refeel-health/refeel-cli/internal/core/ports/driving"
	"github.com/refeel-health/refeel-cli/internal/logger"
)

// Ensure PointLifecycle implements the interface.
var _ driving.PointLifecycle = (*PointLifecycle)(nil)

// PointLifecycle manages the points of the open exam session.
//
// All collection changes go through a PointStore. Session state is guarded
// by mu, which is never held across a gateway call. Each session has a
// generation number; a gateway call that resolves after the session moved
// on is discarded with domain.ErrStaleSession.
type PointLifecycle struct {
	gateway   driven.PersistenceGateway
	confirmer driven.Confirmer
	points    *PointStore
	now       func() time.Time

	mu         sync.Mutex
	exam       *domain.Exam
	generation uint64
	// meshReset is the first generation after the last limb or location
	// change. Creates issued before it belong to a discarded mesh.
	meshReset   uint64
	selected    domain.Identity
	mappingMode bool
	lastTemp    int64
	// pending tracks creates in flight, keyed by the temporary identity
	// captured when the call was issued.
	pending map[domain.Uncommitted]*pendingCreate
	// resolved maps temporary identities to the identity the store
	// assigned, so late snapshots still find their point.
	resolved map[domain.Uncommitted]domain.Committed
}

type pendingCreate struct {
	done chan struct{}
}

// NewPointLifecycle creates a lifecycle manager with no exam open.
func NewPointLifecycle(gateway driven.PersistenceGateway, confirmer driven.Confirmer) *PointLifecycle {
	return &PointLifecycle{
		gateway:   gateway,
		confirmer: confirmer,
		points:    NewPointStore(),
		now:       time.Now,
		pending:   make(map[domain.Uncommitted]*pendingCreate),
		resolved:  make(map[domain.Uncommitted]domain.Committed),
	}
}

// SetClock overrides the time source used for temporary identifiers.
func (l *PointLifecycle) SetClock(now func() time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.now = now
}

// SetConfirmer replaces the confirmation collaborator.
func (l *PointLifecycle) SetConfirmer(c driven.Confirmer) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.confirmer = c
}

// LoadExam opens an exam and its stored points.
func (l *PointLifecycle) LoadExam(ctx context.Context, examID string) (domain.Exam, error) {
	if l.gateway == nil {
		return domain.Exam{}, domain.ErrNotImplemented
	}
	exam, err := l.gateway.GetExam(ctx, examID)
	if err != nil {
		return domain.Exam{}, domain.NewPersistenceError("load exam", err)
	}
	stored, err := l.gateway.ListPoints(ctx, examID)
	if err != nil {
		return domain.Exam{}, domain.NewPersistenceError("load points", err)
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	l.resetSession()
	l.exam = &exam
	l.points.Reset(domain.NewCollection(stored...).Resequenced())
	logger.Debug("exam %s loaded with %d points", exam.ID, len(stored))
	return exam, nil
}

// CloseExam ends the session.
func (l *PointLifecycle) CloseExam() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.resetSession()
	l.exam = nil
}

// resetSession starts a new generation (caller holds mu).
func (l *PointLifecycle) resetSession() {
	l.generation++
	l.selected = nil
	l.mappingMode = false
	l.pending = make(map[domain.Uncommitted]*pendingCreate)
	l.resolved = make(map[domain.Uncommitted]domain.Committed)
	l.points.Reset(domain.NewCollection())
}

// Exam returns the open exam.
func (l *PointLifecycle) Exam() (domain.Exam, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.exam == nil {
		return domain.Exam{}, false
	}
	return *l.exam, true
}

// Points returns the current collection snapshot.
func (l *PointLifecycle) Points() domain.Collection {
	return l.points.Snapshot()
}

// HandleStumpPick relocates the uncommitted point or creates a new one.
func (l *PointLifecycle) HandleStumpPick(pos domain.Vec3) (domain.Point, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.exam == nil {
		return domain.Point{}, domain.ErrNoExam
	}

	var result domain.Point
	_, err := l.points.Update(func(c domain.Collection) (domain.Collection, error) {
		if p, ok := c.Uncommitted(); ok {
			p.StumpPosition = pos.Ptr()
			p.HasUnsavedChanges = true
			result = p
			return c.With(p), nil
		}
		if c.Len() >= domain.MaxPointsPerExam {
			return c, fmt.Errorf("%w: an exam holds at most %d points", domain.ErrCapacity, domain.MaxPointsPerExam)
		}
		result = domain.Point{
			ID:                l.nextTempID(),
			StumpPosition:     pos.Ptr(),
			Order:             c.Len() + 1,
			HasUnsavedChanges: true,
		}
		return c.With(result), nil
	})
	if err != nil {
		return domain.Point{}, err
	}
	l.selected = result.ID
	logger.Debug("stump pick %s -> point %s", pos, result.ID)
	return result, nil
}

// nextTempID returns a temporary identity unique within the process
// (caller holds mu).
func (l *PointLifecycle) nextTempID() domain.Uncommitted {
	n := l.now().UnixNano()
	if n <= l.lastTemp {
		n = l.lastTemp + 1
	}
	l.lastTemp = n
	return domain.NewTempIdentity(time.Unix(0, n))
}

// HandleLimbPick places the selected point on the full-limb model.
// An existing limb position is never overwritten; use UnmapLimb first.
func (l *PointLifecycle) HandleLimbPick(pos domain.Vec3) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.selected == nil {
		return false, domain.ErrNoSelection
	}

	placed := false
	_, err := l.points.Update(func(c domain.Collection) (domain.Collection, error) {
		p, ok := c.Get(l.selected)
		if !ok {
			return c, domain.ErrNoSelection
		}
		if p.IsMapped() {
			return c, nil
		}
		p.LimbPosition = pos.Ptr()
		p.HasUnsavedChanges = true
		placed = true
		return c.With(p), nil
	})
	if err != nil {
		return false, err
	}
	if placed {
		l.mappingMode = false
	}
	return placed, nil
}

// UnmapLimb clears the limb position of the point at index.
func (l *PointLifecycle) UnmapLimb(index int) error {
	return l.mutateAt(index, func(p domain.Point) (domain.Point, error) {
		if !p.IsMapped() {
			return p, fmt.Errorf("%w: point %d is not mapped", domain.ErrInvalidInput, index+1)
		}
		p.LimbPosition = nil
		return p, nil
	})
}

// UpdateDescription edits clinical metadata and marks the point unsaved.
func (l *PointLifecycle) UpdateDescription(index int, d domain.Description) (domain.Point, error) {
	var out domain.Point
	err := l.mutateAt(index, func(p domain.Point) (domain.Point, error) {
		out = p.WithDescription(d)
		return out, nil
	})
	if err != nil {
		return domain.Point{}, err
	}
	out.HasUnsavedChanges = true
	return out, nil
}

// mutateAt applies fn to the point at a presentation index and marks it
// unsaved.
func (l *PointLifecycle) mutateAt(index int, fn func(domain.Point) (domain.Point, error)) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.exam == nil {
		return domain.ErrNoExam
	}
	_, err := l.points.Update(func(c domain.Collection) (domain.Collection, error) {
		p, ok := c.At(index)
		if !ok {
			return c, indexError(index)
		}
		next, err := fn(p)
		if err != nil {
			return c, err
		}
		next.HasUnsavedChanges = true
		return c.With(next), nil
	})
	return err
}

// Select selects the point at a zero-based index.
func (l *PointLifecycle) Select(index int) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	p, ok := l.points.Snapshot().At(index)
	if !ok {
		return indexError(index)
	}
	if l.selected != p.ID {
		l.mappingMode = false
	}
	l.selected = p.ID
	return nil
}

// ClearSelection deselects any point.
func (l *PointLifecycle) ClearSelection() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.selected = nil
	l.mappingMode = false
}

// Selected returns the selected point and its index.
func (l *PointLifecycle) Selected() (domain.Point, int, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.selected == nil {
		return domain.Point{}, -1, false
	}
	c := l.points.Snapshot()
	p, ok := c.Get(l.selected)
	if !ok {
		return domain.Point{}, -1, false
	}
	return p, c.IndexOf(p.ID), true
}

// SelectClosestPoint selects the point nearest to pos among those with a
// position in the view's space. Nothing changes when the nearest point is
// further than maxDistance.
func (l *PointLifecycle) SelectClosestPoint(pos domain.Vec3, maxDistance float64, view domain.ViewKind) (int, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	best, bestDist := -1, math.Inf(1)
	var bestID domain.Identity
	for i, p := range l.points.Snapshot().Ordered() {
		at := p.StumpPosition
		if view == domain.ViewLimb {
			at = p.LimbPosition
		}
		if at == nil {
			continue
		}
		if d := at.Distance(pos); d < bestDist {
			best, bestDist, bestID = i, d, p.ID
		}
	}
	if best < 0 || bestDist > maxDistance {
		return -1, false
	}
	l.selected = bestID
	return best, true
}

// SetMappingMode enters or leaves limb mapping for the selected point.
func (l *PointLifecycle) SetMappingMode(on bool) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if on && l.selected == nil {
		return domain.ErrNoSelection
	}
	l.mappingMode = on
	return nil
}

// MappingMode reports whether limb picks place the selected point.
func (l *PointLifecycle) MappingMode() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.mappingMode
}

// Visuals resolves marker styles for a view.
func (l *PointLifecycle) Visuals(view domain.ViewKind) []domain.VisualPoint {
	l.mu.Lock()
	selected := l.selected
	l.mu.Unlock()
	return domain.Visuals(l.points.Snapshot(), selected, view)
}

// UnsavedCount counts uncommitted and dirty points.
func (l *PointLifecycle) UnsavedCount() int {
	return l.points.Snapshot().UnsavedCount()
}

// resolve maps a temporary identity to its persisted one once known
// (caller holds mu).
func (l *PointLifecycle) resolve(id domain.Identity) domain.Identity {
	if u, ok := id.(domain.Uncommitted); ok {
		if c, ok := l.resolved[u]; ok {
			return c
		}
	}
	return id
}

func indexError(index int) error {
	return fmt.Errorf("%w: no point %d", domain.ErrNotFound, index+1)
}
