package services

import (
	"context"
	"errors"
	"fmt"
	"reflect"

	"go.uber.org/zap"

	"github.com/refeel-health/refeel-cli/internal/core/domain"
	"github.com/refeel-health/refeel-cli/internal/logger"
)

// CommitPoint persists a snapshot of a point.
//
// An uncommitted point is created in the store. When the create resolves
// the entry is found again by the temporary identity captured here, never
// by position, and re-keyed to the persisted identity. A committed point
// is updated with its full field set. The unsaved flag is cleared only if
// the entry still matches what was sent.
//
// A failure leaves the collection untouched and returns an error matching
// domain.ErrPersistence. Local edits are kept for a retry.
func (l *PointLifecycle) CommitPoint(ctx context.Context, snapshot domain.Point) (domain.Point, error) {
	if snapshot.StumpPosition == nil {
		return domain.Point{}, fmt.Errorf("%w: point has no stump position", domain.ErrValidation)
	}
	if l.gateway == nil {
		return domain.Point{}, domain.ErrNotImplemented
	}

	for {
		l.mu.Lock()
		if l.exam == nil {
			l.mu.Unlock()
			return domain.Point{}, domain.ErrNoExam
		}
		examID, gen := l.exam.ID, l.generation
		id := l.resolve(snapshot.ID)

		current, ok := l.points.Snapshot().Get(id)
		if !ok {
			l.mu.Unlock()
			return domain.Point{}, fmt.Errorf("%w: point %s is no longer in the exam", domain.ErrNotFound, id)
		}
		fields := snapshot.Fields()
		fields.Order = current.Order

		switch v := id.(type) {
		case domain.Uncommitted:
			if pc, busy := l.pending[v]; busy {
				// A create for this point is in flight. Wait, then retry
				// as an update against the persisted identity.
				l.mu.Unlock()
				select {
				case <-pc.done:
					continue
				case <-ctx.Done():
					return domain.Point{}, fmt.Errorf("commit point: %w", ctx.Err())
				}
			}
			pc := &pendingCreate{done: make(chan struct{})}
			l.pending[v] = pc
			l.mu.Unlock()
			return l.create(ctx, examID, gen, v, fields, pc)

		case domain.Committed:
			l.mu.Unlock()
			return l.update(ctx, examID, gen, v, fields)

		default:
			l.mu.Unlock()
			return domain.Point{}, fmt.Errorf("%w: point without identity", domain.ErrInvalidInput)
		}
	}
}

func (l *PointLifecycle) create(
	ctx context.Context,
	examID string,
	gen uint64,
	temp domain.Uncommitted,
	fields domain.PointFields,
	pc *pendingCreate,
) (domain.Point, error) {
	receipt, err := l.gateway.CreatePoint(ctx, examID, fields)

	l.mu.Lock()
	defer close(pc.done)
	if l.pending[temp] == pc {
		delete(l.pending, temp)
	}
	if err != nil {
		l.mu.Unlock()
		logger.L().Warn("create point failed", zap.String("exam_id", examID), zap.String("temp_id", temp.TempID), zap.Error(err))
		return domain.Point{}, domain.NewPersistenceError("create point", err)
	}
	if l.generation != gen {
		orphaned := gen < l.meshReset
		l.mu.Unlock()
		if !orphaned {
			logger.Warn("point %s saved as %s after its session closed", temp.TempID, receipt.ID)
			return domain.Point{}, domain.ErrStaleSession
		}
		// The mesh this point was placed on is gone.
		l.deleteImages(ctx, examID, receipt.ID, fields.ImageURLs)
		if err := l.gateway.DeletePoint(ctx, examID, receipt.ID); err != nil {
			logger.Warn("remove point %s saved across a model change: %v", receipt.ID, err)
		}
		return domain.Point{}, domain.ErrStaleSession
	}

	committed := domain.Committed{PersistedID: receipt.ID}
	l.resolved[temp] = committed

	var out domain.Point
	_, gone := l.points.Update(func(c domain.Collection) (domain.Collection, error) {
		cur, ok := c.Get(temp)
		if !ok {
			return c, domain.ErrNotFound
		}
		cur.ID = committed
		cur.CreatedAt = receipt.CreatedAt
		cur.HasUnsavedChanges = !reflect.DeepEqual(cur.Fields(), fields)
		out = cur
		next, _ := c.Rekey(temp, cur)
		return next, nil
	})
	if gone == nil && l.selected == temp {
		l.selected = committed
	}
	l.mu.Unlock()

	if gone != nil {
		// Deleted locally while the create was in flight.
		if err := l.gateway.DeletePoint(ctx, examID, receipt.ID); err != nil {
			logger.Warn("remove orphaned point %s: %v", receipt.ID, err)
		}
		return domain.Point{}, fmt.Errorf("%w: point was deleted while saving", domain.ErrNotFound)
	}

	logger.L().Debug("point created",
		zap.String("exam_id", examID),
		zap.String("temp_id", temp.TempID),
		zap.String("point_id", receipt.ID))
	return out, nil
}

func (l *PointLifecycle) update(
	ctx context.Context,
	examID string,
	gen uint64,
	id domain.Committed,
	fields domain.PointFields,
) (domain.Point, error) {
	if err := l.gateway.UpdatePoint(ctx, examID, id.PersistedID, fields); err != nil {
		logger.L().Warn("update point failed", zap.String("exam_id", examID), zap.String("point_id", id.PersistedID), zap.Error(err))
		return domain.Point{}, domain.NewPersistenceError("update point", err)
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if l.generation != gen {
		return domain.Point{}, domain.ErrStaleSession
	}

	var out domain.Point
	_, err := l.points.Update(func(c domain.Collection) (domain.Collection, error) {
		cur, ok := c.Get(id)
		if !ok {
			return c, fmt.Errorf("%w: point was deleted while saving", domain.ErrNotFound)
		}
		if reflect.DeepEqual(cur.Fields(), fields) {
			cur.HasUnsavedChanges = false
		}
		out = cur
		return c.With(cur), nil
	})
	if err != nil {
		return domain.Point{}, err
	}
	logger.Debug("point %s updated", id.PersistedID)
	return out, nil
}

// CommitSelected persists the selected point and clears the selection.
func (l *PointLifecycle) CommitSelected(ctx context.Context) (domain.Point, error) {
	p, _, ok := l.Selected()
	if !ok {
		return domain.Point{}, domain.ErrNoSelection
	}
	saved, err := l.CommitPoint(ctx, p)
	if err != nil {
		return domain.Point{}, err
	}

	l.mu.Lock()
	if l.selected == saved.ID {
		l.selected = nil
		l.mappingMode = false
	}
	l.mu.Unlock()
	return saved, nil
}

// CommitAll persists every uncommitted or dirty point in order. Every
// point is attempted; failures are joined into the returned error.
func (l *PointLifecycle) CommitAll(ctx context.Context) (int, error) {
	saved := 0
	var errs []error
	for _, p := range l.points.Snapshot().Ordered() {
		if p.State() == domain.StateCommittedClean {
			continue
		}
		if _, err := l.CommitPoint(ctx, p); err != nil {
			errs = append(errs, fmt.Errorf("point %d: %w", p.Order, err))
			continue
		}
		saved++
	}
	return saved, errors.Join(errs...)
}
