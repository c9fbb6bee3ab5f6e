package services

import (
	"context"
	"fmt"
	"slices"

	"github.com/refeel-health/refeel-cli/internal/core/domain"
	"github.com/refeel-health/refeel-cli/internal/logger"
)

// DeletePoint removes the point at index after the operator confirms.
//
// Each image is deleted first, then the record of a committed point.
// Image failures are logged and returned as orphaned URLs but do not stop
// the record delete. Uncommitted points have no record to delete, but
// photos already uploaded for them are removed from the store too. The
// remaining points are re-sequenced 1..N; points whose order moved are
// marked unsaved so the new order reaches the store on the next save.
func (l *PointLifecycle) DeletePoint(ctx context.Context, index int) ([]string, error) {
	l.mu.Lock()
	if l.exam == nil {
		l.mu.Unlock()
		return nil, domain.ErrNoExam
	}
	target, ok := l.points.Snapshot().At(index)
	confirmer, gen := l.confirmer, l.generation
	l.mu.Unlock()
	if !ok {
		return nil, indexError(index)
	}

	if err := confirm(ctx, confirmer, fmt.Sprintf("Delete point %d?", index+1)); err != nil {
		return nil, err
	}

	// Re-read by identity: the collection may have moved on while the
	// operator was answering. The answer only holds for the session it
	// was asked in.
	l.mu.Lock()
	if l.exam == nil {
		l.mu.Unlock()
		return nil, domain.ErrNoExam
	}
	if l.generation != gen {
		l.mu.Unlock()
		return nil, domain.ErrStaleSession
	}
	id := l.resolve(target.ID)
	p, ok := l.points.Snapshot().Get(id)
	examID := l.exam.ID
	l.mu.Unlock()
	if !ok {
		return nil, fmt.Errorf("%w: point was already removed", domain.ErrNotFound)
	}

	orphaned := l.deleteImages(ctx, examID, id.String(), p.Images())
	if c, isCommitted := id.(domain.Committed); isCommitted {
		if err := l.gateway.DeletePoint(ctx, examID, c.PersistedID); err != nil {
			return orphaned, domain.NewPersistenceError("delete point", err)
		}
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if l.generation != gen {
		return orphaned, domain.ErrStaleSession
	}
	_, err := l.points.Update(func(c domain.Collection) (domain.Collection, error) {
		before := make(map[domain.Identity]int, c.Len())
		for _, q := range c.Ordered() {
			before[q.ID] = q.Order
		}
		next := c.Without(id)
		for _, q := range next.Ordered() {
			if q.IsCommitted() && before[q.ID] != q.Order {
				q.HasUnsavedChanges = true
				next = next.With(q)
			}
		}
		return next, nil
	})
	if err != nil {
		return orphaned, err
	}
	if l.selected == id || l.selected == target.ID {
		l.selected = nil
		l.mappingMode = false
	}
	logger.Debug("point %s deleted", id)
	return orphaned, nil
}

// deleteImages removes images one by one and returns the URLs that could
// not be removed.
func (l *PointLifecycle) deleteImages(ctx context.Context, examID, pointID string, urls []string) []string {
	var failed []string
	for _, url := range urls {
		if err := l.gateway.DeleteImage(ctx, examID, pointID, url); err != nil {
			logger.Warn("delete image %s of point %s: %v", url, pointID, err)
			failed = append(failed, url)
		}
	}
	return failed
}

// AttachImage uploads a photo for the point at index and appends it to
// the point's images. Committed points are saved straight away; an
// uncommitted point carries the image until it is committed.
func (l *PointLifecycle) AttachImage(ctx context.Context, index int, image []byte) (domain.Point, error) {
	if l.gateway == nil {
		return domain.Point{}, domain.ErrNotImplemented
	}
	if len(image) == 0 {
		return domain.Point{}, fmt.Errorf("%w: empty image", domain.ErrInvalidInput)
	}

	l.mu.Lock()
	if l.exam == nil {
		l.mu.Unlock()
		return domain.Point{}, domain.ErrNoExam
	}
	p, ok := l.points.Snapshot().At(index)
	examID, gen := l.exam.ID, l.generation
	l.mu.Unlock()
	if !ok {
		return domain.Point{}, indexError(index)
	}
	if len(p.Images()) >= domain.MaxImagesPerPoint {
		return domain.Point{}, fmt.Errorf("%w: a point holds at most %d images", domain.ErrCapacity, domain.MaxImagesPerPoint)
	}

	url, err := l.gateway.UploadImage(ctx, examID, p.ID.String(), image)
	if err != nil {
		return domain.Point{}, domain.NewPersistenceError("upload image", err)
	}

	l.mu.Lock()
	if l.generation != gen {
		l.mu.Unlock()
		l.discardImage(ctx, examID, p.ID.String(), url)
		return domain.Point{}, domain.ErrStaleSession
	}
	id := l.resolve(p.ID)
	var out domain.Point
	_, err = l.points.Update(func(c domain.Collection) (domain.Collection, error) {
		cur, ok := c.Get(id)
		if !ok {
			return c, fmt.Errorf("%w: point was deleted during upload", domain.ErrNotFound)
		}
		images := cur.Images()
		if len(images) >= domain.MaxImagesPerPoint {
			return c, fmt.Errorf("%w: a point holds at most %d images", domain.ErrCapacity, domain.MaxImagesPerPoint)
		}
		out = cur.WithImages(append(images, url))
		out.HasUnsavedChanges = true
		return c.With(out), nil
	})
	l.mu.Unlock()
	if err != nil {
		l.discardImage(ctx, examID, p.ID.String(), url)
		return domain.Point{}, err
	}

	if !out.IsCommitted() {
		return out, nil
	}
	return l.CommitPoint(ctx, out)
}

func (l *PointLifecycle) discardImage(ctx context.Context, examID, pointID, url string) {
	if err := l.gateway.DeleteImage(ctx, examID, pointID, url); err != nil {
		logger.Warn("discard uploaded image %s: %v", url, err)
	}
}

// RemoveImage deletes one photo of the point at index. The remote image
// goes first; the local list only changes once that succeeded.
func (l *PointLifecycle) RemoveImage(ctx context.Context, index int, url string) (domain.Point, error) {
	if l.gateway == nil {
		return domain.Point{}, domain.ErrNotImplemented
	}

	l.mu.Lock()
	if l.exam == nil {
		l.mu.Unlock()
		return domain.Point{}, domain.ErrNoExam
	}
	p, ok := l.points.Snapshot().At(index)
	examID, gen := l.exam.ID, l.generation
	l.mu.Unlock()
	if !ok {
		return domain.Point{}, indexError(index)
	}
	if !slices.Contains(p.Images(), url) {
		return domain.Point{}, fmt.Errorf("%w: point %d has no image %s", domain.ErrNotFound, index+1, url)
	}

	if err := l.gateway.DeleteImage(ctx, examID, p.ID.String(), url); err != nil {
		return domain.Point{}, domain.NewPersistenceError("delete image", err)
	}

	l.mu.Lock()
	if l.generation != gen {
		l.mu.Unlock()
		return domain.Point{}, domain.ErrStaleSession
	}
	id := l.resolve(p.ID)
	var out domain.Point
	_, err := l.points.Update(func(c domain.Collection) (domain.Collection, error) {
		cur, ok := c.Get(id)
		if !ok {
			return c, fmt.Errorf("%w: point was deleted", domain.ErrNotFound)
		}
		images := slices.DeleteFunc(cur.Images(), func(u string) bool { return u == url })
		out = cur.WithImages(images)
		out.HasUnsavedChanges = true
		return c.With(out), nil
	})
	l.mu.Unlock()
	if err != nil {
		return domain.Point{}, err
	}

	if !out.IsCommitted() {
		return out, nil
	}
	return l.CommitPoint(ctx, out)
}

// UpdateExam saves exam details for the open exam. Changing limb or
// location moves the mesh the points are defined on, so after confirmation
// every stored point is deleted (images first) and the local collection is
// cleared before the exam itself is updated.
func (l *PointLifecycle) UpdateExam(ctx context.Context, next domain.Exam) (int, error) {
	if l.gateway == nil {
		return 0, domain.ErrNotImplemented
	}

	l.mu.Lock()
	if l.exam == nil {
		l.mu.Unlock()
		return 0, domain.ErrNoExam
	}
	cur := *l.exam
	count := l.points.Snapshot().Len()
	confirmer, gen := l.confirmer, l.generation
	l.mu.Unlock()

	next.ID = cur.ID
	next.CreatedAt = cur.CreatedAt
	if next.DateTime.IsZero() {
		next.DateTime = cur.DateTime
	}
	if next.DeviceModel == "" {
		next.DeviceModel = cur.DeviceModel
	}
	if err := next.Validate(); err != nil {
		return 0, err
	}

	deleted := 0
	if cur.RequiresPointReset(next) {
		if count > 0 {
			prompt := fmt.Sprintf("Changing limb or location deletes all %d points. Continue?", count)
			if err := confirm(ctx, confirmer, prompt); err != nil {
				return 0, err
			}
		}

		// In-flight saves belong to the old mesh and are discarded.
		l.mu.Lock()
		if l.exam == nil || l.generation != gen {
			l.mu.Unlock()
			return 0, domain.ErrStaleSession
		}
		l.resetSession()
		l.meshReset = l.generation
		l.exam = &cur
		l.mu.Unlock()

		n, err := l.deleteAllPoints(ctx, cur.ID)
		deleted = n
		if err != nil {
			return deleted, err
		}
	}

	if err := l.gateway.UpdateExam(ctx, next); err != nil {
		return deleted, domain.NewPersistenceError("update exam", err)
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	next.LastEdited = l.now()
	l.exam = &next
	return deleted, nil
}

// deleteAllPoints removes every stored point of an exam, images first.
func (l *PointLifecycle) deleteAllPoints(ctx context.Context, examID string) (int, error) {
	stored, err := l.gateway.ListPoints(ctx, examID)
	if err != nil {
		return 0, domain.NewPersistenceError("list points", err)
	}
	deleted := 0
	for _, p := range stored {
		pointID := p.ID.String()
		l.deleteImages(ctx, examID, pointID, p.Images())
		if err := l.gateway.DeletePoint(ctx, examID, pointID); err != nil {
			return deleted, domain.NewPersistenceError("delete point", err)
		}
		deleted++
	}
	logger.Info("deleted %d points of exam %s after a model change", deleted, examID)
	return deleted, nil
}
