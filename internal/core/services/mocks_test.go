package services

import (
	"context"
	"errors"
	"sync"

	"github.com/refeel-health/refeel-cli/internal/adapters/driven/storage/memory"
	"github.com/refeel-health/refeel-cli/internal/core/domain"
	"github.com/refeel-health/refeel-cli/internal/core/ports/driven"
)

var errBackendDown = errors.New("backend unavailable")

// controlledGateway wraps the memory gateway with failure injection and
// the ability to hold CreatePoint calls until released.
type controlledGateway struct {
	*memory.Gateway

	mu            sync.Mutex
	failCreate    bool
	failUpdate    bool
	failUpload    bool
	failDelete    bool
	failImageDrop map[string]bool
	hold          chan struct{}
	started       chan struct{}
	creates       int
	updates       []domain.PointFields
	deletedPoints []string
	deletedImages []string
}

func newControlledGateway() *controlledGateway {
	return &controlledGateway{
		Gateway:       memory.NewGateway(),
		failImageDrop: make(map[string]bool),
	}
}

var _ driven.PersistenceGateway = (*controlledGateway)(nil)

// holdCreates makes CreatePoint block until release is called.
func (g *controlledGateway) holdCreates() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.hold = make(chan struct{})
	g.started = make(chan struct{}, 8)
}

func (g *controlledGateway) release() {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.hold != nil {
		close(g.hold)
		g.hold = nil
	}
}

func (g *controlledGateway) CreatePoint(ctx context.Context, examID string, f domain.PointFields) (driven.PointReceipt, error) {
	g.mu.Lock()
	g.creates++
	hold, started, fail := g.hold, g.started, g.failCreate
	g.mu.Unlock()

	if hold != nil {
		started <- struct{}{}
		select {
		case <-hold:
		case <-ctx.Done():
			return driven.PointReceipt{}, ctx.Err()
		}
	}
	if fail {
		return driven.PointReceipt{}, errBackendDown
	}
	return g.Gateway.CreatePoint(ctx, examID, f)
}

func (g *controlledGateway) UpdatePoint(ctx context.Context, examID, pointID string, f domain.PointFields) error {
	g.mu.Lock()
	fail := g.failUpdate
	g.updates = append(g.updates, f)
	g.mu.Unlock()
	if fail {
		return errBackendDown
	}
	return g.Gateway.UpdatePoint(ctx, examID, pointID, f)
}

func (g *controlledGateway) DeletePoint(ctx context.Context, examID, pointID string) error {
	g.mu.Lock()
	fail := g.failDelete
	g.deletedPoints = append(g.deletedPoints, pointID)
	g.mu.Unlock()
	if fail {
		return errBackendDown
	}
	return g.Gateway.DeletePoint(ctx, examID, pointID)
}

func (g *controlledGateway) UploadImage(ctx context.Context, examID, pointID string, image []byte) (string, error) {
	g.mu.Lock()
	fail := g.failUpload
	g.mu.Unlock()
	if fail {
		return "", errBackendDown
	}
	return g.Gateway.UploadImage(ctx, examID, pointID, image)
}

func (g *controlledGateway) DeleteImage(ctx context.Context, examID, pointID, url string) error {
	g.mu.Lock()
	fail := g.failImageDrop[url]
	g.deletedImages = append(g.deletedImages, url)
	g.mu.Unlock()
	if fail {
		return errBackendDown
	}
	return g.Gateway.DeleteImage(ctx, examID, pointID, url)
}

func (g *controlledGateway) createCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.creates
}

func (g *controlledGateway) set(fn func(g *controlledGateway)) {
	g.mu.Lock()
	defer g.mu.Unlock()
	fn(g)
}

// stubConfirmer answers every prompt with a fixed reply.
type stubConfirmer struct {
	mu      sync.Mutex
	answer  bool
	err     error
	prompts []string
}

func (c *stubConfirmer) Confirm(_ context.Context, prompt string) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.prompts = append(c.prompts, prompt)
	return c.answer, c.err
}

// funcConfirmer runs fn when asked, then answers.
type funcConfirmer struct {
	fn     func()
	answer bool
}

func (c *funcConfirmer) Confirm(_ context.Context, _ string) (bool, error) {
	if c.fn != nil {
		c.fn()
	}
	return c.answer, nil
}
