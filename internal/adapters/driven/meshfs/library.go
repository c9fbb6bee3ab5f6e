package meshfs

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"

	"github.com/refeel-health/refeel-cli/internal/core/domain"
	"github.com/refeel-health/refeel-cli/internal/geometry"
	"github.com/refeel-health/refeel-cli/internal/logger"
)

// Library resolves exam model files against a directory.
type Library struct {
	dir string

	mu      sync.Mutex
	watcher *fsnotify.Watcher
}

// NewLibrary returns a library reading from dir. An empty dir always
// yields the built-in meshes.
func NewLibrary(dir string) *Library {
	return &Library{dir: dir}
}

// Dir returns the model directory.
func (l *Library) Dir() string {
	return l.dir
}

// Load returns the normalised stump and full-limb meshes for an exam.
func (l *Library) Load(exam domain.Exam) (stump, full *geometry.Mesh, err error) {
	stumpFile, fullFile := exam.ModelFiles()

	stump, err = l.LoadFile(stumpFile, domain.ViewStump)
	if err != nil {
		return nil, nil, err
	}
	full, err = l.LoadFile(fullFile, domain.ViewLimb)
	if err != nil {
		return nil, nil, err
	}
	return stump, full, nil
}

// LoadFile loads one model file and normalises it. A missing file falls
// back to the built-in mesh of the view; a malformed file is an error.
func (l *Library) LoadFile(name string, view domain.ViewKind) (*geometry.Mesh, error) {
	var mesh *geometry.Mesh
	if l.dir != "" && name != "" {
		m, err := LoadOBJ(filepath.Join(l.dir, name))
		switch {
		case err == nil:
			mesh = m
		case errors.Is(err, os.ErrNotExist):
			logger.Debug("model %s not found in %s, using built-in %s mesh", name, l.dir, view)
		default:
			return nil, fmt.Errorf("load model %s: %w", name, err)
		}
	}
	if mesh == nil {
		mesh = Builtin(view)
	}
	mesh.Normalize()
	return mesh, nil
}

// Builtin returns the fallback mesh for a view.
func Builtin(view domain.ViewKind) *geometry.Mesh {
	if view == domain.ViewLimb {
		return geometry.Capsule("builtin-limb", 0.35, 5, 24)
	}
	return geometry.Capsule("builtin-stump", 0.5, 2, 24)
}

// Watch reports the base names of OBJ files that are created, written,
// renamed or removed in the model directory. The channel closes when ctx
// is done or the library is closed.
func (l *Library) Watch(ctx context.Context) (<-chan string, error) {
	if l.dir == "" {
		return nil, fmt.Errorf("%w: no model directory", domain.ErrInvalidInput)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if err := watcher.Add(l.dir); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("watch %s: %w", l.dir, err)
	}

	l.mu.Lock()
	if l.watcher != nil {
		l.watcher.Close()
	}
	l.watcher = watcher
	l.mu.Unlock()

	changes := make(chan string)
	go func() {
		defer close(changes)
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-watcher.Events:
				if !ok {
					return
				}
				name, relevant := handleEvent(ev)
				if !relevant {
					continue
				}
				select {
				case changes <- name:
				case <-ctx.Done():
					return
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				logger.Warn("model watcher: %v", err)
			}
		}
	}()
	return changes, nil
}

// Close stops any active watcher.
func (l *Library) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.watcher == nil {
		return nil
	}
	err := l.watcher.Close()
	l.watcher = nil
	return err
}

// handleEvent filters a filesystem event down to a model file name.
func handleEvent(ev fsnotify.Event) (string, bool) {
	if !ev.Op.Has(fsnotify.Create) && !ev.Op.Has(fsnotify.Write) &&
		!ev.Op.Has(fsnotify.Remove) && !ev.Op.Has(fsnotify.Rename) {
		return "", false
	}
	base := filepath.Base(ev.Name)
	if strings.HasPrefix(base, ".") || !strings.EqualFold(filepath.Ext(base), ".obj") {
		return "", false
	}
	return base, true
}
