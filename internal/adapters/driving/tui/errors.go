package tui

import "errors"

// ErrMissingLifecycle is returned when the point lifecycle is not provided.
var ErrMissingLifecycle = errors.New("tui: point lifecycle is required")

// ErrMissingMeshes is returned when the model loader is not provided.
var ErrMissingMeshes = errors.New("tui: model loader is required")

// ErrMissingConfirmer is returned when the modal confirmer is not provided.
var ErrMissingConfirmer = errors.New("tui: modal confirmer is required")

// ErrMissingExam is returned when no exam ID is given to open.
var ErrMissingExam = errors.New("tui: exam id is required")
