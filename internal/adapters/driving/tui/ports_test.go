package tui

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/refeel-health/refeel-cli/internal/adapters/driven/storage/memory"
	"github.com/refeel-health/refeel-cli/internal/core/services"
)

func TestPorts_Validate(t *testing.T) {
	lc := services.NewPointLifecycle(memory.NewGateway(), nil)

	complete := &Ports{Lifecycle: lc, Meshes: &fakeMeshes{}, Confirmer: NewModalConfirmer()}
	assert.NoError(t, complete.Validate())

	assert.ErrorIs(t, (&Ports{}).Validate(), ErrMissingLifecycle)
	assert.ErrorIs(t, (&Ports{Lifecycle: lc}).Validate(), ErrMissingMeshes)
	assert.ErrorIs(t, (&Ports{Lifecycle: lc, Meshes: &fakeMeshes{}}).Validate(), ErrMissingConfirmer)
}
