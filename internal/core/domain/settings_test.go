package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// TestStoreBackend_IsValid tests all valid and invalid backends
func TestStoreBackend_IsValid(t *testing.T) {
	tests := []struct {
		name     string
		backend  StoreBackend
		expected bool
	}{
		{name: "memory is valid", backend: StoreBackendMemory, expected: true},
		{name: "sqlite is valid", backend: StoreBackendSQLite, expected: true},
		{name: "redis is valid", backend: StoreBackendRedis, expected: true},
		{name: "http is valid", backend: StoreBackendHTTP, expected: true},
		{name: "empty string is invalid", backend: StoreBackend(""), expected: false},
		{name: "unknown backend is invalid", backend: StoreBackend("firestore"), expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.backend.IsValid())
		})
	}
}

func TestStoreBackend_IsRemote(t *testing.T) {
	assert.False(t, StoreBackendMemory.IsRemote())
	assert.False(t, StoreBackendSQLite.IsRemote())
	assert.True(t, StoreBackendRedis.IsRemote())
	assert.True(t, StoreBackendHTTP.IsRemote())
}

func TestStoreBackend_Description(t *testing.T) {
	for _, b := range AllStoreBackends() {
		assert.NotEqual(t, unknownDescription, b.Description(), b.String())
	}
	assert.Equal(t, unknownDescription, StoreBackend("nope").Description())
}

func TestDefaultAppSettings(t *testing.T) {
	s := DefaultAppSettings()

	assert.Equal(t, StoreBackendSQLite, s.Store.Backend)
	assert.Equal(t, 5.0, s.Picker.DragThresholdPx)
	assert.Equal(t, 300*time.Millisecond, s.Picker.TapMaxDuration)
	assert.Positive(t, s.Picker.SelectRadius)
	assert.Equal(t, "warn", s.Log.Level)
}
