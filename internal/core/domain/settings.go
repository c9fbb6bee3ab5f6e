package domain

import "time"

// StoreBackend selects the persistence gateway implementation.
type StoreBackend string

// Available store backends.
const (
	// StoreBackendMemory keeps records in process memory only.
	StoreBackendMemory StoreBackend = "memory"

	// StoreBackendSQLite keeps records in a local SQLite database.
	StoreBackendSQLite StoreBackend = "sqlite"

	// StoreBackendRedis keeps records in a Redis server.
	StoreBackendRedis StoreBackend = "redis"

	// StoreBackendHTTP talks to a remote REST document store.
	StoreBackendHTTP StoreBackend = "http"
)

// IsValid returns true if the backend is recognised.
func (b StoreBackend) IsValid() bool {
	switch b {
	case StoreBackendMemory, StoreBackendSQLite, StoreBackendRedis, StoreBackendHTTP:
		return true
	default:
		return false
	}
}

// IsRemote returns true if the backend lives outside this process's disk.
func (b StoreBackend) IsRemote() bool {
	return b == StoreBackendRedis || b == StoreBackendHTTP
}

// String returns the string representation.
func (b StoreBackend) String() string {
	return string(b)
}

// Description returns a human-readable description of the backend.
func (b StoreBackend) Description() string {
	switch b {
	case StoreBackendMemory:
		return "Memory (nothing survives exit)"
	case StoreBackendSQLite:
		return "SQLite (local file)"
	case StoreBackendRedis:
		return "Redis (shared server)"
	case StoreBackendHTTP:
		return "HTTP (remote document store)"
	default:
		return unknownDescription
	}
}

// AllStoreBackends returns all available backends.
func AllStoreBackends() []StoreBackend {
	return []StoreBackend{
		StoreBackendMemory,
		StoreBackendSQLite,
		StoreBackendRedis,
		StoreBackendHTTP,
	}
}

// StoreSettings configures the persistence gateway.
type StoreSettings struct {
	Backend StoreBackend
	// DataDir holds the SQLite database. Empty means ~/.refeel/data.
	DataDir   string
	RedisAddr string
	BaseURL   string
	Token     string
	// RequestsPerSecond throttles the HTTP gateway. Zero disables throttling.
	RequestsPerSecond float64
}

// PickerSettings tunes tap/drag classification and fuzzy selection.
type PickerSettings struct {
	DragThresholdPx float64
	TapMaxDuration  time.Duration
	SelectRadius    float64
}

// LogSettings configures the logger.
type LogSettings struct {
	Level  string
	Format string
}

// AppSettings holds all application settings.
type AppSettings struct {
	Store  StoreSettings
	Picker PickerSettings
	// ModelsDir holds the OBJ mesh files. Empty uses built-in meshes.
	ModelsDir string
	Log       LogSettings
}

// DefaultAppSettings returns settings with sensible defaults.
func DefaultAppSettings() AppSettings {
	return AppSettings{
		Store: StoreSettings{
			Backend:           StoreBackendSQLite,
			RedisAddr:         "localhost:6379",
			RequestsPerSecond: 10,
		},
		Picker: PickerSettings{
			DragThresholdPx: 5,
			TapMaxDuration:  300 * time.Millisecond,
			SelectRadius:    0.2,
		},
		Log: LogSettings{
			Level:  "warn",
			Format: "console",
		},
	}
}
