package domain

import (
	"strconv"
	"strings"
	"time"
)

// TempIDPrefix prefixes every locally generated point identifier.
const TempIDPrefix = "temp-"

// Identity identifies a point and carries its commit state.
// It is either Uncommitted or Committed; no other implementations exist.
// Identities are comparable and may be used as map keys.
type Identity interface {
	// String returns the raw identifier.
	String() string

	// IsCommitted reports whether the identifier was assigned by the store.
	IsCommitted() bool

	identity()
}

// Uncommitted is the identity of a point that has never been persisted.
type Uncommitted struct {
	TempID string
}

// Committed is the identity of a point assigned by the persistence gateway.
type Committed struct {
	PersistedID string
}

func (u Uncommitted) String() string    { return u.TempID }
func (u Uncommitted) IsCommitted() bool { return false }
func (Uncommitted) identity()           {}

func (c Committed) String() string    { return c.PersistedID }
func (c Committed) IsCommitted() bool { return true }
func (Committed) identity()           {}

// NewTempIdentity builds an uncommitted identity from a timestamp.
func NewTempIdentity(at time.Time) Uncommitted {
	return Uncommitted{TempID: TempIDPrefix + strconv.FormatInt(at.UnixNano(), 10)}
}

// ParseIdentity maps a raw identifier to its variant.
// Raw identifiers only reach the core at boundaries (CLI arguments,
// stored records); inside the core the variant is carried explicitly.
func ParseIdentity(raw string) Identity {
	if strings.HasPrefix(raw, TempIDPrefix) {
		return Uncommitted{TempID: raw}
	}
	return Committed{PersistedID: raw}
}
