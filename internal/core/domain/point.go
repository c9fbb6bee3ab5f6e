package domain

import (
	"slices"
	"time"
)

// PointState is the lifecycle state of a point.
type PointState int

const (
	// StateUncommitted is a locally created point that was never saved.
	StateUncommitted PointState = iota
	// StateCommittedClean is a saved point with no pending edits.
	StateCommittedClean
	// StateCommittedDirty is a saved point with local edits not yet saved.
	StateCommittedDirty
	// StateDeleted is terminal; the point has left its collection.
	StateDeleted
)

// String returns a human-readable state name.
func (s PointState) String() string {
	switch s {
	case StateUncommitted:
		return "uncommitted"
	case StateCommittedClean:
		return "saved"
	case StateCommittedDirty:
		return "unsaved changes"
	case StateDeleted:
		return "deleted"
	default:
		return "unknown"
	}
}

// Point is one mapped sensation location.
type Point struct {
	// ID carries the commit state of the point.
	ID Identity

	// StumpPosition is the position in the stump model's local space.
	// It is required for every point that exists.
	StumpPosition *Vec3

	// LimbPosition is the position on the full-limb model, nil until mapped.
	LimbPosition *Vec3

	// Clinical metadata, all optional.
	StimulationType   string
	Program           string
	Frequency         string
	Sensation         string
	DistanceFromStump string

	// ImageURLs holds remote photo references in display order.
	ImageURLs []string

	// LegacyImageURL is the single-image field of older records.
	// Images() treats it as index 0.
	LegacyImageURL string

	// Order is the 1-based presentation and storage position.
	Order int

	// HasUnsavedChanges marks local edits pending a save.
	HasUnsavedChanges bool

	// CreatedAt is assigned by the persistence gateway at commit.
	CreatedAt time.Time
}

// IsMapped reports whether the point has a full-limb position.
func (p Point) IsMapped() bool {
	return p.LimbPosition != nil
}

// IsCommitted reports whether the point has a persisted identity.
func (p Point) IsCommitted() bool {
	return p.ID != nil && p.ID.IsCommitted()
}

// State derives the lifecycle state from identity and dirty flag.
func (p Point) State() PointState {
	switch {
	case !p.IsCommitted():
		return StateUncommitted
	case p.HasUnsavedChanges:
		return StateCommittedDirty
	default:
		return StateCommittedClean
	}
}

// Images returns the unified image list, legacy image first.
func (p Point) Images() []string {
	images := make([]string, 0, len(p.ImageURLs)+1)
	if p.LegacyImageURL != "" && !slices.Contains(p.ImageURLs, p.LegacyImageURL) {
		images = append(images, p.LegacyImageURL)
	}
	return append(images, p.ImageURLs...)
}

// WithImages returns a copy holding exactly the given images.
// The legacy field is folded into the list.
func (p Point) WithImages(images []string) Point {
	c := p.Clone()
	c.ImageURLs = slices.Clone(images)
	c.LegacyImageURL = ""
	return c
}

// Clone returns a deep copy of the point.
func (p Point) Clone() Point {
	c := p
	if p.StumpPosition != nil {
		c.StumpPosition = p.StumpPosition.Ptr()
	}
	if p.LimbPosition != nil {
		c.LimbPosition = p.LimbPosition.Ptr()
	}
	c.ImageURLs = slices.Clone(p.ImageURLs)
	return c
}

// Fields strips local-only data and returns the persisted field set.
func (p Point) Fields() PointFields {
	f := PointFields{
		StimulationType:   p.StimulationType,
		Program:           p.Program,
		Frequency:         p.Frequency,
		Sensation:         p.Sensation,
		DistanceFromStump: p.DistanceFromStump,
		ImageURLs:         p.Images(),
		Order:             p.Order,
	}
	if p.StumpPosition != nil {
		f.StumpPosition = p.StumpPosition.Ptr()
	}
	if p.LimbPosition != nil {
		f.LimbPosition = p.LimbPosition.Ptr()
	}
	if f.ImageURLs == nil {
		f.ImageURLs = []string{}
	}
	return f
}

// PointFields is the field set exchanged with the persistence gateway.
// A full snapshot is always sent so overlapping saves never lose fields.
type PointFields struct {
	StumpPosition     *Vec3    `json:"stumpPosition"`
	LimbPosition      *Vec3    `json:"limbPosition"`
	StimulationType   string   `json:"stimulationType"`
	Program           string   `json:"program"`
	Frequency         string   `json:"frequency"`
	Sensation         string   `json:"sensation"`
	DistanceFromStump string   `json:"distanceFromStump"`
	ImageURLs         []string `json:"imageUrls"`
	LegacyImageURL    string   `json:"imageUrl,omitempty"`
	Order             int      `json:"order"`
}

// PointFromFields rebuilds a committed point from stored fields.
func PointFromFields(id string, f PointFields, createdAt time.Time) Point {
	p := Point{
		ID:                Committed{PersistedID: id},
		StimulationType:   f.StimulationType,
		Program:           f.Program,
		Frequency:         f.Frequency,
		Sensation:         f.Sensation,
		DistanceFromStump: f.DistanceFromStump,
		ImageURLs:         slices.Clone(f.ImageURLs),
		LegacyImageURL:    f.LegacyImageURL,
		Order:             f.Order,
		CreatedAt:         createdAt,
	}
	if f.StumpPosition != nil {
		p.StumpPosition = f.StumpPosition.Ptr()
	}
	if f.LimbPosition != nil {
		p.LimbPosition = f.LimbPosition.Ptr()
	}
	return p
}

// Description groups the editable clinical metadata of a point.
type Description struct {
	StimulationType   string
	Program           string
	Frequency         string
	Sensation         string
	DistanceFromStump string
}

// Description returns the point's clinical metadata.
func (p Point) Description() Description {
	return Description{
		StimulationType:   p.StimulationType,
		Program:           p.Program,
		Frequency:         p.Frequency,
		Sensation:         p.Sensation,
		DistanceFromStump: p.DistanceFromStump,
	}
}

// WithDescription returns a copy carrying the given metadata.
func (p Point) WithDescription(d Description) Point {
	c := p.Clone()
	c.StimulationType = d.StimulationType
	c.Program = d.Program
	c.Frequency = d.Frequency
	c.Sensation = d.Sensation
	c.DistanceFromStump = d.DistanceFromStump
	return c
}
