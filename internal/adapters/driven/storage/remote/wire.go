package remote

import (
	"time"

	"github.com/refeel-health/refeel-cli/internal/core/domain"
)

// Wire types shared with the HTTP API served by httpapi.

// PointRecord is a stored point as exchanged over HTTP.
type PointRecord struct {
	ID        string             `json:"id"`
	CreatedAt time.Time          `json:"createdAt"`
	Fields    domain.PointFields `json:"fields"`
}

// Receipt acknowledges a created point.
type Receipt struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"createdAt"`
}

// ImageRef locates an uploaded image.
type ImageRef struct {
	URL string `json:"url"`
}

// ErrorBody is returned with every non-2xx response.
type ErrorBody struct {
	Error string `json:"error"`
}

// ToRecord converts a committed point to its wire form.
func ToRecord(p domain.Point) PointRecord {
	return PointRecord{ID: p.ID.String(), CreatedAt: p.CreatedAt, Fields: p.Fields()}
}
