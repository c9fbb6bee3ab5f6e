package domain

import "strconv"

const (
	// MaxPointsPerExam is the number of points an exam can hold.
	MaxPointsPerExam = 10

	// MaxImagesPerPoint is the number of photos a point can hold.
	MaxImagesPerPoint = 5
)

// ImageKey returns the storage key of a point photo uploaded at the given
// time. Callers keep timestamps strictly increasing so keys never collide.
func ImageKey(examID, pointID string, uploadedAt int64) string {
	return "images/" + examID + "/" + pointID + "_" + strconv.FormatInt(uploadedAt, 10) + ".jpg"
}
