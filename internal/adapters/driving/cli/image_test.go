package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/refeel-health/refeel-cli/internal/core/domain"
)

func writePhoto(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "photo.jpg")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestImageAddListGetRemove(t *testing.T) {
	ts := setupTestServices(t)
	id := ts.seedExam(t)
	ts.seedPoints(t, id, 1)
	photo := writePhoto(t, "jpeg bytes")

	out, err := executeCommand(t, "image", "add", id, "1", photo)
	require.NoError(t, err)
	assert.Contains(t, out, "Attached photo 1 of 5 to point 1")

	images := ts.points(t, id)[0].Images()
	require.Len(t, images, 1)
	assert.Equal(t, 1, ts.gateway.ImageCount())

	out, err = executeCommand(t, "image", "list", id, "1")
	require.NoError(t, err)
	assert.Contains(t, out, "[1] "+images[0])

	dest := filepath.Join(t.TempDir(), "out.jpg")
	_, err = executeCommand(t, "image", "get", images[0], "--out", dest)
	require.NoError(t, err)
	got, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, "jpeg bytes", string(got))

	out, err = executeCommand(t, "image", "rm", id, "1", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "Removed photo from point 1")
	assert.Empty(t, ts.points(t, id)[0].Images())
	assert.Zero(t, ts.gateway.ImageCount())
}

func TestImageAdd_MissingFile(t *testing.T) {
	ts := setupTestServices(t)
	id := ts.seedExam(t)
	ts.seedPoints(t, id, 1)

	_, err := executeCommand(t, "image", "add", id, "1", filepath.Join(t.TempDir(), "nope.jpg"))
	assert.Error(t, err)
}

func TestImageAdd_Capacity(t *testing.T) {
	ts := setupTestServices(t)
	id := ts.seedExam(t)
	ts.seedPoints(t, id, 1)
	photo := writePhoto(t, "x")

	for range domain.MaxImagesPerPoint {
		_, err := executeCommand(t, "image", "add", id, "1", photo)
		require.NoError(t, err)
	}
	_, err := executeCommand(t, "image", "add", id, "1", photo)
	assert.ErrorIs(t, err, domain.ErrCapacity)
}

func TestImageList_Empty(t *testing.T) {
	ts := setupTestServices(t)
	id := ts.seedExam(t)
	ts.seedPoints(t, id, 1)

	out, err := executeCommand(t, "image", "list", id, "1")
	require.NoError(t, err)
	assert.Contains(t, out, "Point 1 has no photos.")
}

func TestImageRm_UnknownIndex(t *testing.T) {
	ts := setupTestServices(t)
	id := ts.seedExam(t)
	ts.seedPoints(t, id, 1)

	_, err := executeCommand(t, "image", "rm", id, "1", "3")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestImageGet_NotFound(t *testing.T) {
	setupTestServices(t)

	_, err := executeCommand(t, "image", "get", "mem://missing", "--out", filepath.Join(t.TempDir(), "x"))
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
