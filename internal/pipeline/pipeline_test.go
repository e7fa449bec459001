package pipeline

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"video-filter-api/internal/config"
	"video-filter-api/internal/database"
	"video-filter-api/internal/media"
	"video-filter-api/internal/models"
)

func testPipeline(t *testing.T) (*Pipeline, *database.Catalog, *config.Config) {
	t.Helper()
	root := t.TempDir()
	cfg := &config.Config{
		MediaRoot:      filepath.Join(root, "media"),
		DatabasePath:   filepath.Join(root, "videos.db"),
		MaxUploadBytes: 500 << 20,
		AllowedExtensions: map[string]bool{
			".mp4": true, ".avi": true, ".mov": true,
			".mkv": true, ".webm": true, ".flv": true,
		},
		ThumbnailCount: 5,
		ThumbnailWidth: 320,
		// Point at binaries that cannot exist: probe degrades to zero
		// metadata and the filter stage fails, exercising rollback.
		FFmpegPath:  filepath.Join(root, "no-ffmpeg"),
		FFprobePath: filepath.Join(root, "no-ffprobe"),
	}
	catalog, err := database.Open(cfg.DatabasePath)
	require.NoError(t, err)
	t.Cleanup(func() { catalog.Close() })
	return New(cfg, catalog), catalog, cfg
}

func countRows(t *testing.T, catalog *database.Catalog) int {
	t.Helper()
	n, err := catalog.Count()
	require.NoError(t, err)
	return n
}

func listDir(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return nil
	}
	require.NoError(t, err)
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names
}

func TestValidationRejectsEmptyFilename(t *testing.T) {
	p, catalog, _ := testPipeline(t)
	_, perr := p.Process(context.Background(), "", bytes.NewReader([]byte("x")), "grayscale")
	require.NotNil(t, perr)
	assert.Equal(t, BadRequest, perr.Category)
	assert.Zero(t, countRows(t, catalog))
}

func TestValidationRejectsDisallowedExtension(t *testing.T) {
	p, catalog, _ := testPipeline(t)
	_, perr := p.Process(context.Background(), "document.txt", bytes.NewReader([]byte("x")), "grayscale")
	require.NotNil(t, perr)
	assert.Equal(t, BadRequest, perr.Category)
	assert.Zero(t, countRows(t, catalog))
}

func TestValidationRejectsUnknownFilter(t *testing.T) {
	p, catalog, cfg := testPipeline(t)
	_, perr := p.Process(context.Background(), "clip.mp4", bytes.NewReader([]byte("x")), "invalid_filter_name")
	require.NotNil(t, perr)
	assert.Equal(t, BadRequest, perr.Category)

	// No side effects: no rows, nothing staged, nothing laid out.
	assert.Zero(t, countRows(t, catalog))
	assert.Empty(t, listDir(t, cfg.IncomingDir()))
	assert.Empty(t, listDir(t, cfg.VideosDir()))
}

func TestDuplicateUploadConflicts(t *testing.T) {
	p, catalog, cfg := testPipeline(t)
	payload := []byte("identical video bytes")

	checksum, err := media.Checksum(bytes.NewReader(payload))
	require.NoError(t, err)
	existing := &models.Video{
		ID:           "existing-id",
		OriginalName: "clip.mp4",
		OriginalExt:  "mp4",
		Filter:       models.FilterBlur,
		CreatedAt:    time.Now().UTC(),
		ChecksumMD5:  checksum,
	}
	require.NoError(t, catalog.Insert(existing))

	_, perr := p.Process(context.Background(), "clip.mp4", bytes.NewReader(payload), "blur")
	require.NotNil(t, perr)
	assert.Equal(t, Conflict, perr.Category)
	assert.Equal(t, "existing-id", perr.ExistingID)

	// The staged temp file is cleaned up and the catalog still holds
	// exactly one row for the fingerprint.
	assert.Empty(t, listDir(t, cfg.IncomingDir()))
	assert.Equal(t, 1, countRows(t, catalog))
}

func TestFilterFailureRollsBackTree(t *testing.T) {
	p, catalog, cfg := testPipeline(t)

	_, perr := p.Process(context.Background(), "clip.mp4", bytes.NewReader([]byte("not a real video")), "negative")
	require.NotNil(t, perr)
	assert.Equal(t, Processing, perr.Category)

	// The fatal filter stage must unwind everything: no catalog row, no
	// staged file, no orphaned artifact tree.
	assert.Zero(t, countRows(t, catalog))
	assert.Empty(t, listDir(t, cfg.IncomingDir()))

	orphans := 0
	filepath.WalkDir(cfg.VideosDir(), func(path string, d os.DirEntry, err error) error {
		if err == nil && d != nil && !d.IsDir() {
			orphans++
		}
		return nil
	})
	assert.Zero(t, orphans, "no files may survive a failed filter stage")
}

func TestDeleteUnknownVideo(t *testing.T) {
	p, _, _ := testPipeline(t)
	perr := p.Delete("no-such-id")
	require.NotNil(t, perr)
	assert.Equal(t, NotFound, perr.Category)
}

func TestDeleteMovesAssetsToTrash(t *testing.T) {
	p, catalog, cfg := testPipeline(t)

	// Build the asset tree the way a successful upload would have.
	layout := p.Layout()
	createdAt := time.Now().UTC()
	dirs, err := layout.Create("vid-1", createdAt)
	require.NoError(t, err)
	originalPath := filepath.Join(dirs.Original, "video.mp4")
	require.NoError(t, os.WriteFile(originalPath, []byte("asset"), 0644))
	rel, err := layout.Rel(originalPath)
	require.NoError(t, err)

	require.NoError(t, catalog.Insert(&models.Video{
		ID:           "vid-1",
		OriginalName: "clip.mp4",
		OriginalExt:  "mp4",
		Filter:       models.FilterSepia,
		CreatedAt:    createdAt,
		PathOriginal: rel,
		ChecksumMD5:  "sum-vid-1",
	}))

	require.Nil(t, p.Delete("vid-1"))

	_, err = catalog.Get("vid-1")
	assert.ErrorIs(t, err, database.ErrNotFound)

	// The original asset survives on disk, relocated under trash.
	data, err := os.ReadFile(filepath.Join(cfg.MediaRoot, "trash", "vid-1", "original", "video.mp4"))
	require.NoError(t, err)
	assert.Equal(t, []byte("asset"), data)
}
