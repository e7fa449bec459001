package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"video-filter-api/internal/models"
)

// Layout computes and manages the deterministic on-disk asset tree under the
// media root:
//
//	videos/YYYY/MM/DD/<id>/{original,processed/<filter>,thumbs}/
//
// with a parallel trash/<id>/ tree for deleted items.
type Layout struct {
	MediaRoot string
}

// Dirs is the directory set for one artifact.
type Dirs struct {
	Base      string
	Original  string
	Processed string
	Thumbs    string
}

// Create builds the directory tree for an artifact identifier at the given
// creation moment. All directories exist when it returns.
func (l *Layout) Create(id string, createdAt time.Time) (*Dirs, error) {
	base := filepath.Join(l.MediaRoot, "videos", createdAt.Format("2006/01/02"), id)
	dirs := &Dirs{
		Base:      base,
		Original:  filepath.Join(base, "original"),
		Processed: filepath.Join(base, "processed"),
		Thumbs:    filepath.Join(base, "thumbs"),
	}
	for _, dir := range []string{dirs.Original, dirs.Processed, dirs.Thumbs} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create %s: %w", dir, err)
		}
	}
	return dirs, nil
}

// FilterDir returns (creating it if needed) the processed subdirectory for
// one filter, leaving room for future multi-filter outputs per source.
func (d *Dirs) FilterDir(filter models.Filter) (string, error) {
	dir := filepath.Join(d.Processed, filter.String())
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create %s: %w", dir, err)
	}
	return dir, nil
}

// Rel converts an absolute path inside the media root to the relative form
// stored in the catalog, always slash-separated.
func (l *Layout) Rel(path string) (string, error) {
	rel, err := filepath.Rel(l.MediaRoot, path)
	if err != nil {
		return "", err
	}
	return filepath.ToSlash(rel), nil
}

// Abs resolves a stored relative path back under the media root.
func (l *Layout) Abs(rel string) string {
	return filepath.Join(l.MediaRoot, filepath.FromSlash(rel))
}

// Move relocates a staged file into its final slot. Rename is atomic on the
// same filesystem; a cross-device move degrades to copy+delete, which is
// acceptable for this one-time setup step.
func Move(src, dst string) error {
	if err := os.Rename(src, dst); err == nil {
		return nil
	}

	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("open %s: %w", src, err)
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("create %s: %w", dst, err)
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		os.Remove(dst)
		return fmt.Errorf("copy to %s: %w", dst, err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("close %s: %w", dst, err)
	}
	return os.Remove(src)
}

// Trash reparents the whole per-identifier tree containing the stored
// original asset into trash/<id>, preserving everything for manual
// recovery. A missing tree is not an error; the catalog row is still the
// caller's to remove.
func (l *Layout) Trash(id, pathOriginal string) error {
	if pathOriginal == "" {
		return nil
	}
	// pathOriginal is <base>/original/video.<ext>; the artifact tree is two
	// levels up.
	videoDir := filepath.Dir(filepath.Dir(l.Abs(pathOriginal)))
	if _, err := os.Stat(videoDir); os.IsNotExist(err) {
		return nil
	}

	trashDir := filepath.Join(l.MediaRoot, "trash", id)
	if err := os.MkdirAll(filepath.Dir(trashDir), 0755); err != nil {
		return fmt.Errorf("create trash root: %w", err)
	}
	if err := os.Rename(videoDir, trashDir); err != nil {
		return fmt.Errorf("move %s to trash: %w", videoDir, err)
	}
	return nil
}

// Rollback removes a partially built artifact tree after a fatal pipeline
// failure so no orphaned files survive without a catalog entry.
func Rollback(dirs *Dirs) {
	if dirs != nil {
		os.RemoveAll(dirs.Base)
	}
}
