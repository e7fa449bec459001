package database

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/mattn/go-sqlite3"

	"video-filter-api/internal/models"
)

var (
	// ErrNotFound is returned when no record matches the given key.
	ErrNotFound = errors.New("video not found")
	// ErrDuplicate is returned when an insert collides with an existing
	// content fingerprint. The UNIQUE column makes this authoritative even
	// when two uploads of the same bytes race past the pre-check.
	ErrDuplicate = errors.New("duplicate checksum")
)

// Catalog is the persistent record store. It is the only component that
// reads or writes video rows.
type Catalog struct {
	db *sql.DB
}

// Open opens (creating if needed) the SQLite database at path and ensures
// the schema exists.
func Open(path string) (*Catalog, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("create database directory: %w", err)
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS videos (
			id TEXT PRIMARY KEY,
			original_name TEXT NOT NULL,
			original_ext TEXT NOT NULL,
			mime_type TEXT,
			size_bytes INTEGER,
			duration_sec REAL,
			fps REAL,
			width INTEGER,
			height INTEGER,
			filter TEXT,
			created_at TEXT NOT NULL,
			path_original TEXT,
			path_processed TEXT,
			checksum_md5 TEXT NOT NULL UNIQUE,
			processing_time_sec REAL,
			thumbnail_path TEXT,
			preview_gif_path TEXT
		)
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("create videos table: %w", err)
	}

	return &Catalog{db: db}, nil
}

func (c *Catalog) Close() error { return c.db.Close() }

// Insert commits a new record. It returns ErrDuplicate when the checksum is
// already present.
func (c *Catalog) Insert(v *models.Video) error {
	_, err := c.db.Exec(`
		INSERT INTO videos (
			id, original_name, original_ext, mime_type, size_bytes,
			duration_sec, fps, width, height, filter, created_at,
			path_original, path_processed, checksum_md5, processing_time_sec,
			thumbnail_path, preview_gif_path
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		v.ID, v.OriginalName, v.OriginalExt, v.MimeType, v.SizeBytes,
		v.DurationSec, v.FPS, v.Width, v.Height, v.Filter.String(),
		v.CreatedAt.Format(time.RFC3339), v.PathOriginal, v.PathProcessed,
		v.ChecksumMD5, v.ProcessingTimeSec,
		nullable(v.ThumbnailPath), nullable(v.PreviewGIFPath),
	)
	if err != nil {
		var sqlErr sqlite3.Error
		if errors.As(err, &sqlErr) && sqlErr.ExtendedCode == sqlite3.ErrConstraintUnique {
			return ErrDuplicate
		}
		return fmt.Errorf("insert video: %w", err)
	}
	return nil
}

// FindByChecksum returns the record matching a content fingerprint, or
// ErrNotFound.
func (c *Catalog) FindByChecksum(sum string) (*models.Video, error) {
	return c.queryOne("SELECT "+videoColumns+" FROM videos WHERE checksum_md5 = ?", sum)
}

// Get returns the record with the given identifier, or ErrNotFound.
func (c *Catalog) Get(id string) (*models.Video, error) {
	return c.queryOne("SELECT "+videoColumns+" FROM videos WHERE id = ?", id)
}

// List returns one page of records ordered by creation time descending,
// optionally restricted to a single filter name, plus the total count of
// matching rows.
func (c *Catalog) List(page, perPage int, filter string) ([]models.Video, int, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = 20
	}

	where := ""
	args := []any{}
	if filter != "" {
		where = " WHERE filter = ?"
		args = append(args, filter)
	}

	var total int
	if err := c.db.QueryRow("SELECT COUNT(*) FROM videos"+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count videos: %w", err)
	}

	args = append(args, perPage, (page-1)*perPage)
	rows, err := c.db.Query(
		"SELECT "+videoColumns+" FROM videos"+where+" ORDER BY created_at DESC LIMIT ? OFFSET ?",
		args...,
	)
	if err != nil {
		return nil, 0, fmt.Errorf("list videos: %w", err)
	}
	defer rows.Close()

	videos := []models.Video{}
	for rows.Next() {
		v, err := scanVideo(rows)
		if err != nil {
			return nil, 0, err
		}
		videos = append(videos, *v)
	}
	return videos, total, rows.Err()
}

// Delete removes the row with the given identifier and returns its stored
// original-asset path, which the caller needs to relocate the backing files.
func (c *Catalog) Delete(id string) (string, error) {
	var pathOriginal sql.NullString
	err := c.db.QueryRow("SELECT path_original FROM videos WHERE id = ?", id).Scan(&pathOriginal)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("lookup video %s: %w", id, err)
	}

	if _, err := c.db.Exec("DELETE FROM videos WHERE id = ?", id); err != nil {
		return "", fmt.Errorf("delete video %s: %w", id, err)
	}
	return pathOriginal.String, nil
}

// Count returns the number of stored records.
func (c *Catalog) Count() (int, error) {
	var n int
	err := c.db.QueryRow("SELECT COUNT(*) FROM videos").Scan(&n)
	return n, err
}

// TotalSize returns the summed byte size of all stored records.
func (c *Catalog) TotalSize() (int64, error) {
	var n sql.NullInt64
	err := c.db.QueryRow("SELECT SUM(size_bytes) FROM videos").Scan(&n)
	return n.Int64, err
}

const videoColumns = `id, original_name, original_ext, mime_type, size_bytes,
	duration_sec, fps, width, height, filter, created_at,
	path_original, path_processed, checksum_md5, processing_time_sec,
	thumbnail_path, preview_gif_path`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanVideo(row rowScanner) (*models.Video, error) {
	var v models.Video
	var filter, createdAt string
	var thumb, preview sql.NullString

	err := row.Scan(
		&v.ID, &v.OriginalName, &v.OriginalExt, &v.MimeType, &v.SizeBytes,
		&v.DurationSec, &v.FPS, &v.Width, &v.Height, &filter, &createdAt,
		&v.PathOriginal, &v.PathProcessed, &v.ChecksumMD5, &v.ProcessingTimeSec,
		&thumb, &preview,
	)
	if err != nil {
		return nil, err
	}

	v.Filter = models.Filter(filter)
	v.ThumbnailPath = thumb.String
	v.PreviewGIFPath = preview.String
	if t, err := time.Parse(time.RFC3339, createdAt); err == nil {
		v.CreatedAt = t
	}
	return &v, nil
}

func (c *Catalog) queryOne(query string, arg any) (*models.Video, error) {
	v, err := scanVideo(c.db.QueryRow(query, arg))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query video: %w", err)
	}
	return v, nil
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
