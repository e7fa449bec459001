package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"video-filter-api/internal/config"
	"video-filter-api/internal/database"
	"video-filter-api/internal/media"
	"video-filter-api/internal/metrics"
	"video-filter-api/internal/models"
	"video-filter-api/internal/storage"
)

// Pipeline orchestrates the end-to-end ingestion of one upload:
// validate, stage, fingerprint, dedup-check, extract metadata, lay out
// directories, filter, thumbnail, commit. Each request runs on its own
// worker; the catalog and the filesystem are the only shared state.
type Pipeline struct {
	cfg     *config.Config
	catalog *database.Catalog
	layout  *storage.Layout
	engine  *media.Engine
	prober  *media.Prober
	thumbs  *media.Thumbnailer
}

// New wires a pipeline from explicit configuration.
func New(cfg *config.Config, catalog *database.Catalog) *Pipeline {
	prober := &media.Prober{FFprobePath: cfg.FFprobePath}
	return &Pipeline{
		cfg:     cfg,
		catalog: catalog,
		layout:  &storage.Layout{MediaRoot: cfg.MediaRoot},
		engine:  &media.Engine{FFmpegPath: cfg.FFmpegPath, Prober: prober},
		prober:  prober,
		thumbs: &media.Thumbnailer{
			FFmpegPath: cfg.FFmpegPath,
			Prober:     prober,
			Count:      cfg.ThumbnailCount,
			Width:      cfg.ThumbnailWidth,
		},
	}
}

// Layout exposes the asset layout for handlers serving media paths.
func (p *Pipeline) Layout() *storage.Layout { return p.layout }

// Process runs the full ingestion for one uploaded file. On success the
// returned record has been committed to the catalog; on failure the
// returned *Error classifies the outcome and no partial directory tree
// survives past a fatal stage.
func (p *Pipeline) Process(ctx context.Context, filename string, file io.Reader, filterName string) (*models.Video, *Error) {
	start := time.Now()
	metrics.ActiveUploads.Inc()
	defer metrics.ActiveUploads.Dec()

	v, perr := p.process(ctx, start, filename, file, filterName)
	if perr != nil {
		metrics.UploadsTotal.WithLabelValues(string(perr.Category)).Inc()
		return nil, perr
	}
	metrics.UploadsTotal.WithLabelValues("ok").Inc()
	metrics.ProcessingDuration.Observe(time.Since(start).Seconds())
	return v, nil
}

func (p *Pipeline) process(ctx context.Context, start time.Time, filename string, file io.Reader, filterName string) (*models.Video, *Error) {
	// Stage 1: validate. Nothing is persisted before this passes.
	if filename == "" {
		return nil, badRequest("no file selected")
	}
	if !p.cfg.ExtensionAllowed(filename) {
		return nil, badRequest("file type not allowed")
	}
	filter, err := models.ParseFilter(filterName)
	if err != nil {
		return nil, badRequest("invalid filter name")
	}
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(filename)), ".")

	// Stage 2: stage the bytes under a processing-local identifier.
	id := uuid.New().String()
	tempPath := filepath.Join(p.cfg.IncomingDir(), fmt.Sprintf("%s_temp.%s", id, ext))
	if err := stageFile(file, tempPath); err != nil {
		return nil, internal("failed to store upload", err)
	}

	// Stage 3 + 4: fingerprint, then the cheap duplicate check before any
	// expensive processing.
	checksum, err := media.ChecksumFile(tempPath)
	if err != nil {
		os.Remove(tempPath)
		return nil, internal("failed to fingerprint upload", err)
	}
	if existing, err := p.catalog.FindByChecksum(checksum); err == nil {
		os.Remove(tempPath)
		return nil, &Error{
			Category:   Conflict,
			Message:    "duplicate video detected",
			ExistingID: existing.ID,
		}
	} else if !errors.Is(err, database.ErrNotFound) {
		os.Remove(tempPath)
		return nil, internal("duplicate lookup failed", err)
	}

	// Stage 5: metadata extraction is non-fatal; zero metadata is accepted.
	meta := p.prober.Probe(ctx, tempPath)

	// Stage 6: lay out the artifact tree and move the staged file into its
	// original-asset slot. Past this point any fatal failure must remove
	// the whole tree.
	createdAt := time.Now()
	dirs, err := p.layout.Create(id, createdAt)
	if err != nil {
		os.Remove(tempPath)
		return nil, internal("failed to create asset directories", err)
	}
	originalPath := filepath.Join(dirs.Original, "video."+ext)
	if err := storage.Move(tempPath, originalPath); err != nil {
		storage.Rollback(dirs)
		os.Remove(tempPath)
		return nil, internal("failed to move upload into place", err)
	}

	// Stage 7: the filter run is fatal on failure.
	filterDir, err := dirs.FilterDir(filter)
	if err != nil {
		storage.Rollback(dirs)
		return nil, internal("failed to create filter directory", err)
	}
	processedPath := filepath.Join(filterDir, "video."+ext)
	if _, err := p.engine.Process(ctx, originalPath, processedPath, filter); err != nil {
		storage.Rollback(dirs)
		return nil, &Error{Category: Processing, Message: "failed to process video", Err: err}
	}

	// Stage 8: thumbnails are best-effort; empty paths are fine.
	thumbAbs, previewAbs := p.thumbs.Generate(ctx, originalPath, dirs.Thumbs)

	// Stage 9: commit.
	record := &models.Video{
		ID:                id,
		OriginalName:      filepath.Base(filename),
		OriginalExt:       ext,
		MimeType:          "video/" + ext,
		SizeBytes:         meta.SizeBytes,
		DurationSec:       meta.DurationSec,
		FPS:               meta.FPS,
		Width:             meta.Width,
		Height:            meta.Height,
		Filter:            filter,
		CreatedAt:         createdAt,
		ChecksumMD5:       checksum,
		ProcessingTimeSec: time.Since(start).Seconds(),
	}
	if record.PathOriginal, err = p.layout.Rel(originalPath); err != nil {
		storage.Rollback(dirs)
		return nil, internal("failed to resolve asset path", err)
	}
	if record.PathProcessed, err = p.layout.Rel(processedPath); err != nil {
		storage.Rollback(dirs)
		return nil, internal("failed to resolve asset path", err)
	}
	if thumbAbs != "" {
		record.ThumbnailPath, _ = p.layout.Rel(thumbAbs)
	}
	if previewAbs != "" {
		record.PreviewGIFPath, _ = p.layout.Rel(previewAbs)
	}

	if err := p.catalog.Insert(record); err != nil {
		storage.Rollback(dirs)
		if errors.Is(err, database.ErrDuplicate) {
			// A concurrent upload of the same bytes won the insert race;
			// the UNIQUE constraint is the authority, not our pre-check.
			existingID := ""
			if existing, lerr := p.catalog.FindByChecksum(checksum); lerr == nil {
				existingID = existing.ID
			}
			return nil, &Error{
				Category:   Conflict,
				Message:    "duplicate video detected",
				ExistingID: existingID,
			}
		}
		return nil, internal("failed to save video record", err)
	}

	log.WithFields(log.Fields{
		"video_id": id,
		"filter":   filter.String(),
		"elapsed":  time.Since(start).Seconds(),
	}).Info("upload processed")
	return record, nil
}

// Delete relocates the record's asset tree into the trash and removes the
// catalog row. Assets survive on disk for manual recovery.
func (p *Pipeline) Delete(id string) *Error {
	record, err := p.catalog.Get(id)
	if errors.Is(err, database.ErrNotFound) {
		return &Error{Category: NotFound, Message: "video not found"}
	}
	if err != nil {
		return internal("failed to look up video", err)
	}

	if err := p.layout.Trash(id, record.PathOriginal); err != nil {
		return internal("failed to move video to trash", err)
	}
	if _, err := p.catalog.Delete(id); err != nil {
		return internal("failed to delete video record", err)
	}

	log.WithField("video_id", id).Info("video moved to trash")
	return nil
}

func stageFile(src io.Reader, dst string) error {
	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return fmt.Errorf("create staging directory: %w", err)
	}
	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("create staged file: %w", err)
	}
	if _, err := io.Copy(out, src); err != nil {
		out.Close()
		os.Remove(dst)
		return fmt.Errorf("write staged file: %w", err)
	}
	return out.Close()
}
