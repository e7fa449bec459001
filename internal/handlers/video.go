package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"video-filter-api/internal/config"
	"video-filter-api/internal/database"
	"video-filter-api/internal/models"
	"video-filter-api/internal/pipeline"
)

// Handler carries the wired dependencies for all HTTP endpoints.
type Handler struct {
	cfg      *config.Config
	catalog  *database.Catalog
	pipeline *pipeline.Pipeline
}

func New(cfg *config.Config, catalog *database.Catalog, p *pipeline.Pipeline) *Handler {
	return &Handler{cfg: cfg, catalog: catalog, pipeline: p}
}

// Upload handles POST /api/upload: multipart form with "file" and "filter".
func (h *Handler) Upload(c *gin.Context) {
	if c.Request.ContentLength > h.cfg.MaxUploadBytes {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{
			"error": "file too large, maximum size is " +
				strconv.FormatInt(h.cfg.MaxUploadBytes>>20, 10) + "MB",
		})
		return
	}

	file, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no file provided"})
		return
	}
	if file.Size > h.cfg.MaxUploadBytes {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{
			"error": "file too large, maximum size is " +
				strconv.FormatInt(h.cfg.MaxUploadBytes>>20, 10) + "MB",
		})
		return
	}

	filterName := c.DefaultPostForm("filter", models.FilterGrayscale.String())

	src, err := file.Open()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to read upload"})
		return
	}
	defer src.Close()

	record, perr := h.pipeline.Process(c.Request.Context(), file.Filename, src, filterName)
	if perr != nil {
		h.writePipelineError(c, perr)
		return
	}

	base := baseURL(c)
	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"video_id": record.ID,
		"info":     videoJSON(record, base),
	})
}

// ListVideos handles GET /api/videos with page/per_page/filter query params.
func (h *Handler) ListVideos(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	perPage, _ := strconv.Atoi(c.DefaultQuery("per_page", "20"))
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = 20
	}
	filterName := c.Query("filter")

	videos, total, err := h.catalog.List(page, perPage, filterName)
	if err != nil {
		log.WithField("error", err).Error("list videos failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list videos"})
		return
	}

	base := baseURL(c)
	items := make([]gin.H, 0, len(videos))
	for i := range videos {
		items = append(items, videoJSON(&videos[i], base))
	}

	c.JSON(http.StatusOK, gin.H{
		"success":     true,
		"count":       len(items),
		"total":       total,
		"page":        page,
		"per_page":    perPage,
		"total_pages": (total + perPage - 1) / perPage,
		"videos":      items,
	})
}

// GetVideo handles GET /api/video/:id.
func (h *Handler) GetVideo(c *gin.Context) {
	record, err := h.catalog.Get(c.Param("id"))
	if errors.Is(err, database.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "video not found"})
		return
	}
	if err != nil {
		log.WithField("error", err).Error("get video failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch video"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"video":   videoJSON(record, baseURL(c)),
	})
}

// DeleteVideo handles DELETE /api/video/:id: assets go to the trash tree,
// the catalog row is removed.
func (h *Handler) DeleteVideo(c *gin.Context) {
	if perr := h.pipeline.Delete(c.Param("id")); perr != nil {
		h.writePipelineError(c, perr)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "video moved to trash"})
}

func (h *Handler) writePipelineError(c *gin.Context, perr *pipeline.Error) {
	if perr.Err != nil {
		log.WithFields(log.Fields{
			"category": perr.Category,
			"error":    perr.Err,
		}).Error("pipeline failure")
	}

	body := gin.H{"error": perr.Message}
	if perr.ExistingID != "" {
		body["existing_id"] = perr.ExistingID
	}
	c.JSON(statusFor(perr.Category), body)
}

func statusFor(cat pipeline.Category) int {
	switch cat {
	case pipeline.BadRequest:
		return http.StatusBadRequest
	case pipeline.Conflict:
		return http.StatusConflict
	case pipeline.NotFound:
		return http.StatusNotFound
	case pipeline.Processing, pipeline.Internal:
		return http.StatusInternalServerError
	}
	return http.StatusInternalServerError
}

// videoJSON renders a record with absolute media URLs substituted for the
// stored relative paths.
func videoJSON(v *models.Video, base string) gin.H {
	return gin.H{
		"id":                  v.ID,
		"original_name":       v.OriginalName,
		"original_ext":        v.OriginalExt,
		"mime_type":           v.MimeType,
		"size_bytes":          v.SizeBytes,
		"duration_sec":        v.DurationSec,
		"fps":                 v.FPS,
		"width":               v.Width,
		"height":              v.Height,
		"filter":              v.Filter.String(),
		"created_at":          v.CreatedAt,
		"processing_time_sec": v.ProcessingTimeSec,
		"checksum_md5":        v.ChecksumMD5,
		"path_original":       mediaURL(base, v.PathOriginal),
		"path_processed":      mediaURL(base, v.PathProcessed),
		"thumbnail_path":      mediaURL(base, v.ThumbnailPath),
		"preview_gif_path":    mediaURL(base, v.PreviewGIFPath),
	}
}

func mediaURL(base, rel string) any {
	if rel == "" {
		return nil
	}
	return base + "/media/" + rel
}

func baseURL(c *gin.Context) string {
	scheme := "http"
	if c.Request.TLS != nil {
		scheme = "https"
	}
	return scheme + "://" + c.Request.Host
}
