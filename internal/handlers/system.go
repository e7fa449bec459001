package handlers

import (
	"net/http"
	"os"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

// Index handles GET /: a small service descriptor with the endpoint map.
func (h *Handler) Index(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "online",
		"service": "Video Processing Server",
		"endpoints": gin.H{
			"upload":  "/api/upload",
			"videos":  "/api/videos",
			"video":   "/api/video/<id>",
			"gallery": "/gallery",
			"health":  "/api/health",
		},
	})
}

// Health handles GET /api/health: record count, free disk space, time.
func (h *Handler) Health(c *gin.Context) {
	count, err := h.catalog.Count()
	if err != nil {
		log.WithField("error", err).Error("health check failed")
		c.JSON(http.StatusInternalServerError, gin.H{"status": "unhealthy"})
		return
	}

	var stat syscall.Statfs_t
	var freeGB float64
	if err := syscall.Statfs(h.cfg.MediaRoot, &stat); err == nil {
		freeGB = float64(stat.Bavail) * float64(stat.Bsize) / (1 << 30)
	}

	c.JSON(http.StatusOK, gin.H{
		"status":       "healthy",
		"videos_in_db": count,
		"disk_free_gb": freeGB,
		"timestamp":    time.Now().Format(time.RFC3339),
	})
}

// ServeMedia handles GET /media/*filepath, serving assets from under the
// media root. Paths resolving outside the root or to anything but a regular
// file get a 404.
func (h *Handler) ServeMedia(c *gin.Context) {
	rel := strings.TrimPrefix(c.Param("filepath"), "/")
	full := h.pipeline.Layout().Abs(rel)

	root := h.cfg.MediaRoot + string(os.PathSeparator)
	if !strings.HasPrefix(full, root) {
		c.JSON(http.StatusNotFound, gin.H{"error": "file not found"})
		return
	}

	info, err := os.Stat(full)
	if err != nil || !info.Mode().IsRegular() {
		c.JSON(http.StatusNotFound, gin.H{"error": "file not found"})
		return
	}
	c.File(full)
}
