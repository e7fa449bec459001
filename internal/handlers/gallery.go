package handlers

import (
	"html/template"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"video-filter-api/internal/models"
)

const galleryPageSize = 50

// Gallery handles GET /gallery: a server-rendered listing of the most
// recent records with their thumbnails.
func (h *Handler) Gallery(c *gin.Context) {
	videos, _, err := h.catalog.List(1, galleryPageSize, "")
	if err != nil {
		log.WithField("error", err).Error("gallery query failed")
		c.String(http.StatusInternalServerError, "failed to load gallery")
		return
	}
	totalSize, err := h.catalog.TotalSize()
	if err != nil {
		log.WithField("error", err).Error("gallery size query failed")
		c.String(http.StatusInternalServerError, "failed to load gallery")
		return
	}

	c.Header("Content-Type", "text/html; charset=utf-8")
	c.Status(http.StatusOK)
	err = galleryTemplate.Execute(c.Writer, gin.H{
		"Videos":      videos,
		"TotalSizeMB": float64(totalSize) / (1 << 20),
	})
	if err != nil {
		log.WithField("error", err).Error("gallery render failed")
	}
}

var galleryTemplate = template.Must(template.New("gallery").Funcs(template.FuncMap{
	"upper": func(f models.Filter) string { return strings.ToUpper(f.String()) },
}).Parse(`<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>Processed Videos</title>
    <style>
        * { margin: 0; padding: 0; box-sizing: border-box; }
        body {
            font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif;
            background: linear-gradient(135deg, #667eea 0%, #764ba2 100%);
            min-height: 100vh;
            padding: 20px;
        }
        .container { max-width: 1400px; margin: 0 auto; }
        h1 { color: white; text-align: center; margin-bottom: 40px; font-size: 2.5rem; }
        .stats {
            background: white; border-radius: 15px; padding: 20px;
            margin-bottom: 30px; display: flex; justify-content: space-around;
        }
        .stat-value { font-size: 2rem; font-weight: bold; color: #667eea; text-align: center; }
        .stat-label { color: #666; margin-top: 5px; text-align: center; }
        .gallery {
            display: grid;
            grid-template-columns: repeat(auto-fill, minmax(300px, 1fr));
            gap: 25px;
        }
        .video-card { background: white; border-radius: 15px; overflow: hidden; }
        .video-thumbnail { width: 100%; height: 200px; object-fit: cover; background: #f0f0f0; }
        .video-info { padding: 15px; }
        .video-title { font-weight: 600; margin-bottom: 10px; color: #333; }
        .filter-badge {
            background: linear-gradient(135deg, #667eea 0%, #764ba2 100%);
            color: white; padding: 5px 12px; border-radius: 20px;
            font-size: 0.85rem; display: inline-block;
        }
        .video-meta { color: #666; font-size: 0.9rem; margin-top: 10px; }
        .no-thumb {
            width: 100%; height: 200px; background: #f0f0f0; color: #999;
            display: flex; align-items: center; justify-content: center;
        }
    </style>
</head>
<body>
    <div class="container">
        <h1>Processed Videos</h1>
        <div class="stats">
            <div>
                <div class="stat-value">{{len .Videos}}</div>
                <div class="stat-label">Videos</div>
            </div>
            <div>
                <div class="stat-value">{{printf "%.1f" .TotalSizeMB}} MB</div>
                <div class="stat-label">Storage Used</div>
            </div>
        </div>
        <div class="gallery">
            {{range .Videos}}
            <div class="video-card">
                {{if .ThumbnailPath}}
                <img src="/media/{{.ThumbnailPath}}" alt="{{.OriginalName}}" class="video-thumbnail">
                {{else}}
                <div class="no-thumb">No Thumbnail</div>
                {{end}}
                <div class="video-info">
                    <div class="video-title">{{.OriginalName}}</div>
                    <span class="filter-badge">{{upper .Filter}}</span>
                    <div class="video-meta">
                        Duration: {{printf "%.1f" .DurationSec}}s<br>
                        Created: {{.CreatedAt.Format "2006-01-02 15:04:05"}}
                    </div>
                </div>
            </div>
            {{end}}
        </div>
    </div>
</body>
</html>`))
