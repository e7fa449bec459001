package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// Config holds all runtime settings. It is built once at startup and passed
// into constructors; nothing reads the environment after Load returns.
type Config struct {
	Port         string
	MediaRoot    string
	DatabasePath string

	MaxUploadBytes    int64
	AllowedExtensions map[string]bool

	ThumbnailCount int
	ThumbnailWidth int

	FFmpegPath  string
	FFprobePath string
}

const defaultMaxUploadBytes = 500 << 20 // 500MB

// Load reads configuration from the environment, applying defaults for
// anything unset. Relative paths are resolved against the working directory.
func Load() (*Config, error) {
	workDir, err := os.Getwd()
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Port:         envOr("SERVER_PORT", "8080"),
		MediaRoot:    envOr("MEDIA_ROOT", filepath.Join(workDir, "media")),
		DatabasePath: envOr("SQLITE_DB_PATH", filepath.Join(workDir, "database", "videos.db")),

		MaxUploadBytes: defaultMaxUploadBytes,
		AllowedExtensions: map[string]bool{
			".mp4": true, ".avi": true, ".mov": true,
			".mkv": true, ".webm": true, ".flv": true,
		},

		ThumbnailCount: 5,
		ThumbnailWidth: 320,

		FFmpegPath:  envOr("FFMPEG_PATH", "ffmpeg"),
		FFprobePath: envOr("FFPROBE_PATH", "ffprobe"),
	}

	if val := os.Getenv("MAX_UPLOAD_MB"); val != "" {
		if n, err := strconv.ParseInt(val, 10, 64); err == nil && n > 0 {
			cfg.MaxUploadBytes = n << 20
		}
	}

	if !filepath.IsAbs(cfg.MediaRoot) {
		cfg.MediaRoot = filepath.Join(workDir, cfg.MediaRoot)
	}
	if !filepath.IsAbs(cfg.DatabasePath) {
		cfg.DatabasePath = filepath.Join(workDir, cfg.DatabasePath)
	}

	return cfg, nil
}

// IncomingDir is the staging area for in-flight uploads.
func (c *Config) IncomingDir() string {
	return filepath.Join(c.MediaRoot, "incoming")
}

// VideosDir is the root of the date-partitioned asset tree.
func (c *Config) VideosDir() string {
	return filepath.Join(c.MediaRoot, "videos")
}

// TrashDir holds deleted asset trees for manual recovery.
func (c *Config) TrashDir() string {
	return filepath.Join(c.MediaRoot, "trash")
}

// ExtensionAllowed reports whether a filename carries an accepted video
// extension. The comparison is case-insensitive.
func (c *Config) ExtensionAllowed(filename string) bool {
	return c.AllowedExtensions[strings.ToLower(filepath.Ext(filename))]
}

func envOr(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}
