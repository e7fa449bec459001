package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"

	"video-filter-api/internal/config"
	"video-filter-api/internal/database"
	"video-filter-api/internal/handlers"
	"video-filter-api/internal/middleware"
	"video-filter-api/internal/pipeline"
)

func main() {
	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})

	if err := godotenv.Load(); err != nil {
		log.Info("no .env file found, relying on system environment")
	}

	cfg, err := config.Load()
	if err != nil {
		log.WithField("error", err).Fatal("failed to load configuration")
	}

	// The media tree must exist before anything is staged into it.
	for _, dir := range []string{cfg.IncomingDir(), cfg.VideosDir(), cfg.TrashDir()} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			log.WithFields(log.Fields{"dir": dir, "error": err}).Fatal("failed to create media directory")
		}
	}

	catalog, err := database.Open(cfg.DatabasePath)
	if err != nil {
		log.WithField("error", err).Fatal("failed to initialize database")
	}
	defer catalog.Close()

	p := pipeline.New(cfg, catalog)
	h := handlers.New(cfg, catalog, p)

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.Logging())
	router.Use(middleware.ErrorHandling())
	router.SetTrustedProxies(nil)
	router.MaxMultipartMemory = 32 << 20

	router.GET("/", h.Index)
	router.GET("/gallery", h.Gallery)
	router.GET("/media/*filepath", h.ServeMedia)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := router.Group("/api")
	{
		api.POST("/upload", h.Upload)
		api.GET("/videos", h.ListVideos)
		api.GET("/video/:id", h.GetVideo)
		api.DELETE("/video/:id", h.DeleteVideo)
		api.GET("/health", h.Health)
	}

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		log.WithFields(log.Fields{
			"port":       cfg.Port,
			"media_root": cfg.MediaRoot,
		}).Info("server starting")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithField("error", err).Fatal("server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit
	log.Info("server shutting down")

	// Give in-flight uploads a moment to finish; large transcodes that
	// exceed this are abandoned.
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.WithField("error", err).Fatal("forced shutdown")
	}
	log.Info("server stopped")
}
