package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/openbracket/micro-publish/internal/config"
	"github.com/openbracket/micro-publish/internal/mastodon"
	"github.com/openbracket/micro-publish/internal/micropub"
	"github.com/openbracket/micro-publish/internal/publish"
	"github.com/openbracket/micro-publish/internal/storage"
	"github.com/openbracket/micro-publish/internal/storage/dropbox"
	"github.com/openbracket/micro-publish/internal/storage/s3"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	store, err := buildStorage(cfg)
	if err != nil {
		log.Fatalf("Failed to build storage backend: %v", err)
	}

	var poster publish.StatusPoster
	if cfg.Mastodon.Instance != "" {
		poster = mastodon.New(cfg.Mastodon.Instance, cfg.Mastodon.Token)
	}

	publisher := publish.New(publish.Options{
		SiteURL:           cfg.SiteURL,
		PostPath:          cfg.PostPath,
		MicroPostPath:     cfg.MicroPostPath,
		PhotoPath:         cfg.PhotoPath,
		PhotoURI:          cfg.PhotoURI,
		SetDate:           cfg.SetDate,
		DefaultTag:        cfg.DefaultTag,
		SyndicationTarget: cfg.Mastodon.Instance,
	}, store, poster, logger)

	verifier := &micropub.TokenVerifier{
		Endpoint: cfg.TokenEndpoint,
		Me:       cfg.Me,
	}

	handler := micropub.NewHandler(publisher, verifier, micropub.Endpoint{
		MediaEndpoint: cfg.MediaEndpoint,
		SyndicateTo:   cfg.SyndicateTo,
	}, logger)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})
	r.Mount("/micropub", handler.Routes())

	httpServer := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Port),
		Handler: r,
	}

	go func() {
		logger.Info("server started", "port", cfg.Port, "storage", cfg.StorageBackend)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	logger.Info("server exiting")
}

func buildStorage(cfg *config.Config) (storage.Backend, error) {
	switch cfg.StorageBackend {
	case "dropbox":
		return dropbox.New(cfg.Dropbox.Token)
	case "s3":
		return s3.New(s3.Config{
			Region:          cfg.S3.Region,
			Bucket:          cfg.S3.Bucket,
			AccessKeyID:     cfg.S3.AccessKeyID,
			SecretAccessKey: cfg.S3.SecretAccessKey,
			Endpoint:        cfg.S3.Endpoint,
			UsePathStyle:    cfg.S3.UsePathStyle,
		})
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.StorageBackend)
	}
}
