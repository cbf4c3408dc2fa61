package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"inventory-search/internal/catalog"
	"inventory-search/internal/config"
	"inventory-search/internal/handlers"
	"inventory-search/internal/ingest"
	"inventory-search/pkg/logger"
)

func main() {
	cfg := config.Load()
	log := logger.New(cfg.Env)

	if cfg.Env != "development" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := catalog.NewRedisStore(ctx, cfg.RedisURL, cfg.RedisDB, log)
	if err != nil {
		log.Warn("starting without catalog", "error", err)
	} else {
		defer store.Close()
	}

	if cfg.CatalogFile != "" && store.IsAvailable() {
		res, err := ingest.New(store, log).Run(ctx, ingest.FileSource{Path: cfg.CatalogFile})
		if err != nil {
			log.Error("catalog seed failed", "file", cfg.CatalogFile, "error", err)
		} else {
			log.Info("catalog seeded", "file", cfg.CatalogFile, "indexed", res.Indexed, "skipped", res.Skipped)
		}
	}

	h := handlers.New(store, log)
	limiter := handlers.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)
	limiter.StartSweeper(ctx, time.Minute, 10*time.Minute, log)
	router := handlers.NewRouter(h, limiter)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.Info("search service listening", "port", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", "error", err)
	}
}
