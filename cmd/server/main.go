package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/vytor/ghmutuals/internal/api"
	"github.com/vytor/ghmutuals/internal/compare"
	"github.com/vytor/ghmutuals/internal/config"
	"github.com/vytor/ghmutuals/internal/db"
	"github.com/vytor/ghmutuals/internal/github"
	"github.com/vytor/ghmutuals/internal/jobs"
	"github.com/vytor/ghmutuals/internal/logger"
	"github.com/vytor/ghmutuals/internal/repository/sqlite"
	"github.com/vytor/ghmutuals/internal/services"
	"github.com/vytor/ghmutuals/internal/worker"
)

func main() {
	cfg := config.Load()

	log := logger.New(
		logger.WithLevel(logger.ParseLevel(cfg.LogLevel)),
		logger.WithColors(cfg.LogFormat != "json"),
		logger.WithJSON(cfg.LogFormat == "json"),
	)
	logger.SetDefault(log)

	if err := cfg.Validate(); err != nil {
		log.Error("%v", err)
		os.Exit(1)
	}

	log.Info("===========================================")
	log.Info("GitHub Mutuals Server Starting")
	log.Info("===========================================")
	log.Info("configuration loaded")
	log.Debug("addr=%s", cfg.Addr)
	log.Debug("db_path=%s", cfg.DBPath)
	log.Debug("log_level=%s log_format=%s", cfg.LogLevel, cfg.LogFormat)
	log.Debug("github_api_url=%s", cfg.GitHubAPIURL)
	log.Debug("github_token_set=%t", cfg.GitHubToken != "")
	log.Debug("github_timeout=%v", cfg.GitHubTimeout())
	log.Debug("github_requests_per_second=%.2f", cfg.GitHubRequestsPerSecond)
	log.Debug("search_worker_count=%d search_queue_size=%d", cfg.SearchWorkerCount, cfg.SearchQueueSize)
	log.Debug("analytics_worker_count=%d analytics_queue_size=%d", cfg.AnalyticsWorkerCount, cfg.AnalyticsQueueSize)
	log.Debug("session_ttl=%v", cfg.SessionTTL())

	database, err := db.Open(cfg.DBPath)
	if err != nil {
		log.Error("failed to open database: %v", err)
		os.Exit(1)
	}
	defer func() {
		log.Debug("closing database connection")
		database.Close()
	}()

	log.Debug("loading templates")
	tmpl, err := api.LoadTemplates()
	if err != nil {
		log.Error("failed to load templates: %v", err)
		os.Exit(1)
	}

	searchPool := worker.NewPool("search", cfg.SearchWorkerCount, cfg.SearchQueueSize)
	analyticsPool := worker.NewPool("analytics", cfg.AnalyticsWorkerCount, cfg.AnalyticsQueueSize)

	client := github.New(
		github.WithBaseURL(cfg.GitHubAPIURL),
		github.WithTimeout(cfg.GitHubTimeout()),
		github.WithRequestsPerSecond(cfg.GitHubRequestsPerSecond),
	)
	tracker := compare.NewTracker(cfg.SessionTTL())

	searches := sqlite.NewSearchRepository(database.DB)
	queue := jobs.NewWorkerQueue(searchPool, analyticsPool, searches)

	analyticsService := services.NewAnalyticsService(searches, queue)
	searchService := services.NewSearchService(client, tracker, analyticsService, queue)

	srv := &api.Server{
		SearchService:    searchService,
		AnalyticsService: analyticsService,
		DB:               database,
		Queue:            queue,
		Templates:        tmpl,
		DefaultToken:     cfg.GitHubToken,
	}

	ctx, cancel := context.WithCancel(logger.NewContext(context.Background(), log))
	searchPool.Start(ctx)
	analyticsPool.Start(ctx)
	tracker.StartJanitor(ctx, time.Minute)

	httpServer := &http.Server{
		Addr:         cfg.Addr,
		Handler:      srv.Routes(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 3 * time.Minute,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info("HTTP server listening on %s", cfg.Addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("HTTP server error: %v", err)
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	sig := <-stop

	log.Info("received signal %v, initiating graceful shutdown", sig)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	log.Debug("shutting down HTTP server")
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server shutdown error: %v", err)
	}

	// In-flight searches and queued analytics writes are abandoned.
	log.Debug("stopping search pool")
	searchPool.Stop()
	log.Debug("stopping analytics pool")
	analyticsPool.Stop()
	cancel()

	log.Info("===========================================")
	log.Info("GitHub Mutuals Server Stopped")
	log.Info("===========================================")
}
