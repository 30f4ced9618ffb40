package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"biliwatch/app/api"
	"biliwatch/app/bili"
	"biliwatch/app/cfg"
	"biliwatch/app/config"
	"biliwatch/app/database"
	"biliwatch/app/notify"
	"biliwatch/app/tasks"
	"biliwatch/app/watcher"
)

func main() {
	appCfg, err := cfg.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Configuration error: %v\n", err)
		os.Exit(1)
	}
	if appCfg == nil {
		// Help was shown, exit gracefully
		return
	}

	logLevel := slog.LevelInfo
	if appCfg.Debug {
		logLevel = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel})))

	slog.Info("Starting biliwatch", "version", appCfg.Version)

	db, err := database.NewConnection(appCfg.DBPath)
	if err != nil {
		slog.Error("Failed to open database", "path", appCfg.DBPath, "error", err)
		os.Exit(1)
	}
	defer db.Close()

	version, dirty, err := database.RunMigrations(db)
	if err != nil {
		slog.Error("Failed to run migrations", "error", err)
		os.Exit(1)
	}
	slog.Info("Database ready", "path", appCfg.DBPath, "schema_version", version, "dirty", dirty)

	loader := config.NewLoader(appCfg.CreatorsFile)
	watchList, err := loader.Load()
	if err != nil {
		slog.Error("Failed to load watch-list", "path", appCfg.CreatorsFile, "error", err)
		os.Exit(1)
	}
	enabled := watchList.Enabled()
	slog.Info("Watch-list loaded", "path", appCfg.CreatorsFile,
		"creators", len(watchList.Creators), "enabled", len(enabled))

	repo := database.NewDeliveryRepo(db)

	client := bili.NewClient(bili.ClientOptions{
		UserAgent:          appCfg.UserAgent,
		CookieString:       appCfg.CookieString,
		MinRequestInterval: time.Duration(appCfg.MinRequestInterval) * time.Second,
		FetchLimit:         appCfg.FetchLimit,
	})

	sender := notify.NewSender(appCfg.WebhookURL, appCfg.WebhookSecret, appCfg.ContentMaxLength)

	startupCtx, cancelStartup := context.WithTimeout(context.Background(), 15*time.Second)
	if err := sender.TestConnection(startupCtx); err != nil {
		slog.Warn("Webhook connection test failed, continuing anyway", "error", err)
	} else {
		slog.Info("Webhook connection verified")
	}
	cancelStartup()

	w := watcher.New(client, sender, repo, enabled, appCfg.StalenessDays)

	scheduler := tasks.NewScheduler(w, repo)
	scheduler.Start()
	defer scheduler.Stop()
	slog.Info("Scheduler started",
		"quick_interval_min", appCfg.QuickCheckInterval,
		"full_interval_min", appCfg.FullCheckInterval)

	apiHandler := api.NewHandler(repo, watchList, w, scheduler)
	server := api.NewServer(apiHandler, appCfg.APIAccessKey)

	httpServer := &http.Server{
		Addr:         ":" + appCfg.Port,
		Handler:      server,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	serverErrChan := make(chan error, 1)
	go func() {
		slog.Info("HTTP server listening", "port", appCfg.Port, "api_enabled", appCfg.APIAccessKey != "")
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		slog.Info("Received signal", "signal", sig.String())
	case err := <-serverErrChan:
		slog.Error("Server error", "error", err)
	}

	slog.Info("Shutting down gracefully")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	}

	// Scheduler is stopped via defer
	slog.Info("Shutdown complete")
}
