package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/philipcowcer-eng/LoadBalance/api"
	"github.com/philipcowcer-eng/LoadBalance/internal/app"
	"github.com/philipcowcer-eng/LoadBalance/internal/config"
)

var (
	version   = "dev"
	buildTime = "unknown"
)

func main() {
	var configPath = flag.String("config", "", "Path to config YAML file")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid config: %v", err)
	}

	log.Printf("Starting staffing server version %s (built at %s)", version, buildTime)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	logger := app.NewLogger()
	api.SetLogger(logger)

	a, err := app.Open(ctx, cfg, logger, cfg.MigrateOnStart)
	if err != nil {
		log.Fatalf("Failed to open DB: %v", err)
	}

	created, err := a.Service.EnsureAdmin(ctx, cfg.Bootstrap.AdminUsername, cfg.Bootstrap.AdminPassword)
	if err != nil {
		log.Fatalf("Admin bootstrap failed: %v", err)
	}
	if created {
		log.Printf("Created initial admin account %q; change its password", cfg.Bootstrap.AdminUsername)
	}

	stopBackground := a.StartBackground(ctx)

	handler := api.SetupRoutes(api.Deps{
		Config:    cfg,
		Service:   a.Service,
		Snapshots: a.Snapshots,
		Version:   version,
		BuildTime: buildTime,
	})

	// Create HTTP server
	server := &http.Server{
		Addr:         cfg.Addr,
		Handler:      handler,
		ReadTimeout:  cfg.APITimeout,
		WriteTimeout: cfg.APITimeout,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Printf("Server starting on %s", cfg.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	// Give outstanding requests 30 seconds to complete
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}

	// Let a running snapshot finish before cancelling the root context.
	stopBackground()
	cancel()

	// Close database connection
	if err := a.Close(); err != nil {
		log.Printf("Error closing DB: %v", err)
	}

	log.Println("Server exited")
}
