package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	pulselift "github.com/claude/pulselift"
	"github.com/claude/pulselift/internal/config"
	"github.com/claude/pulselift/internal/llm"
	"github.com/claude/pulselift/internal/server"
	"github.com/claude/pulselift/internal/storage"
	"github.com/claude/pulselift/internal/workout"
	"tailscale.com/tsnet"
)

// Version is set at build time via -ldflags.
var Version = "dev"

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	migrateOnly := flag.Bool("migrate-only", false, "run migrations and exit")
	flag.Parse()

	log := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	log.Info("PulseLift starting", "version", Version)

	// Load config
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// Run migrations
	dsn := cfg.Database.DSN()
	if err := storage.RunMigrations(dsn, "migrations"); err != nil {
		log.Error("migration failed", "error", err)
		os.Exit(1)
	}
	log.Info("migrations applied")

	if *migrateOnly {
		log.Info("migrate-only: exiting")
		return
	}

	// Connect database
	ctx := context.Background()
	db, err := storage.New(ctx, dsn)
	if err != nil {
		log.Error("failed to connect database", "error", err)
		os.Exit(1)
	}
	defer db.Close()
	log.Info("database connected")

	// Model gateway
	model := llm.NewClient(cfg.Anthropic.APIKey, log)
	if cfg.Anthropic.BaseURL != "" {
		model.SetBaseURL(cfg.Anthropic.BaseURL)
	}

	// Generation pipeline
	genCfg := workout.DefaultConfig()
	if cfg.Generation.Timeout() > 0 {
		genCfg.GenerateTimeout = cfg.Generation.Timeout()
	}
	if cfg.Generation.SettleDelay() > 0 {
		genCfg.SettleDelay = cfg.Generation.SettleDelay()
	}
	if cfg.Generation.MinViable > 0 {
		genCfg.MinViable = cfg.Generation.MinViable
	}
	if cfg.Generation.MaxTokens > 0 {
		genCfg.MaxTokens = cfg.Generation.MaxTokens
	}
	if cfg.Anthropic.Model != "" {
		genCfg.Model = cfg.Anthropic.Model
	}

	orchestrator := workout.NewOrchestrator(db, model, db, db, pulselift.DefaultWorkoutTemplate, genCfg, log)
	advisor := workout.NewAdvisor(model, log)

	// Warm the catalog snapshot so the first generation does not block
	// on a cold cache. A failure here is not fatal.
	if err := orchestrator.RefreshCatalog(ctx); err != nil {
		log.Warn("catalog warmup failed", "error", err)
	}

	// Create server
	srv := server.New(db, orchestrator, advisor, cfg.Auth.APIKey, log)

	// Start server — tsnet or plain HTTP
	var listener net.Listener
	var tsServer *tsnet.Server

	if cfg.Tailscale.Enabled {
		tsServer = &tsnet.Server{
			Hostname: cfg.Tailscale.Hostname,
			Dir:      cfg.Tailscale.StateDir,
		}
		if err := tsServer.Start(); err != nil {
			log.Error("tsnet start failed", "error", err)
			os.Exit(1)
		}
		defer tsServer.Close()

		listener, err = tsServer.Listen("tcp", ":80")
		if err != nil {
			log.Error("tsnet listen failed", "error", err)
			os.Exit(1)
		}
		log.Info("tsnet server starting", "hostname", cfg.Tailscale.Hostname)
	} else {
		addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
		listener, err = net.Listen("tcp", addr)
		if err != nil {
			log.Error("listen failed", "addr", addr, "error", err)
			os.Exit(1)
		}
		log.Info("server starting", "addr", addr, "mode", "dev (no tailscale)")
	}

	httpSrv := &http.Server{Handler: srv}

	go func() {
		if err := httpSrv.Serve(listener); err != nil && err != http.ErrServerClosed {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	log.Info("shutting down", "signal", sig)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown error", "error", err)
	}
	log.Info("server stopped")
}
