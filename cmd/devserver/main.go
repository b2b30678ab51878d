// Package main runs the in-memory development backend.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/erp/posconsole/internal/infrastructure/config"
	"github.com/erp/posconsole/internal/infrastructure/logger"
	"github.com/erp/posconsole/internal/interfaces/devserver"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Version information (populated at build time)
var (
	version   = "dev"
	buildTime = "unknown"
)

func main() {
	configPath := flag.String("config", "", "Path to config.toml")
	port := flag.String("port", "", "Override devserver.port")
	seedFile := flag.String("seed-file", "", "Override devserver.seed_file (YAML dataset)")
	seedCount := flag.Int("seed-count", 0, "Override devserver.seed_count")
	seed := flag.Uint64("seed", 1, "Random seed for generated data")
	showVersion := flag.Bool("version", false, "Show version information")
	flag.Parse()

	if *showVersion {
		fmt.Printf("devserver %s (built %s)\n", version, buildTime)
		return
	}

	cfg, err := config.LoadFrom(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	if *port != "" {
		cfg.DevServer.Port = *port
	}
	if *seedFile != "" {
		cfg.DevServer.SeedFile = *seedFile
	}
	if *seedCount > 0 {
		cfg.DevServer.SeedCount = *seedCount
	}

	logCfg := logger.ServerConfig()
	if cfg.Log.Level != "" {
		logCfg.Level = cfg.Log.Level
	}
	log, err := logger.New(logCfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync(log) }()

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	ds, err := devserver.BuildDataset(cfg.DevServer, *seed, time.Now())
	if err != nil {
		log.Fatal("Failed to build dataset", zap.Error(err))
	}
	log.Info("Dataset ready",
		zap.Int("serials", len(ds.Serials)),
		zap.Int("registrations", len(ds.Registrations)),
		zap.Int("claims", len(ds.Claims)),
		zap.Int("orders", len(ds.Orders)),
		zap.String("seed_file", cfg.DevServer.SeedFile),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := devserver.New(cfg.DevServer, cfg.View.PageSize, ds, log)
	if err := srv.Run(ctx); err != nil {
		log.Fatal("Dev server failed", zap.Error(err))
	}
}
