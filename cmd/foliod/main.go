package main

import (
	"context"
	"log"
	"os/signal"
	"path/filepath"
	"syscall"

	"folio/internal/config"
	"folio/internal/daemon"
	"folio/internal/engine"
	"folio/internal/logging"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg, _, _, err := config.Load("")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	if err := cfg.EnsureDirectories(); err != nil {
		log.Fatalf("ensure directories: %v", err)
	}

	logger, err := logging.New(logging.Options{
		Level:            cfg.Logging.Level,
		Format:           cfg.Logging.Format,
		OutputPaths:      []string{"stdout", filepath.Join(cfg.Logging.Dir, "foliod.log")},
		ErrorOutputPaths: []string{"stderr"},
	})
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}

	eng, err := engine.New(cfg, logger)
	if err != nil {
		log.Fatalf("create engine: %v", err)
	}

	d, err := daemon.New(cfg, eng, logger)
	if err != nil {
		log.Fatalf("create daemon: %v", err)
	}
	defer d.Close()

	if err := d.Start(ctx); err != nil {
		log.Fatalf("start daemon: %v", err)
	}

	select {
	case <-ctx.Done():
	case <-d.Done():
	}
	logger.Info("foliod shutting down")
}
