// Copyright (c) 2025-2026 Biased Controls. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"

	"github.com/BiasedControls/snpx-client/internal/config"
	"github.com/BiasedControls/snpx-client/internal/sim"
	"github.com/BiasedControls/snpx-client/internal/sim/persistence"
)

func main() {
	configFile := pflag.StringP("config", "c", "", "Configuration file path.")
	address := pflag.StringP("address", "A", "", "Listen address, overrides the config file.")
	persistenceType := pflag.StringP("persistence", "s", "", "Persistence type (memory, file, mmap).")
	persistencePath := pflag.StringP("path", "p", "", "Persistence file path.")
	logLevel := pflag.StringP("log-level", "v", "", "Log verbosity (debug, info, warn, error).")
	pflag.Parse()

	// Load Configuration
	cfg, err := config.LoadConfig(*configFile)
	if err != nil {
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	if *address != "" {
		cfg.Sim.Address = *address
	}
	if *persistenceType != "" {
		cfg.Sim.Persistence.Type = *persistenceType
	}
	if *persistencePath != "" {
		cfg.Sim.Persistence.Path = *persistencePath
	}
	if *logLevel != "" {
		cfg.Log.Level = *logLevel
	}

	setupLogger(cfg.Log)

	slog.Info("Starting SNPX simulator...")

	var storage persistence.Storage
	switch cfg.Sim.Persistence.Type {
	case "file":
		slog.Info("Using file persistence", "path", cfg.Sim.Persistence.Path)
		storage = persistence.NewFileStorage(cfg.Sim.Persistence.Path)
	case "mmap":
		slog.Info("Using MMAP persistence", "path", cfg.Sim.Persistence.Path)
		storage = persistence.NewMmapStorage(cfg.Sim.Persistence.Path)
	default:
		slog.Info("Using memory storage (non-persistent)")
		storage = persistence.NewMemoryStorage()
	}

	image, err := storage.Load()
	if err != nil {
		slog.Error("Failed to load persistence data", "err", err)
		os.Exit(1)
	}

	server := sim.NewServer(cfg.Sim.Address, sim.NewController(image, storage))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- server.Start(ctx)
	}()

	// Wait for Signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-done:
		if err != nil {
			slog.Error("Server stopped with error", "err", err)
			os.Exit(1)
		}
	case <-sigChan:
		slog.Info("Shutting down...")
		cancel()
		<-done
	}

	if err := storage.Save(image); err != nil {
		slog.Error("Failed to save persistence data", "err", err)
	}
	if closer, ok := storage.(interface{ Close() error }); ok {
		closer.Close()
	}
	slog.Info("Goodbye.")
}

func setupLogger(cfg config.LogConfig) {
	opts := &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}
	switch cfg.Level {
	case "debug":
		opts.Level = slog.LevelDebug
	case "warn":
		opts.Level = slog.LevelWarn
	case "error":
		opts.Level = slog.LevelError
	}

	var handler slog.Handler
	if cfg.File != "" && cfg.File != "-" {
		f, err := os.OpenFile(cfg.File, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			fmt.Printf("Failed to open log file, falling back to stdout: %v\n", err)
			handler = slog.NewTextHandler(os.Stdout, opts)
		} else {
			handler = slog.NewTextHandler(f, opts)
		}
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}
	slog.SetDefault(slog.New(handler))
}
