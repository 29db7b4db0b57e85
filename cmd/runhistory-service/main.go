// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"

	"github.com/bureau-foundation/runhistory/lib/clock"
	"github.com/bureau-foundation/runhistory/lib/config"
	"github.com/bureau-foundation/runhistory/lib/history"
	"github.com/bureau-foundation/runhistory/lib/logstore"
	"github.com/bureau-foundation/runhistory/lib/process"
	"github.com/bureau-foundation/runhistory/lib/replay"
	"github.com/bureau-foundation/runhistory/lib/service"
	"github.com/bureau-foundation/runhistory/lib/version"
)

func main() {
	if err := run(); err != nil {
		process.Fatal(err)
	}
}

func run() error {
	var (
		configPath  string
		showVersion bool
	)
	flagSet := pflag.NewFlagSet("runhistory-service", pflag.ContinueOnError)
	flagSet.StringVar(&configPath, "config", "", "path to the configuration file (default: $"+config.EnvironmentVariable+")")
	flagSet.BoolVar(&showVersion, "version", false, "print version information and exit")
	if err := flagSet.Parse(os.Args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return err
	}

	if showVersion {
		version.Print("runhistory-service")
		return nil
	}

	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	logger := newLogger(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, closeStore, err := logstore.Open(ctx, cfg.LogDirectory, storeOptions(cfg))
	if err != nil {
		return fmt.Errorf("opening log directory: %w", err)
	}
	defer func() {
		if err := closeStore(); err != nil {
			logger.Warn("closing log directory store", "error", err)
		}
	}()

	clk := clock.Real()
	provider, err := history.NewProvider(store, replay.New(), clk, providerConfig(cfg), logger)
	if err != nil {
		return err
	}
	defer provider.Close()

	if err := provider.Start(ctx); err != nil {
		return err
	}

	historyService := &HistoryService{
		provider: provider,
	}
	socketServer := service.NewSocketServer(cfg.SocketPath, logger)
	historyService.registerActions(socketServer)

	socketDone := make(chan error, 1)
	go func() {
		socketDone <- socketServer.Serve(ctx)
	}()

	runDone := make(chan struct{})
	go func() {
		provider.Run(ctx)
		close(runDone)
	}()

	logger.Info("runhistory service running",
		"version", version.Info(),
		"log_directory", store.String(),
		"socket", cfg.SocketPath,
	)

	<-ctx.Done()
	logger.Info("shutting down")

	<-runDone
	if err := <-socketDone; err != nil {
		logger.Error("socket server error", "error", err)
	}
	return nil
}

// loadConfig reads the file named by --config, falling back to
// RUNHISTORY_CONFIG, and validates it.
func loadConfig(path string) (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if path != "" {
		cfg, err = config.LoadFile(path)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func newLogger(cfg *config.Config) *slog.Logger {
	level := cfg.SlogLevel()
	if os.Getenv("RUNHISTORY_DEBUG") != "" {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

func storeOptions(cfg *config.Config) logstore.Options {
	accessKey, secretKey := cfg.S3Credentials()
	return logstore.Options{
		S3: logstore.S3Options{
			Endpoint:  cfg.S3.Endpoint,
			Region:    cfg.S3.Region,
			AccessKey: accessKey,
			SecretKey: secretKey,
			UseSSL:    cfg.S3.UseSSL,
		},
		GCS: logstore.GCSOptions{
			CredentialsFile: cfg.GCS.CredentialsFile,
		},
	}
}

func providerConfig(cfg *config.Config) history.Config {
	return history.Config{
		UpdateInterval:  cfg.UpdateInterval,
		Workers:         cfg.Replay.Workers,
		BatchSize:       cfg.Replay.BatchSize,
		CleanerEnabled:  cfg.Cleaner.Enabled,
		CleanerInterval: cfg.Cleaner.Interval,
		MaxAge:          cfg.Cleaner.MaxAge,
	}
}
