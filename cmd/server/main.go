package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Ko-stant/dungeon-builder/internal/config"
	"github.com/Ko-stant/dungeon-builder/internal/level"
	"github.com/Ko-stant/dungeon-builder/internal/logging"
	"github.com/Ko-stant/dungeon-builder/internal/protocol"
)

const tickInterval = 50 * time.Millisecond

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load("")
	if err != nil {
		return err
	}
	logger, err := logging.New(logging.Options{Level: cfg.LogLevel, Format: cfg.LogFormat})
	if err != nil {
		return fmt.Errorf("failed to configure logging: %w", err)
	}
	slog.SetDefault(logger)

	levels, err := loadLevels(cfg.LevelFiles, logger)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := NewServer(levels, cfg.Settings, logger)
	if err := srv.Generate(ctx, protocol.GenerateRequest{Seed: cfg.Seed}); err != nil {
		return err
	}

	go srv.Run(ctx, tickInterval)

	httpServer := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           logRequests(logging.AsPrintf(logger, slog.LevelDebug), srv.Routes()),
		ReadHeaderTimeout: 10 * time.Second,
		ErrorLog:          slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	errc := make(chan error, 1)
	go func() {
		logger.Info("listening", "addr", "http://localhost:"+cfg.Port)
		errc <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return httpServer.Shutdown(shutdownCtx)
}

// loadLevels reads and validates every configured level file in order,
// falling back to the built-in dev level.
func loadLevels(paths []string, logger *slog.Logger) ([]*level.DungeonLevel, error) {
	if len(paths) == 0 {
		logger.Warn("LEVEL_FILE not set, using the built-in dev level")
		return []*level.DungeonLevel{level.DevLevel()}, nil
	}

	levels := make([]*level.DungeonLevel, 0, len(paths))
	for _, p := range paths {
		lvl, err := level.LoadLevelFile(p)
		if err != nil {
			return nil, err
		}
		if err := lvl.Validate(); err != nil {
			return nil, fmt.Errorf("level file %s is invalid: %w", p, err)
		}
		logger.Info("loaded level", "file", p, "name", lvl.Name, "templates", len(lvl.Templates), "graphs", len(lvl.Graphs))
		levels = append(levels, lvl)
	}
	return levels, nil
}
