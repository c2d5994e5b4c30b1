// cmd/boardd/main.go
//
// boardd is the development backend for the dashboard: a gin HTTP API over
// a SQLite database, seeded with a deterministic dataset on first run.

package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"sprintdeck/internal/datasource"
	"sprintdeck/internal/server"
	"sprintdeck/internal/storage/sqlite"
)

func main() {
	addrFlag := flag.String("addr", envOrDefault("BOARDD_ADDR", ":8090"), "HTTP listen address")
	dbFlag := flag.String("db", envOrDefault("BOARDD_DB_PATH", ".sprintdeck/data/board.db"), "Path to sqlite database file")
	noSeedFlag := flag.Bool("no-seed", false, "Skip seeding an empty database")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	store, err := sqlite.Open(*dbFlag, logger)
	if err != nil {
		logger.Error("unable to open database", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer store.Close()

	if !*noSeedFlag {
		if err := store.Seed(context.Background(), datasource.FallbackSnapshot()); err != nil {
			logger.Error("unable to seed database", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}

	srv := server.New(store, server.NewEventLog(0), logger)

	httpServer := &http.Server{
		Addr:    *addrFlag,
		Handler: srv.Engine(),
	}

	go func() {
		logger.Info("starting boardd", slog.String("addr", httpServer.Addr))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server stopped unexpectedly", slog.String("error", err.Error()))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(ctx); err != nil {
		logger.Error("failed to shutdown server", slog.String("error", err.Error()))
	}

	logger.Info("boardd stopped")
}

func envOrDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
