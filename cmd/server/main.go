/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the allocation reconciliation server. Handles
  configuration, dependency wiring, and graceful shutdown.

STARTUP SEQUENCE:
  1. Parse command-line flags
  2. Load config (file + ALLOC_* env) and build the logger
  3. Open the snapshot store (SQLite or in-memory)
  4. Wire handler and router
  5. Start server with graceful shutdown

COMMAND-LINE FLAGS:
  -config  Config file path (optional; defaults apply without one)
  -port    Overrides server.port
  -db      Overrides database.path; ":memory:" runs without a file

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop accepting new connections
  2. Wait for active requests to complete (30s timeout)
  3. Close the store
*/
package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/warp/allocation-engine/api"
	"github.com/warp/allocation-engine/config"
	"github.com/warp/allocation-engine/engine"
	memstore "github.com/warp/allocation-engine/engine/store"
	"github.com/warp/allocation-engine/store/sqlite"
)

func main() {
	configPath := flag.String("config", "", "config file path")
	port := flag.Int("port", 0, "HTTP server port (overrides config)")
	dbPath := flag.String("db", "", "SQLite database path (overrides config)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		// No logger yet.
		panic(err)
	}
	if *port != 0 {
		cfg.Server.Port = *port
	}
	if *dbPath != "" {
		cfg.Database.Path = *dbPath
	}

	logger, err := config.NewLogger(cfg.Logger)
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	store, err := openStore(cfg.Database.Path)
	if err != nil {
		logger.Fatal("failed to open store", zap.Error(err))
	}
	defer store.Close()

	handler := api.NewHandler(store, logger)
	router := api.NewRouter(handler)

	srv := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		logger.Info("server listening",
			zap.String("addr", cfg.Server.Addr()),
			zap.String("db", cfg.Database.Path))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("shutdown error", zap.Error(err))
	}
}

// openStore picks the store implementation: "mem" uses the in-process
// store, anything else (including ":memory:") goes through SQLite.
func openStore(path string) (engine.RecordStore, error) {
	if path == "mem" {
		return memstore.NewMemory(), nil
	}
	return sqlite.New(path)
}
