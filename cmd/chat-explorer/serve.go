package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"chat-explorer/internal/logging"
	"chat-explorer/internal/metrics"
	"chat-explorer/internal/server"
	"chat-explorer/internal/store"
	"chat-explorer/internal/watcher"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the browsing UI and JSON API",
	Long: `Load every JSON export in the data directory and serve the browsing UI.

Examples:
  # Serve ./data on the default port
  chat-explorer serve

  # Serve a specific export directory
  chat-explorer serve --data ~/exports --port 9000`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().String("host", "", "host interface to bind")
	serveCmd.Flags().Int("port", 0, "port to listen on")
	serveCmd.Flags().String("data", "", "directory of JSON export files")
	serveCmd.Flags().String("static", "", "directory of extra static assets")
	serveCmd.Flags().String("log-level", "", "log level (debug, info, warn, error)")
	serveCmd.Flags().Bool("pretty", false, "human-readable log output")
	serveCmd.Flags().Int("search-limit", 0, "maximum search hits returned")
	serveCmd.Flags().Bool("no-watch", false, "disable the data directory watcher")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	log := logging.New(logging.Config{Level: cfg.LogLevel, Pretty: cfg.LogPretty})

	reg := prometheus.NewRegistry()
	m := metrics.New(reg)

	st := store.New()
	srv := server.New(st, server.Options{
		DataDir:     cfg.DataDir,
		StaticDir:   cfg.StaticDir,
		SearchLimit: cfg.SearchLimit,
		Log:         log,
		Metrics:     m,
		Gatherer:    reg,
	})

	// Initial load. A missing or partly broken data directory is not
	// fatal; the server starts empty and a reload can pick files up
	// later.
	if err := srv.Reload(); err != nil {
		log.Warn().Err(err).Msg("initial load failed; serving empty collection")
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if cfg.Watch {
		w, err := watcher.New(cfg.DataDir, time.Duration(cfg.DebounceMS)*time.Millisecond, func() {
			if err := srv.Reload(); err != nil {
				log.Error().Err(err).Msg("reload failed")
			}
		}, log)
		if err != nil {
			log.Warn().Err(err).Msg("file watcher unavailable; use POST /api/reload")
		} else {
			if err := w.Watch(); err != nil {
				log.Warn().Err(err).Msg("cannot watch data directory; use POST /api/reload")
			}
			defer w.Close()
		}
	}

	httpSrv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	log.Info().
		Str("addr", "http://"+cfg.Addr()).
		Str("data_dir", cfg.DataDir).
		Msg("chat-explorer listening")

	errCh := make(chan error, 1)
	go func() {
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	shutdownCtx, cancel2 := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel2()
	return httpSrv.Shutdown(shutdownCtx)
}
