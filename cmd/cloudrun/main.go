package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	cmdinternal "github.com/spacelift-io/replicascalr/cmd/internal"
	"github.com/spacelift-io/replicascalr/internal"
	"github.com/spacelift-io/replicascalr/internal/tracing"
)

// Cloud Run service: each POST /scale, usually sent by Cloud Scheduler, runs
// one iteration of the control loop.

const shutdownTimeout = 15 * time.Second

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	var cfg internal.RuntimeConfig
	if err := cfg.Parse(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := serve(ctx, logger, &cfg); err != nil {
		logger.Error("replicascalr server stopped", "error", err)
		os.Exit(1)
	}
}

func serve(ctx context.Context, logger *slog.Logger, cfg *internal.RuntimeConfig) error {
	tp, err := tracing.InitTracer(ctx, logger, tracing.Options{Exporter: string(cfg.TraceExporter), Writer: os.Stderr})
	if err != nil {
		return fmt.Errorf("could not initialize tracing: %w", err)
	}

	addr := ":8080"
	if port := os.Getenv("PORT"); port != "" {
		addr = ":" + port
	}

	server := &http.Server{
		Addr:         addr,
		Handler:      newMux(logger, cfg, cmdinternal.Handle),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 5 * time.Minute,
		BaseContext:  func(net.Listener) context.Context { return ctx },
	}

	listenErr := make(chan error, 1)
	go func() {
		logger.Info("listening", "addr", addr)
		listenErr <- server.ListenAndServe()
	}()

	select {
	case err := <-listenErr:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
	case <-ctx.Done():
		logger.Info("termination requested, draining connections")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := tp.Shutdown(shutdownCtx); err != nil {
		logger.Warn("could not flush traces", "error", err)
	}

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("could not drain connections: %w", err)
	}

	logger.Info("server stopped")
	return nil
}

type handleFunc func(ctx context.Context, logger *slog.Logger, cfg *internal.RuntimeConfig) error

func newMux(logger *slog.Logger, cfg *internal.RuntimeConfig, handle handleFunc) *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("/scale", func(w http.ResponseWriter, r *http.Request) {
		handleScale(w, r, logger, cfg, handle)
	})

	mux.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, logger, http.StatusOK, map[string]string{"status": "healthy"})
	})

	return mux
}

func writeJSON(w http.ResponseWriter, logger *slog.Logger, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Warn("could not write response", "error", err)
	}
}

func handleScale(w http.ResponseWriter, r *http.Request, logger *slog.Logger, cfg *internal.RuntimeConfig, handle handleFunc) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		writeJSON(w, logger, http.StatusMethodNotAllowed, map[string]string{"error": "only POST is supported"})
		return
	}

	if traceHeader := r.Header.Get("X-Cloud-Trace-Context"); traceHeader != "" {
		logger = logger.With("trace_id", traceHeader)
	}

	start := time.Now()

	if err := handle(r.Context(), logger, cfg); err != nil {
		logger.Error("scaling iteration failed", "error", err, "duration", time.Since(start))
		writeJSON(w, logger, http.StatusInternalServerError, map[string]string{"error": "scaling iteration failed"})
		return
	}

	elapsed := time.Since(start)
	logger.Info("scaling iteration finished", "duration", elapsed)

	writeJSON(w, logger, http.StatusOK, map[string]string{
		"status":   "ok",
		"duration": elapsed.String(),
	})
}
