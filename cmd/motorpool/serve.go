package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/aretw0/motorpool/internal/fleet"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the read-only status HTTP server",
	Long: `Starts an HTTP server exposing the fleet roster, shift history and
Prometheus metrics. The server only reads the snapshot; all mutation flows
through the chat workflow.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := createLogger(cmd)
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		if addr, _ := cmd.Flags().GetString("listen"); addr != "" {
			cfg.Listen = addr
		}

		ctx := context.Background()
		registry, err := openRegistry(ctx, cfg, logger)
		if err != nil {
			return fmt.Errorf("initialize registry: %w", err)
		}

		srv := &http.Server{
			Addr:    cfg.Listen,
			Handler: newStatusHandler(registry),
		}

		serverErrors := make(chan error, 1)
		go func() {
			logger.Info("status server listening", "addr", srv.Addr)
			serverErrors <- srv.ListenAndServe()
		}()

		shutdown := make(chan os.Signal, 1)
		signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

		select {
		case err := <-serverErrors:
			return fmt.Errorf("server error: %w", err)

		case sig := <-shutdown:
			logger.Info("shutting down", "signal", sig.String())

			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			if err := srv.Shutdown(ctx); err != nil {
				logger.Warn("graceful shutdown did not complete", "err", err)
				if err := srv.Close(); err != nil {
					return fmt.Errorf("close server: %w", err)
				}
			}
			logger.Info("stopped")
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringP("listen", "l", "", "Listen address (overrides config)")
}

// newStatusHandler builds the read-only status API.
func newStatusHandler(registry *fleet.Registry) http.Handler {
	r := chi.NewRouter()

	r.Get("/healthz", func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	r.Get("/api/cars", func(w http.ResponseWriter, req *http.Request) {
		writeJSON(w, registry.ListCars())
	})

	r.Get("/api/shifts", func(w http.ResponseWriter, req *http.Request) {
		if raw := req.URL.Query().Get("n"); raw != "" {
			n, err := strconv.Atoi(raw)
			if err != nil || n < 0 {
				http.Error(w, "invalid n", http.StatusBadRequest)
				return
			}
			writeJSON(w, registry.Recent(n))
			return
		}
		writeJSON(w, registry.All())
	})

	r.Handle("/metrics", promhttp.Handler())

	return r
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
