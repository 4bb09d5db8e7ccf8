// Package status serves the watchdog's metrics and read-only state over HTTP.
package status

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/adarshmishra-tech/monitor-trading-infra/history"
	"github.com/adarshmishra-tech/monitor-trading-infra/logger"
	"github.com/adarshmishra-tech/monitor-trading-infra/types"
)

// MetricSummary describes the samples buffered for one metric.
type MetricSummary struct {
	Samples int      `json:"samples"`
	Average *float64 `json:"average,omitempty"`
	Last    *float64 `json:"last,omitempty"`
}

// Server exposes /metrics, /health and the current reporting period.
type Server struct {
	history    *history.Buffer
	thresholds types.ThresholdConfig
	httpServer *http.Server
}

// New creates a server listening on addr.
func New(addr string, buf *history.Buffer, thresholds types.ThresholdConfig) *Server {
	s := &Server{history: buf, thresholds: thresholds}
	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.Handler(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return s
}

// Handler returns the route table.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/api/stats/history", s.handleHistory)
	mux.HandleFunc("/api/thresholds", s.handleThresholds)
	return mux
}

// Start serves in the background. Listen errors are logged.
func (s *Server) Start() {
	log := logger.WithComponent("status")
	go func() {
		log.Info().Str("addr", s.httpServer.Addr).Msg("starting status server")
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("status server error")
		}
	}()
}

// Shutdown stops accepting requests and waits for in-flight ones.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	fmt.Fprintf(w, `{"status":"healthy","timestamp":"%s"}`, time.Now().Format(time.RFC3339))
}

// handleHistory summarizes the samples collected since the last report.
func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	snap := s.history.Snapshot()
	out := make(map[types.MetricName]MetricSummary, len(snap))
	for _, m := range types.Metrics() {
		values := snap[m]
		sum := MetricSummary{Samples: len(values)}
		if len(values) > 0 {
			var total float64
			for _, v := range values {
				total += v
			}
			avg := total / float64(len(values))
			last := values[len(values)-1]
			sum.Average, sum.Last = &avg, &last
		}
		out[m] = sum
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(out)
}

func (s *Server) handleThresholds(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(s.thresholds)
}
