package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"allopatry/internal/model"
	"allopatry/internal/notify"
	"allopatry/pkg/allopatry"
)

// Server exposes simulation runs over HTTP, with a websocket feed of
// per-generation events and Prometheus metrics.
type Server struct {
	client   *allopatry.Client
	manager  *notify.Manager
	feed     *notify.WebSocketNotifier
	metrics  *serverMetrics
	registry *prometheus.Registry
	logger   *Logger
}

func NewServer(client *allopatry.Client, logger *Logger) (*Server, error) {
	registry := prometheus.NewRegistry()
	metrics := newServerMetrics(registry)

	feed := notify.NewWebSocketNotifier("server-feed")
	feed.SetClientObserver(func(count int) {
		metrics.wsClients.Set(float64(count))
	})

	manager := notify.NewManagerWithLogf(logger.Warnf)
	if err := manager.Register(feed); err != nil {
		return nil, err
	}

	return &Server{
		client:   client,
		manager:  manager,
		feed:     feed,
		metrics:  metrics,
		registry: registry,
		logger:   logger,
	}, nil
}

func (s *Server) Close() error {
	return s.manager.Close()
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", s.handleHealth)
	mux.HandleFunc("/runs", s.handleRuns)
	mux.HandleFunc("/runs/", s.handleRunRoutes)
	mux.HandleFunc("/ws", s.handleWebSocket)
	mux.Handle("/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))
	return mux
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleRuns(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.handleListRuns(w, r)
	case http.MethodPost:
		s.handleStartRun(w, r)
	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

type runPayload struct {
	RunID            string  `json:"run_id,omitempty"`
	PopulationSize   int     `json:"population_size"`
	SequenceLength   int     `json:"sequence_length"`
	MutationRate     float64 `json:"mutation_rate"`
	SplitGeneration  int     `json:"split_generation"`
	TotalGenerations int     `json:"total_generations"`
	Seed             int64   `json:"seed"`
	Workers          int     `json:"workers,omitempty"`
	KeepSnapshots    bool    `json:"keep_snapshots,omitempty"`
}

type runResponse struct {
	RunID            string                     `json:"run_id"`
	Seed             int64                      `json:"seed"`
	SplitOccurred    bool                       `json:"split_occurred"`
	FinalDistances   map[string]float64         `json:"final_distances"`
	FinalPopulations []model.PopulationSnapshot `json:"final_populations"`
}

func (s *Server) handleStartRun(w http.ResponseWriter, r *http.Request) {
	var payload runPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid request body: %v", err))
		return
	}

	s.metrics.runsStarted.Inc()

	runID := payload.RunID
	if runID == "" {
		runID = fmt.Sprintf("drift-%d-%d", payload.Seed, time.Now().UTC().Unix())
	}

	summary, err := s.client.Run(r.Context(), allopatry.RunRequest{
		RunID:            runID,
		PopulationSize:   payload.PopulationSize,
		SequenceLength:   payload.SequenceLength,
		MutationRate:     payload.MutationRate,
		SplitGeneration:  payload.SplitGeneration,
		TotalGenerations: payload.TotalGenerations,
		Seed:             payload.Seed,
		Workers:          payload.Workers,
		KeepSnapshots:    payload.KeepSnapshots,
		OnGeneration: func(record model.GenerationRecord) {
			s.metrics.generationsSimulated.Inc()
			s.manager.Publish(notify.FromRecord(runID, record))
		},
	})
	if err != nil {
		s.metrics.runsFailed.Inc()
		s.logger.Errorf("run %s failed: %v", runID, err)
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	s.logger.Infof("run %s finished: split=%t", summary.RunID, summary.SplitOccurred)
	writeJSON(w, http.StatusOK, runResponse{
		RunID:            summary.RunID,
		Seed:             summary.Seed,
		SplitOccurred:    summary.SplitOccurred,
		FinalDistances:   summary.FinalDistances,
		FinalPopulations: summary.FinalPopulations,
	})
}

func (s *Server) handleListRuns(w http.ResponseWriter, r *http.Request) {
	items, err := s.client.Runs(r.Context(), 0)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func (s *Server) handleRunRoutes(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	rest := strings.TrimPrefix(r.URL.Path, "/runs/")
	parts := strings.Split(rest, "/")
	if len(parts) != 2 || parts[0] == "" {
		writeError(w, http.StatusNotFound, "not found")
		return
	}
	runID := parts[0]

	switch parts[1] {
	case "trace":
		records, err := s.client.Trace(r.Context(), runID)
		if err != nil {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, records)
	case "distances":
		series, err := s.client.Distances(r.Context(), runID)
		if err != nil {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, series)
	default:
		writeError(w, http.StatusNotFound, "not found")
	}
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	if err := s.feed.HandleUpgrade(w, r); err != nil {
		s.logger.Warnf("websocket upgrade failed: %v", err)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// envOr resolves a server setting with flag > environment > default
// precedence: it supplies the flag default, so an explicit flag still wins.
func envOr(name, fallback string) string {
	if v := os.Getenv(name); v != "" {
		return v
	}
	return fallback
}

func runServe(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	addr := fs.String("addr", envOr("ALLOPATRY_ADDR", ":8080"), "listen address")
	logLevel := fs.String("log-level", envOr("ALLOPATRY_LOG_LEVEL", "info"), "log level: debug|info|warn|error")
	storeKind, dbPath, pgDSN := addStoreFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *pgDSN == "" {
		*pgDSN = os.Getenv("ALLOPATRY_PG_DSN")
	}

	logger := NewLogger(*logLevel)
	client, err := newClient(*storeKind, *dbPath, *pgDSN, logger)
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	if err := client.Init(ctx); err != nil {
		return err
	}

	server, err := NewServer(client, logger)
	if err != nil {
		return err
	}
	defer func() {
		_ = server.Close()
	}()

	httpServer := &http.Server{
		Addr:              *addr,
		Handler:           server.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- httpServer.ListenAndServe()
	}()

	logger.Infof("listening on %s store=%s", *addr, *storeKind)

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
