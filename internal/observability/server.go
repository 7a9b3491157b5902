// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

// Package observability serves the simulation's metrics, health probes and a
// JSON view of world counts over HTTP.
package observability

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/samber/oops"
)

// probeTimeout bounds one readiness request across all checks.
const probeTimeout = 2 * time.Second

// Registrar registers a package's metrics.
type Registrar func(prometheus.Registerer)

// Check is one readiness condition. Probe returns nil while it holds.
type Check struct {
	Name  string
	Probe func(ctx context.Context) error
}

// Config describes what a Server exposes.
type Config struct {
	// Addr is "host:port"; port 0 picks a free port.
	Addr   string
	Logger *slog.Logger
	// Checks must all pass for /healthz/readiness to return 200.
	Checks []Check
	// Stats, when set, is served as JSON on /world and exported as gauges.
	Stats      StatsFunc
	Registrars []Registrar
}

// Server serves /metrics, /healthz/liveness, /healthz/readiness and /world.
type Server struct {
	cfg        Config
	logger     *slog.Logger
	registry   *prometheus.Registry
	listener   net.Listener
	httpServer *http.Server
	running    atomic.Bool
}

// NewServer builds a server with a private registry holding the Go and
// process collectors, every registrar's metrics and, when cfg.Stats is set,
// a WorldCollector.
func NewServer(cfg Config) *Server {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	for _, register := range cfg.Registrars {
		register(registry)
	}
	if cfg.Stats != nil {
		NewWorldCollector(cfg.Stats, cfg.Logger).Register(registry)
	}
	return &Server{cfg: cfg, logger: cfg.Logger, registry: registry}
}

// Registry returns the registry served on /metrics.
func (s *Server) Registry() *prometheus.Registry { return s.registry }

// Handler returns the server's routes without listening.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("GET /metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{EnableOpenMetrics: true}))
	mux.HandleFunc("GET /healthz/liveness", s.handleLiveness)
	mux.HandleFunc("GET /healthz/readiness", s.handleReadiness)
	if s.cfg.Stats != nil {
		mux.HandleFunc("GET /world", s.handleWorld)
	}
	return mux
}

// Start listens and serves in the background. The returned channel carries
// a serve failure and is closed once the server stops.
func (s *Server) Start() (<-chan error, error) {
	if !s.running.CompareAndSwap(false, true) {
		return nil, oops.Code("OBSERVABILITY_RUNNING").Errorf("observability server already running")
	}

	listener, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		s.running.Store(false)
		return nil, oops.Code("OBSERVABILITY_LISTEN_FAILED").With("addr", s.cfg.Addr).Wrap(err)
	}
	s.listener = listener

	httpSrv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.httpServer = httpSrv

	errCh := make(chan error, 1)
	go func() {
		defer close(errCh)
		if serveErr := httpSrv.Serve(listener); serveErr != nil && serveErr != http.ErrServerClosed {
			s.logger.Error("observability server error", "error", serveErr)
			errCh <- serveErr
		}
	}()

	s.logger.Info("observability server started",
		"addr", listener.Addr().String(),
		"checks", len(s.cfg.Checks))
	return errCh, nil
}

// Stop shuts the server down, waiting for in-flight requests until ctx ends.
func (s *Server) Stop(ctx context.Context) error {
	if !s.running.CompareAndSwap(true, false) {
		return nil
	}
	if err := s.httpServer.Shutdown(ctx); err != nil {
		s.running.Store(true)
		return oops.With("operation", "stop observability server").Wrap(err)
	}
	s.logger.Info("observability server stopped")
	return nil
}

// Addr returns the bound address, or "" before Start.
func (s *Server) Addr() string {
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

func writeText(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	//nolint:errcheck // the prober may already be gone
	w.Write([]byte(body))
}

func (s *Server) handleLiveness(w http.ResponseWriter, _ *http.Request) {
	writeText(w, http.StatusOK, "ok\n")
}

// handleReadiness runs every check and lists the ones that fail.
func (s *Server) handleReadiness(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), probeTimeout)
	defer cancel()

	var failed []string
	for _, c := range s.cfg.Checks {
		if err := c.Probe(ctx); err != nil {
			failed = append(failed, fmt.Sprintf("%s: %v", c.Name, err))
		}
	}
	if len(failed) > 0 {
		s.logger.Debug("readiness failed", "checks", failed)
		writeText(w, http.StatusServiceUnavailable, "not ready\n"+strings.Join(failed, "\n")+"\n")
		return
	}
	writeText(w, http.StatusOK, "ok\n")
}

type worldResponse struct {
	Players  int `json:"players"`
	Monsters int `json:"monsters"`
	Fighting int `json:"fighting"`
	Effects  int `json:"effects"`
}

func (s *Server) handleWorld(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), scrapeTimeout)
	defer cancel()

	stats, err := s.cfg.Stats(ctx)
	if err != nil {
		s.logger.Warn("world stats unavailable", "error", err)
		writeText(w, http.StatusServiceUnavailable, "world unavailable\n")
		return
	}
	w.Header().Set("Content-Type", "application/json")
	//nolint:errcheck // the client may already be gone
	json.NewEncoder(w).Encode(worldResponse{
		Players:  stats.Players,
		Monsters: stats.Monsters,
		Fighting: stats.Fighting,
		Effects:  stats.Effects,
	})
}
