// Package service exposes the healthz and Prometheus metrics endpoints for
// the duration of a run.
package service

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/ethereum/go-ethereum/log"

	"github.com/e2e-infra/run-reporter/metrics"
)

const (
	HealthzHost = "0.0.0.0"
	HealthzPort = "8080"

	MetricsHost = "0.0.0.0"
	MetricsPort = "7300"

	shutdownGrace = 5 * time.Second
)

// Service bundles the two observability servers a run optionally exposes.
// Both are started in the background and stopped together at run end.
type Service struct {
	log     log.Logger
	healthz *HealthzServer
	metrics *MetricsServer
}

func New(logger log.Logger) *Service {
	return &Service{
		log:     logger,
		healthz: &HealthzServer{log: logger},
		metrics: &MetricsServer{},
	}
}

// Start launches the healthz and metrics servers. Listen failures are logged
// and counted; the run itself proceeds regardless.
func (s *Service) Start(ctx context.Context) {
	go func() {
		addr := net.JoinHostPort(HealthzHost, HealthzPort)
		s.log.Info("Starting healthz server", "addr", addr)
		if err := s.healthz.Start(ctx, addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log.Error("Healthz server failed", "error", err)
			metrics.RecordErrorDetails("healthz server", err)
		}
	}()

	go func() {
		addr := net.JoinHostPort(MetricsHost, MetricsPort)
		s.log.Info("Starting metrics server", "addr", addr)
		if err := s.metrics.Start(ctx, addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log.Error("Metrics server failed", "error", err)
			metrics.RecordErrorDetails("metrics server", err)
		}
	}()
}

// Shutdown stops both servers, allowing in-flight scrapes a short grace
// period to complete.
func (s *Service) Shutdown() {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()

	if err := s.healthz.Shutdown(ctx); err != nil {
		s.log.Warn("Healthz server shutdown failed", "error", err)
	}
	if err := s.metrics.Shutdown(ctx); err != nil {
		s.log.Warn("Metrics server shutdown failed", "error", err)
	}
	s.log.Info("Observability servers stopped")
}
