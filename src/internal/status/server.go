// FILE: logship/src/internal/status/server.go
package status

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"sync/atomic"
	"time"

	"logship/src/internal/config"
	"logship/src/internal/metrics"
	"logship/src/internal/version"

	"github.com/lixenwraith/log"
	"github.com/lixenwraith/log/compat"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/valyala/fasthttp"
	"github.com/valyala/fasthttp/fasthttpadaptor"
)

// StatsFunc returns the current process statistics for /status.
type StatsFunc func() map[string]any

// Server exposes status JSON and Prometheus metrics over HTTP
type Server struct {
	// Configuration reference (NOT a copy)
	config *config.StatusConfig

	server         *fasthttp.Server
	metricsHandler fasthttp.RequestHandler
	stats          StatsFunc
	logger         *log.Logger
	startTime      time.Time

	// Statistics
	totalRequests atomic.Uint64
}

// NewServer creates a status server. m may be nil, in which case the
// metrics path answers 404.
func NewServer(cfg *config.StatusConfig, stats StatsFunc, m *metrics.Metrics, logger *log.Logger) (*Server, error) {
	if cfg == nil {
		return nil, fmt.Errorf("status server config cannot be nil")
	}
	if stats == nil {
		stats = func() map[string]any { return map[string]any{} }
	}
	if logger == nil {
		logger = log.NewLogger()
	}

	s := &Server{
		config:    cfg,
		stats:     stats,
		logger:    logger,
		startTime: time.Now(),
	}

	if reg := m.Registry(); reg != nil {
		s.metricsHandler = fasthttpadaptor.NewFastHTTPHandler(
			promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
		)
	}

	s.server = &fasthttp.Server{
		Name:             fmt.Sprintf("logship/%s", version.Short()),
		Handler:          s.requestHandler,
		DisableKeepalive: false,
		Logger:           compat.NewFastHTTPAdapter(logger),
		ReadTimeout:      10 * time.Second,
		WriteTimeout:     10 * time.Second,
	}

	return s, nil
}

// Start listens on the configured address.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)

	errChan := make(chan error, 1)
	go func() {
		s.logger.Info("msg", "Status server started",
			"component", "status_server",
			"host", s.config.Host,
			"port", s.config.Port,
			"status_path", s.config.StatusPath,
			"metrics_path", s.config.MetricsPath)

		if err := s.server.ListenAndServe(addr); err != nil {
			errChan <- err
		}
	}()

	// Check if server started successfully
	select {
	case err := <-errChan:
		return fmt.Errorf("status server failed to start: %w", err)
	case <-time.After(100 * time.Millisecond):
		return nil
	}
}

// Serve runs the server on ln until Stop.
func (s *Server) Serve(ln net.Listener) error {
	return s.server.Serve(ln)
}

func (s *Server) Stop() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := s.server.ShutdownWithContext(ctx); err != nil {
		s.logger.Warn("msg", "Status server shutdown error",
			"component", "status_server",
			"error", err)
	}
	s.logger.Info("msg", "Status server stopped", "component", "status_server")
}

func (s *Server) requestHandler(ctx *fasthttp.RequestCtx) {
	s.totalRequests.Add(1)
	path := string(ctx.Path())

	if !ctx.IsGet() && !ctx.IsHead() {
		writeJSON(ctx, fasthttp.StatusMethodNotAllowed, map[string]any{
			"error": "Method Not Allowed",
		})
		return
	}

	switch {
	case path == s.config.StatusPath:
		s.handleStatus(ctx)
	case path == s.config.MetricsPath && s.metricsHandler != nil:
		s.metricsHandler(ctx)
	default:
		writeJSON(ctx, fasthttp.StatusNotFound, map[string]any{
			"error": "Not Found",
		})
	}
}

func (s *Server) handleStatus(ctx *fasthttp.RequestCtx) {
	status := map[string]any{
		"service":        "logship",
		"version":        version.Short(),
		"uptime_seconds": int(time.Since(s.startTime).Seconds()),
		"endpoints": map[string]string{
			"status":  s.config.StatusPath,
			"metrics": s.config.MetricsPath,
		},
		"requests": s.totalRequests.Load(),
	}
	for k, v := range s.stats() {
		status[k] = v
	}

	writeJSON(ctx, fasthttp.StatusOK, status)
}

func writeJSON(ctx *fasthttp.RequestCtx, code int, v any) {
	ctx.SetStatusCode(code)
	ctx.SetContentType("application/json")
	data, err := json.Marshal(v)
	if err != nil {
		ctx.SetStatusCode(fasthttp.StatusInternalServerError)
		data = []byte(`{"error":"status encoding failed"}`)
	}
	ctx.SetBody(data)
}
