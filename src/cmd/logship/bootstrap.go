// FILE: logship/src/cmd/logship/bootstrap.go
package main

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"logship/src/internal/config"
	"logship/src/internal/core"
	"logship/src/internal/filter"
	"logship/src/internal/flow"
	applog "logship/src/internal/logger"
	"logship/src/internal/metrics"
	"logship/src/internal/shipper"
	"logship/src/internal/sink"
	"logship/src/internal/source"
	"logship/src/internal/status"
	"logship/src/internal/version"

	"github.com/lixenwraith/log"
)

// app wires the sources, the shipper and the status server together
type app struct {
	cfg         *config.Config
	logger      *log.Logger
	metrics     *metrics.Metrics
	transmitter *sink.HTTPTransmitter
	shipper     *shipper.Shipper
	filters     *filter.Chain
	limiter     *flow.RateLimiter
	events      applog.Handle

	sources map[string]source.Source
	stdin   *source.StdinSource
	status  *status.Server

	pumps sync.WaitGroup
}

// bootstrap builds every component from cfg without starting anything.
func bootstrap(cfg *config.Config, logger *log.Logger, opts ...sink.TransmitterOption) (*app, error) {
	a := &app{
		cfg:     cfg,
		logger:  logger,
		metrics: metrics.New(),
		sources: make(map[string]source.Source),
	}

	transmitter, err := sink.NewHTTPTransmitter(cfg.Shipper, logger, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create transmitter: %w", err)
	}
	a.transmitter = transmitter

	a.shipper, err = shipper.New(cfg.Shipper, transmitter,
		shipper.WithLogger(logger),
		shipper.WithMetrics(a.metrics))
	if err != nil {
		return nil, fmt.Errorf("failed to create shipper: %w", err)
	}

	if err := a.events.Set(applog.New(a.shipper)); err != nil {
		return nil, err
	}

	a.filters, err = filter.NewChain(cfg.Filters, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create filter chain: %w", err)
	}
	a.limiter = flow.NewRateLimiter(cfg.RateLimit, logger)

	if cfg.Sources.Stdin.Enabled {
		if source.StdinIsTerminal() && !cfg.Sources.Stdin.AllowTerminal {
			logger.Info("msg", "Stdin is a terminal, stdin source skipped",
				"component", "main")
		} else {
			a.stdin = source.NewStdinSource(cfg.Sources.Stdin, logger)
			a.sources["stdin"] = a.stdin
		}
	}

	if cfg.Sources.TCP.Enabled {
		tcp, err := source.NewTCPSource(cfg.Sources.TCP, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to create tcp source: %w", err)
		}
		a.sources["tcp"] = tcp
	}

	if len(a.sources) == 0 {
		return nil, fmt.Errorf("no usable sources (stdin is a terminal and no tcp source is enabled)")
	}

	if cfg.Status.Enabled {
		a.status, err = status.NewServer(&cfg.Status, a.stats, a.metrics, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to create status server: %w", err)
		}
	}

	return a, nil
}

// start launches the status server, the sources and one pump per source.
func (a *app) start() error {
	if a.status != nil {
		if err := a.status.Start(); err != nil {
			return err
		}
	}

	for name, src := range a.sources {
		ch := src.Subscribe()
		if err := src.Start(); err != nil {
			return fmt.Errorf("failed to start %s source: %w", name, err)
		}
		a.pumps.Add(1)
		go a.pump(name, ch)
	}

	if a.cfg.AnnounceLifecycle {
		a.announce("logship {Version} started on {Host}")
	}

	a.logger.Info("msg", "logship started",
		"component", "main",
		"version", version.Short(),
		"endpoint", a.cfg.Shipper.IngestURL(),
		"sources", len(a.sources),
		"status_enabled", a.status != nil)
	return nil
}

// pump forwards one source's events to the shipper until the source
// closes its channel.
func (a *app) pump(name string, events <-chan core.LogEvent) {
	defer a.pumps.Done()

	for event := range events {
		a.metrics.SourceLine(name)
		if !a.filters.Apply(event) {
			a.metrics.Filtered()
			continue
		}
		if !a.limiter.Allow(event) {
			a.metrics.RateLimited()
			continue
		}
		a.shipper.Emit(event)
	}
}

// stdinEOF is closed when stdin is the only source and is exhausted.
func (a *app) stdinEOF() <-chan struct{} {
	if a.stdin == nil || len(a.sources) > 1 {
		return nil
	}
	return a.stdin.EOF()
}

// shutdown stops the sources, drains the shipper within timeout and stops
// the status server.
func (a *app) shutdown(timeout time.Duration) error {
	for _, src := range a.sources {
		src.Stop()
	}
	a.pumps.Wait()

	if a.cfg.AnnounceLifecycle {
		a.announce("logship {Version} stopping on {Host}")
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	err := a.shipper.Close(ctx)

	if a.status != nil {
		a.status.Stop()
	}
	return err
}

func (a *app) announce(template string) {
	l, err := a.events.Get()
	if err != nil {
		a.logger.Warn("msg", "Lifecycle event not sent",
			"component", "main",
			"error", err)
		return
	}
	host, _ := os.Hostname()
	l.Info(template, applog.Fields{Properties: map[string]any{
		"Version": version.Short(),
		"Host":    host,
	}})
}

func (a *app) stats() map[string]any {
	sources := make(map[string]any, len(a.sources))
	for name, src := range a.sources {
		sources[name] = src.GetStats().Map()
	}

	ts := a.transmitter.GetStats()
	return map[string]any{
		"shipper": a.shipper.GetStats(),
		"transmitter": map[string]any{
			"total_requests":     ts.TotalRequests,
			"success_requests":   ts.SuccessRequests,
			"retryable_failures": ts.RetryableFailures,
			"permanent_failures": ts.PermanentFailures,
			"bytes_sent":         ts.BytesSent,
			"last_sent":          ts.LastSent,
			"details":            ts.Details,
		},
		"sources":    sources,
		"filters":    a.filters.GetStats(),
		"rate_limit": a.limiter.GetStats(),
	}
}

// initializeLogger sets up the diagnostic logger from configuration
func initializeLogger(cfg *config.Config) error {
	lcfg, err := loggerConfig(cfg)
	if err != nil {
		return err
	}

	logger = log.NewLogger()
	if err := logger.ApplyConfig(lcfg); err != nil {
		return err
	}
	return logger.Start()
}

// loggerConfig maps the logging section onto the log package config.
// Quiet silences everything regardless of the section.
func loggerConfig(cfg *config.Config) (*log.Config, error) {
	lcfg := log.DefaultConfig()
	lcfg.Name = "logship"
	// The log package creates its directory even with files disabled, so
	// console-only modes point it somewhere harmless.
	lcfg.Directory = os.TempDir()
	lcfg.DisableFile = true
	lcfg.EnableConsole = false

	if cfg.Quiet {
		lcfg.Level = 255
		return lcfg, nil
	}

	lc := cfg.Logging
	level, err := parseLogLevel(lc.Level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level: %w", err)
	}
	lcfg.Level = int64(level)

	switch lc.Output {
	case "none":
	case "stdout", "stderr", "split":
		lcfg.EnableConsole = true
		lcfg.ConsoleTarget = lc.Output
	case "file", "both":
		lcfg.DisableFile = false
		lcfg.Directory = lc.Directory
		lcfg.MaxSizeKB = lc.MaxSizeMB * 1000
		lcfg.MaxTotalSizeKB = lc.MaxTotalSizeMB * 1000
		lcfg.RetentionPeriodHrs = lc.RetentionHours
		if lc.Output == "both" {
			lcfg.EnableConsole = true
			lcfg.ConsoleTarget = "stderr"
		}
	default:
		return nil, fmt.Errorf("invalid log output mode: %s", lc.Output)
	}
	return lcfg, lcfg.Validate()
}

// applyFlagOverrides lets command flags win over every config source.
func applyFlagOverrides(cfg *config.Config, fc *FlagConfig) {
	cfg.Quiet = fc.Quiet
	cfg.ShowVersion = fc.ShowVersion
	if cfg.Logging == nil {
		cfg.Logging = config.DefaultLogConfig()
	}
	if fc.LogLevel != "" {
		cfg.Logging.Level = fc.LogLevel
	}
	if fc.LogOutput != "" {
		cfg.Logging.Output = fc.LogOutput
	}
	if fc.LogDir != "" {
		cfg.Logging.Directory = fc.LogDir
	}
}
