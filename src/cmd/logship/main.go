// FILE: logship/src/cmd/logship/main.go
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"logship/src/internal/config"
	"logship/src/internal/version"

	"github.com/lixenwraith/log"
)

var logger *log.Logger

// con carries messages for the operator that cannot go through logger,
// either because it is not set up yet or because it is shutting down.
var con = console{out: os.Stdout, err: os.Stderr}

// console output honors -quiet, except for fatal errors: a shipper that
// exits must say why even when its chatter is silenced.
type console struct {
	quiet bool
	out   io.Writer
	err   io.Writer
}

func (c console) printf(format string, args ...any) {
	if !c.quiet {
		fmt.Fprintf(c.out, format, args...)
	}
}

func (c console) warnf(format string, args ...any) {
	if !c.quiet {
		fmt.Fprintf(c.err, format, args...)
	}
}

func (c console) fatal(code int, format string, args ...any) {
	fmt.Fprintf(c.err, "logship: "+format, args...)
	os.Exit(code)
}

func main() {
	// Parse flags first to get quiet mode early
	flagCfg, rest, err := ParseFlags(os.Args[1:])
	if errors.Is(err, flag.ErrHelp) {
		os.Exit(0)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	con.quiet = flagCfg.Quiet

	if flagCfg.ShowVersion {
		fmt.Println(version.String())
		os.Exit(0)
	}

	if flagCfg.ConfigFile != "" {
		if _, err := os.Stat(flagCfg.ConfigFile); errors.Is(err, os.ErrNotExist) {
			con.fatal(2, "Config file not found: %s\n", flagCfg.ConfigFile)
		}
		os.Setenv("LOGSHIP_CONFIG_FILE", flagCfg.ConfigFile)
	}

	// Load configuration with CLI overrides
	cfg, err := config.LoadWithCLI(rest)
	if err != nil {
		con.fatal(1, "Failed to load config: %v\n", err)
	}
	applyFlagOverrides(cfg, flagCfg)

	if flagCfg.WriteConfig != "" {
		if err := cfg.SaveToFile(flagCfg.WriteConfig); err != nil {
			con.fatal(1, "Failed to write config: %v\n", err)
		}
		con.printf("Configuration written to %s\n", flagCfg.WriteConfig)
		os.Exit(0)
	}

	if err := initializeLogger(cfg); err != nil {
		con.fatal(1, "Failed to initialize logger: %v\n", err)
	}
	defer shutdownLogger()

	logger.Info("msg", "logship starting",
		"component", "main",
		"version", version.String(),
		"config_file", cfg.ConfigFile,
		"log_output", cfg.Logging.Output)

	a, err := bootstrap(cfg, logger)
	if err != nil {
		logger.Error("msg", "Failed to bootstrap",
			"component", "main",
			"error", err)
		shutdownLogger()
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := a.start(); err != nil {
		logger.Error("msg", "Failed to start",
			"component", "main",
			"error", err)
		a.shutdown(time.Second)
		shutdownLogger()
		os.Exit(1)
	}

	if cfg.StatusReportIntervalMS > 0 {
		go statusReporter(ctx, a, time.Duration(cfg.StatusReportIntervalMS)*time.Millisecond)
	}

	sh := NewSignalHandler(a.shipper.Flush, logger)
	defer sh.Stop()

	// Stdin-only runs end when the input is exhausted
	sigCtx, sigCancel := context.WithCancel(ctx)
	if eof := a.stdinEOF(); eof != nil {
		go func() {
			select {
			case <-eof:
				logger.Info("msg", "Stdin exhausted", "component", "main")
				sigCancel()
			case <-sigCtx.Done():
			}
		}()
	}

	if sig := sh.Handle(sigCtx); sig != nil {
		logger.Info("msg", "Shutdown signal received, starting graceful shutdown",
			"component", "main",
			"signal", sig)
	}
	sigCancel()

	timeout := time.Duration(cfg.ShutdownTimeoutMS) * time.Millisecond
	if err := a.shutdown(timeout); err != nil {
		logger.Error("msg", "Shutdown incomplete",
			"component", "main",
			"error", err)
		cancel()
		shutdownLogger()
		os.Exit(1)
	}
	logger.Info("msg", "Shutdown complete", "component", "main")
}

func shutdownLogger() {
	if logger != nil {
		if err := logger.Shutdown(2 * time.Second); err != nil {
			// Best effort - can't log the shutdown error
			con.warnf("Logger shutdown error: %v\n", err)
		}
	}
}
