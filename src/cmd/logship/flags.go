// FILE: logship/src/cmd/logship/flags.go
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	"logship/src/internal/config"

	"github.com/lixenwraith/log"
)

// FlagConfig holds the command's own flags. Every other argument is
// handed to the config loader (--section.key=value).
type FlagConfig struct {
	ConfigFile  string
	WriteConfig string
	ShowVersion bool
	Quiet       bool
	LogLevel    string
	LogOutput   string
	LogDir      string
}

// Flags that take no value
var boolFlags = map[string]bool{
	"version": true,
	"quiet":   true,
	"help":    true,
	"h":       true,
}

// Flags owned by the command rather than the config loader
var commandFlags = map[string]bool{
	"config":       true,
	"write-config": true,
	"version":      true,
	"quiet":        true,
	"log-level":    true,
	"log-output":   true,
	"log-dir":      true,
	"help":         true,
	"h":            true,
}

func newFlagSet(fc *FlagConfig, errOut io.Writer) *flag.FlagSet {
	fs := flag.NewFlagSet("logship", flag.ContinueOnError)
	fs.SetOutput(errOut)

	fs.StringVar(&fc.ConfigFile, "config", "", "Config file path")
	fs.StringVar(&fc.WriteConfig, "write-config", "", "Write the resolved configuration to this path and exit")
	fs.BoolVar(&fc.ShowVersion, "version", false, "Show version information")
	fs.BoolVar(&fc.Quiet, "quiet", false, "Suppress all console output")
	fs.StringVar(&fc.LogLevel, "log-level", "", "Log level: debug, info, warn, error (overrides config)")
	fs.StringVar(&fc.LogOutput, "log-output", "", "Log output: stderr, stdout, split, file, both, none (overrides config)")
	fs.StringVar(&fc.LogDir, "log-dir", "", "Log directory (when using file output)")
	fs.Usage = func() { customUsage(errOut) }
	return fs
}

func customUsage(w io.Writer) {
	fmt.Fprintf(w, "logship - ship log lines to a Seq-compatible ingestion endpoint\n\n")
	fmt.Fprintf(w, "Usage: logship [options] [--section.key=value ...]\n\n")

	fmt.Fprintf(w, "General:\n")
	fmt.Fprintf(w, "  -config string\n\tConfig file path\n")
	fmt.Fprintf(w, "  -write-config string\n\tWrite the resolved configuration as TOML and exit\n")
	fmt.Fprintf(w, "  -version\n\tShow version information\n")
	fmt.Fprintf(w, "  -quiet\n\tSuppress all console output\n")

	fmt.Fprintf(w, "\nLogging:\n")
	fmt.Fprintf(w, "  -log-output string\n\tLog output: stderr, stdout, split, file, both, none (overrides config)\n")
	fmt.Fprintf(w, "  -log-level string\n\tLog level: debug, info, warn, error (overrides config)\n")
	fmt.Fprintf(w, "  -log-dir string\n\tLog directory (when using file output)\n")

	fmt.Fprintf(w, "\nExamples:\n")
	fmt.Fprintf(w, "  # Ship the output of an application\n")
	fmt.Fprintf(w, "  myapp 2>&1 | logship --shipper.endpoint=http://seq:5341 --shipper.api_key=KEY\n\n")
	fmt.Fprintf(w, "  # Listen for newline-delimited JSON on TCP and expose metrics\n")
	fmt.Fprintf(w, "  logship --sources.stdin.enabled=false --sources.tcp.enabled=true --status.enabled=true\n\n")

	fmt.Fprintf(w, "Environment Variables:\n")
	fmt.Fprintf(w, "  LOGSHIP_CONFIG_FILE              Config file path\n")
	fmt.Fprintf(w, "  LOGSHIP_CONFIG_DIR               Config directory\n")
	fmt.Fprintf(w, "  LOGSHIP_<SECTION>_<KEY>          Any config key, e.g. LOGSHIP_SHIPPER_ENDPOINT\n")
}

// splitArgs separates the command's flags from config loader arguments.
func splitArgs(args []string) (own, rest []string) {
	for i := 0; i < len(args); i++ {
		arg := args[i]
		if !strings.HasPrefix(arg, "-") || arg == "-" || arg == "--" {
			rest = append(rest, arg)
			continue
		}

		name := strings.TrimLeft(arg, "-")
		hasValue := false
		if idx := strings.IndexByte(name, '='); idx >= 0 {
			name = name[:idx]
			hasValue = true
		}

		if !commandFlags[name] {
			rest = append(rest, arg)
			continue
		}

		own = append(own, arg)
		if !hasValue && !boolFlags[name] && i+1 < len(args) {
			i++
			own = append(own, args[i])
		}
	}
	return own, rest
}

// ParseFlags parses the command's flags from args and returns the
// remaining config loader arguments.
func ParseFlags(args []string) (*FlagConfig, []string, error) {
	own, rest := splitArgs(args)

	fc := &FlagConfig{}
	fs := newFlagSet(fc, os.Stderr)
	if err := fs.Parse(own); err != nil {
		return nil, nil, err
	}

	if fc.LogOutput != "" {
		if !slices.Contains(config.LogOutputs, fc.LogOutput) {
			return nil, nil, fmt.Errorf("invalid log-output: %s (valid: %s)", fc.LogOutput, strings.Join(config.LogOutputs, ", "))
		}
	}

	if fc.LogLevel != "" {
		if _, err := parseLogLevel(fc.LogLevel); err != nil {
			return nil, nil, fmt.Errorf("invalid log-level: %s (valid: debug, info, warn, error)", fc.LogLevel)
		}
	}

	return fc, rest, nil
}

func parseLogLevel(level string) (int, error) {
	switch strings.ToLower(level) {
	case "debug":
		return int(log.LevelDebug), nil
	case "info":
		return int(log.LevelInfo), nil
	case "warn", "warning":
		return int(log.LevelWarn), nil
	case "error":
		return int(log.LevelError), nil
	default:
		return 0, fmt.Errorf("unknown log level: %s", level)
	}
}
