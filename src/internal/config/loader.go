// FILE: logship/src/internal/config/loader.go
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	lconfig "github.com/lixenwraith/config"
)

const envPrefix = "LOGSHIP_"

func defaults() *Config {
	return &Config{
		Shipper: DefaultShipperConfig(),
		Logging: DefaultLogConfig(),
		Sources: SourcesConfig{
			Stdin: StdinSourceOptions{
				Enabled:    true,
				BufferSize: 1000,
			},
			TCP: TCPSourceOptions{
				Enabled:      false,
				Host:         "127.0.0.1",
				Port:         5170,
				BufferSize:   1000,
				MaxLineBytes: 1024 * 1024,
			},
		},
		RateLimit: &RateLimitConfig{
			Policy: "drop",
		},
		Status: StatusConfig{
			Enabled:     false,
			Host:        "127.0.0.1",
			Port:        9110,
			StatusPath:  "/status",
			MetricsPath: "/metrics",
		},
		ShutdownTimeoutMS:      30000,
		StatusReportIntervalMS: 30000,
	}
}

// LoadWithCLI merges defaults, the config file, LOGSHIP_* environment
// variables and --section.key=value arguments, in increasing priority.
func LoadWithCLI(cliArgs []string) (*Config, error) {
	configPath := GetConfigPath()

	cfg, err := lconfig.NewBuilder().
		WithDefaults(defaults()).
		WithEnvPrefix(envPrefix).
		WithFile(configPath).
		WithArgs(cliArgs).
		WithEnvTransform(customEnvTransform).
		WithSources(
			lconfig.SourceCLI,
			lconfig.SourceEnv,
			lconfig.SourceFile,
			lconfig.SourceDefault,
		).
		Build()

	if err != nil {
		if !strings.Contains(err.Error(), "not found") {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
	}

	finalConfig := &Config{}
	if err := cfg.Scan(finalConfig); err != nil {
		return nil, fmt.Errorf("failed to scan config: %w", err)
	}
	finalConfig.ConfigFile = configPath

	if err := validateConfig(finalConfig); err != nil {
		return nil, err
	}
	return finalConfig, nil
}

// SaveToFile writes the resolved configuration as TOML. The file holds the
// API key, so it is left readable by the owner only.
func (c *Config) SaveToFile(path string) error {
	if path == "" {
		return fmt.Errorf("cannot save config: path is empty")
	}
	if err := validateConfig(c); err != nil {
		return fmt.Errorf("refusing to save invalid config: %w", err)
	}

	// Only the default source is enabled so an existing file at path or
	// LOGSHIP_* variables cannot leak into what is written.
	lcfg, err := lconfig.NewBuilder().
		WithTarget(c).
		WithSources(lconfig.SourceDefault).
		Build()
	if err != nil {
		return fmt.Errorf("failed to snapshot config: %w", err)
	}
	if err := lcfg.Save(path); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}
	return os.Chmod(path, 0o600)
}

func customEnvTransform(path string) string {
	env := strings.ReplaceAll(path, ".", "_")
	env = strings.ToUpper(env)
	env = envPrefix + env
	return env
}

// GetConfigPath resolves the config file from LOGSHIP_CONFIG_FILE and
// LOGSHIP_CONFIG_DIR, falling back to ~/.config/logship.toml.
func GetConfigPath() string {
	if configFile := os.Getenv("LOGSHIP_CONFIG_FILE"); configFile != "" {
		if filepath.IsAbs(configFile) {
			return configFile
		}
		if configDir := os.Getenv("LOGSHIP_CONFIG_DIR"); configDir != "" {
			return filepath.Join(configDir, configFile)
		}
		return configFile
	}

	if configDir := os.Getenv("LOGSHIP_CONFIG_DIR"); configDir != "" {
		return filepath.Join(configDir, "logship.toml")
	}

	if homeDir, err := os.UserHomeDir(); err == nil {
		return filepath.Join(homeDir, ".config", "logship.toml")
	}

	return "logship.toml"
}
