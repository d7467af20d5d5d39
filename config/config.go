// Package config holds the settlement engine's configuration: where
// durable state lives, which network payouts go to, and the documented
// settlement policy knobs.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
)

// Overpayment mode names accepted in configuration.
const (
	OverpaymentForward = "forward" // forward the full offered amount
	OverpaymentReject  = "reject"  // reject offers above the required amount
)

// Config holds all engine configuration values.
type Config struct {
	DataDir  string // Directory for bbolt databases
	Network  string // "mainnet", "testnet", or "regtest"
	LogLevel string // "debug", "info", "warn", or "error"
	LogFile  string // Empty = stderr

	OverpaymentMode     string // "forward" (default) or "reject"
	TransferTimeoutSecs int    // Bound on the funds transfer step
	CatalogDepth        int    // Fixed proof depth; -1 accepts any depth
}

// DefaultDataDir returns the default location for durable state.
func DefaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return filepath.Join(home, ".coursemarket")
}

// ConfigPath returns the config file path inside dataDir.
func ConfigPath(dataDir string) string {
	return filepath.Join(dataDir, "config")
}

// DefaultConfig returns the configuration defaults.
func DefaultConfig() Config {
	return Config{
		DataDir:             DefaultDataDir(),
		Network:             "mainnet",
		LogLevel:            "info",
		LogFile:             "",
		OverpaymentMode:     OverpaymentForward,
		TransferTimeoutSecs: 30,
		CatalogDepth:        -1,
	}
}

// SaveConfig writes the configuration to path as key = value lines.
// Parent directories are created if they do not exist.
func SaveConfig(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("config: create directory: %w", err)
	}

	entries := map[string]string{
		"datadir":         cfg.DataDir,
		"network":         cfg.Network,
		"loglevel":        cfg.LogLevel,
		"logfile":         cfg.LogFile,
		"overpayment":     cfg.OverpaymentMode,
		"transfertimeout": strconv.Itoa(cfg.TransferTimeoutSecs),
		"catalogdepth":    strconv.Itoa(cfg.CatalogDepth),
	}

	keys := make([]string, 0, len(entries))
	for k := range entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for _, k := range keys {
		fmt.Fprintf(&b, "%s = %s\n", k, entries[k])
	}

	if err := os.WriteFile(path, []byte(b.String()), 0600); err != nil {
		return fmt.Errorf("config: write file: %w", err)
	}
	return nil
}

// LoadConfig reads the configuration from path. Missing keys retain
// their defaults; unknown keys are ignored for forward compatibility.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, fmt.Errorf("%w: %s", ErrConfigNotFound, path)
		}
		return cfg, fmt.Errorf("config: read file: %w", err)
	}

	for lineNo, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		key, value, found := strings.Cut(line, "=")
		if !found {
			return cfg, fmt.Errorf("%w: line %d: %q", ErrInvalidConfigLine, lineNo+1, line)
		}
		key = strings.ToLower(strings.TrimSpace(key))
		value = strings.TrimSpace(value)

		switch key {
		case "datadir":
			cfg.DataDir = value
		case "network":
			cfg.Network = value
		case "loglevel":
			cfg.LogLevel = value
		case "logfile":
			cfg.LogFile = value
		case "overpayment":
			cfg.OverpaymentMode = value
		case "transfertimeout":
			n, convErr := strconv.Atoi(value)
			if convErr != nil {
				return cfg, fmt.Errorf("%w: line %d: transfertimeout %q", ErrInvalidConfigLine, lineNo+1, value)
			}
			cfg.TransferTimeoutSecs = n
		case "catalogdepth":
			n, convErr := strconv.Atoi(value)
			if convErr != nil {
				return cfg, fmt.Errorf("%w: line %d: catalogdepth %q", ErrInvalidConfigLine, lineNo+1, value)
			}
			cfg.CatalogDepth = n
		}
	}

	return cfg, nil
}
