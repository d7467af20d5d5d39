package config

import "strings"

// validLogLevels lists the accepted log level strings.
var validLogLevels = map[string]bool{
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

// ValidateConfig checks that all configuration values are within acceptable
// ranges and returns the first error encountered, or nil if valid.
func ValidateConfig(cfg Config) error {
	if cfg.DataDir == "" {
		return ErrEmptyDataDir
	}

	if cfg.Network != "mainnet" && cfg.Network != "testnet" && cfg.Network != "regtest" {
		return ErrInvalidNetwork
	}

	if !validLogLevels[strings.ToLower(cfg.LogLevel)] {
		return ErrInvalidLogLevel
	}

	if cfg.OverpaymentMode != OverpaymentForward && cfg.OverpaymentMode != OverpaymentReject {
		return ErrInvalidOverpaymentMode
	}

	if cfg.TransferTimeoutSecs <= 0 {
		return ErrInvalidTransferTimeout
	}

	if cfg.CatalogDepth < -1 {
		return ErrInvalidCatalogDepth
	}

	return nil
}
