package config

import "errors"

var (
	// ErrInvalidNetwork indicates the network name is not recognized.
	ErrInvalidNetwork = errors.New("config: invalid network (must be \"mainnet\", \"testnet\", or \"regtest\")")

	// ErrInvalidLogLevel indicates the log level is not recognized.
	ErrInvalidLogLevel = errors.New("config: invalid log level (must be \"debug\", \"info\", \"warn\", or \"error\")")

	// ErrEmptyDataDir indicates the data directory path is empty.
	ErrEmptyDataDir = errors.New("config: data directory must not be empty")

	// ErrInvalidOverpaymentMode indicates the overpayment mode is not recognized.
	ErrInvalidOverpaymentMode = errors.New("config: invalid overpayment mode (must be \"forward\" or \"reject\")")

	// ErrInvalidTransferTimeout indicates the transfer timeout is not positive.
	ErrInvalidTransferTimeout = errors.New("config: transfer timeout must be positive")

	// ErrInvalidCatalogDepth indicates the catalog depth is below -1.
	ErrInvalidCatalogDepth = errors.New("config: catalog depth must be -1 (any) or non-negative")

	// ErrConfigNotFound indicates the configuration file does not exist.
	ErrConfigNotFound = errors.New("config: configuration file not found")

	// ErrInvalidConfigLine indicates a line in the config file is malformed.
	ErrInvalidConfigLine = errors.New("config: invalid configuration line")
)
