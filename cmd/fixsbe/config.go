package main

import "errors"

// Config holds the resolved command-line configuration: which schema to
// use (compiled fresh from an Orchestra repository, or loaded directly),
// which message to operate on, how to split the input, and which
// operation to run.
type Config struct {
	OrchestraPath string
	SchemaPath    string
	Message       string
	Separator     string
	InputPath     string
	Mode          string
	Verbosity     int
	Metrics       bool

	// ScalingOverrides overrides the default decimal scale for a FIX
	// datatype name, parsed from a "Type=exponent,Type=exponent" flag
	// value, e.g. "Price=6,Qty=2".
	ScalingOverrides map[string]int
}

// DefaultConfig returns a Config with sensible defaults: separator
// auto-detection, encode mode, and info-level verbosity.
func DefaultConfig() Config {
	return Config{
		Separator: "auto",
		Mode:      "encode",
		Verbosity: 3,
	}
}

var (
	errMissingSchemaSource = errors.New("fixsbe: one of --orchestra or --schema is required")
	errMissingOrchestra    = errors.New("fixsbe: --orchestra is required for this mode (group shape is not recoverable from a compiled SBE schema)")
	errMissingMessage      = errors.New("fixsbe: --message is required")
	errUnknownMode         = errors.New("fixsbe: --mode must be one of encode, decode, merkle")
	errUnknownSeparator    = errors.New("fixsbe: --separator must be one of auto, soh, pipe, newline")
)

// Validate checks that the configuration is internally consistent before
// any work is attempted.
func (c Config) Validate() error {
	if c.OrchestraPath == "" && c.SchemaPath == "" {
		return errMissingSchemaSource
	}
	if (c.Mode == "encode" || c.Mode == "merkle") && c.OrchestraPath == "" {
		return errMissingOrchestra
	}
	if c.Message == "" {
		return errMissingMessage
	}
	switch c.Mode {
	case "encode", "decode", "merkle":
	default:
		return errUnknownMode
	}
	switch c.Separator {
	case "auto", "soh", "pipe", "newline":
	default:
		return errUnknownSeparator
	}
	return nil
}
