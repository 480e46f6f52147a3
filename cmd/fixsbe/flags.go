package main

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// parseFlags parses args into a Config, applying (in increasing priority)
// built-in defaults, an optional --config file, then the explicit flags
// present on the command line. It returns (cfg, true, code) when the
// program should exit immediately (--help, --version, or a parse error)
// without running any operation.
func parseFlags(args []string, stderr io.Writer) (Config, bool, int) {
	fs := flag.NewFlagSet("fixsbe", flag.ContinueOnError)
	fs.SetOutput(stderr)

	cfg := DefaultConfig()
	var configPath string
	var showVersion bool
	var scaleFlag string

	fs.StringVar(&configPath, "config", "", "path to a config file (key=value per line)")
	fs.StringVar(&cfg.OrchestraPath, "orchestra", "", "path to an Orchestra XML repository")
	fs.StringVar(&cfg.SchemaPath, "schema", "", "path to a pre-compiled SBE XML schema (decode mode only)")
	fs.StringVar(&cfg.Message, "message", "", "target message, by template id or name")
	fs.StringVar(&cfg.Separator, "separator", cfg.Separator, "FIX field separator: auto, soh, pipe, newline")
	fs.StringVar(&cfg.InputPath, "input", "", "input file path ('-' or empty reads stdin)")
	fs.StringVar(&cfg.Mode, "mode", cfg.Mode, "encode, decode, or merkle")
	fs.IntVar(&cfg.Verbosity, "verbosity", cfg.Verbosity, "log level 0-5")
	fs.BoolVar(&cfg.Metrics, "metrics", cfg.Metrics, "print a metrics snapshot to stderr on exit")
	fs.BoolVar(&showVersion, "version", false, "print version and exit")
	fs.StringVar(&scaleFlag, "scale", "", "decimal scale overrides, e.g. \"Price=6,Qty=2\"")

	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return cfg, true, 0
		}
		return cfg, true, 2
	}

	if showVersion {
		fmt.Fprintf(stderr, "fixsbe %s (%s)\n", version, commit)
		return cfg, true, 0
	}

	if scaleFlag != "" {
		overrides, err := parseScaleFlag(scaleFlag)
		if err != nil {
			fmt.Fprintf(stderr, "fixsbe: %v\n", err)
			return cfg, true, 2
		}
		cfg.ScalingOverrides = overrides
	}

	if configPath != "" {
		if err := applyConfigFile(&cfg, configPath); err != nil {
			fmt.Fprintf(stderr, "fixsbe: %v\n", err)
			return cfg, true, 1
		}
		// Re-parse the explicit flags so a flag passed alongside --config
		// overrides whatever the file set, matching the documented
		// priority (file < flags).
		if err := fs.Parse(args); err != nil {
			return cfg, true, 2
		}
	}

	if scaleFlag != "" {
		overrides, err := parseScaleFlag(scaleFlag)
		if err != nil {
			fmt.Fprintf(stderr, "fixsbe: %v\n", err)
			return cfg, true, 2
		}
		cfg.ScalingOverrides = overrides
	}

	return cfg, false, 0
}

// parseScaleFlag parses a "Type=exponent,Type=exponent" flag value into the
// map CompileOptions.ScalingOverrides expects.
func parseScaleFlag(s string) (map[string]int, error) {
	out := make(map[string]int)
	for _, pair := range strings.Split(s, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		name, value, ok := strings.Cut(pair, "=")
		if !ok {
			return nil, fmt.Errorf("malformed --scale entry %q, want Type=exponent", pair)
		}
		n, err := strconv.Atoi(strings.TrimSpace(value))
		if err != nil {
			return nil, fmt.Errorf("malformed --scale exponent in %q: %w", pair, err)
		}
		out[strings.TrimSpace(name)] = n
	}
	return out, nil
}

// applyConfigFile reads a simple "key = value" config file, one setting per
// line, '#' starting a comment, and merges recognized keys into cfg. Not
// worth a full TOML parser for a half-dozen scalar fields.
func applyConfigFile(cfg *Config, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("reading config file: %w", err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		value = strings.Trim(strings.TrimSpace(value), `"`)

		switch key {
		case "schema_path":
			cfg.SchemaPath = value
		case "orchestra_path":
			cfg.OrchestraPath = value
		case "message_id_or_name", "message":
			cfg.Message = value
		case "separator_hint", "separator":
			cfg.Separator = value
		case "input":
			cfg.InputPath = value
		case "mode":
			cfg.Mode = value
		case "verbosity":
			if n, err := strconv.Atoi(value); err == nil {
				cfg.Verbosity = n
			}
		case "metrics":
			if b, err := strconv.ParseBool(value); err == nil {
				cfg.Metrics = b
			}
		case "scaling_overrides", "scale":
			if overrides, err := parseScaleFlag(value); err == nil {
				cfg.ScalingOverrides = overrides
			}
		}
	}
	return scanner.Err()
}
