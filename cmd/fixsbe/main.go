// Command fixsbe converts FIX protocol messages to SBE-encoded bytes (and
// back), and derives a Merkle commitment with per-field inclusion proofs
// over a FIX descriptor's scalar fields.
//
// Usage:
//
//	fixsbe [flags]
//
// Flags:
//
//	--orchestra   Path to an Orchestra XML repository
//	--schema      Path to a pre-compiled SBE XML schema (decode mode only)
//	--message     Target message, by template id or name
//	--separator   FIX field separator: auto, soh, pipe, newline (default: auto)
//	--scale       Decimal scale overrides, e.g. "Price=6,Qty=2"
//	--input       Input file path ('-' or empty reads stdin)
//	--mode        encode, decode, or merkle (default: encode)
//	--config      Path to a config file providing any of the above as key=value
//	--verbosity   Log level 0-5 (default: 3)
//	--metrics     Print a metrics snapshot to stderr on exit
//	--version     Print version and exit
package main

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"

	"github.com/NethermindEth/fix-descriptor/pkg/fix"
	"github.com/NethermindEth/fix-descriptor/pkg/log"
	"github.com/NethermindEth/fix-descriptor/pkg/merkle"
	"github.com/NethermindEth/fix-descriptor/pkg/metrics"
	"github.com/NethermindEth/fix-descriptor/pkg/orchestra"
	"github.com/NethermindEth/fix-descriptor/pkg/sbe"
	"github.com/NethermindEth/fix-descriptor/pkg/sbeschema"
)

var (
	version = "v0.1.0-dev"
	commit  = "unknown"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	cfg, exit, code := parseFlags(args, stderr)
	if exit {
		return code
	}

	logger := log.New(stderr, cfg.Verbosity)
	log.SetDefault(logger)
	logger.Info("fixsbe starting", "version", version, "mode", cfg.Mode, "message", cfg.Message)

	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "err", err)
		return 1
	}

	if err := execute(cfg, stdin, stdout, logger); err != nil {
		logger.Error("operation failed", "err", err)
		return 1
	}

	if cfg.Metrics {
		fmt.Fprintf(stderr, "metrics: %+v\n", metrics.Default.Snapshot())
	}
	return 0
}

func execute(cfg Config, stdin io.Reader, stdout io.Writer, logger *slog.Logger) error {
	sepHint, err := parseSeparatorHint(cfg.Separator)
	if err != nil {
		return err
	}

	switch cfg.Mode {
	case "encode":
		return runEncode(cfg, sepHint, stdin, stdout, logger)
	case "decode":
		return runDecode(cfg, stdin, stdout, logger)
	case "merkle":
		return runMerkle(cfg, sepHint, stdin, stdout, logger)
	default:
		return errUnknownMode
	}
}

func runEncode(cfg Config, sepHint fix.SeparatorHint, stdin io.Reader, stdout io.Writer, logger *slog.Logger) error {
	repo, err := loadOrchestra(cfg.OrchestraPath)
	if err != nil {
		return err
	}
	orchMsg, err := resolveOrchestraMessage(repo, cfg.Message)
	if err != nil {
		return err
	}

	schemaXML, err := sbeschema.CompileToSBE(repo, sbeschema.CompileOptions{ScalingOverrides: cfg.ScalingOverrides})
	if err != nil {
		return err
	}
	schema, err := sbeschema.LoadSchema(bytes.NewReader(schemaXML))
	if err != nil {
		return err
	}

	raw, err := readAll(cfg.InputPath, stdin)
	if err != nil {
		return err
	}
	flat, err := fix.ParseFIX(raw, sepHint)
	if err != nil {
		return err
	}

	desc, err := fix.Nest(flat, repo.GroupSpecs(orchMsg))
	if err != nil {
		return err
	}

	encoded, err := sbe.Encode(schema, orchMsg.ID, desc)
	if err != nil {
		return err
	}
	logger.Info("encoded message", "template_id", orchMsg.ID, "bytes", len(encoded))

	_, err = stdout.Write(encoded)
	return err
}

func runDecode(cfg Config, stdin io.Reader, stdout io.Writer, logger *slog.Logger) error {
	schema, err := resolveSchema(cfg)
	if err != nil {
		return err
	}
	layout, err := resolveMessageLayout(schema, cfg.Message)
	if err != nil {
		return err
	}

	raw, err := readAll(cfg.InputPath, stdin)
	if err != nil {
		return err
	}

	desc, err := sbe.Decode(schema, layout.TemplateID, raw)
	if err != nil {
		return err
	}
	logger.Info("decoded message", "template_id", layout.TemplateID, "tags", desc.Len())

	printDescriptor(stdout, desc, "")
	return nil
}

func runMerkle(cfg Config, sepHint fix.SeparatorHint, stdin io.Reader, stdout io.Writer, logger *slog.Logger) error {
	repo, err := loadOrchestra(cfg.OrchestraPath)
	if err != nil {
		return err
	}
	orchMsg, err := resolveOrchestraMessage(repo, cfg.Message)
	if err != nil {
		return err
	}

	raw, err := readAll(cfg.InputPath, stdin)
	if err != nil {
		return err
	}
	flat, err := fix.ParseFIX(raw, sepHint)
	if err != nil {
		return err
	}

	desc, err := fix.Nest(flat, repo.GroupSpecs(orchMsg))
	if err != nil {
		return err
	}

	leaves, err := merkle.EnumerateLeaves(desc)
	if err != nil {
		return err
	}
	hashes := make([][]byte, len(leaves))
	for i, l := range leaves {
		hashes[i] = l.LeafHash
	}
	tree := merkle.Build(hashes)
	logger.Info("built merkle tree", "leaves", len(leaves), "root", hex.EncodeToString(tree.Root()))

	fmt.Fprintf(stdout, "root=%s\n", hex.EncodeToString(tree.Root()))
	for i, l := range leaves {
		proof, directions, err := tree.Prove(i)
		if err != nil {
			return err
		}
		fmt.Fprintf(stdout, "leaf[%d] path=%v value=%q hash=%s proof_len=%d\n",
			i, l.Path, l.Value, hex.EncodeToString(l.LeafHash), len(proof))
		_ = directions
	}
	return nil
}

func printDescriptor(w io.Writer, desc *fix.Descriptor, indent string) {
	for _, tag := range desc.Tags() {
		node, _ := desc.Get(tag)
		if node.IsGroup() {
			fmt.Fprintf(w, "%s%d: [%d entries]\n", indent, tag, len(node.Group))
			for i, entry := range node.Group {
				fmt.Fprintf(w, "%s  [%d]:\n", indent, i)
				printDescriptor(w, entry, indent+"    ")
			}
			continue
		}
		fmt.Fprintf(w, "%s%d=%s\n", indent, tag, node.Scalar)
	}
}

func loadOrchestra(path string) (*orchestra.Repository, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return orchestra.LoadRepository(f)
}

func resolveSchema(cfg Config) (*sbeschema.Schema, error) {
	if cfg.SchemaPath != "" {
		return sbeschema.LoadSchemaFile(cfg.SchemaPath)
	}
	repo, err := loadOrchestra(cfg.OrchestraPath)
	if err != nil {
		return nil, err
	}
	schemaXML, err := sbeschema.CompileToSBE(repo, sbeschema.CompileOptions{ScalingOverrides: cfg.ScalingOverrides})
	if err != nil {
		return nil, err
	}
	return sbeschema.LoadSchema(bytes.NewReader(schemaXML))
}

func resolveOrchestraMessage(repo *orchestra.Repository, spec string) (*orchestra.Message, error) {
	if id, err := strconv.Atoi(spec); err == nil {
		if m, ok := repo.Messages[id]; ok {
			return m, nil
		}
		return nil, fmt.Errorf("fixsbe: no message with template id %d", id)
	}
	if m, ok := repo.MessagesByName[spec]; ok {
		return m, nil
	}
	return nil, fmt.Errorf("fixsbe: no message named %q", spec)
}

func resolveMessageLayout(schema *sbeschema.Schema, spec string) (*sbeschema.MessageLayout, error) {
	if id, err := strconv.Atoi(spec); err == nil {
		if m, ok := schema.ByTemplateID(id); ok {
			return m, nil
		}
		return nil, fmt.Errorf("fixsbe: no message with template id %d", id)
	}
	if m, ok := schema.ByName(spec); ok {
		return m, nil
	}
	return nil, fmt.Errorf("fixsbe: no message named %q", spec)
}

func parseSeparatorHint(s string) (fix.SeparatorHint, error) {
	switch s {
	case "auto":
		return fix.SeparatorAuto, nil
	case "soh":
		return fix.SeparatorSOH, nil
	case "pipe":
		return fix.SeparatorPipe, nil
	case "newline":
		return fix.SeparatorNewline, nil
	default:
		return fix.SeparatorAuto, errUnknownSeparator
	}
}

func readAll(path string, stdin io.Reader) ([]byte, error) {
	if path == "" || path == "-" {
		return io.ReadAll(stdin)
	}
	return os.ReadFile(path)
}
