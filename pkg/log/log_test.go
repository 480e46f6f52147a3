package log

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"
)

func TestNew_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, 2) // warn

	l.Debug("suppressed")
	l.Info("suppressed")
	if buf.Len() != 0 {
		t.Fatalf("below-level logs were emitted: %s", buf.String())
	}

	l.Warn("emitted", "tag", 55)
	var entry map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("unmarshal: %v (raw: %s)", err, buf.String())
	}
	if entry["msg"] != "emitted" {
		t.Fatalf("msg = %v, want %q", entry["msg"], "emitted")
	}
	if entry["tag"] != float64(55) {
		t.Fatalf("tag = %v, want 55", entry["tag"])
	}
}

func TestModule_TagsChild(t *testing.T) {
	var buf bytes.Buffer
	prev := Default()
	SetDefault(New(&buf, 5))
	defer SetDefault(prev)

	Module("sbe").Info("encoded")

	var entry map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("unmarshal: %v (raw: %s)", err, buf.String())
	}
	if entry["module"] != "sbe" {
		t.Fatalf("module = %v, want %q", entry["module"], "sbe")
	}
}

func TestLevelFromVerbosity(t *testing.T) {
	cases := []struct {
		verbosity int
		want      slog.Level
	}{
		{0, slog.LevelError},
		{1, slog.LevelError},
		{2, slog.LevelWarn},
		{3, slog.LevelInfo},
		{4, slog.LevelDebug},
		{5, slog.LevelDebug},
	}
	for _, c := range cases {
		if got := LevelFromVerbosity(c.verbosity); got != c.want {
			t.Fatalf("LevelFromVerbosity(%d) = %v, want %v", c.verbosity, got, c.want)
		}
	}
}

func TestSetDefault_IgnoresNil(t *testing.T) {
	before := Default()
	SetDefault(nil)
	if Default() != before {
		t.Fatal("SetDefault(nil) replaced the default logger")
	}
}
