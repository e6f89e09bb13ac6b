package config

import (
	"os"
	"path/filepath"
	"testing"
)

type testConfig struct {
	Input       string   `name:"input" required:"true" help:"Input path"`
	Output      string   `name:"output" default:"out.pod5" help:"Output path"`
	BatchSize   int      `name:"batch-size" default:"1000" help:"Rows per batch"`
	JSON        bool     `name:"json" help:"Emit JSON"`
	LogFilter   []string `name:"log-filter" default:"convert,inspect" help:"Log categories"`
	unexported  string
	Unspecified int
}

func TestLoadDefaultsAndFlags(t *testing.T) {
	var cfg testConfig
	err := Load(&cfg, []string{"--input", "reads.sig", "--batch-size", "250", "--json", "true"})
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Input != "reads.sig" {
		t.Errorf("Input = %q, want reads.sig", cfg.Input)
	}
	if cfg.Output != "out.pod5" {
		t.Errorf("Output default = %q, want out.pod5", cfg.Output)
	}
	if cfg.BatchSize != 250 {
		t.Errorf("BatchSize = %d, want 250", cfg.BatchSize)
	}
	if !cfg.JSON {
		t.Error("JSON flag not set")
	}
	if len(cfg.LogFilter) != 2 || cfg.LogFilter[0] != "convert" {
		t.Errorf("LogFilter default = %v", cfg.LogFilter)
	}
}

func TestLoadRequired(t *testing.T) {
	var cfg testConfig
	if err := Load(&cfg, nil); err == nil {
		t.Fatal("expected error for missing required option")
	}
}

func TestLoadINIFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "pod5.ini")
	ini := `# conversion settings
[convert]
input = "reads.sig"
batch-size = 64
log-filter = convert, error
unknown-key = ignored
`
	if err := os.WriteFile(path, []byte(ini), 0o644); err != nil {
		t.Fatal(err)
	}

	var cfg testConfig
	err := Load(&cfg, []string{"--config", path, "--batch-size", "128"})
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Input != "reads.sig" {
		t.Errorf("Input = %q, want reads.sig", cfg.Input)
	}
	// Flags override the INI file.
	if cfg.BatchSize != 128 {
		t.Errorf("BatchSize = %d, want 128", cfg.BatchSize)
	}
	if len(cfg.LogFilter) != 2 || cfg.LogFilter[1] != "error" {
		t.Errorf("LogFilter = %v", cfg.LogFilter)
	}
}

func TestLoadBadValue(t *testing.T) {
	var cfg testConfig
	if err := Load(&cfg, []string{"--input", "x", "--batch-size", "lots"}); err == nil {
		t.Fatal("expected error for non-integer value")
	}
}

func TestLoadNonStruct(t *testing.T) {
	var n int
	if err := Load(&n, nil); err == nil {
		t.Fatal("expected error for non-struct config")
	}
}
