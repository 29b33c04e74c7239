package main

import (
	"os"
	"path/filepath"
	"testing"

	segmo "github.com/gogpu/segmo"
)

func writeTempConfig(t *testing.T, yaml string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(yaml), 0o644); err != nil {
		t.Fatalf("write temp config: %v", err)
	}
	return path
}

func TestLoadConfigAppliesDefaults(t *testing.T) {
	path := writeTempConfig(t, "server:\n  port: 9090\n")

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if cfg.Server.Port != 9090 {
		t.Errorf("Server.Port = %d, want 9090 (from file)", cfg.Server.Port)
	}
	if cfg.Background.Kind != "blur" {
		t.Errorf("Background.Kind = %q, want default %q", cfg.Background.Kind, "blur")
	}
	if cfg.Model.Classes != 1 {
		t.Errorf("Model.Classes = %d, want default 1", cfg.Model.Classes)
	}
}

func TestLoadConfigEnvOverride(t *testing.T) {
	path := writeTempConfig(t, "server:\n  port: 9090\n")
	t.Setenv("SEGMO_SERVER_PORT", "7000")

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if cfg.Server.Port != 7000 {
		t.Errorf("Server.Port = %d, want 7000 (env override)", cfg.Server.Port)
	}
}

func TestLoadConfigMissingFileErrors(t *testing.T) {
	if _, err := LoadConfig("/nonexistent/path/config.yaml"); err == nil {
		t.Fatal("LoadConfig() with a missing file = nil error, want a failure")
	}
}

func TestQualityLabelMapping(t *testing.T) {
	cases := map[string]segmo.QualityLabel{
		"ultra":  segmo.QualityUltra,
		"high":   segmo.QualityHigh,
		"medium": segmo.QualityMedium,
		"low":    segmo.QualityLow,
		"bogus":  segmo.QualityHigh,
	}
	for label, want := range cases {
		if got := qualityLabel(label); got != want {
			t.Errorf("qualityLabel(%q) = %v, want %v", label, got, want)
		}
	}
}

func TestBackgroundColorParsesHex(t *testing.T) {
	if got := backgroundColor("FF00AA"); got != 0xFF00AA {
		t.Errorf("backgroundColor(%q) = %#x, want %#x", "FF00AA", got, 0xFF00AA)
	}
	if got := backgroundColor("not-hex"); got != 0x00FF00 {
		t.Errorf("backgroundColor(invalid) = %#x, want fallback %#x", got, 0x00FF00)
	}
}
