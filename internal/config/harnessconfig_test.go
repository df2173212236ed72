package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadHarnessConfigDefaultsVerifier(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "harness.json")

	doc := `{
		"libs": ["musl", "diet"],
		"general_max_array_width": 8,
		"wordsize": 64
	}`
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadHarnessConfig(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Verifier != VerifierNew {
		t.Fatalf("expected default verifier %q, got %q", VerifierNew, cfg.Verifier)
	}
}

func TestLoadHarnessConfigRejectsBadVerifier(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "harness.json")

	doc := `{
		"libs": ["musl"],
		"general_max_array_width": 8,
		"wordsize": 64,
		"verifier": "bogus"
	}`
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := LoadHarnessConfig(path); err == nil {
		t.Fatal("expected schema validation error for unknown verifier")
	}
}
