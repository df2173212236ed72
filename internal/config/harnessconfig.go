package config

import (
	"encoding/json"
	"os"

	"github.com/sputniklab/sputnik/internal/errorkit"
)

// Verifier selects which cross-library equivalence check the harness
// emits (spec.md §9): the clustering-based "new" verifier, or the
// pairwise "traditional" one kept for compatibility.
type Verifier string

const (
	VerifierNew         Verifier = "new"
	VerifierTraditional Verifier = "traditional"
)

// SymexOptions configures the KLEE-targeted engine variant.
type SymexOptions struct {
	KleeHeaders string `json:"klee_headers"`
}

// FuzzingOptions configures the AFL-targeted engine variant. It is
// intentionally empty at the schema level beyond being a JSON object:
// spec.md leaves its fields open, so unknown keys are preserved raw
// rather than dropped.
type FuzzingOptions struct {
	Raw json.RawMessage `json:"-"`
}

func (f *FuzzingOptions) UnmarshalJSON(data []byte) error {
	f.Raw = append([]byte(nil), data...)
	return nil
}

func (f FuzzingOptions) MarshalJSON() ([]byte, error) {
	if len(f.Raw) == 0 {
		return []byte("{}"), nil
	}
	return f.Raw, nil
}

// HarnessConfig is the on-disk shape of the harness config passed to
// "sputnik harness" (spec.md §6, crafter.py's TestHarness construction
// parameters).
type HarnessConfig struct {
	Libs                 []string       `json:"libs"`
	GeneralMaxArrayWidth int            `json:"general_max_array_width"`
	Wordsize             int            `json:"wordsize"`
	Verifier             Verifier       `json:"verifier"`
	Symex                SymexOptions   `json:"symex"`
	Fuzzing              FuzzingOptions `json:"fuzzing"`
}

// LoadHarnessConfig reads and validates a harness config file.
func LoadHarnessConfig(path string) (HarnessConfig, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return HarnessConfig{}, errorkit.NewConfigError(path, "", err)
	}

	if err := validateAgainstSchema(harnessConfigSchema, raw); err != nil {
		return HarnessConfig{}, errorkit.NewConfigError(path, "", err)
	}

	var cfg HarnessConfig
	if err := json.Unmarshal(raw, &cfg); err != nil {
		return HarnessConfig{}, errorkit.NewConfigError(path, "", err)
	}

	if cfg.Verifier == "" {
		cfg.Verifier = VerifierNew
	}

	return cfg, nil
}
