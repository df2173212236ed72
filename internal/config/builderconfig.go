package config

import (
	"encoding/json"
	"os"
	"sort"

	"github.com/sputniklab/sputnik/internal/errorkit"
)

// BuilderConfig is the on-disk shape of the builder config passed to
// "sputnik prebuild" (spec.md §6): the set of libraries to compare and
// the functions to wrap in each (builder.py's config handling).
type BuilderConfig struct {
	Libs           []string            `json:"libs"`
	Wrappers       string              `json:"wrappers"`
	WrappersHeader string              `json:"wrappers_header"`
	Functions      map[string][]string `json:"functions"`
}

// LoadBuilderConfig reads and validates a builder config file.
func LoadBuilderConfig(path string) (BuilderConfig, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return BuilderConfig{}, errorkit.NewConfigError(path, "", err)
	}

	if err := validateAgainstSchema(builderConfigSchema, raw); err != nil {
		return BuilderConfig{}, errorkit.NewConfigError(path, "", err)
	}

	var cfg BuilderConfig
	if err := json.Unmarshal(raw, &cfg); err != nil {
		return BuilderConfig{}, errorkit.NewConfigError(path, "", err)
	}

	if cfg.Wrappers == "" {
		cfg.Wrappers = "wrappers.c"
	}
	if cfg.WrappersHeader == "" {
		cfg.WrappersHeader = "wrappers.h"
	}

	return cfg, nil
}

// FunctionsFor returns the function names listed for lib in the
// builder config, in file order, or nil when lib has no entry. Lists
// of other libraries are not merged in.
func (c BuilderConfig) FunctionsFor(lib string) []string {
	return c.Functions[lib]
}

// AllFunctionNames returns the sorted set of every function name
// referenced anywhere in the builder config, across all libraries.
func (c BuilderConfig) AllFunctionNames() []string {
	seen := make(map[string]bool)
	var out []string
	for _, fns := range c.Functions {
		for _, fn := range fns {
			if !seen[fn] {
				seen[fn] = true
				out = append(out, fn)
			}
		}
	}
	sort.Strings(out)
	return out
}
