package config

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/sputniklab/sputnik/internal/errorkit"
)

// LibraryConfigName is the filename library.Load expects inside a
// library root (spec.md §4.D: library.py's Library.CONFIGNAME).
const LibraryConfigName = "config.json"

// LibraryConfig is the on-disk shape of a per-library config.json
// (spec.md §6). It is supplemented (§13) with ConfigVersion, carried
// from the original but not interpreted.
type LibraryConfig struct {
	ConfigVersion string   `json:"config_version"`
	Name          string   `json:"name"`
	Directory     string   `json:"directory"`
	CompilerFlags string   `json:"compiler_flags"`
	Traversals    []string `json:"traversals"`
	Target        string   `json:"target"`
}

// WriteDefaultLibraryConfig writes the template config.json into path,
// refusing to overwrite an existing file unless force is set (spec.md
// §4.D write_default, library.py's write_default_config).
func WriteDefaultLibraryConfig(path string, force bool) error {
	configFile := filepath.Join(path, LibraryConfigName)

	if _, err := os.Stat(configFile); err == nil && !force {
		return errorkit.NewConfigError(configFile, "", os.ErrExist)
	}

	def := LibraryConfig{
		ConfigVersion: "0.0.1",
		Name:          "<insert name of library>",
		Directory:     "<insert current version directory>",
		CompilerFlags: "<insert compiler flags (like include flags)>",
		Traversals:    []string{},
		Target:        "./here_name_of_target.bc",
	}

	data, err := json.MarshalIndent(def, "", "    ")
	if err != nil {
		return err
	}

	return os.WriteFile(configFile, data, 0o644)
}

// LoadLibraryConfig reads and validates <libpath>/config.json.
func LoadLibraryConfig(libpath string) (LibraryConfig, error) {
	configFile := filepath.Join(libpath, LibraryConfigName)

	raw, err := os.ReadFile(configFile)
	if err != nil {
		return LibraryConfig{}, errorkit.NewConfigError(configFile, "", err)
	}

	if err := validateAgainstSchema(libraryConfigSchema, raw); err != nil {
		return LibraryConfig{}, errorkit.NewConfigError(configFile, "", err)
	}

	var cfg LibraryConfig
	if err := json.Unmarshal(raw, &cfg); err != nil {
		return LibraryConfig{}, errorkit.NewConfigError(configFile, "", err)
	}

	return cfg, nil
}
