package config

import (
	"os"

	"github.com/pelletier/go-toml/v2"
	"github.com/sputniklab/sputnik/internal/errorkit"
)

// ProjectFileName is the default name looked up in the current
// directory when no explicit path is given on the command line.
const ProjectFileName = "sputnik.toml"

// Project is the top-level aggregator that names the paths to the
// per-library roots and the builder/harness configs, so a CLI
// invocation can refer to one file instead of repeating every path as
// a flag (§10.3).
type Project struct {
	Libraries     []string `toml:"libraries"`
	BuilderConfig string   `toml:"builder_config"`
	HarnessConfig string   `toml:"harness_config"`
	OutputDir     string   `toml:"output_dir"`
}

// LoadProject reads a sputnik.toml aggregator file.
func LoadProject(path string) (Project, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Project{}, errorkit.NewConfigError(path, "", err)
	}

	var p Project
	if err := toml.Unmarshal(raw, &p); err != nil {
		return Project{}, errorkit.NewConfigError(path, "", err)
	}

	if p.OutputDir == "" {
		p.OutputDir = "."
	}

	return p, nil
}

// WriteDefaultProject writes a template sputnik.toml to path, refusing
// to overwrite an existing file unless force is set.
func WriteDefaultProject(path string, force bool) error {
	if _, err := os.Stat(path); err == nil && !force {
		return errorkit.NewConfigError(path, "", os.ErrExist)
	}

	def := Project{
		Libraries:     []string{"./libs/musl", "./libs/diet"},
		BuilderConfig: "./builder.json",
		HarnessConfig: "./harness.json",
		OutputDir:     "./out",
	}

	data, err := toml.Marshal(def)
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0o644)
}
