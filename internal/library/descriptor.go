// Package library loads a per-library config, enumerates its C
// sources, and tracks the build artifacts and rename map produced for
// it (spec.md §4.D).
package library

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/sputniklab/sputnik/internal/config"
	"github.com/sputniklab/sputnik/internal/errorkit"
)

// Library is the loaded, path-normalized form of a per-library
// config.json, with its Build state attached (spec.md §3 "Library
// descriptor").
type Library struct {
	Name          string
	SourceRoot    string
	BuildDir      string
	TargetBlob    string
	CompilerFlags string
	Traversals    []string

	RenameMapPath string
	State         *BuildState
}

// WriteDefault delegates to config.WriteDefaultLibraryConfig, keeping
// the "write a template config.json" operation on the Library type a
// caller would expect (spec.md §4.D write_default).
func WriteDefault(path string, force bool) error {
	return config.WriteDefaultLibraryConfig(path, force)
}

// Load reads <path>/config.json, normalizes directory, and derives the
// build directory, target path, and rename-map path (spec.md §4.D
// load). The Build state handle is attached but not eagerly loaded
// from disk; call State.Reload to populate it.
func Load(path string) (*Library, error) {
	cfg, err := config.LoadLibraryConfig(path)
	if err != nil {
		return nil, err
	}

	for _, t := range cfg.Traversals {
		if strings.Contains(t, "**") {
			return nil, errorkit.NewConfigError(path, "traversals", fmt.Errorf("recursive pattern %q is not allowed", t))
		}
	}

	directory := strings.TrimRight(cfg.Directory, "/")
	abs, err := filepath.Abs(directory)
	if err != nil {
		return nil, errorkit.NewConfigError(path, "", err)
	}

	buildDir := abs + "-build"
	target := filepath.Join(buildDir, cfg.Target)
	renameMapPath := filepath.Join(buildDir, "rename_mapping.json")

	lib := &Library{
		Name:          cfg.Name,
		SourceRoot:    abs,
		BuildDir:      buildDir,
		TargetBlob:    target,
		CompilerFlags: cfg.CompilerFlags,
		Traversals:    cfg.Traversals,
		RenameMapPath: renameMapPath,
		State:         NewBuildState(buildDir),
	}

	return lib, nil
}

// Sources yields, for each traversal entry, either the entry itself
// (when it names a single .c file) or every .c file directly under
// <SourceRoot>/<entry> (non-recursive by design, per spec.md §4.D:
// "recursion is explicitly rejected to avoid pulling in vendored or
// test sources"). Paths are returned relative to SourceRoot, sorted
// for deterministic iteration order.
//
// An entry may also carry its own doublestar glob metacharacters:
// a directory pattern (e.g. "vendored/*/posix") contributes the .c
// files directly inside each matched directory, and a pattern ending
// in ".c" (e.g. "src/ctype/isa*.c") is matched as a file pattern.
// Each "*" matches within one path segment; "**" entries are rejected
// by Load.
func (l *Library) Sources() ([]string, error) {
	fsys := os.DirFS(l.SourceRoot)
	var out []string

	for _, entry := range l.Traversals {
		isCFile := strings.HasSuffix(entry, ".c")
		if isCFile && !strings.ContainsAny(entry, "*?[") {
			out = append(out, entry)
			continue
		}

		pattern := filepath.ToSlash(entry)
		if !isCFile {
			pattern = filepath.ToSlash(filepath.Join(entry, "*.c"))
		}
		matches, err := doublestar.Glob(fsys, pattern)
		if err != nil {
			return nil, err
		}

		for _, m := range matches {
			out = append(out, filepath.FromSlash(m))
		}
	}

	sort.Strings(out)
	return out, nil
}

// ResolveFunction consults the rename map and returns the renamed
// symbol, without its leading "@" (spec.md §4.D resolve_function). If
// the function was never lowered to a defined symbol (e.g. it was a
// macro), ok is false and callers should fall back to the unrenamed
// name.
func (l *Library) ResolveFunction(name string) (renamed string, ok bool) {
	if l.State == nil {
		return "", false
	}
	v, ok := l.State.RenameMap["@"+name]
	if !ok {
		return "", false
	}
	return strings.TrimPrefix(v, "@"), true
}
