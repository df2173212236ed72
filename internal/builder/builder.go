// Package builder orchestrates the toolchain driver, symbol renamer,
// and library descriptor into the full per-library build: incremental
// per-file compile, link, rename, and integrity check (spec.md §4.E).
package builder

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/sputniklab/sputnik/internal/clangtool"
	"github.com/sputniklab/sputnik/internal/errorkit"
	"github.com/sputniklab/sputnik/internal/levellog"
	"github.com/sputniklab/sputnik/internal/library"
	"github.com/sputniklab/sputnik/internal/renamer"
)

var log = levellog.New("builder")

// compileFlags are the fixed flags the reference implementation
// always passes to the per-file compile step, ahead of the library's
// own compiler_flags (spec.md §4.E step 1).
const compileFlags = "-S -emit-llvm -g -fno-builtin"

// Result carries what a build produced, for the caller's own
// reporting (e.g. the CLI's summary line).
type Result struct {
	Stats           clangtool.CollectionStats
	RenameMap       map[string]string
	MissingFromWrap []string
}

// Build runs the full per-library pipeline: pre-compile (incremental
// unless rebuild is set), optional wrapper injection, link, rename,
// and an integrity check against wrapperFuncs (spec.md §4.E).
// wrapperFuncs may be nil to skip the integrity check.
func Build(ctx context.Context, drv *clangtool.Driver, lib *library.Library, wrapperSource string, rebuild bool, wrapperFuncs []string) (Result, error) {
	if err := os.MkdirAll(lib.BuildDir, 0o755); err != nil {
		return Result{}, err
	}

	if rebuild {
		if err := os.RemoveAll(lib.BuildDir); err != nil {
			return Result{}, err
		}
		if err := os.MkdirAll(lib.BuildDir, 0o755); err != nil {
			return Result{}, err
		}
		lib.State.Invalidate()
	} else if err := lib.State.Reload(); err != nil {
		return Result{}, err
	}

	outputs, stats, err := precompile(ctx, drv, lib)
	if err != nil {
		return Result{}, err
	}

	if wrapperSource != "" {
		wrapperIR := filepath.Join(lib.BuildDir, "wrapper.ll")
		if _, err := drv.CompileFile(ctx, wrapperIR, wrapperSource, compileFlags+" "+lib.CompilerFlags, ""); err != nil {
			return Result{}, err
		}
		outputs = append(outputs, wrapperIR)
	}

	if err := clangtool.EnsureDir(lib.TargetBlob); err != nil {
		return Result{}, err
	}
	if _, err := drv.Link(ctx, lib.TargetBlob, outputs, ""); err != nil {
		return Result{}, err
	}

	renameMap, err := renameInPlace(ctx, drv, lib)
	if err != nil {
		return Result{}, err
	}

	var missing []string
	if wrapperFuncs != nil {
		missing = checkIntegrity(lib.Name, renameMap, wrapperFuncs)
	}

	return Result{Stats: stats, RenameMap: renameMap, MissingFromWrap: missing}, nil
}

// precompile computes the incremental work set from lib.Sources(),
// compiles it, and persists the union of old and newly produced
// outputs (spec.md §4.E step 1).
func precompile(ctx context.Context, drv *clangtool.Driver, lib *library.Library) ([]string, clangtool.CollectionStats, error) {
	srcs, err := lib.Sources()
	if err != nil {
		return nil, clangtool.CollectionStats{}, err
	}

	work := make(map[string]string)
	for _, rel := range srcs {
		dest := filepath.Join(lib.BuildDir, strings.TrimSuffix(rel, ".c")+".ll")
		if !lib.State.IncludedFiles[dest] {
			work[filepath.Join(lib.SourceRoot, rel)] = dest
		}
	}

	var stats clangtool.CollectionStats
	var newOutputs []string

	if len(work) > 0 {
		for _, dest := range work {
			if err := clangtool.EnsureDir(dest); err != nil {
				return nil, stats, err
			}
		}
		newOutputs, stats = drv.CompileCollection(ctx, work, compileFlags+" "+lib.CompilerFlags, lib.SourceRoot)
		for _, dest := range newOutputs {
			lib.State.IncludedFiles[dest] = true
		}
	}

	if err := lib.State.FlushIncludedFiles(); err != nil {
		return nil, stats, err
	}

	all := make([]string, 0, len(lib.State.IncludedFiles))
	for dest := range lib.State.IncludedFiles {
		all = append(all, dest)
	}
	sort.Strings(all)

	return all, stats, nil
}

// renameInPlace disassembles lib.TargetBlob, renames every defined
// symbol with lib.Name as the prefix, backs up the original, and
// reassembles the renamed IR over the original target (spec.md §4.E
// step 4).
func renameInPlace(ctx context.Context, drv *clangtool.Driver, lib *library.Library) (map[string]string, error) {
	srcIR := lib.TargetBlob + ".src.ll"
	destIR := lib.TargetBlob + ".renamed.ll"
	defer os.Remove(srcIR)
	defer os.Remove(destIR)

	if _, err := drv.Disassemble(ctx, srcIR, lib.TargetBlob); err != nil {
		return nil, err
	}

	mapping, err := renamer.Rename(destIR, srcIR, lib.Name)
	if err != nil {
		return nil, err
	}

	backup := lib.TargetBlob + ".unrenamed"
	if err := os.Rename(lib.TargetBlob, backup); err != nil {
		return nil, err
	}

	if _, err := drv.Assemble(ctx, lib.TargetBlob, destIR); err != nil {
		return nil, err
	}

	lib.State.RenameMap = mapping
	if err := lib.State.FlushRenameMap(); err != nil {
		return nil, err
	}

	return mapping, nil
}

// checkIntegrity verifies every function's "@name" key is present in
// renameMap, warning (and collecting) each miss (spec.md §4.E step 5:
// "non-fatal — the artifact is still produced").
func checkIntegrity(libName string, renameMap map[string]string, wrapperFuncs []string) []string {
	var missing []string
	for _, fn := range wrapperFuncs {
		if _, ok := renameMap["@"+fn]; !ok {
			missing = append(missing, fn)
			log.Warning("%s: function %q missing from rename map after build", libName, fn)
		}
	}

	if len(missing) > 0 {
		log.Error("%s", (&errorkit.IntegrityError{Library: libName, Missing: missing}).Error())
	}

	return missing
}
