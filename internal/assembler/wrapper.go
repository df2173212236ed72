// Package assembler is the target assembler (spec.md §4.H): it
// compiles a synthesized harness, links it against the renamed
// per-library blobs and optional semantic wrappers, and emits either
// a KLEE-ready bitcode file or an AFL-instrumented executable plus a
// seed-corpus toolchain.
package assembler

import (
	"context"
	"os"
	"path/filepath"

	"github.com/sputniklab/sputnik/internal/clangtool"
	"github.com/sputniklab/sputnik/internal/harness"
	"github.com/sputniklab/sputnik/internal/library"
	"github.com/sputniklab/sputnik/internal/renamer"
	"github.com/sputniklab/sputnik/internal/signature"
)

// PrepareSemanticWrapper compiles wrapperSrc with lib's cflags, links
// it into one IR blob, applies lib's existing rename map textually,
// then re-runs rename with the library prefix so newly introduced
// global helpers are also namespaced (spec.md §4.H "Semantic
// wrappers"). It returns the updated LibEntry pointing at the renamed
// wrapper's "lib_entry_<fn>" symbol (with its return variable renamed
// to "ret_<lib>"), plus the path of the renamed wrapper blob: the
// wrapper only calls into lib's real (renamed) entry point by name, so
// the caller must still link lib.TargetBlob alongside this blob.
func PrepareSemanticWrapper(ctx context.Context, drv *clangtool.Driver, lib *library.Library, fn string, retType signature.Variable, wrapperSrc, scratchDir string) (harness.LibEntry, string, error) {
	wrapperIR := filepath.Join(scratchDir, lib.Name+"-wrapper.ll")
	if err := clangtool.EnsureDir(wrapperIR); err != nil {
		return harness.LibEntry{}, "", err
	}
	if _, err := drv.CompileFile(ctx, wrapperIR, wrapperSrc, "-S -emit-llvm -g -fno-builtin "+lib.CompilerFlags, ""); err != nil {
		return harness.LibEntry{}, "", err
	}

	wrapperBlob := filepath.Join(scratchDir, lib.Name+"-wrapper.bc")
	if _, err := drv.Link(ctx, wrapperBlob, []string{wrapperIR}, ""); err != nil {
		return harness.LibEntry{}, "", err
	}

	existingMapIR := filepath.Join(scratchDir, lib.Name+"-wrapper.existing.ll")
	if _, err := drv.Disassemble(ctx, existingMapIR, wrapperBlob); err != nil {
		return harness.LibEntry{}, "", err
	}

	appliedIR := filepath.Join(scratchDir, lib.Name+"-wrapper.applied.ll")
	if err := renamer.Substitute(appliedIR, existingMapIR, lib.State.RenameMap); err != nil {
		return harness.LibEntry{}, "", err
	}

	renamedIR := filepath.Join(scratchDir, lib.Name+"-wrapper.renamed.ll")
	newMapping, err := renamer.Rename(renamedIR, appliedIR, lib.Name)
	if err != nil {
		return harness.LibEntry{}, "", err
	}

	renamedBlob := filepath.Join(scratchDir, lib.Name+"-wrapper.final.bc")
	if _, err := drv.Assemble(ctx, renamedBlob, renamedIR); err != nil {
		return harness.LibEntry{}, "", err
	}

	for k, v := range newMapping {
		lib.State.RenameMap[k] = v
	}

	entrySym, ok := lib.ResolveFunction("lib_entry_" + fn)
	if !ok {
		entrySym = "lib_entry_" + fn
	}

	ret := retType
	ret.Rename("ret_" + lib.Name)

	return harness.LibEntry{Name: lib.Name, Symbol: entrySym, Ret: ret}, renamedBlob, nil
}

// ensureDirAll is a thin convenience wrapper used by the fuzzing
// target assembler to create run-time directories (findings/,
// testcases/) ahead of writing into them.
func ensureDirAll(path string) error {
	return os.MkdirAll(path, 0o755)
}
