package assembler

import (
	"context"
	"os"
	"path/filepath"

	"github.com/sputniklab/sputnik/internal/clangtool"
)

// BuildSymexTarget compiles harnessSrc with the KLEE include path,
// links it against every per-library blob, and writes
// <targetFolder>/<fn>.bc (spec.md §4.H "Symex target").
func BuildSymexTarget(ctx context.Context, drv *clangtool.Driver, harnessSrc string, libBlobs []string, kleeHeaders, targetFolder, fn string) (string, error) {
	if err := os.MkdirAll(targetFolder, 0o755); err != nil {
		return "", err
	}

	harnessIR := filepath.Join(targetFolder, fn+".harness.ll")
	cflags := "-S -emit-llvm -g"
	if kleeHeaders != "" {
		cflags += " -I" + kleeHeaders
	}
	if _, err := drv.CompileFile(ctx, harnessIR, harnessSrc, cflags, ""); err != nil {
		return "", err
	}

	target := filepath.Join(targetFolder, fn+".bc")
	inputs := append([]string{harnessIR}, libBlobs...)
	if _, err := drv.Link(ctx, target, inputs, ""); err != nil {
		return "", err
	}

	return target, nil
}
