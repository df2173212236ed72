package assembler

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/sputniklab/sputnik/internal/clangtool"
	"github.com/sputniklab/sputnik/internal/harness"
)

// FuzzingTarget describes what BuildFuzzingTarget produced, so the
// caller can report paths back to the user.
type FuzzingTarget struct {
	Executable  string
	RunScript   string
	FindingsDir string
	TestcaseDir string
}

// BuildFuzzingTarget compiles every link input to a PIC object, links
// them with afl-gcc into an AFL-instrumented executable, and writes
// the run.sh / findings / testcases scaffolding (spec.md §4.H
// "Fuzzing target").
func BuildFuzzingTarget(ctx context.Context, drv *clangtool.Driver, harnessSrc string, libBlobs []string, targetFolder, fn string, seeds []harness.Seed) (FuzzingTarget, error) {
	if err := os.MkdirAll(targetFolder, 0o755); err != nil {
		return FuzzingTarget{}, err
	}

	var objs []string
	for i, blob := range libBlobs {
		obj := filepath.Join(targetFolder, fmt.Sprintf("%s.lib%d.o", fn, i))
		if _, err := drv.RunRaw(ctx, drv.Compiler, []string{"-fPIC", "-c", "-o", obj, blob}, ""); err != nil {
			return FuzzingTarget{}, err
		}
		objs = append(objs, obj)
	}

	executable := filepath.Join(targetFolder, fn+".afl")
	args := append([]string{"-o", executable, harnessSrc}, objs...)
	if _, err := drv.RunRaw(ctx, "afl-gcc", args, ""); err != nil {
		return FuzzingTarget{}, err
	}

	findingsDir := filepath.Join(targetFolder, "findings")
	testcaseDir := filepath.Join(targetFolder, "testcases")
	if err := ensureDirAll(findingsDir); err != nil {
		return FuzzingTarget{}, err
	}
	if err := ensureDirAll(testcaseDir); err != nil {
		return FuzzingTarget{}, err
	}

	for _, seed := range seeds {
		path := filepath.Join(testcaseDir, "testcase_"+seed.Name)
		if err := os.WriteFile(path, seed.Bytes, 0o644); err != nil {
			return FuzzingTarget{}, err
		}
	}

	runScript := filepath.Join(targetFolder, "run.sh")
	script := fmt.Sprintf("#!/bin/sh\nafl-fuzz -i testcases -o findings -- ./%s\n", fn+".afl")
	if err := os.WriteFile(runScript, []byte(script), 0o755); err != nil {
		return FuzzingTarget{}, err
	}

	return FuzzingTarget{
		Executable:  executable,
		RunScript:   runScript,
		FindingsDir: findingsDir,
		TestcaseDir: testcaseDir,
	}, nil
}
