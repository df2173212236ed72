// Package clangtool is the toolchain driver (spec.md §4.A): a thin
// interface over the external clang / llvm-link / llvm-as / llvm-dis
// binaries. It never inspects or interprets compiler output beyond
// exit status and stderr, matching compiler.py.
package clangtool

import (
	"bytes"
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"

	"github.com/sputniklab/sputnik/internal/debugtrace"
	"github.com/sputniklab/sputnik/internal/errorkit"
)

// Driver invokes the external LLVM toolchain. The binary names/paths
// are configurable so a caller can point at a specific LLVM build
// (grounded on compiler.py's TOOLS base-path constant) or rely on PATH.
type Driver struct {
	Compiler     string
	Linker       string
	Assembler    string
	Disassembler string
}

// New returns a Driver resolving every tool from PATH.
func New() *Driver {
	return &Driver{
		Compiler:     "clang",
		Linker:       "llvm-link",
		Assembler:    "llvm-as",
		Disassembler: "llvm-dis",
	}
}

// WithBase returns a copy of d with every tool resolved under base,
// e.g. base = "/opt/llvm/build/Release+Asserts/bin".
func (d *Driver) WithBase(base string) *Driver {
	join := func(name string) string {
		if name == "" {
			return name
		}
		if filepath.IsAbs(name) {
			return name
		}
		return filepath.Join(base, name)
	}

	return &Driver{
		Compiler:     join(d.Compiler),
		Linker:       join(d.Linker),
		Assembler:    join(d.Assembler),
		Disassembler: join(d.Disassembler),
	}
}

func runCommand(ctx context.Context, name string, args []string, cwd string) (string, error) {
	debugtrace.Tracef("exec %s %s", name, strings.Join(args, " "))

	cmd := exec.CommandContext(ctx, name, args...)
	if cwd != "" {
		cmd.Dir = cwd
	}

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	err := cmd.Run()

	warning := strings.TrimSpace(stderr.String())

	if err != nil {
		debugtrace.Tracef("exec %s failed: %v: %s", name, err, warning)
		return "", &runError{stderr: warning, underlying: err}
	}

	if warning == "" {
		return "", nil
	}

	return warning, nil
}

type runError struct {
	stderr     string
	underlying error
}

func (e *runError) Error() string { return e.stderr }

// CompileFile invokes the compiler to produce dest from src with the
// given flags and working directory. It returns a non-empty warning
// string iff the compiler exited zero but wrote to stderr.
func (d *Driver) CompileFile(ctx context.Context, dest, src, cflags, cwd string) (string, error) {
	args := append(splitFlags(cflags), "-o", dest, src)

	warning, err := runCommand(ctx, d.Compiler, args, cwd)
	if err != nil {
		if re, ok := err.(*runError); ok {
			return "", errorkit.NewCompileError(src, re.stderr)
		}
		return "", err
	}

	return warning, nil
}

// Link invokes the linker against inputs, writing dest. extraFlags are
// inserted before the input file list (e.g. "-S" to keep textual IR).
func (d *Driver) Link(ctx context.Context, dest string, inputs []string, extraFlags string) (string, error) {
	args := append(splitFlags(extraFlags), "-o", dest)
	args = append(args, inputs...)

	warning, err := runCommand(ctx, d.Linker, args, "")
	if err != nil {
		if re, ok := err.(*runError); ok {
			return "", errorkit.NewLinkError(dest, re.stderr)
		}
		return "", err
	}

	return warning, nil
}

// Disassemble converts bitcode src into textual IR dest.
func (d *Driver) Disassemble(ctx context.Context, dest, src string) (string, error) {
	warning, err := runCommand(ctx, d.Disassembler, []string{"-o", dest, src}, "")
	if err != nil {
		if re, ok := err.(*runError); ok {
			return "", errorkit.NewCompileError(src, re.stderr)
		}
		return "", err
	}
	return warning, nil
}

// Assemble converts textual IR src into bitcode dest.
func (d *Driver) Assemble(ctx context.Context, dest, src string) (string, error) {
	warning, err := runCommand(ctx, d.Assembler, []string{"-o", dest, src}, "")
	if err != nil {
		if re, ok := err.(*runError); ok {
			return "", errorkit.NewCompileError(src, re.stderr)
		}
		return "", err
	}
	return warning, nil
}

// RunRaw runs an arbitrary external command (used by the fuzzing target
// assembler for its clang -fPIC object compiles and for afl-gcc, which
// spec.md §6 lists as a thin external collaborator rather than a
// driver-modeled tool; afl-fuzz itself is only written into run.sh).
func (d *Driver) RunRaw(ctx context.Context, name string, args []string, cwd string) (string, error) {
	warning, err := runCommand(ctx, name, args, cwd)
	if err != nil {
		if re, ok := err.(*runError); ok {
			return "", errorkit.NewLinkError(name, re.stderr)
		}
		return "", err
	}
	return warning, nil
}

// CollectionStats summarizes a compile_collection batch (spec.md §4.A).
type CollectionStats struct {
	Compiled int
	Skipped  int
	Failed   int
	Warning  int
}

// CompileCollection compiles each src->dest pair in srcs, continuing on
// per-file failure (spec.md §5: "per-file local" failure propagation).
// Iteration follows the sorted source-path order so results are
// deterministic given the same map.
func (d *Driver) CompileCollection(ctx context.Context, srcs map[string]string, cflags, cwd string) ([]string, CollectionStats) {
	var stats CollectionStats

	keys := make([]string, 0, len(srcs))
	for src := range srcs {
		keys = append(keys, src)
	}
	sort.Strings(keys)

	var outputs []string

	for _, src := range keys {
		dest := srcs[src]

		warning, err := d.CompileFile(ctx, dest, src, cflags, cwd)
		if err != nil {
			stats.Failed++
			continue
		}

		if warning != "" {
			stats.Warning++
		}

		stats.Compiled++
		outputs = append(outputs, dest)
	}

	return outputs, stats
}

func splitFlags(flags string) []string {
	flags = strings.TrimSpace(flags)
	if flags == "" {
		return nil
	}
	return strings.Fields(flags)
}

// EnsureDir creates the parent directory of path if missing (used by
// callers writing into fresh build-directory subtrees).
func EnsureDir(path string) error {
	return os.MkdirAll(filepath.Dir(path), 0o755)
}
