package clangtool

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

// fakeScript writes a tiny shell script standing in for a toolchain
// binary so tests don't depend on a real LLVM install being present.
func fakeScript(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+body), 0o755); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestCompileFileSuccess(t *testing.T) {
	dir := t.TempDir()
	compiler := fakeScript(t, dir, "clang", "exit 0\n")

	d := &Driver{Compiler: compiler}
	warning, err := d.CompileFile(context.Background(), "/tmp/out.ll", "/tmp/in.c", "-S -emit-llvm", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if warning != "" {
		t.Fatalf("expected no warning, got %q", warning)
	}
}

func TestCompileFileWarning(t *testing.T) {
	dir := t.TempDir()
	compiler := fakeScript(t, dir, "clang", "echo 'implicit declaration' >&2\nexit 0\n")

	d := &Driver{Compiler: compiler}
	warning, err := d.CompileFile(context.Background(), "/tmp/out.ll", "/tmp/in.c", "", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if warning == "" {
		t.Fatal("expected a warning string for zero-exit-with-stderr")
	}
}

func TestCompileFileFailure(t *testing.T) {
	dir := t.TempDir()
	compiler := fakeScript(t, dir, "clang", "echo 'undefined symbol' >&2\nexit 1\n")

	d := &Driver{Compiler: compiler}
	_, err := d.CompileFile(context.Background(), "/tmp/out.ll", "/tmp/in.c", "", "")
	if err == nil {
		t.Fatal("expected a CompileError")
	}
}

func TestCompileCollectionContinuesOnFailure(t *testing.T) {
	dir := t.TempDir()
	// Fails for any src containing "bad", succeeds otherwise.
	compiler := fakeScript(t, dir, "clang", `
for a in "$@"; do
  case "$a" in
    *bad*) exit 1 ;;
  esac
done
exit 0
`)

	d := &Driver{Compiler: compiler}

	srcs := map[string]string{
		"/src/good1.c": "/build/good1.ll",
		"/src/bad.c":   "/build/bad.ll",
		"/src/good2.c": "/build/good2.ll",
	}

	outputs, stats := d.CompileCollection(context.Background(), srcs, "", "")

	if stats.Compiled != 2 || stats.Failed != 1 {
		t.Fatalf("unexpected stats: %+v", stats)
	}
	if len(outputs) != 2 {
		t.Fatalf("expected 2 outputs, got %v", outputs)
	}
}

func TestLinkFailure(t *testing.T) {
	dir := t.TempDir()
	linker := fakeScript(t, dir, "llvm-link", "echo 'duplicate symbol' >&2\nexit 1\n")

	d := &Driver{Linker: linker}
	_, err := d.Link(context.Background(), "/tmp/out.bc", []string{"/tmp/a.ll", "/tmp/b.ll"}, "")
	if err == nil {
		t.Fatal("expected a LinkError")
	}
}

func TestWithBase(t *testing.T) {
	d := New().WithBase("/opt/llvm/bin")
	if d.Compiler != "/opt/llvm/bin/clang" {
		t.Fatalf("unexpected compiler path: %s", d.Compiler)
	}
	if d.Linker != "/opt/llvm/bin/llvm-link" {
		t.Fatalf("unexpected linker path: %s", d.Linker)
	}
}
