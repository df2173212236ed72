package assembler

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/sputniklab/sputnik/internal/clangtool"
	"github.com/sputniklab/sputnik/internal/harness"
)

func TestBuildFuzzingTargetWritesScaffolding(t *testing.T) {
	dir := t.TempDir()
	compiler := fakeScript(t, dir, "clang", `
n=$#
eval src=\${$n}
eval dest=\${$(($n-1))}
: > "$dest"
`)
	aflgcc := fakeScript(t, dir, "afl-gcc", `
n=$#
eval dest=\${2}
: > "$dest"
`)

	drv := &clangtool.Driver{Compiler: compiler}

	harnessSrc := filepath.Join(dir, "harness.c")
	if err := os.WriteFile(harnessSrc, []byte("int main(void) { return 0; }\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	libBlob := filepath.Join(dir, "musl.bc")
	if err := os.WriteFile(libBlob, []byte("; lib\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	target := filepath.Join(dir, "out")

	// PATH must expose afl-gcc for RunRaw("afl-gcc", ...) to resolve.
	t.Setenv("PATH", dir+":"+os.Getenv("PATH"))
	_ = aflgcc

	result, err := BuildFuzzingTarget(context.Background(), drv, harnessSrc, []string{libBlob}, target, "isdigit", []harness.Seed{
		{Name: "c", Bytes: []byte("1\n")},
	})
	if err != nil {
		t.Fatal(err)
	}

	for _, path := range []string{result.Executable, result.RunScript, result.FindingsDir, result.TestcaseDir} {
		if _, err := os.Stat(path); err != nil {
			t.Fatalf("expected %s to exist: %v", path, err)
		}
	}

	seedPath := filepath.Join(result.TestcaseDir, "testcase_c")
	content, err := os.ReadFile(seedPath)
	if err != nil {
		t.Fatal(err)
	}
	if string(content) != "1\n" {
		t.Fatalf("unexpected seed content: %q", content)
	}
}
