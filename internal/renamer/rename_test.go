package renamer

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeTemp(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestDetectNamesFunction(t *testing.T) {
	src := writeTemp(t, "in.ll", "define i32 @strcpy(i8* %a, i8* %b) {\nentry:\n  ret i32 0\n}\n")

	mapping, err := DetectNames(src, func(s string) string { return "musl_" + s })
	if err != nil {
		t.Fatal(err)
	}

	if got, ok := mapping["@strcpy"]; !ok || got != "@musl_strcpy" {
		t.Fatalf("unexpected mapping: %+v", mapping)
	}
}

func TestDetectNamesSkipsInternal(t *testing.T) {
	src := writeTemp(t, "in.ll", "define internal void @helper() {\n  ret void\n}\n")

	mapping, err := DetectNames(src, func(s string) string { return "musl_" + s })
	if err != nil {
		t.Fatal(err)
	}

	if len(mapping) != 0 {
		t.Fatalf("expected no entries, got %+v", mapping)
	}
}

func TestDetectNamesGlobalPreservesUnderscore(t *testing.T) {
	src := writeTemp(t, "in.ll", "@__errno = global i32 0\n")

	mapping, err := DetectNames(src, func(s string) string {
		lead, rest := leadingUnderscores(s)
		return lead + "musl" + "_" + rest
	})
	if err != nil {
		t.Fatal(err)
	}

	if got, ok := mapping["@__errno"]; !ok || got != "@__musl_errno" {
		t.Fatalf("unexpected mapping: %+v", mapping)
	}
}

func TestDetectNamesSkipsExternal(t *testing.T) {
	src := writeTemp(t, "in.ll", "@somesym = external global i32\n")

	mapping, err := DetectNames(src, func(s string) string { return "p_" + s })
	if err != nil {
		t.Fatal(err)
	}

	if len(mapping) != 0 {
		t.Fatalf("expected no entries, got %+v", mapping)
	}
}

func TestRenameAndSubstitute(t *testing.T) {
	src := writeTemp(t, "in.ll", "define i32 @strcpy(i8* %a) {\n  call i32 @strcpy(i8* %a)\n  ret i32 0\n}\n")
	dest := filepath.Join(t.TempDir(), "out.ll")

	mapping, err := Rename(dest, src, "musl")
	if err != nil {
		t.Fatal(err)
	}

	if mapping["@strcpy"] != "@musl_strcpy" {
		t.Fatalf("unexpected mapping: %+v", mapping)
	}

	content, err := os.ReadFile(dest)
	if err != nil {
		t.Fatal(err)
	}

	got := string(content)
	if !strings.Contains(got, "@musl_strcpy") {
		t.Fatalf("expected renamed symbol in output, got: %s", got)
	}
	if strings.Contains(got, "@strcpy(") {
		t.Fatalf("expected original symbol to be fully substituted, got: %s", got)
	}
}

func TestRenameIdempotentReRenameDoublesPrefix(t *testing.T) {
	// spec.md §8: re-renaming an already-prefixed IR with the same
	// prefix rewrites defined symbols to @p_p_<rest> — the textual
	// substitution is intentionally naive.
	src := writeTemp(t, "in.ll", "define i32 @p_strcpy() {\n  ret i32 0\n}\n")
	dest := filepath.Join(t.TempDir(), "out.ll")

	mapping, err := Rename(dest, src, "p")
	if err != nil {
		t.Fatal(err)
	}

	if mapping["@p_strcpy"] != "@p_p_strcpy" {
		t.Fatalf("unexpected mapping: %+v", mapping)
	}
}
