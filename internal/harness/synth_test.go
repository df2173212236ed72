package harness

import (
	"strings"
	"testing"

	"github.com/sputniklab/sputnik/internal/signature"
)

func makeLibs(sig signature.Signature, prefixes ...string) []LibEntry {
	libs := make([]LibEntry, len(prefixes))
	for i, p := range prefixes {
		f := sig.Fork(p + "_isdigit")
		libs[i] = LibEntry{Name: p, Symbol: p + "_isdigit", Ret: f.Ret}
	}
	return libs
}

func TestRenderSymexTwoLibsIncludesVerifierAndKlee(t *testing.T) {
	sig, err := signature.Parse("int isdigit(int c);", 8)
	if err != nil {
		t.Fatal(err)
	}

	tc := TestCase{Function: "isdigit", Engine: EngineSymex, ArrayWidth: 8}
	s := New(tc, sig, makeLibs(sig, "musl", "diet"), VerifierNew)

	out, err := s.Render()
	if err != nil {
		t.Fatal(err)
	}

	for _, want := range []string{
		"#include <klee/klee.h>",
		"libs_identifier[2]",
		"void verifier(void);",
		"klee_make_symbolic(&c, sizeof(c), \"c\");",
		"musl_isdigit(c);",
		"diet_isdigit(c);",
		"void verifier() {",
		"klee_report_error",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected output to contain %q, got:\n%s", want, out)
		}
	}
}

func TestRenderFuzzingSingleLibOmitsVerifier(t *testing.T) {
	sig, err := signature.Parse("int isdigit(int c);", 8)
	if err != nil {
		t.Fatal(err)
	}

	tc := TestCase{Function: "isdigit", Engine: EngineFuzzing, ArrayWidth: 8}
	s := New(tc, sig, makeLibs(sig, "musl"), VerifierNew)

	out, err := s.Render()
	if err != nil {
		t.Fatal(err)
	}

	if strings.Contains(out, "void verifier() {") {
		t.Fatalf("expected no verifier for a single library, got:\n%s", out)
	}
	if !strings.Contains(out, "scanf(\"%d\", &c);") {
		t.Fatalf("expected scanf input for int arg, got:\n%s", out)
	}
	if len(s.Seeds) != 1 {
		t.Fatalf("expected exactly the default corpus, got %+v", s.Seeds)
	}
	if string(s.Seeds["default"]) != "1\n" {
		t.Fatalf("expected the default corpus to hold the scalar seed line, got %q", s.Seeds["default"])
	}
}

func TestRenderFuzzingCharPointerAccumulatesOneCompleteSeedLine(t *testing.T) {
	sig, err := signature.Parse("int atoi(const char *nptr);", 4)
	if err != nil {
		t.Fatal(err)
	}

	tc := TestCase{Function: "atoi", Engine: EngineFuzzing, ArrayWidth: 4}
	s := New(tc, sig, makeLibs(sig, "musl"), VerifierNew)

	if _, err := s.Render(); err != nil {
		t.Fatal(err)
	}

	if got := string(s.Seeds["default"]); got != "AAAA\n" {
		t.Fatalf("expected default corpus %q, got %q", "AAAA\n", got)
	}
}

func TestRenderVoidPointerGetsArrayStorage(t *testing.T) {
	sig, err := signature.Parse("void *memcpy(void *dest, void *src, unsigned long n);", 8)
	if err != nil {
		t.Fatal(err)
	}

	tc := TestCase{Function: "memcpy", Engine: EngineSymex, ArrayWidth: 8}
	s := New(tc, sig, makeLibs(sig, "musl"), VerifierNew)

	out, err := s.Render()
	if err != nil {
		t.Fatal(err)
	}

	if !strings.Contains(out, "dest[8];") {
		t.Fatalf("expected stack array storage for void* dest, got:\n%s", out)
	}
}

func TestUnsupportedFuzzingTypeFails(t *testing.T) {
	sig, err := signature.Parse("int weird(float f);", 8)
	if err != nil {
		t.Fatal(err)
	}

	tc := TestCase{Function: "weird", Engine: EngineFuzzing, ArrayWidth: 8}
	s := New(tc, sig, makeLibs(sig, "musl"), VerifierNew)

	if _, err := s.Render(); err == nil {
		t.Fatal("expected render to fail for unsupported fuzzing input type")
	}
}

func TestTraditionalVerifierAllPairs(t *testing.T) {
	out := RenderVerifier(VerifierTraditional, []string{"musl", "diet", "newlib"})
	for _, want := range []string{
		"lib_eval(0, 1)",
		"lib_eval(0, 2)",
		"lib_eval(1, 2)",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected traditional verifier to check %q, got:\n%s", want, out)
		}
	}
}
