package harness

import (
	"testing"

	"github.com/sputniklab/sputnik/internal/signature"
)

func TestDefaultAssumptionZeroWidthUsesIndexZero(t *testing.T) {
	v := signature.Variable{Type: "char", Name: "s", PtrDepth: 1, ArraySize: 8}
	got, ok := DefaultAssumption(v, 0)
	if !ok || got != "s[0] == '\\0'" {
		t.Fatalf("unexpected assumption: %q ok=%v", got, ok)
	}
}

func TestDefaultAssumptionPositiveWidthUsesLastIndex(t *testing.T) {
	v := signature.Variable{Type: "char", Name: "s", PtrDepth: 1, ArraySize: 8}
	got, ok := DefaultAssumption(v, 8)
	if !ok || got != "s[7] == '\\0'" {
		t.Fatalf("unexpected assumption: %q ok=%v", got, ok)
	}
}

func TestDefaultAssumptionSkipsNonCharPointer(t *testing.T) {
	v := signature.Variable{Type: "int", Name: "n", PtrDepth: 0}
	if _, ok := DefaultAssumption(v, 8); ok {
		t.Fatal("expected no assumption for a non-pointer argument")
	}
}

func TestFuzzingInputWintTSpecialCase(t *testing.T) {
	v := signature.Variable{Type: "wint_t", Name: "wc"}
	code, seed, err := FuzzingInput(v)
	if err != nil {
		t.Fatal(err)
	}
	if code != "read(0, &wc, 4);" {
		t.Fatalf("unexpected code: %q", code)
	}
	if len(seed) != 2 {
		t.Fatalf("expected a two-byte seed, got %v", seed)
	}
}

func TestFuzzingInputCharPointerSeedMatchesArraySize(t *testing.T) {
	v := signature.Variable{Type: "char", Name: "s", PtrDepth: 1, ArraySize: 4}
	_, seed, err := FuzzingInput(v)
	if err != nil {
		t.Fatal(err)
	}
	if string(seed) != "AAAA\n" {
		t.Fatalf("expected a 4-byte run of 'A' plus newline, got %q", seed)
	}
}

func TestFuzzingInputUnsupportedTypeErrors(t *testing.T) {
	v := signature.Variable{Type: "double", Name: "d"}
	if _, _, err := FuzzingInput(v); err == nil {
		t.Fatal("expected an error for an unsupported fuzzing input type")
	}
}
