package testspec

import (
	"testing"

	"github.com/sputniklab/sputnik/internal/harness"
)

func TestParseFileTwoTestcases(t *testing.T) {
	doc := `
testcase "isdigit" {
    engine "symex"
    array-width 8
}
testcase "strcpy" {
    engine "fuzzing"
    semantic-wrapper "wrappers/strcpy_oracle.c"
}
`
	cases, err := ParseFile(doc)
	if err != nil {
		t.Fatal(err)
	}
	if len(cases) != 2 {
		t.Fatalf("expected 2 test cases, got %d", len(cases))
	}

	if cases[0].Function != "isdigit" || cases[0].Engine != harness.EngineSymex || cases[0].ArrayWidth != 8 {
		t.Fatalf("unexpected first case: %+v", cases[0])
	}

	if cases[1].Function != "strcpy" || cases[1].Engine != harness.EngineFuzzing {
		t.Fatalf("unexpected second case: %+v", cases[1])
	}
	if len(cases[1].SemanticWrappers) != 1 || cases[1].SemanticWrappers[0] != "wrappers/strcpy_oracle.c" {
		t.Fatalf("unexpected semantic wrappers: %+v", cases[1].SemanticWrappers)
	}
}

func TestParseFileRequiresFunctionArgument(t *testing.T) {
	if _, err := ParseFile(`testcase { engine "symex" }`); err == nil {
		t.Fatal("expected error for testcase block missing function name")
	}
}
