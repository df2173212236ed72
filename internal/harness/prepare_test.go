package harness

import (
	"context"
	"testing"

	"github.com/sputniklab/sputnik/internal/config"
	"github.com/sputniklab/sputnik/internal/library"
	"github.com/sputniklab/sputnik/internal/signature"
)

func TestResolveSignaturePrefersExplicitOverride(t *testing.T) {
	sig, err := signature.Parse("int isdigit(int c);", 8)
	if err != nil {
		t.Fatal(err)
	}
	tc := TestCase{Function: "isdigit", Signature: &sig}

	got, err := ResolveSignature(context.Background(), tc, 8)
	if err != nil {
		t.Fatal(err)
	}
	if !got.Equal(sig) {
		t.Fatalf("expected explicit signature to be used verbatim, got %+v", got)
	}
}

func newTestLibrary(t *testing.T, name string) *library.Library {
	t.Helper()
	root := t.TempDir()
	if err := config.WriteDefaultLibraryConfig(root, false); err != nil {
		t.Fatal(err)
	}
	lib, err := library.Load(root)
	if err != nil {
		t.Fatal(err)
	}
	lib.Name = name
	return lib
}

func TestResolveEntriesFallsBackToUnrenamedName(t *testing.T) {
	sig, err := signature.Parse("int isdigit(int c);", 8)
	if err != nil {
		t.Fatal(err)
	}

	lib := newTestLibrary(t, "musl")
	lib.State.RenameMap["@isdigit"] = "@musl_isdigit"

	entries, err := ResolveEntries(TestCase{Function: "isdigit"}, sig, []*library.Library{lib}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if entries[0].Symbol != "musl_isdigit" {
		t.Fatalf("unexpected resolved symbol: %s", entries[0].Symbol)
	}

	diet := newTestLibrary(t, "diet")
	entries, err = ResolveEntries(TestCase{Function: "isdigit"}, sig, []*library.Library{diet}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if entries[0].Symbol != "isdigit" {
		t.Fatalf("expected unrenamed fallback, got: %s", entries[0].Symbol)
	}
}

func TestResolveEntriesUsesWrapperEntryWhenSemanticWrapperPresent(t *testing.T) {
	sig, err := signature.Parse("int isdigit(int c);", 8)
	if err != nil {
		t.Fatal(err)
	}

	lib := newTestLibrary(t, "musl")
	lib.State.RenameMap["@lib_entry_isdigit"] = "@musl_lib_entry_isdigit"

	entries, err := ResolveEntries(TestCase{Function: "isdigit"}, sig, []*library.Library{lib}, map[string]bool{"musl": true})
	if err != nil {
		t.Fatal(err)
	}
	if entries[0].Symbol != "musl_lib_entry_isdigit" {
		t.Fatalf("unexpected resolved symbol: %s", entries[0].Symbol)
	}
}

func TestResolveEntriesErrorsOnNoLibraries(t *testing.T) {
	sig, _ := signature.Parse("int isdigit(int c);", 8)
	if _, err := ResolveEntries(TestCase{Function: "isdigit"}, sig, nil, nil); err == nil {
		t.Fatal("expected error for empty library set")
	}
}
