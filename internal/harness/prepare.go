package harness

import (
	"context"
	"fmt"

	"github.com/sputniklab/sputnik/internal/library"
	"github.com/sputniklab/sputnik/internal/signature"
)

// ResolveSignature returns tc.Signature if the TestCase supplied an
// explicit override, otherwise falls back to the man-page lookup
// (spec.md §4.B "Man-page fallback").
func ResolveSignature(ctx context.Context, tc TestCase, defaultArraySize int) (signature.Signature, error) {
	if tc.Signature != nil {
		return *tc.Signature, nil
	}
	return signature.FetchSignature(ctx, tc.Function, defaultArraySize)
}

// ResolveEntries builds one LibEntry per library: the library's
// resolved (renamed) entry symbol for tc.Function — either
// "<prefix>_lib_entry_<fn>" when a semantic wrapper is in play for
// that library, or the renamed real function otherwise (spec.md §4.G
// step 5). A library whose rename map has no entry for the function
// falls back to the unrenamed name, per spec.md §4.D resolve_function.
func ResolveEntries(tc TestCase, sig signature.Signature, libs []*library.Library, semanticWrapper map[string]bool) ([]LibEntry, error) {
	entries := make([]LibEntry, 0, len(libs))

	for _, lib := range libs {
		wanted := tc.Function
		if semanticWrapper[lib.Name] {
			wanted = "lib_entry_" + tc.Function
		}

		resolved, ok := lib.ResolveFunction(wanted)
		if !ok {
			resolved = wanted
		}

		f := sig.Fork(lib.Name + "_" + tc.Function)
		entries = append(entries, LibEntry{
			Name:   lib.Name,
			Symbol: resolved,
			Ret:    f.Ret,
		})
	}

	if len(entries) == 0 {
		return nil, fmt.Errorf("harness: no libraries to compare for function %q", tc.Function)
	}

	return entries, nil
}
