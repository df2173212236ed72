package signature

import (
	"bytes"
	"context"
	"os/exec"
	"regexp"
	"strings"

	"github.com/sputniklab/sputnik/internal/errorkit"
)

// manDeclPattern extracts the first C declaration for fname from raw
// "man -P cat 3 <fn>" output, matching language.py's grep/cut pipeline
// but applied in-process instead of shelling out to grep/cut.
func manDeclPattern(fname string) *regexp.Regexp {
	return regexp.MustCompile(`\w(?:\w*\s)*[*]?` + regexp.QuoteMeta(fname) + `\([^)]*\)`)
}

// FetchRaw executes "man -P cat 3 <fname>" and extracts the first C
// declaration matching fname, collapsing a multi-line signature's
// whitespace into a single line (spec.md §4.B "Man-page fallback").
//
// This is a typed, returned error rather than the original's uncaught
// regex-match exception (spec.md §9 Open Question).
func FetchRaw(ctx context.Context, fname string) (string, error) {
	cmd := exec.CommandContext(ctx, "man", "-P", "cat", "3", fname)

	var out bytes.Buffer
	cmd.Stdout = &out
	// man exits non-zero on "no manual entry" but may still have
	// written partial content; we only care whether the regex matched.
	_ = cmd.Run()

	collapsed := strings.Join(strings.Fields(out.String()), " ")

	m := manDeclPattern(fname).FindString(collapsed)
	if m == "" {
		return "", &errorkit.ManPageError{Function: fname, Raw: collapsed}
	}

	return m + ";", nil
}

// FetchSignature fetches the signature of fname via the man-page
// fallback and parses it with ParseWithFallback.
func FetchSignature(ctx context.Context, fname string, defaultArraySize int) (Signature, error) {
	line, err := FetchRaw(ctx, fname)
	if err != nil {
		return Signature{}, err
	}
	return ParseWithFallback(line, defaultArraySize)
}
