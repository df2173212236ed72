// Package harness synthesizes the C translation unit that declares
// inputs, asserts preconditions, invokes each library's entry point,
// and verifies cross-library equivalence (spec.md §4.G).
package harness

import (
	"github.com/sputniklab/sputnik/internal/signature"
)

// Engine selects which downstream tool the generated harness targets
// (spec.md §3 TestCase descriptor). Sputnik.py's original dispatches
// by composing a method name from a string ("self.engine_wrapper")
// and calling getattr; spec.md §9's Design Note replaces that with
// explicit comparisons against the named Engine constants below, so
// no method name is composed at runtime.
type Engine string

const (
	EngineSymex   Engine = "symex"
	EngineFuzzing Engine = "fuzzing"
)

// Seed is one named fuzzing seed-corpus entry: the complete stdin
// stream a fuzzer should feed the harness for this corpus (spec.md §3
// "testcases mapping" — name -> seed bytes).
type Seed struct {
	Name  string
	Bytes []byte
}

// defaultSeedCorpus is the corpus every TestCase starts with
// (crafter.py's `self.testcases_fuzzing = {'default': ''}`).
const defaultSeedCorpus = "default"

// TestCase is the user-facing extension contract (spec.md §3, §6):
// the function under test, an optional explicit signature overriding
// man-page lookup, semantic wrappers, the target engine, and array
// width. Configure is the "configure()-equivalent hook" spec.md
// describes — called once synthesis has resolved a signature, letting
// a caller add assumptions or seed data before main() is emitted;
// LibEval is replaced through LibEvalOverride instead.
type TestCase struct {
	Function         string
	Signature        *signature.Signature
	SemanticWrappers []string
	Engine           Engine
	ArrayWidth       int

	// LibEvalOverride, when set, replaces the default scalar-equality
	// lib_eval body (spec.md §4.G step 8: "Overridable by test
	// subclasses, e.g. an array-comparison variant").
	LibEvalOverride func(s Synth) string

	// Configure is invoked once the synthesizer has a resolved
	// signature and argument cache, letting a caller append
	// assumptions or seed data before main() is rendered.
	Configure func(s *Synth)
}

// DefaultArrayWidth is used when a TestCase does not set ArrayWidth.
const DefaultArrayWidth = 8
