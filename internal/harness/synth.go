package harness

import (
	"fmt"
	"sort"
	"strings"

	"github.com/sputniklab/sputnik/internal/signature"
)

// LibEntry names one library's resolved entry point for the function
// under test (spec.md §4.G step 5): either the renamed real function,
// or — when a semantic wrapper is in play — the renamed wrapper
// function, whose return variable is itself renamed to ret_<lib>.
type LibEntry struct {
	Name   string
	Symbol string
	Ret    signature.Variable
}

// Synth holds per-invocation synthesis state: the resolved signature,
// the maintained assumptions list, the ordered argument cache, and
// (fuzzing only) the seed-corpus map (spec.md §3 "TestCase
// descriptor": "maintains... an assumptions list..., an
// arguments_cache..., and—fuzzing only—a testcases mapping"). Seeds
// maps a corpus name to the complete stdin stream accumulated for it
// so far: every argument appends its seed bytes to every corpus
// currently in the map, the same fold crafter.py's
// `self.testcases_fuzzing = {k: v + testcase for k, v in ...}`
// performs.
type Synth struct {
	Case      TestCase
	Signature signature.Signature
	Libs      []LibEntry
	Verifier  VerifierKind

	Assumptions []string
	Seeds       map[string][]byte

	libEvalOverride func(s Synth) string
}

// New constructs a Synth ready for Render, applying the TestCase's
// Configure hook once (spec.md §3: the "configure()-equivalent hook").
func New(tc TestCase, resolved signature.Signature, libs []LibEntry, verifier VerifierKind) *Synth {
	width := tc.ArrayWidth
	if width == 0 {
		width = DefaultArrayWidth
	}

	s := &Synth{
		Case:            tc,
		Signature:       resolved,
		Libs:            libs,
		Verifier:        verifier,
		Seeds:           map[string][]byte{defaultSeedCorpus: {}},
		libEvalOverride: tc.LibEvalOverride,
	}

	for _, arg := range resolved.Args {
		if assumption, ok := DefaultAssumption(arg, width); ok {
			s.Assumptions = append(s.Assumptions, assumption)
		}
	}

	if tc.Configure != nil {
		tc.Configure(s)
	}

	return s
}

// AddAssumption appends a C boolean expression to the assumptions
// list (spec.md §3: "Tests may add further assumptions").
func (s *Synth) AddAssumption(expr string) { s.Assumptions = append(s.Assumptions, expr) }

// AddSeed starts (or extends, if already present) a named seed corpus
// with bytes, independent of the per-argument accumulation every
// corpus otherwise receives.
func (s *Synth) AddSeed(name string, bytes []byte) {
	s.Seeds[name] = append(s.Seeds[name], bytes...)
}

// addSeedLine appends line to every seed corpus accumulated so far
// (spec.md §4.G "append a seed line to every seed in testcases").
func (s *Synth) addSeedLine(line []byte) {
	for name, existing := range s.Seeds {
		s.Seeds[name] = append(existing, line...)
	}
}

// SeedList returns the accumulated seed corpora as a slice, sorted by
// name for deterministic output file ordering.
func (s *Synth) SeedList() []Seed {
	names := make([]string, 0, len(s.Seeds))
	for name := range s.Seeds {
		names = append(names, name)
	}
	sort.Strings(names)

	seeds := make([]Seed, len(names))
	for i, name := range names {
		seeds[i] = Seed{Name: name, Bytes: s.Seeds[name]}
	}
	return seeds
}

func (s *Synth) arrayWidth() int {
	if s.Case.ArrayWidth != 0 {
		return s.Case.ArrayWidth
	}
	return DefaultArrayWidth
}

// Render emits the full C translation unit for this test case (spec.md
// §4.G, sections 1-10 in emission order).
func (s *Synth) Render() (string, error) {
	var b strings.Builder

	s.renderHeaders(&b)
	s.renderLibIdentifierTable(&b)
	s.renderForwardDeclarations(&b)
	s.renderPropertySpace(&b)
	s.renderEntryDeclarations(&b)
	s.renderStorage(&b)

	mainBody, err := s.renderMain()
	if err != nil {
		return "", err
	}
	b.WriteString(mainBody)
	b.WriteString("\n")

	b.WriteString(s.renderLibEval())
	b.WriteString("\n")

	if len(s.Libs) > 1 {
		b.WriteString(RenderVerifier(s.Verifier, s.libNames()))
		b.WriteString("\n")
	}

	b.WriteString(RenderSputnikAbort(s.Case.Engine))

	return b.String(), nil
}

func (s *Synth) libNames() []string {
	names := make([]string, len(s.Libs))
	for i, l := range s.Libs {
		names[i] = l.Name
	}
	return names
}

// renderHeaders emits spec.md §4.G step 1.
func (s *Synth) renderHeaders(b *strings.Builder) {
	if s.Case.Engine == EngineSymex {
		b.WriteString("#include <klee/klee.h>\n\n")
		return
	}
	b.WriteString("#include <stdio.h>\n#include <unistd.h>\nvoid abort(void);\n\n")
}

// renderLibIdentifierTable emits spec.md §4.G step 2.
func (s *Synth) renderLibIdentifierTable(b *strings.Builder) {
	names := make([]string, len(s.Libs))
	for i, l := range s.Libs {
		names[i] = fmt.Sprintf("%q", l.Name)
	}
	fmt.Fprintf(b, "const char *libs_identifier[%d] = { %s };\n\n", len(s.Libs), strings.Join(names, ", "))
}

// renderForwardDeclarations emits spec.md §4.G step 3, only when more
// than one library is under comparison.
func (s *Synth) renderForwardDeclarations(b *strings.Builder) {
	if len(s.Libs) <= 1 {
		return
	}
	b.WriteString("int lib_eval(int i, int j);\n")
	b.WriteString("void verifier(void);\n")
	b.WriteString("void sputnik_abort(const char *message);\n\n")
}

// renderPropertySpace emits spec.md §4.G step 4.
func (s *Synth) renderPropertySpace(b *strings.Builder) {
	if s.Signature.Ret.Type == "void" && !s.Signature.Ret.IsPtr() {
		return
	}
	fmt.Fprintf(b, "%s eval_return_values[%d];\n\n", s.Signature.Ret.TypeStr(), len(s.Libs))
}

// renderEntryDeclarations emits spec.md §4.G step 5: one forward
// declaration per library, using its resolved entry symbol.
func (s *Synth) renderEntryDeclarations(b *strings.Builder) {
	for _, l := range s.Libs {
		fn := signature.Function{Signature: signature.Signature{Name: l.Symbol, Args: s.Signature.Args, Ret: l.Ret}}
		b.WriteString(fn.Declaration())
		b.WriteString("\n")
	}
	b.WriteString("\n")
}

// renderStorage emits spec.md §4.G step 6: one stack variable per
// non-void return and per argument. void*/char* arguments become
// stack arrays; other pointer arguments are scalars addressed with &
// at the call site. An argument carrying Value is emitted with
// "= <value>" and excluded from symbolic/fuzzing input generation.
func (s *Synth) renderStorage(b *strings.Builder) {
	if !(s.Signature.Ret.Type == "void" && !s.Signature.Ret.IsPtr()) {
		for _, l := range s.Libs {
			fmt.Fprintf(b, "%s %s;\n", l.Ret.TypeStr(), l.Ret.Name)
		}
	}

	width := s.arrayWidth()
	for _, a := range s.Signature.Args {
		switch {
		case a.Value != "":
			fmt.Fprintf(b, "%s %s = %s;\n", a.TypeStr(), a.Name, a.Value)
		case a.IsPtr() && (a.Type == "char" || a.Type == "void"):
			size := a.ArraySize
			if size < 0 {
				size = width
			}
			fmt.Fprintf(b, "%s %s[%d];\n", a.Type, a.Name, size)
		default:
			fmt.Fprintf(b, "%s %s;\n", a.TypeStr(), a.Name)
		}
	}
	b.WriteString("\n")
}

// renderMain emits spec.md §4.G step 7.
func (s *Synth) renderMain() (string, error) {
	var b strings.Builder
	b.WriteString("int main(void) {\n")

	width := s.arrayWidth()
	for _, a := range s.Signature.Args {
		if a.Value != "" {
			continue
		}

		if s.Case.Engine == EngineSymex {
			b.WriteString("\t" + SymexInput(withWidth(a, width)) + "\n")
			continue
		}

		code, seed, err := FuzzingInput(withWidth(a, width))
		if err != nil {
			return "", err
		}
		b.WriteString("\t" + code + "\n")
		s.addSeedLine(seed)
	}

	for _, assumption := range s.Assumptions {
		fmt.Fprintf(&b, "\tif (!(%s)) return 0;\n", assumption)
	}

	callArgs := make([]string, len(s.Signature.Args))
	for i, a := range s.Signature.Args {
		amps := ""
		if a.PtrDepth > 1 {
			amps = strings.Repeat("&", a.PtrDepth-1)
		}
		callArgs[i] = amps + a.Name
	}

	for i, l := range s.Libs {
		if s.Signature.Ret.Type == "void" && !s.Signature.Ret.IsPtr() {
			fmt.Fprintf(&b, "\t%s(%s);\n", l.Symbol, strings.Join(callArgs, ", "))
		} else {
			fmt.Fprintf(&b, "\t%s = %s(%s);\n", l.Ret.Name, l.Symbol, strings.Join(callArgs, ", "))
		}

		if len(s.Libs) > 1 {
			fmt.Fprintf(&b, "\teval_return_values[%d] = %s;\n", i, l.Ret.Name)
		}
	}

	if len(s.Libs) > 1 {
		b.WriteString("\tverifier();\n")
	}

	b.WriteString("\treturn 0;\n}\n")
	return b.String(), nil
}

// withWidth returns a copy of v with ArraySize resolved to width when
// it was left unspecified, so input-emission helpers never see -1.
func withWidth(v signature.Variable, width int) signature.Variable {
	if v.ArraySize < 0 {
		v.ArraySize = width
	}
	return v
}

// renderLibEval emits spec.md §4.G step 8: the default scalar
// equality comparator, or a TestCase's override.
func (s *Synth) renderLibEval() string {
	if s.libEvalOverride != nil {
		body := s.libEvalOverride(*s)
		return "int lib_eval(int i, int j) {\n\t" + body + "\n}\n"
	}
	if len(s.Libs) <= 1 {
		return ""
	}
	return "int lib_eval(int i, int j) {\n\t" + libEvalDefault() + "\n}\n"
}
