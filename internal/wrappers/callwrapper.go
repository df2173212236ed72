// Package wrappers emits the lib_entry_<fn> C shims that forward to
// each library's real entry point, so a uniform name can be resolved
// after symbol renaming (spec.md §4.F).
package wrappers

import (
	"fmt"
	"sort"
	"strings"

	"github.com/sputniklab/sputnik/internal/signature"
)

// IncludeGuard is the header's include guard, matching the reference
// wrapper header verbatim.
const IncludeGuard = "__CALL_WRAPPERS"

// Spec describes a single function to wrap: its C signature and the
// set of headers its wrapper definition needs.
type Spec struct {
	Signature signature.Signature
	Headers   []string
}

// Generate renders the wrapper source and header files for the given
// specs (spec.md §4.F). funcs is keyed by function name; the emission
// order is alphabetical for determinism.
func Generate(funcs map[string]Spec) (source, header string) {
	names := make([]string, 0, len(funcs))
	for name := range funcs {
		names = append(names, name)
	}
	sort.Strings(names)

	headerSet := make(map[string]bool)
	for _, name := range names {
		for _, h := range funcs[name].Headers {
			headerSet[h] = true
		}
	}
	headers := make([]string, 0, len(headerSet))
	for h := range headerSet {
		headers = append(headers, h)
	}
	sort.Strings(headers)

	var src strings.Builder
	for _, h := range headers {
		fmt.Fprintf(&src, "#include <%s>\n", h)
	}
	if len(headers) > 0 {
		src.WriteString("\n")
	}

	var hdr strings.Builder
	fmt.Fprintf(&hdr, "#ifndef %s\n#define %s\n\n", IncludeGuard, IncludeGuard)

	for _, name := range names {
		wrapper := entryFunction(name, funcs[name].Signature)
		src.WriteString(wrapper.Definition(forwardingBody(name, funcs[name].Signature)))
		src.WriteString("\n\n")
		hdr.WriteString(wrapper.Declaration())
		hdr.WriteString("\n")
	}

	hdr.WriteString(fmt.Sprintf("\n#endif /* %s */\n", IncludeGuard))

	return src.String(), hdr.String()
}

// entryFunction builds the lib_entry_<fn> Function sharing fn's
// signature shape (args and return type), so Declaration/Definition
// render with the real function's calling convention.
func entryFunction(fn string, sig signature.Signature) signature.Function {
	return signature.Function{
		Signature: signature.Signature{
			Name: "lib_entry_" + fn,
			Args: sig.Args,
			Ret:  sig.Ret,
		},
	}
}

// forwardingBody renders "return fn(arg1, …);", or bare "fn(…);" when
// the wrapped function returns void (spec.md §4.F).
func forwardingBody(fn string, sig signature.Signature) string {
	names := make([]string, len(sig.Args))
	for i, a := range sig.Args {
		names[i] = a.Name
	}
	call := fmt.Sprintf("%s(%s);", fn, strings.Join(names, ", "))

	if sig.Ret.Type == "void" && !sig.Ret.IsPtr() {
		return call
	}
	return "return " + call
}
