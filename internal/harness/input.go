package harness

import (
	"bytes"
	"fmt"

	"github.com/sputniklab/sputnik/internal/errorkit"
	"github.com/sputniklab/sputnik/internal/signature"
)

// fuzzingTypeInfo is the exhaustive type -> format-string/seed mapping
// spec.md §4.G "Fuzzing input emission" requires over
// {int, size_t, long, long int, long long, long long int, char, char*,
// wint_t}.
type fuzzingTypeInfo struct {
	scanFormat string
	seedByte   byte
}

var fuzzingScalarTypes = map[string]fuzzingTypeInfo{
	"int":               {scanFormat: "%d", seedByte: '1'},
	"size_t":            {scanFormat: "%zu", seedByte: '1'},
	"long":              {scanFormat: "%ld", seedByte: '1'},
	"long int":          {scanFormat: "%ld", seedByte: '1'},
	"long long":         {scanFormat: "%lld", seedByte: '1'},
	"long long int":     {scanFormat: "%lld", seedByte: '1'},
	"char":              {scanFormat: "%c", seedByte: 'a'},
}

// SymexInput renders a klee_make_symbolic call for v (spec.md §4.G
// "Symbolic input emission"). Pointer arguments of type void*/char*
// are made symbolic over array_size*sizeof(elem); everything else is
// made symbolic over &v/sizeof(v).
func SymexInput(v signature.Variable) string {
	if v.IsPtr() && (v.Type == "void" || v.Type == "char") {
		return fmt.Sprintf("klee_make_symbolic(%s, %d * sizeof(%s), %q);",
			v.Name, v.ArraySize, v.Type, v.Name)
	}
	return fmt.Sprintf("klee_make_symbolic(&%s, sizeof(%s), %q);", v.Name, v.Name, v.Name)
}

// FuzzingInput renders a scanf (or read(2), for wint_t) reading v from
// stdin, plus the seed bytes to append to every seed line (spec.md
// §4.G "Fuzzing input emission").
func FuzzingInput(v signature.Variable) (code string, seed []byte, err error) {
	if v.Type == "wint_t" && !v.IsPtr() {
		return fmt.Sprintf("read(0, &%s, 4);", v.Name), []byte{'1', 0}, nil
	}

	if v.IsPtr() && (v.Type == "char" || v.Type == "void") {
		seed := append(bytes.Repeat([]byte{'A'}, v.ArraySize), '\n')
		return fmt.Sprintf("scanf(\"%%%ds\", %s);", v.ArraySize-1, v.Name), seed, nil
	}

	info, ok := fuzzingScalarTypes[v.Type]
	if !ok || v.IsPtr() {
		return "", nil, &errorkit.UnsupportedTypeError{Type: v.TypeStr()}
	}

	return fmt.Sprintf("scanf(\"%s\", &%s);", info.scanFormat, v.Name), []byte{info.seedByte, '\n'}, nil
}

// DefaultAssumption renders the default precondition spec.md §4.G
// requires for a char* argument: arg[array_size-1] == '\0' when
// array_width > 0, otherwise arg[0] == '\0'.
func DefaultAssumption(v signature.Variable, arrayWidth int) (string, bool) {
	if !(v.IsPtr() && v.Type == "char") {
		return "", false
	}
	if arrayWidth > 0 {
		return fmt.Sprintf("%s[%d] == '\\0'", v.Name, v.ArraySize-1), true
	}
	return fmt.Sprintf("%s[0] == '\\0'", v.Name), true
}
