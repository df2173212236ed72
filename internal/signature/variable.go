// Package signature is the minimal C declaration model (spec.md §4.B):
// types, pointer depth, arguments, and return value, sufficient to
// synthesize declarations, definitions, and call sites.
package signature

import (
	"fmt"
	"regexp"
	"strings"
)

// Variable models a single C variable: its type, name, pointer depth,
// optional array size (meaningful only when ptr_depth > 0), and an
// optional initializer/alias expression.
type Variable struct {
	Type      string
	Name      string
	PtrDepth  int
	ArraySize int // -1 = unspecified; meaningless unless PtrDepth > 0
	Value     string
}

// NewVariable constructs a Variable with the spec.md default of an
// unspecified array size.
func NewVariable(typ, name string, ptrDepth int) Variable {
	return Variable{Type: typ, Name: name, PtrDepth: ptrDepth, ArraySize: -1}
}

// IsPtr reports whether v should be rendered as a pointer.
func (v Variable) IsPtr() bool { return v.PtrDepth > 0 }

// TypeStr renders the type together with its pointer stars, e.g.
// "unsigned int **".
func (v Variable) TypeStr() string {
	if v.PtrDepth == 0 {
		return v.Type
	}
	return v.Type + " " + strings.Repeat("*", v.PtrDepth)
}

// String renders v as it would appear in a C declaration, e.g.
// "int *x" or "int x".
func (v Variable) String() string {
	if v.PtrDepth != 0 {
		return v.TypeStr() + v.Name
	}
	return v.TypeStr() + " " + v.Name
}

// Equal implements the structural equality spec.md §8 requires of the
// parse/render round-trip: name, type, pointer depth, and array size.
func (v Variable) Equal(o Variable) bool {
	return v.Name == o.Name && v.Type == o.Type && v.PtrDepth == o.PtrDepth && v.ArraySize == o.ArraySize
}

// Rename replaces v's name in place.
func (v *Variable) Rename(name string) { v.Name = name }

var argPattern = regexp.MustCompile(`^(?:const )?(.*)\s([*]*)([^;]*);?$`)

// ParseVariable parses a single argument of the form "[const ]<type>
// [*…]<name>[;]", matching language.py's Variable.parse. defaultArraySize
// is attached when the parsed variable turns out to be a pointer.
func ParseVariable(line string, defaultArraySize int) (Variable, error) {
	line = strings.TrimSpace(line)

	m := argPattern.FindStringSubmatch(line)
	if m == nil {
		return Variable{}, fmt.Errorf("signature: could not parse variable from %q", line)
	}

	typ, stars, name := m[1], m[2], m[3]

	arraySize := -1
	if len(stars) > 0 {
		arraySize = defaultArraySize
	}

	return Variable{
		Type:      typ,
		Name:      name,
		PtrDepth:  len(stars),
		ArraySize: arraySize,
	}, nil
}
