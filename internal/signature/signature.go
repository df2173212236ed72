package signature

import (
	"fmt"
	"regexp"
	"strings"
)

// Signature is a C function signature: name, ordered arguments, and a
// return Variable (spec.md §3 "Signature").
type Signature struct {
	Name string
	Args []Variable
	Ret  Variable
}

// Function is a Signature with an optional body (spec.md §3
// "Function"). Equality is structural over name, return, and argument
// sequence, matching language.py's Signature.__eq__.
type Function struct {
	Signature
	Body string
}

// declPattern mirrors language.py's func_decl regex: a greedy return
// type, pointer stars, a name, and a parenthesized argument list,
// terminated by ");" — matched with DOTALL semantics so a multi-line
// (whitespace-collapsed) declaration still parses.
var declPattern = regexp.MustCompile(`(?s)^(.*)\s([*]*)([^(]*)\(([^)]*)\);\s*$`)

// Parse parses a semicolon-terminated C declaration of the form
// "<return-type> [*…]<name>(<args>);" (spec.md §4.B). Argument lists
// are split on a literal ", " and each argument is parsed with
// ParseVariable. defaultArraySize is attached to pointer arguments'
// ArraySize.
func Parse(line string, defaultArraySize int) (Signature, error) {
	line = strings.TrimSpace(line)

	m := declPattern.FindStringSubmatch(line)
	if m == nil {
		return Signature{}, fmt.Errorf("signature: %q is not a semicolon-terminated C declaration", line)
	}

	retType, ptr, name, rawArgs := m[1], m[2], m[3], m[4]

	ret := Variable{Type: strings.TrimSpace(retType), Name: "unnamed", PtrDepth: len(ptr), ArraySize: -1}

	var args []Variable
	if trimmedArgs := strings.TrimSpace(rawArgs); trimmedArgs != "" && trimmedArgs != "void" {
		for _, part := range strings.Split(rawArgs, ", ") {
			v, err := ParseVariable(part, defaultArraySize)
			if err != nil {
				return Signature{}, err
			}
			args = append(args, v)
		}
	}

	return Signature{Name: strings.TrimSpace(name), Args: args, Ret: ret}, nil
}

// Equal implements the structural equality spec.md §3 requires.
func (s Signature) Equal(o Signature) bool {
	if s.Name != o.Name || !s.Ret.Equal(o.Ret) || len(s.Args) != len(o.Args) {
		return false
	}
	for i := range s.Args {
		if !s.Args[i].Equal(o.Args[i]) {
			return false
		}
	}
	return true
}

// Fork returns a Function named newName whose return Variable is
// renamed "ret_<newName>" and whose arguments are deep copies of s's
// (spec.md §3: "aliasing-free"; §8 invariant on fork).
func (s Signature) Fork(newName string) Function {
	ret := s.Ret
	ret.Rename("ret_" + newName)

	args := make([]Variable, len(s.Args))
	copy(args, s.Args)

	return Function{Signature: Signature{Name: newName, Args: args, Ret: ret}}
}

func (f Function) argList() string {
	parts := make([]string, len(f.Args))
	for i, a := range f.Args {
		parts[i] = a.String()
	}
	return strings.Join(parts, ", ")
}

// Declaration renders f as a forward declaration (spec.md §4.B
// "Rendering"). The separator between return type and name is empty
// when the return is a pointer, a single space otherwise.
func (f Function) Declaration() string {
	if f.Ret.IsPtr() {
		return fmt.Sprintf("%s%s(%s);", f.Ret.TypeStr(), f.Name, f.argList())
	}
	return fmt.Sprintf("%s %s(%s);", f.Ret.TypeStr(), f.Name, f.argList())
}

// Definition renders f as a full definition with the given body,
// tab-indented (spec.md §4.B).
func (f Function) Definition(body string) string {
	var head string
	if f.Ret.IsPtr() {
		head = fmt.Sprintf("%s%s(%s)", f.Ret.TypeStr(), f.Name, f.argList())
	} else {
		head = fmt.Sprintf("%s %s(%s)", f.Ret.TypeStr(), f.Name, f.argList())
	}

	lines := []string{head, "{"}
	for _, l := range strings.Split(body, "\n") {
		lines = append(lines, "\t"+l)
	}
	lines = append(lines, "}")

	return strings.Join(lines, "\n")
}

// Call renders a call site for f (spec.md §4.B). Each argument is
// prefixed with '&' repeated (ptr_depth-1) times, passing the address
// of a stack-allocated scalar when the callee expects a pointer.
func (f Function) Call() string {
	parts := make([]string, len(f.Args))
	for i, a := range f.Args {
		amps := ""
		if a.PtrDepth > 1 {
			amps = strings.Repeat("&", a.PtrDepth-1)
		}
		parts[i] = amps + a.Name
	}

	args := strings.Join(parts, ", ")

	if f.Ret.Type == "void" && !f.Ret.IsPtr() {
		return fmt.Sprintf("%s(%s);", f.Name, args)
	}
	return fmt.Sprintf("%s = %s(%s);", f.Ret.Name, f.Name, args)
}
