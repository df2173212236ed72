package signature

import "testing"

func TestParseVariableBasic(t *testing.T) {
	cases := []struct {
		line string
		want Variable
	}{
		{"void x", Variable{Type: "void", Name: "x", PtrDepth: 0, ArraySize: -1}},
		{"unsigned int x", Variable{Type: "unsigned int", Name: "x", PtrDepth: 0, ArraySize: -1}},
		{"struct foo *bar", Variable{Type: "struct foo", Name: "bar", PtrDepth: 1, ArraySize: 8}},
		{"int *******x", Variable{Type: "int", Name: "x", PtrDepth: 7, ArraySize: 8}},
	}

	for _, c := range cases {
		got, err := ParseVariable(c.line, 8)
		if err != nil {
			t.Fatalf("%s: %v", c.line, err)
		}
		if !got.Equal(c.want) {
			t.Fatalf("%s: got %+v, want %+v", c.line, got, c.want)
		}
	}
}

func TestVariableTypeStrAndString(t *testing.T) {
	v := NewVariable("void", "foo_bar", 0)
	if v.TypeStr() != "void" {
		t.Fatalf("unexpected type str: %s", v.TypeStr())
	}
	if v.String() != "void foo_bar" {
		t.Fatalf("unexpected string: %s", v.String())
	}

	v2 := NewVariable("void", "foo_bar", 2)
	if v2.TypeStr() != "void **" {
		t.Fatalf("unexpected type str: %s", v2.TypeStr())
	}
	if v2.String() != "void **foo_bar" {
		t.Fatalf("unexpected string: %s", v2.String())
	}
}

func TestVariableIsPtr(t *testing.T) {
	v := NewVariable("void", "x", 0)
	if v.IsPtr() {
		t.Fatal("expected non-pointer")
	}

	v2 := NewVariable("void", "foo_bar", 2)
	if !v2.IsPtr() {
		t.Fatal("expected pointer")
	}
}

func TestVariableRename(t *testing.T) {
	v := NewVariable("void", "foo_bar", 2)
	v.Rename("bar")
	if v.Name != "bar" {
		t.Fatalf("unexpected name after rename: %s", v.Name)
	}
}
