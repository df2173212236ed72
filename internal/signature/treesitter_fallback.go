package signature

import (
	"fmt"
	"strings"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_cpp "github.com/tree-sitter/tree-sitter-cpp/bindings/go"
)

// ParseWithFallback parses line with the primary regex-based parser
// (spec.md §4.B) and, only if that fails, re-parses it as a one-off C++
// translation unit via tree-sitter-cpp (§11.5 of SPEC_FULL.md). C
// declarations are a subset of the C++ grammar, so this recovers
// declarations the primary regex cannot match at all, such as ones
// with function-pointer parameters. A fixed-size array parameter like
// "char buf[256]" does not reach this path: the primary parser accepts
// it and keeps "buf[256]" as the argument name.
//
// The primary parser remains the parser of record for every case it
// does accept — this function never overrides a successful primary
// parse.
func ParseWithFallback(line string, defaultArraySize int) (Signature, error) {
	if sgn, err := Parse(line, defaultArraySize); err == nil {
		return sgn, nil
	}

	return parseWithTreeSitter(line, defaultArraySize)
}

func parseWithTreeSitter(line string, defaultArraySize int) (Signature, error) {
	src := strings.TrimSuffix(strings.TrimSpace(line), ";")

	parser := tree_sitter.NewParser()
	defer parser.Close()

	language := tree_sitter.NewLanguage(tree_sitter_cpp.Language())
	if err := parser.SetLanguage(language); err != nil {
		return Signature{}, fmt.Errorf("signature: tree-sitter-cpp setup: %w", err)
	}

	code := []byte(src + ";")
	tree := parser.Parse(code, nil)
	if tree == nil {
		return Signature{}, fmt.Errorf("signature: tree-sitter could not parse %q", line)
	}
	defer tree.Close()

	root := tree.RootNode()

	declNode := findFirstByKind(root, "declaration")
	if declNode == nil {
		return Signature{}, fmt.Errorf("signature: no declaration node found for %q", line)
	}

	declarator := findFirstByKind(declNode, "function_declarator")
	if declarator == nil {
		return Signature{}, fmt.Errorf("signature: no function declarator found for %q", line)
	}

	nameNode := declarator.ChildByFieldName("declarator")
	if nameNode == nil {
		return Signature{}, fmt.Errorf("signature: function declarator has no name for %q", line)
	}
	name := strings.TrimPrefix(string(code[nameNode.StartByte():nameNode.EndByte()]), "*")

	ptrDepth := 0
	for n := declarator; n != nil; {
		parent := n.Parent()
		if parent != nil && parent.Kind() == "pointer_declarator" {
			ptrDepth++
			n = parent
			continue
		}
		break
	}

	typeNode := declNode.ChildByFieldName("type")
	retType := ""
	if typeNode != nil {
		retType = string(code[typeNode.StartByte():typeNode.EndByte()])
	}

	paramsNode := declarator.ChildByFieldName("parameters")
	var args []Variable
	if paramsNode != nil {
		count := paramsNode.ChildCount()
		for i := uint(0); i < count; i++ {
			child := paramsNode.Child(i)
			if child == nil || child.Kind() != "parameter_declaration" {
				continue
			}
			v, err := parseParameterDeclaration(child, code, defaultArraySize)
			if err != nil {
				continue
			}
			args = append(args, v)
		}
	}

	ret := Variable{Type: retType, Name: "unnamed", PtrDepth: ptrDepth, ArraySize: -1}

	return Signature{Name: name, Args: args, Ret: ret}, nil
}

func parseParameterDeclaration(node *tree_sitter.Node, code []byte, defaultArraySize int) (Variable, error) {
	typeNode := node.ChildByFieldName("type")
	declNode := node.ChildByFieldName("declarator")

	if typeNode == nil || declNode == nil {
		return Variable{}, fmt.Errorf("signature: incomplete parameter declaration")
	}

	typ := string(code[typeNode.StartByte():typeNode.EndByte()])
	typ = strings.TrimPrefix(typ, "const ")

	ptrDepth := 0
	cur := declNode
	for cur != nil && cur.Kind() == "pointer_declarator" {
		ptrDepth++
		inner := cur.ChildByFieldName("declarator")
		if inner == nil {
			break
		}
		cur = inner
	}

	name := ""
	if cur != nil {
		name = string(code[cur.StartByte():cur.EndByte()])
	}

	arraySize := -1
	if ptrDepth > 0 {
		arraySize = defaultArraySize
	}

	return Variable{Type: typ, Name: name, PtrDepth: ptrDepth, ArraySize: arraySize}, nil
}

func findFirstByKind(node *tree_sitter.Node, kind string) *tree_sitter.Node {
	if node == nil {
		return nil
	}
	if node.Kind() == kind {
		return node
	}
	count := node.ChildCount()
	for i := uint(0); i < count; i++ {
		if found := findFirstByKind(node.Child(i), kind); found != nil {
			return found
		}
	}
	return nil
}
