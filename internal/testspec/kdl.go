// Package testspec adds a declarative KDL file format for the common
// "run this function with no custom hooks" case (spec.md §6 TestCase
// extension contract; SPEC_FULL.md §11.1). Each top-level
// "testcase" block becomes a harness.TestCase value; a block needing
// custom Configure/LibEvalOverride hooks still drops to a hand-written
// Go harness.TestCase.
package testspec

import (
	"fmt"
	"strings"

	kdl "github.com/sblinch/kdl-go"
	"github.com/sblinch/kdl-go/document"

	"github.com/sputniklab/sputnik/internal/harness"
)

// ParseFile reads raw KDL content and returns one harness.TestCase per
// top-level "testcase" block.
func ParseFile(content string) ([]harness.TestCase, error) {
	doc, err := kdl.Parse(strings.NewReader(content))
	if err != nil {
		return nil, fmt.Errorf("testspec: parse KDL: %w", err)
	}

	var cases []harness.TestCase

	for _, n := range doc.Nodes {
		if nodeName(n) != "testcase" {
			continue
		}

		fn, ok := firstStringArg(n)
		if !ok {
			return nil, fmt.Errorf("testspec: testcase block missing its function-name argument")
		}

		tc := harness.TestCase{Function: fn, Engine: harness.EngineSymex, ArrayWidth: harness.DefaultArrayWidth}

		for _, cn := range n.Children {
			switch nodeName(cn) {
			case "engine":
				if s, ok := firstStringArg(cn); ok {
					tc.Engine = harness.Engine(s)
				}
			case "array-width":
				if v, ok := firstIntArg(cn); ok {
					tc.ArrayWidth = v
				}
			case "semantic-wrapper":
				for _, s := range collectStringArgs(cn) {
					tc.SemanticWrappers = append(tc.SemanticWrappers, s)
				}
			}
		}

		cases = append(cases, tc)
	}

	return cases, nil
}

func nodeName(n *document.Node) string {
	if n == nil || n.Name == nil {
		return ""
	}
	return n.Name.NodeNameString()
}

func firstStringArg(n *document.Node) (string, bool) {
	if len(n.Arguments) == 0 {
		return "", false
	}
	s, ok := n.Arguments[0].Value.(string)
	return s, ok
}

func firstIntArg(n *document.Node) (int, bool) {
	if len(n.Arguments) == 0 {
		return 0, false
	}
	switch v := n.Arguments[0].Value.(type) {
	case int64:
		return int(v), true
	case float64:
		return int(v), true
	default:
		return 0, false
	}
}

func collectStringArgs(n *document.Node) []string {
	if n == nil {
		return nil
	}
	out := make([]string, 0, len(n.Arguments))
	for _, a := range n.Arguments {
		if s, ok := a.Value.(string); ok {
			out = append(out, s)
		}
	}
	return out
}
