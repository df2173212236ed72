// Package renamer operates on textual LLVM IR, detecting and rewriting
// defined global symbols so that multiple libraries with colliding
// names can coexist in one translation unit (spec.md §4.C).
package renamer

import (
	"bufio"
	"os"
	"regexp"
	"strings"
)

// rename.py's detector relies on Python's negative lookahead
// ((?!internal|private|appending|external)); RE2 (Go's regexp) has no
// lookahead, so the exclusion list is applied as an explicit prefix
// check instead. The set of excluded linkages is preserved exactly,
// per the Design Note in spec.md §9 ("a rewrite should preserve that
// list exactly").
var excludedLinkages = []string{"internal", "private", "appending", "external"}

var globalDefPattern = regexp.MustCompile(`^@(\S+) = (.*)$`)
var functionNamePattern = regexp.MustCompile(`^[^@]*@([^("]+|"[^"]*")\(`)

func hasExcludedPrefix(s string) bool {
	for _, kw := range excludedLinkages {
		if strings.HasPrefix(s, kw) {
			return true
		}
	}
	return false
}

// detectOne returns the captured symbol name if line defines a
// renamable global or function, and false otherwise.
func detectOne(line string) (string, bool) {
	if rest, ok := strings.CutPrefix(line, "define "); ok {
		if strings.HasPrefix(rest, "internal") || strings.HasPrefix(rest, "private") {
			return "", false
		}
		if m := functionNamePattern.FindStringSubmatch(rest); m != nil {
			return m[1], true
		}
		return "", false
	}

	if m := globalDefPattern.FindStringSubmatch(line); m != nil {
		name, afterEq := m[1], m[2]
		if hasExcludedPrefix(afterEq) {
			return "", false
		}
		return name, true
	}

	return "", false
}

// DetectNames returns the mapping {"@"+name: "@"+sub(name)} over every
// defined global symbol found in src (spec.md §4.C).
func DetectNames(src string, sub func(string) string) (map[string]string, error) {
	f, err := os.Open(src)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	mapping := make(map[string]string)

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	for scanner.Scan() {
		line := scanner.Text()
		if name, ok := detectOne(line); ok {
			mapping["@"+name] = "@" + sub(name)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return mapping, nil
}

// Substitute rewrites src to dest, replacing every textual occurrence
// of every key in mapping with its value (spec.md §4.C). Substitution
// is textual and line-oriented: comments and string literals are not
// excluded, matching the reference behavior.
func Substitute(dest, src string, mapping map[string]string) error {
	content, err := os.ReadFile(src)
	if err != nil {
		return err
	}

	out, err := os.Create(dest)
	if err != nil {
		return err
	}
	defer out.Close()

	replacer := buildReplacer(mapping)

	lines := strings.Split(string(content), "\n")
	for _, line := range lines {
		if _, err := out.WriteString(replacer(line) + "\n"); err != nil {
			return err
		}
	}

	return nil
}

// buildReplacer compiles mapping's keys into a single alternation
// regexp and returns a function applying the substitution in one pass
// per line, matching rename.py's regex_match_symbols.sub.
func buildReplacer(mapping map[string]string) func(string) string {
	if len(mapping) == 0 {
		return func(s string) string { return s }
	}

	keys := make([]string, 0, len(mapping))
	for k := range mapping {
		keys = append(keys, regexp.QuoteMeta(k))
	}

	pattern := regexp.MustCompile(strings.Join(keys, "|"))

	return func(line string) string {
		return pattern.ReplaceAllStringFunc(line, func(m string) string {
			return mapping[m]
		})
	}
}

// leadingUnderscores splits name into its leading underscore run and
// the remainder, matching rename.py's re.match(r"([_]*)(.*)", f).
func leadingUnderscores(name string) (string, string) {
	i := 0
	for i < len(name) && name[i] == '_' {
		i++
	}
	return name[:i], name[i:]
}

// Rename renames every defined symbol inside src by adding prefix,
// writing the result to dest and returning the mapping (spec.md §4.C):
// name ↦ "<leading_underscores><prefix>_<rest>", preserving any
// leading underscore run at the front of the result.
func Rename(dest, src, prefix string) (map[string]string, error) {
	sub := func(name string) string {
		lead, rest := leadingUnderscores(name)
		return lead + prefix + "_" + rest
	}

	mapping, err := DetectNames(src, sub)
	if err != nil {
		return nil, err
	}

	if err := Substitute(dest, src, mapping); err != nil {
		return nil, err
	}

	return mapping, nil
}
