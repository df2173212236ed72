// Package errorkit defines the typed error kinds that sputnik's pipeline
// distinguishes, mirroring spec.md §7.
package errorkit

import (
	"errors"
	"fmt"
	"time"
)

// Kind identifies the broad category of a pipeline error.
type Kind string

const (
	KindCompile       Kind = "compile"
	KindLink          Kind = "link"
	KindConfig        Kind = "config"
	KindIntegrity     Kind = "integrity"
	KindUnsupported   Kind = "unsupported_type"
	KindIncremental   Kind = "incremental_state"
	KindManPage       Kind = "man_page"
)

// CompileError wraps a non-zero exit from the compiler. Fatal to the
// file being compiled; never fatal to a compile_collection batch.
type CompileError struct {
	Src       string
	Stderr    string
	Timestamp time.Time
}

func NewCompileError(src, stderr string) *CompileError {
	return &CompileError{Src: src, Stderr: stderr, Timestamp: time.Now()}
}

func (e *CompileError) Error() string {
	return fmt.Sprintf("compile %s failed: %s", e.Src, e.Stderr)
}

func (e *CompileError) Kind() Kind { return KindCompile }

// LinkError wraps a non-zero exit from the linker. Always fatal.
type LinkError struct {
	Dest      string
	Stderr    string
	Timestamp time.Time
}

func NewLinkError(dest, stderr string) *LinkError {
	return &LinkError{Dest: dest, Stderr: stderr, Timestamp: time.Now()}
}

func (e *LinkError) Error() string {
	return fmt.Sprintf("link %s failed: %s", e.Dest, e.Stderr)
}

func (e *LinkError) Kind() Kind { return KindLink }

// ConfigError describes a missing file, malformed JSON, or missing
// required key in one of the three JSON configs or the project TOML.
type ConfigError struct {
	Path       string
	Key        string
	Underlying error
}

func NewConfigError(path, key string, underlying error) *ConfigError {
	return &ConfigError{Path: path, Key: key, Underlying: underlying}
}

func (e *ConfigError) Error() string {
	if e.Key != "" {
		return fmt.Sprintf("config %s: key %q: %v", e.Path, e.Key, e.Underlying)
	}
	return fmt.Sprintf("config %s: %v", e.Path, e.Underlying)
}

func (e *ConfigError) Unwrap() error { return e.Underlying }

func (e *ConfigError) Kind() Kind { return KindConfig }

// IntegrityError records a function from the wrapper config that is
// missing from a library's post-rename map. Non-fatal: the build
// artifact is still produced.
type IntegrityError struct {
	Library string
	Missing []string
}

func (e *IntegrityError) Error() string {
	return fmt.Sprintf("library %s: integrity check failed, missing %v", e.Library, e.Missing)
}

func (e *IntegrityError) Kind() Kind { return KindIntegrity }

// UnsupportedTypeError is returned by the fuzzing input generator when
// asked for a type outside its format/seed mapping.
type UnsupportedTypeError struct {
	Type string
}

func (e *UnsupportedTypeError) Error() string {
	return fmt.Sprintf("fuzzing input generator: unsupported type %q", e.Type)
}

func (e *UnsupportedTypeError) Kind() Kind { return KindUnsupported }

// IncrementalStateError marks a corrupt included_files.json. Callers
// recover locally by falling back to a full rebuild; this type exists
// so the recovery can still be traced.
type IncrementalStateError struct {
	Path       string
	Underlying error
}

func (e *IncrementalStateError) Error() string {
	return fmt.Sprintf("incremental state %s unreadable: %v", e.Path, e.Underlying)
}

func (e *IncrementalStateError) Unwrap() error { return e.Underlying }

func (e *IncrementalStateError) Kind() Kind { return KindIncremental }

// ManPageError is returned when the man-page lookup of a function's
// signature fails outright or the fetched text does not contain a C
// declaration matching the function name. spec.md §9 treats the
// original's regex-match exception as a contract; this is its typed
// form.
type ManPageError struct {
	Function string
	Raw      string
}

func (e *ManPageError) Error() string {
	return fmt.Sprintf("could not extract a signature for %q from man page output %q", e.Function, e.Raw)
}

func (e *ManPageError) Kind() Kind { return KindManPage }

// classified is implemented by every error type in this package.
type classified interface {
	Kind() Kind
}

// KindOf returns the Kind of err if it (or something in its Unwrap
// chain) is one of this package's error types, and ok=false otherwise.
func KindOf(err error) (kind Kind, ok bool) {
	var c classified
	if errors.As(err, &c) {
		return c.Kind(), true
	}
	return "", false
}
