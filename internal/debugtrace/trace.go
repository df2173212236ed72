// Package debugtrace is a minimal, mutex-guarded trace sink, independent
// of the operator-facing leveled logger. It is silent by default.
package debugtrace

import (
	"fmt"
	"io"
	"sync"
)

var (
	mu     sync.Mutex
	output io.Writer
)

// SetOutput redirects trace output to w. Pass nil to silence it again.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	output = w
}

// Tracef writes a formatted trace line if an output is configured.
func Tracef(format string, args ...interface{}) {
	mu.Lock()
	w := output
	mu.Unlock()

	if w == nil {
		return
	}

	fmt.Fprintf(w, format+"\n", args...)
}
