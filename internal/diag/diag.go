// Package diag writes the interpreter's operational diagnostics (as
// opposed to interpreted-program output, which goes through VM ports).
// It deliberately stays a thin fmt.Fprintf wrapper over os.Stderr: the
// reference implementation's own CLI has no logging library either, and
// a single-process REPL/batch tool has no log aggregation to format for.
package diag

import (
	"fmt"
	"os"
)

// Verbose gates Tracef output; set from the CLI's -trace flag.
var Verbose = false

func Errorf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "cheshire: "+format+"\n", args...)
}

func Warnf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "cheshire: warning: "+format+"\n", args...)
}

func Tracef(format string, args ...any) {
	if !Verbose {
		return
	}
	fmt.Fprintf(os.Stderr, "cheshire: trace: "+format+"\n", args...)
}
