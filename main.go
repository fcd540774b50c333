package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/codetester/codetester-go/internal/tester"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		exitOnError(err)
	}
}

// exitOnError prints a user-friendly error message to stderr and exits 1.
func exitOnError(err error) {
	reportError(os.Stderr, err)
	os.Exit(1)
}

// reportError prints err for the user. Compilation errors get their
// diagnostics listed per file.
func reportError(w io.Writer, err error) {
	var compErr *tester.CompilationError
	if errors.As(err, &compErr) {
		printCompilationError(w, compErr)
		return
	}

	fmt.Fprintf(w, "Error: %v\n", err)
}
