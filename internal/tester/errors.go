// Package tester is the client for the code tester service: the HTTP
// transport, the login session that keeps refresh and access tokens alive,
// and the submission pipeline that uploads a source tree and decodes the
// check results.
package tester

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for the failure taxonomy.
// Use errors.Is(err, tester.ErrCompilation) to check.
var (
	ErrAuthentication = errors.New("tester: invalid credentials")
	ErrTransport      = errors.New("tester: unexpected response")
	ErrCompilation    = errors.New("tester: compilation failed")
	ErrEmptyResult    = errors.New("tester: no files to compile found")
	ErrArchive        = errors.New("tester: archiving source failed")
)

// AuthenticationError is returned when the login endpoint rejects the
// supplied credentials. It is never retried.
type AuthenticationError struct {
	Username   string
	StatusCode int
}

func (e *AuthenticationError) Error() string {
	return fmt.Sprintf("tester: invalid credentials for %q (HTTP %d)", e.Username, e.StatusCode)
}

func (e *AuthenticationError) Unwrap() error {
	return ErrAuthentication
}

// TransportError describes a response the client did not expect: a non-200
// status, or a 200 whose body could not be understood. Body holds the raw
// response for diagnosis.
type TransportError struct {
	Method     string
	Path       string
	StatusCode int
	Status     string
	Body       string
	Err        error // decode failure for 200 responses, nil otherwise
}

func (e *TransportError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("tester: %s %s: HTTP %d: %v - %s", e.Method, e.Path, e.StatusCode, e.Err, e.Body)
	}

	return fmt.Sprintf("tester: non-200 response at %s %s: %s - %s", e.Method, e.Path, e.Status, e.Body)
}

func (e *TransportError) Unwrap() []error {
	if e.Err != nil {
		return []error{ErrTransport, e.Err}
	}

	return []error{ErrTransport}
}

// FileDiagnostics is the compiler output for one submitted file.
type FileDiagnostics struct {
	File  string
	Lines []string
}

// CompilationError is returned when the service reports that the submission
// did not compile. Diagnostics mirrors the server's diagnostics object with
// its file order preserved.
type CompilationError struct {
	Diagnostics []FileDiagnostics
}

func (e *CompilationError) Error() string {
	var b strings.Builder

	b.WriteString("Compiler-Error:")

	for _, d := range e.Diagnostics {
		b.WriteString("\n")
		b.WriteString(d.File)

		for _, line := range d.Lines {
			b.WriteString("\n")
			b.WriteString(line)
		}
	}

	return b.String()
}

func (e *CompilationError) Unwrap() error {
	return ErrCompilation
}

// EmptyResultError is returned when a submission compiled but produced no
// per-file results, which points at a packaging or category mismatch.
type EmptyResultError struct {
	CategoryID int
}

func (e *EmptyResultError) Error() string {
	return fmt.Sprintf("tester: no files to compile found for category %d", e.CategoryID)
}

func (e *EmptyResultError) Unwrap() error {
	return ErrEmptyResult
}

// ArchiveError wraps a local failure while reading or zipping the source
// directory.
type ArchiveError struct {
	Dir string
	Err error
}

func (e *ArchiveError) Error() string {
	return fmt.Sprintf("tester: archiving %s: %v", e.Dir, e.Err)
}

func (e *ArchiveError) Unwrap() []error {
	return []error{ErrArchive, e.Err}
}
