package tester

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Category is a named group of checks the service can run against a
// submission.
type Category struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// Outcome is the pass/fail result of a single check.
type Outcome int

const (
	Failed Outcome = iota
	Passed
)

// Wire values for Outcome.
const (
	wireSuccessful = "SUCCESSFUL"
	wireFailed     = "FAILED"
)

func (o Outcome) String() string {
	if o == Passed {
		return "passed"
	}

	return "failed"
}

// UnmarshalJSON maps the service's result strings. Anything other than
// SUCCESSFUL counts as a failure.
func (o *Outcome) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("decoding check result: %w", err)
	}

	if s == wireSuccessful {
		*o = Passed
	} else {
		*o = Failed
	}

	return nil
}

// MarshalJSON writes the service's wire form, so --json output round-trips.
func (o Outcome) MarshalJSON() ([]byte, error) {
	if o == Passed {
		return json.Marshal(wireSuccessful)
	}

	return json.Marshal(wireFailed)
}

// LineKind classifies one line of a check's execution transcript.
type LineKind string

const (
	KindParameter LineKind = "PARAMETER"
	KindInput     LineKind = "INPUT"
	KindOutput    LineKind = "OUTPUT"
	KindOther     LineKind = "OTHER"
	KindError     LineKind = "ERROR"
)

// CheckLine is one line of a check transcript. Unknown kinds are kept
// verbatim.
type CheckLine struct {
	Kind LineKind `json:"type"`
	Text string   `json:"content"`
}

// Check is one automated test executed against a submitted file.
type Check struct {
	Name    string      `json:"check"`
	Outcome Outcome     `json:"result"`
	Output  []CheckLine `json:"output"`
}

// FileResult holds the checks run against one submitted file, in server order.
type FileResult struct {
	File   string  `json:"file"`
	Checks []Check `json:"checks"`
}

// Passed counts the checks of f that passed.
func (f FileResult) Passed() int {
	n := 0

	for _, c := range f.Checks {
		if c.Outcome == Passed {
			n++
		}
	}

	return n
}

// ResultSet maps file names to their checks. It is a slice rather than a
// map so the order of the server's JSON object survives decoding.
type ResultSet []FileResult

// Total returns the number of checks across all files.
func (rs ResultSet) Total() int {
	n := 0
	for _, f := range rs {
		n += len(f.Checks)
	}

	return n
}

// UnmarshalJSON decodes a JSON object of file name -> check list, keeping
// key order.
func (rs *ResultSet) UnmarshalJSON(data []byte) error {
	var out ResultSet

	err := decodeOrderedObject(data, func(key string, raw json.RawMessage) error {
		var checks []Check
		if err := json.Unmarshal(raw, &checks); err != nil {
			return fmt.Errorf("decoding checks for %s: %w", key, err)
		}

		out = append(out, FileResult{File: key, Checks: checks})

		return nil
	})
	if err != nil {
		return err
	}

	*rs = out

	return nil
}

// diagnosticList is the server's diagnostics object decoded in key order.
type diagnosticList []FileDiagnostics

func (d *diagnosticList) UnmarshalJSON(data []byte) error {
	var out diagnosticList

	err := decodeOrderedObject(data, func(key string, raw json.RawMessage) error {
		var lines []string
		if err := json.Unmarshal(raw, &lines); err != nil {
			return fmt.Errorf("decoding diagnostics for %s: %w", key, err)
		}

		out = append(out, FileDiagnostics{File: key, Lines: lines})

		return nil
	})
	if err != nil {
		return err
	}

	*d = out

	return nil
}

// submitResponse is the body of POST /test/zip/{categoryId}.
type submitResponse struct {
	CompilationOutput json.RawMessage `json:"compilationOutput"`
	Diagnostics       diagnosticList  `json:"diagnostics"`
	FileResults       ResultSet       `json:"fileResults"`
}

// compiled reports whether compilationOutput is truthy. The service sends a
// boolean, but a missing or null field must read as "did not compile".
func (r *submitResponse) compiled() bool {
	v := bytes.TrimSpace(r.CompilationOutput)

	switch string(v) {
	case "", "null", "false", "0", `""`:
		return false
	default:
		return true
	}
}

// tokenResponse is the body of both login endpoints.
type tokenResponse struct {
	Token string `json:"token"`
}

// decodeOrderedObject walks a JSON object and calls fn for every member in
// document order. null decodes as an empty object.
func decodeOrderedObject(data []byte, fn func(key string, raw json.RawMessage) error) error {
	dec := json.NewDecoder(bytes.NewReader(data))

	tok, err := dec.Token()
	if err != nil {
		return fmt.Errorf("decoding object: %w", err)
	}

	if tok == nil {
		return nil
	}

	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("decoding object: expected '{', got %v", tok)
	}

	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return fmt.Errorf("decoding object key: %w", err)
		}

		key, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("decoding object: unexpected key %v", keyTok)
		}

		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return fmt.Errorf("decoding value for %s: %w", key, err)
		}

		if err := fn(key, raw); err != nil {
			return err
		}
	}

	if _, err := dec.Token(); err != nil {
		return fmt.Errorf("decoding object end: %w", err)
	}

	return nil
}
