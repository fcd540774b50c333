// Package browser implements the interactive drill-down over a finished
// submission: the user picks a check by its flattened id and gets the
// check's execution transcript.
package browser

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/fatih/color"

	"github.com/codetester/codetester-go/internal/tester"
)

// State is a state of the browser loop.
type State int

const (
	AwaitingSelection State = iota
	ShowingDetail
	Terminal
)

func (s State) String() string {
	switch s {
	case AwaitingSelection:
		return "awaiting-selection"
	case ShowingDetail:
		return "showing-detail"
	case Terminal:
		return "terminal"
	default:
		return "unknown"
	}
}

// Prompt is shown before every selection.
const Prompt = "Select a check to see the input/output for, or press (q) to quit: "

// LineReader reads one line of user input after showing prompt. io.EOF ends
// the browser like "q" does.
type LineReader interface {
	ReadLine(prompt string) (string, error)
}

// Browser is the selection state machine over one result set. It only reads
// the results.
type Browser struct {
	results tester.ResultSet
	in      LineReader
	out     io.Writer

	state    State
	selected int
}

// New creates a browser in AwaitingSelection.
func New(results tester.ResultSet, in LineReader, out io.Writer) *Browser {
	return &Browser{
		results: results,
		in:      in,
		out:     out,
		state:   AwaitingSelection,
	}
}

// State returns the current state.
func (b *Browser) State() State {
	return b.state
}

// Run prints the check index and loops until the user quits or input ends.
func (b *Browser) Run() error {
	PrintIndex(b.out, b.results)

	for b.state != Terminal {
		switch b.state {
		case AwaitingSelection:
			line, err := b.in.ReadLine(Prompt)
			if errors.Is(err, io.EOF) {
				b.state = Terminal
				continue
			}

			if err != nil {
				return fmt.Errorf("reading selection: %w", err)
			}

			b.Step(line)
		case ShowingDetail:
			b.renderSelected()
			b.state = AwaitingSelection
		}
	}

	return nil
}

// Step applies one line of input in AwaitingSelection and returns the new
// state. Input in any other state is ignored.
func (b *Browser) Step(input string) State {
	if b.state != AwaitingSelection {
		return b.state
	}

	input = strings.TrimSpace(input)

	if strings.EqualFold(input, "q") {
		b.state = Terminal
		return b.state
	}

	id, err := strconv.Atoi(input)
	if err != nil {
		// Digits too large for an int are still a number out of range.
		if errors.Is(err, strconv.ErrRange) {
			b.invalidID(input)
		}

		return b.state
	}

	if _, _, ok := Resolve(b.results, id); !ok {
		b.invalidID(input)
		return b.state
	}

	b.selected = id
	b.state = ShowingDetail

	return b.state
}

func (b *Browser) invalidID(input string) {
	color.New(color.FgRed).Fprintf(b.out, "Invalid check id %s. Pick a number between 1 and %d.\n", input, b.results.Total())
}

// Resolve maps a 1-based flattened check id to its file and check. The
// first file's checks are ids 1..n1, the second file's n1+1..n1+n2, and so
// on in result order.
func Resolve(results tester.ResultSet, id int) (tester.FileResult, tester.Check, bool) {
	if id < 1 {
		return tester.FileResult{}, tester.Check{}, false
	}

	start := 1

	for _, f := range results {
		end := start + len(f.Checks)
		if id < end {
			return f, f.Checks[id-start], true
		}

		start = end
	}

	return tester.FileResult{}, tester.Check{}, false
}

// PrintIndex lists every check with its flattened id, grouped by file.
func PrintIndex(w io.Writer, results tester.ResultSet) {
	header := color.New(color.FgYellow, color.Bold)
	pass := color.New(color.FgGreen)
	fail := color.New(color.FgRed)

	id := 1

	for _, f := range results {
		header.Fprintf(w, "%s\n", f.File)

		for _, c := range f.Checks {
			if c.Outcome == tester.Passed {
				pass.Fprintf(w, "  [%d] ✓ ", id)
			} else {
				fail.Fprintf(w, "  [%d] ✕ ", id)
			}

			fmt.Fprintln(w, c.Name)

			id++
		}
	}

	fmt.Fprintln(w)
}

func (b *Browser) renderSelected() {
	f, c, ok := Resolve(b.results, b.selected)
	if !ok {
		return
	}

	title := color.New(color.FgCyan, color.Bold)
	title.Fprintf(b.out, "\n%s: %s (%s)\n\n", f.File, c.Name, c.Outcome)

	RenderLines(b.out, c.Output)
	fmt.Fprintln(b.out)
}

// Styles per transcript line kind.
var (
	parameterStyle = color.New(color.FgHiBlack, color.Italic)
	promptStyle    = color.New(color.FgHiBlack)
	inputStyle     = color.New(color.FgHiGreen)
	outputStyle    = color.New(color.FgGreen)
	otherStyle     = color.New(color.FgHiBlue)
	errorStyle     = color.New(color.FgRed)
	unknownStyle   = color.New(color.FgHiCyan)
)

// RenderLines writes a check transcript, one styled line per entry.
func RenderLines(w io.Writer, lines []tester.CheckLine) {
	for _, line := range lines {
		switch line.Kind {
		case tester.KindParameter:
			parameterStyle.Fprintf(w, "$$ %s\n", line.Text)
		case tester.KindInput:
			promptStyle.Fprint(w, "> ")
			inputStyle.Fprintf(w, "%s\n", line.Text)
		case tester.KindOutput:
			outputStyle.Fprintf(w, "  %s\n", line.Text)
		case tester.KindOther:
			otherStyle.Fprintf(w, "%s\n", line.Text)
		case tester.KindError:
			errorStyle.Fprintf(w, "  %s\n", line.Text)
		default:
			unknownStyle.Fprintf(w, "%s [[%s]]\n", line.Text, line.Kind)
		}
	}
}
