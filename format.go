package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/fatih/color"

	"github.com/codetester/codetester-go/internal/tester"
)

// submitCheckPath is the web page where users contribute new checks.
const submitCheckPath = "/#/submit-check"

var (
	headingStyle = color.New(color.FgCyan, color.Bold)
	fileStyle    = color.New(color.FgYellow, color.Bold)
	passStyle    = color.New(color.FgGreen, color.Bold)
	failStyle    = color.New(color.FgRed, color.Bold)
	boldStyle    = color.New(color.Bold)
)

// Table cell styles. lipgloss measures styled cells correctly, color does
// not, so the table uses lipgloss throughout.
var (
	passedCell  = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	failedCell  = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	tableBorder = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

// printBanner prints the greeting shown before interactive output.
func printBanner(cc *CLIContext) {
	if cc.Flags.Quiet || cc.Flags.JSON {
		return
	}

	w := cc.Err

	fmt.Fprintf(w, "codetester %s\n", version)
	color.New(color.FgCyan).Fprint(w, "SimpleCodeTester by ")
	color.New(color.FgYellow, color.Bold).Fprintln(w, "@I-Al-Istannen")
	fmt.Fprint(w, "See cli arguments by using ")
	color.New(color.Italic).Fprintln(w, "--help")
	fmt.Fprintln(w)
}

// printResults writes the per-file summary. With list set every check is
// shown in a table.
func printResults(w io.Writer, results tester.ResultSet, list bool) {
	headingStyle.Fprintln(w, "\n     TEST RESULTS")
	fmt.Fprintln(w)

	for _, f := range results {
		fileStyle.Fprintln(w, f.File)

		if list && len(f.Checks) > 0 {
			fmt.Fprintln(w, checkTable(f))
		}

		fmt.Fprintln(w, summaryLine(f))
		fmt.Fprintln(w)
	}
}

// summaryLine is "All N tests successful." or "N tests successful, M tests
// failed.", indented by two spaces.
func summaryLine(f tester.FileResult) string {
	passed := f.Passed()
	failed := len(f.Checks) - passed

	if failed == 0 {
		return passStyle.Sprintf("  All %d tests successful.", passed)
	}

	return passStyle.Sprintf("  %d tests successful", passed) +
		boldStyle.Sprint(", ") +
		failStyle.Sprintf("%d tests failed.", failed)
}

// checkTable renders the checks of one file with their outcome in a rounded
// border table.
func checkTable(f tester.FileResult) string {
	rows := make([][]string, 0, len(f.Checks))

	for _, c := range f.Checks {
		outcome := failedCell.Render("failed")
		if c.Outcome == tester.Passed {
			outcome = passedCell.Render("passed")
		}

		rows = append(rows, []string{outcome, c.Name})
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(tableBorder).
		StyleFunc(func(_, _ int) lipgloss.Style {
			return lipgloss.NewStyle().Padding(0, 1)
		}).
		Rows(rows...)

	return t.Render()
}

// printFooter asks users to contribute checks.
func printFooter(w io.Writer, baseURL string) {
	fmt.Fprintln(w, "Improve the code tester by writing more tests :)")
	fmt.Fprintln(w, strings.TrimRight(baseURL, "/")+submitCheckPath)
}

// printCategories lists categories as "(id) name".
func printCategories(w io.Writer, categories []tester.Category) {
	headingStyle.Fprintln(w, "Categories")
	fmt.Fprintln(w)

	for _, c := range categories {
		fmt.Fprintf(w, "(%d) %s\n", c.ID, c.Name)
	}

	fmt.Fprintln(w)
}

// printCompilationError prints the compiler diagnostics per file.
func printCompilationError(w io.Writer, err *tester.CompilationError) {
	failStyle.Fprintln(w, "Compilation failed:")

	for _, d := range err.Diagnostics {
		fileStyle.Fprintln(w, d.File)

		for _, line := range d.Lines {
			fmt.Fprintf(w, "  %s\n", line)
		}
	}
}

// printJSON writes v as indented JSON.
func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")

	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encoding JSON output: %w", err)
	}

	return nil
}
