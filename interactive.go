package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

// menuEntry is one operation offered by the interactive menu.
type menuEntry struct {
	label string
	run   func(ctx context.Context, cc *CLIContext, ts *TesterSession, p *Prompter) error
}

var menuEntries = []menuEntry{
	{label: "Run checks", run: checkCode},
	{label: "List categories", run: func(ctx context.Context, cc *CLIContext, ts *TesterSession, _ *Prompter) error {
		return listCategories(ctx, cc, ts)
	}},
}

// runInteractive is the root command: log in, then let the user pick an
// operation.
func runInteractive(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	cc := mustCLIContext(ctx)
	defer cc.Spinner.Stop()

	p := NewPrompter(cc.In, cc.Err, cc.Spinner, cc.Foreground)
	creds := newCredentialPrompt(p, cc.Cfg.Account)
	ts := NewTesterSession(cc, creds)

	printBanner(cc)

	if err := login(ctx, cc, ts, creds); err != nil {
		return err
	}

	var entry *menuEntry

	err := cc.Spinner.Paused(func() error {
		var merr error
		entry, merr = selectOperation(p, cc.Err)

		return merr
	})
	if err != nil {
		return err
	}

	if entry == nil {
		return nil
	}

	return entry.run(ctx, cc, ts, p)
}

// selectOperation shows the menu until a valid number is entered. "q" or the
// end of input returns nil without error.
func selectOperation(p *Prompter, out io.Writer) (*menuEntry, error) {
	headingStyle.Fprintln(out, "Please select your operation:")

	for i, e := range menuEntries {
		fmt.Fprintf(out, "  (%d) %s\n", i+1, e.label)
	}

	for {
		answer, err := p.ReadLine("> ")
		if errors.Is(err, io.EOF) {
			return nil, nil
		}

		if err != nil {
			return nil, fmt.Errorf("reading selection: %w", err)
		}

		answer = strings.TrimSpace(answer)
		if strings.EqualFold(answer, "q") {
			return nil, nil
		}

		if n, err := strconv.Atoi(answer); err == nil && n >= 1 && n <= len(menuEntries) {
			return &menuEntries[n-1], nil
		}

		color.New(color.FgRed).Fprintf(out, "Invalid selection %q. Enter a number between 1 and %d, or q to quit.\n",
			answer, len(menuEntries))
	}
}
