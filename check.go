package main

import (
	"context"
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/codetester/codetester-go/internal/browser"
	"github.com/codetester/codetester-go/internal/tester"
)

func newCheckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Upload the source folder and run a check category against it",
		Long: `Zip the source folder, upload it to the code tester and print the results
of the selected check category.

Missing credentials, source folder and category are asked for.

Examples:
  codetester check --src src -c 3
  codetester check --src src -c 3 --list
  codetester check --src src -c 3 --interactive`,
		Args: cobra.NoArgs,
		RunE: runCheck,
	}
}

func runCheck(cmd *cobra.Command, _ []string) error {
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

	return checkCode(ctx, cc, ts, p)
}

// login asks for missing credentials, then acquires both tokens while the
// spinner runs. The spinner is left running on success.
func login(ctx context.Context, cc *CLIContext, ts *TesterSession, creds tester.CredentialSource) error {
	c, err := creds.Credentials(ctx)
	if err != nil {
		return err
	}

	cc.Spinner.Update("Logging in as " + color.YellowString(c.Username) + "...")
	cc.Spinner.Start()

	if err := ts.Session.Login(ctx); err != nil {
		cc.Spinner.Stop()
		return fmt.Errorf("logging in: %w", err)
	}

	cc.persist(color.GreenString("Login successful!"))

	return nil
}

// checkCode runs one submission and renders it: summary or JSON, then the
// browser when requested.
func checkCode(ctx context.Context, cc *CLIContext, ts *TesterSession, p *Prompter) error {
	source, err := promptSource(p, cc.Cfg.Check.Source)
	if err != nil {
		return err
	}

	categoryID, err := selectCategory(ctx, cc, ts, p)
	if err != nil {
		return err
	}

	results, err := ts.Pipeline.Submit(ctx, source, categoryID)
	cc.Spinner.Stop()

	if err != nil {
		return err
	}

	if cc.Flags.JSON {
		return printJSON(cc.Out, results)
	}

	printResults(cc.Out, results, cc.Cfg.Check.List)
	printFooter(cc.Out, cc.Cfg.Server.URL)

	if !cc.Cfg.Check.Interactive {
		return nil
	}

	return browser.New(results, p, cc.Out).Run()
}

// selectCategory returns the configured category or asks for one from the
// categories the service offers.
func selectCategory(ctx context.Context, cc *CLIContext, ts *TesterSession, p *Prompter) (int, error) {
	if cc.Cfg.Check.Category > 0 {
		return cc.Cfg.Check.Category, nil
	}

	cc.Spinner.Update("Fetching categories...")

	categories, err := ts.Pipeline.Categories(ctx)
	if err != nil {
		return 0, fmt.Errorf("listing categories: %w", err)
	}

	var id int

	err = cc.Spinner.Paused(func() error {
		var perr error
		id, perr = promptCategory(p, cc.Err, categories)

		return perr
	})

	return id, err
}

// persist prints message above the spinner unless output is quiet or JSON.
func (cc *CLIContext) persist(message string) {
	if cc.Flags.Quiet || cc.Flags.JSON {
		return
	}

	cc.Spinner.Persist(message)
}
