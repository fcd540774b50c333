package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

func newListChecksCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "listchecks",
		Aliases: []string{"categories"},
		Short:   "List the check categories",
		Args:    cobra.NoArgs,
		RunE:    runListChecks,
	}
}

func runListChecks(cmd *cobra.Command, _ []string) error {
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

	return listCategories(ctx, cc, ts)
}

func listCategories(ctx context.Context, cc *CLIContext, ts *TesterSession) error {
	cc.Spinner.Update("Fetching categories...")

	categories, err := ts.Pipeline.Categories(ctx)
	cc.Spinner.Stop()

	if err != nil {
		return fmt.Errorf("listing categories: %w", err)
	}

	if cc.Flags.JSON {
		return printJSON(cc.Out, categories)
	}

	printCategories(cc.Out, categories)

	return nil
}
