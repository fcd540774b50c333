package main

import (
	"log/slog"

	"github.com/codetester/codetester-go/internal/archive"
	"github.com/codetester/codetester-go/internal/tester"
)

// TesterSession bundles the service client, the login session and the
// submission pipeline built from the resolved config. One per command run.
type TesterSession struct {
	Client   *tester.Client
	Session  *tester.Session
	Pipeline *tester.Pipeline
}

// NewTesterSession wires a TesterSession for cc. Credentials come from creds,
// progress messages go to the spinner.
func NewTesterSession(cc *CLIContext, creds tester.CredentialSource) *TesterSession {
	cfg := cc.Cfg

	client := tester.NewClient(cfg.Server.URL, newHTTPClient(cfg), userAgent(cfg), cc.Logger)
	session := tester.NewSession(client, creds, cc.Logger)

	zipper := archive.New(archive.Options{
		SkipDirs:     cfg.Check.SkipDirs,
		SkipDotfiles: cfg.Check.SkipDotfiles,
	})

	opts := []tester.PipelineOption{tester.WithReporter(cc.Spinner)}
	if cfg.Check.ScratchDir != "" {
		opts = append(opts, tester.WithScratchDir(cfg.Check.ScratchDir))
	}

	cc.Logger.Debug("tester session ready",
		slog.String("url", cfg.Server.URL),
		slog.String("user_agent", userAgent(cfg)),
	)

	return &TesterSession{
		Client:   client,
		Session:  session,
		Pipeline: tester.NewPipeline(client, session, zipper, cc.Logger, opts...),
	}
}
