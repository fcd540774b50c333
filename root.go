package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"

	"github.com/spf13/cobra"

	"github.com/codetester/codetester-go/internal/config"
	"github.com/codetester/codetester-go/internal/progress"
)

// version is set at build time via ldflags.
var version = "dev"

// devVersion marks a build without a release version.
const devVersion = "dev"

// Global persistent flags, bound in newRootCmd().
var (
	flagConfigPath    string
	flagUsername      string
	flagPassword      string
	flagSource        string
	flagCategory      int
	flagList          bool
	flagInteractive   bool
	flagURL           string
	flagJSON          bool
	flagVerbose       bool
	flagDebug         bool
	flagQuiet         bool
	flagNoUpdateCheck bool
)

// skipConfigAnnotation marks commands that run without loading the config
// files (version).
const skipConfigAnnotation = "skipConfig"

// CLIFlags is a snapshot of the output-related global flags.
type CLIFlags struct {
	ConfigPath    string
	JSON          bool
	Verbose       bool
	Debug         bool
	Quiet         bool
	NoUpdateCheck bool
}

// CLIContext carries everything a command needs. It is built once in the
// root PersistentPreRunE and stored in the command context.
type CLIContext struct {
	Flags   CLIFlags
	Cfg     *config.Config // nil for skipConfig commands
	Logger  *slog.Logger
	Spinner *progress.Spinner

	// Foreground tracks prompts blocked on stdin for the signal handler.
	Foreground *foreground

	In  io.Reader
	Out io.Writer
	Err io.Writer
}

// Statusf prints a status message to stderr unless quiet or JSON output is
// requested.
func (cc *CLIContext) Statusf(format string, args ...any) {
	if cc.Flags.Quiet || cc.Flags.JSON {
		return
	}

	fmt.Fprintf(cc.Err, format, args...)
}

type cliContextKey struct{}

func withCLIContext(ctx context.Context, cc *CLIContext) context.Context {
	return context.WithValue(ctx, cliContextKey{}, cc)
}

func cliContextFrom(ctx context.Context) *CLIContext {
	cc, _ := ctx.Value(cliContextKey{}).(*CLIContext)
	return cc
}

// mustCLIContext returns the CLIContext stored by the root pre-run. Commands
// only run after it, so a missing context is a programming error.
func mustCLIContext(ctx context.Context) *CLIContext {
	cc := cliContextFrom(ctx)
	if cc == nil {
		panic("BUG: CLIContext not initialized; PersistentPreRunE did not run")
	}

	return cc
}

// newRootCmd builds and returns the fully-assembled root command with all
// subcommands registered. Called once from main().
func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "codetester",
		Short: "Command-line client for the SimpleCodeTester service",
		Long: `Upload a source folder to the code tester, run a check category against
it and print the results.

Without a subcommand, codetester logs in and asks what to do.`,
		Version: version,
		// Silence Cobra's default error/usage printing; main handles it.
		SilenceErrors:     true,
		SilenceUsage:      true,
		PersistentPreRunE: setupCLIContext,
		PersistentPostRun: func(cmd *cobra.Command, _ []string) {
			notifyUpdate(cmd.Context(), mustCLIContext(cmd.Context()))
		},
		RunE: runInteractive,
	}

	pf := cmd.PersistentFlags()
	pf.StringVarP(&flagUsername, "username", "u", "", "login username")
	pf.StringVarP(&flagPassword, "password", "p", "", "login password")
	pf.StringVar(&flagSource, "src", "", "source folder to upload")
	pf.IntVarP(&flagCategory, "check", "c", 0, "check category id to run")
	pf.BoolVarP(&flagList, "list", "l", false, "list the outcome of every check")
	pf.BoolVarP(&flagInteractive, "interactive", "i", false, "browse check transcripts after the run")
	pf.StringVar(&flagConfigPath, "config", "", "config file path")
	pf.StringVar(&flagURL, "url", "", "code tester base URL")
	pf.BoolVar(&flagJSON, "json", false, "output in JSON format")
	pf.BoolVarP(&flagVerbose, "verbose", "v", false, "enable info logging")
	pf.BoolVar(&flagDebug, "debug", false, "enable debug logging (HTTP requests)")
	pf.BoolVarP(&flagQuiet, "quiet", "q", false, "suppress informational output")
	pf.BoolVar(&flagNoUpdateCheck, "no-update-check", false, "do not check for a newer release")

	cmd.AddCommand(newCheckCmd())
	cmd.AddCommand(newListChecksCmd())
	cmd.AddCommand(newConfigCmd())
	cmd.AddCommand(newVersionCmd())

	return cmd
}

// setupCLIContext resolves configuration, builds the logger and spinner and
// stores them in the command context.
func setupCLIContext(cmd *cobra.Command, _ []string) error {
	flags := CLIFlags{
		ConfigPath:    flagConfigPath,
		JSON:          flagJSON,
		Verbose:       flagVerbose,
		Debug:         flagDebug,
		Quiet:         flagQuiet,
		NoUpdateCheck: flagNoUpdateCheck,
	}

	cc := &CLIContext{
		Flags:  flags,
		Logger: bootstrapLogger(),
		In:     cmd.InOrStdin(),
		Out:    cmd.OutOrStdout(),
		Err:    cmd.ErrOrStderr(),
	}

	if cmd.Annotations[skipConfigAnnotation] != "true" {
		cfg, err := loadConfig(cmd, cc.Logger)
		if err != nil {
			return err
		}

		cc.Cfg = cfg
		cc.Logger = buildLogger(cfg)
	}

	cc.Spinner = progress.New(cc.Err)
	cc.Foreground = &foreground{}

	ctx := shutdownContext(cmd.Context(), cc.Spinner, cc.Foreground, cc.Logger)
	cmd.SetContext(withCLIContext(ctx, cc))

	return nil
}

// loadConfig resolves the effective configuration from the override chain.
// Only flags the user explicitly set are passed on as overrides.
func loadConfig(cmd *cobra.Command, logger *slog.Logger) (*config.Config, error) {
	cli := config.CLIOverrides{ConfigPath: flagConfigPath}
	flags := cmd.Flags()

	if flags.Changed("username") {
		cli.Username = &flagUsername
	}

	if flags.Changed("password") {
		cli.Password = &flagPassword
	}

	if flags.Changed("src") {
		cli.Source = &flagSource
	}

	if flags.Changed("check") {
		cli.Category = &flagCategory
	}

	if flags.Changed("list") {
		cli.List = &flagList
	}

	if flags.Changed("interactive") {
		cli.Interactive = &flagInteractive
	}

	if flags.Changed("url") {
		cli.URL = &flagURL
	}

	wd, err := os.Getwd()
	if err != nil {
		logger.Debug("cannot determine working directory, skipping project config", slog.String("error", err.Error()))
		wd = ""
	}

	cfg, err := config.Resolve(config.ReadEnvOverrides(), cli, wd, logger)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	return cfg, nil
}

// flagLevel applies the CLI verbosity flags on top of base. --quiet wins
// over --debug, which wins over --verbose.
func flagLevel(base slog.Level) slog.Level {
	level := base

	if flagVerbose {
		level = slog.LevelInfo
	}

	if flagDebug {
		level = slog.LevelDebug
	}

	if flagQuiet {
		level = slog.LevelError
	}

	return level
}

// bootstrapLogger creates a logger from the CLI flags alone, used while the
// config is still being loaded.
func bootstrapLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: flagLevel(slog.LevelWarn)}))
}

// buildLogger creates an slog.Logger from the config log level, adjusted by
// the CLI flags.
func buildLogger(cfg *config.Config) *slog.Logger {
	level := slog.LevelWarn

	if cfg != nil {
		switch cfg.Logging.LogLevel {
		case "debug":
			level = slog.LevelDebug
		case "info":
			level = slog.LevelInfo
		case "error":
			level = slog.LevelError
		}
	}

	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: flagLevel(level)}))
}

// newHTTPClient returns the HTTP client for service and release requests.
func newHTTPClient(cfg *config.Config) *http.Client {
	return &http.Client{Timeout: cfg.Network.TimeoutDuration()}
}

// userAgent returns the configured User-Agent or the versioned default.
func userAgent(cfg *config.Config) string {
	if cfg.Network.UserAgent != "" {
		return cfg.Network.UserAgent
	}

	return "codetester-go/" + version
}
