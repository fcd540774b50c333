package config

import (
	"fmt"
	"io"
	"strings"
)

// maskedPassword replaces a configured password in rendered output.
const maskedPassword = "********"

// RenderEffective writes the resolved configuration as a TOML-like summary
// to w. This powers the "config show" command. A configured password is
// masked.
func RenderEffective(cfg *Config, w io.Writer) error {
	ew := &errWriter{w: w}

	ew.printf("# Effective configuration\n\n")

	renderAccountSection(ew, &cfg.Account)
	renderCheckSection(ew, &cfg.Check)

	ew.printf("[server]\n")
	ew.printf("  url = %q\n\n", cfg.Server.URL)

	ew.printf("[network]\n")
	ew.printf("  timeout    = %q\n", cfg.Network.Timeout)

	if cfg.Network.UserAgent != "" {
		ew.printf("  user_agent = %q\n", cfg.Network.UserAgent)
	}

	ew.printf("\n[logging]\n")
	ew.printf("  log_level = %q\n\n", cfg.Logging.LogLevel)

	ew.printf("[update]\n")
	ew.printf("  check = %t\n", cfg.Update.Check)

	if cfg.Update.URL != "" {
		ew.printf("  url   = %q\n", cfg.Update.URL)
	}

	return ew.err
}

// errWriter wraps an io.Writer and captures the first write error.
// Subsequent writes after an error are no-ops.
type errWriter struct {
	w   io.Writer
	err error
}

func (ew *errWriter) printf(format string, args ...any) {
	if ew.err != nil {
		return
	}

	_, ew.err = fmt.Fprintf(ew.w, format, args...)
}

func renderAccountSection(ew *errWriter, a *AccountConfig) {
	ew.printf("[account]\n")
	ew.printf("  username = %q\n", a.Username)

	if a.Password != "" {
		ew.printf("  password = %q\n", maskedPassword)
	}

	ew.printf("\n")
}

func renderCheckSection(ew *errWriter, c *CheckConfig) {
	ew.printf("[check]\n")
	ew.printf("  source        = %q\n", c.Source)

	if c.Category > 0 {
		ew.printf("  category      = %d\n", c.Category)
	}

	ew.printf("  list          = %t\n", c.List)
	ew.printf("  interactive   = %t\n", c.Interactive)
	ew.printf("  skip_dotfiles = %t\n", c.SkipDotfiles)

	if len(c.SkipDirs) > 0 {
		ew.printf("  skip_dirs     = [%s]\n", joinQuoted(c.SkipDirs))
	}

	if c.ScratchDir != "" {
		ew.printf("  scratch_dir   = %q\n", c.ScratchDir)
	}

	ew.printf("\n")
}

// joinQuoted formats a string slice as comma-separated quoted values.
func joinQuoted(items []string) string {
	quoted := make([]string, len(items))
	for i, item := range items {
		quoted[i] = fmt.Sprintf("%q", item)
	}

	return strings.Join(quoted, ", ")
}
