package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"
)

// minTimeout is the lowest accepted network.timeout.
const minTimeout = 1 * time.Second

// Validate checks all configuration values and returns all errors found.
// It accumulates every error rather than stopping at the first, so users
// see a complete report and can fix all issues in one pass.
func Validate(cfg *Config) error {
	var errs []error

	errs = append(errs, validateCheck(&cfg.Check)...)
	errs = append(errs, validateServer(&cfg.Server)...)
	errs = append(errs, validateNetwork(&cfg.Network)...)
	errs = append(errs, validateLogging(&cfg.Logging)...)
	errs = append(errs, validateUpdate(&cfg.Update)...)

	return errors.Join(errs...)
}

func validateCheck(c *CheckConfig) []error {
	var errs []error

	if c.Category < 0 {
		errs = append(errs, fmt.Errorf("check.category: must be a positive category id, got %d", c.Category))
	}

	for _, d := range c.SkipDirs {
		if d == "" || strings.ContainsAny(d, `/\`) {
			errs = append(errs, fmt.Errorf("check.skip_dirs: %q must be a plain directory name", d))
		}
	}

	return errs
}

func validateServer(s *ServerConfig) []error {
	if err := validateHTTPURL(s.URL); err != nil {
		return []error{fmt.Errorf("server.url: %w", err)}
	}

	return nil
}

func validateNetwork(n *NetworkConfig) []error {
	d, err := time.ParseDuration(n.Timeout)
	if err != nil {
		return []error{fmt.Errorf("network.timeout: invalid duration %q", n.Timeout)}
	}

	if d < minTimeout {
		return []error{fmt.Errorf("network.timeout: must be >= %s, got %s", minTimeout, d)}
	}

	return nil
}

var validLogLevels = map[string]bool{
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

func validateLogging(l *LoggingConfig) []error {
	if !validLogLevels[l.LogLevel] {
		return []error{fmt.Errorf("logging.log_level: must be one of debug, info, warn, error; got %q", l.LogLevel)}
	}

	return nil
}

func validateUpdate(u *UpdateConfig) []error {
	if u.URL == "" {
		return nil
	}

	if err := validateHTTPURL(u.URL); err != nil {
		return []error{fmt.Errorf("update.url: %w", err)}
	}

	return nil
}

func validateHTTPURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid URL %q", raw)
	}

	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%q must use http or https", raw)
	}

	if u.Host == "" {
		return fmt.Errorf("%q has no host", raw)
	}

	return nil
}

// TimeoutDuration returns the parsed network timeout. It must only be called
// on a validated config.
func (n NetworkConfig) TimeoutDuration() time.Duration {
	d, err := time.ParseDuration(n.Timeout)
	if err != nil {
		return 0
	}

	return d
}
