package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Load reads and parses a TOML config file on top of the defaults, validates
// it, and returns the resulting Config. Unknown keys are fatal errors with
// "did you mean?" suggestions.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if err := decodeInto(path, cfg); err != nil {
		return nil, err
	}

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// LoadOrDefault reads a TOML config file if it exists, otherwise returns
// a Config populated with all default values.
func LoadOrDefault(path string) (*Config, error) {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return DefaultConfig(), nil
	}

	return Load(path)
}

// decodeInto decodes path over cfg. Keys the file does not set keep the
// value cfg already holds, which is what makes file layering work.
func decodeInto(path string, cfg *Config) error {
	md, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return fmt.Errorf("parsing config file %s: %w", path, err)
	}

	if err := checkUnknownKeys(&md); err != nil {
		return fmt.Errorf("config file %s: %w", path, err)
	}

	return nil
}

// Resolve loads configuration and applies the override chain:
// defaults -> user config file -> project config file in workDir ->
// environment variables -> CLI flags. Missing files are skipped. The final
// result is validated once, after every layer is applied.
func Resolve(env EnvOverrides, cli CLIOverrides, workDir string, logger *slog.Logger) (*Config, error) {
	if logger == nil {
		logger = slog.Default()
	}

	// 1. Config path: CLI > env > default
	cfgPath := DefaultConfigPath()
	if env.ConfigPath != "" {
		cfgPath = env.ConfigPath
	}

	if cli.ConfigPath != "" {
		cfgPath = cli.ConfigPath
	}

	cfg := DefaultConfig()

	// 2. User file. An explicitly named file must exist.
	explicit := cli.ConfigPath != "" || env.ConfigPath != ""
	if err := layerFile(cfg, cfgPath, explicit, logger); err != nil {
		return nil, err
	}

	// 3. Project file, unless it is the same file as above.
	projectPath := ProjectConfigPath(workDir)
	if projectPath != "" && !samePath(projectPath, cfgPath) {
		if err := layerFile(cfg, projectPath, false, logger); err != nil {
			return nil, err
		}
	}

	// 4. Environment
	applyEnv(cfg, env)

	// 5. CLI flags (nil = not specified)
	applyCLI(cfg, cli)

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	return cfg, nil
}

func layerFile(cfg *Config, path string, required bool, logger *slog.Logger) error {
	if path == "" {
		return nil
	}

	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) && !required {
			logger.Debug("config file not found, skipping", slog.String("path", path))
			return nil
		}

		return fmt.Errorf("reading config file: %w", err)
	}

	if err := decodeInto(path, cfg); err != nil {
		return err
	}

	logger.Debug("loaded config file", slog.String("path", path))

	return nil
}

func applyEnv(cfg *Config, env EnvOverrides) {
	if env.Username != "" {
		cfg.Account.Username = env.Username
	}

	if env.Password != "" {
		cfg.Account.Password = env.Password
	}

	if env.URL != "" {
		cfg.Server.URL = env.URL
	}
}

func applyCLI(cfg *Config, cli CLIOverrides) {
	if cli.Username != nil {
		cfg.Account.Username = *cli.Username
	}

	if cli.Password != nil {
		cfg.Account.Password = *cli.Password
	}

	if cli.Source != nil {
		cfg.Check.Source = *cli.Source
	}

	if cli.Category != nil {
		cfg.Check.Category = *cli.Category
	}

	if cli.List != nil {
		cfg.Check.List = *cli.List
	}

	if cli.Interactive != nil {
		cfg.Check.Interactive = *cli.Interactive
	}

	if cli.URL != nil {
		cfg.Server.URL = *cli.URL
	}
}

func samePath(a, b string) bool {
	absA, errA := filepath.Abs(a)
	absB, errB := filepath.Abs(b)

	if errA != nil || errB != nil {
		return a == b
	}

	return absA == absB
}
