// Package config implements TOML configuration loading, validation, and
// platform-specific path resolution for codetester. Values are layered in
// the order defaults -> user config file -> project config file ->
// environment -> CLI flags, each layer overriding only what it sets.
package config

// Config is the configuration parsed from the TOML files. Sections map
// one-to-one to TOML tables.
type Config struct {
	Account AccountConfig `toml:"account" json:"account"`
	Check   CheckConfig   `toml:"check" json:"check"`
	Server  ServerConfig  `toml:"server" json:"server"`
	Network NetworkConfig `toml:"network" json:"network"`
	Logging LoggingConfig `toml:"logging" json:"logging"`
	Update  UpdateConfig  `toml:"update" json:"update"`
}

// AccountConfig holds the service credentials. Empty values are prompted for.
type AccountConfig struct {
	Username string `toml:"username" json:"username"`
	Password string `toml:"password" json:"-"`
}

// CheckConfig controls what gets submitted and how results are shown.
// A zero Category means "ask".
type CheckConfig struct {
	Source       string   `toml:"source" json:"source"`
	Category     int      `toml:"category" json:"category"`
	List         bool     `toml:"list" json:"list"`
	Interactive  bool     `toml:"interactive" json:"interactive"`
	SkipDirs     []string `toml:"skip_dirs" json:"skip_dirs"`
	SkipDotfiles bool     `toml:"skip_dotfiles" json:"skip_dotfiles"`
	ScratchDir   string   `toml:"scratch_dir" json:"scratch_dir"`
}

// ServerConfig points the client at a code tester instance.
type ServerConfig struct {
	URL string `toml:"url" json:"url"`
}

// NetworkConfig controls HTTP client behavior. Timeout bounds a whole
// request, including the server-side test run of a submission.
type NetworkConfig struct {
	Timeout   string `toml:"timeout" json:"timeout"`
	UserAgent string `toml:"user_agent" json:"user_agent"`
}

// LoggingConfig sets the baseline log level; CLI flags adjust it.
type LoggingConfig struct {
	LogLevel string `toml:"log_level" json:"log_level"`
}

// UpdateConfig controls the release check run after each command.
type UpdateConfig struct {
	Check bool   `toml:"check" json:"check"`
	URL   string `toml:"url" json:"url"`
}

// CLIOverrides holds values from CLI flags. Pointer fields distinguish "not
// specified" (nil) from "explicitly set to the zero value".
type CLIOverrides struct {
	ConfigPath  string // --config flag (empty = use default)
	Username    *string
	Password    *string
	Source      *string
	Category    *int
	List        *bool
	Interactive *bool
	URL         *string
}
