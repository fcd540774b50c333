package config

// Default values for configuration options. These are layer 0 of the
// override chain.
const (
	DefaultServerURL = "https://codetester.ialistannen.de"
	defaultTimeout   = "120s"
	defaultLogLevel  = "warn"
)

// DefaultConfig returns a Config populated with all default values.
// This is used both as the starting point for TOML decoding (so unset
// fields retain defaults) and as the fallback when no config file exists.
func DefaultConfig() *Config {
	return &Config{
		Server:  ServerConfig{URL: DefaultServerURL},
		Network: NetworkConfig{Timeout: defaultTimeout},
		Logging: LoggingConfig{LogLevel: defaultLogLevel},
		Update:  UpdateConfig{Check: true},
	}
}
