package config

import "os"

// Environment variable names for overrides.
const (
	EnvConfig   = "CODETESTER_CONFIG"
	EnvUsername = "CODETESTER_USERNAME"
	EnvPassword = "CODETESTER_PASSWORD"
	EnvURL      = "CODETESTER_URL"
)

// EnvOverrides holds values derived from environment variables.
type EnvOverrides struct {
	ConfigPath string // CODETESTER_CONFIG: override config file path
	Username   string // CODETESTER_USERNAME
	Password   string // CODETESTER_PASSWORD
	URL        string // CODETESTER_URL: server base URL
}

// ReadEnvOverrides reads environment variables and returns any overrides found.
// This does not modify the Config; Resolve applies the relevant fields.
func ReadEnvOverrides() EnvOverrides {
	return EnvOverrides{
		ConfigPath: os.Getenv(EnvConfig),
		Username:   os.Getenv(EnvUsername),
		Password:   os.Getenv(EnvPassword),
		URL:        os.Getenv(EnvURL),
	}
}
