package config

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_UnknownKey_InSection(t *testing.T) {
	path := writeTestConfig(t, "[check]\nsourse = \"src\"\n")
	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown config key "check.sourse"`)
	assert.Contains(t, err.Error(), `did you mean "check.source"`)
}

func TestLoad_UnknownKey_NoSuggestion(t *testing.T) {
	path := writeTestConfig(t, "[server]\ncompletely_unrelated = 1\n")
	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown config key "server.completely_unrelated"`)
	assert.NotContains(t, err.Error(), "did you mean")
}

func TestLoad_UnknownSection(t *testing.T) {
	path := writeTestConfig(t, "[acount]\nusername = \"student\"\npassword = \"x\"\n")
	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown config section "acount", did you mean "account"?`)

	// Reported once, not once per key in the section.
	assert.Equal(t, 1, strings.Count(err.Error(), "acount"))
}

func TestLoad_UnknownKey_MultipleReported(t *testing.T) {
	path := writeTestConfig(t, "[network]\ntimout = \"5s\"\nuseragent = \"x\"\n")
	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "network.timeout")
	assert.Contains(t, err.Error(), "network.user_agent")
}

func TestClosestMatch(t *testing.T) {
	assert.Equal(t, "category", closestMatch("categroy", knownKeys["check"]))
	assert.Equal(t, "log_level", closestMatch("LOG_LEVEL", knownKeys["logging"]))
	assert.Empty(t, closestMatch("zzzzzzzzzz", knownKeys["check"]))
}

func TestLevenshtein(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"", "", 0},
		{"abc", "", 3},
		{"", "abc", 3},
		{"kitten", "sitting", 3},
		{"url", "url", 0},
		{"timout", "timeout", 1},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, levenshtein(tt.a, tt.b), "%q vs %q", tt.a, tt.b)
	}
}
