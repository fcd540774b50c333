package config

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
)

// maxLevenshteinDistance is the maximum edit distance for "did you mean?"
// suggestions when unknown config keys are detected.
const maxLevenshteinDistance = 3

// knownKeys lists the valid keys per section.
var knownKeys = map[string][]string{
	"account": {"password", "username"},
	"check":   {"category", "interactive", "list", "scratch_dir", "skip_dirs", "skip_dotfiles", "source"},
	"server":  {"url"},
	"network": {"timeout", "user_agent"},
	"logging": {"log_level"},
	"update":  {"check", "url"},
}

// knownSections is the sorted list of section names for Levenshtein
// matching. Sorted for deterministic suggestions.
var knownSections = func() []string {
	keys := make([]string, 0, len(knownKeys))
	for k := range knownKeys {
		keys = append(keys, k)
	}

	sort.Strings(keys)

	return keys
}()

// checkUnknownKeys inspects TOML metadata for undecoded keys and returns
// an error with "did you mean?" suggestions for each unknown key.
func checkUnknownKeys(md *toml.MetaData) error {
	var errs []error

	reportedSections := make(map[string]bool)

	for _, key := range md.Undecoded() {
		if len(key) == 0 {
			continue
		}

		section := key[0]

		keys, ok := knownKeys[section]
		if !ok {
			// One error per unknown section, not one per key inside it.
			if !reportedSections[section] {
				reportedSections[section] = true
				errs = append(errs, unknownKeyError("config section", section, "", knownSections))
			}

			continue
		}

		if len(key) < 2 {
			continue
		}

		errs = append(errs, unknownKeyError("config key", key[1], section, keys))
	}

	return errors.Join(errs...)
}

func unknownKeyError(kind, name, section string, candidates []string) error {
	qualified := name
	if section != "" {
		qualified = section + "." + name
	}

	suggestion := closestMatch(name, candidates)
	if suggestion == "" {
		return fmt.Errorf("unknown %s %q", kind, qualified)
	}

	if section != "" {
		suggestion = section + "." + suggestion
	}

	return fmt.Errorf("unknown %s %q, did you mean %q?", kind, qualified, suggestion)
}

// closestMatch finds the closest known key by Levenshtein distance.
// Returns empty string if no match is within maxLevenshteinDistance.
func closestMatch(unknown string, known []string) string {
	best := ""
	bestDist := maxLevenshteinDistance + 1

	for _, k := range known {
		d := levenshtein(strings.ToLower(unknown), k)
		if d < bestDist {
			bestDist = d
			best = k
		}
	}

	if bestDist <= maxLevenshteinDistance {
		return best
	}

	return ""
}

// levenshtein computes the edit distance between two strings.
func levenshtein(a, b string) int {
	if a == "" {
		return len(b)
	}

	if b == "" {
		return len(a)
	}

	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)

	for j := range prev {
		prev[j] = j
	}

	for i := range len(a) {
		curr[0] = i + 1

		for j := range len(b) {
			cost := 1
			if a[i] == b[j] {
				cost = 0
			}

			curr[j+1] = min(curr[j]+1, prev[j+1]+1, prev[j]+cost)
		}

		prev, curr = curr, prev
	}

	return prev[len(b)]
}
