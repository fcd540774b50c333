// Package update checks GitHub for a newer release of the CLI.
package update

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"golang.org/x/mod/semver"
)

// DefaultURL is the GitHub API endpoint for the latest release.
const DefaultURL = "https://api.github.com/repos/codetester/codetester-go/releases/latest"

// Release is the subset of the GitHub release object the CLI shows.
type Release struct {
	Tag string `json:"tag_name"`
	URL string `json:"html_url"`
}

// Checker queries the latest release.
type Checker struct {
	httpClient *http.Client
	url        string
	logger     *slog.Logger
}

// NewChecker creates a Checker for url (DefaultURL when empty).
func NewChecker(httpClient *http.Client, url string, logger *slog.Logger) *Checker {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	if url == "" {
		url = DefaultURL
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &Checker{httpClient: httpClient, url: url, logger: logger}
}

// Latest fetches the latest published release.
func (c *Checker) Latest(ctx context.Context) (*Release, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, fmt.Errorf("update: creating request: %w", err)
	}

	req.Header.Set("Accept", "application/vnd.github+json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("update: fetching latest release: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("update: fetching latest release: HTTP %d", resp.StatusCode)
	}

	var rel Release
	if err := json.NewDecoder(resp.Body).Decode(&rel); err != nil {
		return nil, fmt.Errorf("update: decoding release: %w", err)
	}

	if rel.Tag == "" {
		return nil, errors.New("update: release has no tag")
	}

	return &rel, nil
}

// Check returns the latest release when it is newer than current, or nil.
func (c *Checker) Check(ctx context.Context, current string) (*Release, error) {
	rel, err := c.Latest(ctx)
	if err != nil {
		return nil, err
	}

	c.logger.Debug("latest release", slog.String("tag", rel.Tag), slog.String("current", current))

	if !Newer(current, rel.Tag) {
		return nil, nil //nolint:nilnil // nil release means up to date
	}

	return rel, nil
}

// Newer reports whether latest is a newer version than current. Both are
// compared as semantic versions when possible; otherwise any difference
// counts as newer.
func Newer(current, latest string) bool {
	cv, lv := canonical(current), canonical(latest)

	if semver.IsValid(cv) && semver.IsValid(lv) {
		return semver.Compare(lv, cv) > 0
	}

	return strings.TrimSpace(current) != strings.TrimSpace(latest)
}

// canonical adds the "v" prefix semver expects.
func canonical(v string) string {
	v = strings.TrimSpace(v)
	if v != "" && !strings.HasPrefix(v, "v") {
		v = "v" + v
	}

	return v
}

// Notice formats the message printed when a newer release exists.
func Notice(rel *Release) string {
	return fmt.Sprintf("There is a new version of the CLI available! (%s)\n%s\n", rel.Tag, rel.URL)
}
