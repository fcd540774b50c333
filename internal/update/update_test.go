package update

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewer(t *testing.T) {
	tests := []struct {
		current, latest string
		want            bool
	}{
		{"v1.0.0", "v1.0.1", true},
		{"1.0.0", "v1.1.0", true},
		{"v1.2.0", "v1.2.0", false},
		{"v2.0.0", "v1.9.9", false},
		{"v1.0.0", "v1.0.0-rc.1", false},
		{"nightly", "v1.0.0", true},
		{"nightly", "nightly", false},
	}

	for _, tt := range tests {
		t.Run(tt.current+"->"+tt.latest, func(t *testing.T) {
			assert.Equal(t, tt.want, Newer(tt.current, tt.latest))
		})
	}
}

func newReleaseServer(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "application/vnd.github+json", r.Header.Get("Accept"))
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)

	return srv
}

func TestCheck_NewerRelease(t *testing.T) {
	srv := newReleaseServer(t, http.StatusOK,
		`{"tag_name":"v1.3.0","html_url":"https://github.com/codetester/codetester-go/releases/tag/v1.3.0"}`)

	rel, err := NewChecker(srv.Client(), srv.URL, nil).Check(context.Background(), "v1.2.0")
	require.NoError(t, err)
	require.NotNil(t, rel)
	assert.Equal(t, "v1.3.0", rel.Tag)
	assert.Contains(t, Notice(rel), "(v1.3.0)")
	assert.Contains(t, Notice(rel), rel.URL)
}

func TestCheck_UpToDate(t *testing.T) {
	srv := newReleaseServer(t, http.StatusOK, `{"tag_name":"v1.2.0","html_url":"x"}`)

	rel, err := NewChecker(srv.Client(), srv.URL, nil).Check(context.Background(), "v1.2.0")
	require.NoError(t, err)
	assert.Nil(t, rel)
}

func TestCheck_Failures(t *testing.T) {
	for name, tc := range map[string]struct {
		status int
		body   string
	}{
		"not found": {http.StatusNotFound, `{"message":"Not Found"}`},
		"bad json":  {http.StatusOK, `<html>`},
		"no tag":    {http.StatusOK, `{"html_url":"x"}`},
	} {
		t.Run(name, func(t *testing.T) {
			srv := newReleaseServer(t, tc.status, tc.body)

			_, err := NewChecker(srv.Client(), srv.URL, nil).Check(context.Background(), "v1.0.0")
			require.Error(t, err)
		})
	}
}
