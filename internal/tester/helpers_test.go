package tester

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"
)

var jwtHeader = base64.RawURLEncoding.EncodeToString([]byte(`{"alg":"HS256","typ":"JWT"}`))

// jwtWithExp builds an unsigned token whose exp claim is exp. name makes
// tokens distinguishable in assertions.
func jwtWithExp(name string, exp time.Time) string {
	payload := fmt.Sprintf(`{"sub":%q,"exp":%d}`, name, exp.Unix())
	return jwtHeader + "." + base64.RawURLEncoding.EncodeToString([]byte(payload)) + ".sig"
}

// fakeService is an httptest-backed code tester. Handlers for the login
// endpoints are preinstalled and hand out the configured tokens; tests add
// or replace handlers per path.
type fakeService struct {
	t   *testing.T
	srv *httptest.Server

	mu       sync.Mutex
	calls    []string
	handlers map[string]http.HandlerFunc

	refreshToken string
	accessToken  string
}

func newFakeService(t *testing.T) *fakeService {
	t.Helper()

	fs := &fakeService{
		t:            t,
		handlers:     make(map[string]http.HandlerFunc),
		refreshToken: jwtWithExp("refresh", time.Now().Add(24*time.Hour)),
		accessToken:  jwtWithExp("access", time.Now().Add(5*time.Minute)),
	}

	fs.handle(pathLogin, func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		if r.FormValue("username") != "student" || r.FormValue("password") != "secret" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}

		writeJSON(w, tokenResponse{Token: fs.currentRefresh()})
	})

	fs.handle(pathAccessToken, func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		if r.FormValue("refreshToken") != fs.currentRefresh() {
			w.WriteHeader(http.StatusForbidden)
			_, _ = w.Write([]byte(`{"error":"bad refresh token"}`))

			return
		}

		writeJSON(w, tokenResponse{Token: fs.currentAccess()})
	})

	fs.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fs.mu.Lock()
		fs.calls = append(fs.calls, r.URL.Path)
		h := fs.handlers[r.URL.Path]
		fs.mu.Unlock()

		if h == nil {
			http.NotFound(w, r)
			return
		}

		h(w, r)
	}))
	t.Cleanup(fs.srv.Close)

	return fs
}

func (fs *fakeService) handle(path string, h http.HandlerFunc) {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	fs.handlers[path] = h
}

func (fs *fakeService) currentRefresh() string {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	return fs.refreshToken
}

func (fs *fakeService) currentAccess() string {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	return fs.accessToken
}

func (fs *fakeService) setTokens(refresh, access string) {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	fs.refreshToken = refresh
	fs.accessToken = access
}

// Calls returns the request paths seen so far, in order.
func (fs *fakeService) Calls() []string {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	return append([]string(nil), fs.calls...)
}

func (fs *fakeService) resetCalls() {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	fs.calls = nil
}

func (fs *fakeService) client() *Client {
	return NewClient(fs.srv.URL, http.DefaultClient, "codetester-test", slog.Default())
}

func (fs *fakeService) session() *Session {
	return NewSession(fs.client(), StaticCredentials{Username: "student", Password: "secret"}, slog.Default())
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
