package tester

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogin_Success(t *testing.T) {
	fs := newFakeService(t)
	s := fs.session()

	require.NoError(t, s.Login(context.Background()))

	assert.Equal(t, []string{pathLogin, pathAccessToken}, fs.Calls())
	require.NotNil(t, s.refresh)
	require.NotNil(t, s.access)
	assert.Equal(t, fs.currentRefresh(), s.refresh.AccessToken)
	assert.Equal(t, fs.currentAccess(), s.access.AccessToken)
	assert.False(t, s.access.Expiry.IsZero(), "expiry decoded from the exp claim")
}

func TestFetchRefreshToken_InvalidCredentials(t *testing.T) {
	for _, status := range []int{http.StatusUnauthorized, http.StatusNotFound} {
		t.Run(http.StatusText(status), func(t *testing.T) {
			fs := newFakeService(t)
			fs.handle(pathLogin, func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(status)
			})

			err := fs.session().FetchRefreshToken(context.Background())
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrAuthentication)

			var authErr *AuthenticationError
			require.ErrorAs(t, err, &authErr)
			assert.Equal(t, status, authErr.StatusCode)
			assert.Equal(t, "student", authErr.Username)
		})
	}
}

func TestFetchRefreshToken_WrongPassword(t *testing.T) {
	fs := newFakeService(t)
	s := NewSession(fs.client(), StaticCredentials{Username: "student", Password: "wrong"}, slog.Default())

	err := s.Login(context.Background())
	require.ErrorIs(t, err, ErrAuthentication)

	// The access exchange is never attempted after a failed login.
	assert.Equal(t, []string{pathLogin}, fs.Calls())
	assert.Nil(t, s.refresh)
	assert.Nil(t, s.access)
}

func TestFetchRefreshToken_ServerError(t *testing.T) {
	fs := newFakeService(t)
	fs.handle(pathLogin, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"database down"}`))
	})

	err := fs.session().FetchRefreshToken(context.Background())
	require.ErrorIs(t, err, ErrTransport)
	assert.NotErrorIs(t, err, ErrAuthentication)

	var tErr *TransportError
	require.ErrorAs(t, err, &tErr)
	assert.Equal(t, http.StatusInternalServerError, tErr.StatusCode)
	assert.Equal(t, "500 Internal Server Error", tErr.Status)
	assert.Equal(t, `{"error":"database down"}`, tErr.Body)
	assert.Equal(t, http.MethodPost, tErr.Method)
	assert.Equal(t, pathLogin, tErr.Path)
	assert.Contains(t, tErr.Error(), "database down")
}

func TestFetchRefreshToken_MissingToken(t *testing.T) {
	fs := newFakeService(t)
	fs.handle(pathLogin, func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, map[string]string{"message": "welcome"})
	})

	err := fs.session().FetchRefreshToken(context.Background())
	require.ErrorIs(t, err, ErrTransport)
}

func TestFetchRefreshToken_OverwritesPrevious(t *testing.T) {
	fs := newFakeService(t)
	s := fs.session()

	require.NoError(t, s.FetchRefreshToken(context.Background()))
	first := s.refresh.AccessToken

	second := jwtWithExp("refresh-2", time.Now().Add(48*time.Hour))
	fs.setTokens(second, fs.currentAccess())

	require.NoError(t, s.FetchRefreshToken(context.Background()))
	assert.NotEqual(t, first, s.refresh.AccessToken)
	assert.Equal(t, second, s.refresh.AccessToken)
}

func TestFetchAccessToken_NonOK(t *testing.T) {
	fs := newFakeService(t)
	s := fs.session()

	require.NoError(t, s.FetchRefreshToken(context.Background()))

	fs.handle(pathAccessToken, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte("expired"))
	})

	err := s.FetchAccessToken(context.Background())
	require.ErrorIs(t, err, ErrTransport)

	// The access endpoint uses the transport taxonomy even for 401.
	assert.NotErrorIs(t, err, ErrAuthentication)
	assert.Nil(t, s.access)
}

func TestFetchAccessToken_WithoutRefreshToken(t *testing.T) {
	fs := newFakeService(t)

	err := fs.session().FetchAccessToken(context.Background())
	require.Error(t, err)
	assert.Empty(t, fs.Calls())
}

func TestEnsureAccessToken_FromNothing(t *testing.T) {
	fs := newFakeService(t)
	s := fs.session()

	tok, err := s.EnsureAccessToken(context.Background())
	require.NoError(t, err)
	assert.Equal(t, fs.currentAccess(), tok)
	assert.Equal(t, []string{pathLogin, pathAccessToken}, fs.Calls())
}

func TestEnsureAccessToken_ValidAccessMakesNoCalls(t *testing.T) {
	fs := newFakeService(t)
	s := fs.session()
	require.NoError(t, s.Login(context.Background()))
	fs.resetCalls()

	tok, err := s.EnsureAccessToken(context.Background())
	require.NoError(t, err)
	assert.Equal(t, fs.currentAccess(), tok)
	assert.Empty(t, fs.Calls())
}

func TestEnsureAccessToken_ExpiredAccessValidRefresh(t *testing.T) {
	fs := newFakeService(t)
	s := fs.session()
	require.NoError(t, s.Login(context.Background()))
	fs.resetCalls()

	// Jump past the access token's expiry but not the refresh token's.
	s.now = func() time.Time { return time.Now().Add(time.Hour) }

	_, err := s.EnsureAccessToken(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{pathAccessToken}, fs.Calls())
}

func TestEnsureAccessToken_BothExpired(t *testing.T) {
	fs := newFakeService(t)
	s := fs.session()
	require.NoError(t, s.Login(context.Background()))
	fs.resetCalls()

	s.now = func() time.Time { return time.Now().Add(72 * time.Hour) }

	_, err := s.EnsureAccessToken(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{pathLogin, pathAccessToken}, fs.Calls())
}

func TestEnsureAccessToken_NonExpiredRefreshIsKept(t *testing.T) {
	fs := newFakeService(t)
	s := fs.session()
	require.NoError(t, s.FetchRefreshToken(context.Background()))
	fs.resetCalls()

	// A live refresh token must not trigger another login.
	_, err := s.EnsureAccessToken(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{pathAccessToken}, fs.Calls())
}

func TestEnsureAccessToken_RefreshFailureStopsExchange(t *testing.T) {
	fs := newFakeService(t)
	fs.handle(pathLogin, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	_, err := fs.session().EnsureAccessToken(context.Background())
	require.ErrorIs(t, err, ErrTransport)
	assert.Equal(t, []string{pathLogin}, fs.Calls())
}

func TestEnsureAccessToken_OpaqueTokensFailOpen(t *testing.T) {
	fs := newFakeService(t)
	fs.setTokens("opaque-refresh", "opaque-access")
	s := fs.session()
	require.NoError(t, s.Login(context.Background()))
	fs.resetCalls()

	s.now = func() time.Time { return time.Now().Add(10 * 365 * 24 * time.Hour) }

	tok, err := s.EnsureAccessToken(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "opaque-access", tok)
	assert.Empty(t, fs.Calls())
	assert.True(t, s.access.Expiry.IsZero())
}

func TestEnsureAccessToken_CredentialSourceError(t *testing.T) {
	fs := newFakeService(t)
	sentinel := errors.New("prompt closed")
	s := NewSession(fs.client(), credentialFunc(func(context.Context) (Credentials, error) {
		return Credentials{}, sentinel
	}), slog.Default())

	_, err := s.EnsureAccessToken(context.Background())
	require.ErrorIs(t, err, sentinel)
	assert.Empty(t, fs.Calls())
}

func TestTokenSource_AttachesBearer(t *testing.T) {
	fs := newFakeService(t)
	s := fs.session()

	var gotAuth string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, http.DefaultClient, "test", slog.Default())
	resp, err := c.do(context.Background(), requestSpec{
		Method: http.MethodGet,
		Path:   "/anything",
		Auth:   s.TokenSource(context.Background()),
	})
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Bearer "+fs.currentAccess(), gotAuth)
}

type credentialFunc func(context.Context) (Credentials, error)

func (f credentialFunc) Credentials(ctx context.Context) (Credentials, error) {
	return f(ctx)
}
