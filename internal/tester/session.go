package tester

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/oauth2"

	"github.com/codetester/codetester-go/internal/token"
)

// Login endpoints.
const (
	pathLogin       = "/login"
	pathAccessToken = "/login/get-access-token"
)

// Credentials identify the user at the login endpoint.
type Credentials struct {
	Username string
	Password string
}

// CredentialSource supplies credentials on demand. Implementations may
// prompt the user; they are asked every time a refresh token is needed and
// should return the same credentials once they have been accepted.
type CredentialSource interface {
	Credentials(ctx context.Context) (Credentials, error)
}

// StaticCredentials is a CredentialSource with fixed values.
type StaticCredentials Credentials

// Credentials returns c unchanged.
func (c StaticCredentials) Credentials(_ context.Context) (Credentials, error) {
	return Credentials(c), nil
}

// Reporter receives human-readable progress messages. The progress spinner
// implements it; nil reporters are replaced by a no-op.
type Reporter interface {
	Update(message string)
}

type nopReporter struct{}

func (nopReporter) Update(string) {}

// Session owns the refresh and access tokens for one process. Each slot is
// either absent (nil) or present; whether a present token is still valid is
// decided lazily from its exp claim.
//
// A Session is not safe for concurrent use. The CLI drives it from a single
// goroutine.
type Session struct {
	client *Client
	creds  CredentialSource
	logger *slog.Logger

	refresh *oauth2.Token
	access  *oauth2.Token

	// now is the clock used for expiry checks. Tests override it.
	now func() time.Time
}

// NewSession creates a session that logs in through client with credentials
// from creds.
func NewSession(client *Client, creds CredentialSource, logger *slog.Logger) *Session {
	if logger == nil {
		logger = slog.Default()
	}

	return &Session{
		client: client,
		creds:  creds,
		logger: logger,
		now:    time.Now,
	}
}

// Login acquires a fresh refresh token and exchanges it for an access token.
func (s *Session) Login(ctx context.Context) error {
	if err := s.FetchRefreshToken(ctx); err != nil {
		return err
	}

	return s.FetchAccessToken(ctx)
}

// EnsureAccessToken returns a usable access token, fetching a new one when
// the slot is absent or expired. A new access token is only requested after
// the refresh token has been guaranteed live.
func (s *Session) EnsureAccessToken(ctx context.Context) (string, error) {
	if s.usable(s.access) {
		return s.access.AccessToken, nil
	}

	if err := s.ensureRefreshToken(ctx); err != nil {
		return "", err
	}

	if err := s.FetchAccessToken(ctx); err != nil {
		return "", err
	}

	return s.access.AccessToken, nil
}

// ensureRefreshToken logs in again when the refresh slot is absent or its
// token has expired.
func (s *Session) ensureRefreshToken(ctx context.Context) error {
	if s.usable(s.refresh) {
		return nil
	}

	return s.FetchRefreshToken(ctx)
}

// usable reports whether tok is present and not expired.
func (s *Session) usable(tok *oauth2.Token) bool {
	return tok != nil && !token.IsExpired(tok.AccessToken, s.now())
}

// FetchRefreshToken submits the credentials to the login endpoint and stores
// the returned refresh token, replacing any previous one.
func (s *Session) FetchRefreshToken(ctx context.Context) error {
	creds, err := s.creds.Credentials(ctx)
	if err != nil {
		return fmt.Errorf("tester: reading credentials: %w", err)
	}

	spec := requestSpec{
		Method: http.MethodPost,
		Path:   pathLogin,
		Fields: [][2]string{{"username", creds.Username}, {"password", creds.Password}},
	}

	resp, err := s.client.do(ctx, spec)
	if err != nil {
		return err
	}

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusNotFound {
		s.logger.Warn("login rejected",
			slog.String("username", creds.Username),
			slog.Int("status", resp.StatusCode),
		)

		return &AuthenticationError{Username: creds.Username, StatusCode: resp.StatusCode}
	}

	tok, err := s.decodeToken(spec, resp)
	if err != nil {
		return err
	}

	s.refresh = tok
	s.logger.Info("refresh token acquired",
		slog.String("username", creds.Username),
		slog.Time("expiry", tok.Expiry),
	)

	return nil
}

// FetchAccessToken exchanges the current refresh token for an access token.
func (s *Session) FetchAccessToken(ctx context.Context) error {
	if s.refresh == nil {
		return errors.New("tester: no refresh token to exchange")
	}

	spec := requestSpec{
		Method: http.MethodPost,
		Path:   pathAccessToken,
		Fields: [][2]string{{"refreshToken", s.refresh.AccessToken}},
	}

	resp, err := s.client.do(ctx, spec)
	if err != nil {
		return err
	}

	tok, err := s.decodeToken(spec, resp)
	if err != nil {
		return err
	}

	s.access = tok
	s.logger.Info("access token acquired", slog.Time("expiry", tok.Expiry))

	return nil
}

// decodeToken turns a login response into a token slot value. A 200 without
// a token is as unexpected as a non-200.
func (s *Session) decodeToken(spec requestSpec, resp *response) (*oauth2.Token, error) {
	var body tokenResponse
	if err := decodeOK(spec, resp, &body); err != nil {
		return nil, err
	}

	if body.Token == "" {
		return nil, transportError(spec, resp, errors.New("response carries no token"))
	}

	tok := &oauth2.Token{AccessToken: body.Token, TokenType: "Bearer"}
	if exp, ok := token.Expiry(body.Token); ok {
		tok.Expiry = exp
	}

	return tok, nil
}

// TokenSource adapts the session to oauth2.TokenSource so requests can carry
// the access token through oauth2.Transport. ctx is bound to every token
// acquisition and must outlive the returned source.
func (s *Session) TokenSource(ctx context.Context) oauth2.TokenSource {
	return &sessionTokenSource{ctx: ctx, session: s}
}

type sessionTokenSource struct {
	ctx     context.Context //nolint:containedctx // oauth2.TokenSource has no context parameter
	session *Session
}

func (ts *sessionTokenSource) Token() (*oauth2.Token, error) {
	if _, err := ts.session.EnsureAccessToken(ts.ctx); err != nil {
		return nil, err
	}

	// Hand out a copy without Expiry: oauth2.Token.Valid applies its own skew,
	// while expiry here is decided by the session alone.
	return &oauth2.Token{
		AccessToken: ts.session.access.AccessToken,
		TokenType:   ts.session.access.TokenType,
	}, nil
}
