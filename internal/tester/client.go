package tester

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/oauth2"
)

// DefaultBaseURL is the public code tester instance.
const DefaultBaseURL = "https://codetester.ialistannen.de"

// requestIDHeader carries a per-request id so client logs can be matched
// against server logs.
const requestIDHeader = "X-Request-Id"

// Client is the HTTP transport for the code tester API. It builds requests,
// sends them, and hands back the status and raw body. It never retries:
// every failure is surfaced to the caller.
type Client struct {
	baseURL    string
	httpClient *http.Client
	userAgent  string
	logger     *slog.Logger
}

// NewClient creates a code tester client. baseURL is typically
// DefaultBaseURL; a trailing slash is ignored.
func NewClient(baseURL string, httpClient *http.Client, userAgent string, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}

	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
		userAgent:  userAgent,
		logger:     logger,
	}
}

// response is a fully read HTTP response.
type response struct {
	StatusCode int
	Status     string
	Body       []byte
}

// formFile is a file part of a multipart request. Size must be the exact
// number of bytes r will yield.
type formFile struct {
	Field    string
	FileName string
	Reader   io.Reader
	Size     int64
}

// requestSpec describes one request. auth, when set, attaches the bearer
// token through oauth2.Transport.
type requestSpec struct {
	Method string
	Path   string
	Fields [][2]string
	File   *formFile
	Auth   oauth2.TokenSource
}

// do executes spec and reads the whole response body.
func (c *Client) do(ctx context.Context, spec requestSpec) (*response, error) {
	body, contentType, length, err := encodeBody(spec)
	if err != nil {
		return nil, fmt.Errorf("tester: encoding %s %s: %w", spec.Method, spec.Path, err)
	}

	req, err := http.NewRequestWithContext(ctx, spec.Method, c.baseURL+spec.Path, body)
	if err != nil {
		return nil, fmt.Errorf("tester: creating request: %w", err)
	}

	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
		req.ContentLength = length
	}

	reqID := uuid.NewString()
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")
	req.Header.Set(requestIDHeader, reqID)

	c.logger.Debug("sending request",
		slog.String("method", spec.Method),
		slog.String("path", spec.Path),
		slog.String("request_id", reqID),
		slog.Bool("authorized", spec.Auth != nil),
	)

	resp, err := c.clientFor(spec.Auth).Do(req)
	if err != nil {
		return nil, fmt.Errorf("tester: %s %s: %w", spec.Method, spec.Path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("tester: reading %s %s response: %w", spec.Method, spec.Path, err)
	}

	c.logger.Debug("received response",
		slog.String("method", spec.Method),
		slog.String("path", spec.Path),
		slog.String("request_id", reqID),
		slog.Int("status", resp.StatusCode),
		slog.Int("bytes", len(data)),
	)

	return &response{
		StatusCode: resp.StatusCode,
		Status:     resp.Status,
		Body:       data,
	}, nil
}

// clientFor returns the plain client, or a copy whose transport injects the
// bearer token from ts.
func (c *Client) clientFor(ts oauth2.TokenSource) *http.Client {
	if ts == nil {
		return c.httpClient
	}

	base := c.httpClient.Transport
	if base == nil {
		base = http.DefaultTransport
	}

	return &http.Client{
		Transport:     &oauth2.Transport{Source: ts, Base: base},
		CheckRedirect: c.httpClient.CheckRedirect,
		Jar:           c.httpClient.Jar,
		Timeout:       c.httpClient.Timeout,
	}
}

// encodeBody builds a multipart/form-data body for spec. Requests without
// fields or file have no body. The file part is streamed from its reader
// instead of being copied into memory.
func encodeBody(spec requestSpec) (io.Reader, string, int64, error) {
	if len(spec.Fields) == 0 && spec.File == nil {
		return nil, "", 0, nil
	}

	var head bytes.Buffer
	mw := multipart.NewWriter(&head)

	for _, f := range spec.Fields {
		if err := mw.WriteField(f[0], f[1]); err != nil {
			return nil, "", 0, err
		}
	}

	if spec.File == nil {
		if err := mw.Close(); err != nil {
			return nil, "", 0, err
		}

		return &head, mw.FormDataContentType(), int64(head.Len()), nil
	}

	if _, err := mw.CreateFormFile(spec.File.Field, spec.File.FileName); err != nil {
		return nil, "", 0, err
	}

	prefix := bytes.Clone(head.Bytes())
	head.Reset()

	// Close writes only the terminating boundary now that the file part
	// header is out of the buffer.
	if err := mw.Close(); err != nil {
		return nil, "", 0, err
	}

	length := int64(len(prefix)) + spec.File.Size + int64(head.Len())
	body := io.MultiReader(bytes.NewReader(prefix), spec.File.Reader, &head)

	return body, mw.FormDataContentType(), length, nil
}

// transportError builds the error for an unexpected response.
func transportError(spec requestSpec, resp *response, cause error) *TransportError {
	return &TransportError{
		Method:     spec.Method,
		Path:       spec.Path,
		StatusCode: resp.StatusCode,
		Status:     resp.Status,
		Body:       string(resp.Body),
		Err:        cause,
	}
}

// decodeOK checks for a 200 response and decodes its body into v.
func decodeOK(spec requestSpec, resp *response, v any) error {
	if resp.StatusCode != http.StatusOK {
		return transportError(spec, resp, nil)
	}

	if err := json.Unmarshal(resp.Body, v); err != nil {
		return transportError(spec, resp, fmt.Errorf("decoding response: %w", err))
	}

	return nil
}
