package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"google.golang.org/api/googleapi"

	"github.com/gaspardpetit/tasksplit/internal/logx"
)

// logExcerpt is the number of characters of an upstream body kept in logs.
const logExcerpt = 500

// ErrMissingAPIKey is returned when the client has no API key configured.
var ErrMissingAPIKey = errors.New("gemini: missing api key")

// UpstreamError reports a non-success status returned by the Gemini API.
type UpstreamError struct {
	StatusCode int
	// Body is the raw upstream response body.
	Body string
	err  *googleapi.Error
}

func (e *UpstreamError) Error() string {
	if e.err != nil && e.err.Message != "" {
		return fmt.Sprintf("upstream error %d: %s", e.StatusCode, e.err.Message)
	}
	return fmt.Sprintf("upstream error %d", e.StatusCode)
}

func (e *UpstreamError) Unwrap() error {
	if e.err == nil {
		return nil
	}
	return e.err
}

// Status returns the HTTP status to relay to the caller. Codes outside the
// error range fall back to 502.
func (e *UpstreamError) Status() int {
	if e.StatusCode < 400 || e.StatusCode > 599 {
		return http.StatusBadGateway
	}
	return e.StatusCode
}

// Options configures a Client.
type Options struct {
	BaseURL    string
	APIKey     string
	Model      string
	Timeout    time.Duration
	HTTPClient *http.Client
}

// Client is a tiny HTTP client for the Gemini generateContent endpoint. It is
// immutable after construction and safe for concurrent use.
type Client struct {
	baseURL    string
	apiKey     string
	model      string
	timeout    time.Duration
	httpClient *http.Client
}

// New returns a Client for opts.
func New(opts Options) *Client {
	hc := opts.HTTPClient
	if hc == nil {
		hc = &http.Client{}
	}
	return &Client{
		baseURL:    strings.TrimRight(opts.BaseURL, "/"),
		apiKey:     opts.APIKey,
		model:      opts.Model,
		timeout:    opts.Timeout,
		httpClient: hc,
	}
}

// Configured reports whether an API key is available.
func (c *Client) Configured() bool { return c.apiKey != "" }

// Model returns the model identifier requests are sent to.
func (c *Client) Model() string { return c.model }

func (c *Client) endpoint() string {
	return c.baseURL + "/models/" + url.PathEscape(c.model) + ":generateContent"
}

// GenerateText sends text as a single user message and returns the text of
// the first candidate. A single attempt is made, bounded by the client timeout.
func (c *Client) GenerateText(ctx context.Context, text string) (string, error) {
	if !c.Configured() {
		return "", ErrMissingAPIKey
	}
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}
	b, err := json.Marshal(UserPrompt(text))
	if err != nil {
		return "", fmt.Errorf("encode gemini request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint(), bytes.NewReader(b))
	if err != nil {
		return "", err
	}
	callID := uuid.NewString()
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", c.apiKey)
	req.Header.Set("X-Request-Id", callID)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read gemini response: %w", err)
	}
	logUpstream(callID, c.model, resp.StatusCode, body)

	resp.Body = io.NopCloser(bytes.NewReader(body))
	if err := googleapi.CheckResponse(resp); err != nil {
		ue := &UpstreamError{StatusCode: resp.StatusCode, Body: string(body)}
		var gerr *googleapi.Error
		if errors.As(err, &gerr) {
			ue.err = gerr
		}
		return "", ue
	}

	var out GenerateResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return "", fmt.Errorf("decode gemini response: %w", err)
	}
	return out.FirstText(), nil
}

// logUpstream records the upstream status and a body excerpt. It must never
// fail the request, so panics raised while logging are swallowed.
func logUpstream(callID, model string, status int, body []byte) {
	defer func() {
		_ = recover()
	}()
	logx.Log.Info().
		Str("call_id", callID).
		Str("model", model).
		Int("status", status).
		Str("body", logx.Truncate(string(body), logExcerpt)).
		Msg("gemini upstream")
}
