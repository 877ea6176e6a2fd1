package resolver

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/Iron-Ham/vidparse/internal/errors"
	"github.com/Iron-Ham/vidparse/internal/logging"
	"github.com/Iron-Ham/vidparse/internal/taskqueue"
)

// DefaultTimeout bounds a single parse request when Options.Timeout is zero.
const DefaultTimeout = 30 * time.Second

// maxBodyBytes caps how much of a response body is read.
const maxBodyBytes = 1 << 20

// Options configures a Client.
type Options struct {
	BaseURL    string
	Token      string
	Timeout    time.Duration
	HTTPClient *http.Client // overrides Timeout when set
	Logger     *logging.Logger
}

// Client resolves share links against the parse service's POST /parse
// endpoint. It implements taskqueue.Resolver.
type Client struct {
	endpoint string
	token    string
	http     *http.Client
	logger   *logging.Logger
}

var _ taskqueue.Resolver = (*Client)(nil)

// New creates a Client for the service rooted at opts.BaseURL.
func New(opts Options) *Client {
	hc := opts.HTTPClient
	if hc == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = DefaultTimeout
		}
		hc = &http.Client{Timeout: timeout}
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.NopLogger()
	}
	return &Client{
		endpoint: strings.TrimRight(opts.BaseURL, "/") + "/parse",
		token:    opts.Token,
		http:     hc,
		logger:   logger.WithComponent("resolver"),
	}
}

// parseRequest is the body of POST /parse.
type parseRequest struct {
	URL string `json:"url"`
}

// parseResponse covers both the success and the error shapes of the service.
// Result is raw because the service sometimes returns it as a JSON-encoded
// string rather than an object.
type parseResponse struct {
	Platform string          `json:"platform"`
	Result   json.RawMessage `json:"result"`
	Msg      string          `json:"msg"`
	Error    string          `json:"error"`
}

type parseResult struct {
	Title    string `json:"title"`
	Author   string `json:"author"`
	VideoURL string `json:"video_url"`
	Cover    string `json:"cover"`
	Error    string `json:"error"`
}

// Resolve posts link to the service and maps the answer to a Result.
// Every failure is returned as an *errors.ResolutionFailure; a 401 also wraps
// errors.ErrUnauthorized and a result without a media URL wraps
// errors.ErrNoMedia.
func (c *Client) Resolve(ctx context.Context, link string) (*taskqueue.Result, error) {
	body, err := json.Marshal(parseRequest{URL: link})
	if err != nil {
		return nil, errors.NewResolutionFailure("encode request").WithURL(link).WithCause(err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, errors.NewResolutionFailure("build request").WithURL(link).WithCause(err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Warn("parse request failed", "url", link, "error", err.Error())
		return nil, errors.NewResolutionFailure(transportMessage(err)).WithURL(link).WithCause(err)
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, errors.NewResolutionFailure("read response").WithURL(link).WithStatus(resp.StatusCode).WithCause(err)
	}
	c.logger.Debug("parse response",
		"url", link,
		"status", resp.StatusCode,
		"bytes", len(raw),
		"duration_ms", time.Since(start).Milliseconds())

	var parsed parseResponse
	decodeErr := json.Unmarshal(raw, &parsed)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, statusFailure(link, resp.StatusCode, parsed, decodeErr)
	}
	if decodeErr != nil {
		return nil, errors.NewResolutionFailure("malformed response").WithURL(link).WithStatus(resp.StatusCode).WithCause(decodeErr)
	}

	result, err := decodeResult(parsed.Result)
	if err != nil {
		return nil, errors.NewResolutionFailure("malformed result").WithURL(link).WithStatus(resp.StatusCode).WithCause(err)
	}
	if result.Error != "" {
		return nil, errors.NewResolutionFailure(result.Error).WithURL(link).WithStatus(resp.StatusCode)
	}
	if result.VideoURL == "" {
		return nil, errors.NewResolutionFailure("no video link in result").WithURL(link).WithStatus(resp.StatusCode).WithCause(errors.ErrNoMedia)
	}

	platform := parsed.Platform
	if platform == "" {
		platform = Platform(link)
	}
	return &taskqueue.Result{
		Title:    result.Title,
		Author:   result.Author,
		VideoURL: result.VideoURL,
		CoverURL: result.Cover,
		Platform: platform,
	}, nil
}

// statusFailure builds the failure for a non-2xx answer, preferring the
// service's own message over the status text.
func statusFailure(link string, code int, parsed parseResponse, decodeErr error) *errors.ResolutionFailure {
	msg := http.StatusText(code)
	if decodeErr == nil {
		switch {
		case parsed.Msg != "":
			msg = parsed.Msg
		case parsed.Error != "":
			msg = parsed.Error
		}
	}
	if msg == "" {
		msg = fmt.Sprintf("unexpected status %d", code)
	}

	rf := errors.NewResolutionFailure(msg).WithURL(link).WithStatus(code)
	if code == http.StatusUnauthorized {
		rf = rf.WithCause(errors.ErrUnauthorized)
	}
	return rf
}

// decodeResult accepts the result as an object or as a string holding either
// encoded JSON or a bare error message.
func decodeResult(raw json.RawMessage) (parseResult, error) {
	var r parseResult
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return r, nil
	}

	if trimmed[0] == '"' {
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return r, err
		}
		if err := json.Unmarshal([]byte(s), &r); err != nil {
			return parseResult{Error: s}, nil
		}
		return r, nil
	}

	err := json.Unmarshal(trimmed, &r)
	return r, err
}

func transportMessage(err error) string {
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return "request timed out"
	}
	if errors.Is(err, context.Canceled) {
		return "request cancelled"
	}
	return "service unreachable"
}
