// Package api is the HTTP client for the storefront backend: base URL and
// bearer handling, JSON encoding, and mapping of transport and status
// failures onto stable error values.
package api

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

	"github.com/gofrs/uuid/v5"
	"go.uber.org/zap"

	"github.com/jeanogram/storefront-cli/internal/convert"
	"github.com/jeanogram/storefront-cli/internal/errs"
)

// TokenSource supplies the current bearer credential, or "" when signed out.
// The session store satisfies this; readers take a per-call snapshot.
type TokenSource interface {
	Credential() string
}

// anonymous is the TokenSource for unauthenticated requests.
type anonymous struct{}

func (anonymous) Credential() string { return "" }

// Anonymous never attaches a credential.
var Anonymous TokenSource = anonymous{}

// Client issues requests against one backend base URL.
type Client struct {
	base   string
	http   *http.Client
	tokens TokenSource
	log    *zap.Logger
}

// New constructs a Client. A nil httpClient gets a default with the given
// timeout applied; most calls otherwise rely on transport defaults.
func New(baseURL string, timeout time.Duration, tokens TokenSource, log *zap.Logger) *Client {
	if log == nil {
		log = zap.NewNop()
	}
	if tokens == nil {
		tokens = Anonymous
	}
	return &Client{
		base:   strings.TrimRight(baseURL, "/"),
		http:   &http.Client{Timeout: timeout},
		tokens: tokens,
		log:    log,
	}
}

// Request describes one HTTP call. Query is optional; Body is JSON-encoded
// when non-nil. Anonymous suppresses the bearer header for endpoints that
// are public by contract.
type Request struct {
	Method    string
	Path      string
	Query     url.Values
	Body      any
	Anonymous bool
}

// Response is the raw outcome of a successful (2xx) call.
type Response struct {
	Status int
	Body   []byte
}

// Decode unmarshals the body into v.
func (r *Response) Decode(v any) error {
	if len(bytes.TrimSpace(r.Body)) == 0 {
		return nil
	}
	return json.Unmarshal(r.Body, v)
}

// Do executes one request. Network-level failures come back wrapping
// errs.ErrTransient; non-2xx statuses come back as *errs.StatusError with
// the server-supplied message when the body carries one. Callers never see
// a panic or an unhandled transport error.
func (c *Client) Do(ctx context.Context, req Request) (*Response, error) {
	u := c.base + "/" + strings.TrimLeft(req.Path, "/")
	if len(req.Query) > 0 {
		u += "?" + req.Query.Encode()
	}

	var body io.Reader
	if req.Body != nil {
		b, err := json.Marshal(req.Body)
		if err != nil {
			return nil, err
		}
		body = bytes.NewReader(b)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, u, body)
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Accept", "application/json")
	if req.Body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	if !req.Anonymous {
		if tok := c.tokens.Credential(); tok != "" {
			httpReq.Header.Set("Authorization", "Bearer "+tok)
		}
	}
	reqID := requestID()
	httpReq.Header.Set("X-Request-Id", reqID)

	start := time.Now()
	resp, err := c.http.Do(httpReq)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}
		c.log.Warn("request failed",
			zap.String("method", req.Method),
			zap.String("url", u),
			zap.String("request_id", reqID),
			zap.Error(err),
		)
		return nil, fmt.Errorf("%w: %v", errs.ErrTransient, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errs.ErrTransient, err)
	}

	c.log.Debug("request done",
		zap.String("method", req.Method),
		zap.String("url", u),
		zap.String("request_id", reqID),
		zap.Int("status", resp.StatusCode),
		zap.Duration("elapsed", time.Since(start)),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, errs.Status(resp.StatusCode, convert.Message(raw))
	}
	return &Response{Status: resp.StatusCode, Body: raw}, nil
}

// DoFirst executes candidates in order and returns the first outcome that is
// not an authorization failure. The selection rule is fixed: a 401/403 moves
// on to the next candidate; any other success or failure is final. The last
// candidate's outcome is final regardless.
func (c *Client) DoFirst(ctx context.Context, candidates ...Request) (*Response, error) {
	var lastErr error
	for i, req := range candidates {
		resp, err := c.Do(ctx, req)
		if err == nil {
			return resp, nil
		}
		lastErr = err
		if i < len(candidates)-1 && errors.Is(err, errs.ErrUnauthorized) {
			c.log.Debug("candidate denied, trying fallback",
				zap.String("path", req.Path),
				zap.Error(err),
			)
			continue
		}
		return nil, err
	}
	return nil, lastErr
}

func requestID() string {
	id, err := uuid.NewV4()
	if err != nil {
		return ""
	}
	return id.String()
}
