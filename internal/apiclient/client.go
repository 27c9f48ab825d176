package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"training_portal/internal/config"
	"training_portal/internal/model"
	"training_portal/pkg/monitoring"
	"training_portal/pkg/tracing"

	"github.com/go-playground/validator/v10"
	"go.opentelemetry.io/otel/codes"
)

const maxResponseBytes = 32 << 20

// Client talks to the training API. A Client without a token can only reach
// the public endpoints; use WithToken for everything else.
type Client struct {
	baseURL  string
	http     *http.Client
	token    string
	validate *validator.Validate
}

func New(cfg config.APIConfig) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return NewWithHTTPClient(cfg.BaseURL, &http.Client{Timeout: timeout})
}

func NewWithHTTPClient(baseURL string, hc *http.Client) *Client {
	return &Client{
		baseURL:  strings.TrimRight(baseURL, "/"),
		http:     hc,
		validate: validator.New(),
	}
}

// WithToken returns a copy that authenticates every call with token.
func (c *Client) WithToken(token string) *Client {
	cp := *c
	cp.token = token
	return &cp
}

func (c *Client) BaseURL() string {
	return c.baseURL
}

type request struct {
	method      string
	endpoint    string
	path        string
	query       url.Values
	body        interface{}
	rawBody     io.Reader
	contentType string
	out         interface{}
	// lenient accepts any 2xx without requiring {"success": true}.
	lenient bool
}

func (c *Client) call(ctx context.Context, r request) error {
	body := r.rawBody
	contentType := r.contentType
	if r.body != nil {
		data, err := json.Marshal(r.body)
		if err != nil {
			return &Error{Kind: KindInvalid, Op: r.endpoint, Err: err}
		}
		body = bytes.NewReader(data)
		contentType = "application/json"
	}

	resp, err := c.send(ctx, r, body, contentType)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	return c.decode(resp, r)
}

func (c *Client) send(ctx context.Context, r request, body io.Reader, contentType string) (*http.Response, error) {
	target := c.baseURL + r.path
	if len(r.query) > 0 {
		target += "?" + r.query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, r.method, target, body)
	if err != nil {
		return nil, &Error{Kind: KindNetwork, Op: r.endpoint, Err: err}
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	spanCtx, span := tracing.StartClientSpan(ctx, req, r.endpoint)
	defer span.End()
	req = req.WithContext(spanCtx)

	started := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		monitoring.ObserveUpstream(r.method, r.endpoint, 0, started)
		span.RecordError(err)
		span.SetStatus(codes.Error, "transport")
		return nil, &Error{Kind: KindNetwork, Op: r.endpoint, Err: err}
	}
	monitoring.ObserveUpstream(r.method, r.endpoint, resp.StatusCode, started)
	if resp.StatusCode >= 400 {
		span.SetStatus(codes.Error, resp.Status)
	}
	return resp, nil
}

func (c *Client) decode(resp *http.Response, r request) error {
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return &Error{Kind: KindNetwork, Op: r.endpoint, Status: resp.StatusCode, Err: err}
	}
	return c.decodeBody(resp.StatusCode, data, r)
}

func (c *Client) decodeBody(status int, data []byte, r request) error {
	var env model.Envelope
	envErr := json.Unmarshal(data, &env)

	if status < 200 || status > 299 {
		apiErr := &Error{Kind: KindHTTP, Op: r.endpoint, Status: status}
		if envErr == nil {
			apiErr.Message = env.Error
		}
		return apiErr
	}

	if r.lenient {
		if r.out == nil || len(bytes.TrimSpace(data)) == 0 {
			return nil
		}
	} else {
		if envErr != nil {
			return &Error{Kind: KindInvalid, Op: r.endpoint, Status: status, Err: envErr}
		}
		if !env.Success {
			return &Error{Kind: KindAPI, Op: r.endpoint, Status: status, Message: env.Error}
		}
	}

	if r.out == nil {
		return nil
	}
	if err := json.Unmarshal(data, r.out); err != nil {
		return &Error{Kind: KindInvalid, Op: r.endpoint, Status: status, Err: err}
	}
	if err := c.validate.Struct(r.out); err != nil {
		return &Error{Kind: KindInvalid, Op: r.endpoint, Status: status, Err: err}
	}
	return nil
}

// Health checks the training API liveness endpoint.
func (c *Client) Health(ctx context.Context) error {
	return c.call(ctx, request{
		method:   http.MethodGet,
		endpoint: "/api/health",
		path:     "/api/health",
		lenient:  true,
	})
}
