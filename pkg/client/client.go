// Package client is the typed SDK for the dairy admin REST API. It hides the
// response envelope, normalizes list payloads and turns every failure into
// an *APIError.
package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"github.com/charlesng35/dairyadmin/pkg/logger"
)

// DefaultBaseURL matches the API server's default listen address.
const DefaultBaseURL = "http://localhost:8000/api"

// Config configures a Client.
type Config struct {
	BaseURL string
	Timeout time.Duration
	Token   string
	Logger  *zap.Logger
}

// Client talks to the admin API. It is safe for concurrent use.
type Client struct {
	http *resty.Client
	log  *zap.Logger

	mu    sync.RWMutex
	token string
}

// New builds a client. Requests are never retried.
func New(cfg Config) *Client {
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	log := cfg.Logger
	if log == nil {
		log = logger.WithModule("client")
	}

	c := &Client{log: log, token: cfg.Token}
	c.http = resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetRetryCount(0).
		SetHeader("Accept", "application/json")

	// The header is always sent, empty when logged out.
	c.http.OnBeforeRequest(func(_ *resty.Client, req *resty.Request) error {
		req.SetHeader("Authorization", "Bearer "+c.Token())
		return nil
	})
	return c
}

// BaseURL returns the API root the client was built with.
func (c *Client) BaseURL() string {
	return c.http.BaseURL
}

// Token returns the current access token.
func (c *Client) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

// SetToken replaces the access token sent with every request.
func (c *Client) SetToken(token string) {
	c.mu.Lock()
	c.token = strings.TrimSpace(token)
	c.mu.Unlock()
}

// APIError is returned for transport failures and unsuccessful responses.
// StatusCode is zero when the request never reached the server.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
	Fields     map[string]string
}

// Error codes assigned on the client side.
const (
	CodeTransport = "TRANSPORT_ERROR"
	CodeDecode    = "DECODE_ERROR"
)

func (e *APIError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Message == "" {
		return e.Code
	}
	return e.Message
}

// IsStatus reports whether err is an *APIError with the given HTTP status.
func IsStatus(err error, status int) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == status
}

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string            `json:"code"`
		Message string            `json:"message"`
		Fields  map[string]string `json:"fields"`
	} `json:"error"`
}

type call struct {
	method string
	path   string
	query  url.Values
	body   any
}

// do executes a JSON call, decodes the envelope and unmarshals data into out
// when out is non-nil. It returns the envelope message.
func (c *Client) do(ctx context.Context, rc call, out any) (string, error) {
	req := c.http.R().SetContext(ctx)
	if len(rc.query) > 0 {
		req.SetQueryParamsFromValues(rc.query)
	}
	if rc.body != nil {
		req.SetHeader("Content-Type", "application/json").SetBody(rc.body)
	}
	resp, err := req.Execute(rc.method, rc.path)
	if err != nil {
		c.log.Debug("request failed", zap.String("method", rc.method), zap.String("path", rc.path), zap.Error(err))
		return "", &APIError{Code: CodeTransport, Message: err.Error()}
	}
	return decodeEnvelope(resp, out)
}

func decodeEnvelope(resp *resty.Response, out any) (string, error) {
	var env envelope
	if err := json.Unmarshal(resp.Body(), &env); err != nil {
		if resp.IsError() {
			return "", &APIError{StatusCode: resp.StatusCode(), Code: CodeDecode, Message: statusText(resp.StatusCode())}
		}
		return "", &APIError{StatusCode: resp.StatusCode(), Code: CodeDecode, Message: fmt.Sprintf("decode response: %v", err)}
	}

	if !env.Success || resp.IsError() {
		apiErr := &APIError{StatusCode: resp.StatusCode(), Message: env.Message}
		if env.Error != nil {
			apiErr.Code = env.Error.Code
			apiErr.Fields = env.Error.Fields
			if apiErr.Message == "" {
				apiErr.Message = env.Error.Message
			}
		}
		if apiErr.Message == "" {
			apiErr.Message = statusText(resp.StatusCode())
		}
		return "", apiErr
	}

	if out != nil && len(env.Data) > 0 && string(env.Data) != "null" {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return env.Message, &APIError{StatusCode: resp.StatusCode(), Code: CodeDecode, Message: fmt.Sprintf("decode data: %v", err)}
		}
	}
	return env.Message, nil
}

func statusText(code int) string {
	if text := http.StatusText(code); text != "" {
		return text
	}
	return fmt.Sprintf("HTTP %d", code)
}

func (c *Client) get(ctx context.Context, path string, query url.Values, out any) error {
	_, err := c.do(ctx, call{method: http.MethodGet, path: path, query: query}, out)
	return err
}

func (c *Client) post(ctx context.Context, path string, body, out any) error {
	_, err := c.do(ctx, call{method: http.MethodPost, path: path, body: body}, out)
	return err
}

func (c *Client) put(ctx context.Context, path string, body, out any) error {
	_, err := c.do(ctx, call{method: http.MethodPut, path: path, body: body}, out)
	return err
}

func (c *Client) patch(ctx context.Context, path string, body, out any) error {
	_, err := c.do(ctx, call{method: http.MethodPatch, path: path, body: body}, out)
	return err
}

func (c *Client) delete(ctx context.Context, path string) error {
	_, err := c.do(ctx, call{method: http.MethodDelete, path: path}, nil)
	return err
}

func idPath(base string, id uint) string {
	return fmt.Sprintf("%s/%d", base, id)
}
