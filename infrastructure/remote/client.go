// Package remote talks to the wheel API over HTTP. Client backs editing
// sessions (Fetcher and Saver) and the operator CLI.
package remote

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

	"axon-backend/application/report"
	"axon-backend/application/session"
	"axon-backend/domain/core/aggregates"
	"axon-backend/infrastructure/config"
	pkgerrors "axon-backend/pkg/errors"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"
)

const serviceName = "wheel-api"

// maxBodyBytes bounds how much of a response is read
const maxBodyBytes = 8 << 20

// Client is a circuit-breaker guarded HTTP client for the wheel API
type Client struct {
	baseURL string
	http    *http.Client
	breaker *gobreaker.CircuitBreaker
	userID  string
	token   string
	logger  *zap.Logger
}

var (
	_ session.Fetcher = (*Client)(nil)
	_ session.Saver   = (*Client)(nil)
)

// Option configures a Client
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithToken authenticates requests with a bearer token
func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

// WithUserID identifies the caller through X-User-ID, for servers running
// without authentication
func WithUserID(userID string) Option {
	return func(c *Client) { c.userID = userID }
}

// NewClient creates a client for the API rooted at baseURL
func NewClient(baseURL string, timeout time.Duration, cb config.CircuitBreakerConfig, logger *zap.Logger, opts ...Option) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		logger:  logger.Named("remote"),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.breaker = newBreaker(cb, c.logger)
	return c
}

func newBreaker(cfg config.CircuitBreakerConfig, logger *zap.Logger) *gobreaker.CircuitBreaker {
	failures := cfg.ConsecutiveFailures
	if failures == 0 {
		failures = 5
	}
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        serviceName,
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= failures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("Circuit breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()))
		},
		IsSuccessful: func(err error) bool {
			return !isServerFailure(err)
		},
	})
}

// isServerFailure reports whether err says the API is unhealthy. Client
// errors and cancellations by the caller do not count against the breaker.
func isServerFailure(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) {
		return false
	}
	var appErr *pkgerrors.AppError
	if errors.As(err, &appErr) && appErr.HTTPStatus > 0 && appErr.HTTPStatus < 500 {
		return false
	}
	return true
}

// State reports the breaker state
func (c *Client) State() gobreaker.State {
	return c.breaker.State()
}

// FetchWheel loads a wheel document
func (c *Client) FetchWheel(ctx context.Context, wheelID string) (aggregates.WheelDocument, error) {
	var doc aggregates.WheelDocument
	err := c.do(ctx, http.MethodGet, wheelPath(wheelID), nil, &doc)
	return doc, err
}

// SaveWheel replaces a wheel's title and diagram
func (c *Client) SaveWheel(ctx context.Context, wheelID string, payload session.SavePayload) error {
	return c.do(ctx, http.MethodPut, wheelPath(wheelID), payload, nil)
}

// ListWheels returns the caller's wheels
func (c *Client) ListWheels(ctx context.Context) ([]aggregates.WheelDocument, error) {
	var docs []aggregates.WheelDocument
	err := c.do(ctx, http.MethodGet, "/api/wheels", nil, &docs)
	return docs, err
}

// Report fetches the server-side analysis of a wheel
func (c *Client) Report(ctx context.Context, wheelID string) (*report.Report, error) {
	var r report.Report
	if err := c.do(ctx, http.MethodGet, wheelPath(wheelID)+"/report", nil, &r); err != nil {
		return nil, err
	}
	return &r, nil
}

// CastVote rates one consequence
func (c *Client) CastVote(ctx context.Context, wheelID, nodeID string, vote int) error {
	body := map[string]int{"vote": vote}
	return c.do(ctx, http.MethodPost, wheelPath(wheelID)+"/nodes/"+url.PathEscape(nodeID)+"/vote", body, nil)
}

func wheelPath(wheelID string) string {
	return "/api/wheels/" + url.PathEscape(wheelID)
}

// envelope is the API response wrapper
type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Type    string `json:"type"`
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	_, err := c.breaker.Execute(func() (interface{}, error) {
		return nil, c.roundTrip(ctx, method, path, body, out)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return pkgerrors.NewUnavailableError(serviceName).WithCause(err)
	}
	return err
}

func (c *Client) roundTrip(ctx context.Context, method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return pkgerrors.Wrap(err, "encode request")
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return pkgerrors.Wrap(err, "build request")
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	if c.userID != "" {
		req.Header.Set("X-User-ID", c.userID)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return pkgerrors.NewExternalError(serviceName, err)
	}
	defer resp.Body.Close()

	c.logger.Debug("Remote call",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("elapsed", time.Since(start)))

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return pkgerrors.NewExternalError(serviceName, err)
	}

	var env envelope
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &env); err != nil {
			if resp.StatusCode >= 400 {
				return statusError(resp.StatusCode, "", strings.TrimSpace(string(raw)))
			}
			return pkgerrors.NewExternalError(serviceName, fmt.Errorf("decode response: %w", err))
		}
	}

	if resp.StatusCode >= 400 {
		var errType, msg string
		if env.Error != nil {
			errType, msg = env.Error.Type, env.Error.Message
		}
		return statusError(resp.StatusCode, errType, msg)
	}

	if out == nil || len(env.Data) == 0 || string(env.Data) == "null" {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return pkgerrors.NewExternalError(serviceName, fmt.Errorf("decode data: %w", err))
	}
	return nil
}

// statusError turns an API error response into an AppError that keeps
// the server's classification
func statusError(status int, errType, message string) error {
	if status >= 500 {
		return pkgerrors.NewExternalError(serviceName, fmt.Errorf("status %d: %s", status, message))
	}
	if message == "" {
		message = http.StatusText(status)
	}
	t := pkgerrors.ErrorType(errType)
	if t == "" {
		t = typeForStatus(status)
	}
	return &pkgerrors.AppError{Type: t, Message: message, HTTPStatus: status}
}

func typeForStatus(status int) pkgerrors.ErrorType {
	switch status {
	case http.StatusNotFound:
		return pkgerrors.ErrorTypeNotFound
	case http.StatusForbidden:
		return pkgerrors.ErrorTypeForbidden
	case http.StatusUnauthorized:
		return pkgerrors.ErrorTypeUnauthorized
	case http.StatusConflict:
		return pkgerrors.ErrorTypeConflict
	case http.StatusUnprocessableEntity:
		return pkgerrors.ErrorTypeStructuralLimit
	case http.StatusTooManyRequests:
		return pkgerrors.ErrorTypeRateLimit
	default:
		return pkgerrors.ErrorTypeValidation
	}
}
