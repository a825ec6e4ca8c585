package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

// Response is a fully read backend response
type Response struct {
	StatusCode int
	Headers    http.Header
	Body       []byte
}

// Client issues a single request against the device-control backend
type Client interface {
	Do(ctx context.Context, method, path string, body interface{}) (*Response, error)
}

// Options configures an HTTPClient
type Options struct {
	BaseURL    string
	HTTPClient *http.Client
	Limiter    *rate.Limiter
	Logger     *logrus.Logger
}

// HTTPClient is the net/http implementation of Client. Any status other
// than 200 is returned as an *Error.
type HTTPClient struct {
	baseURL string
	http    *http.Client
	limiter *rate.Limiter
	logger  *logrus.Logger
}

// NewHTTPClient creates a new HTTPClient
func NewHTTPClient(opts Options) (*HTTPClient, error) {
	if opts.BaseURL == "" {
		return nil, fmt.Errorf("base URL is required")
	}

	httpClient := opts.HTTPClient
	if httpClient == nil {
		// no client timeout; the invocation deadline bounds the call
		httpClient = &http.Client{}
	}

	logger := opts.Logger
	if logger == nil {
		logger = logrus.New()
	}

	return &HTTPClient{
		baseURL: strings.TrimRight(opts.BaseURL, "/"),
		http:    httpClient,
		limiter: opts.Limiter,
		logger:  logger,
	}, nil
}

// Do implements Client.Do
func (c *HTTPClient) Do(ctx context.Context, method, path string, body interface{}) (*Response, error) {
	logPath := stripQuery(path)

	if c.limiter != nil && !c.limiter.Allow() {
		return nil, &Error{Op: method, Path: logPath, Err: ErrRateLimited}
	}

	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return nil, &Error{Op: method, Path: logPath, Err: fmt.Errorf("failed to encode body: %w", err)}
		}
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return nil, &Error{Op: method, Path: logPath, Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	// net/http writes Content-Length from this field
	req.ContentLength = int64(len(payload))

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.WithFields(logrus.Fields{
			"method": method,
			"path":   logPath,
			"error":  err.Error(),
		}).Warn("Backend request failed")
		return nil, &Error{Op: method, Path: logPath, Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &Error{Op: method, Path: logPath, StatusCode: resp.StatusCode, Err: fmt.Errorf("failed to read body: %w", err)}
	}

	c.logger.WithFields(logrus.Fields{
		"method":      method,
		"path":        logPath,
		"status_code": resp.StatusCode,
		"latency_ms":  float64(time.Since(start).Nanoseconds()) / 1000000,
		"size":        len(data),
	}).Debug("Backend request completed")

	if resp.StatusCode != http.StatusOK {
		return nil, NewStatusError(method, logPath, resp.StatusCode, data)
	}

	return &Response{
		StatusCode: resp.StatusCode,
		Headers:    resp.Header,
		Body:       data,
	}, nil
}

// CloseIdleConnections releases pooled keep-alive connections
func (c *HTTPClient) CloseIdleConnections() {
	c.http.CloseIdleConnections()
}

// stripQuery keeps access tokens out of logs and error messages
func stripQuery(path string) string {
	if i := strings.IndexByte(path, '?'); i >= 0 {
		return path[:i]
	}
	return path
}
