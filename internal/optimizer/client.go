// Package optimizer is the client for the remote ingredient optimization service.
// The service owns the optimization itself; this package only speaks its
// request/response contract: one POST to <base>/calculate per submission, no
// retries, and no timeout unless one is configured.
package optimizer

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

	"github.com/iwvelando/ingredient-optimizer/pkg/constants"
	"go.uber.org/zap"
)

// DefaultUserAgent identifies this client to the optimizer service.
const DefaultUserAgent = "ingredient-optimizer/1.0"

// Option configures a Client.
type Option func(*Client)

// Client posts nutrient targets to the optimizer service.
type Client struct {
	endpoint   string
	httpClient *http.Client
	logger     *zap.Logger
	userAgent  string
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		if httpClient != nil {
			c.httpClient = httpClient
		}
	}
}

// WithTimeout bounds each request. Zero keeps the transport default.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			clone := *c.httpClient
			clone.Timeout = timeout
			c.httpClient = &clone
		}
	}
}

// WithLogger sets the logger used for request diagnostics.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(userAgent string) Option {
	return func(c *Client) {
		if ua := strings.TrimSpace(userAgent); ua != "" {
			c.userAgent = ua
		}
	}
}

// NewClient builds a client for the service rooted at baseURL.
func NewClient(baseURL string, opts ...Option) (*Client, error) {
	trimmed := strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if trimmed == "" {
		return nil, errors.New("optimizer base URL is required")
	}

	parsed, err := url.Parse(trimmed)
	if err != nil {
		return nil, fmt.Errorf("invalid optimizer base URL %q: %w", baseURL, err)
	}
	if (parsed.Scheme != "http" && parsed.Scheme != "https") || parsed.Host == "" {
		return nil, fmt.Errorf("optimizer base URL %q must be an absolute http or https URL", baseURL)
	}

	c := &Client{
		endpoint:   trimmed + constants.CalculatePath,
		httpClient: &http.Client{},
		logger:     zap.NewNop(),
		userAgent:  DefaultUserAgent,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Endpoint returns the full calculate URL.
func (c *Client) Endpoint() string {
	return c.endpoint
}

// Calculate sends targets to the service and returns its result.
//
// A non-2xx response yields an *APIError. Failures to reach the service wrap
// ErrTransport and undecodable 2xx bodies wrap ErrDecode.
func (c *Client) Calculate(ctx context.Context, targets Targets) (*Result, error) {
	start := time.Now()
	result, err := c.calculate(ctx, targets)
	elapsed := time.Since(start)
	observe(outcomeOf(err), elapsed)

	if err != nil {
		c.logger.Warn("optimizer request failed",
			zap.String("op", "optimizer.Calculate"),
			zap.String("endpoint", c.endpoint),
			zap.Duration("duration", elapsed),
			zap.Error(err),
		)
		return nil, err
	}

	c.logger.Debug("optimizer request succeeded",
		zap.String("op", "optimizer.Calculate"),
		zap.Int("ingredients", len(result.UsedIngredients)),
		zap.Duration("duration", elapsed),
	)
	return result, nil
}

func (c *Client) calculate(ctx context.Context, targets Targets) (*Result, error) {
	body, err := json.Marshal(targets)
	if err != nil {
		return nil, fmt.Errorf("failed to encode targets: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrTransport, err)
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			c.logger.Warn("failed to close optimizer response body",
				zap.String("op", "optimizer.calculate"),
				zap.Error(closeErr),
			)
		}
	}()

	data, err := io.ReadAll(io.LimitReader(resp.Body, constants.MaxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read response: %w", ErrTransport, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, newAPIError(resp.StatusCode, data)
	}

	var result Result
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecode, err)
	}
	if result.UsedIngredients == nil {
		result.UsedIngredients = []UsedIngredient{}
	}
	return &result, nil
}
