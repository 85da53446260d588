package blogcms

import (
	"bytes"
	"context"
	"encoding/json/v2"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/pressmapapp/pressmap-server/internal/errors"
	"github.com/pressmapapp/pressmap-server/internal/ratelimit"
)

const (
	defaultRPS   = 4.0
	defaultBurst = 2

	defaultTimeout = 30 * time.Second

	// limiterKey: BlogCMS has one global write budget, so every call
	// shares a single bucket.
	limiterKey = "blogcms"
)

// Client is a rate-limited BlogCMS API client authenticated with a
// bearer token.
type Client struct {
	http    *http.Client
	limiter *ratelimit.KeyedRateLimiter
	logger  *slog.Logger
	baseURL string
	token   string
}

// NewClient creates a BlogCMS client. rps <= 0 uses the default budget.
func NewClient(baseURL, token string, rps float64, logger *slog.Logger) *Client {
	if rps <= 0 {
		rps = defaultRPS
	}
	return &Client{
		http: &http.Client{
			Timeout: defaultTimeout,
		},
		limiter: ratelimit.New(rps, defaultBurst),
		logger:  logger,
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
	}
}

// Ping verifies the base URL and token with a cheap authenticated call.
func (c *Client) Ping(ctx context.Context) error {
	_, err := c.do(ctx, http.MethodGet, "/health", nil)
	return err
}

// CreateCategory creates a category and returns its remote ID.
func (c *Client) CreateCategory(ctx context.Context, cat Category) (string, error) {
	return c.create(ctx, "/categories", cat)
}

// CreateTag creates a tag and returns its remote ID.
func (c *Client) CreateTag(ctx context.Context, tag Tag) (string, error) {
	return c.create(ctx, "/tags", tag)
}

// CreatePost creates a post and returns its remote ID.
func (c *Client) CreatePost(ctx context.Context, post Post) (string, error) {
	return c.create(ctx, "/posts", post)
}

// createResponse is the body BlogCMS returns for created resources.
type createResponse struct {
	ID string `json:"id"`
}

func (c *Client) create(ctx context.Context, path string, payload any) (string, error) {
	body, err := c.do(ctx, http.MethodPost, path, payload)
	if err != nil {
		return "", err
	}

	var created createResponse
	if err := json.Unmarshal(body, &created); err != nil {
		return "", errors.Wrap(err, errors.CodeUpstream, "decode create response")
	}
	return created.ID, nil
}

// do executes one API call with rate limiting and auth.
func (c *Client) do(ctx context.Context, method, path string, payload any) ([]byte, error) {
	if c.baseURL == "" || c.token == "" {
		return nil, errors.Validation("BlogCMS base URL and API token must be configured")
	}

	if err := c.limiter.Wait(ctx, limiterKey); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	var reqBody io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("encode payload: %w", err)
		}
		reqBody = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("User-Agent", "PressMap/1.0")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	c.logger.Debug("blogcms request", "method", method, "path", path)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeUpstream, "execute request")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeUpstream, "read response")
	}

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return body, nil
	case resp.StatusCode == http.StatusUnauthorized, resp.StatusCode == http.StatusForbidden:
		return nil, errors.Unauthorized("BlogCMS rejected the API token")
	case resp.StatusCode == http.StatusConflict:
		return nil, errors.Conflictf("BlogCMS conflict: %s", snippet(body))
	case resp.StatusCode == http.StatusUnprocessableEntity, resp.StatusCode == http.StatusBadRequest:
		return nil, errors.Validationf("BlogCMS rejected the payload: %s", snippet(body))
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, errors.Upstream("BlogCMS rate limit exceeded")
	default:
		return nil, errors.Upstream(fmt.Sprintf("unexpected status %d: %s", resp.StatusCode, snippet(body)))
	}
}

// snippet bounds error bodies so upstream HTML error pages don't flood
// the logs.
func snippet(body []byte) string {
	const maxLen = 200
	s := strings.TrimSpace(string(body))
	if len(s) > maxLen {
		s = s[:maxLen] + "..."
	}
	return s
}
