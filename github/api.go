package github

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/oauth2"

	"github.com/grovetools/forksync/errors"
	"github.com/grovetools/forksync/logging"
	"github.com/grovetools/forksync/pkg/models"
)

// DefaultAPIURL is the public GitHub REST endpoint.
const DefaultAPIURL = "https://api.github.com"

// RateLimitInfo holds the most recent GitHub rate limit headers.
type RateLimitInfo struct {
	Limit     int
	Remaining int
	ResetTime time.Time
	// RetryAfter is set from a secondary rate limit response.
	RetryAfter time.Time
}

// APIClient talks to the GitHub REST API with a bearer token.
type APIClient struct {
	client  *http.Client
	baseURL string
	log     *logrus.Entry

	mu        sync.Mutex
	rateLimit RateLimitInfo

	maxRetries     int
	initialBackoff time.Duration
	maxBackoff     time.Duration
	// maxWait caps how long a rate limit may stall a request.
	maxWait time.Duration
	sleep   func(ctx context.Context, d time.Duration) error
}

// APIOption configures an APIClient.
type APIOption func(*APIClient)

// WithBaseURL points the client at a different API root.
func WithBaseURL(u string) APIOption {
	return func(c *APIClient) { c.baseURL = strings.TrimSuffix(u, "/") }
}

// WithRetryConfig configures retry behavior
func WithRetryConfig(maxRetries int, initialBackoff, maxBackoff time.Duration) APIOption {
	return func(c *APIClient) {
		c.maxRetries = maxRetries
		c.initialBackoff = initialBackoff
		c.maxBackoff = maxBackoff
	}
}

// WithHTTPTimeout sets the per-request timeout.
func WithHTTPTimeout(d time.Duration) APIOption {
	return func(c *APIClient) { c.client.Timeout = d }
}

// NewAPIClient creates a REST client authenticating with token.
func NewAPIClient(token string, opts ...APIOption) *APIClient {
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
	httpClient := oauth2.NewClient(context.Background(), ts)
	httpClient.Timeout = 30 * time.Second

	c := &APIClient{
		client:         httpClient,
		baseURL:        DefaultAPIURL,
		log:            logging.NewLogger("github-api"),
		maxRetries:     3,
		initialBackoff: time.Second,
		maxBackoff:     30 * time.Second,
		maxWait:        time.Minute,
		sleep:          sleepContext,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// RateLimit returns the last observed rate limit state.
func (c *APIClient) RateLimit() RateLimitInfo {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.rateLimit
}

func (c *APIClient) updateRateLimit(resp *http.Response) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if v := resp.Header.Get("X-RateLimit-Limit"); v != "" {
		c.rateLimit.Limit, _ = strconv.Atoi(v)
	}
	if v := resp.Header.Get("X-RateLimit-Remaining"); v != "" {
		c.rateLimit.Remaining, _ = strconv.Atoi(v)
	}
	if v := resp.Header.Get("X-RateLimit-Reset"); v != "" {
		if sec, err := strconv.ParseInt(v, 10, 64); err == nil {
			c.rateLimit.ResetTime = time.Unix(sec, 0)
		}
	}
	if v := resp.Header.Get("Retry-After"); v != "" {
		if sec, err := strconv.ParseInt(v, 10, 64); err == nil {
			c.rateLimit.RetryAfter = time.Now().Add(time.Duration(sec) * time.Second)
		}
	}
}

// rateLimitWait returns how long to hold off before the next request.
// A wait beyond maxWait is reported as an error instead.
func (c *APIClient) rateLimitWait() (time.Duration, error) {
	c.mu.Lock()
	info := c.rateLimit
	c.mu.Unlock()

	var wait time.Duration
	if !info.RetryAfter.IsZero() {
		wait = time.Until(info.RetryAfter)
	}
	if info.Limit > 0 && info.Remaining <= 1 {
		if d := time.Until(info.ResetTime); d > wait {
			wait = d
		}
	}
	if wait > c.maxWait {
		return 0, errors.New(errors.ErrCodeGitHubRateLimit, "GitHub rate limit exceeded").
			WithDetail("reset", info.ResetTime.Format(time.RFC3339))
	}
	return wait, nil
}

func nextBackoff(cur, limit time.Duration) time.Duration {
	next := cur * 2
	if next > limit {
		return limit
	}
	return next
}

// get performs a GET with retry on transport errors, 5xx and 429.
func (c *APIClient) get(ctx context.Context, path string, result interface{}) error {
	var lastErr error
	backoff := c.initialBackoff

	for attempt := 0; attempt < c.maxRetries; attempt++ {
		wait, err := c.rateLimitWait()
		if err != nil {
			return err
		}
		if wait > 0 {
			c.log.WithField("wait", wait).Warn("Rate limited, waiting before next request")
			if err := c.sleep(ctx, wait); err != nil {
				return err
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/"+strings.TrimPrefix(path, "/"), nil)
		if err != nil {
			return fmt.Errorf("failed to create request: %w", err)
		}
		req.Header.Set("Accept", "application/vnd.github+json")
		req.Header.Set("X-GitHub-Api-Version", "2022-11-28")

		resp, err := c.client.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			lastErr = errors.Wrap(err, errors.ErrCodeGitHubAPI, "request failed")
			c.log.WithError(err).Warnf("Request attempt %d failed", attempt+1)
			if err := c.sleep(ctx, backoff); err != nil {
				return err
			}
			backoff = nextBackoff(backoff, c.maxBackoff)
			continue
		}

		c.updateRateLimit(resp)
		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			lastErr = errors.Wrap(err, errors.ErrCodeGitHubAPI, "failed to read response body")
			continue
		}

		switch {
		case resp.StatusCode == http.StatusTooManyRequests:
			lastErr = errors.New(errors.ErrCodeGitHubRateLimit, "GitHub rate limit exceeded")
			continue
		case resp.StatusCode == http.StatusUnauthorized:
			return errors.New(errors.ErrCodeGitHubAuth, "GitHub token rejected")
		case resp.StatusCode >= 500:
			lastErr = errors.New(errors.ErrCodeGitHubAPI, fmt.Sprintf("GitHub API error (%d)", resp.StatusCode))
			if err := c.sleep(ctx, backoff); err != nil {
				return err
			}
			backoff = nextBackoff(backoff, c.maxBackoff)
			continue
		case resp.StatusCode != http.StatusOK:
			return errors.New(errors.ErrCodeGitHubAPI, fmt.Sprintf("GitHub API error (%d): %s", resp.StatusCode, strings.TrimSpace(string(body)))).
				WithDetail("status", resp.StatusCode)
		}

		if result != nil {
			if err := json.Unmarshal(body, result); err != nil {
				return errors.Wrap(err, errors.ErrCodeGitHubAPI, "failed to decode response")
			}
		}
		return nil
	}

	return fmt.Errorf("max retries exceeded: %w", lastErr)
}

type compareResponse struct {
	Status   string `json:"status"`
	AheadBy  int    `json:"ahead_by"`
	BehindBy int    `json:"behind_by"`
}

// CommitsBehind implements BehindCounter using the compare endpoint.
func (c *APIClient) CommitsBehind(ctx context.Context, fork models.Fork) (int, error) {
	if fork.Owner == "" || fork.Name == "" || fork.ParentOwner == "" {
		return 0, errors.New(errors.ErrCodeInvalidInput, "fork owner, name and parent owner are required")
	}
	path := "repos/" + url.PathEscape(fork.Owner) + "/" + url.PathEscape(fork.Name) +
		"/compare/" + url.PathEscape(fork.DefaultBranch) + "..." +
		url.PathEscape(fork.ParentOwner) + ":" + url.PathEscape(fork.DefaultBranch)

	var cmp compareResponse
	if err := c.get(ctx, path, &cmp); err != nil {
		return 0, err
	}
	return cmp.BehindBy, nil
}
