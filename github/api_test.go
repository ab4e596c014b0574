package github

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/grovetools/forksync/errors"
)

func newTestAPI(t *testing.T, handler http.HandlerFunc) *APIClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c := NewAPIClient("test-token",
		WithBaseURL(srv.URL),
		WithRetryConfig(3, time.Millisecond, 5*time.Millisecond))
	return c
}

func TestAPICommitsBehind(t *testing.T) {
	c := newTestAPI(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))
		assert.Equal(t, "/repos/alice/widget/compare/main...org:main", r.URL.Path)
		w.Header().Set("X-RateLimit-Limit", "5000")
		w.Header().Set("X-RateLimit-Remaining", "4999")
		w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(time.Now().Add(time.Hour).Unix(), 10))
		_, _ = w.Write([]byte(`{"status":"behind","ahead_by":0,"behind_by":7}`))
	})

	n, err := c.CommitsBehind(context.Background(), widget())
	require.NoError(t, err)
	assert.Equal(t, 7, n)

	rl := c.RateLimit()
	assert.Equal(t, 5000, rl.Limit)
	assert.Equal(t, 4999, rl.Remaining)
}

func TestAPIRetriesServerErrors(t *testing.T) {
	var calls int32
	c := newTestAPI(t, func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte(`{"behind_by":2}`))
	})

	n, err := c.CommitsBehind(context.Background(), widget())
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestAPIGivesUpAfterMaxRetries(t *testing.T) {
	var calls int32
	c := newTestAPI(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusInternalServerError)
	})

	_, err := c.CommitsBehind(context.Background(), widget())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "max retries exceeded")
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestAPIClientErrorsAreNotRetried(t *testing.T) {
	var calls int32
	c := newTestAPI(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"message":"Not Found"}`))
	})

	_, err := c.CommitsBehind(context.Background(), widget())
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeGitHubAPI, errors.GetCode(err))
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestAPIUnauthorized(t *testing.T) {
	c := newTestAPI(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})

	_, err := c.CommitsBehind(context.Background(), widget())
	assert.Equal(t, errors.ErrCodeGitHubAuth, errors.GetCode(err))
}

func TestAPIRateLimitBeyondMaxWait(t *testing.T) {
	var calls int32
	c := newTestAPI(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.Header().Set("X-RateLimit-Limit", "60")
		w.Header().Set("X-RateLimit-Remaining", "0")
		w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(time.Now().Add(time.Hour).Unix(), 10))
		w.WriteHeader(http.StatusTooManyRequests)
	})

	_, err := c.CommitsBehind(context.Background(), widget())
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeGitHubRateLimit, errors.GetCode(err))
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestAPIRequiresIdentity(t *testing.T) {
	c := NewAPIClient("t")
	f := widget()
	f.ParentOwner = ""
	_, err := c.CommitsBehind(context.Background(), f)
	assert.Equal(t, errors.ErrCodeInvalidInput, errors.GetCode(err))
}
