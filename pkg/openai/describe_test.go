package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	apperrors "capgrid/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const completionBody = `{"id":"chatcmpl-1","object":"chat.completion","model":"gpt-3.5-turbo","choices":[{"index":0,"message":{"role":"assistant","content":"  a dog running in a park  "},"finish_reason":"stop"}]}`

const rateLimitBody = `{"error":{"message":"Rate limit reached","type":"requests","code":"rate_limit_exceeded"}}`

func newTestServer(t *testing.T, failures int32, status int) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := calls.Add(1)
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)

		var req map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "gpt-3.5-turbo", req["model"])

		w.Header().Set("Content-Type", "application/json")
		if n <= failures {
			w.WriteHeader(status)
			_, _ = w.Write([]byte(rateLimitBody))
			return
		}
		_, _ = w.Write([]byte(completionBody))
	}))
	t.Cleanup(srv.Close)
	return srv, &calls
}

func TestDescribe(t *testing.T) {
	srv, calls := newTestServer(t, 0, 0)
	c := NewClient(srv.URL+"/v1", "test-key")

	desc, err := c.Describe(context.Background(), "going to the park")
	require.NoError(t, err)
	assert.Equal(t, "a dog running in a park", desc)
	assert.Equal(t, int32(1), calls.Load())
}

func TestDescribeRetriesRateLimit(t *testing.T) {
	srv, calls := newTestServer(t, 2, http.StatusTooManyRequests)
	c := NewClient(srv.URL+"/v1", "test-key", WithRetry(3, 0))

	desc, err := c.Describe(context.Background(), "today")
	require.NoError(t, err)
	assert.Equal(t, "a dog running in a park", desc)
	assert.Equal(t, int32(3), calls.Load())
}

func TestDescribeGivesUpAfterRetries(t *testing.T) {
	srv, calls := newTestServer(t, 10, http.StatusTooManyRequests)
	c := NewClient(srv.URL+"/v1", "test-key", WithRetry(1, 0))

	_, err := c.Describe(context.Background(), "today")
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.CodeDescribeRateLimited))
	assert.Equal(t, int32(2), calls.Load())
}

func TestDescribeDoesNotRetryOtherErrors(t *testing.T) {
	srv, calls := newTestServer(t, 10, http.StatusInternalServerError)
	c := NewClient(srv.URL+"/v1", "test-key", WithRetry(3, 0))

	_, err := c.Describe(context.Background(), "today")
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.CodeDescribeFailed))
	assert.Equal(t, int32(1), calls.Load())
}
