package databento

import (
	"context"
	"encoding/base64"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := NewClient("db-test-key",
		WithBaseURL(server.URL),
		WithHTTPClient(server.Client()),
		WithRetryBackoff(time.Millisecond),
	)
	require.NoError(t, err)
	return client, server
}

func TestNewClientValidatesKey(t *testing.T) {
	_, err := NewClient("")
	require.Error(t, err)

	_, err = NewClient("sk-wrong-prefix")
	require.ErrorContains(t, err, "db-")

	client, err := NewClient("db-valid")
	require.NoError(t, err)
	require.NotNil(t, client)
}

func TestDoSendsBasicAuthAndUserAgent(t *testing.T) {
	var gotAuth, gotAgent string
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotAgent = r.Header.Get("User-Agent")
		w.Write([]byte("ok"))
	})

	body, err := client.get(context.Background(), "/metadata.list_datasets", nil)
	require.NoError(t, err)
	require.Equal(t, "ok", string(body))

	expected := "Basic " + base64.StdEncoding.EncodeToString([]byte("db-test-key:"))
	require.Equal(t, expected, gotAuth)
	require.NotEmpty(t, gotAgent)
}

func TestDoRetriesTransientFailuresThenSucceeds(t *testing.T) {
	var calls atomic.Int32
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) <= 2 {
			http.Error(w, "upstream unhappy", http.StatusBadGateway)
			return
		}
		w.Write([]byte("finally"))
	})

	body, err := client.get(context.Background(), "/timeseries.get_range", nil)
	require.NoError(t, err)
	require.Equal(t, "finally", string(body))
	require.EqualValues(t, 3, calls.Load())
}

func TestDoExhaustsRetryBudget(t *testing.T) {
	var calls atomic.Int32
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, "still broken", http.StatusInternalServerError)
	})

	_, err := client.get(context.Background(), "/timeseries.get_range", nil)
	require.Error(t, err)
	require.EqualValues(t, 3, calls.Load())

	var transportErr *TransportError
	require.ErrorAs(t, err, &transportErr)
	require.Equal(t, 3, transportErr.Attempts)
	require.Equal(t, http.StatusInternalServerError, transportErr.LastStatus)
	require.ErrorContains(t, transportErr, "still broken")
}

func TestDoFailsFastOnClientError(t *testing.T) {
	var calls atomic.Int32
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, "bad credentials", http.StatusUnauthorized)
	})

	_, err := client.get(context.Background(), "/metadata.list_datasets", nil)
	require.Error(t, err)
	// 4xx other than 429 cannot succeed on retry; only one attempt is made.
	require.EqualValues(t, 1, calls.Load())

	var transportErr *TransportError
	require.ErrorAs(t, err, &transportErr)
	require.Equal(t, 1, transportErr.Attempts)
	require.Equal(t, http.StatusUnauthorized, transportErr.LastStatus)
}

func TestDoRetriesRateLimit(t *testing.T) {
	var calls atomic.Int32
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			http.Error(w, "slow down", http.StatusTooManyRequests)
			return
		}
		w.Write([]byte("ok"))
	})

	body, err := client.get(context.Background(), "/metadata.list_datasets", nil)
	require.NoError(t, err)
	require.Equal(t, "ok", string(body))
	require.EqualValues(t, 2, calls.Load())
}

func TestDoLinearBackoffDelays(t *testing.T) {
	var stamps []time.Time
	base := 30 * time.Millisecond
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		stamps = append(stamps, time.Now())
		http.Error(w, "nope", http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client, err := NewClient("db-test-key",
		WithBaseURL(server.URL),
		WithHTTPClient(server.Client()),
		WithRetryBackoff(base),
	)
	require.NoError(t, err)

	_, err = client.get(context.Background(), "/timeseries.get_range", nil)
	require.Error(t, err)
	require.Len(t, stamps, 3)

	// attempt×base backoff: ~1×base between attempts 1→2, ~2×base between 2→3.
	require.GreaterOrEqual(t, stamps[1].Sub(stamps[0]), base)
	require.GreaterOrEqual(t, stamps[2].Sub(stamps[1]), 2*base)
}

func TestDoHonorsContextCancellation(t *testing.T) {
	var calls atomic.Int32
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, "nope", http.StatusBadGateway)
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := client.get(ctx, "/timeseries.get_range", nil)
	require.ErrorIs(t, err, context.Canceled)
}

func TestDoNetworkErrorRetries(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	client, err := NewClient("db-test-key",
		WithBaseURL(server.URL),
		WithRetryBackoff(time.Millisecond),
	)
	require.NoError(t, err)
	server.Close() // every attempt now fails at the dial

	_, err = client.get(context.Background(), "/metadata.list_datasets", nil)
	require.Error(t, err)

	var transportErr *TransportError
	require.ErrorAs(t, err, &transportErr)
	require.Equal(t, 3, transportErr.Attempts)
	require.Zero(t, transportErr.LastStatus)
}
