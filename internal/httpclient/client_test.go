package httpclient

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClientRetry(t *testing.T) {
	t.Run("RetriesOnceAfterServerError", func(t *testing.T) {
		var calls int32
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if atomic.AddInt32(&calls, 1) == 1 {
				w.WriteHeader(http.StatusServiceUnavailable)
				return
			}
			w.Write([]byte(`{"ok":true}`))
		}))
		defer server.Close()

		c := New("test", time.Second, WithRetryDelay(time.Millisecond))
		var out struct {
			OK bool `json:"ok"`
		}
		require.NoError(t, c.GetJSON(context.Background(), server.URL, &out))
		assert.True(t, out.OK)
		assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
	})

	t.Run("GivesUpAfterSecondFailure", func(t *testing.T) {
		var calls int32
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			atomic.AddInt32(&calls, 1)
			w.WriteHeader(http.StatusBadGateway)
			w.Write([]byte("down"))
		}))
		defer server.Close()

		c := New("test", time.Second, WithRetryDelay(time.Millisecond))
		var out map[string]any
		err := c.GetJSON(context.Background(), server.URL, &out)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "test api error: status=502 body=down")
		assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
	})

	t.Run("ClientErrorsAreNotRetried", func(t *testing.T) {
		var calls int32
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			atomic.AddInt32(&calls, 1)
			w.WriteHeader(http.StatusNotFound)
		}))
		defer server.Close()

		c := New("test", time.Second, WithRetryDelay(time.Millisecond))
		var out map[string]any
		err := c.GetJSON(context.Background(), server.URL, &out)
		assert.True(t, IsNotFound(err))
		assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
	})

	t.Run("ReplaysBodyOnRetry", func(t *testing.T) {
		var calls int32
		var bodies []string
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			b, _ := io.ReadAll(r.Body)
			bodies = append(bodies, string(b))
			if atomic.AddInt32(&calls, 1) == 1 {
				w.WriteHeader(http.StatusTooManyRequests)
				return
			}
			w.Write([]byte(`{}`))
		}))
		defer server.Close()

		c := New("test", time.Second, WithRetryDelay(time.Millisecond))
		req, err := http.NewRequestWithContext(context.Background(), http.MethodPost, server.URL, strings.NewReader(`{"items":["1 cup flour"]}`))
		require.NoError(t, err)
		var out map[string]any
		require.NoError(t, c.DoJSON(req, &out))
		assert.Equal(t, []string{`{"items":["1 cup flour"]}`, `{"items":["1 cup flour"]}`}, bodies)
	})

	t.Run("TimeoutIsRetriedOnce", func(t *testing.T) {
		var calls int32
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if atomic.AddInt32(&calls, 1) == 1 {
				time.Sleep(200 * time.Millisecond)
			}
			w.Write([]byte(`{}`))
		}))
		defer server.Close()

		c := New("test", 50*time.Millisecond, WithRetryDelay(time.Millisecond))
		var out map[string]any
		require.NoError(t, c.GetJSON(context.Background(), server.URL, &out))
		assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
	})

	t.Run("ObserverSeesEveryAttempt", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer server.Close()

		var statuses []int
		c := New("test", time.Second,
			WithRetryDelay(time.Millisecond),
			WithRateLimit(1000, 10),
			WithObserver(func(service string, status int, _ time.Duration) {
				assert.Equal(t, "test", service)
				statuses = append(statuses, status)
			}))
		var out map[string]any
		_ = c.GetJSON(context.Background(), server.URL, &out)
		assert.Equal(t, []int{500, 500}, statuses)
	})
}
