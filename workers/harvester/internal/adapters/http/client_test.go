package http

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vesla0x1/codegrabber/shared/config"
	"github.com/vesla0x1/codegrabber/shared/observability/mocks"
	"github.com/vesla0x1/codegrabber/workers/harvester/internal/domain"
)

func newTestClient(cfg config.HTTPConfig, cookie string) *Client {
	return NewClient(cfg, domain.ParseCookieString(cookie), mocks.NewNopLogger(), mocks.NewNopMetrics())
}

func TestClient_Fetch(t *testing.T) {
	t.Run("sends cookie and user agent", func(t *testing.T) {
		var gotCookie, gotUA string
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotCookie = r.Header.Get("Cookie")
			gotUA = r.Header.Get("User-Agent")
			w.Write([]byte("<html>ok</html>"))
		}))
		defer server.Close()

		client := newTestClient(config.HTTPConfig{UserAgent: "test-agent/1.0"}, "b=2; a=1")

		body, err := client.Fetch(context.Background(), server.URL)
		require.NoError(t, err)
		defer body.Close()

		data, err := io.ReadAll(body)
		require.NoError(t, err)
		assert.Equal(t, "<html>ok</html>", string(data))
		assert.Equal(t, "a=1; b=2", gotCookie)
		assert.Equal(t, "test-agent/1.0", gotUA)
	})

	t.Run("defaults", func(t *testing.T) {
		client := newTestClient(config.HTTPConfig{}, "a=1")

		assert.Equal(t, config.DefaultUserAgent, client.config.UserAgent)
		assert.Equal(t, config.DefaultHTTPConfig().Timeout, client.client.Timeout)
	})

	t.Run("non 2xx status is a fetch failure", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusForbidden)
		}))
		defer server.Close()

		_, err := newTestClient(config.HTTPConfig{}, "a=1").Fetch(context.Background(), server.URL)

		require.Error(t, err)
		assert.ErrorIs(t, err, domain.ErrFetchFailed)
		assert.Contains(t, err.Error(), "unexpected status code: 403")
		assert.False(t, domain.IsRetryable(err))
	})

	t.Run("5xx without retries", func(t *testing.T) {
		var calls int32
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			atomic.AddInt32(&calls, 1)
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer server.Close()

		_, err := newTestClient(config.HTTPConfig{MaxRetries: 0}, "a=1").Fetch(context.Background(), server.URL)

		require.Error(t, err)
		assert.ErrorIs(t, err, domain.ErrFetchFailed)
		assert.True(t, domain.IsRetryable(err))
		assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
	})

	t.Run("5xx then success with one retry", func(t *testing.T) {
		var calls int32
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if atomic.AddInt32(&calls, 1) == 1 {
				w.WriteHeader(http.StatusBadGateway)
				return
			}
			w.Write([]byte("recovered"))
		}))
		defer server.Close()

		body, err := newTestClient(config.HTTPConfig{MaxRetries: 1}, "a=1").Fetch(context.Background(), server.URL)
		require.NoError(t, err)
		defer body.Close()

		data, _ := io.ReadAll(body)
		assert.Equal(t, "recovered", string(data))
		assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
	})

	t.Run("transport failure", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		url := server.URL
		server.Close()

		_, err := newTestClient(config.HTTPConfig{Timeout: time.Second}, "a=1").Fetch(context.Background(), url)

		require.Error(t, err)
		assert.ErrorIs(t, err, domain.ErrFetchFailed)
		assert.Contains(t, err.Error(), "request failed after 1 attempts")
	})

	t.Run("invalid url", func(t *testing.T) {
		_, err := newTestClient(config.HTTPConfig{}, "a=1").Fetch(context.Background(), "://bad")

		assert.ErrorIs(t, err, domain.ErrFetchFailed)
	})
}
