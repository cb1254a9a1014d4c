package sentiment

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"mealmate/internal/httpclient"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	hc := httpclient.New("huggingface", time.Second, httpclient.WithRetryDelay(time.Millisecond))
	return NewClient("hf-token", "", time.Second, WithBaseURL(server.URL), WithHTTPClient(hc))
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		body string
		want Label
	}{
		{
			name: "Nested",
			body: `[[{"label":"negative","score":0.12},{"label":"positive","score":0.88}]]`,
			want: Label{Label: "POSITIVE", Score: 0.88},
		},
		{
			name: "Flat",
			body: `[{"label":"NEGATIVE","score":0.97},{"label":"POSITIVE","score":0.03}]`,
			want: Label{Label: "NEGATIVE", Score: 0.97},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "/"+DefaultModel, r.URL.Path)
				assert.Equal(t, "Bearer hf-token", r.Header.Get("Authorization"))
				var body map[string]string
				require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
				assert.Equal(t, "feeling great", body["inputs"])
				w.Write([]byte(tt.body))
			})

			got, err := c.Classify(context.Background(), "feeling great")
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestClassifyErrors(t *testing.T) {
	t.Run("EmptyLabels", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`[[]]`))
		})
		_, err := c.Classify(context.Background(), "x")
		assert.Error(t, err)
	})

	t.Run("ModelLoading", func(t *testing.T) {
		calls := 0
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			calls++
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte(`{"error":"Model is currently loading"}`))
		})
		_, err := c.Classify(context.Background(), "x")
		assert.Error(t, err)
		assert.Equal(t, 2, calls)
	})
}
