package llm

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

func TestGroqGenerateContent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer groq-key", r.Header.Get("Authorization"))

		var body struct {
			Model       string  `json:"model"`
			Temperature float64 `json:"temperature"`
			MaxTokens   int     `json:"max_tokens"`
			Messages    []struct {
				Role    string `json:"role"`
				Content string `json:"content"`
			} `json:"messages"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, groqModel, body.Model)
		assert.Equal(t, 20, body.MaxTokens)
		assert.InDelta(t, 0.7, body.Temperature, 1e-6)
		require.Len(t, body.Messages, 1)
		assert.Equal(t, "pair a snack", body.Messages[0].Content)

		w.Write([]byte(`{
			"model": "llama-3.3-70b-versatile",
			"choices": [{"message": {"content": "  spicy korean fried chicken \n"}}],
			"usage": {"prompt_tokens": 12, "completion_tokens": 5, "total_tokens": 17}
		}`))
	}))
	defer server.Close()

	hc := httpclient.New("groq", time.Second, httpclient.WithRetryDelay(time.Millisecond))
	gen := NewGroqClient("groq-key", time.Second, WithGroqURL(server.URL), WithGroqHTTPClient(hc))

	resp, err := gen.GenerateContent(context.Background(), "pair a snack", WithMaxTokens(20), WithTemperature(0.7))
	require.NoError(t, err)
	assert.Equal(t, "spicy korean fried chicken", resp.Content)
	assert.Equal(t, 12, resp.Usage.PromptTokens)
	assert.Equal(t, 5, resp.Usage.CompletionTokens)
	assert.Equal(t, 17, resp.Usage.TotalTokens)
	assert.Equal(t, groqModel, resp.Usage.Model)
}

func TestGroqErrors(t *testing.T) {
	t.Run("NoChoices", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"choices": []}`))
		}))
		defer server.Close()

		gen := NewGroqClient("k", time.Second, WithGroqURL(server.URL))
		_, err := gen.GenerateContent(context.Background(), "hi")
		assert.EqualError(t, err, "no content generated")
	})

	t.Run("Unauthorized", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"error":"invalid key"}`))
		}))
		defer server.Close()

		gen := NewGroqClient("k", time.Second, WithGroqURL(server.URL))
		_, err := gen.GenerateContent(context.Background(), "hi")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "status=401")
	})
}
