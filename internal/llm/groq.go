package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"mealmate/internal/httpclient"
)

const (
	groqAPIURL = "https://api.groq.com/openai/v1/chat/completions"
	groqModel  = "llama-3.3-70b-versatile"
)

// groqClient is a client for the Groq API.
type groqClient struct {
	apiKey string
	url    string
	http   *httpclient.Client
}

// GroqOption configures the Groq client.
type GroqOption func(*groqClient)

// WithGroqURL overrides the chat completions endpoint.
func WithGroqURL(u string) GroqOption {
	return func(c *groqClient) {
		c.url = u
	}
}

// WithGroqHTTPClient replaces the upstream HTTP client.
func WithGroqHTTPClient(hc *httpclient.Client) GroqOption {
	return func(c *groqClient) {
		c.http = hc
	}
}

// NewGroqClient creates a new Groq API client.
func NewGroqClient(apiKey string, timeout time.Duration, opts ...GroqOption) TextGenerator {
	c := &groqClient{apiKey: apiKey, url: groqAPIURL}
	for _, opt := range opts {
		opt(c)
	}
	if c.http == nil {
		c.http = httpclient.New("groq", timeout, httpclient.WithRateLimit(2, 4))
	}
	return c
}

// GenerateContent sends a prompt to the Groq model and returns the generated text.
func (c *groqClient) GenerateContent(ctx context.Context, prompt string, opts ...Option) (ContentResponse, error) {
	o := buildOptions(opts)
	reqBody := map[string]any{
		"model": groqModel,
		"messages": []map[string]string{
			{
				"role":    "user",
				"content": prompt,
			},
		},
		"temperature": o.Temperature,
		"max_tokens":  o.MaxTokens,
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return ContentResponse{}, fmt.Errorf("failed to marshal request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(jsonBody))
	if err != nil {
		return ContentResponse{}, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	var groqResp struct {
		Model   string `json:"model"`
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
		Usage struct {
			PromptTokens     int `json:"prompt_tokens"`
			CompletionTokens int `json:"completion_tokens"`
			TotalTokens      int `json:"total_tokens"`
		} `json:"usage"`
	}
	if err := c.http.DoJSON(req, &groqResp); err != nil {
		return ContentResponse{}, err
	}

	if len(groqResp.Choices) == 0 {
		return ContentResponse{}, errors.New("no content generated")
	}

	model := groqResp.Model
	if model == "" {
		model = groqModel
	}
	resp := ContentResponse{
		Content: strings.TrimSpace(groqResp.Choices[0].Message.Content),
	}
	resp.Usage.Model = model
	resp.Usage.PromptTokens = groqResp.Usage.PromptTokens
	resp.Usage.CompletionTokens = groqResp.Usage.CompletionTokens
	resp.Usage.TotalTokens = groqResp.Usage.TotalTokens
	return resp, nil
}
