// Package sentiment classifies free text with a Hugging Face hosted
// text-classification model.
package sentiment

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
	defaultBaseURL = "https://api-inference.huggingface.co/models"
	// DefaultModel is the binary sentiment model used when none is configured.
	DefaultModel = "distilbert/distilbert-base-uncased-finetuned-sst-2-english"
)

// Label is a classification with its confidence.
type Label struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
}

// Client calls the inference endpoint of one model.
type Client struct {
	token   string
	model   string
	baseURL string
	http    *httpclient.Client
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL points the client at another inference host.
func WithBaseURL(u string) Option {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(u, "/")
	}
}

// WithHTTPClient replaces the upstream HTTP client.
func WithHTTPClient(hc *httpclient.Client) Option {
	return func(c *Client) {
		c.http = hc
	}
}

// NewClient creates a classifier for model. An empty model selects DefaultModel.
func NewClient(token, model string, timeout time.Duration, opts ...Option) *Client {
	if model == "" {
		model = DefaultModel
	}
	c := &Client{token: token, model: model, baseURL: defaultBaseURL}
	for _, opt := range opts {
		opt(c)
	}
	if c.http == nil {
		c.http = httpclient.New("huggingface", timeout)
	}
	return c
}

// Classify returns the highest scoring label for text, uppercased.
func (c *Client) Classify(ctx context.Context, text string) (Label, error) {
	body, err := json.Marshal(map[string]string{"inputs": text})
	if err != nil {
		return Label{}, fmt.Errorf("failed to marshal request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/"+c.model, bytes.NewReader(body))
	if err != nil {
		return Label{}, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	var raw json.RawMessage
	if err := c.http.DoJSON(req, &raw); err != nil {
		return Label{}, err
	}

	labels, err := decodeLabels(raw)
	if err != nil {
		return Label{}, err
	}

	best := labels[0]
	for _, l := range labels[1:] {
		if l.Score > best.Score {
			best = l
		}
	}
	best.Label = strings.ToUpper(best.Label)
	return best, nil
}

// decodeLabels accepts both the nested [[...]] and the flat [...] shape the
// inference API returns depending on the pipeline.
func decodeLabels(raw json.RawMessage) ([]Label, error) {
	var nested [][]Label
	if err := json.Unmarshal(raw, &nested); err == nil && len(nested) > 0 && len(nested[0]) > 0 {
		return nested[0], nil
	}
	var flat []Label
	if err := json.Unmarshal(raw, &flat); err == nil && len(flat) > 0 {
		return flat, nil
	}
	return nil, errors.New("sentiment response contained no labels")
}
