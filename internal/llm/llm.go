package llm

import (
	"context"

	"mealmate/internal/shared"
)

// ContentResponse contains the generated text and metadata like token usage.
type ContentResponse struct {
	Content string
	Usage   shared.TokenUsage
}

// TextGenerator is an interface for generating text from a prompt.
type TextGenerator interface {
	GenerateContent(ctx context.Context, prompt string, opts ...Option) (ContentResponse, error)
}

// Closer is an interface for closing resources.
type Closer interface {
	Close() error
}

// Options are the sampling settings of one generation call.
type Options struct {
	MaxTokens   int
	Temperature float32
	Operation   string
}

// Option adjusts the Options of a call.
type Option func(*Options)

// WithMaxTokens caps the length of the completion.
func WithMaxTokens(n int) Option {
	return func(o *Options) {
		o.MaxTokens = n
	}
}

// WithTemperature sets the sampling temperature.
func WithTemperature(t float32) Option {
	return func(o *Options) {
		o.Temperature = t
	}
}

// WithOperation names the feature making the call; it is only used for
// metrics.
func WithOperation(name string) Option {
	return func(o *Options) {
		o.Operation = name
	}
}

func buildOptions(opts []Option) Options {
	o := Options{MaxTokens: 256, Temperature: 0.7, Operation: "unknown"}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
