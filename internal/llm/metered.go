package llm

import (
	"context"
	"time"

	"mealmate/internal/shared"

	"go.uber.org/zap"
)

// Recorder persists the metadata of a generation call.
type Recorder interface {
	RecordMeta(meta shared.CallMeta) error
}

// Metered wraps a TextGenerator and reports every successful call to its
// recorders.
type Metered struct {
	next      TextGenerator
	recorders []Recorder
	logger    *zap.Logger
}

// NewMetered creates a metered generator around next.
func NewMetered(next TextGenerator, logger *zap.Logger, recorders ...Recorder) *Metered {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Metered{next: next, recorders: recorders, logger: logger.Named("llm")}
}

// GenerateContent forwards to the wrapped generator.
func (m *Metered) GenerateContent(ctx context.Context, prompt string, opts ...Option) (ContentResponse, error) {
	o := buildOptions(opts)
	start := time.Now()
	resp, err := m.next.GenerateContent(ctx, prompt, opts...)
	latency := time.Since(start)
	if err != nil {
		m.logger.Warn("generation failed",
			zap.String("operation", o.Operation),
			zap.Duration("latency", latency),
			zap.Error(err),
		)
		return resp, err
	}

	meta := shared.CallMeta{Operation: o.Operation, Usage: resp.Usage, Latency: latency}
	for _, r := range m.recorders {
		if rerr := r.RecordMeta(meta); rerr != nil {
			m.logger.Warn("failed to record llm metrics", zap.String("operation", o.Operation), zap.Error(rerr))
		}
	}
	m.logger.Debug("generation finished",
		zap.String("operation", o.Operation),
		zap.String("model", resp.Usage.Model),
		zap.Int("total_tokens", resp.Usage.TotalTokens),
		zap.Duration("latency", latency),
	)
	return resp, nil
}
