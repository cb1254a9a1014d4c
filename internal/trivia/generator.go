package trivia

import (
	"bytes"
	"context"
	_ "embed"
	"fmt"
	"text/template"

	"mealmate/internal/llm"

	"go.uber.org/zap"
)

//go:embed trivia_prompt.md
var triviaPrompt string

var triviaTmpl = template.Must(template.New("trivia").Parse(triviaPrompt))

type promptData struct {
	Title    string
	Overview string
}

// Generator asks a language model for questions about a title.
type Generator struct {
	textGen llm.TextGenerator
	logger  *zap.Logger
}

// NewGenerator creates a Generator.
func NewGenerator(textGen llm.TextGenerator, logger *zap.Logger) *Generator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Generator{textGen: textGen, logger: logger.Named("trivia")}
}

// NewGame generates questions for title and starts a game. Generation
// failures fall back to the default questions.
func (g *Generator) NewGame(ctx context.Context, title, overview string) *Game {
	entries, err := g.generate(ctx, title, overview)
	if err != nil {
		g.logger.Warn("trivia generation failed, using defaults", zap.String("title", title), zap.Error(err))
		return NewGame(title, nil)
	}

	game := NewGame(title, entries)
	g.logger.Info("trivia game created",
		zap.String("title", title),
		zap.Int("entries", len(entries)),
		zap.Int("playable", len(Questions(game.Entries))),
	)
	return game
}

func (g *Generator) generate(ctx context.Context, title, overview string) ([]Entry, error) {
	var buf bytes.Buffer
	if err := triviaTmpl.Execute(&buf, promptData{Title: title, Overview: overview}); err != nil {
		return nil, fmt.Errorf("failed to render trivia prompt: %w", err)
	}

	resp, err := g.textGen.GenerateContent(ctx, buf.String(),
		llm.WithMaxTokens(800),
		llm.WithTemperature(0.7),
		llm.WithOperation("trivia"),
	)
	if err != nil {
		return nil, err
	}
	return Parse(resp.Content), nil
}
