package companion

import (
	"bytes"
	"context"
	_ "embed"
	"fmt"
	"strings"
	"text/template"

	"mealmate/internal/llm"
	"mealmate/internal/shared"
	"mealmate/internal/tmdb"

	"go.uber.org/zap"
)

// ChatUnavailable is returned to the user when the model cannot answer.
const ChatUnavailable = "Sorry, I couldn't come up with an answer right now. Please try again in a moment."

//go:embed chat_prompt.md
var chatPrompt string

var chatTmpl = template.Must(template.New("chat").Funcs(template.FuncMap{
	"join": func(s []string) string { return strings.Join(s, ", ") },
}).Parse(chatPrompt))

type chatData struct {
	*tmdb.Media
	Question string
}

// Reply is the assistant's answer to a question.
type Reply struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
	Degraded bool   `json:"degraded,omitempty"`
}

// Chat answers a free-form question about media. Generation failures yield
// a placeholder answer marked as degraded.
func (s *Service) Chat(ctx context.Context, media *tmdb.Media, question string) (Reply, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return Reply{}, shared.NewValidationError("question must not be empty")
	}

	var buf bytes.Buffer
	if err := chatTmpl.Execute(&buf, chatData{Media: media, Question: question}); err != nil {
		return Reply{}, fmt.Errorf("failed to render chat prompt: %w", err)
	}

	resp, err := s.textGen.GenerateContent(ctx, buf.String(),
		llm.WithMaxTokens(200),
		llm.WithTemperature(0.7),
		llm.WithOperation("chat"),
	)
	if err != nil || strings.TrimSpace(resp.Content) == "" {
		s.logger.Warn("chat generation failed", zap.String("title", media.Title), zap.Error(err))
		return Reply{Question: question, Answer: ChatUnavailable, Degraded: true}, nil
	}
	return Reply{Question: question, Answer: strings.TrimSpace(resp.Content)}, nil
}
