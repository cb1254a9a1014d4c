package api

import (
	"net/http"
	"strings"

	"mealmate/internal/shared"
	"mealmate/internal/trivia"

	"go.uber.org/zap"
)

// QuestionView is a trivia question without its answer.
type QuestionView struct {
	Text    string            `json:"question"`
	Options map[string]string `json:"options"`
}

// TriviaState is the game snapshot sent to clients.
type TriviaState struct {
	Title    string        `json:"title"`
	Round    int           `json:"round"`
	Rounds   int           `json:"rounds"`
	Score    int           `json:"score"`
	Mistakes int           `json:"mistakes"`
	GameOver bool          `json:"game_over"`
	Question *QuestionView `json:"question,omitempty"`
}

func triviaView(g *trivia.Game) TriviaState {
	st := g.State()
	view := TriviaState{
		Title:    g.Title,
		Round:    st.Round,
		Rounds:   st.Rounds,
		Score:    st.Score,
		Mistakes: st.Mistakes,
		GameOver: st.GameOver,
	}
	if st.Question != nil && !st.GameOver {
		q := &QuestionView{Text: st.Question.Text, Options: make(map[string]string, len(trivia.Letters))}
		for i, l := range trivia.Letters {
			q.Options[string(l)] = st.Question.Options[i]
		}
		view.Question = q
	}
	return view
}

// TriviaRequest starts a game. Title defaults to the selected media.
type TriviaRequest struct {
	Title string `json:"title"`
}

func (s *Server) handleNewTrivia(w http.ResponseWriter, r *http.Request) {
	var req TriviaRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, err)
		return
	}

	st := sessionFrom(r.Context())
	title, overview := strings.TrimSpace(req.Title), ""
	if title == "" && st.Media != nil {
		title, overview = st.Media.Title, st.Media.Overview
	}
	if title == "" {
		s.writeError(w, shared.NewValidationError("a title is required when no media is selected"))
		return
	}

	game := s.services.Trivia.NewGame(r.Context(), title, overview)
	st.Trivia = game
	view := triviaView(game)
	if err := s.saveSession(r.Context(), st); err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, view)
}

func (s *Server) currentGame(w http.ResponseWriter, r *http.Request) *trivia.Game {
	st := sessionFrom(r.Context())
	if st.Trivia == nil {
		s.writeError(w, shared.NewNotFoundError("no trivia game is running for this session"))
		return nil
	}
	return st.Trivia
}

func (s *Server) handleTriviaQuestion(w http.ResponseWriter, r *http.Request) {
	game := s.currentGame(w, r)
	if game == nil {
		return
	}
	view := triviaView(game)
	if err := s.saveSession(r.Context(), sessionFrom(r.Context())); err != nil {
		s.logger.Warn("failed to store trivia state", zap.Error(err))
	}
	s.writeJSON(w, http.StatusOK, view)
}

// AnswerRequest answers the current question with a letter A-D.
type AnswerRequest struct {
	Option string `json:"option"`
}

// AnswerResponse is the outcome of an answer and the state that follows.
type AnswerResponse struct {
	Outcome trivia.Outcome `json:"outcome"`
	State   TriviaState    `json:"state"`
}

func (s *Server) handleTriviaAnswer(w http.ResponseWriter, r *http.Request) {
	var req AnswerRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	game := s.currentGame(w, r)
	if game == nil {
		return
	}

	option := optionIndex(req.Option)
	outcome, err := game.Submit(option)
	if err != nil {
		s.writeError(w, err)
		return
	}

	view := triviaView(game)
	if err := s.saveSession(r.Context(), sessionFrom(r.Context())); err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, AnswerResponse{Outcome: outcome, State: view})
}

// optionIndex maps "A".."D" to 0..3 and anything else to -1.
func optionIndex(letter string) int {
	letter = strings.ToUpper(strings.TrimSpace(letter))
	if len(letter) != 1 {
		return -1
	}
	for i, l := range trivia.Letters {
		if letter[0] == l {
			return i
		}
	}
	return -1
}
