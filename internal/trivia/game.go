package trivia

import (
	"mealmate/internal/shared"
)

const (
	// MaxRounds is the number of questions in a full game.
	MaxRounds = 10
	// MaxMistakes ends the game early.
	MaxMistakes = 3
)

// Game is the state of one trivia session. Fields are exported so the game
// can be stored with the rest of the session.
type Game struct {
	Title    string  `json:"title"`
	Entries  []Entry `json:"entries"`
	Index    int     `json:"index"`
	Score    int     `json:"score"`
	Mistakes int     `json:"mistakes"`
	Over     bool    `json:"over"`
}

// Outcome is the result of submitting an answer.
type Outcome struct {
	Correct  bool   `json:"correct"`
	Answer   string `json:"answer,omitempty"`
	Score    int    `json:"score"`
	Mistakes int    `json:"mistakes"`
	GameOver bool   `json:"game_over"`
}

// State is a snapshot for display.
type State struct {
	Round    int       `json:"round"`
	Rounds   int       `json:"rounds"`
	Score    int       `json:"score"`
	Mistakes int       `json:"mistakes"`
	GameOver bool      `json:"game_over"`
	Question *Question `json:"question,omitempty"`
}

// NewGame starts a game over entries, falling back to the default questions
// when none of them is playable.
func NewGame(title string, entries []Entry) *Game {
	if len(Questions(entries)) == 0 {
		entries = DefaultQuestions(title)
	}
	return &Game{Title: title, Entries: entries}
}

func (g *Game) limit() int {
	return min(MaxRounds, len(g.Entries))
}

// Current returns the question awaiting an answer, advancing past skipped
// entries. It returns nil once the game is over.
func (g *Game) Current() *Question {
	for {
		if g.Over {
			return nil
		}
		if g.Index >= g.limit() || g.Mistakes >= MaxMistakes {
			g.Over = true
			return nil
		}
		if e := g.Entries[g.Index]; e.OK() {
			return e.Question
		}
		g.Index++
	}
}

// Round is the 1-based number of the current question.
func (g *Game) Round() int {
	return g.Index + 1
}

// Submit answers the current question with option 0..3 (A..D). Submitting
// after the game is over changes nothing.
func (g *Game) Submit(option int) (Outcome, error) {
	if g.Over {
		return Outcome{GameOver: true}, nil
	}
	if option < 0 || option >= len(Letters) {
		return Outcome{}, shared.NewValidationError("option must be between 0 and %d, got %d", len(Letters)-1, option)
	}

	q := g.Current()
	if q == nil {
		return Outcome{GameOver: true}, nil
	}

	correct := string(Letters[option]) == q.Correct
	if correct {
		g.Score++
	} else {
		g.Mistakes++
	}
	g.Index++
	if g.Mistakes >= MaxMistakes || g.Index >= g.limit() {
		g.Over = true
	}

	return Outcome{
		Correct:  correct,
		Answer:   q.Correct,
		Score:    g.Score,
		Mistakes: g.Mistakes,
		GameOver: g.Over,
	}, nil
}

// State returns the current snapshot, resolving the pending question.
func (g *Game) State() State {
	q := g.Current()
	return State{
		Round:    g.Round(),
		Rounds:   g.limit(),
		Score:    g.Score,
		Mistakes: g.Mistakes,
		GameOver: g.Over,
		Question: q,
	}
}
