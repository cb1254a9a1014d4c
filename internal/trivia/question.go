// Package trivia parses generated multiple-choice questions and runs the
// per-session trivia game.
package trivia

import (
	"fmt"
	"strings"
)

// Letters are the option labels in display order.
var Letters = [4]byte{'A', 'B', 'C', 'D'}

// Question is a well-formed multiple-choice question.
type Question struct {
	Text    string    `json:"question"`
	Options [4]string `json:"options"`
	Correct string    `json:"correct"`
}

// Entry is one parsed block: either a question or a skip with the reason it
// was rejected.
type Entry struct {
	Question *Question `json:"question,omitempty"`
	Skip     string    `json:"skip,omitempty"`
}

// OK reports whether the entry holds a playable question.
func (e Entry) OK() bool {
	return e.Question != nil
}

type block struct {
	text    string
	options map[byte]string
	correct string
}

func (b *block) entry() Entry {
	switch {
	case len(b.options) < 4:
		return Entry{Skip: fmt.Sprintf("question %q has %d options", b.text, len(b.options))}
	case b.correct == "":
		return Entry{Skip: fmt.Sprintf("question %q has no correct answer", b.text)}
	}

	letter := strings.ToUpper(b.correct[:1])
	if !strings.Contains("ABCD", letter) {
		return Entry{Skip: fmt.Sprintf("question %q marks %q as correct", b.text, b.correct)}
	}

	q := &Question{Text: b.text, Correct: letter}
	for i, l := range Letters {
		q.Options[i] = b.options[l]
	}
	return Entry{Question: q}
}

// Parse reads Q:/A:/B:/C:/D:/Correct: blocks. Lines before the first Q: and
// lines with any other prefix are ignored. It never fails; malformed blocks
// come back as skip entries.
func Parse(text string) []Entry {
	var entries []Entry
	var cur *block

	flush := func() {
		if cur != nil {
			entries = append(entries, cur.entry())
		}
	}

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		switch {
		case strings.HasPrefix(line, "Q:"):
			flush()
			cur = &block{text: strings.TrimSpace(line[2:]), options: make(map[byte]string, 4)}
		case cur == nil:
			continue
		case strings.HasPrefix(line, "Correct:"):
			cur.correct = strings.TrimSpace(line[len("Correct:"):])
		case len(line) >= 2 && line[1] == ':' && strings.IndexByte("ABCD", line[0]) >= 0:
			cur.options[line[0]] = strings.TrimSpace(line[2:])
		}
	}
	flush()
	return entries
}

// Questions returns the playable questions among entries.
func Questions(entries []Entry) []Question {
	var out []Question
	for _, e := range entries {
		if e.OK() {
			out = append(out, *e.Question)
		}
	}
	return out
}

// DefaultQuestions are used when no generated question is usable.
func DefaultQuestions(title string) []Entry {
	return []Entry{
		{Question: &Question{
			Text:    fmt.Sprintf("What year was %s released?", title),
			Options: [4]string{"2018", "2019", "2020", "2021"},
			Correct: "C",
		}},
		{Question: &Question{
			Text:    fmt.Sprintf("Which genre best describes %s?", title),
			Options: [4]string{"Action", "Comedy", "Drama", "Sci-Fi"},
			Correct: "A",
		}},
		{Question: &Question{
			Text:    fmt.Sprintf("Who directed %s?", title),
			Options: [4]string{"Steven Spielberg", "Christopher Nolan", "James Cameron", "Quentin Tarantino"},
			Correct: "B",
		}},
	}
}
