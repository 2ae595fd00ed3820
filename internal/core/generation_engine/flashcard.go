package generation_engine

import (
	"fmt"
	"strings"
)

// Flashcard is a validated question/answer pair with mandatory source
// attribution. Values only exist through NewFlashcard, so any Flashcard
// in circulation already satisfies the citation invariant.
type Flashcard struct {
	Question string
	Answer   string
	Source   string
}

// NewFlashcard validates a candidate card at construction. The source must
// be a real citation: at least 5 characters and containing the document's
// display name (case-insensitive).
func NewFlashcard(question, answer, source, documentName string) (Flashcard, error) {
	question = strings.TrimSpace(question)
	answer = strings.TrimSpace(answer)
	source = strings.TrimSpace(source)

	if question == "" {
		return Flashcard{}, fmt.Errorf("question cannot be empty")
	}
	if answer == "" {
		return Flashcard{}, fmt.Errorf("answer cannot be empty")
	}
	if len(source) < 5 {
		return Flashcard{}, fmt.Errorf("source attribution must include document name and page")
	}
	if !strings.Contains(strings.ToLower(source), strings.ToLower(documentName)) {
		return Flashcard{}, fmt.Errorf("source %q does not reference document %q", source, documentName)
	}

	return Flashcard{Question: question, Answer: answer, Source: source}, nil
}
