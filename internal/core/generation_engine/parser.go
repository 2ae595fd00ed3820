package generation_engine

import (
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"github.com/studykit/flashgen/internal/core"
)

type rawCard struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
	Source   string `json:"source"`
}

type flashcardEnvelope struct {
	Flashcards []rawCard `json:"flashcards"`
}

// decodeStrategy is one named step in the parsing fallback chain. Each is
// independently testable; the chain runs them in order and takes the first
// that yields candidates.
type decodeStrategy struct {
	name   string
	decode func(raw string) ([]rawCard, error)
}

var decodeStrategies = []decodeStrategy{
	{name: "direct", decode: decodeDirect},
	{name: "fenced_block", decode: decodeFenced},
	{name: "first_array", decode: decodeFirstArray},
}

// ParseFlashcards recovers structured flashcards from a raw provider
// response. Structural failure (no strategy decodes anything) surfaces as
// *core.ResponseParseError. Candidates that fail construction-time
// validation are dropped with a warning; callers treat an empty result as
// a per-chunk failure, keeping partial success for sibling chunks.
// The result is capped at maxCards, keeping response order.
func ParseFlashcards(raw, documentName string, maxCards int) ([]Flashcard, error) {
	var candidates []rawCard
	var lastErr error
	for _, s := range decodeStrategies {
		cards, err := s.decode(raw)
		if err != nil {
			lastErr = fmt.Errorf("%s: %w", s.name, err)
			continue
		}
		candidates = cards
		break
	}
	if candidates == nil {
		if lastErr == nil {
			lastErr = fmt.Errorf("response contains no flashcard data")
		}
		return nil, &core.ResponseParseError{Err: lastErr}
	}

	var cards []Flashcard
	for i, c := range candidates {
		card, err := NewFlashcard(c.Question, c.Answer, c.Source, documentName)
		if err != nil {
			log.Printf("parser: dropping flashcard %d: %v", i, err)
			continue
		}
		cards = append(cards, card)
		if maxCards > 0 && len(cards) == maxCards {
			break
		}
	}
	return cards, nil
}

// decodeDirect tries the documented response schema first, then a bare
// top-level array of cards.
func decodeDirect(raw string) ([]rawCard, error) {
	raw = strings.TrimSpace(raw)

	var env flashcardEnvelope
	if err := json.Unmarshal([]byte(raw), &env); err == nil && env.Flashcards != nil {
		return env.Flashcards, nil
	}

	var cards []rawCard
	if err := json.Unmarshal([]byte(raw), &cards); err != nil {
		return nil, err
	}
	return cards, nil
}

// decodeFenced looks for a ```json (or plain ```) fenced code block and
// decodes its contents.
func decodeFenced(raw string) ([]rawCard, error) {
	start := strings.Index(raw, "```")
	if start < 0 {
		return nil, fmt.Errorf("no fenced block found")
	}
	rest := raw[start+3:]
	rest = strings.TrimPrefix(rest, "json")
	end := strings.Index(rest, "```")
	if end < 0 {
		return nil, fmt.Errorf("unterminated fenced block")
	}
	return decodeDirect(rest[:end])
}

// decodeFirstArray decodes the first top-level array-like span in the text.
func decodeFirstArray(raw string) ([]rawCard, error) {
	start := strings.Index(raw, "[")
	end := strings.LastIndex(raw, "]")
	if start < 0 || end <= start {
		return nil, fmt.Errorf("no array span found")
	}
	var cards []rawCard
	if err := json.Unmarshal([]byte(raw[start:end+1]), &cards); err != nil {
		return nil, err
	}
	return cards, nil
}
