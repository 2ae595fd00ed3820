package generation_engine

import (
	"log"
	"strings"

	"github.com/studykit/flashgen/internal/models"
)

const (
	pageSeparator    = "\n\n"
	truncationMarker = "\n[...truncated]"
)

// Chunk is a generation-sized slice of a document: consecutive PageBlocks
// whose joined text fits one provider call. MinPage/MaxPage cover the
// chunk's citation range even when content spans chunk edges.
type Chunk struct {
	Blocks  []models.PageBlock
	MinPage int
	MaxPage int
}

// Text returns the chunk's page texts joined in order. Its length is what
// the chunker budgets against.
func (c Chunk) Text() string {
	parts := make([]string, len(c.Blocks))
	for i, b := range c.Blocks {
		parts[i] = b.Text
	}
	return strings.Join(parts, pageSeparator)
}

// ContainsPage reports whether page falls inside the chunk's covered range.
func (c Chunk) ContainsPage(page int) bool {
	return page >= c.MinPage && page <= c.MaxPage
}

// SplitPages greedily accumulates consecutive PageBlocks into chunks whose
// joined text stays within budgetChars. Page boundaries are never split
// across chunks, so every chunk resolves to a concrete page range. The one
// exception is a single block larger than the whole budget: it is truncated
// with a trailing marker rather than dropped, and the truncation is logged
// as a coverage caveat.
func SplitPages(blocks []models.PageBlock, budgetChars int) []Chunk {
	var chunks []Chunk
	var cur []models.PageBlock
	curLen := 0

	flush := func() {
		if len(cur) == 0 {
			return
		}
		chunks = append(chunks, Chunk{
			Blocks:  cur,
			MinPage: cur[0].Page,
			MaxPage: cur[len(cur)-1].Page,
		})
		cur = nil
		curLen = 0
	}

	for _, b := range blocks {
		if len(b.Text) > budgetChars {
			flush()
			chunks = append(chunks, Chunk{
				Blocks:  []models.PageBlock{{Page: b.Page, Text: truncate(b.Text, budgetChars)}},
				MinPage: b.Page,
				MaxPage: b.Page,
			})
			log.Printf("chunker: page %d exceeds budget (%d > %d chars), truncated", b.Page, len(b.Text), budgetChars)
			continue
		}

		add := len(b.Text)
		if curLen > 0 {
			add += len(pageSeparator)
		}
		if curLen+add > budgetChars {
			flush()
			add = len(b.Text)
		}
		cur = append(cur, b)
		curLen += add
	}
	flush()

	return chunks
}

// truncate cuts s so that the result, marker included, fits budget without
// splitting a UTF-8 sequence.
func truncate(s string, budget int) string {
	cut := budget - len(truncationMarker)
	if cut < 0 {
		cut = 0
	}
	return strings.ToValidUTF8(s[:cut], "") + truncationMarker
}
