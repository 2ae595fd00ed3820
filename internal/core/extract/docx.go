package extract

import (
	"bytes"
	"fmt"
	"strings"

	"code.sajari.com/docconv"

	"github.com/studykit/flashgen/internal/core"
	"github.com/studykit/flashgen/internal/models"
)

// DOCX has no native page concept, so non-empty paragraphs are grouped into
// synthetic pages for source attribution.
const paragraphsPerPage = 10

func extractDocx(data []byte) ([]models.PageBlock, error) {
	text, _, err := docconv.ConvertDocx(bytes.NewReader(data))
	if err != nil {
		return nil, &core.ExtractionError{Err: fmt.Errorf("convert docx: %w", err)}
	}

	var paragraphs []string
	for _, line := range strings.Split(text, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			paragraphs = append(paragraphs, line)
		}
	}
	if len(paragraphs) == 0 {
		return nil, &core.ExtractionError{Err: fmt.Errorf("docx contains no extractable text")}
	}

	var blocks []models.PageBlock
	for i := 0; i < len(paragraphs); i += paragraphsPerPage {
		end := i + paragraphsPerPage
		if end > len(paragraphs) {
			end = len(paragraphs)
		}
		blocks = append(blocks, models.PageBlock{
			Page: i/paragraphsPerPage + 1,
			Text: strings.Join(paragraphs[i:end], "\n"),
		})
	}
	return blocks, nil
}
