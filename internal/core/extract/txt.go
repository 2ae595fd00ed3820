package extract

import (
	"fmt"
	"strings"

	"github.com/studykit/flashgen/internal/core"
	"github.com/studykit/flashgen/internal/models"
)

// Plain text gets synthetic pages of 50 lines for source attribution.
const linesPerPage = 50

func extractTxt(data []byte) ([]models.PageBlock, error) {
	content := strings.ReplaceAll(string(data), "\r\n", "\n")
	lines := strings.Split(content, "\n")

	var blocks []models.PageBlock
	for i := 0; i < len(lines); i += linesPerPage {
		end := i + linesPerPage
		if end > len(lines) {
			end = len(lines)
		}
		pageText := strings.TrimSpace(strings.Join(lines[i:end], "\n"))
		if pageText == "" {
			continue
		}
		blocks = append(blocks, models.PageBlock{
			Page: i/linesPerPage + 1,
			Text: pageText,
		})
	}

	if len(blocks) == 0 {
		return nil, &core.ExtractionError{Err: fmt.Errorf("text file is empty")}
	}
	return blocks, nil
}
