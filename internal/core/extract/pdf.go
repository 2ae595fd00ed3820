package extract

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/studykit/flashgen/internal/core"
	"github.com/studykit/flashgen/internal/models"
)

// extractPDF returns one PageBlock per readable page, keeping the original
// 1-based page numbers so citations stay accurate when empty pages are
// skipped.
func extractPDF(data []byte) (blocks []models.PageBlock, err error) {
	// ledongthuc/pdf panics on some malformed cross-reference tables.
	defer func() {
		if r := recover(); r != nil {
			blocks = nil
			err = &core.ExtractionError{Err: fmt.Errorf("pdf parse panic: %v", r)}
		}
	}()

	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, &core.ExtractionError{Err: fmt.Errorf("open pdf: %w", err)}
	}

	for i := 1; i <= r.NumPage(); i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}

		text, err := page.GetPlainText(nil)
		if err != nil {
			// Skip unreadable pages rather than failing the document.
			continue
		}
		text = strings.TrimSpace(text)
		if text == "" {
			continue
		}

		blocks = append(blocks, models.PageBlock{Page: i, Text: text})
	}

	if len(blocks) == 0 {
		return nil, &core.ExtractionError{Err: fmt.Errorf("pdf contains no extractable text")}
	}
	return blocks, nil
}
