package extract

import (
	"path/filepath"
	"strings"

	"github.com/studykit/flashgen/internal/core"
	"github.com/studykit/flashgen/internal/models"
)

var _ core.DocumentExtractor = (*Extractor)(nil)

// Extractor converts raw document bytes into an ordered sequence of
// page-tagged text blocks. The strategy is chosen from the declared
// filename's extension.
type Extractor struct{}

func NewExtractor() *Extractor {
	return &Extractor{}
}

// Extract dispatches on the file extension and returns one PageBlock per
// page (PDF), per slide (PPTX) or per synthetic page group (DOCX, TXT).
// Page numbers are 1-based and strictly increasing; empty pages are dropped.
func (e *Extractor) Extract(data []byte, filename string) ([]models.PageBlock, error) {
	ext := strings.ToLower(filepath.Ext(filename))

	switch ext {
	case ".pdf":
		return extractPDF(data)
	case ".docx":
		return extractDocx(data)
	case ".pptx":
		return extractPptx(data)
	case ".txt", ".text":
		return extractTxt(data)
	default:
		return nil, &core.UnsupportedFormatError{Ext: ext}
	}
}
