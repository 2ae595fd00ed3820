package core

import (
	"github.com/studykit/flashgen/internal/models"
)

// DocumentExtractor converts a stored document's raw bytes into page-tagged
// text blocks. The declared filename picks the parsing strategy; the
// transform is pure and deterministic over the input bytes.
type DocumentExtractor interface {
	Extract(data []byte, filename string) ([]models.PageBlock, error)
}
