package extract

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/studykit/flashgen/internal/core"
	"github.com/studykit/flashgen/internal/models"
)

var slidePartRe = regexp.MustCompile(`^ppt/slides/slide(\d+)\.xml$`)

// extractPptx walks the OOXML container and emits one PageBlock per slide,
// in slide order. Text is gathered from every <a:t> run, including table
// cells; slides without text are dropped but keep their numbering.
func extractPptx(data []byte) ([]models.PageBlock, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, &core.ExtractionError{Err: fmt.Errorf("open pptx container: %w", err)}
	}

	type slidePart struct {
		num  int
		file *zip.File
	}
	var parts []slidePart
	for _, f := range zr.File {
		m := slidePartRe.FindStringSubmatch(f.Name)
		if m == nil {
			continue
		}
		n, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		parts = append(parts, slidePart{num: n, file: f})
	}
	if len(parts) == 0 {
		return nil, &core.ExtractionError{Err: fmt.Errorf("pptx contains no slides")}
	}
	sort.Slice(parts, func(i, j int) bool { return parts[i].num < parts[j].num })

	var blocks []models.PageBlock
	for _, p := range parts {
		text, err := slideText(p.file)
		if err != nil {
			return nil, &core.ExtractionError{Err: fmt.Errorf("slide %d: %w", p.num, err)}
		}
		if text == "" {
			continue
		}
		blocks = append(blocks, models.PageBlock{Page: p.num, Text: text})
	}

	if len(blocks) == 0 {
		return nil, &core.ExtractionError{Err: fmt.Errorf("pptx contains no extractable text")}
	}
	return blocks, nil
}

// slideText streams one slide part and joins its text runs: runs within a
// paragraph concatenate, paragraphs separate with newlines.
func slideText(f *zip.File) (string, error) {
	rc, err := f.Open()
	if err != nil {
		return "", err
	}
	defer rc.Close()

	var b strings.Builder
	dec := xml.NewDecoder(rc)
	inRun := false
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", fmt.Errorf("slide xml: %w", err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Local == "t" {
				inRun = true
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inRun = false
			case "p":
				b.WriteString("\n")
			}
		case xml.CharData:
			if inRun {
				b.Write(t)
			}
		}
	}

	// Collapse the blank lines produced by empty paragraphs.
	var lines []string
	for _, line := range strings.Split(b.String(), "\n") {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}
	return strings.Join(lines, "\n"), nil
}
