// Package pdftext provides the text-layer primitive the extractor and
// classifier read PDF documents through.
package pdftext

import (
	"fmt"
	"strings"

	"github.com/gen2brain/go-fitz"
	"go.uber.org/zap"
)

// Reader supplies the machine-extractable text of a PDF document.
type Reader interface {
	// FirstPageText returns the text layer of the first page only.
	FirstPageText(path string) (string, error)

	// AllPagesText returns the concatenated text of every page.
	AllPagesText(path string) (string, error)
}

// FitzReader implements Reader on top of mupdf.
type FitzReader struct {
	logger *zap.Logger
}

// NewFitzReader creates a new FitzReader.
func NewFitzReader(logger *zap.Logger) *FitzReader {
	return &FitzReader{logger: logger}
}

// FirstPageText returns the text layer of the first page.
func (r *FitzReader) FirstPageText(path string) (string, error) {
	doc, err := fitz.New(path)
	if err != nil {
		return "", fmt.Errorf("failed to open PDF: %w", err)
	}
	defer doc.Close()

	if doc.NumPage() == 0 {
		return "", fmt.Errorf("PDF has no pages: %s", path)
	}

	text, err := doc.Text(0)
	if err != nil {
		return "", fmt.Errorf("failed to extract page text: %w", err)
	}
	return text, nil
}

// AllPagesText concatenates the text of every page. Pages whose text layer
// cannot be read are skipped, not fatal.
func (r *FitzReader) AllPagesText(path string) (string, error) {
	doc, err := fitz.New(path)
	if err != nil {
		return "", fmt.Errorf("failed to open PDF: %w", err)
	}
	defer doc.Close()

	var sb strings.Builder
	for page := 0; page < doc.NumPage(); page++ {
		text, err := doc.Text(page)
		if err != nil {
			r.logger.Warn("Failed to extract page text",
				zap.String("path", path),
				zap.Int("page", page),
				zap.Error(err))
			continue
		}
		sb.WriteString(text)
	}
	return sb.String(), nil
}
