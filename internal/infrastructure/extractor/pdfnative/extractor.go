// Package pdfnative extracts the embedded text layer of a PDF. When a
// document has no usable text layer (a pure scan), extraction falls
// through to the configured OCR extractor.
package pdfnative

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/comexkit/tradedocs/internal/core/domain"
	"github.com/comexkit/tradedocs/internal/core/ports"
)

// minNativeChars is the floor below which a text layer is treated as
// absent; scanner-produced PDFs often carry a few stray glyphs.
const minNativeChars = 40

type Extractor struct {
	fallback ports.TextExtractor
}

// New builds the extractor. fallback may be nil, in which case a missing
// text layer is an extraction failure.
func New(fallback ports.TextExtractor) *Extractor {
	return &Extractor{fallback: fallback}
}

func (e *Extractor) Extract(ctx context.Context, filename string, content []byte) (*domain.ExtractedText, error) {
	text, err := nativeText(content)
	if err == nil && len(strings.TrimSpace(text)) >= minNativeChars {
		return &domain.ExtractedText{Text: text, Method: domain.ExtractionNative}, nil
	}

	if e.fallback != nil {
		return e.fallback.Extract(ctx, filename, content)
	}
	if err != nil {
		return nil, domain.WrapError(domain.ErrExtractionFailed, "parse pdf", err)
	}
	return &domain.ExtractedText{Text: text, Method: domain.ExtractionNative}, nil
}

func nativeText(content []byte) (string, error) {
	reader, err := pdf.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return "", fmt.Errorf("open pdf: %w", err)
	}

	var b strings.Builder
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		pageText, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		if b.Len() > 0 {
			b.WriteString("\n")
		}
		b.WriteString(pageText)
	}
	return b.String(), nil
}
