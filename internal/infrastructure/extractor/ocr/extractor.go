// Package ocr extracts text from scanned PDFs by rendering pages with
// pdftoppm and recognizing them with tesseract. The TSV output is kept
// per page so the quality scorer can work from raw token confidences.
package ocr

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/comexkit/tradedocs/internal/core/domain"
)

type Config struct {
	Pdftoppm  string
	Tesseract string
	Languages string
	DPI       int
	MaxPages  int
}

func (c Config) normalize() Config {
	if c.Pdftoppm == "" {
		c.Pdftoppm = "pdftoppm"
	}
	if c.Tesseract == "" {
		c.Tesseract = "tesseract"
	}
	if c.Languages == "" {
		c.Languages = "por+eng"
	}
	if c.DPI <= 0 {
		c.DPI = 300
	}
	if c.MaxPages <= 0 {
		c.MaxPages = 20
	}
	return c
}

type Extractor struct {
	cfg    Config
	runner Runner
}

func New(cfg Config) *Extractor {
	return NewWithRunner(cfg, execRunner{})
}

func NewWithRunner(cfg Config, runner Runner) *Extractor {
	return &Extractor{cfg: cfg.normalize(), runner: runner}
}

func (e *Extractor) Extract(ctx context.Context, _ string, content []byte) (*domain.ExtractedText, error) {
	tmpDir, err := os.MkdirTemp("", "tradedocs-ocr-*")
	if err != nil {
		return nil, fmt.Errorf("create ocr temp dir: %w", err)
	}
	defer os.RemoveAll(tmpDir)

	pdfPath := filepath.Join(tmpDir, "input.pdf")
	if err := os.WriteFile(pdfPath, content, 0o600); err != nil {
		return nil, fmt.Errorf("write ocr input: %w", err)
	}

	images, err := e.renderPages(ctx, pdfPath, tmpDir)
	if err != nil {
		return nil, err
	}

	var b strings.Builder
	pages := make([]domain.OCRPage, 0, len(images))
	for i, img := range images {
		page, err := e.recognizePage(ctx, img, i+1)
		if err != nil {
			return nil, err
		}
		if b.Len() > 0 {
			b.WriteString("\n")
		}
		b.WriteString(page.Text)
		pages = append(pages, page)
	}

	return &domain.ExtractedText{
		Text:   b.String(),
		Method: domain.ExtractionOCR,
		Pages:  pages,
	}, nil
}

func (e *Extractor) renderPages(ctx context.Context, pdfPath, tmpDir string) ([]string, error) {
	prefix := filepath.Join(tmpDir, "page")
	_, errb, err := e.runner.Run(ctx, e.cfg.Pdftoppm, "-r", strconv.Itoa(e.cfg.DPI), "-png", pdfPath, prefix)
	if err != nil {
		return nil, domain.WrapError(domain.ErrExtractionFailed, "render pdf pages",
			fmt.Errorf("%w: %s", err, strings.TrimSpace(string(errb))))
	}

	images, _ := filepath.Glob(prefix + "-*.png")
	sort.Strings(images)
	if len(images) > e.cfg.MaxPages {
		images = images[:e.cfg.MaxPages]
	}
	if len(images) == 0 {
		return nil, domain.WrapError(domain.ErrExtractionFailed, "render pdf pages",
			fmt.Errorf("no pages rendered"))
	}
	return images, nil
}

func (e *Extractor) recognizePage(ctx context.Context, imagePath string, number int) (domain.OCRPage, error) {
	rotation := e.detectRotation(ctx, imagePath)

	out, errb, err := e.runner.Run(ctx, e.cfg.Tesseract, imagePath, "stdout",
		"-l", e.cfg.Languages, "--psm", "1", "tsv")
	if err != nil {
		return domain.OCRPage{}, domain.WrapError(domain.ErrExtractionFailed, "recognize page",
			fmt.Errorf("%w: %s", err, strings.TrimSpace(string(errb))))
	}

	page := parseTSV(string(out))
	page.Number = number
	page.Rotation = rotation
	return page, nil
}

var osdRotate = regexp.MustCompile(`(?m)^Rotate:\s*(\d+)`)

// detectRotation asks tesseract's orientation detector how much the page
// is rotated. Recognition itself runs with automatic page segmentation,
// which already compensates; the angle is recorded for the quality report.
func (e *Extractor) detectRotation(ctx context.Context, imagePath string) float64 {
	out, _, err := e.runner.Run(ctx, e.cfg.Tesseract, imagePath, "stdout", "--psm", "0")
	if err != nil {
		return 0
	}
	m := osdRotate.FindStringSubmatch(string(out))
	if m == nil {
		return 0
	}
	deg, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0
	}
	return deg
}

// parseTSV rebuilds page text from tesseract's word-level TSV rows and
// collects the raw token and confidence columns. Confidences stay as
// strings; the scorer decides what is parsable.
func parseTSV(tsv string) domain.OCRPage {
	var (
		b           strings.Builder
		tokens      []string
		confidences []string
		lastLineKey string
	)
	for _, row := range strings.Split(tsv, "\n") {
		cols := strings.Split(row, "\t")
		if len(cols) < 12 || cols[0] != "5" {
			continue
		}
		word := strings.TrimSpace(cols[11])
		if word == "" {
			continue
		}

		lineKey := strings.Join(cols[1:5], "/")
		if b.Len() > 0 {
			if lineKey != lastLineKey {
				b.WriteString("\n")
			} else {
				b.WriteString(" ")
			}
		}
		lastLineKey = lineKey
		b.WriteString(word)

		tokens = append(tokens, word)
		confidences = append(confidences, cols[10])
	}
	return domain.OCRPage{Text: b.String(), Tokens: tokens, Confidences: confidences}
}
