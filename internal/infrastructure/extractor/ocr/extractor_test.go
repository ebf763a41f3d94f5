package ocr

import (
	"context"
	"os"
	"strings"
	"testing"

	"github.com/comexkit/tradedocs/internal/core/domain"
)

const sampleTSV = "level\tpage_num\tblock_num\tpar_num\tline_num\tword_num\tleft\ttop\twidth\theight\tconf\ttext\n" +
	"1\t1\t0\t0\t0\t0\t0\t0\t100\t100\t-1\t\n" +
	"5\t1\t1\t1\t1\t1\t0\t0\t10\t10\t91.5\tINVOICE\n" +
	"5\t1\t1\t1\t1\t2\t12\t0\t10\t10\t88\tNO\n" +
	"5\t1\t1\t1\t2\t1\t0\t12\t10\t10\t95\tINV-2024-0001\n"

type runnerFake struct {
	tsv        string
	osd        string
	renderErr  error
	pageCount  int
	tsvCalls   int
	renderArgs []string
}

func (f *runnerFake) Run(_ context.Context, name string, args ...string) ([]byte, []byte, error) {
	switch {
	case strings.Contains(name, "pdftoppm"):
		if f.renderErr != nil {
			return nil, []byte("render boom"), f.renderErr
		}
		f.renderArgs = args
		prefix := args[len(args)-1]
		for i := 0; i < f.pageCount; i++ {
			if err := os.WriteFile(prefix+"-"+string(rune('1'+i))+".png", []byte("png"), 0o600); err != nil {
				return nil, nil, err
			}
		}
		return nil, nil, nil
	case len(args) >= 2 && args[len(args)-1] == "tsv":
		f.tsvCalls++
		return []byte(f.tsv), nil, nil
	default:
		return []byte(f.osd), nil, nil
	}
}

func TestExtractBuildsPagesFromTSV(t *testing.T) {
	runner := &runnerFake{tsv: sampleTSV, osd: "Rotate: 90\nOrientation confidence: 2.5\n", pageCount: 1}
	extractor := NewWithRunner(Config{}, runner)

	text, err := extractor.Extract(context.Background(), "scan.pdf", []byte("%PDF"))
	if err != nil {
		t.Fatalf("extract failed: %v", err)
	}
	if text.Method != domain.ExtractionOCR {
		t.Fatalf("method = %q, want ocr", text.Method)
	}
	if len(text.Pages) != 1 {
		t.Fatalf("pages = %d, want 1", len(text.Pages))
	}

	page := text.Pages[0]
	if page.Number != 1 || page.Rotation != 90 {
		t.Fatalf("page meta = %+v", page)
	}
	if page.Text != "INVOICE NO\nINV-2024-0001" {
		t.Fatalf("page text = %q", page.Text)
	}
	if len(page.Tokens) != 3 || len(page.Confidences) != 3 {
		t.Fatalf("tokens/confidences = %d/%d, want 3/3", len(page.Tokens), len(page.Confidences))
	}
	if page.Confidences[0] != "91.5" {
		t.Fatalf("confidence[0] = %q, want raw 91.5", page.Confidences[0])
	}
}

func TestExtractRenderFailure(t *testing.T) {
	runner := &runnerFake{renderErr: os.ErrPermission}
	extractor := NewWithRunner(Config{}, runner)

	_, err := extractor.Extract(context.Background(), "scan.pdf", []byte("%PDF"))
	if !domain.IsKind(err, domain.ErrExtractionFailed) {
		t.Fatalf("err = %v, want extraction failed", err)
	}
}

func TestExtractNoPagesRendered(t *testing.T) {
	runner := &runnerFake{pageCount: 0}
	extractor := NewWithRunner(Config{}, runner)

	_, err := extractor.Extract(context.Background(), "scan.pdf", []byte("%PDF"))
	if !domain.IsKind(err, domain.ErrExtractionFailed) {
		t.Fatalf("err = %v, want extraction failed", err)
	}
}
