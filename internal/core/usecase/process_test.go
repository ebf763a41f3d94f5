package usecase

import (
	"context"
	"strings"
	"testing"

	"github.com/comexkit/tradedocs/internal/core/domain"
	"github.com/comexkit/tradedocs/internal/core/ocrquality"
	"github.com/comexkit/tradedocs/internal/core/resolve"
)

type extractorFake struct {
	text *domain.ExtractedText
	err  error
}

func (f *extractorFake) Extract(context.Context, string, []byte) (*domain.ExtractedText, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.text, nil
}

func seedTask(t *testing.T, store *sessionStoreFake, storage *storageFake) domain.DocumentTask {
	t.Helper()
	task := domain.DocumentTask{
		SessionID:  "s1",
		DocType:    domain.DocTypeInvoice,
		StorageKey: "k1_invoice.pdf",
		Filename:   "invoice.pdf",
	}
	storage.objects[task.StorageKey] = []byte("%PDF")
	return task
}

func newProcessUseCase(store *sessionStoreFake, storage *storageFake, extractor *extractorFake) *ProcessDocumentUseCase {
	engine := resolve.NewEngine(nil, resolve.Config{})
	return NewProcessDocumentUseCase(store, storage, extractor, engine, ocrquality.Thresholds{})
}

func TestProcessBuildsRecord(t *testing.T) {
	store := newSessionStoreFake("s1")
	storage := newStorageFake()
	extractor := &extractorFake{text: &domain.ExtractedText{
		Text:   "INVOICE NO INV-2024-0001\nISSUE DATE: 12/03/2024\n",
		Method: domain.ExtractionNative,
	}}
	uc := newProcessUseCase(store, storage, extractor)
	task := seedTask(t, store, storage)

	record, err := uc.Process(context.Background(), task)
	if err != nil {
		t.Fatalf("process failed: %v", err)
	}
	if record.Fields[domain.FieldInvoiceNumber].Value != "INV-2024-0001" {
		t.Fatalf("invoice_number = %+v", record.Fields[domain.FieldInvoiceNumber])
	}
	if record.ExtractionMethod != domain.ExtractionNative || record.LowOCRConfidence {
		t.Fatalf("native extraction misreported: %+v", record)
	}
	if record.ExtractedAt.IsZero() {
		t.Fatalf("record has no extraction timestamp")
	}
	if store.replaced != record || store.replacedFor != "s1" {
		t.Fatalf("record not stored for session s1")
	}
}

func TestProcessScoresOCRPages(t *testing.T) {
	store := newSessionStoreFake("s1")
	storage := newStorageFake()
	extractor := &extractorFake{text: &domain.ExtractedText{
		Text:   "INVOICE NO INV-2024-0001\n",
		Method: domain.ExtractionOCR,
		Pages: []domain.OCRPage{
			{
				Number:      1,
				Text:        "INVOICE NO INV-2024-0001",
				Tokens:      []string{"INVOICE", "NO", "INV-2024-0001"},
				Confidences: []string{"40", "35", "30"},
			},
		},
	}}
	uc := newProcessUseCase(store, storage, extractor)
	task := seedTask(t, store, storage)

	record, err := uc.Process(context.Background(), task)
	if err != nil {
		t.Fatalf("process failed: %v", err)
	}
	if len(record.OCRQuality) != 1 {
		t.Fatalf("ocr quality pages = %d, want 1", len(record.OCRQuality))
	}
	if !record.LowOCRConfidence {
		t.Fatalf("low-confidence OCR not flagged: %+v", record.OCRQuality)
	}
}

func TestProcessEmptyTextFails(t *testing.T) {
	store := newSessionStoreFake("s1")
	storage := newStorageFake()
	extractor := &extractorFake{text: &domain.ExtractedText{Text: "   \n ", Method: domain.ExtractionOCR}}
	uc := newProcessUseCase(store, storage, extractor)
	task := seedTask(t, store, storage)

	_, err := uc.Process(context.Background(), task)
	if !domain.IsKind(err, domain.ErrExtractionFailed) {
		t.Fatalf("err = %v, want extraction failed", err)
	}
	if store.replaced != nil {
		t.Fatalf("failed extraction still stored a record")
	}
}

func TestProcessCapsRawPreview(t *testing.T) {
	store := newSessionStoreFake("s1")
	storage := newStorageFake()
	longText := "INVOICE NO INV-2024-0001\n" + strings.Repeat("FILLER LINE OF TEXT\n", 200)
	extractor := &extractorFake{text: &domain.ExtractedText{Text: longText, Method: domain.ExtractionNative}}
	uc := newProcessUseCase(store, storage, extractor)
	task := seedTask(t, store, storage)

	record, err := uc.Process(context.Background(), task)
	if err != nil {
		t.Fatalf("process failed: %v", err)
	}
	if len(record.RawTextPreview) != rawPreviewLimit {
		t.Fatalf("preview length = %d, want %d", len(record.RawTextPreview), rawPreviewLimit)
	}
}
