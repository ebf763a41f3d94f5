package usecase

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/comexkit/tradedocs/internal/core/domain"
	"github.com/comexkit/tradedocs/internal/core/ocrquality"
	"github.com/comexkit/tradedocs/internal/core/ports"
	"github.com/comexkit/tradedocs/internal/core/resolve"
)

const rawPreviewLimit = 1500

// ProcessDocumentUseCase runs the full per-document pipeline: load the
// stored bytes, extract text, score OCR quality, resolve fields, detect
// line items, and replace the session's record for that role.
type ProcessDocumentUseCase struct {
	store         ports.SessionStore
	storage       ports.ObjectStorage
	extractor     ports.TextExtractor
	engine        *resolve.Engine
	ocrThresholds ocrquality.Thresholds
}

func NewProcessDocumentUseCase(
	store ports.SessionStore,
	storage ports.ObjectStorage,
	extractor ports.TextExtractor,
	engine *resolve.Engine,
	ocrThresholds ocrquality.Thresholds,
) *ProcessDocumentUseCase {
	return &ProcessDocumentUseCase{
		store:         store,
		storage:       storage,
		extractor:     extractor,
		engine:        engine,
		ocrThresholds: ocrThresholds,
	}
}

func (uc *ProcessDocumentUseCase) Process(ctx context.Context, task domain.DocumentTask) (*domain.DocumentRecord, error) {
	content, err := uc.loadContent(ctx, task.StorageKey)
	if err != nil {
		return nil, err
	}

	text, err := uc.extractText(ctx, task.Filename, content)
	if err != nil {
		return nil, err
	}

	record := &domain.DocumentRecord{
		DocType:          task.DocType,
		Filename:         task.Filename,
		ExtractedAt:      time.Now().UTC(),
		RawTextPreview:   preview(text.Text),
		Fields:           uc.engine.Resolve(ctx, task.DocType, text.Text),
		LineItems:        resolve.ParseLineItems(text.Text),
		ExtractionMethod: text.Method,
	}
	if text.Method == domain.ExtractionOCR {
		record.OCRQuality = ocrquality.ScorePages(text.Pages)
		record.LowOCRConfidence = ocrquality.IsLowConfidence(record.OCRQuality, uc.ocrThresholds)
	}

	if err := uc.store.ReplaceRole(ctx, task.SessionID, record); err != nil {
		return nil, fmt.Errorf("replace session record: %w", err)
	}
	return record, nil
}

func (uc *ProcessDocumentUseCase) loadContent(ctx context.Context, storageKey string) ([]byte, error) {
	reader, err := uc.storage.Open(ctx, storageKey)
	if err != nil {
		return nil, fmt.Errorf("open stored document: %w", err)
	}
	defer reader.Close()

	content, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("read stored document: %w", err)
	}
	return content, nil
}

func (uc *ProcessDocumentUseCase) extractText(ctx context.Context, filename string, content []byte) (*domain.ExtractedText, error) {
	text, err := uc.extractor.Extract(ctx, filename, content)
	if err != nil {
		return nil, fmt.Errorf("extract text: %w", err)
	}
	if strings.TrimSpace(text.Text) == "" {
		return nil, domain.WrapError(domain.ErrExtractionFailed, "extract text", errors.New("empty extracted text"))
	}
	return text, nil
}

// preview caps the raw text kept on the record without splitting a UTF-8
// sequence.
func preview(text string) string {
	if len(text) <= rawPreviewLimit {
		return text
	}
	cut := rawPreviewLimit
	for cut > 0 && text[cut]&0xC0 == 0x80 {
		cut--
	}
	return text[:cut]
}
