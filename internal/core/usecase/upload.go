package usecase

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/comexkit/tradedocs/internal/core/domain"
	"github.com/comexkit/tradedocs/internal/core/ports"
)

// UploadDocumentUseCase accepts one document for a session role, stores
// the raw bytes, and hands the processing task off. When an inline
// processor is configured the task runs synchronously in the request
// path instead of going through the queue; single-binary deployments
// use that mode.
type UploadDocumentUseCase struct {
	store     ports.SessionStore
	storage   ports.ObjectStorage
	queue     ports.MessageQueue
	processor ports.DocumentProcessor
}

func NewUploadDocumentUseCase(
	store ports.SessionStore,
	storage ports.ObjectStorage,
	queue ports.MessageQueue,
	processor ports.DocumentProcessor,
) *UploadDocumentUseCase {
	return &UploadDocumentUseCase{
		store:     store,
		storage:   storage,
		queue:     queue,
		processor: processor,
	}
}

func (uc *UploadDocumentUseCase) Upload(
	ctx context.Context,
	sessionID string,
	docType domain.DocType,
	filename string,
	body io.Reader,
) (*domain.DocumentTask, error) {
	if !docType.Valid() {
		return nil, domain.WrapError(domain.ErrInvalidInput, "validate doc type", fmt.Errorf("unknown doc type %q", docType))
	}
	if _, err := uc.store.Snapshot(ctx, sessionID); err != nil {
		return nil, fmt.Errorf("check session: %w", err)
	}

	storageKey := fmt.Sprintf("%s_%s", uuid.NewString(), sanitizeFilename(filename))
	if err := uc.storage.Save(ctx, storageKey, body); err != nil {
		return nil, fmt.Errorf("save to object storage: %w", err)
	}

	task := domain.DocumentTask{
		SessionID:  sessionID,
		DocType:    docType,
		StorageKey: storageKey,
		Filename:   filename,
		EnqueuedAt: time.Now().UTC(),
	}

	if uc.processor != nil {
		if _, err := uc.processor.Process(ctx, task); err != nil {
			return nil, fmt.Errorf("process inline: %w", err)
		}
		return &task, nil
	}

	if err := uc.queue.PublishDocumentTask(ctx, task); err != nil {
		return nil, fmt.Errorf("publish document task: %w", err)
	}
	return &task, nil
}

func sanitizeFilename(name string) string {
	base := filepath.Base(name)
	base = strings.ReplaceAll(base, " ", "_")
	base = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z':
			return r
		case r >= 'A' && r <= 'Z':
			return r
		case r >= '0' && r <= '9':
			return r
		case r == '.', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, base)
	if base == "" || base == "." {
		return "document.pdf"
	}
	return base
}
