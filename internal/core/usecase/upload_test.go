package usecase

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/comexkit/tradedocs/internal/core/domain"
)

type sessionStoreFake struct {
	sessions    map[string]domain.Session
	replaced    *domain.DocumentRecord
	replacedFor string
	replaceErr  error
}

func newSessionStoreFake(ids ...string) *sessionStoreFake {
	f := &sessionStoreFake{sessions: make(map[string]domain.Session)}
	for _, id := range ids {
		f.sessions[id] = domain.Session{}
	}
	return f
}

func (f *sessionStoreFake) Create(context.Context) (string, error) {
	return "", errors.New("not implemented")
}

func (f *sessionStoreFake) ReplaceRole(_ context.Context, sessionID string, record *domain.DocumentRecord) error {
	if f.replaceErr != nil {
		return f.replaceErr
	}
	if _, ok := f.sessions[sessionID]; !ok {
		return domain.ErrSessionNotFound
	}
	f.replaced = record
	f.replacedFor = sessionID
	f.sessions[sessionID][record.DocType] = record
	return nil
}

func (f *sessionStoreFake) Snapshot(_ context.Context, sessionID string) (domain.Session, error) {
	session, ok := f.sessions[sessionID]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	return session, nil
}

type storageFake struct {
	objects map[string][]byte
	saveErr error
}

func newStorageFake() *storageFake {
	return &storageFake{objects: make(map[string][]byte)}
}

func (f *storageFake) Save(_ context.Context, key string, data io.Reader) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	raw, err := io.ReadAll(data)
	if err != nil {
		return err
	}
	f.objects[key] = raw
	return nil
}

func (f *storageFake) Open(_ context.Context, key string) (io.ReadCloser, error) {
	raw, ok := f.objects[key]
	if !ok {
		return nil, errors.New("object not found")
	}
	return io.NopCloser(bytes.NewReader(raw)), nil
}

type queueFake struct {
	task      *domain.DocumentTask
	publishes int
	err       error
}

func (f *queueFake) PublishDocumentTask(_ context.Context, task domain.DocumentTask) error {
	if f.err != nil {
		return f.err
	}
	f.publishes++
	f.task = &task
	return nil
}

func (f *queueFake) SubscribeDocumentTasks(context.Context, func(context.Context, domain.DocumentTask) error) error {
	return errors.New("not implemented")
}

type processorFake struct {
	task *domain.DocumentTask
	err  error
}

func (f *processorFake) Process(_ context.Context, task domain.DocumentTask) (*domain.DocumentRecord, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.task = &task
	return &domain.DocumentRecord{DocType: task.DocType}, nil
}

func TestUploadPublishesTask(t *testing.T) {
	store := newSessionStoreFake("s1")
	storage := newStorageFake()
	queue := &queueFake{}
	uc := NewUploadDocumentUseCase(store, storage, queue, nil)

	task, err := uc.Upload(context.Background(), "s1", domain.DocTypeInvoice, "my invoice (1).pdf", strings.NewReader("%PDF"))
	if err != nil {
		t.Fatalf("upload failed: %v", err)
	}
	if queue.publishes != 1 || queue.task == nil {
		t.Fatalf("expected one published task, got %d", queue.publishes)
	}
	if task.SessionID != "s1" || task.DocType != domain.DocTypeInvoice {
		t.Fatalf("task = %+v", task)
	}
	if !strings.HasSuffix(task.StorageKey, "_my_invoice__1_.pdf") {
		t.Fatalf("storage key %q not sanitized", task.StorageKey)
	}
	if _, ok := storage.objects[task.StorageKey]; !ok {
		t.Fatalf("document bytes not stored under %q", task.StorageKey)
	}
	if task.EnqueuedAt.IsZero() {
		t.Fatalf("task has no enqueue timestamp")
	}
}

func TestUploadRejectsUnknownDocType(t *testing.T) {
	uc := NewUploadDocumentUseCase(newSessionStoreFake("s1"), newStorageFake(), &queueFake{}, nil)

	_, err := uc.Upload(context.Background(), "s1", domain.DocType("waybill"), "doc.pdf", strings.NewReader("x"))
	if !domain.IsKind(err, domain.ErrInvalidInput) {
		t.Fatalf("err = %v, want invalid input", err)
	}
}

func TestUploadUnknownSession(t *testing.T) {
	uc := NewUploadDocumentUseCase(newSessionStoreFake(), newStorageFake(), &queueFake{}, nil)

	_, err := uc.Upload(context.Background(), "nope", domain.DocTypeBL, "bl.pdf", strings.NewReader("x"))
	if !domain.IsKind(err, domain.ErrSessionNotFound) {
		t.Fatalf("err = %v, want session not found", err)
	}
}

func TestUploadInlineProcessing(t *testing.T) {
	queue := &queueFake{}
	processor := &processorFake{}
	uc := NewUploadDocumentUseCase(newSessionStoreFake("s1"), newStorageFake(), queue, processor)

	_, err := uc.Upload(context.Background(), "s1", domain.DocTypePackingList, "pl.pdf", strings.NewReader("x"))
	if err != nil {
		t.Fatalf("upload failed: %v", err)
	}
	if processor.task == nil {
		t.Fatalf("inline processor not invoked")
	}
	if queue.publishes != 0 {
		t.Fatalf("inline mode still published %d tasks", queue.publishes)
	}
}
