package memory

import (
	"context"
	"testing"

	"github.com/comexkit/tradedocs/internal/core/domain"
)

func TestStoreLifecycle(t *testing.T) {
	store := New()
	ctx := context.Background()

	id, err := store.Create(ctx)
	if err != nil || id == "" {
		t.Fatalf("Create() = %q, %v", id, err)
	}

	first := &domain.DocumentRecord{DocType: domain.DocTypeInvoice, Filename: "a.pdf"}
	if err := store.ReplaceRole(ctx, id, first); err != nil {
		t.Fatalf("ReplaceRole() error = %v", err)
	}

	second := &domain.DocumentRecord{DocType: domain.DocTypeInvoice, Filename: "b.pdf"}
	if err := store.ReplaceRole(ctx, id, second); err != nil {
		t.Fatalf("ReplaceRole() error = %v", err)
	}

	session, err := store.Snapshot(ctx, id)
	if err != nil {
		t.Fatalf("Snapshot() error = %v", err)
	}
	if session[domain.DocTypeInvoice].Filename != "b.pdf" {
		t.Fatalf("replacement not last-write-wins: %+v", session[domain.DocTypeInvoice])
	}
}

func TestStoreUnknownSession(t *testing.T) {
	store := New()
	ctx := context.Background()

	err := store.ReplaceRole(ctx, "missing", &domain.DocumentRecord{DocType: domain.DocTypeBL})
	if !domain.IsKind(err, domain.ErrSessionNotFound) {
		t.Fatalf("ReplaceRole err = %v, want session not found", err)
	}
	if _, err := store.Snapshot(ctx, "missing"); !domain.IsKind(err, domain.ErrSessionNotFound) {
		t.Fatalf("Snapshot err = %v, want session not found", err)
	}
}

func TestSnapshotIsolatedFromLaterWrites(t *testing.T) {
	store := New()
	ctx := context.Background()

	id, _ := store.Create(ctx)
	_ = store.ReplaceRole(ctx, id, &domain.DocumentRecord{DocType: domain.DocTypeInvoice, Filename: "a.pdf"})

	view, err := store.Snapshot(ctx, id)
	if err != nil {
		t.Fatalf("Snapshot() error = %v", err)
	}
	_ = store.ReplaceRole(ctx, id, &domain.DocumentRecord{DocType: domain.DocTypeInvoice, Filename: "b.pdf"})

	if view[domain.DocTypeInvoice].Filename != "a.pdf" {
		t.Fatalf("snapshot mutated by later write: %+v", view[domain.DocTypeInvoice])
	}
}
