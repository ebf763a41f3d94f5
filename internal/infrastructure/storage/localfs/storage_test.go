package localfs

import (
	"context"
	"io"
	"strings"
	"testing"
)

func TestSaveAndOpenRoundTrip(t *testing.T) {
	store, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("init storage: %v", err)
	}

	ctx := context.Background()
	if err := store.Save(ctx, "abc_invoice.pdf", strings.NewReader("%PDF-1.4 payload")); err != nil {
		t.Fatalf("save: %v", err)
	}

	reader, err := store.Open(ctx, "abc_invoice.pdf")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer reader.Close()

	content, err := io.ReadAll(reader)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(content) != "%PDF-1.4 payload" {
		t.Fatalf("content = %q", content)
	}
}

func TestRejectsKeysWithPathSeparators(t *testing.T) {
	store, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("init storage: %v", err)
	}

	ctx := context.Background()
	for _, key := range []string{"", "../escape.pdf", "dir/file.pdf", `dir\file.pdf`} {
		if err := store.Save(ctx, key, strings.NewReader("x")); err == nil {
			t.Fatalf("expected save rejection for key %q", key)
		}
		if _, err := store.Open(ctx, key); err == nil {
			t.Fatalf("expected open rejection for key %q", key)
		}
	}
}

func TestOpenMissingKey(t *testing.T) {
	store, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("init storage: %v", err)
	}

	if _, err := store.Open(context.Background(), "missing.pdf"); err == nil {
		t.Fatalf("expected error for missing object")
	}
}
