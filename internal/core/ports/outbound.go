package ports

import (
	"context"
	"io"

	"github.com/comexkit/tradedocs/internal/core/domain"
)

// SessionStore owns per-session document state. ReplaceRole must be a
// single atomic replacement of the record for that role (last-write-wins);
// Snapshot must return a view that later writes cannot mutate.
type SessionStore interface {
	Create(ctx context.Context) (string, error)
	ReplaceRole(ctx context.Context, sessionID string, record *domain.DocumentRecord) error
	Snapshot(ctx context.Context, sessionID string) (domain.Session, error)
}

// ObjectStorage stores uploaded source documents.
type ObjectStorage interface {
	Save(ctx context.Context, key string, data io.Reader) error
	Open(ctx context.Context, key string) (io.ReadCloser, error)
}

// MessageQueue hands document-processing tasks from the API to workers.
type MessageQueue interface {
	PublishDocumentTask(ctx context.Context, task domain.DocumentTask) error
	SubscribeDocumentTasks(ctx context.Context, handler func(context.Context, domain.DocumentTask) error) error
}

// TextExtractor turns raw document bytes into text, reporting whether the
// native text layer or OCR produced it. OCR-capable implementations also
// return per-page token/confidence arrays for quality scoring.
type TextExtractor interface {
	Extract(ctx context.Context, filename string, content []byte) (*domain.ExtractedText, error)
}

// InferenceProvider is the optional external semantic-inference service
// used by the last resolution layer. Implementations must return a flat
// string map covering exactly the requested keys (empty string for
// unknown values) or an error; callers treat any error as "provider
// unavailable" and fall back locally.
type InferenceProvider interface {
	ExtractFields(ctx context.Context, sample string, keys []domain.Field) (map[domain.Field]string, error)
}
