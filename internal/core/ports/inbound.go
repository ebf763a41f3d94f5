package ports

import (
	"context"
	"io"

	"github.com/comexkit/tradedocs/internal/core/domain"
)

// SessionManager is the inbound contract for session lifecycle.
type SessionManager interface {
	CreateSession(ctx context.Context) (string, error)
}

// DocumentIngestor accepts one uploaded document for a session role.
type DocumentIngestor interface {
	Upload(ctx context.Context, sessionID string, docType domain.DocType, filename string, body io.Reader) (*domain.DocumentTask, error)
}

// DocumentProcessor runs the extraction/resolution pipeline for one task.
type DocumentProcessor interface {
	Process(ctx context.Context, task domain.DocumentTask) (*domain.DocumentRecord, error)
}

// SessionAnalyzer reconciles a session's documents.
type SessionAnalyzer interface {
	Analyze(ctx context.Context, sessionID string) (*domain.ComparisonResult, error)
	Report(ctx context.Context, sessionID string) (*domain.SessionReport, error)
}
