// Package postgres persists analysis sessions and their processed
// documents. One row per (session, role); a new upload for a role
// replaces the previous row atomically.
package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/comexkit/tradedocs/internal/core/domain"
)

type SessionRepository struct {
	db *sql.DB
}

func NewSessionRepository(db *sql.DB) *SessionRepository {
	return &SessionRepository{db: db}
}

func OpenDB(dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("sql open: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("db ping: %w", err)
	}
	return db, nil
}

func (r *SessionRepository) EnsureSchema(ctx context.Context) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	// Serialize bootstrap DDL across api/worker startups.
	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, int64(2026082901)); err != nil {
		return fmt.Errorf("acquire schema lock: %w", err)
	}

	const query = `
CREATE TABLE IF NOT EXISTS sessions (
	id TEXT PRIMARY KEY,
	created_at TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS trade_documents (
	session_id TEXT NOT NULL REFERENCES sessions(id) ON DELETE CASCADE,
	doc_type TEXT NOT NULL,
	filename TEXT NOT NULL,
	extracted_at TIMESTAMPTZ NOT NULL,
	raw_text_preview TEXT NOT NULL DEFAULT '',
	fields JSONB NOT NULL DEFAULT '{}'::jsonb,
	line_items JSONB NOT NULL DEFAULT '[]'::jsonb,
	extraction_method TEXT NOT NULL,
	low_ocr_confidence BOOLEAN NOT NULL DEFAULT FALSE,
	ocr_quality JSONB NOT NULL DEFAULT '[]'::jsonb,
	PRIMARY KEY (session_id, doc_type)
);

CREATE INDEX IF NOT EXISTS idx_trade_documents_session ON trade_documents(session_id);
`
	if _, err := tx.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("execute schema ddl: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema tx: %w", err)
	}
	return nil
}

func (r *SessionRepository) Create(ctx context.Context) (string, error) {
	id := uuid.NewString()
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO sessions (id, created_at) VALUES ($1, $2)`,
		id, time.Now().UTC(),
	)
	if err != nil {
		return "", fmt.Errorf("insert session: %w", err)
	}
	return id, nil
}

func (r *SessionRepository) ReplaceRole(ctx context.Context, sessionID string, record *domain.DocumentRecord) error {
	exists, err := r.sessionExists(ctx, sessionID)
	if err != nil {
		return err
	}
	if !exists {
		return domain.WrapError(domain.ErrSessionNotFound, "replace role", fmt.Errorf("session %s", sessionID))
	}

	fieldsJSON, err := json.Marshal(record.Fields)
	if err != nil {
		return fmt.Errorf("marshal fields: %w", err)
	}
	itemsJSON, err := json.Marshal(record.LineItems)
	if err != nil {
		return fmt.Errorf("marshal line items: %w", err)
	}
	qualityJSON, err := json.Marshal(record.OCRQuality)
	if err != nil {
		return fmt.Errorf("marshal ocr quality: %w", err)
	}

	_, err = r.db.ExecContext(ctx, `
INSERT INTO trade_documents (
	session_id, doc_type, filename, extracted_at, raw_text_preview, fields, line_items, extraction_method, low_ocr_confidence, ocr_quality
) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
ON CONFLICT (session_id, doc_type) DO UPDATE SET
	filename = EXCLUDED.filename,
	extracted_at = EXCLUDED.extracted_at,
	raw_text_preview = EXCLUDED.raw_text_preview,
	fields = EXCLUDED.fields,
	line_items = EXCLUDED.line_items,
	extraction_method = EXCLUDED.extraction_method,
	low_ocr_confidence = EXCLUDED.low_ocr_confidence,
	ocr_quality = EXCLUDED.ocr_quality
`,
		sessionID, string(record.DocType), record.Filename, record.ExtractedAt, record.RawTextPreview,
		fieldsJSON, itemsJSON, string(record.ExtractionMethod), record.LowOCRConfidence, qualityJSON,
	)
	if err != nil {
		return fmt.Errorf("upsert trade document: %w", err)
	}
	return nil
}

func (r *SessionRepository) Snapshot(ctx context.Context, sessionID string) (domain.Session, error) {
	exists, err := r.sessionExists(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, domain.WrapError(domain.ErrSessionNotFound, "snapshot session", fmt.Errorf("session %s", sessionID))
	}

	rows, err := r.db.QueryContext(ctx, `
SELECT doc_type, filename, extracted_at, raw_text_preview, fields, line_items, extraction_method, low_ocr_confidence, ocr_quality
FROM trade_documents
WHERE session_id = $1
`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("select trade documents: %w", err)
	}
	defer rows.Close()

	session := domain.Session{}
	for rows.Next() {
		record, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		session[record.DocType] = record
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate trade documents: %w", err)
	}
	return session, nil
}

func (r *SessionRepository) sessionExists(ctx context.Context, sessionID string) (bool, error) {
	var one int
	err := r.db.QueryRowContext(ctx, `SELECT 1 FROM sessions WHERE id = $1`, sessionID).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("select session: %w", err)
	}
	return true, nil
}

func scanRecord(rows *sql.Rows) (*domain.DocumentRecord, error) {
	var (
		record      domain.DocumentRecord
		docType     string
		method      string
		fieldsJSON  []byte
		itemsJSON   []byte
		qualityJSON []byte
	)
	err := rows.Scan(&docType, &record.Filename, &record.ExtractedAt, &record.RawTextPreview,
		&fieldsJSON, &itemsJSON, &method, &record.LowOCRConfidence, &qualityJSON)
	if err != nil {
		return nil, fmt.Errorf("scan trade document: %w", err)
	}

	record.DocType = domain.DocType(docType)
	record.ExtractionMethod = domain.ExtractionMethod(method)
	if err := json.Unmarshal(fieldsJSON, &record.Fields); err != nil {
		return nil, fmt.Errorf("unmarshal fields: %w", err)
	}
	if err := json.Unmarshal(itemsJSON, &record.LineItems); err != nil {
		return nil, fmt.Errorf("unmarshal line items: %w", err)
	}
	if err := json.Unmarshal(qualityJSON, &record.OCRQuality); err != nil {
		return nil, fmt.Errorf("unmarshal ocr quality: %w", err)
	}
	return &record, nil
}
