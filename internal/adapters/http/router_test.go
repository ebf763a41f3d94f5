package httpadapter

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/comexkit/tradedocs/internal/core/domain"
)

type sessionsFake struct {
	id  string
	err error
}

func (f *sessionsFake) CreateSession(context.Context) (string, error) {
	return f.id, f.err
}

type ingestorFake struct {
	task    *domain.DocumentTask
	err     error
	gotType domain.DocType
	gotName string
}

func (f *ingestorFake) Upload(_ context.Context, sessionID string, docType domain.DocType, filename string, _ io.Reader) (*domain.DocumentTask, error) {
	f.gotType = docType
	f.gotName = filename
	if f.err != nil {
		return nil, f.err
	}
	if f.task != nil {
		return f.task, nil
	}
	return &domain.DocumentTask{
		SessionID:  sessionID,
		DocType:    docType,
		Filename:   filename,
		StorageKey: "key_" + filename,
		EnqueuedAt: time.Now().UTC(),
	}, nil
}

type analyzerFake struct {
	result *domain.ComparisonResult
	report *domain.SessionReport
	err    error
}

func (f *analyzerFake) Analyze(context.Context, string) (*domain.ComparisonResult, error) {
	return f.result, f.err
}

func (f *analyzerFake) Report(context.Context, string) (*domain.SessionReport, error) {
	return f.report, f.err
}

func newTestRouter(cfg Config, sessions *sessionsFake, ingestor *ingestorFake, analyzer *analyzerFake) http.Handler {
	if sessions == nil {
		sessions = &sessionsFake{id: "s1"}
	}
	if ingestor == nil {
		ingestor = &ingestorFake{}
	}
	if analyzer == nil {
		analyzer = &analyzerFake{result: &domain.ComparisonResult{Status: domain.StatusApproved}}
	}
	return NewRouter(cfg, sessions, ingestor, analyzer, nil).Handler()
}

func multipartPDF(t *testing.T, filename string) (*bytes.Buffer, string) {
	t.Helper()
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	if _, err := part.Write([]byte("%PDF-1.4")); err != nil {
		t.Fatalf("write form file: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close multipart writer: %v", err)
	}
	return &body, writer.FormDataContentType()
}

func TestCreateSession(t *testing.T) {
	handler := newTestRouter(Config{}, &sessionsFake{id: "abc-123"}, nil, nil)

	req := httptest.NewRequest(http.MethodPost, "/v1/sessions", nil)
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if res.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201: %s", res.Code, res.Body.String())
	}
	var payload map[string]string
	if err := json.Unmarshal(res.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if payload["session_id"] != "abc-123" {
		t.Fatalf("session_id = %q", payload["session_id"])
	}
}

func TestUploadAccepted(t *testing.T) {
	ingestor := &ingestorFake{}
	handler := newTestRouter(Config{}, nil, ingestor, nil)

	body, contentType := multipartPDF(t, "invoice.pdf")
	req := httptest.NewRequest(http.MethodPost, "/v1/sessions/s1/documents/invoice", body)
	req.Header.Set("Content-Type", contentType)
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if res.Code != http.StatusAccepted {
		t.Fatalf("status = %d, want 202: %s", res.Code, res.Body.String())
	}
	if ingestor.gotType != domain.DocTypeInvoice || ingestor.gotName != "invoice.pdf" {
		t.Fatalf("ingestor got %q/%q", ingestor.gotType, ingestor.gotName)
	}
}

func TestUploadRejectsNonPDF(t *testing.T) {
	handler := newTestRouter(Config{}, nil, nil, nil)

	body, contentType := multipartPDF(t, "invoice.docx")
	req := httptest.NewRequest(http.MethodPost, "/v1/sessions/s1/documents/invoice", body)
	req.Header.Set("Content-Type", contentType)
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if res.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", res.Code)
	}
}

func TestUploadRejectsUnknownDocType(t *testing.T) {
	handler := newTestRouter(Config{}, nil, nil, nil)

	body, contentType := multipartPDF(t, "doc.pdf")
	req := httptest.NewRequest(http.MethodPost, "/v1/sessions/s1/documents/waybill", body)
	req.Header.Set("Content-Type", contentType)
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if res.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400 from contract validation", res.Code)
	}
}

func TestUploadUnknownSessionMapsTo404(t *testing.T) {
	ingestor := &ingestorFake{err: domain.WrapError(domain.ErrSessionNotFound, "check session", domain.ErrSessionNotFound)}
	handler := newTestRouter(Config{}, nil, ingestor, nil)

	body, contentType := multipartPDF(t, "doc.pdf")
	req := httptest.NewRequest(http.MethodPost, "/v1/sessions/missing/documents/bl", body)
	req.Header.Set("Content-Type", contentType)
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if res.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", res.Code)
	}
}

func TestUploadExtractionFailureMapsTo422(t *testing.T) {
	ingestor := &ingestorFake{err: domain.WrapError(domain.ErrExtractionFailed, "extract text", domain.ErrExtractionFailed)}
	handler := newTestRouter(Config{}, nil, ingestor, nil)

	body, contentType := multipartPDF(t, "scan.pdf")
	req := httptest.NewRequest(http.MethodPost, "/v1/sessions/s1/documents/invoice", body)
	req.Header.Set("Content-Type", contentType)
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if res.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", res.Code)
	}
}

func TestGetAnalysis(t *testing.T) {
	analyzer := &analyzerFake{result: &domain.ComparisonResult{
		Status:      domain.StatusWithDivergences,
		Divergences: []string{"Divergence in field \"Total value\": values differ across documents."},
	}}
	handler := newTestRouter(Config{}, nil, nil, analyzer)

	req := httptest.NewRequest(http.MethodGet, "/v1/sessions/s1/analysis", nil)
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if res.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", res.Code)
	}
	var payload domain.ComparisonResult
	if err := json.Unmarshal(res.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if payload.Status != domain.StatusWithDivergences || len(payload.Divergences) != 1 {
		t.Fatalf("payload = %+v", payload)
	}
}

func TestGetReportAttachment(t *testing.T) {
	analyzer := &analyzerFake{report: &domain.SessionReport{
		GeneratedAt: time.Now().UTC(),
		Documents:   map[domain.DocType]*domain.DocumentRecord{},
		Analysis:    &domain.ComparisonResult{Status: domain.StatusApproved},
	}}
	handler := newTestRouter(Config{}, nil, nil, analyzer)

	req := httptest.NewRequest(http.MethodGet, "/v1/sessions/s1/report", nil)
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if res.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", res.Code)
	}
	if got := res.Header().Get("Content-Disposition"); got != `attachment; filename="analysis_report.json"` {
		t.Fatalf("content disposition = %q", got)
	}
}

func TestGetReportXLSX(t *testing.T) {
	analyzer := &analyzerFake{report: &domain.SessionReport{
		GeneratedAt: time.Now().UTC(),
		Documents:   map[domain.DocType]*domain.DocumentRecord{},
		Analysis: &domain.ComparisonResult{
			Status: domain.StatusApproved,
			Matrix: []domain.MatrixRow{{Field: domain.FieldInvoiceNumber, Label: "Invoice number", Invoice: "INV-1"}},
		},
	}}
	handler := newTestRouter(Config{}, nil, nil, analyzer)

	req := httptest.NewRequest(http.MethodGet, "/v1/sessions/s1/report.xlsx", nil)
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if res.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", res.Code)
	}
	if got := res.Header().Get("Content-Type"); got != "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet" {
		t.Fatalf("content type = %q", got)
	}
	if res.Body.Len() == 0 {
		t.Fatalf("empty workbook body")
	}
}
