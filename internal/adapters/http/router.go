// Package httpadapter exposes the session, upload, and analysis
// operations over HTTP. Routing uses the standard mux with manual
// subresource parsing under /v1/sessions/.
package httpadapter

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/comexkit/tradedocs/internal/core/domain"
	"github.com/comexkit/tradedocs/internal/core/ports"
)

type Config struct {
	UploadMaxBytes   int64
	RateLimitRPS     float64
	RateLimitBurst   int
	MaxInFlight      int
	BackpressureWait time.Duration
}

func (c Config) normalize() Config {
	if c.UploadMaxBytes <= 0 {
		c.UploadMaxBytes = 40 << 20
	}
	if c.BackpressureWait <= 0 {
		c.BackpressureWait = 100 * time.Millisecond
	}
	return c
}

type Router struct {
	cfg      Config
	sessions ports.SessionManager
	uploads  ports.DocumentIngestor
	analyzer ports.SessionAnalyzer
	observer RequestObserver
}

// RequestObserver receives per-request outcomes for metrics. A nil
// observer disables instrumentation.
type RequestObserver interface {
	ObserveRequest(method, path string, status int, duration time.Duration)
	ObserveUpload(docType string)
	ObserveAnalysis(status string)
}

func NewRouter(
	cfg Config,
	sessions ports.SessionManager,
	uploads ports.DocumentIngestor,
	analyzer ports.SessionAnalyzer,
	observer RequestObserver,
) *Router {
	return &Router{
		cfg:      cfg.normalize(),
		sessions: sessions,
		uploads:  uploads,
		analyzer: analyzer,
		observer: observer,
	}
}

func (rt *Router) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", rt.healthz)
	mux.HandleFunc("/v1/sessions", rt.createSession)
	mux.HandleFunc("/v1/sessions/", rt.sessionSubresource)

	var handler http.Handler = mux
	handler = newOpenAPIValidator().Middleware(handler)
	handler = backpressureMiddleware(handler, rt.cfg.MaxInFlight, rt.cfg.BackpressureWait)
	handler = rateLimitMiddleware(handler, rt.cfg.RateLimitRPS, rt.cfg.RateLimitBurst)
	handler = rt.metricsMiddleware(handler)
	handler = accessLogMiddleware(handler)
	handler = requestIDMiddleware(handler)
	return handler
}

func (rt *Router) metricsMiddleware(next http.Handler) http.Handler {
	if rt.observer == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		recorder := &statusRecorder{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(recorder, r)
		rt.observer.ObserveRequest(r.Method, routePattern(r.URL.Path), recorder.statusCode, time.Since(start))
	})
}

// routePattern collapses per-session paths to a stable label so metric
// cardinality stays bounded.
func routePattern(path string) string {
	if !strings.HasPrefix(path, "/v1/sessions/") {
		return path
	}
	parts := strings.Split(strings.TrimPrefix(path, "/v1/sessions/"), "/")
	switch {
	case len(parts) >= 3 && parts[1] == "documents":
		return "/v1/sessions/{id}/documents/{doc_type}"
	case len(parts) == 2:
		return "/v1/sessions/{id}/" + parts[1]
	default:
		return "/v1/sessions/{id}"
	}
}

func (rt *Router) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (rt *Router) createSession(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	id, err := rt.sessions.CreateSession(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"session_id": id})
}

func (rt *Router) sessionSubresource(w http.ResponseWriter, r *http.Request) {
	parts := strings.Split(strings.TrimPrefix(r.URL.Path, "/v1/sessions/"), "/")

	switch {
	case len(parts) == 3 && parts[1] == "documents":
		rt.uploadDocument(w, r, parts[0], domain.DocType(parts[2]))
	case len(parts) == 2 && parts[1] == "analysis":
		rt.getAnalysis(w, r, parts[0])
	case len(parts) == 2 && parts[1] == "report":
		rt.getReport(w, r, parts[0])
	case len(parts) == 2 && parts[1] == "report.xlsx":
		rt.getReportXLSX(w, r, parts[0])
	default:
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
	}
}

func (rt *Router) uploadDocument(w http.ResponseWriter, r *http.Request, sessionID string, docType domain.DocType) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, rt.cfg.UploadMaxBytes)

	file, fileHeader, err := r.FormFile("file")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "multipart field 'file' is required"})
		return
	}
	defer file.Close()

	if !strings.HasSuffix(strings.ToLower(fileHeader.Filename), ".pdf") {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "only .pdf documents are accepted"})
		return
	}

	task, err := rt.uploads.Upload(r.Context(), sessionID, docType, fileHeader.Filename, file)
	if err != nil {
		writeError(w, err)
		return
	}
	if rt.observer != nil {
		rt.observer.ObserveUpload(string(docType))
	}
	writeJSON(w, http.StatusAccepted, map[string]any{
		"session_id":  task.SessionID,
		"doc_type":    task.DocType,
		"filename":    task.Filename,
		"storage_key": task.StorageKey,
		"enqueued_at": task.EnqueuedAt,
	})
}

func (rt *Router) getAnalysis(w http.ResponseWriter, r *http.Request, sessionID string) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	result, err := rt.analyzer.Analyze(r.Context(), sessionID)
	if err != nil {
		writeError(w, err)
		return
	}
	if rt.observer != nil {
		rt.observer.ObserveAnalysis(string(result.Status))
	}
	writeJSON(w, http.StatusOK, result)
}

func (rt *Router) getReport(w http.ResponseWriter, r *http.Request, sessionID string) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	report, err := rt.analyzer.Report(r.Context(), sessionID)
	if err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("Content-Disposition", `attachment; filename="analysis_report.json"`)
	writeJSON(w, http.StatusOK, report)
}

func (rt *Router) getReportXLSX(w http.ResponseWriter, r *http.Request, sessionID string) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	report, err := rt.analyzer.Report(r.Context(), sessionID)
	if err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="analysis_report.xlsx"`)
	w.WriteHeader(http.StatusOK)
	if err := writeReportXLSX(w, report); err != nil {
		// Status is already written; the truncated download is all the
		// client can see.
		slog.Error("write xlsx report",
			"request_id", requestIDFromContext(r.Context()),
			"session_id", sessionID,
			"error", err,
		)
	}
}

func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, mapErrorToHTTPStatus(err), map[string]string{"error": err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
