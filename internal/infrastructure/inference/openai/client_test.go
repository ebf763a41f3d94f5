package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/comexkit/tradedocs/internal/core/domain"
)

func chatReply(t *testing.T, w http.ResponseWriter, content string) {
	t.Helper()
	reply := map[string]any{
		"choices": []map[string]any{
			{"message": map[string]any{"content": content}},
		},
	}
	if err := json.NewEncoder(w).Encode(reply); err != nil {
		t.Fatalf("encode reply: %v", err)
	}
}

func TestExtractFieldsSuccess(t *testing.T) {
	var captured map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" {
			t.Fatalf("unexpected path %q", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer sk-test" {
			t.Fatalf("authorization header = %q", got)
		}
		if err := json.NewDecoder(r.Body).Decode(&captured); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		chatReply(t, w, `{"invoice_number":"INV-77","issue_date":""}`)
	}))
	defer server.Close()

	client := New(server.URL, "sk-test", "gpt-4o-mini")
	values, err := client.ExtractFields(context.Background(), "INVOICE TEXT",
		[]domain.Field{domain.FieldInvoiceNumber, domain.FieldIssueDate})
	if err != nil {
		t.Fatalf("extract failed: %v", err)
	}
	if values[domain.FieldInvoiceNumber] != "INV-77" {
		t.Fatalf("invoice_number = %q", values[domain.FieldInvoiceNumber])
	}
	if values[domain.FieldIssueDate] != "" {
		t.Fatalf("issue_date = %q, want empty", values[domain.FieldIssueDate])
	}

	if captured["temperature"] != float64(0) {
		t.Fatalf("temperature = %v, want 0", captured["temperature"])
	}
	format, _ := captured["response_format"].(map[string]any)
	if format["type"] != "json_object" {
		t.Fatalf("response_format = %v", captured["response_format"])
	}
}

func TestExtractFieldsAcceptsWrappedJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		chatReply(t, w, "Sure, here is the data:\n{\"incoterm\":\"FOB\"}\nLet me know.")
	}))
	defer server.Close()

	client := New(server.URL, "", "gpt-4o-mini")
	values, err := client.ExtractFields(context.Background(), "text", []domain.Field{domain.FieldIncoterm})
	if err != nil {
		t.Fatalf("extract failed: %v", err)
	}
	if values[domain.FieldIncoterm] != "FOB" {
		t.Fatalf("incoterm = %q", values[domain.FieldIncoterm])
	}
}

func TestExtractFieldsRejectsUnknownKeys(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		chatReply(t, w, `{"incoterm":"FOB","surprise":"value"}`)
	}))
	defer server.Close()

	client := New(server.URL, "", "gpt-4o-mini")
	_, err := client.ExtractFields(context.Background(), "text", []domain.Field{domain.FieldIncoterm})
	if !domain.IsKind(err, domain.ErrProviderUnavailable) {
		t.Fatalf("err = %v, want provider unavailable", err)
	}
}

func TestExtractFieldsRejectsNonStringValues(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		chatReply(t, w, `{"total_value":1500}`)
	}))
	defer server.Close()

	client := New(server.URL, "", "gpt-4o-mini")
	_, err := client.ExtractFields(context.Background(), "text", []domain.Field{domain.FieldTotalValue})
	if !domain.IsKind(err, domain.ErrProviderUnavailable) {
		t.Fatalf("err = %v, want provider unavailable", err)
	}
}

func TestExtractFieldsServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "overloaded", http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client := New(server.URL, "", "gpt-4o-mini")
	_, err := client.ExtractFields(context.Background(), "text", []domain.Field{domain.FieldIncoterm})
	if !domain.IsKind(err, domain.ErrProviderUnavailable) {
		t.Fatalf("err = %v, want provider unavailable", err)
	}
}
