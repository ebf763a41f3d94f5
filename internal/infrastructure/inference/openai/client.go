// Package openai implements the semantic-inference provider against an
// OpenAI-compatible chat-completions endpoint. The resolution engine
// treats every error from here as "provider unavailable" and falls back
// locally, so this client reports failures rather than retrying forever.
package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/comexkit/tradedocs/internal/core/domain"
	"github.com/comexkit/tradedocs/internal/infrastructure/resilience"
)

type Client struct {
	baseURL    string
	apiKey     string
	model      string
	httpClient *http.Client
	executor   *resilience.Executor
}

type Options struct {
	Timeout            time.Duration
	ResilienceExecutor *resilience.Executor
}

func New(baseURL, apiKey, model string) *Client {
	return NewWithOptions(baseURL, apiKey, model, Options{})
}

func NewWithOptions(baseURL, apiKey, model string, options Options) *Client {
	timeout := options.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		model:      model,
		httpClient: &http.Client{Timeout: timeout},
		executor:   options.ResilienceExecutor,
	}
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

func (c *Client) ExtractFields(ctx context.Context, sample string, keys []domain.Field) (map[domain.Field]string, error) {
	request := map[string]any{
		"model": c.model,
		"messages": []map[string]string{
			{"role": "user", "content": buildExtractionPrompt(sample, keys)},
		},
		"temperature":     0,
		"response_format": map[string]string{"type": "json_object"},
	}

	var response chatResponse
	call := func(callCtx context.Context) error {
		return c.postJSON(callCtx, "/v1/chat/completions", request, &response, "extract fields")
	}

	var err error
	if c.executor != nil {
		err = c.executor.Execute(ctx, "openai.chat", call, classifyProviderError)
	} else {
		err = call(ctx)
	}
	if err != nil {
		return nil, wrapProviderError("extract fields", err)
	}

	if len(response.Choices) == 0 {
		return nil, domain.WrapError(domain.ErrProviderUnavailable, "extract fields", errNoChoices)
	}
	return parseFieldPayload(response.Choices[0].Message.Content, keys)
}

// parseFieldPayload validates the provider output against a strict
// flat-string-object schema before accepting any value. Unknown keys and
// non-string values fail validation wholesale.
func parseFieldPayload(content string, keys []domain.Field) (map[domain.Field]string, error) {
	raw := extractJSONObject(content)

	var payload any
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		return nil, domain.WrapError(domain.ErrProviderUnavailable, "parse provider payload", err)
	}
	if err := validateFieldPayload(payload, keys); err != nil {
		return nil, domain.WrapError(domain.ErrProviderUnavailable, "validate provider payload", err)
	}

	object := payload.(map[string]any)
	values := make(map[domain.Field]string, len(keys))
	for _, key := range keys {
		if v, ok := object[string(key)].(string); ok {
			values[key] = strings.TrimSpace(v)
		}
	}
	return values, nil
}

func extractJSONObject(raw string) string {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start >= 0 && end > start {
		return raw[start : end+1]
	}
	return raw
}
