package claude_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"billforge/internal/config"
	"billforge/internal/domain"
	"billforge/internal/extract"
	claude "billforge/internal/extract/claude"
	"billforge/internal/port"
)

func newTestExtractor(serverURL string) *claude.Extractor {
	cfg := &config.ExtractProviderConfig{
		Provider:     "claude",
		APIKey:       "test-api-key",
		DefaultModel: "claude-sonnet-4-20250514",
		TimeoutSecs:  30,
	}
	return claude.NewExtractorWithEndpoint(cfg, serverURL)
}

func testInput() port.ExtractInput {
	return port.ExtractInput{
		Text:         "Invoice Acme Corp for 5 hours of consulting at 100 per hour",
		DocumentType: domain.DocumentTypeInvoice,
	}
}

func TestClaudeExtractor_Extract_Success(t *testing.T) {
	rawJSON := `{"client":{"name":"Acme Corp"},"items":[{"description":"Consulting","quantity":5,"unit_price":100}]}`
	responseBody := map[string]interface{}{
		"content": []map[string]interface{}{
			{"type": "text", "text": rawJSON},
		},
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Verify request headers
		assert.Equal(t, "test-api-key", r.Header.Get("x-api-key"))
		assert.Equal(t, "2023-06-01", r.Header.Get("anthropic-version"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		// Verify request body
		var reqBody map[string]interface{}
		err := json.NewDecoder(r.Body).Decode(&reqBody)
		assert.NoError(t, err)
		assert.Equal(t, "claude-sonnet-4-20250514", reqBody["model"])
		assert.Equal(t, float64(4096), reqBody["max_tokens"])

		messages := reqBody["messages"].([]interface{})
		assert.Len(t, messages, 1)
		msg := messages[0].(map[string]interface{})
		assert.Equal(t, "user", msg["role"])

		content := msg["content"].([]interface{})
		assert.Len(t, content, 2)

		// First block: the extraction prompt
		promptBlock := content[0].(map[string]interface{})
		assert.Equal(t, "text", promptBlock["type"])
		assert.Contains(t, promptBlock["text"], "billing data extraction")

		// Second block: the raw document text
		textBlock := content[1].(map[string]interface{})
		assert.Equal(t, "text", textBlock["type"])
		assert.Contains(t, textBlock["text"], "Acme Corp")

		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(responseBody)
	}))
	defer server.Close()

	extractor := newTestExtractor(server.URL)

	result, err := extractor.Extract(context.Background(), testInput())

	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Equal(t, "claude-sonnet-4-20250514", result.ModelUsed)
	assert.NotEmpty(t, result.PromptUsed)
	assert.JSONEq(t, rawJSON, string(result.RawJSON))
}

func TestClaudeExtractor_Extract_PassesThroughMalformedJSON(t *testing.T) {
	// The extractor must not validate the model's output; repairing bad JSON
	// is the normalization layer's job.
	responseBody := map[string]interface{}{
		"content": []map[string]interface{}{
			{"type": "text", "text": "sorry, no JSON today"},
		},
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(responseBody)
	}))
	defer server.Close()

	extractor := newTestExtractor(server.URL)

	result, err := extractor.Extract(context.Background(), testInput())

	require.NoError(t, err)
	assert.Equal(t, "sorry, no JSON today", string(result.RawJSON))
}

func TestClaudeExtractor_Extract_RateLimited(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Retry-After", "30")
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":{"type":"rate_limit_error","message":"rate limited"}}`))
	}))
	defer server.Close()

	extractor := newTestExtractor(server.URL)

	result, err := extractor.Extract(context.Background(), testInput())

	assert.Nil(t, result)
	require.Error(t, err)

	var rlErr *extract.RateLimitError
	require.ErrorAs(t, err, &rlErr)
	assert.Equal(t, "claude", rlErr.Provider)
}

func TestClaudeExtractor_Extract_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":{"type":"server_error","message":"internal error"}}`))
	}))
	defer server.Close()

	extractor := newTestExtractor(server.URL)

	result, err := extractor.Extract(context.Background(), testInput())

	assert.Nil(t, result)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "anthropic API error (status 500)")
}

func TestClaudeExtractor_Extract_EmptyResponse(t *testing.T) {
	responseBody := map[string]interface{}{
		"content": []map[string]interface{}{},
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(responseBody)
	}))
	defer server.Close()

	extractor := newTestExtractor(server.URL)

	result, err := extractor.Extract(context.Background(), testInput())

	assert.Nil(t, result)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "empty response")
}

func TestClaudeExtractor_Extract_Truncated(t *testing.T) {
	responseBody := map[string]interface{}{
		"content": []map[string]interface{}{
			{"type": "text", "text": `{"client":`},
		},
		"stop_reason": "max_tokens",
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(responseBody)
	}))
	defer server.Close()

	extractor := newTestExtractor(server.URL)

	result, err := extractor.Extract(context.Background(), testInput())

	assert.Nil(t, result)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "output truncated")
}

func TestClaudeExtractor_Extract_ConnectionRefused(t *testing.T) {
	extractor := newTestExtractor("http://localhost:1")

	result, err := extractor.Extract(context.Background(), testInput())

	assert.Nil(t, result)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "calling anthropic API")
}
