package openai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"billforge/internal/config"
	"billforge/internal/extract"
	"billforge/internal/port"
)

func init() {
	extract.RegisterProvider("openai", func(cfg *config.ExtractProviderConfig) (port.DocumentExtractor, error) {
		return NewExtractor(cfg), nil
	})
}

// Extractor implements port.DocumentExtractor using the OpenAI Chat Completions API.
type Extractor struct {
	client *openai.Client
	model  string
}

// NewExtractor creates an OpenAI-based extractor from a provider config.
func NewExtractor(cfg *config.ExtractProviderConfig) *Extractor {
	return newExtractor(cfg, "")
}

// NewExtractorWithEndpoint creates an extractor pointing at a custom API base URL (for testing).
func NewExtractorWithEndpoint(cfg *config.ExtractProviderConfig, endpoint string) *Extractor {
	return newExtractor(cfg, endpoint)
}

func newExtractor(cfg *config.ExtractProviderConfig, endpoint string) *Extractor {
	model := cfg.DefaultModel
	if model == "" {
		model = "gpt-4o"
	}
	timeout := time.Duration(cfg.TimeoutSecs) * time.Second
	if timeout == 0 {
		timeout = 60 * time.Second
	}

	clientCfg := openai.DefaultConfig(cfg.APIKey)
	clientCfg.HTTPClient = &http.Client{Timeout: timeout}
	if endpoint != "" {
		clientCfg.BaseURL = endpoint
	}

	return &Extractor{
		client: openai.NewClientWithConfig(clientCfg),
		model:  model,
	}
}

func (e *Extractor) Extract(ctx context.Context, input port.ExtractInput) (*port.ExtractOutput, error) {
	prompt := extract.BuildExtractionPrompt(input.DocumentType)

	resp, err := e.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: e.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: prompt,
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: input.Text,
			},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	})
	if err != nil {
		var apiErr *openai.APIError
		if errors.As(err, &apiErr) && apiErr.HTTPStatusCode == http.StatusTooManyRequests {
			return nil, extract.NewRateLimitError("openai", err, 0)
		}
		return nil, fmt.Errorf("calling openai API: %w", err)
	}

	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("empty response from API: no choices")
	}

	if resp.Choices[0].FinishReason == openai.FinishReasonLength {
		return nil, fmt.Errorf("output truncated (finish_reason: length): response exceeded output token limit")
	}

	return &port.ExtractOutput{
		RawJSON:    json.RawMessage(resp.Choices[0].Message.Content),
		ModelUsed:  e.model,
		PromptUsed: prompt,
	}, nil
}
