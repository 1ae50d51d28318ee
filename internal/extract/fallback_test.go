package extract_test

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"billforge/internal/domain"
	"billforge/internal/extract"
	"billforge/internal/port"
	"billforge/mocks"
)

func fallbackOutput(model string) *port.ExtractOutput {
	return &port.ExtractOutput{
		RawJSON:    json.RawMessage(`{"client":{"name":"Acme"}}`),
		ModelUsed:  model,
		PromptUsed: "test prompt",
	}
}

func testInput() port.ExtractInput {
	return port.ExtractInput{Text: "invoice Acme for 5 hours at 100", DocumentType: domain.DocumentTypeInvoice}
}

func TestFallbackExtractor_FirstSucceeds(t *testing.T) {
	e1 := new(mocks.MockDocumentExtractor)
	e2 := new(mocks.MockDocumentExtractor)

	input := testInput()
	e1.On("Extract", mock.Anything, input).Return(fallbackOutput("claude"), nil)

	fe := extract.NewFallbackExtractor(
		[]port.DocumentExtractor{e1, e2},
		[]string{"claude", "openai"},
		zap.NewNop(),
	)

	result, err := fe.Extract(context.Background(), input)

	assert.NoError(t, err)
	assert.NotNil(t, result)
	assert.Equal(t, "claude", result.ModelUsed)
	e2.AssertNotCalled(t, "Extract", mock.Anything, mock.Anything)
}

func TestFallbackExtractor_FirstFails_SecondSucceeds(t *testing.T) {
	e1 := new(mocks.MockDocumentExtractor)
	e2 := new(mocks.MockDocumentExtractor)

	input := testInput()
	e1.On("Extract", mock.Anything, input).Return(nil, errors.New("generic error"))
	e2.On("Extract", mock.Anything, input).Return(fallbackOutput("openai"), nil)

	fe := extract.NewFallbackExtractor(
		[]port.DocumentExtractor{e1, e2},
		[]string{"claude", "openai"},
		zap.NewNop(),
	)

	result, err := fe.Extract(context.Background(), input)

	assert.NoError(t, err)
	assert.NotNil(t, result)
	assert.Equal(t, "openai", result.ModelUsed)
}

func TestFallbackExtractor_FirstRateLimited_SecondSucceeds(t *testing.T) {
	e1 := new(mocks.MockDocumentExtractor)
	e2 := new(mocks.MockDocumentExtractor)

	input := testInput()
	rlErr := extract.NewRateLimitError("claude", errors.New("429"), 60)
	e1.On("Extract", mock.Anything, input).Return(nil, rlErr)
	e2.On("Extract", mock.Anything, input).Return(fallbackOutput("openai"), nil)

	fe := extract.NewFallbackExtractor(
		[]port.DocumentExtractor{e1, e2},
		[]string{"claude", "openai"},
		zap.NewNop(),
	)

	result, err := fe.Extract(context.Background(), input)

	assert.NoError(t, err)
	assert.NotNil(t, result)
	assert.Equal(t, "openai", result.ModelUsed)
}

func TestFallbackExtractor_AllRateLimited(t *testing.T) {
	e1 := new(mocks.MockDocumentExtractor)
	e2 := new(mocks.MockDocumentExtractor)

	input := testInput()
	e1.On("Extract", mock.Anything, input).Return(nil, extract.NewRateLimitError("claude", errors.New("429"), 60))
	e2.On("Extract", mock.Anything, input).Return(nil, extract.NewRateLimitError("openai", errors.New("429"), 30))

	fe := extract.NewFallbackExtractor(
		[]port.DocumentExtractor{e1, e2},
		[]string{"claude", "openai"},
		zap.NewNop(),
	)

	result, err := fe.Extract(context.Background(), input)

	assert.Nil(t, result)
	assert.Error(t, err)

	var rlErr *extract.RateLimitError
	require.True(t, errors.As(err, &rlErr))
	assert.Equal(t, "all", rlErr.Provider)
}

func TestFallbackExtractor_AllFail_NonRateLimit(t *testing.T) {
	e1 := new(mocks.MockDocumentExtractor)
	e2 := new(mocks.MockDocumentExtractor)

	input := testInput()
	e1.On("Extract", mock.Anything, input).Return(nil, errors.New("error 1"))
	e2.On("Extract", mock.Anything, input).Return(nil, errors.New("error 2"))

	fe := extract.NewFallbackExtractor(
		[]port.DocumentExtractor{e1, e2},
		[]string{"claude", "openai"},
		zap.NewNop(),
	)

	result, err := fe.Extract(context.Background(), input)

	assert.Nil(t, result)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "all extraction providers failed")

	var rlErr *extract.RateLimitError
	assert.False(t, errors.As(err, &rlErr))
}

func TestFallbackExtractor_CircuitAutoCloses(t *testing.T) {
	e1 := new(mocks.MockDocumentExtractor)
	e2 := new(mocks.MockDocumentExtractor)

	input := testInput()

	// First call: e1 rate limited with 1s retry, e2 succeeds
	e1.On("Extract", mock.Anything, input).Return(nil, extract.NewRateLimitError("claude", errors.New("429"), 1)).Once()
	e2.On("Extract", mock.Anything, input).Return(fallbackOutput("openai"), nil).Once()

	fe := extract.NewFallbackExtractor(
		[]port.DocumentExtractor{e1, e2},
		[]string{"claude", "openai"},
		zap.NewNop(),
	)

	result, err := fe.Extract(context.Background(), input)
	assert.NoError(t, err)
	assert.Equal(t, "openai", result.ModelUsed)

	// Wait for circuit to auto-close
	time.Sleep(1100 * time.Millisecond)

	// Second call: e1 should be retried and succeed
	e1.On("Extract", mock.Anything, input).Return(fallbackOutput("claude"), nil).Once()

	result, err = fe.Extract(context.Background(), input)
	assert.NoError(t, err)
	assert.Equal(t, "claude", result.ModelUsed)
}

func TestFallbackExtractor_SkipsOpenCircuit(t *testing.T) {
	e1 := new(mocks.MockDocumentExtractor)
	e2 := new(mocks.MockDocumentExtractor)

	input := testInput()

	// First call: e1 rate limited with 60s, e2 succeeds
	e1.On("Extract", mock.Anything, input).Return(nil, extract.NewRateLimitError("claude", errors.New("429"), 60)).Once()
	e2.On("Extract", mock.Anything, input).Return(fallbackOutput("openai"), nil)

	fe := extract.NewFallbackExtractor(
		[]port.DocumentExtractor{e1, e2},
		[]string{"claude", "openai"},
		zap.NewNop(),
	)

	result, err := fe.Extract(context.Background(), input)
	assert.NoError(t, err)
	assert.Equal(t, "openai", result.ModelUsed)

	// Second call immediately: e1 should be skipped (circuit still open)
	result, err = fe.Extract(context.Background(), input)
	assert.NoError(t, err)
	assert.Equal(t, "openai", result.ModelUsed)

	// e1 should have been called only once total
	e1.AssertNumberOfCalls(t, "Extract", 1)
}

func TestFallbackExtractor_SingleExtractor(t *testing.T) {
	e1 := new(mocks.MockDocumentExtractor)

	input := testInput()
	e1.On("Extract", mock.Anything, input).Return(fallbackOutput("claude"), nil)

	fe := extract.NewFallbackExtractor(
		[]port.DocumentExtractor{e1},
		[]string{"claude"},
		zap.NewNop(),
	)

	result, err := fe.Extract(context.Background(), input)

	assert.NoError(t, err)
	assert.NotNil(t, result)
	assert.Equal(t, "claude", result.ModelUsed)
}

func TestFallbackExtractor_ConcurrentSafety(t *testing.T) {
	e1 := new(mocks.MockDocumentExtractor)
	e2 := new(mocks.MockDocumentExtractor)

	input := testInput()
	e1.On("Extract", mock.Anything, input).Return(nil, extract.NewRateLimitError("claude", errors.New("429"), 5)).Maybe()
	e2.On("Extract", mock.Anything, input).Return(fallbackOutput("openai"), nil).Maybe()

	fe := extract.NewFallbackExtractor(
		[]port.DocumentExtractor{e1, e2},
		[]string{"claude", "openai"},
		zap.NewNop(),
	)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			result, err := fe.Extract(context.Background(), input)
			assert.NoError(t, err)
			assert.NotNil(t, result)
		}()
	}
	wg.Wait()
}
