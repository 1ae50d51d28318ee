package extract_test

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"billforge/internal/extract"
)

func TestRateLimitError_ErrorString(t *testing.T) {
	underlying := fmt.Errorf("rate limited")
	rlErr := extract.NewRateLimitError("claude", underlying, 30)

	assert.Contains(t, rlErr.Error(), "claude")
	assert.Contains(t, rlErr.Error(), "rate limited")
	assert.Contains(t, rlErr.Error(), "30s")
}

func TestRateLimitError_Unwrap(t *testing.T) {
	underlying := fmt.Errorf("underlying error")
	rlErr := extract.NewRateLimitError("openai", underlying, 60)

	assert.Equal(t, underlying, errors.Unwrap(rlErr))
}

func TestRateLimitError_ErrorsAs(t *testing.T) {
	underlying := fmt.Errorf("rate limited")
	rlErr := extract.NewRateLimitError("claude", underlying, 30)

	// Wrap it further
	wrapped := fmt.Errorf("extraction failed: %w", rlErr)

	var target *extract.RateLimitError
	assert.True(t, errors.As(wrapped, &target))
	assert.Equal(t, "claude", target.Provider)
	assert.Equal(t, 30*time.Second, target.RetryAfter)
}

func TestNewRateLimitError_DefaultRetryAfter(t *testing.T) {
	rlErr := extract.NewRateLimitError("openai", fmt.Errorf("err"), 0)

	assert.Equal(t, 60*time.Second, rlErr.RetryAfter)
}

func TestNewRateLimitError_CustomRetryAfter(t *testing.T) {
	rlErr := extract.NewRateLimitError("openai", fmt.Errorf("err"), 30)

	assert.Equal(t, 30*time.Second, rlErr.RetryAfter)
}

func TestParseRetryAfterHeader(t *testing.T) {
	assert.Equal(t, 0, extract.ParseRetryAfterHeader(""))
	assert.Equal(t, 30, extract.ParseRetryAfterHeader("30"))
	assert.Equal(t, 0, extract.ParseRetryAfterHeader("invalid"))
	assert.Equal(t, 120, extract.ParseRetryAfterHeader("120"))
}
