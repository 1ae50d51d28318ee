package extract_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"billforge/internal/config"
	"billforge/internal/extract"
	"billforge/internal/port"
	"billforge/mocks"
)

func TestNewExtractor_RegisteredProvider(t *testing.T) {
	fake := new(mocks.MockDocumentExtractor)
	extract.RegisterProvider("fake", func(cfg *config.ExtractProviderConfig) (port.DocumentExtractor, error) {
		return fake, nil
	})

	e, err := extract.NewExtractor(&config.ExtractProviderConfig{Provider: "fake"})

	require.NoError(t, err)
	assert.Same(t, fake, e)
}

func TestNewExtractor_UnknownProvider(t *testing.T) {
	e, err := extract.NewExtractor(&config.ExtractProviderConfig{Provider: "does-not-exist"})

	assert.Nil(t, e)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "unknown extraction provider")
}
