package extract

import (
	"fmt"

	"go.uber.org/zap"

	"billforge/internal/config"
	"billforge/internal/domain"
	"billforge/internal/port"
)

// ProviderFactory is a function that creates a DocumentExtractor from a provider config.
type ProviderFactory func(cfg *config.ExtractProviderConfig) (port.DocumentExtractor, error)

// registry of extraction provider factories, populated by init() in each
// provider package or explicitly via RegisterProvider.
var providers = map[string]ProviderFactory{}

// RegisterProvider registers an extraction provider factory by name.
func RegisterProvider(name string, factory ProviderFactory) {
	providers[name] = factory
}

// NewExtractor creates a DocumentExtractor from a provider config using the registered factory.
func NewExtractor(cfg *config.ExtractProviderConfig) (port.DocumentExtractor, error) {
	factory, ok := providers[cfg.Provider]
	if !ok {
		return nil, fmt.Errorf("unknown extraction provider: %s", cfg.Provider)
	}
	return factory(cfg)
}

// NewFromConfig builds the extractor the config describes: the primary
// provider alone, or a primary-then-secondary fallback chain. A provider slot
// without an API key is treated as unconfigured. When no provider is usable it
// returns domain.ErrExtractionUnavailable so callers can keep serving manual
// document creation.
func NewFromConfig(cfg *config.ExtractConfig, logger *zap.Logger) (port.DocumentExtractor, error) {
	var (
		extractors []port.DocumentExtractor
		names      []string
	)
	for _, pc := range []*config.ExtractProviderConfig{cfg.PrimaryConfig(), cfg.SecondaryConfig()} {
		if pc == nil || pc.APIKey == "" {
			continue
		}
		e, err := NewExtractor(pc)
		if err != nil {
			return nil, fmt.Errorf("extract.NewFromConfig: %w", err)
		}
		extractors = append(extractors, e)
		names = append(names, pc.Provider)
	}

	switch len(extractors) {
	case 0:
		return nil, domain.ErrExtractionUnavailable
	case 1:
		return extractors[0], nil
	default:
		return NewFallbackExtractor(extractors, names, logger), nil
	}
}
