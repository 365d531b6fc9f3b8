package assistant

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

type ProviderType string

const (
	ProviderStub   ProviderType = "stub"
	ProviderGemini ProviderType = "gemini"
	ProviderAuto   ProviderType = "auto"
)

type Config struct {
	Provider     ProviderType
	GeminiAPIKey string
	GeminiModel  string
}

// New builds the responder selected by cfg. Gemini is always wrapped in a
// fallback to the stub so the widget never shows a model error.
func New(ctx context.Context, cfg Config, log *zap.Logger) (Responder, error) {
	stub := NewStubResponder()

	switch cfg.Provider {
	case ProviderStub, "":
		return stub, nil
	case ProviderGemini:
		g, err := NewGeminiResponder(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			return nil, err
		}
		return NewFallbackResponder(g, stub, log), nil
	case ProviderAuto:
		if cfg.GeminiAPIKey == "" {
			return stub, nil
		}
		g, err := NewGeminiResponder(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			log.Warn("gemini unavailable, using stub responder", zap.Error(err))
			return stub, nil
		}
		return NewFallbackResponder(g, stub, log), nil
	}
	return nil, fmt.Errorf("unknown chat provider %q", cfg.Provider)
}
