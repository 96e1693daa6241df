package ai

import (
	"context"

	"chatbot-backend/internal/config"
	"chatbot-backend/internal/model"
)

// HistoryEntry is one prior message handed to a provider for context,
// oldest first.
type HistoryEntry struct {
	Content string
	Sender  model.Sender
}

// Provider is the capability set every generation backend implements.
// GenerateResponse and GenerateTitle report transport and status
// problems as errors; mapping those to user-facing reply text is the
// Adapter's job, not the provider's.
type Provider interface {
	Name() string
	GenerateResponse(ctx context.Context, message string, history []HistoryEntry) (string, error)
	GenerateTitle(ctx context.Context, firstMessage string) (string, error)
	CheckConnection(ctx context.Context) bool
}

type Constructor func(cfg config.AIConfig) Provider

// DefaultService is used when the configured service name is unknown.
const DefaultService = "ollama"

var registry = map[string]Constructor{
	"ollama": func(cfg config.AIConfig) Provider {
		return NewOllamaProvider(cfg.Ollama)
	},
	"huggingface": func(cfg config.AIConfig) Provider {
		return NewHuggingFaceProvider(cfg.HuggingFace)
	},
	"openai": func(cfg config.AIConfig) Provider {
		return NewOpenAIProvider(cfg.OpenAI)
	},
}

// New builds the provider selected by cfg.Service, falling back to the
// default for unknown names.
func New(cfg config.AIConfig) Provider {
	ctor, ok := registry[cfg.Service]
	if !ok {
		ctor = registry[DefaultService]
	}
	return ctor(cfg)
}
