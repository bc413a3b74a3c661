package ai

import (
	"context"
	"fmt"
	"strings"

	"github.com/hoanghai1803/insightpost/internal/models"
)

// AIProvider is the interface that all LLM providers must implement.
type AIProvider interface {
	// GenerateInsight turns a feed entry into raw "title, blank line, body"
	// text. The returned text is trimmed and never empty on success.
	GenerateInsight(ctx context.Context, entry models.FeedEntry) (string, error)
}

// NewProvider creates the appropriate provider based on config.
func NewProvider(cfg ProviderConfig) (AIProvider, error) {
	switch cfg.Provider {
	case "gemini":
		p := NewGeminiProvider(cfg.APIKey, cfg.Model)
		if cfg.BaseURL != "" {
			p.baseURL = strings.TrimRight(cfg.BaseURL, "/")
		}
		return p, nil
	case "anthropic":
		p := NewAnthropicProvider(cfg.APIKey, cfg.Model)
		if cfg.BaseURL != "" {
			p.apiURL = strings.TrimRight(cfg.BaseURL, "/") + "/v1/messages"
		}
		return p, nil
	case "openai":
		p := NewOpenAIProvider(cfg.APIKey, cfg.Model)
		if cfg.BaseURL != "" {
			p.apiURL = strings.TrimRight(cfg.BaseURL, "/") + "/v1/chat/completions"
		}
		return p, nil
	default:
		return nil, fmt.Errorf("unsupported AI provider: %s", cfg.Provider)
	}
}

// finishText trims a provider's answer and rejects blank ones.
func finishText(text string) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", ErrEmptyResponse
	}
	return text, nil
}
