package ai

import "errors"

var (
	// ErrEmptyResponse is returned when the backend answers successfully but
	// with no usable text.
	ErrEmptyResponse = errors.New("empty response")

	// ErrTruncated is returned when generation stopped at the output token
	// limit. A cut-off insight usually lacks its body.
	ErrTruncated = errors.New("response truncated at token limit")
)

// ProviderConfig holds the configuration needed to create an AI provider.
type ProviderConfig struct {
	Provider string // "gemini" | "anthropic" | "openai"
	APIKey   string
	Model    string

	// BaseURL replaces the provider's public endpoint. Empty means the
	// public API.
	BaseURL string
}
