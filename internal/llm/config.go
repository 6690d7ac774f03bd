// Package llm wraps the Gemini API behind a small client interface with
// model tiers, so callers pick a capability level instead of a model name.
package llm

import "os"

// ModelTier represents the complexity/capability level of a model
type ModelTier string

const (
	// TierLite is for simple tasks: chat replies, short rewrites
	TierLite ModelTier = "lite"
	// TierStandard is for moderate reasoning: resume scoring, match analysis
	TierStandard ModelTier = "standard"
	// TierAdvanced is for complex reasoning when standard output quality falls short
	TierAdvanced ModelTier = "advanced"
)

// Provider represents an LLM provider
type Provider string

// ProviderGemini is the Google Gemini provider
const ProviderGemini Provider = "gemini"

// Config holds the model configuration for the application
type Config struct {
	Provider Provider
	Models   map[ModelTier]string
}

// DefaultConfig returns the default configuration (currently Gemini)
func DefaultConfig() *Config {
	return DefaultGeminiConfig()
}

// DefaultGeminiConfig returns the Gemini configuration. Per-tier models can
// be overridden with GEMINI_MODEL_LITE, GEMINI_MODEL_STANDARD and
// GEMINI_MODEL_ADVANCED.
func DefaultGeminiConfig() *Config {
	return &Config{
		Provider: ProviderGemini,
		Models: map[ModelTier]string{
			TierLite:     envOr("GEMINI_MODEL_LITE", "gemini-2.5-flash-lite"),
			TierStandard: envOr("GEMINI_MODEL_STANDARD", "gemini-2.5-flash"),
			TierAdvanced: envOr("GEMINI_MODEL_ADVANCED", "gemini-2.5-pro"),
		},
	}
}

// GetModel returns the model name for a given tier
func (c *Config) GetModel(tier ModelTier) string {
	if model, ok := c.Models[tier]; ok {
		return model
	}
	// Fallback chain: try standard, then lite
	if model, ok := c.Models[TierStandard]; ok {
		return model
	}
	if model, ok := c.Models[TierLite]; ok {
		return model
	}
	return "" // No model configured
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
