package inference

import (
	"context"
	"errors"
	"fmt"
	"os"
	"slices"
	"strings"
)

var ErrNoCredentials = errors.New("no inference provider credentials configured")

// Providers lists the provider names accepted by FromEnv, in auto-detection order.
var Providers = []string{"openai", "grok", "gemini", "anthropic", "moonshot", "kimi"}

// FromEnv builds the inferencer selected by INFERENCE_PROVIDER, or the first provider whose
// credentials are present. An OpenAI base URL without a key counts as configured so that
// local OpenAI-compatible servers can be used.
func FromEnv(ctx context.Context) (Inferencer, error) {
	if provider := strings.ToLower(strings.TrimSpace(os.Getenv("INFERENCE_PROVIDER"))); provider != "" {
		return New(ctx, provider, "")
	}
	for _, provider := range Providers {
		if configured(provider) {
			return New(ctx, provider, "")
		}
	}
	return nil, ErrNoCredentials
}

// New builds the named provider from its environment variables. A non-empty model overrides
// the provider's *_MODEL variable.
func New(ctx context.Context, provider, model string) (Inferencer, error) {
	if !slices.Contains(Providers, provider) {
		return nil, fmt.Errorf("unsupported provider %q", provider)
	}
	if !configured(provider) {
		return nil, fmt.Errorf("%w: %s", ErrNoCredentials, provider)
	}
	if model == "" {
		model = os.Getenv(strings.ToUpper(provider) + "_MODEL")
	}
	key := os.Getenv(strings.ToUpper(provider) + "_API_KEY")

	switch provider {
	case "openai":
		openAI := NewOpenAIInferencer(key, model)
		if baseURL := os.Getenv("OPENAI_BASE_URL"); baseURL != "" {
			openAI.ChangeBaseURL(baseURL)
		}
		return openAI, nil
	case "grok":
		return NewGrokInferencer(key, model), nil
	case "moonshot":
		return NewMoonshotInferencer(key, model), nil
	case "kimi":
		return NewKimiInferencer(key, model), nil
	case "gemini":
		return NewGeminiInferencer(ctx, key, model)
	case "anthropic":
		return NewAnthropicInferencer(key, model), nil
	default:
		return nil, fmt.Errorf("unsupported provider %q", provider)
	}
}

func configured(provider string) bool {
	if os.Getenv(strings.ToUpper(provider)+"_API_KEY") != "" {
		return true
	}
	return provider == "openai" && os.Getenv("OPENAI_BASE_URL") != ""
}
