package inference

import (
	"github.com/openai/openai-go/v3/option"
)

func newCompatible(name, baseURL, apiKey, model string, opts ...option.RequestOption) *OpenAIInferencer {
	o := &OpenAIInferencer{
		name:   name,
		apiKey: apiKey,
		model:  model,
		opts:   opts,
	}
	o.ChangeBaseURL(baseURL)
	return o
}

// NewGrokInferencer targets the x.ai OpenAI-compatible API.
func NewGrokInferencer(apiKey string, model string, opts ...option.RequestOption) *OpenAIInferencer {
	if model == "" {
		model = "grok-4-fast-reasoning"
	}
	return newCompatible("grok", "https://api.x.ai/v1", apiKey, model, opts...)
}

// NewMoonshotInferencer targets the Moonshot AI OpenAI-compatible API.
func NewMoonshotInferencer(apiKey string, model string, opts ...option.RequestOption) *OpenAIInferencer {
	if model == "" {
		model = "kimi-k2-5"
	}
	return newCompatible("moonshot", "https://api.moonshot.ai/v1", apiKey, model, opts...)
}

// NewKimiInferencer targets the Kimi OpenAI-compatible API.
func NewKimiInferencer(apiKey string, model string, opts ...option.RequestOption) *OpenAIInferencer {
	if model == "" {
		model = "kimi-for-coding"
	}
	return newCompatible("kimi", "https://api.kimi.com/coding/v1", apiKey, model, opts...)
}
