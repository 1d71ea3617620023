package inference

import (
	"cmp"
	"context"
	"errors"
	"fmt"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/openai/openai-go/v3/packages/param"
)

// OpenAIInferencer implements Inferencer using OpenAI's official Go SDK. Any endpoint that
// speaks the chat completions protocol with image_url parts can be targeted via ChangeBaseURL.
type OpenAIInferencer struct {
	client *openai.Client
	name   string
	apiKey string
	model  string
	opts   []option.RequestOption
}

// NewOpenAIInferencer creates a new inferencer instance using OpenAI client.
func NewOpenAIInferencer(apiKey string, model string, opts ...option.RequestOption) *OpenAIInferencer {
	if model == "" {
		model = "gpt-4o"
	}
	o := &OpenAIInferencer{
		name:   "openai",
		apiKey: apiKey,
		model:  model,
		opts:   opts,
	}
	o.ChangeBaseURL("")
	return o
}

func (o *OpenAIInferencer) ChangeBaseURL(baseURL string) {
	opts := []option.RequestOption{option.WithAPIKey(o.apiKey)}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	client := openai.NewClient(append(opts, o.opts...)...)
	o.client = &client
}

func (o *OpenAIInferencer) Name() string {
	return o.name + "/" + o.model
}

// Infer sends the system prompt, the user prompt and every image to the chat completion
// endpoint and returns the text output.
func (o *OpenAIInferencer) Infer(ctx context.Context, params *openai.ChatCompletionNewParams, system, user string, images ...Image) (string, error) {
	var p openai.ChatCompletionNewParams
	if params != nil {
		p = *params
	}
	p.Model = cmp.Or(p.Model, o.model)

	parts := make([]openai.ChatCompletionContentPartUnionParam, 0, 1+2*len(images))
	parts = append(parts, openai.TextContentPart(user))
	for _, img := range images {
		parts = append(parts,
			openai.TextContentPart(img.Label()),
			openai.ImageContentPart(openai.ChatCompletionContentPartImageImageURLParam{URL: img.URL}),
		)
	}

	p.Messages = []openai.ChatCompletionMessageParamUnion{
		{
			OfSystem: &openai.ChatCompletionSystemMessageParam{
				Content: openai.ChatCompletionSystemMessageParamContentUnion{
					OfString: param.Opt[string]{Value: system},
				},
			}},
		openai.UserMessage(parts),
	}

	p.MaxCompletionTokens = openai.Int(cmp.Or(p.MaxCompletionTokens.Value, 4096*4))
	p.Temperature = openai.Float(cmp.Or(p.Temperature.Value, 0.3))
	p.TopP = openai.Float(cmp.Or(p.TopP.Value, 1.0))

	resp, err := o.client.Chat.Completions.New(ctx, p)
	if err != nil {
		return "", fmt.Errorf("%s inference error: %w", o.name, err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("no choices returned")
	}
	if resp.Choices[0].Message.Content == "" {
		return "", errors.New("empty completion content")
	}

	return resp.Choices[0].Message.Content, nil
}

// Verify checks that the result is non-empty.
func (o *OpenAIInferencer) Verify(ctx context.Context, result string) (bool, error) {
	return verifyNonEmpty(result)
}
