package inference

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	aoption "github.com/anthropics/anthropic-sdk-go/option"
	"github.com/openai/openai-go/v3"
)

type AnthropicInferencer struct {
	client anthropic.Client
	model  string
}

// NewAnthropicInferencer creates a new inferencer instance using the Anthropic Messages API.
func NewAnthropicInferencer(apiKey string, model string, opts ...aoption.RequestOption) *AnthropicInferencer {
	if model == "" {
		model = "claude-sonnet-4-5"
	}
	opts = append([]aoption.RequestOption{aoption.WithAPIKey(apiKey)}, opts...)
	return &AnthropicInferencer{
		client: anthropic.NewClient(opts...),
		model:  model,
	}
}

func (o *AnthropicInferencer) Name() string {
	return "anthropic/" + o.model
}

// Infer sends the prompt and images as a single user message.
func (o *AnthropicInferencer) Infer(ctx context.Context, params *openai.ChatCompletionNewParams, system, user string, images ...Image) (string, error) {
	if params == nil {
		params = new(openai.ChatCompletionNewParams)
	}

	blocks := make([]anthropic.ContentBlockParamUnion, 0, 1+2*len(images))
	blocks = append(blocks, anthropic.NewTextBlock(user))
	for _, img := range images {
		blocks = append(blocks, anthropic.NewTextBlock(img.Label()))
		switch {
		case IsDataURI(img.URL):
			mediaType, b64, err := SplitDataURI(img.URL)
			if err != nil {
				return "", fmt.Errorf("image %s: %w", img.Name, err)
			}
			blocks = append(blocks, anthropic.NewImageBlockBase64(mediaType, b64))
		case IsRemote(img.URL):
			blocks = append(blocks, anthropic.NewImageBlock(anthropic.URLImageSourceParam{URL: img.URL}))
		default:
			return "", fmt.Errorf("image %s: %w", img.Name, ErrUnsupportedImage)
		}
	}

	p := anthropic.MessageNewParams{
		Model:     anthropic.Model(cmp.Or(params.Model, o.model)),
		MaxTokens: cmp.Or(params.MaxCompletionTokens.Value, 4096*4),
		System:    []anthropic.TextBlockParam{{Text: system}},
		Messages:  []anthropic.MessageParam{anthropic.NewUserMessage(blocks...)},
	}
	if params.Temperature.Value != 0 {
		p.Temperature = anthropic.Float(params.Temperature.Value)
	}

	msg, err := o.client.Messages.New(ctx, p)
	if err != nil {
		return "", fmt.Errorf("anthropic inference error: %w", err)
	}

	var out strings.Builder
	for _, block := range msg.Content {
		if text, ok := block.AsAny().(anthropic.TextBlock); ok {
			out.WriteString(text.Text)
		}
	}
	if out.Len() == 0 {
		return "", errors.New("empty completion content")
	}
	return out.String(), nil
}

// Verify checks that the result is non-empty.
func (o *AnthropicInferencer) Verify(ctx context.Context, result string) (bool, error) {
	return verifyNonEmpty(result)
}
