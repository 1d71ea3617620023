package inference

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"mime"
	"path"

	"github.com/openai/openai-go/v3"
	"google.golang.org/genai"
)

type GeminiInferencer struct {
	client *genai.Client
	model  string
}

// NewGeminiInferencer creates a new inferencer instance using the Gemini API.
func NewGeminiInferencer(ctx context.Context, apiKey string, model string) (*GeminiInferencer, error) {
	if model == "" {
		model = "gemini-2.5-flash"
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: apiKey, Backend: genai.BackendGeminiAPI})
	if err != nil {
		return nil, err
	}
	return &GeminiInferencer{
		client: client,
		model:  model,
	}, nil
}

func (o *GeminiInferencer) Name() string {
	return "gemini/" + o.model
}

// Infer sends the prompt and images as one user turn. Data URIs are sent inline, remote URLs
// as file references.
func (o *GeminiInferencer) Infer(ctx context.Context, params *openai.ChatCompletionNewParams, system, user string, images ...Image) (string, error) {
	if params == nil {
		params = new(openai.ChatCompletionNewParams)
	}
	config := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(system, genai.RoleUser),
		ResponseMIMEType:  "application/json",
		MaxOutputTokens:   int32(cmp.Or(params.MaxCompletionTokens.Value, 4096*4)),
	}
	if params.Temperature.Value != 0 {
		temperature := float32(params.Temperature.Value)
		config.Temperature = &temperature
	}

	parts := []*genai.Part{{Text: user}}
	for _, img := range images {
		part, err := geminiImagePart(img)
		if err != nil {
			return "", fmt.Errorf("image %s: %w", img.Name, err)
		}
		parts = append(parts, &genai.Part{Text: img.Label()}, part)
	}

	result, err := o.client.Models.GenerateContent(
		ctx,
		cmp.Or(params.Model, o.model),
		[]*genai.Content{{Role: string(genai.RoleUser), Parts: parts}},
		config,
	)
	if err != nil {
		return "", fmt.Errorf("failed to generate content: %w", err)
	}

	return result.Text(), nil
}

func geminiImagePart(img Image) (*genai.Part, error) {
	switch {
	case IsDataURI(img.URL):
		mediaType, data, err := DecodeDataURI(img.URL)
		if err != nil {
			return nil, err
		}
		return &genai.Part{InlineData: &genai.Blob{MIMEType: mediaType, Data: data}}, nil
	case IsRemote(img.URL):
		mediaType := mime.TypeByExtension(path.Ext(img.Name))
		if mediaType == "" {
			mediaType = mime.TypeByExtension(path.Ext(img.URL))
		}
		return &genai.Part{FileData: &genai.FileData{MIMEType: cmp.Or(mediaType, "image/jpeg"), FileURI: img.URL}}, nil
	default:
		return nil, ErrUnsupportedImage
	}
}

// Verify checks that the result is non-empty.
func (o *GeminiInferencer) Verify(ctx context.Context, result string) (bool, error) {
	if result == "" {
		return false, errors.New("empty result")
	}
	return true, nil
}
