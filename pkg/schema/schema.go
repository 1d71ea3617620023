package schema

import (
	"github.com/invopop/jsonschema"
	"github.com/openai/openai-go/v3"
)

func generateSchema[T any]() any {
	r := jsonschema.Reflector{
		AllowAdditionalProperties: false,
		DoNotReference:            true,
	}
	var v T
	return r.Reflect(v)
}

var (
	AnalysisSchema = generateSchema[Analysis]()
	OrderingSchema = generateSchema[Ordering]()
)

func responseFormat(name, description string, schema any) openai.ChatCompletionNewParamsResponseFormatUnion {
	p := openai.ResponseFormatJSONSchemaJSONSchemaParam{
		Name:        name,
		Description: openai.String(description),
		Schema:      schema,
		Strict:      openai.Bool(true),
	}
	return openai.ChatCompletionNewParamsResponseFormatUnion{
		OfJSONSchema: &openai.ResponseFormatJSONSchemaParam{JSONSchema: p},
	}
}

func AnalysisResponseFormat() openai.ChatCompletionNewParamsResponseFormatUnion {
	return responseFormat("page_analysis", "Per-page visual description of a manga chapter", AnalysisSchema)
}

func OrderingResponseFormat() openai.ChatCompletionNewParamsResponseFormatUnion {
	return responseFormat("page_order", "Narrative reading order of a manga chapter", OrderingSchema)
}
