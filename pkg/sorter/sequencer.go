package sorter

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/openai/openai-go/v3"

	"pagesort/pkg/inference"
	"pagesort/pkg/schema"
	"pagesort/pkg/utils"
)

// Sequencer proposes a reading order from the pages and their analyses. The proposal is not
// validated against the input set.
type Sequencer interface {
	Sequence(ctx context.Context, req schema.SortRequest, analyses []schema.PageAnalysis) (schema.OrderingResult, error)
}

// NarrativeSequencer orders pages with a single multimodal inference request.
type NarrativeSequencer struct {
	Inferencer inference.Inferencer
}

// rawOrdering distinguishes absent fields from zero values.
type rawOrdering struct {
	Order      *[]string `json:"order"`
	Confidence *float64  `json:"confidence"`
	Reasoning  string    `json:"reasoning"`
	Warnings   []string  `json:"warnings"`
}

// Sequence asks the model for an order and bands its confidence. Inference errors, unparseable
// responses and responses without an order or confidence are returned as *SequencingFailure.
func (s *NarrativeSequencer) Sequence(ctx context.Context, req schema.SortRequest, analyses []schema.PageAnalysis) (schema.OrderingResult, error) {
	names := req.Names()
	user, err := sequenceUser(req.MangaTitle, req.ChapterNumber, names, analyses)
	if err != nil {
		return schema.OrderingResult{}, &SequencingFailure{Err: fmt.Errorf("encode analyses: %w", err)}
	}
	logTokens("sequence", sequencePrompt+user, len(names))

	params := &openai.ChatCompletionNewParams{
		MaxCompletionTokens: openai.Int(utils.CompletionBudget(len(names), 128, 4096)),
		ResponseFormat:      schema.OrderingResponseFormat(),
	}

	out, err := infer(ctx, s.Inferencer, params, sequencePrompt, user, req.Images)
	if err != nil {
		return schema.OrderingResult{}, &SequencingFailure{Err: err}
	}

	result, err := parseOrdering(out)
	if err != nil {
		log.Warn("unusable sequencing response", "error", err, "raw", utils.LimitStr(out, 300))
		return schema.OrderingResult{}, &SequencingFailure{Err: err}
	}
	return result, nil
}

func parseOrdering(out string) (schema.OrderingResult, error) {
	raw, err := utils.ParseJSON[rawOrdering](out)
	if err != nil {
		return schema.OrderingResult{}, fmt.Errorf("parse order: %w", err)
	}
	switch {
	case raw.Order == nil:
		return schema.OrderingResult{}, errors.New("response has no order")
	case raw.Confidence == nil:
		return schema.OrderingResult{}, errors.New("response has no confidence")
	case *raw.Confidence < 0 || *raw.Confidence > 1:
		return schema.OrderingResult{}, fmt.Errorf("confidence %v outside [0, 1]", *raw.Confidence)
	}

	warnings := raw.Warnings
	if warnings == nil {
		warnings = []string{}
	}
	return schema.OrderingResult{
		Order:      *raw.Order,
		Confidence: *raw.Confidence,
		Status:     schema.StatusFor(*raw.Confidence),
		Reasoning:  raw.Reasoning,
		Warnings:   warnings,
	}, nil
}
