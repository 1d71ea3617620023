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

// Analyzer describes every page of a chapter without ordering it.
type Analyzer interface {
	Analyze(ctx context.Context, images []schema.PageImage) ([]schema.PageAnalysis, error)
}

// VisualAnalyzer runs page analysis as a single multimodal inference request.
type VisualAnalyzer struct {
	Inferencer inference.Inferencer
}

// Analyze sends every image, labelled with its filename, and parses one PageAnalysis per page.
// Any inference or parse error is returned as an *AnalysisFailure.
func (a *VisualAnalyzer) Analyze(ctx context.Context, images []schema.PageImage) ([]schema.PageAnalysis, error) {
	names := make([]string, len(images))
	for i, img := range images {
		names[i] = img.Name
	}
	user := analyzeUser(names)
	logTokens("analysis", analyzePrompt+user, len(images))

	params := &openai.ChatCompletionNewParams{
		MaxCompletionTokens: openai.Int(utils.CompletionBudget(len(images), 768, 4096)),
		ResponseFormat:      schema.AnalysisResponseFormat(),
	}

	out, err := infer(ctx, a.Inferencer, params, analyzePrompt, user, images)
	if err != nil {
		return nil, &AnalysisFailure{Err: err}
	}

	parsed, err := utils.ParseJSON[schema.Analysis](out)
	if err != nil {
		log.Warn("unparseable analysis response", "error", err, "raw", utils.LimitStr(out, 300))
		return nil, &AnalysisFailure{Err: fmt.Errorf("parse analysis: %w", err)}
	}
	if len(parsed.Analyses) == 0 {
		return nil, &AnalysisFailure{Err: errors.New("no page analyses returned")}
	}
	return parsed.Analyses, nil
}

// coverageWarnings reports analyses that do not line up one-to-one with the input pages.
// Mismatches are not fatal; the order itself is checked for completeness later.
func coverageWarnings(names []string, analyses []schema.PageAnalysis) []string {
	var warnings []string
	if len(analyses) != len(names) {
		warnings = append(warnings, fmt.Sprintf("page analysis returned %d descriptions for %d pages", len(analyses), len(names)))
	}

	known := make(map[string]bool, len(names))
	for _, name := range names {
		known[name] = true
	}
	described := make(map[string]bool, len(analyses))
	for _, a := range analyses {
		if !known[a.Filename] {
			warnings = append(warnings, fmt.Sprintf("page analysis described unknown page %q", a.Filename))
			continue
		}
		described[a.Filename] = true
	}
	for _, name := range names {
		if !described[name] {
			warnings = append(warnings, fmt.Sprintf("page analysis did not describe %q", name))
		}
	}
	return warnings
}

func infer(ctx context.Context, inf inference.Inferencer, params *openai.ChatCompletionNewParams, system, user string, pages []schema.PageImage) (string, error) {
	images := make([]inference.Image, len(pages))
	for i, p := range pages {
		images[i] = inference.Image{Name: p.Name, URL: p.Data}
	}

	out, err := inf.Infer(ctx, params, system, user, images...)
	if err != nil {
		var apiErr *openai.Error
		if errors.As(err, &apiErr) {
			log.Error("inference request rejected", "provider", inf.Name(), "status", apiErr.StatusCode, "error", err)
		}
		return "", err
	}
	if ok, err := inf.Verify(ctx, out); !ok {
		if err == nil {
			err = errors.New("response failed verification")
		}
		return "", err
	}
	return utils.CleanJSON(out), nil
}

func logTokens(stage, prompt string, pages int) {
	tokens, err := utils.NumTokensFromMessages(prompt)
	if err != nil {
		log.Debug("prompt prepared", "stage", stage, "chars", len(prompt), "pages", pages)
		return
	}
	log.Debug("prompt prepared", "stage", stage, "chars", len(prompt), "tokens", tokens, "pages", pages)
}
