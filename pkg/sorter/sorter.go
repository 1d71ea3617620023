package sorter

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/segmentio/ksuid"

	"pagesort/pkg/diff"
	"pagesort/pkg/inference"
	"pagesort/pkg/schema"
	"pagesort/pkg/utils"
)

// ErrInvalidRequest is wrapped by errors describing a malformed sort request.
var ErrInvalidRequest = errors.New("invalid sort request")

// Sorter runs the analysis, sequencing and validation stages for one chapter at a time.
// It holds no per-chapter state, so one Sorter may serve concurrent requests.
type Sorter struct {
	Analyzer  Analyzer
	Sequencer Sequencer
	Provider  string

	configErr error
}

// New builds a Sorter backed by inf for both stages. A nil inf yields a Sorter whose every
// Sort call fails with *ConfigurationError.
func New(inf inference.Inferencer) *Sorter {
	if inf == nil {
		return &Sorter{configErr: inference.ErrNoCredentials}
	}
	return &Sorter{
		Analyzer:  &VisualAnalyzer{Inferencer: inf},
		Sequencer: &NarrativeSequencer{Inferencer: inf},
		Provider:  inf.Name(),
	}
}

// NewFromEnv builds a Sorter for the provider selected by the environment. A missing or
// broken configuration is not returned here; it is reported by every Sort call instead.
func NewFromEnv(ctx context.Context) *Sorter {
	inf, err := inference.FromEnv(ctx)
	if err != nil {
		log.Warn("no inference provider available, sort requests will fail", "error", err)
		return &Sorter{configErr: err}
	}
	log.Info("inference provider selected", "provider", inf.Name())
	return New(inf)
}

// Ready returns a *ConfigurationError when Sort cannot reach an inference provider.
func (s *Sorter) Ready() error {
	if s.configErr != nil || s.Analyzer == nil || s.Sequencer == nil {
		return &ConfigurationError{Err: s.configErr}
	}
	return nil
}

// Configured reports whether Sort can reach an inference provider.
func (s *Sorter) Configured() bool {
	return s.Ready() == nil
}

// CheckRequest rejects requests that cannot be sorted: no images, or a page with an empty or
// repeated name or empty data.
func CheckRequest(req schema.SortRequest) error {
	if len(req.Images) == 0 {
		return fmt.Errorf("%w: images must not be empty", ErrInvalidRequest)
	}
	seen := make(map[string]bool, len(req.Images))
	for i, img := range req.Images {
		switch {
		case img.Name == "":
			return fmt.Errorf("%w: image %d has no name", ErrInvalidRequest, i)
		case seen[img.Name]:
			return fmt.Errorf("%w: duplicate image name %q", ErrInvalidRequest, img.Name)
		case img.Data == "":
			return fmt.Errorf("%w: image %q has no data", ErrInvalidRequest, img.Name)
		}
		seen[img.Name] = true
	}
	return nil
}

// Sort returns the validated reading order of req.Images. onAnalysis, when not nil, receives
// the page analyses before sequencing starts. A result with status context-failure is still
// a successful sort; callers decide whether to publish it.
func (s *Sorter) Sort(ctx context.Context, req schema.SortRequest, onAnalysis func([]schema.PageAnalysis)) (schema.OrderingResult, error) {
	if err := s.Ready(); err != nil {
		return schema.OrderingResult{}, err
	}
	if err := CheckRequest(req); err != nil {
		return schema.OrderingResult{}, err
	}

	id := ksuid.New().String()
	names := req.Names()
	start := time.Now()
	logger := log.With("request", id, "title", req.MangaTitle, "chapter", req.ChapterNumber)
	logger.Info("sorting chapter", "pages", len(names), "provider", s.Provider)

	analyses, err := s.Analyzer.Analyze(ctx, req.Images)
	if err != nil {
		logger.Error("page analysis failed", "error", err)
		return schema.OrderingResult{}, asFailure(err, func(err error) error { return &AnalysisFailure{Err: err} })
	}
	coverage := coverageWarnings(names, analyses)
	for _, w := range coverage {
		logger.Warn(w)
	}
	logger.Debug("pages analyzed", "analyses", len(analyses), "elapsed", time.Since(start))
	if onAnalysis != nil {
		onAnalysis(analyses)
	}

	proposed, err := s.Sequencer.Sequence(ctx, req, analyses)
	if err != nil {
		logger.Error("page sequencing failed", "error", err)
		return schema.OrderingResult{}, asFailure(err, func(err error) error { return &SequencingFailure{Err: err} })
	}

	result, err := Validate(names, proposed)
	if err != nil {
		var invalid *InvalidFilenamesError
		if errors.As(err, &invalid) {
			for _, name := range invalid.InvalidNames {
				if closest, score := utils.Closest(name, names); score > 0 {
					logger.Warn("unknown filename in order", "name", name, "closest", closest, "similarity", score)
				}
			}
		}
		logger.Error("order rejected", "error", err)
		return schema.OrderingResult{}, err
	}
	result.Warnings = append(result.Warnings, coverage...)

	moves := diff.Orders(names, result.Order)
	logger.Info("sort complete",
		"status", result.Status,
		"confidence", result.Confidence,
		"moves", len(moves.Moves),
		"elapsed", time.Since(start),
	)
	logger.Debug("order", "moves", moves.Summary())
	return result, nil
}

// asFailure keeps pipeline errors returned by a stage and wraps anything else.
func asFailure(err error, wrap func(error) error) error {
	var f Failure
	if errors.As(err, &f) {
		return err
	}
	return wrap(err)
}
