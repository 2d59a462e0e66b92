// Package analysis fans a design image out to the visual, layout and semantic
// extractors and joins their sections into one DesignAnalysisResult.
package analysis

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/menta2k/design-analyzer/pkg/types"
)

// ErrAnalysisFailed matches any *AnalysisFailedError
var ErrAnalysisFailed = errors.New("design analysis failed")

// AnalysisFailedError reports an unexpected failure in one extractor
type AnalysisFailedError struct {
	Section string
	Cause   error
}

func (e *AnalysisFailedError) Error() string {
	return fmt.Sprintf("design analysis failed in %s extractor: %v", e.Section, e.Cause)
}

func (e *AnalysisFailedError) Unwrap() error { return e.Cause }

func (e *AnalysisFailedError) Is(target error) bool { return target == ErrAnalysisFailed }

// VisualExtractor produces the visual section
type VisualExtractor interface {
	Extract(ctx context.Context, img types.ImageData) (types.VisualAnalysis, error)
}

// LayoutExtractor produces the layout section
type LayoutExtractor interface {
	Extract(ctx context.Context, img types.ImageData) (types.LayoutAnalysis, error)
}

// SemanticExtractor produces the semantic section
type SemanticExtractor interface {
	Extract(ctx context.Context, img types.ImageData) (types.SemanticAnalysis, error)
}

// Aggregator runs the three extractors concurrently and merges their output
type Aggregator struct {
	visual   VisualExtractor
	layout   LayoutExtractor
	semantic SemanticExtractor
	logger   *slog.Logger
	now      func() time.Time
}

// New creates an aggregator over the given extractors
func New(visual VisualExtractor, layout LayoutExtractor, semantic SemanticExtractor, logger *slog.Logger) *Aggregator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Aggregator{
		visual:   visual,
		layout:   layout,
		semantic: semantic,
		logger:   logger.With("component", "design-analyzer"),
		now:      time.Now,
	}
}

// AnalyzeDesign runs all extractors on the image and waits for every one of
// them. Extractors degrade expected vendor failures on their own; anything
// they return as an error, or a panic, fails the whole call.
func (a *Aggregator) AnalyzeDesign(ctx context.Context, img types.ImageData) (types.DesignAnalysisResult, error) {
	start := a.now()
	a.logger.Info("starting design analysis", "format", img.Format, "width", img.Width, "height", img.Height)

	var (
		visual   types.VisualAnalysis
		layout   types.LayoutAnalysis
		semantic types.SemanticAnalysis
		g        errgroup.Group
	)

	g.Go(guard("visual", func() (err error) {
		if a.visual == nil {
			return errors.New("no extractor configured")
		}
		visual, err = a.visual.Extract(ctx, img)
		return err
	}))
	g.Go(guard("layout", func() (err error) {
		if a.layout == nil {
			return errors.New("no extractor configured")
		}
		layout, err = a.layout.Extract(ctx, img)
		return err
	}))
	g.Go(guard("semantic", func() (err error) {
		if a.semantic == nil {
			return errors.New("no extractor configured")
		}
		semantic, err = a.semantic.Extract(ctx, img)
		return err
	}))

	if err := g.Wait(); err != nil {
		a.logger.Error("design analysis failed", "error", err)
		return types.DesignAnalysisResult{}, err
	}

	elapsed := a.now().Sub(start)
	visual.Confidence = clamp01(visual.Confidence)
	layout.Confidence = clamp01(layout.Confidence)
	semantic.Confidence = clamp01(semantic.Confidence)

	result := types.DesignAnalysisResult{
		Visual:   visual,
		Layout:   layout,
		Semantic: semantic,
		Metadata: types.Metadata{
			Timestamp:        start.UTC(),
			ProcessingTimeMs: elapsed.Milliseconds(),
			ImageFormat:      img.Format,
			Dimensions:       types.Dimensions{Width: img.Width, Height: img.Height},
		},
	}

	a.logger.Info("design analysis completed",
		"duration_ms", result.Metadata.ProcessingTimeMs,
		"elements", len(visual.UI.Elements),
		"layout", layout.Structure.Type,
		"visual_confidence", visual.Confidence,
		"layout_confidence", layout.Confidence,
		"semantic_confidence", semantic.Confidence)
	return result, nil
}

// guard wraps an extractor run so errors and panics surface as AnalysisFailedError
func guard(section string, fn func() error) func() error {
	return func() (err error) {
		defer func() {
			if r := recover(); r != nil {
				err = &AnalysisFailedError{Section: section, Cause: fmt.Errorf("panic: %v", r)}
			}
		}()
		if err := fn(); err != nil {
			return &AnalysisFailedError{Section: section, Cause: err}
		}
		return nil
	}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
