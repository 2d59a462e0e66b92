// Package designanalyzer turns UI design images into component definitions and
// framework source code.
//
// Three vendor services look at the same image concurrently: an object
// detector finds UI elements, a layout reader finds text lines, and a
// vision-language model describes the design's intent. Their answers are
// normalized into one DesignAnalysisResult, which the builder flattens into
// ComponentDefinitions and the code generator renders for React, Vue or
// Angular.
//
// Basic usage:
//
//	package main
//
//	import (
//		"context"
//		"fmt"
//		"log"
//
//		designanalyzer "github.com/menta2k/design-analyzer"
//		"github.com/menta2k/design-analyzer/pkg/azurevision"
//		"github.com/menta2k/design-analyzer/pkg/docintel"
//		"github.com/menta2k/design-analyzer/pkg/openai"
//		"github.com/menta2k/design-analyzer/pkg/types"
//	)
//
//	func main() {
//		vision, _ := azurevision.NewClient(cvEndpoint, cvKey)
//		layout, _ := docintel.NewClient(docintel.Config{Endpoint: frEndpoint, Key: frKey})
//		model, _ := openai.NewClient(openai.Config{APIKey: apiKey})
//
//		da := designanalyzer.New(designanalyzer.Options{
//			Detector: vision,
//			Layout:   layout,
//			Model:    model,
//		})
//
//		img := types.ImageData{Data: pngBytes, Format: "png", Width: 1200, Height: 800}
//		report, err := da.DesignToCode(context.Background(), img, "react")
//		if err != nil {
//			log.Fatal(err)
//		}
//		fmt.Println(report.Sources["react"].Code)
//	}
//
// Vendor failures never stop an analysis: the affected section falls back to
// a default payload with confidence 0.1. Only unexpected extractor failures
// (analysis.ErrAnalysisFailed) and unknown frameworks
// (codegen.ErrUnsupportedFramework) are returned as errors.
package designanalyzer

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/menta2k/design-analyzer/pkg/adapter"
	"github.com/menta2k/design-analyzer/pkg/analysis"
	"github.com/menta2k/design-analyzer/pkg/builder"
	"github.com/menta2k/design-analyzer/pkg/codegen"
	"github.com/menta2k/design-analyzer/pkg/extract"
	"github.com/menta2k/design-analyzer/pkg/types"
)

// Version of the design analyzer library
const Version = "1.0.0"

// Options wires the vendor adapters and collaborators into an Analyzer
type Options struct {
	Detector     adapter.ObjectDetector
	Layout       adapter.LayoutReader
	Model        adapter.VisionLanguageModel
	Logger       *slog.Logger
	DesignSystem builder.DesignSystem
	// SemanticPrompt overrides extract.SemanticPrompt when set
	SemanticPrompt string
}

// Analyzer provides a high-level interface for design analysis and code generation
type Analyzer struct {
	aggregator *analysis.Aggregator
	builder    *builder.Builder
	logger     *slog.Logger
}

// New creates an Analyzer from explicitly constructed adapters
func New(opts Options) *Analyzer {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	semantic := extract.NewSemantic(opts.Model, logger)
	if opts.SemanticPrompt != "" {
		semantic = semantic.WithPrompt(opts.SemanticPrompt)
	}

	return &Analyzer{
		aggregator: analysis.New(
			extract.NewVisual(opts.Detector, logger),
			extract.NewLayout(opts.Layout, logger),
			semantic,
			logger,
		),
		builder: builder.NewWithDesignSystem(opts.DesignSystem),
		logger:  logger,
	}
}

// GeneratedSource is one rendered component file
type GeneratedSource struct {
	Framework types.Framework `json:"framework"`
	FileName  string          `json:"fileName"`
	Code      string          `json:"code"`
}

// Report contains everything produced for one design image
type Report struct {
	Analysis   types.DesignAnalysisResult          `json:"analysis"`
	Components []types.ComponentDefinition         `json:"components"`
	Sources    map[types.Framework]GeneratedSource `json:"sources"`
}

// AnalyzeDesign performs the concurrent visual, layout and semantic analysis
func (a *Analyzer) AnalyzeDesign(ctx context.Context, img types.ImageData) (types.DesignAnalysisResult, error) {
	return a.aggregator.AnalyzeDesign(ctx, img)
}

// BuildComponents converts an analysis into component definitions
func (a *Analyzer) BuildComponents(result types.DesignAnalysisResult) []types.ComponentDefinition {
	return a.builder.Build(result)
}

// GenerateCode renders an analysis for one framework
func (a *Analyzer) GenerateCode(result types.DesignAnalysisResult, framework string) (string, error) {
	src, err := a.generate(a.BuildComponents(result), framework)
	if err != nil {
		return "", err
	}
	return src.Code, nil
}

// DesignToCode analyzes the image once and renders it for every framework.
// Frameworks are validated before any vendor call is made.
func (a *Analyzer) DesignToCode(ctx context.Context, img types.ImageData, frameworks ...string) (Report, error) {
	if len(frameworks) == 0 {
		frameworks = []string{string(types.FrameworkReact)}
	}
	for _, fw := range frameworks {
		if _, err := codegen.ParseFramework(fw); err != nil {
			return Report{}, err
		}
	}

	result, err := a.AnalyzeDesign(ctx, img)
	if err != nil {
		return Report{}, err
	}

	components := a.BuildComponents(result)
	report := Report{
		Analysis:   result,
		Components: components,
		Sources:    make(map[types.Framework]GeneratedSource, len(frameworks)),
	}
	for _, fw := range frameworks {
		src, err := a.generate(components, fw)
		if err != nil {
			return Report{}, err
		}
		report.Sources[src.Framework] = src
	}
	return report, nil
}

func (a *Analyzer) generate(components []types.ComponentDefinition, framework string) (GeneratedSource, error) {
	gen, err := codegen.New(framework, codegen.WithComponentName(a.builder.DesignSystem().ComponentName()))
	if err != nil {
		return GeneratedSource{}, err
	}
	a.logger.Debug("generating code", "framework", gen.Framework(), "components", len(components))
	return GeneratedSource{
		Framework: gen.Framework(),
		FileName:  gen.FileName(),
		Code:      gen.Generate(components),
	}, nil
}

// GetVersion returns the library version
func GetVersion() string {
	return Version
}

// String implements fmt.Stringer for log output
func (r Report) String() string {
	return fmt.Sprintf("report{elements=%d layout=%s sources=%d}",
		len(r.Components), r.Analysis.Layout.Structure.Type, len(r.Sources))
}
