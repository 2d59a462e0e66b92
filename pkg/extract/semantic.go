package extract

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"

	"github.com/menta2k/design-analyzer/pkg/adapter"
	"github.com/menta2k/design-analyzer/pkg/types"
)

const (
	// SemanticConfidence is reported when the model answered with valid JSON
	SemanticConfidence = 0.9
	// ParseFailureConfidence is reported when the model's answer was not JSON
	ParseFailureConfidence = 0.3
)

// SemanticPrompt asks the vision-language model for a structured design reading
const SemanticPrompt = `Analyze this UI design image and provide:
1. Overall design intent and purpose
2. List of UI components identified
3. Component relationships and hierarchy
4. Design pattern suggestions
5. Accessibility considerations

Respond in JSON format with these fields:
{
  "intent": "description of design purpose",
  "components": [{"type": "button", "name": "primary-cta", "properties": {}}],
  "relationships": [{"parent": "container", "child": "button", "relationship": "contains"}],
  "suggestions": ["improvement suggestions"]
}

JSON only. No markdown, no code fences, no comments, no trailing commas.`

var ErrNoModel = errors.New("extract: no vision-language model configured")

// SemanticExtractor asks a vision-language model what the design is for
type SemanticExtractor struct {
	model  adapter.VisionLanguageModel
	prompt string
	logger *slog.Logger
}

// NewSemantic creates a semantic extractor backed by the given model
func NewSemantic(model adapter.VisionLanguageModel, logger *slog.Logger) *SemanticExtractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &SemanticExtractor{
		model:  model,
		prompt: SemanticPrompt,
		logger: logger.With("component", "semantic-extractor"),
	}
}

// WithPrompt returns a copy of the extractor using a custom prompt
func (e *SemanticExtractor) WithPrompt(prompt string) *SemanticExtractor {
	cp := *e
	cp.prompt = prompt
	return &cp
}

// Extract queries the model and parses its answer.
// Model failures and unparseable answers degrade to fixed low-confidence results.
func (e *SemanticExtractor) Extract(ctx context.Context, img types.ImageData) (types.SemanticAnalysis, error) {
	if e == nil || e.model == nil {
		return types.SemanticAnalysis{}, ErrNoModel
	}

	res := e.model.Complete(ctx, e.prompt, img)
	if !res.OK() {
		e.logger.Warn("semantic analysis failed, using default analysis", "error", res.Err)
		return DefaultSemantic(), nil
	}
	if strings.TrimSpace(res.Value) == "" {
		e.logger.Warn("semantic analysis returned empty content")
		return DefaultSemantic(), nil
	}

	result := ParseSemanticResponse(res.Value)
	if result.Confidence == ParseFailureConfidence {
		e.logger.Warn("semantic analysis response is not valid JSON", "length", len(res.Value))
	}
	return result, nil
}

// ParseSemanticResponse decodes the model's JSON answer, returning
// ParseFailure when it cannot be decoded
func ParseSemanticResponse(content string) types.SemanticAnalysis {
	insight, ok := decodeInsight(strings.TrimSpace(content))
	if !ok {
		// Fences, comments and trailing commas are only stripped from answers
		// that are not already valid JSON
		insight, ok = decodeInsight(sanitizeModelJSON(content))
	}
	if !ok {
		return ParseFailure()
	}

	if insight.Components == nil {
		insight.Components = []types.RawComponent{}
	}
	if insight.Relationships == nil {
		insight.Relationships = []types.Relation{}
	}
	insight.Suggestions = normalizeSuggestions(insight.Suggestions)

	return types.SemanticAnalysis{
		SemanticInsight: insight,
		Confidence:      SemanticConfidence,
	}
}

func decodeInsight(raw string) (types.SemanticInsight, bool) {
	var insight types.SemanticInsight
	if !strings.HasPrefix(raw, "{") {
		return insight, false
	}
	if err := json.Unmarshal([]byte(raw), &insight); err != nil {
		return types.SemanticInsight{}, false
	}
	return insight, true
}

// ParseFailure is the semantic section used when the model's answer is not JSON
func ParseFailure() types.SemanticAnalysis {
	return types.SemanticAnalysis{
		SemanticInsight: types.SemanticInsight{
			Intent:        "Unable to parse semantic analysis",
			Components:    []types.RawComponent{},
			Relationships: []types.Relation{},
			Suggestions:   []string{"Manual review recommended"},
		},
		Confidence: ParseFailureConfidence,
	}
}

// DefaultSemantic is the semantic section used when the model call fails
func DefaultSemantic() types.SemanticAnalysis {
	return types.SemanticAnalysis{
		SemanticInsight: types.SemanticInsight{
			Intent:        "Analysis unavailable",
			Components:    []types.RawComponent{},
			Relationships: []types.Relation{},
			Suggestions:   []string{"Please check OpenAI configuration"},
		},
		Confidence: DegradedConfidence,
	}
}

// normalizeSuggestions trims and de-duplicates suggestions, keeping order
func normalizeSuggestions(in []string) []string {
	seen := map[string]struct{}{}
	out := make([]string, 0, len(in))
	for _, s := range in {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		key := strings.ToLower(s)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, s)
	}
	return out
}
