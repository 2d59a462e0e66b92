package extract

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"

	"github.com/menta2k/design-analyzer/pkg/adapter"
	"github.com/menta2k/design-analyzer/pkg/types"
)

const (
	// VisualConfidence is reported when the vision service answered
	VisualConfidence = 0.8
	// DegradedConfidence is reported for any section replaced by its default payload
	DegradedConfidence = 0.1
)

var ErrNoDetector = errors.New("extract: no object detector configured")

// uiVocabulary decides whether a detected object is a UI element at all
var uiVocabulary = []string{
	"button", "text", "input", "image", "icon", "menu", "navigation",
	"card", "container", "form", "list", "table", "chart",
}

type kindRule struct {
	kind     types.ElementKind
	keywords []string
}

var (
	kindMu sync.RWMutex
	// kindRules is evaluated in order; the first matching rule wins
	kindRules = []kindRule{
		{types.KindButton, []string{"button"}},
		{types.KindText, []string{"text"}},
		{types.KindInput, []string{"input", "field"}},
		{types.KindImage, []string{"image", "picture"}},
		{types.KindIcon, []string{"icon"}},
		{types.KindNavigation, []string{"menu", "navigation"}},
		{types.KindCard, []string{"card"}},
		{types.KindContainer, []string{"container", "box"}},
	}
)

// RegisterKind appends a classification rule evaluated after the built-in ones.
// Keywords are also added to the UI vocabulary.
func RegisterKind(kind types.ElementKind, keywords ...string) {
	kindMu.Lock()
	defer kindMu.Unlock()
	lower := make([]string, 0, len(keywords))
	for _, k := range keywords {
		k = strings.ToLower(strings.TrimSpace(k))
		if k != "" {
			lower = append(lower, k)
		}
	}
	kindRules = append(kindRules, kindRule{kind: kind, keywords: lower})
	uiVocabulary = append(uiVocabulary, lower...)
}

// VisualExtractor turns object detection output into UI insights
type VisualExtractor struct {
	detector adapter.ObjectDetector
	logger   *slog.Logger
}

// NewVisual creates a visual extractor backed by the given detector
func NewVisual(detector adapter.ObjectDetector, logger *slog.Logger) *VisualExtractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &VisualExtractor{
		detector: detector,
		logger:   logger.With("component", "visual-extractor"),
	}
}

// Extract runs the detector and derives the visual section.
// Detector failures degrade to DefaultVisual and are never returned.
func (e *VisualExtractor) Extract(ctx context.Context, img types.ImageData) (types.VisualAnalysis, error) {
	if e == nil || e.detector == nil {
		return types.VisualAnalysis{}, ErrNoDetector
	}

	e.logger.Debug("running object detection", "bytes", len(img.Data))
	res := e.detector.DetectObjects(ctx, img)
	if !res.OK() {
		e.logger.Warn("object detection failed, using default analysis", "error", res.Err)
		return DefaultVisual(), nil
	}

	payload := res.Value
	objects := payload.Objects
	if objects == nil {
		objects = []types.DetectedObject{}
	}
	tags := payload.Tags
	if tags == nil {
		tags = []string{}
	}
	return types.VisualAnalysis{
		UI:         ExtractUIInsights(payload),
		Objects:    objects,
		Tags:       tags,
		Confidence: VisualConfidence,
	}, nil
}

// DefaultVisual is the visual section used when the vision service fails
func DefaultVisual() types.VisualAnalysis {
	return types.VisualAnalysis{
		UI: types.UIInsight{
			Elements: []types.UIElement{},
			Patterns: []string{},
		},
		Objects:    []types.DetectedObject{},
		Tags:       []string{"interface", "design"},
		Confidence: DegradedConfidence,
	}
}

// ExtractUIInsights classifies detected objects as UI elements and reads the color scheme
func ExtractUIInsights(p adapter.VisionPayload) types.UIInsight {
	insight := types.UIInsight{
		Elements: []types.UIElement{},
		Patterns: []string{},
	}

	for _, obj := range p.Objects {
		if !IsUIElement(obj.Label) {
			continue
		}
		insight.Elements = append(insight.Elements, MapToUIElement(obj))
	}

	if p.Color != nil {
		insight.ColorScheme = &types.ColorScheme{
			Dominant:   p.Color.DominantForeground,
			Background: p.Color.DominantBackground,
			Accent:     p.Color.Accent,
		}
	}
	return insight
}

// IsUIElement reports whether an object label names a UI element
func IsUIElement(label string) bool {
	name := strings.ToLower(label)
	kindMu.RLock()
	defer kindMu.RUnlock()
	for _, word := range uiVocabulary {
		if strings.Contains(name, word) {
			return true
		}
	}
	return false
}

// MapToUIElement converts one detected object into a UI element
func MapToUIElement(obj types.DetectedObject) types.UIElement {
	kind := InferElementKind(obj.Label)
	return types.UIElement{
		Type:       kind,
		Confidence: clamp01(obj.Confidence),
		Bounds:     obj.Rect,
		Properties: InferProperties(kind, obj.Rect),
	}
}

// InferElementKind classifies a label by case-insensitive keyword match
func InferElementKind(label string) types.ElementKind {
	name := strings.ToLower(label)
	kindMu.RLock()
	defer kindMu.RUnlock()
	for _, rule := range kindRules {
		for _, kw := range rule.keywords {
			if strings.Contains(name, kw) {
				return rule.kind
			}
		}
	}
	return types.KindUnknown
}

// InferProperties derives size and style hints from the element geometry
func InferProperties(kind types.ElementKind, r types.Rect) map[string]any {
	aspect := r.AspectRatio()
	props := map[string]any{
		"width":       r.W,
		"height":      r.H,
		"aspectRatio": aspect,
	}

	switch kind {
	case types.KindButton:
		props["size"] = ButtonSize(r.H)
		if aspect > 2 {
			props["style"] = "wide"
		} else {
			props["style"] = "compact"
		}
	case types.KindText:
		props["size"] = TextSize(r.H)
		if aspect > 10 {
			props["type"] = "heading"
		} else {
			props["type"] = "body"
		}
	case types.KindInput:
		if aspect > 3 {
			props["type"] = "text"
		} else {
			props["type"] = "textarea"
		}
	}
	return props
}

// ButtonSize buckets a button height into small, medium or large
func ButtonSize(height float64) string {
	switch {
	case height < 30:
		return "small"
	case height < 45:
		return "medium"
	default:
		return "large"
	}
}

// TextSize buckets a text height into small, body, subtitle or heading
func TextSize(height float64) string {
	switch {
	case height < 14:
		return "small"
	case height < 18:
		return "body"
	case height < 24:
		return "subtitle"
	default:
		return "heading"
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
