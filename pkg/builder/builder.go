// Package builder turns a DesignAnalysisResult into a flat list of
// ComponentDefinitions with absolute-position styles.
package builder

import (
	"fmt"
	"strconv"
	"sync"

	"github.com/menta2k/design-analyzer/pkg/types"
)

const DefaultComponentName = "GeneratedComponent"

// DesignSystem carries style tokens and naming conventions from the host
// repository. Tokens are keyed "<kind>.<cssProperty>", e.g. "button.backgroundColor".
type DesignSystem struct {
	Tokens map[string]string `json:"tokens" yaml:"tokens"`
	Naming map[string]string `json:"naming" yaml:"naming"`
}

// Token returns the token for key, or fallback when absent
func (ds DesignSystem) Token(key, fallback string) string {
	if v, ok := ds.Tokens[key]; ok && v != "" {
		return v
	}
	return fallback
}

// ComponentName returns the generated root component name
func (ds DesignSystem) ComponentName() string {
	if v := ds.Naming["component"]; v != "" {
		return v
	}
	return DefaultComponentName
}

// StyleContext is what a style rule may read besides the element itself
type StyleContext struct {
	Scheme *types.ColorScheme
	System DesignSystem
}

// StyleRule adds kind-specific declarations to the base styles
type StyleRule func(el types.UIElement, sc StyleContext, styles map[string]string)

var (
	rulesMu sync.RWMutex
	rules   = map[types.ElementKind]StyleRule{
		types.KindButton: buttonStyles,
		types.KindText:   textStyles,
	}
)

// RegisterStyle installs or replaces the style rule for an element kind
func RegisterStyle(kind types.ElementKind, rule StyleRule) {
	rulesMu.Lock()
	defer rulesMu.Unlock()
	if rule == nil {
		delete(rules, kind)
		return
	}
	rules[kind] = rule
}

func ruleFor(kind types.ElementKind) StyleRule {
	rulesMu.RLock()
	defer rulesMu.RUnlock()
	return rules[kind]
}

// Builder creates component definitions from analysis results
type Builder struct {
	system DesignSystem
}

// New creates a builder with an empty design system
func New() *Builder {
	return &Builder{system: DesignSystem{Tokens: map[string]string{}, Naming: map[string]string{}}}
}

// NewWithDesignSystem creates a builder that reads fallbacks from ds
func NewWithDesignSystem(ds DesignSystem) *Builder {
	if ds.Tokens == nil {
		ds.Tokens = map[string]string{}
	}
	if ds.Naming == nil {
		ds.Naming = map[string]string{}
	}
	return &Builder{system: ds}
}

// DesignSystem returns the builder's design system
func (b *Builder) DesignSystem() DesignSystem {
	return b.system
}

// Build creates one definition per visual element in detection order.
// Names are "<type><index+1>", so they are unique within one call.
func (b *Builder) Build(analysis types.DesignAnalysisResult) []types.ComponentDefinition {
	elements := analysis.Visual.UI.Elements
	sc := StyleContext{Scheme: analysis.Visual.UI.ColorScheme, System: b.system}

	components := make([]types.ComponentDefinition, 0, len(elements))
	for i, el := range elements {
		components = append(components, types.ComponentDefinition{
			Type:       el.Type,
			Name:       fmt.Sprintf("%s%d", el.Type, i+1),
			Properties: cloneProps(el.Properties),
			Styles:     GenerateStyles(el, sc),
			Position:   el.Bounds,
		})
	}
	return components
}

// GenerateStyles returns the base absolute-position styles plus the kind's rule
func GenerateStyles(el types.UIElement, sc StyleContext) map[string]string {
	styles := map[string]string{
		"position": "absolute",
		"left":     px(el.Bounds.X),
		"top":      px(el.Bounds.Y),
		"width":    px(el.Bounds.W),
		"height":   px(el.Bounds.H),
	}
	if rule := ruleFor(el.Type); rule != nil {
		rule(el, sc, styles)
	}
	return styles
}

func buttonStyles(el types.UIElement, sc StyleContext, styles map[string]string) {
	bg := sc.System.Token("button.backgroundColor", "#007bff")
	if sc.Scheme != nil && sc.Scheme.Accent != "" {
		bg = sc.Scheme.Accent
	}
	styles["backgroundColor"] = bg
	styles["color"] = sc.System.Token("button.color", "white")
	styles["border"] = "none"
	styles["borderRadius"] = sc.System.Token("button.borderRadius", "4px")
	styles["padding"] = sc.System.Token("button.padding", "8px 16px")
	styles["cursor"] = "pointer"
}

func textStyles(el types.UIElement, sc StyleContext, styles map[string]string) {
	color := sc.System.Token("text.color", "#333")
	if sc.Scheme != nil && sc.Scheme.Dominant != "" {
		color = sc.Scheme.Dominant
	}
	styles["color"] = color

	size, _ := el.Properties["size"].(string)
	styles["fontSize"] = FontSize(size)
}

// FontSize maps a text size category to a CSS font size
func FontSize(size string) string {
	switch size {
	case "small":
		return "12px"
	case "body":
		return "16px"
	case "subtitle":
		return "20px"
	case "heading":
		return "24px"
	default:
		return "16px"
	}
}

func px(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64) + "px"
}

func cloneProps(in map[string]any) map[string]any {
	out := make(map[string]any, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
