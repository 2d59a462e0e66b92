// Package codegen renders ComponentDefinitions as React, Vue or Angular source.
//
// Each framework is a Renderer held in a registry; each renderer dispatches
// per element kind through its own fragment table, so new frameworks and new
// element kinds are added by registration rather than by editing a switch.
package codegen

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/menta2k/design-analyzer/pkg/types"
)

const defaultComponentName = "GeneratedComponent"

// ErrUnsupportedFramework matches any *UnsupportedFrameworkError
var ErrUnsupportedFramework = errors.New("unsupported framework")

// UnsupportedFrameworkError is returned for a target outside the registry
type UnsupportedFrameworkError struct {
	Framework string
}

func (e *UnsupportedFrameworkError) Error() string {
	return fmt.Sprintf("unsupported framework: %q", e.Framework)
}

func (e *UnsupportedFrameworkError) Is(target error) bool { return target == ErrUnsupportedFramework }

// Renderer produces source text for one framework
type Renderer interface {
	// Extension is the file suffix for generated sources, including the dot
	Extension() string
	// Fragment renders one component as markup
	Fragment(c types.ComponentDefinition) string
	// Wrap places rendered fragments inside the framework's component shell
	Wrap(componentName string, fragments []string) string
}

var (
	registryMu sync.RWMutex
	registry   = map[types.Framework]Renderer{
		types.FrameworkReact:   newReactRenderer(),
		types.FrameworkVue:     newVueRenderer(),
		types.FrameworkAngular: newAngularRenderer(),
	}
)

// Register installs or replaces the renderer for a framework
func Register(fw types.Framework, r Renderer) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[fw] = r
}

// Frameworks lists the registered frameworks in sorted order
func Frameworks() []types.Framework {
	registryMu.RLock()
	defer registryMu.RUnlock()
	out := make([]types.Framework, 0, len(registry))
	for fw := range registry {
		out = append(out, fw)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// ParseFramework resolves a framework name against the registry
func ParseFramework(name string) (types.Framework, error) {
	fw := types.Framework(strings.ToLower(strings.TrimSpace(name)))
	registryMu.RLock()
	_, ok := registry[fw]
	registryMu.RUnlock()
	if !ok {
		return "", &UnsupportedFrameworkError{Framework: name}
	}
	return fw, nil
}

func rendererFor(fw types.Framework) (Renderer, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	r, ok := registry[fw]
	return r, ok
}

// Generator renders components for one framework fixed at construction
type Generator struct {
	framework     types.Framework
	renderer      Renderer
	componentName string
}

// Option configures a Generator
type Option func(*Generator)

// WithComponentName sets the generated root component name
func WithComponentName(name string) Option {
	return func(g *Generator) {
		if strings.TrimSpace(name) != "" {
			g.componentName = strings.TrimSpace(name)
		}
	}
}

// New creates a generator, failing immediately for unknown frameworks
func New(framework string, opts ...Option) (*Generator, error) {
	fw, err := ParseFramework(framework)
	if err != nil {
		return nil, err
	}
	r, ok := rendererFor(fw)
	if !ok {
		return nil, &UnsupportedFrameworkError{Framework: framework}
	}
	g := &Generator{
		framework:     fw,
		renderer:      r,
		componentName: defaultComponentName,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g, nil
}

// Framework returns the generator's target framework
func (g *Generator) Framework() types.Framework {
	return g.framework
}

// FileName returns the file name generated sources should be written to
func (g *Generator) FileName() string {
	return g.componentName + g.renderer.Extension()
}

// Generate renders every component in input order inside the component shell
func (g *Generator) Generate(components []types.ComponentDefinition) string {
	fragments := make([]string, 0, len(components))
	for _, c := range components {
		fragments = append(fragments, g.renderer.Fragment(c))
	}
	return g.renderer.Wrap(g.componentName, fragments)
}

// fragmentFunc renders one component kind
type fragmentFunc func(c types.ComponentDefinition) string

// templateRenderer is a Renderer driven by a per-kind fragment table
type templateRenderer struct {
	ext       string
	mu        sync.RWMutex
	fragments map[types.ElementKind]fragmentFunc
	fallback  fragmentFunc
	shell     func(name string, fragments []string) string
}

func (r *templateRenderer) Extension() string { return r.ext }

func (r *templateRenderer) Fragment(c types.ComponentDefinition) string {
	r.mu.RLock()
	fn, ok := r.fragments[c.Type]
	r.mu.RUnlock()
	if ok {
		return fn(c)
	}
	return r.fallback(c)
}

func (r *templateRenderer) Wrap(name string, fragments []string) string {
	return r.shell(name, fragments)
}

func (r *templateRenderer) handle(kind types.ElementKind, fn fragmentFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.fragments[kind] = fn
}

// RegisterFragment overrides how one element kind renders for a built-in framework
func RegisterFragment(fw types.Framework, kind types.ElementKind, fn func(c types.ComponentDefinition) string) error {
	r, ok := rendererFor(fw)
	if !ok {
		return &UnsupportedFrameworkError{Framework: string(fw)}
	}
	tr, ok := r.(*templateRenderer)
	if !ok {
		return fmt.Errorf("renderer for %s does not support fragment registration", fw)
	}
	tr.handle(kind, fn)
	return nil
}

// styleObject renders styles as a JS object literal with sorted keys
func styleObject(styles map[string]string, quote byte) string {
	if len(styles) == 0 {
		return "{}"
	}
	keys := make([]string, 0, len(styles))
	for k := range styles {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		key := k
		if !isIdentifier(k) {
			key = jsString(k, quote)
		}
		parts = append(parts, key+": "+jsString(styles[k], quote))
	}
	return "{ " + strings.Join(parts, ", ") + " }"
}

func jsString(s string, quote byte) string {
	q := string(quote)
	r := strings.NewReplacer(`\`, `\\`, q, `\`+q, "\n", `\n`)
	return q + r.Replace(s) + q
}

func isIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for i, c := range s {
		switch {
		case c == '_' || c == '$':
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z':
		case c >= '0' && c <= '9' && i > 0:
		default:
			return false
		}
	}
	return true
}

// textProp returns a string property or fallback
func textProp(c types.ComponentDefinition, key, fallback string) string {
	if v, ok := c.Properties[key].(string); ok && v != "" {
		return v
	}
	return fallback
}

func indent(lines []string, prefix string) string {
	out := make([]string, len(lines))
	for i, l := range lines {
		out[i] = prefix + l
	}
	return strings.Join(out, "\n")
}
