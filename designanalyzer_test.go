package designanalyzer

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/menta2k/design-analyzer/pkg/adapter"
	"github.com/menta2k/design-analyzer/pkg/builder"
	"github.com/menta2k/design-analyzer/pkg/codegen"
	"github.com/menta2k/design-analyzer/pkg/types"
)

// countingDetector records how often the vision service was called
type countingDetector struct {
	adapter.StaticDetector
	calls int
}

func (c *countingDetector) DetectObjects(ctx context.Context, img types.ImageData) adapter.Result[adapter.VisionPayload] {
	c.calls++
	return c.StaticDetector.DetectObjects(ctx, img)
}

func submitButtonPayload() adapter.VisionPayload {
	return adapter.VisionPayload{
		Objects: []types.DetectedObject{
			{Label: "submit button", Confidence: 0.92, Rect: types.Rect{X: 10, Y: 20, W: 100, H: 40}},
		},
	}
}

func testImage() types.ImageData {
	return types.ImageData{Data: []byte{0x89, 'P', 'N', 'G'}, Format: "png", Width: 1200, Height: 800}
}

func TestNew(t *testing.T) {
	da := New(Options{})
	if da == nil {
		t.Fatal("New() returned nil")
	}

	if da.aggregator == nil {
		t.Error("aggregator component is nil")
	}

	if da.builder == nil {
		t.Error("builder component is nil")
	}

	if da.logger == nil {
		t.Error("logger is nil")
	}
}

func TestDesignToCodeSubmitButton(t *testing.T) {
	da := New(Options{
		Detector: adapter.StaticDetector{Payload: submitButtonPayload()},
		Layout:   adapter.StaticLayout{Err: errors.New("layout offline")},
		Model:    adapter.StaticModel{Content: `{"intent":"login form","components":[],"relationships":[],"suggestions":[]}`},
	})

	report, err := da.DesignToCode(context.Background(), testImage(), "react")
	if err != nil {
		t.Fatalf("DesignToCode() error = %v", err)
	}

	if len(report.Components) != 1 {
		t.Fatalf("Expected 1 component, got %d", len(report.Components))
	}
	c := report.Components[0]
	if c.Type != types.KindButton {
		t.Errorf("Expected button, got %s", c.Type)
	}
	if c.Name != "button1" {
		t.Errorf("Expected name button1, got %s", c.Name)
	}
	if c.Styles["backgroundColor"] != "#007bff" {
		t.Errorf("Expected default button background, got %s", c.Styles["backgroundColor"])
	}

	src, ok := report.Sources[types.FrameworkReact]
	if !ok {
		t.Fatal("Expected a react source")
	}
	if src.FileName != "GeneratedComponent.tsx" {
		t.Errorf("Unexpected file name %s", src.FileName)
	}
	for _, want := range []string{"<button style={{", "backgroundColor", "borderRadius", `color: "white"`} {
		if !strings.Contains(src.Code, want) {
			t.Errorf("Expected generated code to contain %q:\n%s", want, src.Code)
		}
	}

	if report.Analysis.Layout.Confidence != 0.1 {
		t.Errorf("Expected degraded layout confidence 0.1, got %v", report.Analysis.Layout.Confidence)
	}
	if report.Analysis.Semantic.Intent != "login form" {
		t.Errorf("Unexpected intent %q", report.Analysis.Semantic.Intent)
	}
	if report.Analysis.Metadata.Dimensions.Width != 1200 {
		t.Errorf("Unexpected metadata width %d", report.Analysis.Metadata.Dimensions.Width)
	}
}

func TestDesignToCodeUnsupportedFrameworkSkipsAnalysis(t *testing.T) {
	detector := &countingDetector{StaticDetector: adapter.StaticDetector{Payload: submitButtonPayload()}}
	da := New(Options{
		Detector: detector,
		Layout:   adapter.StaticLayout{},
		Model:    adapter.StaticModel{},
	})

	_, err := da.DesignToCode(context.Background(), testImage(), "react", "svelte")
	if !errors.Is(err, codegen.ErrUnsupportedFramework) {
		t.Fatalf("Expected ErrUnsupportedFramework, got %v", err)
	}
	if detector.calls != 0 {
		t.Errorf("Expected no vendor calls, got %d", detector.calls)
	}
}

func TestDesignToCodeAllFrameworks(t *testing.T) {
	da := New(Options{
		Detector: adapter.StaticDetector{Payload: submitButtonPayload()},
		Layout:   adapter.StaticLayout{},
		Model:    adapter.StaticModel{Content: "not json"},
		DesignSystem: builder.DesignSystem{
			Naming: map[string]string{"component": "LoginForm"},
		},
	})

	report, err := da.DesignToCode(context.Background(), testImage(), "react", "vue", "angular")
	if err != nil {
		t.Fatalf("DesignToCode() error = %v", err)
	}
	if len(report.Sources) != 3 {
		t.Fatalf("Expected 3 sources, got %d", len(report.Sources))
	}
	if got := report.Sources[types.FrameworkVue].FileName; got != "LoginForm.vue" {
		t.Errorf("Unexpected vue file name %s", got)
	}
	if got := report.Sources[types.FrameworkAngular].FileName; got != "LoginForm.component.ts" {
		t.Errorf("Unexpected angular file name %s", got)
	}
	if report.Analysis.Semantic.Confidence != 0.3 {
		t.Errorf("Expected parse failure confidence 0.3, got %v", report.Analysis.Semantic.Confidence)
	}
}

func TestGenerateCodeUnsupportedFramework(t *testing.T) {
	da := New(Options{})
	_, err := da.GenerateCode(types.DesignAnalysisResult{}, "svelte")
	if !errors.Is(err, codegen.ErrUnsupportedFramework) {
		t.Errorf("Expected ErrUnsupportedFramework, got %v", err)
	}
}

func TestAnalyzeDesignWithoutAdapters(t *testing.T) {
	da := New(Options{})
	_, err := da.AnalyzeDesign(context.Background(), testImage())
	if err == nil {
		t.Error("Expected an error when no adapters are configured")
	}
}

func TestGetVersion(t *testing.T) {
	version := GetVersion()
	if version == "" {
		t.Error("GetVersion() returned empty string")
	}

	if version != Version {
		t.Errorf("GetVersion() = %s, want %s", version, Version)
	}
}
