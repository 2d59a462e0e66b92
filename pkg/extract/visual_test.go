package extract

import (
	"context"
	"errors"
	"testing"

	"github.com/menta2k/design-analyzer/pkg/adapter"
	"github.com/menta2k/design-analyzer/pkg/types"
)

func TestButtonSize(t *testing.T) {
	tests := []struct {
		height float64
		want   string
	}{
		{10, "small"},
		{29, "small"},
		{29.9, "small"},
		{30, "medium"},
		{44, "medium"},
		{45, "large"},
		{120, "large"},
	}

	for _, tt := range tests {
		if got := ButtonSize(tt.height); got != tt.want {
			t.Errorf("ButtonSize(%v) = %s, want %s", tt.height, got, tt.want)
		}
	}
}

func TestTextSize(t *testing.T) {
	tests := []struct {
		height float64
		want   string
	}{
		{13, "small"},
		{14, "body"},
		{17, "body"},
		{18, "subtitle"},
		{23, "subtitle"},
		{24, "heading"},
	}

	for _, tt := range tests {
		if got := TextSize(tt.height); got != tt.want {
			t.Errorf("TextSize(%v) = %s, want %s", tt.height, got, tt.want)
		}
	}
}

func TestInferElementKind(t *testing.T) {
	tests := []struct {
		label string
		want  types.ElementKind
	}{
		{"submit button", types.KindButton},
		{"Button", types.KindButton},
		{"text block", types.KindText},
		{"search field", types.KindInput},
		{"input", types.KindInput},
		{"profile picture", types.KindImage},
		{"settings icon", types.KindIcon},
		{"dropdown menu", types.KindNavigation},
		{"navigation bar", types.KindNavigation},
		{"product card", types.KindCard},
		{"box", types.KindContainer},
		{"form", types.KindUnknown},
		{"person", types.KindUnknown},
	}

	for _, tt := range tests {
		if got := InferElementKind(tt.label); got != tt.want {
			t.Errorf("InferElementKind(%q) = %s, want %s", tt.label, got, tt.want)
		}
	}
}

func TestIsUIElement(t *testing.T) {
	if !IsUIElement("Submit Button") {
		t.Error("Expected button to be a UI element")
	}
	if !IsUIElement("login form") {
		t.Error("Expected form to be a UI element")
	}
	if IsUIElement("person") {
		t.Error("Expected person not to be a UI element")
	}
}

func TestInferProperties(t *testing.T) {
	props := InferProperties(types.KindButton, types.Rect{X: 10, Y: 20, W: 100, H: 40})
	if props["size"] != "medium" {
		t.Errorf("Expected medium button, got %v", props["size"])
	}
	if props["style"] != "wide" {
		t.Errorf("Expected wide button, got %v", props["style"])
	}
	if props["aspectRatio"] != 2.5 {
		t.Errorf("Expected aspect ratio 2.5, got %v", props["aspectRatio"])
	}

	props = InferProperties(types.KindText, types.Rect{W: 400, H: 20})
	if props["type"] != "heading" {
		t.Errorf("Expected heading text, got %v", props["type"])
	}
	if props["size"] != "subtitle" {
		t.Errorf("Expected subtitle size, got %v", props["size"])
	}

	props = InferProperties(types.KindInput, types.Rect{W: 100, H: 50})
	if props["type"] != "textarea" {
		t.Errorf("Expected textarea input, got %v", props["type"])
	}

	props = InferProperties(types.KindIcon, types.Rect{W: 10, H: 0})
	if props["aspectRatio"] != 0.0 {
		t.Errorf("Expected zero aspect ratio for degenerate box, got %v", props["aspectRatio"])
	}
	if _, ok := props["size"]; ok {
		t.Error("Icons should not get a size")
	}
}

func TestVisualExtract(t *testing.T) {
	detector := adapter.StaticDetector{Payload: adapter.VisionPayload{
		Objects: []types.DetectedObject{
			{Label: "submit button", Confidence: 0.92, Rect: types.Rect{X: 10, Y: 20, W: 100, H: 40}},
			{Label: "person", Confidence: 0.8, Rect: types.Rect{X: 0, Y: 0, W: 50, H: 50}},
			{Label: "heading text", Confidence: 1.4, Rect: types.Rect{X: 0, Y: 0, W: 300, H: 24}},
		},
		Color: &adapter.ColorInfo{DominantForeground: "White", DominantBackground: "Black", Accent: "#B74314"},
		Tags:  []string{"screenshot"},
	}}

	visual, err := NewVisual(detector, nil).Extract(context.Background(), types.ImageData{Data: []byte{1}})
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}

	if visual.Confidence != VisualConfidence {
		t.Errorf("Expected confidence %v, got %v", VisualConfidence, visual.Confidence)
	}
	if len(visual.Objects) != 3 {
		t.Errorf("Expected all 3 objects kept, got %d", len(visual.Objects))
	}
	if len(visual.UI.Elements) != 2 {
		t.Fatalf("Expected 2 UI elements, got %d", len(visual.UI.Elements))
	}
	if visual.UI.Elements[0].Type != types.KindButton || visual.UI.Elements[1].Type != types.KindText {
		t.Errorf("Unexpected element order: %s, %s", visual.UI.Elements[0].Type, visual.UI.Elements[1].Type)
	}
	if visual.UI.Elements[1].Confidence != 1 {
		t.Errorf("Expected confidence clamped to 1, got %v", visual.UI.Elements[1].Confidence)
	}
	if visual.UI.ColorScheme == nil || visual.UI.ColorScheme.Accent != "#B74314" {
		t.Errorf("Unexpected color scheme %+v", visual.UI.ColorScheme)
	}
}

func TestVisualExtractDegradesOnFailure(t *testing.T) {
	detector := adapter.StaticDetector{Err: errors.New("401 unauthorized")}

	visual, err := NewVisual(detector, nil).Extract(context.Background(), types.ImageData{})
	if err != nil {
		t.Fatalf("Expected no error on adapter failure, got %v", err)
	}
	if visual.Confidence != DegradedConfidence {
		t.Errorf("Expected confidence 0.1, got %v", visual.Confidence)
	}
	if len(visual.UI.Elements) != 0 || len(visual.Objects) != 0 {
		t.Error("Expected no elements or objects")
	}
	if len(visual.Tags) != 2 || visual.Tags[0] != "interface" || visual.Tags[1] != "design" {
		t.Errorf("Unexpected default tags %v", visual.Tags)
	}
}

func TestVisualExtractWithoutDetector(t *testing.T) {
	_, err := NewVisual(nil, nil).Extract(context.Background(), types.ImageData{})
	if !errors.Is(err, ErrNoDetector) {
		t.Errorf("Expected ErrNoDetector, got %v", err)
	}
}
