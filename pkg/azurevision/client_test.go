package azurevision

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/menta2k/design-analyzer/pkg/adapter"
	"github.com/menta2k/design-analyzer/pkg/types"
)

const analyzeBody = `{
  "tags": [{"name": "screenshot", "confidence": 0.99}, {"name": "", "confidence": 0.1}],
  "color": {
    "dominantColorForeground": "White",
    "dominantColorBackground": "Black",
    "dominantColors": ["Black", "White"],
    "accentColor": "B74314",
    "isBwImg": false
  },
  "objects": [
    {"rectangle": {"x": 10, "y": 20, "w": 100, "h": 40}, "object": "submit button", "confidence": 0.92},
    {"rectangle": {"x": 0, "y": 0, "w": 5, "h": 5}, "object": "", "confidence": 0.5}
  ],
  "metadata": {"width": 1200, "height": 800, "format": "Png"}
}`

func TestNewClientValidation(t *testing.T) {
	if _, err := NewClient("", "key"); err == nil {
		t.Error("Expected error for empty endpoint")
	}
	if _, err := NewClient("https://example.cognitiveservices.azure.com", " "); err == nil {
		t.Error("Expected error for empty key")
	}
}

func TestDetectObjects(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("Expected POST, got %s", r.Method)
		}
		if r.URL.Path != "/vision/v3.2/analyze" {
			t.Errorf("Unexpected path %s", r.URL.Path)
		}
		if got := r.URL.Query().Get("visualFeatures"); got != "Objects,Tags,Color,Categories" {
			t.Errorf("Unexpected features %s", got)
		}
		if r.Header.Get("Ocp-Apim-Subscription-Key") != "secret" {
			t.Error("Missing subscription key header")
		}
		if r.Header.Get("Content-Type") != "application/octet-stream" {
			t.Errorf("Unexpected content type %s", r.Header.Get("Content-Type"))
		}
		body, _ := io.ReadAll(r.Body)
		if string(body) != "PNGDATA" {
			t.Errorf("Unexpected body %q", body)
		}
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, analyzeBody)
	}))
	defer server.Close()

	client, err := NewClient(server.URL+"/", "secret")
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}

	res := client.DetectObjects(context.Background(), types.ImageData{Data: []byte("PNGDATA"), Format: "png"})
	if !res.OK() {
		t.Fatalf("DetectObjects() error = %v", res.Err)
	}

	p := res.Value
	if len(p.Objects) != 1 {
		t.Fatalf("Expected 1 object, got %d", len(p.Objects))
	}
	want := types.DetectedObject{Label: "submit button", Confidence: 0.92, Rect: types.Rect{X: 10, Y: 20, W: 100, H: 40}}
	if p.Objects[0] != want {
		t.Errorf("Unexpected object %+v", p.Objects[0])
	}
	if len(p.Tags) != 1 || p.Tags[0] != "screenshot" {
		t.Errorf("Unexpected tags %v", p.Tags)
	}
	if p.Color == nil || p.Color.Accent != "#B74314" || p.Color.DominantForeground != "White" {
		t.Errorf("Unexpected color %+v", p.Color)
	}
	if p.Width != 1200 || p.Height != 800 || p.Format != "png" {
		t.Errorf("Unexpected metadata %d x %d %s", p.Width, p.Height, p.Format)
	}
}

func TestDetectObjectsErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		io.WriteString(w, `{"error":{"code":"401","message":"Access denied due to invalid subscription key."}}`)
	}))
	defer server.Close()

	client, _ := NewClient(server.URL, "bad")
	res := client.DetectObjects(context.Background(), types.ImageData{Data: []byte{1}})
	if res.OK() {
		t.Fatal("Expected failure")
	}
	if !strings.Contains(res.Err.Error(), "Access denied") {
		t.Errorf("Expected vendor message in error, got %v", res.Err)
	}
}

func TestDetectObjectsEmptyImage(t *testing.T) {
	client, _ := NewClient("https://example.invalid", "key")
	res := client.DetectObjects(context.Background(), types.ImageData{})
	if res.Err != adapter.ErrEmptyImage {
		t.Errorf("Expected ErrEmptyImage, got %v", res.Err)
	}
}

func TestNormalizeHex(t *testing.T) {
	tests := map[string]string{
		"B74314":  "#B74314",
		"#B74314": "#B74314",
		"Grey":    "Grey",
		"":        "",
	}
	for in, want := range tests {
		if got := normalizeHex(in); got != want {
			t.Errorf("normalizeHex(%q) = %q, want %q", in, got, want)
		}
	}
}
