package ollama

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/menta2k/design-analyzer/pkg/types"
)

func TestNewClientValidation(t *testing.T) {
	if _, err := NewClient("http://localhost:11434", ""); err == nil {
		t.Error("Expected error for empty model")
	}
	if _, err := NewClient("localhost", "llava"); err == nil {
		t.Error("Expected error for URL without scheme")
	}

	c, err := NewClient("http://localhost:11434/api/chat", "llava")
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}
	if c.Model() != "llava" {
		t.Errorf("Unexpected model %s", c.Model())
	}
}

func TestModelOptions(t *testing.T) {
	opts := modelOptions("llava:13b")
	if opts["temperature"] != 0.3 {
		t.Errorf("Unexpected temperature %v", opts["temperature"])
	}
	if _, ok := opts["num_ctx"]; ok {
		t.Error("Generic models should not set num_ctx")
	}

	opts = modelOptions("openbmb/MiniCPM-V4")
	if opts["num_ctx"] != 4096 {
		t.Errorf("Expected num_ctx for minicpm, got %v", opts["num_ctx"])
	}
}

func TestComplete(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/chat" {
			t.Errorf("Unexpected path %s", r.URL.Path)
		}
		var req struct {
			Model    string `json:"model"`
			Stream   *bool  `json:"stream"`
			Messages []struct {
				Content string   `json:"content"`
				Images  []string `json:"images"`
			} `json:"messages"`
		}
		body, _ := io.ReadAll(r.Body)
		if err := json.Unmarshal(body, &req); err != nil {
			t.Errorf("Bad request body: %v", err)
			return
		}
		if req.Model != "llava" {
			t.Errorf("Unexpected model %s", req.Model)
		}
		if req.Stream == nil || *req.Stream {
			t.Error("Expected stream=false")
		}
		if len(req.Messages) != 1 || len(req.Messages[0].Images) != 1 {
			t.Errorf("Expected one message with one image, got %+v", req.Messages)
		}

		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"model":"llava","message":{"role":"assistant","content":"{\"intent\":\"dashboard\"}"},"done":true}`+"\n")
	}))
	defer server.Close()

	c, err := NewClient(server.URL, "llava")
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}
	res := c.Complete(context.Background(), "describe", types.ImageData{Data: []byte{1, 2, 3}})
	if !res.OK() {
		t.Fatalf("Complete() error = %v", res.Err)
	}
	if res.Value != `{"intent":"dashboard"}` {
		t.Errorf("Unexpected content %q", res.Value)
	}
}
