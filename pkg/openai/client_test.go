package openai

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/menta2k/design-analyzer/pkg/types"
)

const completionBody = `{"id":"chatcmpl-1","model":"gpt-4o","choices":[{"index":0,"message":{"role":"assistant","content":"{\"intent\":\"login\"}"},"finish_reason":"stop"}]}`

func TestNewClientDefaults(t *testing.T) {
	c, err := NewClient(Config{APIKey: "k"})
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}
	if c.baseURL != DefaultBaseURL || c.cfg.Model != DefaultModel || c.cfg.MaxTokens != 1000 {
		t.Errorf("Unexpected defaults %+v", c.cfg)
	}

	if _, err := NewClient(Config{Azure: true, APIKey: "k"}); err == nil {
		t.Error("Expected error for azure without endpoint")
	}
}

func TestCompleteOpenAI(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" {
			t.Errorf("Unexpected path %s", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer sk-test" {
			t.Errorf("Unexpected auth header %q", r.Header.Get("Authorization"))
		}

		var req struct {
			Model    string `json:"model"`
			Messages []struct {
				Content []ContentPart `json:"content"`
			} `json:"messages"`
			MaxTokens int `json:"max_tokens"`
		}
		body, _ := io.ReadAll(r.Body)
		if err := json.Unmarshal(body, &req); err != nil {
			t.Errorf("Bad request body: %v", err)
			return
		}
		if req.Model != "gpt-4o" {
			t.Errorf("Unexpected model %s", req.Model)
		}
		if req.MaxTokens != 1000 {
			t.Errorf("Unexpected max tokens %d", req.MaxTokens)
		}
		parts := req.Messages[0].Content
		if len(parts) != 2 || parts[0].Text != "describe" {
			t.Errorf("Unexpected content parts %+v", parts)
			return
		}
		if parts[1].ImageURL == nil || !strings.HasPrefix(parts[1].ImageURL.URL, "data:image/jpeg;base64,") {
			t.Errorf("Expected jpeg data URL, got %+v", parts[1].ImageURL)
		}

		io.WriteString(w, completionBody)
	}))
	defer server.Close()

	client, _ := NewClient(Config{BaseURL: server.URL, APIKey: "sk-test", Model: "gpt-4o"})
	res := client.Complete(context.Background(), "describe", types.ImageData{Data: []byte{0xff, 0xd8}, Format: "jpg"})
	if !res.OK() {
		t.Fatalf("Complete() error = %v", res.Err)
	}
	if res.Value != `{"intent":"login"}` {
		t.Errorf("Unexpected content %q", res.Value)
	}
}

func TestCompleteAzure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/openai/deployments/vision-deploy/chat/completions" {
			t.Errorf("Unexpected path %s", r.URL.Path)
		}
		if got := r.URL.Query().Get("api-version"); got != DefaultAPIVersion {
			t.Errorf("Unexpected api version %s", got)
		}
		if r.Header.Get("api-key") != "azure-key" {
			t.Errorf("Unexpected api-key header %q", r.Header.Get("api-key"))
		}
		if r.Header.Get("Authorization") != "" {
			t.Error("Azure requests should not send a bearer token")
		}

		var req map[string]any
		body, _ := io.ReadAll(r.Body)
		json.Unmarshal(body, &req)
		if _, ok := req["model"]; ok {
			t.Error("Azure requests should not carry a model field")
		}

		io.WriteString(w, completionBody)
	}))
	defer server.Close()

	client, err := NewClient(Config{BaseURL: server.URL, APIKey: "azure-key", Model: "vision-deploy", Azure: true})
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}
	res := client.Complete(context.Background(), "describe", types.ImageData{Data: []byte{1}})
	if !res.OK() {
		t.Fatalf("Complete() error = %v", res.Err)
	}
}

func TestCompleteErrors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{"rate limited", http.StatusTooManyRequests, `{"error":{"message":"slow down"}}`},
		{"no choices", http.StatusOK, `{"choices":[]}`},
		{"bad json", http.StatusOK, `not json`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				io.WriteString(w, tt.body)
			}))
			defer server.Close()

			client, _ := NewClient(Config{BaseURL: server.URL})
			if res := client.Complete(context.Background(), "p", types.ImageData{}); res.OK() {
				t.Error("Expected failure")
			}
		})
	}
}

func TestMessageText(t *testing.T) {
	if got := messageText(Message{Content: "plain"}); got != "plain" {
		t.Errorf("Unexpected text %q", got)
	}
	parts := []interface{}{
		map[string]interface{}{"type": "image_url"},
		map[string]interface{}{"type": "text", "text": "from parts"},
	}
	if got := messageText(Message{Content: parts}); got != "from parts" {
		t.Errorf("Unexpected text %q", got)
	}
}
