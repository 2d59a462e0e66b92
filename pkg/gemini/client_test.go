package gemini

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/menta2k/design-analyzer/pkg/types"
)

const generatePath = "/v1beta/models/" + DefaultModel + ":generateContent"

func TestNewClientRequiresKey(t *testing.T) {
	if _, err := NewClient(context.Background(), "", ""); err == nil {
		t.Error("Expected error for empty api key")
	}
}

func TestNewClientDefaultModel(t *testing.T) {
	c, err := NewClient(context.Background(), "test-key", "")
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}
	if c.Name() != "Gemini:"+DefaultModel {
		t.Errorf("Unexpected name %s", c.Name())
	}
}

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	c, err := NewClientWithBaseURL(context.Background(), "test-key", "", server.URL)
	if err != nil {
		t.Fatalf("NewClientWithBaseURL() error = %v", err)
	}
	return c
}

func TestComplete(t *testing.T) {
	png := []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n', 0, 0}

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != generatePath {
			t.Errorf("Unexpected path %s", r.URL.Path)
		}
		if r.Header.Get("x-goog-api-key") != "test-key" {
			t.Errorf("Unexpected api key header %q", r.Header.Get("x-goog-api-key"))
		}

		var req struct {
			Contents []struct {
				Role  string `json:"role"`
				Parts []struct {
					Text       string `json:"text"`
					InlineData *struct {
						MIMEType string `json:"mimeType"`
						Data     string `json:"data"`
					} `json:"inlineData"`
				} `json:"parts"`
			} `json:"contents"`
			GenerationConfig struct {
				ResponseMIMEType string  `json:"responseMimeType"`
				Temperature      float64 `json:"temperature"`
				MaxOutputTokens  int     `json:"maxOutputTokens"`
			} `json:"generationConfig"`
		}
		body, _ := io.ReadAll(r.Body)
		if err := json.Unmarshal(body, &req); err != nil {
			t.Errorf("Bad request body: %v", err)
			return
		}
		if len(req.Contents) != 1 || len(req.Contents[0].Parts) != 2 {
			t.Errorf("Unexpected contents %s", body)
			return
		}
		parts := req.Contents[0].Parts
		if parts[0].Text != "describe" {
			t.Errorf("Unexpected prompt part %+v", parts[0])
		}
		inline := parts[1].InlineData
		if inline == nil || inline.MIMEType != "image/png" || inline.Data != base64.StdEncoding.EncodeToString(png) {
			t.Errorf("Unexpected image part %s", body)
		}

		gc := req.GenerationConfig
		if gc.ResponseMIMEType != "application/json" {
			t.Errorf("Unexpected response mime type %q", gc.ResponseMIMEType)
		}
		if gc.Temperature < 0.29 || gc.Temperature > 0.31 {
			t.Errorf("Unexpected temperature %v", gc.Temperature)
		}
		if gc.MaxOutputTokens != 1000 {
			t.Errorf("Unexpected max output tokens %d", gc.MaxOutputTokens)
		}

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"candidates":[{"content":{"role":"model","parts":[{"text":"{\"intent\":"},{"text":"\"login\"}"}]}}]}`))
	})

	res := c.Complete(context.Background(), "describe", types.ImageData{Data: png, Format: "png"})
	if !res.OK() {
		t.Fatalf("Complete() failed: %v", res.Err)
	}
	if res.Value != `{"intent":"login"}` {
		t.Errorf("Expected joined parts, got %q", res.Value)
	}
}

func TestCompleteEmptyCandidates(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"candidates":[]}`))
	})

	res := c.Complete(context.Background(), "describe", types.ImageData{})
	if res.OK() {
		t.Fatal("Expected failure for empty candidates")
	}
	if !errors.Is(res.Err, ErrEmptyResponse) {
		t.Errorf("Expected ErrEmptyResponse, got %v", res.Err)
	}
}

func TestCompleteServerError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":{"code":500,"message":"backend unavailable","status":"INTERNAL"}}`))
	})

	res := c.Complete(context.Background(), "describe", types.ImageData{})
	if res.OK() {
		t.Fatal("Expected failure for 500 response")
	}
	if res.Err == nil || errors.Is(res.Err, ErrEmptyResponse) {
		t.Errorf("Expected transport error, got %v", res.Err)
	}
}
