package ollama

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/ollama/ollama/api"

	"github.com/menta2k/design-analyzer/pkg/adapter"
	"github.com/menta2k/design-analyzer/pkg/types"
)

// Client wraps the Ollama API client
type Client struct {
	client  *api.Client
	model   string
	options map[string]any
}

// NewClient creates a new Ollama client for the given model
func NewClient(ollamaURL, model string) (*Client, error) {
	if model == "" {
		return nil, fmt.Errorf("ollama model is required")
	}

	// Parse the provided URL
	parsedURL, err := url.Parse(ollamaURL)
	if err != nil {
		return nil, fmt.Errorf("invalid URL: %w", err)
	}
	if parsedURL.Scheme == "" || parsedURL.Host == "" {
		return nil, fmt.Errorf("invalid URL: %q", ollamaURL)
	}

	// Create base URL from the provided URL (removing path like /api/chat)
	baseURL := &url.URL{
		Scheme: parsedURL.Scheme,
		Host:   parsedURL.Host,
	}

	return &Client{
		client:  api.NewClient(baseURL, http.DefaultClient),
		model:   model,
		options: modelOptions(model),
	}, nil
}

// Model returns the configured model name
func (c *Client) Model() string {
	return c.model
}

// Complete sends the prompt with the image and returns the model's answer
func (c *Client) Complete(ctx context.Context, prompt string, img types.ImageData) adapter.Result[string] {
	msg := api.Message{
		Role:    "user",
		Content: prompt,
	}
	if len(img.Data) > 0 {
		msg.Images = []api.ImageData{api.ImageData(img.Data)}
	}

	streamFalse := false
	req := &api.ChatRequest{
		Model:    c.model,
		Messages: []api.Message{msg},
		Stream:   &streamFalse,
		Options:  c.options,
		// No Format field - let the prompt guide the format
	}

	var responseContent string
	err := c.client.Chat(ctx, req, func(resp api.ChatResponse) error {
		responseContent += resp.Message.Content
		return nil
	})
	if err != nil {
		return adapter.Failed[string](fmt.Errorf("ollama chat error: %w", err))
	}

	return adapter.Succeeded(responseContent)
}

// modelOptions returns sampling parameters tuned for structured answers
func modelOptions(model string) map[string]any {
	options := map[string]any{
		"temperature": 0.3,
	}

	modelLower := strings.ToLower(model)
	if strings.Contains(modelLower, "minicpm-v4") ||
		strings.Contains(modelLower, "minicpm-v-4") ||
		strings.Contains(modelLower, "minicpmv4") {
		options["top_p"] = 0.8
		options["num_ctx"] = 4096
	}
	return options
}
