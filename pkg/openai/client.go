package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/menta2k/design-analyzer/pkg/adapter"
	"github.com/menta2k/design-analyzer/pkg/types"
)

const (
	DefaultBaseURL    = "https://api.openai.com"
	DefaultAPIVersion = "2024-02-15-preview"
	DefaultModel      = "gpt-4-vision-preview"
)

// Config selects an OpenAI-compatible chat completion endpoint.
// With Azure set, Model is the deployment name and BaseURL the resource endpoint.
type Config struct {
	BaseURL     string
	APIKey      string
	Model       string
	Azure       bool
	APIVersion  string
	MaxTokens   int
	Temperature float64
	Timeout     time.Duration
}

// Client talks to OpenAI, Azure OpenAI or a llama.cpp server
type Client struct {
	cfg        Config
	baseURL    string
	httpClient *http.Client
}

// OpenAI-compatible message format
type Message struct {
	Role    string      `json:"role"`
	Content interface{} `json:"content"` // Can be string or []ContentPart
}

type ContentPart struct {
	Type     string    `json:"type"`
	Text     string    `json:"text,omitempty"`
	ImageURL *ImageURL `json:"image_url,omitempty"`
}

type ImageURL struct {
	URL string `json:"url"`
}

type ChatCompletionRequest struct {
	Model       string    `json:"model,omitempty"`
	Messages    []Message `json:"messages"`
	Temperature float64   `json:"temperature"`
	MaxTokens   int       `json:"max_tokens,omitempty"`
	Stream      bool      `json:"stream"`
}

type ChatCompletionResponse struct {
	ID      string   `json:"id"`
	Model   string   `json:"model"`
	Choices []Choice `json:"choices"`
	Usage   Usage    `json:"usage,omitempty"`
}

type Choice struct {
	Index        int     `json:"index"`
	Message      Message `json:"message"`
	FinishReason string  `json:"finish_reason,omitempty"`
}

type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// NewClient creates a chat completion client, filling in defaults
func NewClient(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		if cfg.Azure {
			return nil, fmt.Errorf("azure openai endpoint is required")
		}
		cfg.BaseURL = DefaultBaseURL
	}
	if _, err := url.Parse(cfg.BaseURL); err != nil {
		return nil, fmt.Errorf("invalid URL: %w", err)
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Azure && cfg.APIVersion == "" {
		cfg.APIVersion = DefaultAPIVersion
	}
	if cfg.MaxTokens == 0 {
		cfg.MaxTokens = 1000
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 5 * time.Minute
	}

	return &Client{
		cfg:     cfg,
		baseURL: strings.TrimSuffix(cfg.BaseURL, "/"),
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
	}, nil
}

// Complete sends the prompt and image and returns the first choice's text
func (c *Client) Complete(ctx context.Context, prompt string, img types.ImageData) adapter.Result[string] {
	content := []ContentPart{
		{
			Type: "text",
			Text: prompt,
		},
	}
	if len(img.Data) > 0 {
		content = append(content, ContentPart{
			Type:     "image_url",
			ImageURL: &ImageURL{URL: img.DataURL()},
		})
	}

	req := ChatCompletionRequest{
		Messages: []Message{
			{
				Role:    "user",
				Content: content,
			},
		},
		Temperature: c.cfg.Temperature,
		MaxTokens:   c.cfg.MaxTokens,
		Stream:      false,
	}
	if !c.cfg.Azure {
		req.Model = c.cfg.Model
	}

	respBody, err := c.sendRequest(ctx, c.endpoint(), req)
	if err != nil {
		return adapter.Failed[string](fmt.Errorf("request failed: %w", err))
	}

	var resp ChatCompletionResponse
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return adapter.Failed[string](fmt.Errorf("failed to parse response: %w", err))
	}

	if len(resp.Choices) == 0 {
		return adapter.Failed[string](fmt.Errorf("no choices in response"))
	}

	return adapter.Succeeded(messageText(resp.Choices[0].Message))
}

func (c *Client) endpoint() string {
	if c.cfg.Azure {
		return fmt.Sprintf("/openai/deployments/%s/chat/completions?api-version=%s",
			url.PathEscape(c.cfg.Model), url.QueryEscape(c.cfg.APIVersion))
	}
	return "/v1/chat/completions"
}

// messageText extracts text from a message (handles both string and array formats)
func messageText(m Message) string {
	switch content := m.Content.(type) {
	case string:
		return content
	case []interface{}:
		for _, item := range content {
			if partMap, ok := item.(map[string]interface{}); ok {
				if text, ok := partMap["text"].(string); ok && text != "" {
					return text
				}
			}
		}
	}
	return ""
}

func (c *Client) sendRequest(ctx context.Context, endpoint string, payload interface{}) ([]byte, error) {
	jsonData, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+endpoint, bytes.NewReader(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	if c.cfg.APIKey != "" {
		if c.cfg.Azure {
			req.Header.Set("api-key", c.cfg.APIKey)
		} else {
			req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
		}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("server returned status %d: %s", resp.StatusCode, string(body))
	}

	return body, nil
}
