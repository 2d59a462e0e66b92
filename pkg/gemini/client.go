package gemini

import (
	"context"
	"errors"
	"fmt"

	genai "google.golang.org/genai"

	"github.com/menta2k/design-analyzer/pkg/adapter"
	"github.com/menta2k/design-analyzer/pkg/types"
)

const DefaultModel = "gemini-2.0-flash"

var ErrEmptyResponse = errors.New("gemini: empty response")

// Client is a thin wrapper around the official genai client.
type Client struct {
	cli         *genai.Client
	model       string
	temperature float32
	maxTokens   int32
}

func NewClient(ctx context.Context, apiKey, model string) (*Client, error) {
	return NewClientWithBaseURL(ctx, apiKey, model, "")
}

// NewClientWithBaseURL points the client at a Gemini API compatible endpoint;
// an empty baseURL keeps the public API.
func NewClientWithBaseURL(ctx context.Context, apiKey, model, baseURL string) (*Client, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini api key is required")
	}
	if model == "" {
		model = DefaultModel
	}
	cli, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:      apiKey,
		Backend:     genai.BackendGeminiAPI,
		HTTPOptions: genai.HTTPOptions{BaseURL: baseURL},
	})
	if err != nil {
		return nil, err
	}
	return &Client{cli: cli, model: model, temperature: 0.3, maxTokens: 1000}, nil
}

func (g *Client) Name() string { return "Gemini:" + g.model }

// Complete sends the prompt and inline image and requests application/json.
func (g *Client) Complete(ctx context.Context, prompt string, img types.ImageData) adapter.Result[string] {
	parts := []*genai.Part{{Text: prompt}}
	if len(img.Data) > 0 {
		parts = append(parts, &genai.Part{
			InlineData: &genai.Blob{MIMEType: img.MIMEType(), Data: img.Data},
		})
	}

	temp := g.temperature
	resp, err := g.cli.Models.GenerateContent(ctx, g.model,
		[]*genai.Content{{Role: "user", Parts: parts}},
		&genai.GenerateContentConfig{
			ResponseMIMEType: "application/json",
			Temperature:      &temp,
			MaxOutputTokens:  g.maxTokens,
		},
	)
	if err != nil {
		return adapter.Failed[string](fmt.Errorf("gemini generate: %w", err))
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return adapter.Failed[string](ErrEmptyResponse)
	}

	var out string
	for _, p := range resp.Candidates[0].Content.Parts {
		out += p.Text
	}
	return adapter.Succeeded(out)
}
