// Package docintel adapts the Azure Form Recognizer (Document Intelligence)
// prebuilt-layout model to the adapter.LayoutReader contract.
package docintel

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/menta2k/design-analyzer/pkg/adapter"
	"github.com/menta2k/design-analyzer/pkg/types"
)

const (
	DefaultAPIVersion   = "2023-07-31"
	DefaultModel        = "prebuilt-layout"
	DefaultPollInterval = time.Second
	DefaultMaxPolls     = 120
)

// Config holds the Form Recognizer resource settings
type Config struct {
	Endpoint     string
	Key          string
	APIVersion   string
	Model        string
	PollInterval time.Duration
	// MaxPolls bounds how long a running operation is awaited
	MaxPolls int
}

// Client starts layout analyses and polls them until done
type Client struct {
	cfg        Config
	endpoint   string
	httpClient *http.Client
}

type operationResponse struct {
	Status        string `json:"status"`
	AnalyzeResult *struct {
		Pages []struct {
			PageNumber int     `json:"pageNumber"`
			Width      float64 `json:"width"`
			Height     float64 `json:"height"`
			Unit       string  `json:"unit"`
			Lines      []struct {
				Content string    `json:"content"`
				Polygon []float64 `json:"polygon"`
			} `json:"lines"`
		} `json:"pages"`
	} `json:"analyzeResult"`
	Error *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// NewClient creates a layout client, filling in defaults
func NewClient(cfg Config) (*Client, error) {
	cfg.Endpoint = strings.TrimSpace(cfg.Endpoint)
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("form recognizer endpoint is required")
	}
	if strings.TrimSpace(cfg.Key) == "" {
		return nil, fmt.Errorf("form recognizer key is required")
	}
	if cfg.APIVersion == "" {
		cfg.APIVersion = DefaultAPIVersion
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = DefaultPollInterval
	}
	if cfg.MaxPolls <= 0 {
		cfg.MaxPolls = DefaultMaxPolls
	}
	return &Client{
		cfg:        cfg,
		endpoint:   strings.TrimSuffix(cfg.Endpoint, "/"),
		httpClient: &http.Client{Timeout: 60 * time.Second},
	}, nil
}

// ReadLayout submits the image and waits for the layout result
func (c *Client) ReadLayout(ctx context.Context, img types.ImageData) adapter.Result[adapter.LayoutPayload] {
	if len(img.Data) == 0 {
		return adapter.Failed[adapter.LayoutPayload](adapter.ErrEmptyImage)
	}

	opURL, err := c.begin(ctx, img)
	if err != nil {
		return adapter.Failed[adapter.LayoutPayload](err)
	}

	op, err := c.pollUntilDone(ctx, opURL)
	if err != nil {
		return adapter.Failed[adapter.LayoutPayload](err)
	}
	return adapter.Succeeded(toPayload(op))
}

func (c *Client) begin(ctx context.Context, img types.ImageData) (string, error) {
	url := fmt.Sprintf("%s/formrecognizer/documentModels/%s:analyze?api-version=%s", c.endpoint, c.cfg.Model, c.cfg.APIVersion)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(img.Data))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/octet-stream")
	req.Header.Set("Ocp-Apim-Subscription-Key", c.cfg.Key)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusAccepted {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("form recognizer returned status %d: %s", resp.StatusCode, string(body))
	}
	opURL := resp.Header.Get("Operation-Location")
	if opURL == "" {
		return "", fmt.Errorf("form recognizer response has no Operation-Location header")
	}
	return opURL, nil
}

func (c *Client) pollUntilDone(ctx context.Context, opURL string) (operationResponse, error) {
	ticker := time.NewTicker(c.cfg.PollInterval)
	defer ticker.Stop()

	for polls := 1; ; polls++ {
		op, err := c.poll(ctx, opURL)
		if err != nil {
			return operationResponse{}, err
		}
		switch strings.ToLower(op.Status) {
		case "succeeded":
			return op, nil
		case "failed", "canceled":
			if op.Error != nil {
				return operationResponse{}, fmt.Errorf("layout analysis %s (%s): %s", op.Status, op.Error.Code, op.Error.Message)
			}
			return operationResponse{}, fmt.Errorf("layout analysis %s", op.Status)
		}
		if polls >= c.cfg.MaxPolls {
			return operationResponse{}, fmt.Errorf("layout analysis still %s after %d polls", op.Status, polls)
		}

		select {
		case <-ctx.Done():
			return operationResponse{}, ctx.Err()
		case <-ticker.C:
		}
	}
}

func (c *Client) poll(ctx context.Context, opURL string) (operationResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, opURL, nil)
	if err != nil {
		return operationResponse{}, fmt.Errorf("failed to create poll request: %w", err)
	}
	req.Header.Set("Ocp-Apim-Subscription-Key", c.cfg.Key)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return operationResponse{}, fmt.Errorf("failed to poll operation: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return operationResponse{}, fmt.Errorf("failed to read poll response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return operationResponse{}, fmt.Errorf("form recognizer poll returned status %d: %s", resp.StatusCode, string(body))
	}

	var op operationResponse
	if err := json.Unmarshal(body, &op); err != nil {
		return operationResponse{}, fmt.Errorf("failed to parse poll response: %w", err)
	}
	return op, nil
}

func toPayload(op operationResponse) adapter.LayoutPayload {
	var p adapter.LayoutPayload
	if op.AnalyzeResult == nil {
		return p
	}
	for _, page := range op.AnalyzeResult.Pages {
		lp := adapter.LayoutPage{
			Number: page.PageNumber,
			Width:  page.Width,
			Height: page.Height,
			Unit:   page.Unit,
		}
		if page.Lines != nil {
			lp.Lines = make([]types.TextRegion, 0, len(page.Lines))
		}
		for _, line := range page.Lines {
			poly := toPoints(line.Polygon)
			if len(poly) == 0 {
				continue
			}
			lp.Lines = append(lp.Lines, types.TextRegion{
				Content: line.Content,
				Polygon: poly,
			})
		}
		p.Pages = append(p.Pages, lp)
	}
	return p
}

// toPoints converts a flat [x1, y1, x2, y2, ...] polygon into points
func toPoints(flat []float64) []types.Point {
	pts := make([]types.Point, 0, len(flat)/2)
	for i := 0; i+1 < len(flat); i += 2 {
		pts = append(pts, types.Point{X: flat[i], Y: flat[i+1]})
	}
	return pts
}
