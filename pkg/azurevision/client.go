// Package azurevision adapts the Azure Computer Vision "analyze" API to the
// adapter.ObjectDetector contract.
package azurevision

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/menta2k/design-analyzer/pkg/adapter"
	"github.com/menta2k/design-analyzer/pkg/types"
)

const (
	analyzePath     = "/vision/v3.2/analyze"
	defaultFeatures = "Objects,Tags,Color,Categories"
)

var hexColor = regexp.MustCompile(`^[0-9A-Fa-f]{6}$`)

// Client calls the Computer Vision REST API
type Client struct {
	endpoint   string
	key        string
	httpClient *http.Client
}

type analyzeResponse struct {
	Tags []struct {
		Name       string  `json:"name"`
		Confidence float64 `json:"confidence"`
	} `json:"tags"`
	Color *struct {
		DominantColorForeground string   `json:"dominantColorForeground"`
		DominantColorBackground string   `json:"dominantColorBackground"`
		DominantColors          []string `json:"dominantColors"`
		AccentColor             string   `json:"accentColor"`
		IsBWImg                 bool     `json:"isBwImg"`
	} `json:"color"`
	Objects []struct {
		Rectangle struct {
			X float64 `json:"x"`
			Y float64 `json:"y"`
			W float64 `json:"w"`
			H float64 `json:"h"`
		} `json:"rectangle"`
		Object     string  `json:"object"`
		Confidence float64 `json:"confidence"`
	} `json:"objects"`
	Metadata struct {
		Width  int    `json:"width"`
		Height int    `json:"height"`
		Format string `json:"format"`
	} `json:"metadata"`
}

type errorResponse struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// NewClient creates a Computer Vision client for the given resource endpoint
func NewClient(endpoint, key string) (*Client, error) {
	endpoint = strings.TrimSpace(endpoint)
	if endpoint == "" {
		return nil, fmt.Errorf("computer vision endpoint is required")
	}
	if strings.TrimSpace(key) == "" {
		return nil, fmt.Errorf("computer vision key is required")
	}
	return &Client{
		endpoint:   strings.TrimSuffix(endpoint, "/"),
		key:        key,
		httpClient: &http.Client{Timeout: 60 * time.Second},
	}, nil
}

// DetectObjects runs object, tag and color analysis on the image
func (c *Client) DetectObjects(ctx context.Context, img types.ImageData) adapter.Result[adapter.VisionPayload] {
	if len(img.Data) == 0 {
		return adapter.Failed[adapter.VisionPayload](adapter.ErrEmptyImage)
	}

	url := c.endpoint + analyzePath + "?visualFeatures=" + defaultFeatures
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(img.Data))
	if err != nil {
		return adapter.Failed[adapter.VisionPayload](fmt.Errorf("failed to create request: %w", err))
	}
	req.Header.Set("Content-Type", "application/octet-stream")
	req.Header.Set("Ocp-Apim-Subscription-Key", c.key)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return adapter.Failed[adapter.VisionPayload](fmt.Errorf("failed to send request: %w", err))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return adapter.Failed[adapter.VisionPayload](fmt.Errorf("failed to read response: %w", err))
	}
	if resp.StatusCode != http.StatusOK {
		return adapter.Failed[adapter.VisionPayload](statusError(resp.StatusCode, body))
	}

	var parsed analyzeResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return adapter.Failed[adapter.VisionPayload](fmt.Errorf("failed to parse response: %w", err))
	}
	return adapter.Succeeded(toPayload(parsed))
}

func toPayload(r analyzeResponse) adapter.VisionPayload {
	p := adapter.VisionPayload{
		Objects: make([]types.DetectedObject, 0, len(r.Objects)),
		Tags:    make([]string, 0, len(r.Tags)),
		Width:   r.Metadata.Width,
		Height:  r.Metadata.Height,
		Format:  strings.ToLower(r.Metadata.Format),
	}
	for _, o := range r.Objects {
		if strings.TrimSpace(o.Object) == "" {
			continue
		}
		p.Objects = append(p.Objects, types.DetectedObject{
			Label:      o.Object,
			Confidence: o.Confidence,
			Rect:       types.Rect{X: o.Rectangle.X, Y: o.Rectangle.Y, W: o.Rectangle.W, H: o.Rectangle.H},
		})
	}
	for _, t := range r.Tags {
		if t.Name != "" {
			p.Tags = append(p.Tags, t.Name)
		}
	}
	if r.Color != nil {
		p.Color = &adapter.ColorInfo{
			DominantForeground: r.Color.DominantColorForeground,
			DominantBackground: r.Color.DominantColorBackground,
			Accent:             normalizeHex(r.Color.AccentColor),
			DominantColors:     r.Color.DominantColors,
			IsBlackAndWhite:    r.Color.IsBWImg,
		}
	}
	return p
}

// normalizeHex prefixes bare RRGGBB values with '#'
func normalizeHex(c string) string {
	c = strings.TrimSpace(c)
	if hexColor.MatchString(c) {
		return "#" + c
	}
	return c
}

func statusError(status int, body []byte) error {
	var e errorResponse
	if err := json.Unmarshal(body, &e); err == nil && e.Error.Message != "" {
		return fmt.Errorf("computer vision returned status %d (%s): %s", status, e.Error.Code, e.Error.Message)
	}
	return fmt.Errorf("computer vision returned status %d: %s", status, string(body))
}
