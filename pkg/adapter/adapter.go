// Package adapter defines the contracts between vendor AI services and the
// analysis pipeline. Every vendor client maps its own response shape into one
// of the payloads below, so extractors never see vendor JSON.
package adapter

import (
	"context"
	"errors"

	"github.com/menta2k/design-analyzer/pkg/types"
)

// ErrEmptyImage is returned by adapters handed an image without bytes
var ErrEmptyImage = errors.New("adapter: image has no data")

// Result is the outcome of one vendor call: either a value or the failure cause
type Result[T any] struct {
	Value T
	Err   error
}

// Succeeded wraps a successful vendor response
func Succeeded[T any](v T) Result[T] {
	return Result[T]{Value: v}
}

// Failed wraps a vendor failure
func Failed[T any](err error) Result[T] {
	if err == nil {
		err = errors.New("adapter: unspecified failure")
	}
	return Result[T]{Err: err}
}

// OK reports whether the call succeeded
func (r Result[T]) OK() bool {
	return r.Err == nil
}

// ColorInfo is the color analysis returned by a vision service
type ColorInfo struct {
	DominantForeground string   `json:"dominantColorForeground"`
	DominantBackground string   `json:"dominantColorBackground"`
	Accent             string   `json:"accentColor"`
	DominantColors     []string `json:"dominantColors"`
	IsBlackAndWhite    bool     `json:"isBWImg"`
}

// VisionPayload is the normalized object detection response
type VisionPayload struct {
	Objects []types.DetectedObject
	Color   *ColorInfo
	Tags    []string
	Width   int
	Height  int
	Format  string
}

// LayoutPage is one page of a layout/OCR response
type LayoutPage struct {
	Number int
	Width  float64
	Height float64
	Unit   string
	Lines  []types.TextRegion
}

// LayoutPayload is the normalized layout/OCR response
type LayoutPayload struct {
	Pages []LayoutPage
}

// ObjectDetector detects objects, tags and colors in an image
type ObjectDetector interface {
	DetectObjects(ctx context.Context, img types.ImageData) Result[VisionPayload]
}

// LayoutReader reads text lines and their positions from an image
type LayoutReader interface {
	ReadLayout(ctx context.Context, img types.ImageData) Result[LayoutPayload]
}

// VisionLanguageModel answers a prompt about an image with free text
type VisionLanguageModel interface {
	Complete(ctx context.Context, prompt string, img types.ImageData) Result[string]
}

// StaticDetector always returns the same vision payload
type StaticDetector struct {
	Payload VisionPayload
	Err     error
}

func (s StaticDetector) DetectObjects(ctx context.Context, img types.ImageData) Result[VisionPayload] {
	if s.Err != nil {
		return Failed[VisionPayload](s.Err)
	}
	return Succeeded(s.Payload)
}

// StaticLayout always returns the same layout payload
type StaticLayout struct {
	Payload LayoutPayload
	Err     error
}

func (s StaticLayout) ReadLayout(ctx context.Context, img types.ImageData) Result[LayoutPayload] {
	if s.Err != nil {
		return Failed[LayoutPayload](s.Err)
	}
	return Succeeded(s.Payload)
}

// StaticModel always returns the same completion text
type StaticModel struct {
	Content string
	Err     error
}

func (s StaticModel) Complete(ctx context.Context, prompt string, img types.ImageData) Result[string] {
	if s.Err != nil {
		return Failed[string](s.Err)
	}
	return Succeeded(s.Content)
}
