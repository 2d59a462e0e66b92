package types

import (
	"encoding/base64"
	"strings"
	"time"
)

// ImageData is a raw design image with its declared format and pixel dimensions.
// It is treated as immutable once constructed.
type ImageData struct {
	Data   []byte `json:"-"`
	Format string `json:"format"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

// MIMEType returns the image MIME type derived from Format
func (d ImageData) MIMEType() string {
	switch strings.ToLower(d.Format) {
	case "jpg", "jpeg":
		return "image/jpeg"
	case "":
		return "image/png"
	default:
		return "image/" + strings.ToLower(d.Format)
	}
}

// Base64 returns the standard base64 encoding of the image bytes
func (d ImageData) Base64() string {
	return base64.StdEncoding.EncodeToString(d.Data)
}

// DataURL returns the image as a data: URL suitable for chat completion APIs
func (d ImageData) DataURL() string {
	return "data:" + d.MIMEType() + ";base64," + d.Base64()
}

// Rect is a bounding box in image pixels
type Rect struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	W float64 `json:"w"`
	H float64 `json:"h"`
}

// AspectRatio returns W/H, or 0 for a degenerate box
func (r Rect) AspectRatio() float64 {
	if r.H == 0 {
		return 0
	}
	return r.W / r.H
}

// Point is a polygon vertex in image pixels
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// ElementKind is the UI element classification of a detected object
type ElementKind string

const (
	KindButton     ElementKind = "button"
	KindText       ElementKind = "text"
	KindInput      ElementKind = "input"
	KindImage      ElementKind = "image"
	KindIcon       ElementKind = "icon"
	KindNavigation ElementKind = "navigation"
	KindCard       ElementKind = "card"
	KindContainer  ElementKind = "container"
	KindUnknown    ElementKind = "unknown"
)

// DetectedObject is one object-detection hit normalized from a vision service
type DetectedObject struct {
	Label      string  `json:"object"`
	Confidence float64 `json:"confidence"`
	Rect       Rect    `json:"rectangle"`
}

// TextRegion is one OCR line with its bounding polygon
type TextRegion struct {
	Content    string  `json:"content"`
	Polygon    []Point `json:"polygon"`
	Confidence float64 `json:"confidence,omitempty"`
}

// TopLeft returns the first polygon vertex, or the zero point
func (t TextRegion) TopLeft() Point {
	if len(t.Polygon) == 0 {
		return Point{}
	}
	return t.Polygon[0]
}

// UIElement is a detected object classified as a UI element
type UIElement struct {
	Type       ElementKind    `json:"type"`
	Confidence float64        `json:"confidence"`
	Bounds     Rect           `json:"bounds"`
	Properties map[string]any `json:"properties"`
}

// ColorScheme holds the three color slots reported by the vision service
type ColorScheme struct {
	Dominant   string `json:"dominant"`
	Background string `json:"background"`
	Accent     string `json:"accent"`
}

// UIInsight is the UI-specific interpretation of object detection output
type UIInsight struct {
	Elements    []UIElement  `json:"elements"`
	Patterns    []string     `json:"patterns"`
	ColorScheme *ColorScheme `json:"colorScheme"`
}

// VisualAnalysis is the visual section of a DesignAnalysisResult
type VisualAnalysis struct {
	UI         UIInsight        `json:"ui"`
	Objects    []DetectedObject `json:"objects"`
	Tags       []string         `json:"tags"`
	Confidence float64          `json:"confidence"`
}

// GridType is a coarse classification of a design's column layout
type GridType string

const (
	GridSingleColumn GridType = "single-column"
	GridTwoColumn    GridType = "two-column"
	GridMultiColumn  GridType = "multi-column"
	GridGrid         GridType = "grid"
	GridFlow         GridType = "flow"
)

// GridInfo describes rows and columns inferred from text positions.
// ColumnWidths holds the mean left X of each column index.
type GridInfo struct {
	Rows         int       `json:"rows"`
	Columns      int       `json:"columns"`
	ColumnWidths []float64 `json:"columnWidths"`
	GridType     GridType  `json:"gridType"`
}

// LayoutType is the semantic label for a grid type
type LayoutType string

const (
	LayoutMobileFirst LayoutType = "mobile-first"
	LayoutSidebar     LayoutType = "sidebar"
	LayoutDashboard   LayoutType = "dashboard"
	LayoutCardGrid    LayoutType = "card-grid"
	LayoutCustom      LayoutType = "custom"
	LayoutUnknown     LayoutType = "unknown"
)

// LayoutStructure is the layout insight derived from OCR lines
type LayoutStructure struct {
	Type      LayoutType   `json:"type"`
	Grid      *GridInfo    `json:"grid"`
	Hierarchy []string     `json:"hierarchy"`
	Regions   []TextRegion `json:"regions"`
}

// LayoutAnalysis is the layout section of a DesignAnalysisResult
type LayoutAnalysis struct {
	Structure  LayoutStructure `json:"structure"`
	Confidence float64         `json:"confidence"`
}

// RawComponent is a component named by the vision-language model
type RawComponent struct {
	Type       string         `json:"type"`
	Name       string         `json:"name"`
	Properties map[string]any `json:"properties,omitempty"`
}

// Relation links two components named by the vision-language model
type Relation struct {
	Parent       string `json:"parent"`
	Child        string `json:"child"`
	Relationship string `json:"relationship"`
}

// SemanticInsight is the design intent reported by the vision-language model
type SemanticInsight struct {
	Intent        string         `json:"intent"`
	Components    []RawComponent `json:"components"`
	Relationships []Relation     `json:"relationships"`
	Suggestions   []string       `json:"suggestions"`
}

// SemanticAnalysis is the semantic section of a DesignAnalysisResult
type SemanticAnalysis struct {
	SemanticInsight
	Confidence float64 `json:"confidence"`
}

// Dimensions is an image size in pixels
type Dimensions struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Metadata describes one analysis run
type Metadata struct {
	Timestamp        time.Time  `json:"timestamp"`
	ProcessingTimeMs int64      `json:"processingTime"`
	ImageFormat      string     `json:"imageFormat"`
	Dimensions       Dimensions `json:"dimensions"`
}

// DesignAnalysisResult aggregates the three insight sections of one analysis.
// It is built once per analysis call and never mutated afterwards.
type DesignAnalysisResult struct {
	Visual   VisualAnalysis   `json:"visual"`
	Layout   LayoutAnalysis   `json:"layout"`
	Semantic SemanticAnalysis `json:"semantic"`
	Metadata Metadata         `json:"metadata"`
}

// ComponentDefinition is one UI element ready for code rendering
type ComponentDefinition struct {
	Type       ElementKind           `json:"type"`
	Name       string                `json:"name"`
	Properties map[string]any        `json:"properties"`
	Styles     map[string]string     `json:"styles"`
	Position   Rect                  `json:"position"`
	Children   []ComponentDefinition `json:"children,omitempty"`
}

// Framework is a code generation target
type Framework string

const (
	FrameworkReact   Framework = "react"
	FrameworkVue     Framework = "vue"
	FrameworkAngular Framework = "angular"
)
