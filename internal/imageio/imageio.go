// Package imageio loads design images from files, URLs and data URLs, and
// renders debug overlays and component crops.
package imageio

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"image"
	"image/color"
	_ "image/gif"
	"image/jpeg"
	"image/png"
	"io"
	"math"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/chai2010/webp"
	"github.com/disintegration/imaging"
	_ "golang.org/x/image/webp"

	"github.com/menta2k/design-analyzer/pkg/types"
)

const defaultMaxBytes = 20 << 20

// Loader turns image sources into ImageData with real pixel dimensions
type Loader struct {
	client           *http.Client
	supportedFormats []string
	maxBytes         int64
}

// Option configures a Loader
type Option func(*Loader)

// WithHTTPClient sets the client used for http(s) sources
func WithHTTPClient(c *http.Client) Option {
	return func(l *Loader) { l.client = c }
}

// WithSupportedFormats restricts the accepted image formats
func WithSupportedFormats(formats ...string) Option {
	return func(l *Loader) {
		if len(formats) > 0 {
			l.supportedFormats = formats
		}
	}
}

// WithMaxBytes caps the size of a loaded image
func WithMaxBytes(n int) Option {
	return func(l *Loader) {
		if n > 0 {
			l.maxBytes = int64(n)
		}
	}
}

// NewLoader creates a new image loader
func NewLoader(opts ...Option) *Loader {
	l := &Loader{
		client:           &http.Client{Timeout: 30 * time.Second},
		supportedFormats: []string{"png", "jpg", "jpeg", "webp", "gif"},
		maxBytes:         defaultMaxBytes,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Load reads an image from a file path, an http(s) URL or a data: URL
func (l *Loader) Load(ctx context.Context, source string) (types.ImageData, error) {
	switch {
	case strings.HasPrefix(source, "data:"):
		return l.loadDataURL(source)
	case strings.HasPrefix(source, "http://"), strings.HasPrefix(source, "https://"):
		return l.loadURL(ctx, source)
	default:
		return l.loadFile(source)
	}
}

func (l *Loader) loadFile(path string) (types.ImageData, error) {
	f, err := os.Open(path)
	if err != nil {
		return types.ImageData{}, fmt.Errorf("failed to open image file: %w", err)
	}
	defer f.Close()
	return l.FromReader(f)
}

func (l *Loader) loadURL(ctx context.Context, imageURL string) (types.ImageData, error) {
	if _, err := url.Parse(imageURL); err != nil {
		return types.ImageData{}, fmt.Errorf("invalid URL: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, imageURL, nil)
	if err != nil {
		return types.ImageData{}, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", "Design-Analyzer/1.0")

	resp, err := l.client.Do(req)
	if err != nil {
		return types.ImageData{}, fmt.Errorf("failed to download image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return types.ImageData{}, fmt.Errorf("failed to download image: HTTP %d", resp.StatusCode)
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType != "" && !strings.HasPrefix(contentType, "image/") {
		return types.ImageData{}, fmt.Errorf("URL does not point to an image (Content-Type: %s)", contentType)
	}

	return l.FromReader(resp.Body)
}

func (l *Loader) loadDataURL(source string) (types.ImageData, error) {
	comma := strings.IndexByte(source, ',')
	if comma < 0 {
		return types.ImageData{}, fmt.Errorf("malformed data URL")
	}
	meta := source[len("data:"):comma]
	if !strings.HasSuffix(meta, ";base64") {
		return types.ImageData{}, fmt.Errorf("data URL must be base64 encoded")
	}

	data, err := base64.StdEncoding.DecodeString(source[comma+1:])
	if err != nil {
		return types.ImageData{}, fmt.Errorf("failed to decode data URL: %w", err)
	}
	return l.FromBytes(data)
}

// FromReader reads at most the configured byte limit and inspects the image
func (l *Loader) FromReader(r io.Reader) (types.ImageData, error) {
	data, err := io.ReadAll(io.LimitReader(r, l.maxBytes+1))
	if err != nil {
		return types.ImageData{}, fmt.Errorf("failed to read image data: %w", err)
	}
	if int64(len(data)) > l.maxBytes {
		return types.ImageData{}, fmt.Errorf("image exceeds %d bytes", l.maxBytes)
	}
	return l.FromBytes(data)
}

// FromBytes detects the format and dimensions of encoded image bytes
func (l *Loader) FromBytes(data []byte) (types.ImageData, error) {
	if len(data) == 0 {
		return types.ImageData{}, fmt.Errorf("image has no data")
	}

	format, width, height, err := inspect(data)
	if err != nil {
		return types.ImageData{}, err
	}
	if !l.isFormatSupported(format) {
		return types.ImageData{}, fmt.Errorf("unsupported image format: %s", format)
	}

	return types.ImageData{Data: data, Format: format, Width: width, Height: height}, nil
}

func (l *Loader) isFormatSupported(format string) bool {
	for _, supported := range l.supportedFormats {
		if strings.EqualFold(format, supported) {
			return true
		}
	}
	return false
}

// inspect reads the header only, falling back to the libwebp decoder for
// WebP variants the pure-Go decoder rejects
func inspect(data []byte) (string, int, int, error) {
	if cfg, format, err := image.DecodeConfig(bytes.NewReader(data)); err == nil {
		if format == "jpeg" {
			format = "jpg"
		}
		return format, cfg.Width, cfg.Height, nil
	}
	if w, h, _, err := webp.GetInfo(data); err == nil {
		return "webp", w, h, nil
	}
	return "", 0, 0, fmt.Errorf("image: unknown or unsupported format")
}

// Decode decodes image bytes with WebP support
func Decode(data []byte) (image.Image, error) {
	if img, _, err := image.Decode(bytes.NewReader(data)); err == nil {
		return img, nil
	}
	if img, err := webp.Decode(bytes.NewReader(data)); err == nil {
		return img, nil
	}
	return nil, fmt.Errorf("image: unknown or unsupported format")
}

// Prepare downscales an image so its long side is at most maxDim and
// re-encodes it in its own format. Smaller images and maxDim <= 0 return the
// input unchanged. Element coordinates reported by vendors refer to the
// returned image.
func Prepare(img types.ImageData, maxDim, quality int) (types.ImageData, error) {
	if maxDim <= 0 || (img.Width <= maxDim && img.Height <= maxDim) {
		return img, nil
	}

	decoded, err := Decode(img.Data)
	if err != nil {
		return types.ImageData{}, err
	}
	if img.Width >= img.Height {
		decoded = imaging.Resize(decoded, maxDim, 0, imaging.Lanczos)
	} else {
		decoded = imaging.Resize(decoded, 0, maxDim, imaging.Lanczos)
	}

	format := img.Format
	if format == "gif" {
		format = "png"
	}
	var buf bytes.Buffer
	if err := Encode(&buf, decoded, format, quality, false); err != nil {
		return types.ImageData{}, err
	}

	b := decoded.Bounds()
	return types.ImageData{Data: buf.Bytes(), Format: format, Width: b.Dx(), Height: b.Dy()}, nil
}

// Encode writes an image as png, webp or jpg (the default)
func Encode(w io.Writer, img image.Image, format string, quality int, lossless bool) error {
	if quality <= 0 || quality > 100 {
		quality = 90
	}
	switch strings.ToLower(format) {
	case "webp":
		return webp.Encode(w, img, &webp.Options{Lossless: lossless, Quality: float32(quality)})
	case "png":
		enc := png.Encoder{CompressionLevel: png.BestCompression}
		return enc.Encode(w, img)
	default: // jpg
		return jpeg.Encode(w, img, &jpeg.Options{Quality: quality})
	}
}

// SaveImage saves an image to a file, choosing the format from the extension
func SaveImage(img image.Image, path string, quality int, lossless bool) error {
	format := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	switch format {
	case "png", "jpg", "jpeg":
		opts := []imaging.EncodeOption{imaging.JPEGQuality(quality), imaging.PNGCompressionLevel(png.BestCompression)}
		return imaging.Save(img, path, opts...)
	case "webp":
		f, err := os.Create(path)
		if err != nil {
			return err
		}
		defer f.Close()
		return Encode(f, img, "webp", quality, lossless)
	default:
		return fmt.Errorf("unsupported output format: %s", format)
	}
}

// CropComponent cuts one component's bounds (plus padding) out of the image
func CropComponent(img image.Image, r types.Rect, padding int) (image.Image, error) {
	rect := image.Rect(
		int(math.Floor(r.X))-padding,
		int(math.Floor(r.Y))-padding,
		int(math.Ceil(r.X+r.W))+padding,
		int(math.Ceil(r.Y+r.H))+padding,
	).Intersect(img.Bounds())
	if rect.Empty() {
		return nil, fmt.Errorf("empty crop rectangle")
	}
	return imaging.Crop(img, rect), nil
}

var overlayColors = map[types.ElementKind]color.NRGBA{
	types.KindButton:     {0, 170, 255, 255},
	types.KindText:       {0, 200, 0, 255},
	types.KindInput:      {255, 204, 0, 255},
	types.KindImage:      {200, 0, 200, 255},
	types.KindNavigation: {255, 120, 0, 255},
}

var overlayFallback = color.NRGBA{255, 0, 0, 255}

// CreateDebugOverlay draws every component's bounds on a copy of the image
func CreateDebugOverlay(img image.Image, components []types.ComponentDefinition) image.Image {
	nrgba := imaging.Clone(img)
	w := nrgba.Bounds().Dx()
	h := nrgba.Bounds().Dy()
	stroke := int(math.Max(2, 0.003*float64(minInt(w, h)))) // ~0.3% of min side

	for _, c := range components {
		col, ok := overlayColors[c.Type]
		if !ok {
			col = overlayFallback
		}
		drawBox(nrgba, c.Position, col, stroke)
	}
	return nrgba
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func rectToPixels(r types.Rect) (int, int, int, int) {
	x0 := int(r.X + 0.5)
	y0 := int(r.Y + 0.5)
	x1 := int(r.X + r.W + 0.5)
	y1 := int(r.Y + r.H + 0.5)
	if x1 <= x0 {
		x1 = x0 + 1
	}
	if y1 <= y0 {
		y1 = y0 + 1
	}
	return x0, y0, x1, y1
}

func drawBox(img *image.NRGBA, r types.Rect, color color.NRGBA, stroke int) {
	x0, y0, x1, y1 := rectToPixels(r)
	for s := 0; s < stroke; s++ {
		drawHLine(img, y0+s, x0, x1, color)
		drawHLine(img, y1-1-s, x0, x1, color)
		drawVLine(img, x0+s, y0, y1, color)
		drawVLine(img, x1-1-s, y0, y1, color)
	}
}

func drawHLine(img *image.NRGBA, y, x0, x1 int, c color.NRGBA) {
	if y < 0 || y >= img.Bounds().Dy() {
		return
	}
	if x0 > x1 {
		x0, x1 = x1, x0
	}
	if x1 <= 0 || x0 >= img.Bounds().Dx() {
		return
	}
	if x0 < 0 {
		x0 = 0
	}
	if x1 > img.Bounds().Dx() {
		x1 = img.Bounds().Dx()
	}
	i := y*img.Stride + x0*4
	for x := x0; x < x1; x++ {
		img.Pix[i+0] = c.R
		img.Pix[i+1] = c.G
		img.Pix[i+2] = c.B
		img.Pix[i+3] = c.A
		i += 4
	}
}

func drawVLine(img *image.NRGBA, x, y0, y1 int, c color.NRGBA) {
	if x < 0 || x >= img.Bounds().Dx() {
		return
	}
	if y0 > y1 {
		y0, y1 = y1, y0
	}
	if y1 <= 0 || y0 >= img.Bounds().Dy() {
		return
	}
	if y0 < 0 {
		y0 = 0
	}
	if y1 > img.Bounds().Dy() {
		y1 = img.Bounds().Dy()
	}
	i := y0*img.Stride + x*4
	for y := y0; y < y1; y++ {
		img.Pix[i+0] = c.R
		img.Pix[i+1] = c.G
		img.Pix[i+2] = c.B
		img.Pix[i+3] = c.A
		i += img.Stride
	}
}
