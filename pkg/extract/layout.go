package extract

import (
	"context"
	"errors"
	"log/slog"
	"math"
	"sort"

	"github.com/menta2k/design-analyzer/pkg/adapter"
	"github.com/menta2k/design-analyzer/pkg/types"
)

const (
	// LayoutConfidence is reported when the layout service answered
	LayoutConfidence = 0.85
	// RowThreshold is the maximum vertical distance between a line and its row anchor
	RowThreshold = 20.0
)

var ErrNoLayoutReader = errors.New("extract: no layout reader configured")

// LayoutExtractor turns OCR lines into a grid and layout classification
type LayoutExtractor struct {
	reader    adapter.LayoutReader
	threshold float64
	logger    *slog.Logger
}

// NewLayout creates a layout extractor backed by the given reader
func NewLayout(reader adapter.LayoutReader, logger *slog.Logger) *LayoutExtractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &LayoutExtractor{
		reader:    reader,
		threshold: RowThreshold,
		logger:    logger.With("component", "layout-extractor"),
	}
}

// Extract runs the layout reader and derives the layout section.
// Reader failures degrade to DefaultLayout and are never returned.
func (e *LayoutExtractor) Extract(ctx context.Context, img types.ImageData) (types.LayoutAnalysis, error) {
	if e == nil || e.reader == nil {
		return types.LayoutAnalysis{}, ErrNoLayoutReader
	}

	res := e.reader.ReadLayout(ctx, img)
	if !res.OK() {
		e.logger.Warn("layout analysis failed, using default analysis", "error", res.Err)
		return DefaultLayout(), nil
	}

	return types.LayoutAnalysis{
		Structure:  ExtractLayoutStructure(res.Value, e.threshold),
		Confidence: LayoutConfidence,
	}, nil
}

// DefaultLayout is the layout section used when the layout service fails
func DefaultLayout() types.LayoutAnalysis {
	return types.LayoutAnalysis{
		Structure:  emptyStructure(),
		Confidence: DegradedConfidence,
	}
}

func emptyStructure() types.LayoutStructure {
	return types.LayoutStructure{
		Type:      types.LayoutUnknown,
		Hierarchy: []string{},
		Regions:   []types.TextRegion{},
	}
}

// ExtractLayoutStructure infers the grid from the first page's lines. A page
// without a lines array stays unknown; an empty array yields an empty flow grid.
func ExtractLayoutStructure(p adapter.LayoutPayload, threshold float64) types.LayoutStructure {
	s := emptyStructure()
	if len(p.Pages) == 0 || p.Pages[0].Lines == nil {
		return s
	}

	lines := p.Pages[0].Lines
	s.Regions = append(s.Regions, lines...)
	s.Grid = InferGridStructure(lines, threshold)
	s.Type = InferLayoutType(s.Grid)
	return s
}

// InferGridStructure derives rows, column positions and grid type from text lines
func InferGridStructure(lines []types.TextRegion, threshold float64) *types.GridInfo {
	rows := GroupLinesByRows(lines, threshold)
	columns := AnalyzeColumnStructure(rows)
	return &types.GridInfo{
		Rows:         len(rows),
		Columns:      len(columns),
		ColumnWidths: columns,
		GridType:     DetermineGridType(len(columns), rows),
	}
}

// GroupLinesByRows groups lines whose top-left Y lies within threshold of the
// row's first line. The result does not depend on input order: lines are
// sorted by (Y, X, content) first, rows come out ascending by Y and each row
// is ordered left to right.
func GroupLinesByRows(lines []types.TextRegion, threshold float64) [][]types.TextRegion {
	if threshold <= 0 {
		threshold = RowThreshold
	}
	sorted := make([]types.TextRegion, len(lines))
	copy(sorted, lines)
	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i].TopLeft(), sorted[j].TopLeft()
		if a.Y != b.Y {
			return a.Y < b.Y
		}
		if a.X != b.X {
			return a.X < b.X
		}
		return sorted[i].Content < sorted[j].Content
	})

	var rows [][]types.TextRegion
	for _, line := range sorted {
		y := line.TopLeft().Y
		n := len(rows)
		if n > 0 && math.Abs(rows[n-1][0].TopLeft().Y-y) < threshold {
			rows[n-1] = append(rows[n-1], line)
			continue
		}
		rows = append(rows, []types.TextRegion{line})
	}

	for _, row := range rows {
		sort.SliceStable(row, func(i, j int) bool {
			return row[i].TopLeft().X < row[j].TopLeft().X
		})
	}
	return rows
}

// AnalyzeColumnStructure returns the mean X of each column index. The column
// count is the length of the longest row.
func AnalyzeColumnStructure(rows [][]types.TextRegion) []float64 {
	maxColumns := 0
	for _, row := range rows {
		if len(row) > maxColumns {
			maxColumns = len(row)
		}
	}

	positions := make([]float64, 0, maxColumns)
	for col := 0; col < maxColumns; col++ {
		var sum float64
		var n int
		for _, row := range rows {
			if col < len(row) {
				sum += row[col].TopLeft().X
				n++
			}
		}
		if n > 0 {
			positions = append(positions, sum/float64(n))
		}
	}
	return positions
}

// DetermineGridType classifies the grid by column count, falling back to the
// mean row length when no columns were found
func DetermineGridType(columns int, rows [][]types.TextRegion) types.GridType {
	switch {
	case columns == 1:
		return types.GridSingleColumn
	case columns == 2:
		return types.GridTwoColumn
	case columns >= 3:
		return types.GridMultiColumn
	}

	if len(rows) > 0 {
		total := 0
		for _, row := range rows {
			total += len(row)
		}
		if float64(total)/float64(len(rows)) > 3 {
			return types.GridGrid
		}
	}
	return types.GridFlow
}

// InferLayoutType maps a grid type to a semantic layout label
func InferLayoutType(grid *types.GridInfo) types.LayoutType {
	if grid == nil {
		return types.LayoutUnknown
	}
	switch grid.GridType {
	case types.GridSingleColumn:
		return types.LayoutMobileFirst
	case types.GridTwoColumn:
		return types.LayoutSidebar
	case types.GridMultiColumn:
		return types.LayoutDashboard
	case types.GridGrid:
		return types.LayoutCardGrid
	default:
		return types.LayoutCustom
	}
}
