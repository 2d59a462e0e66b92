package artifact

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	designanalyzer "github.com/menta2k/design-analyzer"
	"github.com/menta2k/design-analyzer/pkg/types"
)

const (
	AnalysisFile   = "analysis.json"
	ComponentsFile = "components.json"
	SourcesDir     = "src"
)

// WriteReport stores the analysis, the component definitions and one file
// per generated source. It returns the written paths in write order.
func WriteReport(ctx context.Context, store Store, runID string, report designanalyzer.Report) ([]string, error) {
	var written []string

	put := func(p string, v any) error {
		data, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal %s: %w", p, err)
		}
		if err := store.Put(ctx, runID, p, data); err != nil {
			return err
		}
		written = append(written, p)
		return nil
	}

	if err := put(AnalysisFile, report.Analysis); err != nil {
		return written, err
	}
	if err := put(ComponentsFile, report.Components); err != nil {
		return written, err
	}

	frameworks := make([]types.Framework, 0, len(report.Sources))
	for fw := range report.Sources {
		frameworks = append(frameworks, fw)
	}
	sort.Slice(frameworks, func(i, j int) bool { return frameworks[i] < frameworks[j] })

	for _, fw := range frameworks {
		src := report.Sources[fw]
		p := SourcesDir + "/" + string(fw) + "/" + src.FileName
		if err := store.Put(ctx, runID, p, []byte(src.Code)); err != nil {
			return written, err
		}
		written = append(written, p)
	}
	return written, nil
}
