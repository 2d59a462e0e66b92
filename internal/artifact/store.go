// Package artifact persists the files produced for one analysis run: the
// analysis JSON, component definitions, generated sources and overlays.
package artifact

import (
	"context"
	"errors"
	"fmt"
	"mime"
	"path"
	"strings"
)

// ErrNotFound is returned by Get for a missing artifact
var ErrNotFound = errors.New("artifact not found")

// Store defines operations for persisting run artifacts.
type Store interface {
	Put(ctx context.Context, runID, path string, content []byte) error
	Get(ctx context.Context, runID, path string) ([]byte, error)
	List(ctx context.Context, runID string) ([]string, error)
}

func validate(runID, p string) (string, string, error) {
	runID = strings.TrimSpace(runID)
	p = strings.TrimSpace(p)
	if runID == "" {
		return "", "", fmt.Errorf("run_id is required")
	}
	if p == "" {
		return "", "", fmt.Errorf("path is required")
	}
	clean := path.Clean("/" + p)
	if clean == "/" {
		return "", "", fmt.Errorf("path is required")
	}
	return runID, strings.TrimPrefix(clean, "/"), nil
}

func objectKey(runID, p string) string {
	return strings.TrimSpace(runID) + "/" + strings.TrimLeft(p, "/")
}

// ContentType guesses a MIME type from the artifact extension
func ContentType(p string) string {
	switch strings.ToLower(path.Ext(p)) {
	case ".tsx", ".ts":
		return "text/typescript"
	case ".vue":
		return "text/plain; charset=utf-8"
	}
	if t := mime.TypeByExtension(path.Ext(p)); t != "" {
		return t
	}
	return "application/octet-stream"
}
