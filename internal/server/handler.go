// Package server exposes the design analyzer over HTTP.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	designanalyzer "github.com/menta2k/design-analyzer"
	"github.com/menta2k/design-analyzer/internal/artifact"
	"github.com/menta2k/design-analyzer/internal/imageio"
	"github.com/menta2k/design-analyzer/pkg/codegen"
	"github.com/menta2k/design-analyzer/pkg/types"
)

const prepareQuality = 90

// Pipeline is the part of the analyzer the HTTP API drives
type Pipeline interface {
	AnalyzeDesign(ctx context.Context, img types.ImageData) (types.DesignAnalysisResult, error)
	GenerateCode(result types.DesignAnalysisResult, framework string) (string, error)
	DesignToCode(ctx context.Context, img types.ImageData, frameworks ...string) (designanalyzer.Report, error)
}

type Handler struct {
	pipeline     Pipeline
	loader       *imageio.Loader
	store        artifact.Store
	maxDimension int
	logger       *slog.Logger
}

// NewHandler creates the API handler. A nil store disables the run endpoints
// and design-to-code results are not persisted.
func NewHandler(pipeline Pipeline, loader *imageio.Loader, store artifact.Store, maxDimension int, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	if loader == nil {
		loader = imageio.NewLoader()
	}
	return &Handler{
		pipeline:     pipeline,
		loader:       loader,
		store:        store,
		maxDimension: maxDimension,
		logger:       logger.With("component", "server"),
	}
}

func (h *Handler) RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", h.Health)

	api := e.Group("/v1")
	api.POST("/analyze", h.Analyze)
	api.POST("/generate", h.Generate)
	api.POST("/design-to-code", h.DesignToCode)
	api.GET("/runs/:id", h.ListRun)
	api.GET("/runs/:id/files/*", h.GetRunFile)
}

type HealthResponse struct {
	Status     string            `json:"status"`
	Version    string            `json:"version"`
	Frameworks []types.Framework `json:"frameworks"`
}

type GenerateRequest struct {
	Analysis  types.DesignAnalysisResult `json:"analysis"`
	Framework string                     `json:"framework"`
}

type GenerateResponse struct {
	Framework types.Framework `json:"framework"`
	Code      string          `json:"code"`
}

type DesignToCodeResponse struct {
	RunID     string                `json:"runId,omitempty"`
	Artifacts []string              `json:"artifacts,omitempty"`
	Report    designanalyzer.Report `json:"report"`
}

type RunResponse struct {
	RunID     string   `json:"runId"`
	Artifacts []string `json:"artifacts"`
}

func (h *Handler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, HealthResponse{
		Status:     "ok",
		Version:    designanalyzer.GetVersion(),
		Frameworks: codegen.Frameworks(),
	})
}

// Analyze accepts a multipart "image" field or a raw image body
func (h *Handler) Analyze(c echo.Context) error {
	img, err := h.readImage(c)
	if err != nil {
		return err
	}

	result, err := h.pipeline.AnalyzeDesign(c.Request().Context(), img)
	if err != nil {
		h.logger.Error("analysis failed", "error", err)
		return pipelineError(err)
	}
	return c.JSON(http.StatusOK, result)
}

// Generate renders a previously returned analysis for one framework
func (h *Handler) Generate(c echo.Context) error {
	var req GenerateRequest
	if err := json.NewDecoder(c.Request().Body).Decode(&req); err != nil {
		return BadRequest("invalid_request", "invalid request body")
	}
	if req.Framework == "" {
		req.Framework = string(types.FrameworkReact)
	}

	fw, err := codegen.ParseFramework(req.Framework)
	if err != nil {
		return pipelineError(err)
	}
	code, err := h.pipeline.GenerateCode(req.Analysis, string(fw))
	if err != nil {
		return pipelineError(err)
	}
	return c.JSON(http.StatusOK, GenerateResponse{Framework: fw, Code: code})
}

// DesignToCode analyzes the image and renders every requested framework.
// Frameworks come from repeated or comma separated "framework" query values.
func (h *Handler) DesignToCode(c echo.Context) error {
	frameworks := queryList(c, "framework")
	for _, fw := range frameworks {
		if _, err := codegen.ParseFramework(fw); err != nil {
			return pipelineError(err)
		}
	}

	img, err := h.readImage(c)
	if err != nil {
		return err
	}

	ctx := c.Request().Context()
	report, err := h.pipeline.DesignToCode(ctx, img, frameworks...)
	if err != nil {
		h.logger.Error("design to code failed", "error", err)
		return pipelineError(err)
	}

	resp := DesignToCodeResponse{Report: report}
	if h.store != nil {
		resp.RunID = uuid.NewString()
		resp.Artifacts, err = artifact.WriteReport(ctx, h.store, resp.RunID, report)
		if err != nil {
			h.logger.Error("failed to store artifacts", "error", err, "run_id", resp.RunID)
			return InternalError("store_failed", "failed to store artifacts")
		}
		h.logger.Info("stored run", "run_id", resp.RunID, "artifacts", len(resp.Artifacts))
	}
	return c.JSON(http.StatusOK, resp)
}

func (h *Handler) ListRun(c echo.Context) error {
	if h.store == nil {
		return NotFound("artifacts_disabled", "artifact storage is not configured")
	}
	runID := c.Param("id")
	paths, err := h.store.List(c.Request().Context(), runID)
	if err != nil {
		h.logger.Error("failed to list run", "error", err, "run_id", runID)
		return InternalError("list_failed", "failed to list artifacts")
	}
	if len(paths) == 0 {
		return NotFound("run_not_found", "run not found")
	}
	return c.JSON(http.StatusOK, RunResponse{RunID: runID, Artifacts: paths})
}

func (h *Handler) GetRunFile(c echo.Context) error {
	if h.store == nil {
		return NotFound("artifacts_disabled", "artifact storage is not configured")
	}
	runID, p := c.Param("id"), c.Param("*")
	data, err := h.store.Get(c.Request().Context(), runID, p)
	if errors.Is(err, artifact.ErrNotFound) {
		return NotFound("artifact_not_found", "artifact not found")
	}
	if err != nil {
		h.logger.Error("failed to read artifact", "error", err, "run_id", runID, "path", p)
		return InternalError("read_failed", "failed to read artifact")
	}
	return c.Blob(http.StatusOK, artifact.ContentType(p), data)
}

func (h *Handler) readImage(c echo.Context) (types.ImageData, error) {
	req := c.Request()
	var body io.Reader = req.Body

	if strings.HasPrefix(req.Header.Get(echo.HeaderContentType), echo.MIMEMultipartForm) {
		fh, err := c.FormFile("image")
		if err != nil {
			return types.ImageData{}, BadRequest("missing_image", `multipart field "image" is required`)
		}
		f, err := fh.Open()
		if err != nil {
			return types.ImageData{}, BadRequest("invalid_image", err.Error())
		}
		defer f.Close()
		body = f
	}

	img, err := h.loader.FromReader(body)
	if err != nil {
		return types.ImageData{}, BadRequest("invalid_image", err.Error())
	}
	img, err = imageio.Prepare(img, h.maxDimension, prepareQuality)
	if err != nil {
		return types.ImageData{}, BadRequest("invalid_image", err.Error())
	}
	return img, nil
}

func queryList(c echo.Context, name string) []string {
	var out []string
	for _, raw := range c.QueryParams()[name] {
		for _, v := range strings.Split(raw, ",") {
			if v = strings.TrimSpace(v); v != "" {
				out = append(out, v)
			}
		}
	}
	return out
}
