package server

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/menta2k/design-analyzer/pkg/analysis"
	"github.com/menta2k/design-analyzer/pkg/codegen"
)

// APIError is the JSON body of every error response
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

func NewAPIError(code, message string) *APIError {
	return &APIError{
		Code:    code,
		Message: message,
	}
}

func (e *APIError) WithDetails(details any) *APIError {
	e.Details = details
	return e
}

func (e *APIError) ToHTTP(status int) *echo.HTTPError {
	return echo.NewHTTPError(status, e)
}

func BadRequest(code, message string) *echo.HTTPError {
	return NewAPIError(code, message).ToHTTP(http.StatusBadRequest)
}

func NotFound(code, message string) *echo.HTTPError {
	return NewAPIError(code, message).ToHTTP(http.StatusNotFound)
}

func InternalError(code, message string) *echo.HTTPError {
	return NewAPIError(code, message).ToHTTP(http.StatusInternalServerError)
}

// pipelineError maps analyzer and generator errors to HTTP errors
func pipelineError(err error) *echo.HTTPError {
	switch {
	case errors.Is(err, codegen.ErrUnsupportedFramework):
		return NewAPIError("unsupported_framework", err.Error()).
			WithDetails(map[string]any{"supported": codegen.Frameworks()}).
			ToHTTP(http.StatusBadRequest)
	case errors.Is(err, analysis.ErrAnalysisFailed):
		var failed *analysis.AnalysisFailedError
		if errors.As(err, &failed) {
			return NewAPIError("analysis_failed", err.Error()).
				WithDetails(map[string]string{"section": failed.Section}).
				ToHTTP(http.StatusInternalServerError)
		}
		return InternalError("analysis_failed", err.Error())
	default:
		return InternalError("internal_error", err.Error())
	}
}
