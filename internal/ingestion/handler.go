package ingestion

import (
	"encoding/csv"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	httperr "github.com/salesboard-lab/project-salesboard/internal/core/errors"
)

// RegisterRoutes registers the ingestion routes.
func (s *Service) RegisterRoutes(r gin.IRouter) {
	r.POST("/v1/sales/upload", s.UploadHandler)
}

// UploadHandler handles multipart CSV uploads of sales exports.
//
// Form field "file" carries the CSV; the optional "mode" query parameter
// selects the failure policy ("atomic" default, "best_effort").
func (s *Service) UploadHandler(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, int64(s.maxUploadSizeMB)*1024*1024)

	mode := Mode(c.DefaultQuery("mode", string(s.defaultMode)))
	if mode != ModeAtomic && mode != ModeBestEffort {
		c.JSON(http.StatusBadRequest, httperr.ErrorResponse{
			ErrorType: httperr.HttpInvalidRequestError,
			Message:   "mode must be atomic or best_effort",
		})
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		slog.Warn("Upload rejected: missing or unreadable file field", "error", err)
		c.JSON(http.StatusBadRequest, httperr.ErrorResponse{
			ErrorType: httperr.HttpInvalidRequestError,
			Message:   "multipart field 'file' is required",
		})
		return
	}

	f, err := fileHeader.Open()
	if err != nil {
		slog.Error("Failed to open uploaded file", "error", err)
		c.JSON(http.StatusInternalServerError, httperr.ErrorResponse{
			ErrorType: httperr.HttpInternalError,
			Message:   "failed to open uploaded file",
		})
		return
	}
	defer f.Close()

	src, err := NewCSVSource(f)
	if err != nil {
		c.JSON(http.StatusBadRequest, httperr.ErrorResponse{
			ErrorType: httperr.HttpInvalidRequestError,
			Message:   err.Error(),
		})
		return
	}

	result, err := s.Ingest(c.Request.Context(), src, mode)
	if err != nil {
		writeIngestError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Data loaded successfully",
		"run_id":  result.RunID,
		"records": result.Records,
		"skipped": result.Skipped,
	})
}

func writeIngestError(c *gin.Context, err error) {
	var csvErr *csv.ParseError
	if errors.As(err, &csvErr) {
		c.JSON(http.StatusBadRequest, httperr.ErrorResponse{
			ErrorType: httperr.HttpInvalidRequestError,
			Message:   err.Error(),
		})
		return
	}

	var parseErr *FieldParseError
	if errors.As(err, &parseErr) {
		c.JSON(http.StatusBadRequest, httperr.ErrorResponse{
			ErrorType: httperr.HttpParseError,
			Message:   parseErr.Error(),
			Details: map[string]interface{}{
				"row":   parseErr.Row,
				"field": parseErr.Field,
				"value": parseErr.Value,
			},
		})
		return
	}

	var resolveErr *ResolveError
	if errors.As(err, &resolveErr) {
		c.JSON(http.StatusUnprocessableEntity, httperr.ErrorResponse{
			ErrorType: httperr.HttpResolveError,
			Message:   resolveErr.Error(),
			Details: map[string]interface{}{
				"row":  resolveErr.Row,
				"kind": resolveErr.Kind,
				"key":  resolveErr.Key,
			},
		})
		return
	}

	slog.Error("Ingestion run failed", "error", err)
	c.JSON(http.StatusInternalServerError, httperr.ErrorResponse{
		ErrorType: httperr.HttpInternalError,
		Message:   "ingestion failed",
		Details:   err.Error(),
	})
}
