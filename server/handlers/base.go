// Package handlers exposes the criterion pipelines over HTTP. Every handler
// reads multipart uploads fully into memory, runs one pipeline and responds
// with either a JSON preview or the exported workbook.
package handlers

import (
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"

	"auditserver/criteria"
	"auditserver/database"
	"auditserver/export"
	"auditserver/internal/config"
	apperrors "auditserver/server/errors"
	"auditserver/server/middleware"
	"auditserver/tabular"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// Handlers bundles the dependencies of all HTTP handlers.
type Handlers struct {
	runner *criteria.Runner
	audit  *database.AuditDB
	config *config.Config
}

// New creates the handler set.
func New(runner *criteria.Runner, audit *database.AuditDB, cfg *config.Config) *Handlers {
	return &Handlers{runner: runner, audit: audit, config: cfg}
}

// readUpload drains one multipart file into a Source.
func readUpload(fh *multipart.FileHeader) (tabular.Source, error) {
	f, err := fh.Open()
	if err != nil {
		return tabular.Source{}, fmt.Errorf("failed to open upload %s: %w", fh.Filename, err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return tabular.Source{}, fmt.Errorf("failed to read upload %s: %w", fh.Filename, err)
	}
	return tabular.Source{Name: fh.Filename, Data: data}, nil
}

// formFile returns the required single upload for a field.
func formFile(c *gin.Context, field string) (tabular.Source, error) {
	fh, err := c.FormFile(field)
	if err != nil {
		return tabular.Source{}, apperrors.NewValidationError(
			fmt.Sprintf("missing required file field %q", field), err)
	}
	src, err := readUpload(fh)
	if err != nil {
		return tabular.Source{}, apperrors.NewInternalError("failed to read upload", err)
	}
	return src, nil
}

// optionalFormFile returns the upload for a field, or a zero Source when the
// field is absent.
func optionalFormFile(c *gin.Context, field string) (tabular.Source, error) {
	fh, err := c.FormFile(field)
	if err != nil {
		if err == http.ErrMissingFile {
			return tabular.Source{}, nil
		}
		// gin wraps the missing-file case in its own error for empty forms.
		if c.Request.MultipartForm == nil || len(c.Request.MultipartForm.File[field]) == 0 {
			return tabular.Source{}, nil
		}
		return tabular.Source{}, apperrors.NewValidationError(
			fmt.Sprintf("invalid file field %q", field), err)
	}
	src, err := readUpload(fh)
	if err != nil {
		return tabular.Source{}, apperrors.NewInternalError("failed to read upload", err)
	}
	return src, nil
}

// formFiles returns every upload for a repeated field. At least one file is
// required.
func formFiles(c *gin.Context, field string) ([]tabular.Source, error) {
	form, err := c.MultipartForm()
	if err != nil {
		return nil, apperrors.NewValidationError("request is not a multipart form", err)
	}
	headers := form.File[field]
	if len(headers) == 0 {
		return nil, apperrors.NewValidationError(
			fmt.Sprintf("missing required file field %q", field), nil)
	}
	srcs := make([]tabular.Source, 0, len(headers))
	for _, fh := range headers {
		src, err := readUpload(fh)
		if err != nil {
			return nil, apperrors.NewInternalError("failed to read upload", err)
		}
		srcs = append(srcs, src)
	}
	return srcs, nil
}

// sheetPreview is one sheet of a JSON preview response.
type sheetPreview struct {
	Name      string     `json:"name"`
	Columns   []string   `json:"columns"`
	Rows      [][]string `json:"rows"`
	TotalRows int        `json:"total_rows"`
}

// previewResponse is the JSON body returned for ?preview=1.
type previewResponse struct {
	Filename string         `json:"filename"`
	Warnings []string       `json:"warnings,omitempty"`
	Sheets   []sheetPreview `json:"sheets"`
}

// respond writes the criterion result: a JSON preview when ?preview=1, the
// workbook attachment otherwise.
func (h *Handlers) respond(c *gin.Context, result *criteria.Result) {
	if c.Query("preview") == "1" {
		resp := previewResponse{Filename: result.Filename, Warnings: result.Warnings}
		for _, sheet := range result.Sheets {
			p := sheetPreview{
				Name:      sheet.Name,
				Columns:   sheet.Table.Columns(),
				TotalRows: sheet.Table.NumRows(),
			}
			limit := min(h.config.PreviewRows, sheet.Table.NumRows())
			for i := 0; i < limit; i++ {
				p.Rows = append(p.Rows, sheet.Table.Row(i))
			}
			resp.Sheets = append(resp.Sheets, p)
		}
		c.JSON(http.StatusOK, resp)
		return
	}

	data, err := export.WriteWorkbook(result.Sheets)
	if err != nil {
		h.abortError(c, apperrors.NewInternalError("failed to build workbook", err))
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", result.Filename))
	c.Header("X-Warnings-Count", fmt.Sprintf("%d", len(result.Warnings)))
	c.Data(http.StatusOK, xlsxContentType, data)
}

// abortError converts an error to an AppError and writes the JSON response.
// Internal errors are logged with their cause; the client sees only the
// generic message.
func (h *Handlers) abortError(c *gin.Context, err error) {
	appErr := apperrors.FromPipeline(err).
		WithContext(c.Request.Method + " " + c.Request.URL.Path)
	if appErr.Code >= http.StatusInternalServerError {
		log.Printf("ERROR %s: %v request_id=%s",
			appErr.Context, appErr, middleware.GetRequestID(c))
	}
	c.AbortWithStatusJSON(appErr.Code, gin.H{
		"error":      appErr.UserMessage(),
		"request_id": middleware.GetRequestID(c),
	})
}

// logRun records a completed criterion run in the audit trail. The trail is
// best-effort: a write failure is logged, never surfaced to the user.
func (h *Handlers) logRun(c *gin.Context, action, note string) {
	if h.audit == nil {
		return
	}
	user := c.GetHeader("X-Audit-User")
	if err := h.audit.Log(user, action, note); err != nil {
		log.Printf("Failed to write audit entry for %s: %v", action, err)
	}
}
