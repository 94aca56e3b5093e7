package http

import (
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/garyjia/caredoc/internal/application/service"
	"github.com/garyjia/caredoc/internal/domain/apperr"
	"github.com/garyjia/caredoc/internal/domain/entity"
)

const (
	contentTypeXHTML = "application/xhtml+xml; charset=utf-8"
	contentTypePNG   = "image/png"
	contentTypeXLSX  = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	ledgerFileName   = "발급내역.xlsx"
	msgBadRequest    = "요청 형식이 올바르지 않습니다."
)

// Handlers contains all HTTP request handlers
type Handlers struct {
	services Services
	health   HealthChecker
	logger   Logger
}

// NewHandlers creates a new Handlers instance
func NewHandlers(services Services, health HealthChecker, logger Logger) *Handlers {
	return &Handlers{
		services: services,
		health:   health,
		logger:   logger,
	}
}

// Response represents a standard JSON response
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status     string      `json:"status"`
	Timestamp  string      `json:"timestamp"`
	Version    string      `json:"version"`
	Components interface{} `json:"components,omitempty"`
}

// MergeRequest is the body of POST /api/records/merge
type MergeRequest struct {
	Record    entity.CaregiverRecord `json:"record"`
	Extracted *entity.PartialRecord  `json:"extracted"`
}

// EditRequest is the body of POST /api/records/edit
type EditRequest struct {
	Record entity.CaregiverRecord `json:"record"`
	Field  string                 `json:"field" binding:"required"`
	Value  interface{}            `json:"value"`
}

// DocumentRequest is the body of the document endpoints
type DocumentRequest struct {
	Record entity.CaregiverRecord `json:"record"`
}

// RenderResponse is returned by the render endpoint in data URL format
type RenderResponse struct {
	DocumentType entity.DocumentType       `json:"documentType"`
	FileName     string                    `json:"fileName"`
	DataURL      string                    `json:"dataUrl"`
	History      *entity.IssueHistoryEntry `json:"history,omitempty"`
}

// Version is reported by the health check
const Version = "1.0.0"

// HealthCheck handles GET /health
func (h *Handlers) HealthCheck(c *gin.Context) {
	response := HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Version:   Version,
	}

	status := http.StatusOK
	if h.health != nil {
		healthy, details := h.health.Check(c.Request.Context())
		response.Components = details
		if !healthy {
			response.Status = "degraded"
			status = http.StatusServiceUnavailable
		}
	}

	c.JSON(status, Response{
		Success: status == http.StatusOK,
		Data:    response,
	})
}

// Analyze handles POST /api/analyze
func (h *Handlers) Analyze(c *gin.Context) {
	var req service.AnalyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("Invalid analyze request", "error", err)
		h.fail(c, http.StatusBadRequest, msgBadRequest)
		return
	}

	result, err := h.services.Extraction.Analyze(c.Request.Context(), req)
	if err != nil {
		h.respondError(c, err, apperr.MsgExtractFailed)
		return
	}

	c.JSON(http.StatusOK, Response{
		Success: true,
		Data:    result,
	})
}

// NewRecord handles GET /api/records/new
func (h *Handlers) NewRecord(c *gin.Context) {
	c.JSON(http.StatusOK, Response{
		Success: true,
		Data:    h.services.Records.New(c.Request.Context()),
	})
}

// MergeRecord handles POST /api/records/merge
func (h *Handlers) MergeRecord(c *gin.Context) {
	var req MergeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.fail(c, http.StatusBadRequest, msgBadRequest)
		return
	}

	c.JSON(http.StatusOK, Response{
		Success: true,
		Data:    h.services.Records.Merge(req.Record, req.Extracted),
	})
}

// EditRecord handles POST /api/records/edit
func (h *Handlers) EditRecord(c *gin.Context) {
	var req EditRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.fail(c, http.StatusBadRequest, msgBadRequest)
		return
	}

	record, err := h.services.Records.Edit(req.Record, req.Field, req.Value)
	if err != nil {
		h.respondError(c, err, "항목을 수정하지 못했습니다.")
		return
	}

	c.JSON(http.StatusOK, Response{
		Success: true,
		Data:    record,
	})
}

// GetCompanyProfile handles GET /api/settings/company
func (h *Handlers) GetCompanyProfile(c *gin.Context) {
	c.JSON(http.StatusOK, Response{
		Success: true,
		Data:    h.services.Settings.GetCompanyProfile(c.Request.Context()),
	})
}

// SaveCompanyProfile handles PUT /api/settings/company
func (h *Handlers) SaveCompanyProfile(c *gin.Context) {
	var profile entity.CompanyProfile
	if err := c.ShouldBindJSON(&profile); err != nil {
		h.fail(c, http.StatusBadRequest, msgBadRequest)
		return
	}

	if err := h.services.Settings.SaveCompanyProfile(c.Request.Context(), profile); err != nil {
		h.respondError(c, err, "설정을 저장하지 못했습니다.")
		return
	}

	c.JSON(http.StatusOK, Response{
		Success: true,
		Data:    profile,
	})
}

// ListHistory handles GET /api/history
func (h *Handlers) ListHistory(c *gin.Context) {
	c.JSON(http.StatusOK, Response{
		Success: true,
		Data:    h.services.History.List(c.Request.Context()),
	})
}

// DeleteHistoryEntry handles DELETE /api/history/:id
func (h *Handlers) DeleteHistoryEntry(c *gin.Context) {
	id := c.Param("id")
	if err := h.services.History.Delete(c.Request.Context(), id); err != nil {
		h.respondError(c, err, "발급 내역을 삭제하지 못했습니다.")
		return
	}

	c.JSON(http.StatusOK, Response{Success: true})
}

// ClearHistory handles DELETE /api/history
func (h *Handlers) ClearHistory(c *gin.Context) {
	if err := h.services.History.Clear(c.Request.Context()); err != nil {
		h.respondError(c, err, "발급 내역을 삭제하지 못했습니다.")
		return
	}

	c.JSON(http.StatusOK, Response{Success: true})
}

// ExportHistory handles GET /api/history/export
func (h *Handlers) ExportHistory(c *gin.Context) {
	data, err := h.services.History.Ledger(c.Request.Context())
	if err != nil {
		h.respondError(c, err, "발급 내역 파일을 만들지 못했습니다.")
		return
	}

	c.Header("Content-Disposition", attachment(ledgerFileName))
	c.Data(http.StatusOK, contentTypeXLSX, data)
}

// PreviewDocument handles POST /api/documents/:type/preview. The page is
// returned as XHTML, or as JSON with ?format=json.
func (h *Handlers) PreviewDocument(c *gin.Context) {
	docType, req, ok := h.bindDocument(c)
	if !ok {
		return
	}

	page, err := h.services.Documents.Preview(docType, req.Record)
	if err != nil {
		h.respondError(c, err, apperr.MsgRenderFailed)
		return
	}

	if c.Query("format") == "json" {
		c.JSON(http.StatusOK, Response{
			Success: true,
			Data: gin.H{
				"page": page,
				"html": string(page.HTML),
			},
		})
		return
	}
	c.Data(http.StatusOK, contentTypeXHTML, page.HTML)
}

// RenderDocument handles POST /api/documents/:type/render. The PNG is saved
// and recorded unless ?save=false; ?format=dataurl answers with JSON.
func (h *Handlers) RenderDocument(c *gin.Context) {
	docType, req, ok := h.bindDocument(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()
	asDataURL := c.Query("format") == "dataurl"

	if c.Query("save") == "false" {
		png, err := h.services.Documents.Render(ctx, docType, req.Record)
		if err != nil {
			h.respondError(c, err, apperr.MsgRenderFailed)
			return
		}
		h.writePNG(c, docType, service.FileName(docType, req.Record), png, nil, asDataURL)
		return
	}

	result, err := h.services.Documents.Export(ctx, docType, req.Record)
	if err != nil {
		h.respondError(c, err, apperr.MsgRenderFailed)
		return
	}
	h.writePNG(c, docType, result.FileName, result.PNG, result.History, asDataURL)
}

// ExportAll handles POST /api/documents/export
func (h *Handlers) ExportAll(c *gin.Context) {
	var req DocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.fail(c, http.StatusBadRequest, msgBadRequest)
		return
	}

	results, err := h.services.Documents.ExportAll(c.Request.Context(), req.Record)
	if err != nil {
		status, msg := h.classify(err, apperr.MsgRenderFailed)
		c.JSON(status, Response{
			Success: false,
			Data:    results,
			Error:   msg,
		})
		return
	}

	c.JSON(http.StatusOK, Response{
		Success: true,
		Data:    results,
	})
}

func (h *Handlers) bindDocument(c *gin.Context) (entity.DocumentType, DocumentRequest, bool) {
	var req DocumentRequest
	docType, ok := entity.ParseDocumentType(c.Param("type"))
	if !ok {
		h.fail(c, http.StatusNotFound, fmt.Sprintf("알 수 없는 문서 종류입니다: %s", c.Param("type")))
		return docType, req, false
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.fail(c, http.StatusBadRequest, msgBadRequest)
		return docType, req, false
	}
	return docType, req, true
}

func (h *Handlers) writePNG(c *gin.Context, docType entity.DocumentType, name string, png []byte, history *entity.IssueHistoryEntry, asDataURL bool) {
	if asDataURL {
		c.JSON(http.StatusOK, Response{
			Success: true,
			Data: RenderResponse{
				DocumentType: docType,
				FileName:     name,
				DataURL:      dataURL(png),
				History:      history,
			},
		})
		return
	}
	c.Header("Content-Disposition", attachment(name))
	c.Data(http.StatusOK, contentTypePNG, png)
}

// DownloadExport handles GET /api/exports/:name
func (h *Handlers) DownloadExport(c *gin.Context) {
	name := c.Param("name")
	data, err := h.services.Documents.OpenExport(c.Request.Context(), name)
	if err != nil {
		h.respondError(c, err, "저장된 서류를 읽지 못했습니다.")
		return
	}

	c.Header("Content-Disposition", attachment(name))
	c.Data(http.StatusOK, contentTypePNG, data)
}

// DeleteExport handles DELETE /api/exports/:name
func (h *Handlers) DeleteExport(c *gin.Context) {
	if err := h.services.Documents.DeleteExport(c.Request.Context(), c.Param("name")); err != nil {
		h.respondError(c, err, "저장된 서류를 삭제하지 못했습니다.")
		return
	}
	c.JSON(http.StatusOK, Response{Success: true})
}

// classify maps an error to a status and a user-facing message
func (h *Handlers) classify(err error, fallback string) (int, string) {
	switch {
	case errors.Is(err, apperr.ErrValidation):
		return http.StatusBadRequest, apperr.UserMessage(err, fallback)
	case errors.Is(err, service.ErrHistoryEntryNotFound):
		return http.StatusNotFound, "발급 내역을 찾을 수 없습니다."
	case errors.Is(err, service.ErrExportNotFound):
		return http.StatusNotFound, "저장된 서류를 찾을 수 없습니다."
	case errors.Is(err, service.ErrBusy):
		return http.StatusConflict, "다른 서류를 저장하는 중입니다. 잠시 후 다시 시도해 주세요."
	}
	return http.StatusInternalServerError, apperr.UserMessage(err, fallback)
}

func (h *Handlers) respondError(c *gin.Context, err error, fallback string) {
	status, msg := h.classify(err, fallback)
	if status >= http.StatusInternalServerError {
		h.logger.Error("Request failed", "path", c.FullPath(), "error", err)
	} else {
		h.logger.Warn("Request rejected", "path", c.FullPath(), "status", status, "error", err)
	}
	h.fail(c, status, msg)
}

func (h *Handlers) fail(c *gin.Context, status int, msg string) {
	c.JSON(status, Response{
		Success: false,
		Error:   msg,
	})
}

// attachment builds a Content-Disposition header for a UTF-8 file name
func attachment(name string) string {
	return fmt.Sprintf(`attachment; filename="download"; filename*=UTF-8''%s`, url.PathEscape(name))
}

func dataURL(png []byte) string {
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(png)
}
