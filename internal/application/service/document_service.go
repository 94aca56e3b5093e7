package service

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/garyjia/caredoc/internal/application/port"
	"github.com/garyjia/caredoc/internal/domain/apperr"
	"github.com/garyjia/caredoc/internal/domain/document"
	"github.com/garyjia/caredoc/internal/domain/entity"
	"github.com/garyjia/caredoc/pkg/utils"
)

var (
	// ErrBusy is returned when an export is requested while another is running
	ErrBusy = errors.New("export already in progress")
	// ErrExportNotFound is returned for an exported file that does not exist
	ErrExportNotFound = errors.New("exported file not found")
)

// ExportResult describes one exported document
type ExportResult struct {
	DocumentType entity.DocumentType       `json:"documentType"`
	FileName     string                    `json:"fileName"`
	Path         string                    `json:"path"`
	Size         int                       `json:"size"`
	History      *entity.IssueHistoryEntry `json:"history"`
	PNG          []byte                    `json:"-"`
}

// DocumentService lays out, rasterizes and exports documents
type DocumentService interface {
	Preview(docType entity.DocumentType, r entity.CaregiverRecord) (*document.Page, error)
	Render(ctx context.Context, docType entity.DocumentType, r entity.CaregiverRecord) ([]byte, error)
	RenderDataURL(ctx context.Context, docType entity.DocumentType, r entity.CaregiverRecord) (string, error)
	Export(ctx context.Context, docType entity.DocumentType, r entity.CaregiverRecord) (*ExportResult, error)
	ExportAll(ctx context.Context, r entity.CaregiverRecord) ([]*ExportResult, error)
	OpenExport(ctx context.Context, name string) ([]byte, error)
	DeleteExport(ctx context.Context, name string) error
}

// ExportOptions configures document export
type ExportOptions struct {
	// PacingDelay is waited between documents of an export-all run
	PacingDelay time.Duration
}

type documentServiceImpl struct {
	templates  *document.Templates
	rasterizer port.Rasterizer
	files      port.FileStorage
	history    HistoryService
	opts       ExportOptions
	busy       atomic.Bool
	metrics    Metrics
	logger     Logger
}

// NewDocumentService creates a new DocumentService
func NewDocumentService(
	templates *document.Templates,
	rasterizer port.Rasterizer,
	files port.FileStorage,
	history HistoryService,
	opts ExportOptions,
	metrics Metrics,
	logger Logger,
) DocumentService {
	if metrics == nil {
		metrics = NopMetrics{}
	}
	return &documentServiceImpl{
		templates:  templates,
		rasterizer: rasterizer,
		files:      files,
		history:    history,
		opts:       opts,
		metrics:    metrics,
		logger:     logger,
	}
}

// Preview lays out one document without rasterizing it
func (s *documentServiceImpl) Preview(docType entity.DocumentType, r entity.CaregiverRecord) (*document.Page, error) {
	return s.templates.Build(docType, r)
}

// Render returns the PNG of one document. Nothing is saved or recorded.
func (s *documentServiceImpl) Render(ctx context.Context, docType entity.DocumentType, r entity.CaregiverRecord) ([]byte, error) {
	page, err := s.templates.Build(docType, r)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	png, err := s.rasterizer.Rasterize(ctx, page)
	s.metrics.ObserveRender(string(docType), outcome(err), time.Since(start))
	if err != nil {
		s.logger.Error("Failed to rasterize document", "document_type", string(docType), "error", err)
		return nil, err
	}
	return png, nil
}

// RenderDataURL returns the PNG of one document as a data URL
func (s *documentServiceImpl) RenderDataURL(ctx context.Context, docType entity.DocumentType, r entity.CaregiverRecord) (string, error) {
	png, err := s.Render(ctx, docType, r)
	if err != nil {
		return "", err
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(png), nil
}

// Export renders one document, saves it and records it in the history
func (s *documentServiceImpl) Export(ctx context.Context, docType entity.DocumentType, r entity.CaregiverRecord) (*ExportResult, error) {
	if !s.busy.CompareAndSwap(false, true) {
		return nil, ErrBusy
	}
	defer s.busy.Store(false)

	return s.exportOne(ctx, docType, r)
}

// ExportAll exports the four documents one after another in export order.
// The first failure stops the run; documents already exported stay
// exported and recorded.
func (s *documentServiceImpl) ExportAll(ctx context.Context, r entity.CaregiverRecord) ([]*ExportResult, error) {
	if !s.busy.CompareAndSwap(false, true) {
		return nil, ErrBusy
	}
	defer s.busy.Store(false)

	results := make([]*ExportResult, 0, len(entity.ExportOrder))
	for i, docType := range entity.ExportOrder {
		if i > 0 {
			if err := s.pace(ctx); err != nil {
				return results, err
			}
		}

		res, err := s.exportOne(ctx, docType, r)
		if err != nil {
			return results, fmt.Errorf("export %s: %w", docType, err)
		}
		results = append(results, res)
	}

	s.logger.Info("All documents exported", "count", len(results), "patient_name", r.PatientName)
	return results, nil
}

func (s *documentServiceImpl) exportOne(ctx context.Context, docType entity.DocumentType, r entity.CaregiverRecord) (*ExportResult, error) {
	png, err := s.Render(ctx, docType, r)
	if err != nil {
		return nil, err
	}

	name := FileName(docType, r)
	if err := s.files.Save(ctx, name, png); err != nil {
		s.logger.Error("Failed to save document", "file", name, "error", err)
		return nil, fmt.Errorf("save %s: %w", name, err)
	}

	entry, err := s.history.Append(ctx, docType, r)
	if err != nil {
		return nil, err
	}
	s.metrics.IncDocumentsIssued(string(docType))

	s.logger.Info("Document exported", "document_type", string(docType), "file", name, "size", len(png))
	return &ExportResult{
		DocumentType: docType,
		FileName:     name,
		Path:         s.files.GetFullPath(name),
		Size:         len(png),
		History:      entry,
		PNG:          png,
	}, nil
}

// OpenExport reads a previously exported PNG by its file name
func (s *documentServiceImpl) OpenExport(ctx context.Context, name string) ([]byte, error) {
	if err := validateExportName(name); err != nil {
		return nil, err
	}
	if !s.files.Exists(ctx, name) {
		return nil, ErrExportNotFound
	}

	data, err := s.files.Read(ctx, name)
	if err != nil {
		s.logger.Error("Failed to read exported document", "file", name, "error", err)
		return nil, apperr.Storage(err, "저장된 서류를 읽지 못했습니다.")
	}
	return data, nil
}

// DeleteExport removes a previously exported PNG. History is not touched.
func (s *documentServiceImpl) DeleteExport(ctx context.Context, name string) error {
	if err := validateExportName(name); err != nil {
		return err
	}
	if !s.files.Exists(ctx, name) {
		return ErrExportNotFound
	}

	if err := s.files.Delete(ctx, name); err != nil {
		s.logger.Error("Failed to delete exported document", "file", name, "error", err)
		return apperr.Storage(err, "저장된 서류를 삭제하지 못했습니다.")
	}
	s.logger.Info("Exported document deleted", "file", name)
	return nil
}

// validateExportName accepts only names FileName could have produced
func validateExportName(name string) error {
	if !strings.HasSuffix(name, ".png") || utils.SanitizeFileName(name) != name {
		return apperr.Validation("파일 이름이 올바르지 않습니다.")
	}
	return nil
}

func (s *documentServiceImpl) pace(ctx context.Context) error {
	if s.opts.PacingDelay <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(s.opts.PacingDelay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// FileName is "{patient}_{label}_{issueDate}.png" with placeholders for
// missing values, made safe for the filesystem.
func FileName(docType entity.DocumentType, r entity.CaregiverRecord) string {
	patient := r.PatientName
	if patient == "" {
		patient = "환자"
	}
	issueDate := r.IssueDate
	if issueDate == "" {
		issueDate = "발급일"
	}
	return utils.SanitizeFileName(fmt.Sprintf("%s_%s_%s.png", patient, docType.Label(), issueDate))
}
