package port

import (
	"context"
	"strings"

	"github.com/garyjia/caredoc/internal/domain/document"
	"github.com/garyjia/caredoc/internal/domain/entity"
)

// ExtractionInput is the raw material handed to a language model. At least
// one of Text or Image is set.
type ExtractionInput struct {
	Text     string
	Image    []byte
	MIMEType string
}

// HasText reports whether the input carries non-blank text
func (in ExtractionInput) HasText() bool {
	return strings.TrimSpace(in.Text) != ""
}

// HasImage reports whether the input carries image bytes
func (in ExtractionInput) HasImage() bool {
	return len(in.Image) > 0
}

// Extractor turns free-form text or an image into a partial record
type Extractor interface {
	Extract(ctx context.Context, in ExtractionInput) (*entity.PartialRecord, error)
	Name() string
}

// Rasterizer converts a laid-out page into PNG bytes
type Rasterizer interface {
	Rasterize(ctx context.Context, page *document.Page) ([]byte, error)
}

// PageConverter turns the first page of a PDF into a JPEG image
type PageConverter interface {
	FirstPageJPEG(pdf []byte) ([]byte, error)
}

// LedgerExporter writes the issue history as a spreadsheet
type LedgerExporter interface {
	ExportHistory(entries []entity.IssueHistoryEntry) ([]byte, error)
}
