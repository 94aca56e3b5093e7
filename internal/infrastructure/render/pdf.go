package render

import (
	"bytes"
	"fmt"
	"image/jpeg"

	"github.com/gen2brain/go-fitz"

	"github.com/garyjia/caredoc/internal/application/port"
)

// PDFConverter implements port.PageConverter with MuPDF
type PDFConverter struct {
	dpi     float64
	quality int
}

var _ port.PageConverter = (*PDFConverter)(nil)

// NewPDFConverter creates a converter rendering at dpi
func NewPDFConverter(dpi float64) *PDFConverter {
	if dpi <= 0 {
		dpi = 150
	}
	return &PDFConverter{dpi: dpi, quality: 90}
}

// FirstPageJPEG renders the first page of pdf as a JPEG
func (c *PDFConverter) FirstPageJPEG(pdf []byte) ([]byte, error) {
	doc, err := fitz.NewFromMemory(pdf)
	if err != nil {
		return nil, fmt.Errorf("failed to open PDF: %w", err)
	}
	defer doc.Close()

	if doc.NumPage() == 0 {
		return nil, fmt.Errorf("PDF has no pages")
	}

	img, err := doc.ImageDPI(0, c.dpi)
	if err != nil {
		return nil, fmt.Errorf("failed to render first page: %w", err)
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: c.quality}); err != nil {
		return nil, fmt.Errorf("failed to encode JPEG: %w", err)
	}
	return buf.Bytes(), nil
}
