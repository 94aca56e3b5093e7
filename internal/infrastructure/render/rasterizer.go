// Package render rasterizes laid-out document pages with MuPDF.
package render

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/draw"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/gen2brain/go-fitz"
	"go.uber.org/zap"
	xdraw "golang.org/x/image/draw"

	"github.com/garyjia/caredoc/internal/application/port"
	"github.com/garyjia/caredoc/internal/domain/apperr"
	"github.com/garyjia/caredoc/internal/domain/document"
)

// BaseDPI is the logical resolution pages are laid out at
const BaseDPI = 96.0

// Config configures the rasterizer
type Config struct {
	// SettleDelay is waited before each capture
	SettleDelay time.Duration
	// DPI is the capture resolution; 192 doubles the logical size
	DPI float64
	// FontPath is copied next to each page so the layout can load it
	FontPath string
	// TempDir holds the per-page work directories; empty uses os.TempDir
	TempDir string
}

// Rasterizer implements port.Rasterizer over go-fitz
type Rasterizer struct {
	cfg    Config
	logger *zap.Logger
}

var _ port.Rasterizer = (*Rasterizer)(nil)

// NewRasterizer creates a rasterizer
func NewRasterizer(cfg Config, logger *zap.Logger) *Rasterizer {
	if cfg.DPI <= 0 {
		cfg.DPI = 2 * BaseDPI
	}
	return &Rasterizer{cfg: cfg, logger: logger}
}

// Scale is the ratio between output pixels and logical pixels
func (r *Rasterizer) Scale() float64 {
	return r.cfg.DPI / BaseDPI
}

// Rasterize renders page to a PNG of exactly Width×Height scaled pixels
func (r *Rasterizer) Rasterize(ctx context.Context, page *document.Page) ([]byte, error) {
	if page == nil || len(page.HTML) == 0 {
		return nil, apperr.Render(nil, "렌더링할 문서가 없습니다.")
	}

	if err := r.settle(ctx); err != nil {
		return nil, err
	}

	dir, err := os.MkdirTemp(r.cfg.TempDir, "caredoc-page-*")
	if err != nil {
		return nil, apperr.Render(err, apperr.MsgRenderFailed)
	}
	defer os.RemoveAll(dir)

	if r.cfg.FontPath != "" {
		if err := copyFile(r.cfg.FontPath, filepath.Join(dir, FontFileName(r.cfg.FontPath))); err != nil {
			r.logger.Warn("Failed to stage font", zap.String("font", r.cfg.FontPath), zap.Error(err))
		}
	}

	pagePath := filepath.Join(dir, "page.xhtml")
	if err := os.WriteFile(pagePath, page.HTML, 0600); err != nil {
		return nil, apperr.Render(err, apperr.MsgRenderFailed)
	}

	doc, err := fitz.New(pagePath)
	if err != nil {
		return nil, apperr.Render(fmt.Errorf("open page: %w", err), apperr.MsgRenderFailed)
	}
	defer doc.Close()

	if doc.NumPage() > 1 {
		r.logger.Warn("Document overflowed onto extra pages; only the first is captured",
			zap.String("document", string(page.Type)),
			zap.Int("pages", doc.NumPage()))
	}

	img, err := doc.ImageDPI(0, r.cfg.DPI)
	if err != nil {
		return nil, apperr.Render(fmt.Errorf("rasterize page: %w", err), apperr.MsgRenderFailed)
	}

	width := int(float64(page.Width)*r.Scale() + 0.5)
	height := int(float64(page.Height)*r.Scale() + 0.5)
	canvas := Normalize(img, width, height)

	var buf bytes.Buffer
	if err := png.Encode(&buf, canvas); err != nil {
		return nil, apperr.Render(fmt.Errorf("encode png: %w", err), apperr.MsgRenderFailed)
	}

	r.logger.Debug("Page rasterized",
		zap.String("document", string(page.Type)),
		zap.Int("width", width),
		zap.Int("height", height),
		zap.Int("bytes", buf.Len()))
	return buf.Bytes(), nil
}

// settle waits for the configured delay or until ctx is done
func (r *Rasterizer) settle(ctx context.Context) error {
	if r.cfg.SettleDelay <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(r.cfg.SettleDelay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return apperr.Render(ctx.Err(), apperr.MsgRenderFailed)
	case <-timer.C:
		return nil
	}
}

// Normalize places img on a white canvas of exactly width×height. A source
// of a different size is scaled to the canvas width keeping its aspect
// ratio and anchored at the top.
func Normalize(img image.Image, width, height int) *image.RGBA {
	canvas := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(canvas, canvas.Bounds(), image.White, image.Point{}, draw.Src)

	b := img.Bounds()
	if b.Dx() == width && b.Dy() == height {
		draw.Draw(canvas, canvas.Bounds(), img, b.Min, draw.Over)
		return canvas
	}
	if b.Dx() == 0 || b.Dy() == 0 {
		return canvas
	}

	scaledHeight := b.Dy() * width / b.Dx()
	target := image.Rect(0, 0, width, scaledHeight)
	xdraw.CatmullRom.Scale(canvas, target, img, b, xdraw.Over, nil)
	return canvas
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
