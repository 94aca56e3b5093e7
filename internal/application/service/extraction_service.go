package service

import (
	"context"
	"encoding/base64"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/garyjia/caredoc/internal/application/port"
	"github.com/garyjia/caredoc/internal/domain/apperr"
	"github.com/garyjia/caredoc/internal/domain/entity"
)

// AnalyzeRequest is the raw input of an extraction
type AnalyzeRequest struct {
	Text        string `json:"text"`
	ImageBase64 string `json:"imageBase64"`
	MIMEType    string `json:"mimeType"`
}

// ExtractionService turns free-form input into a partial record
type ExtractionService interface {
	Analyze(ctx context.Context, req AnalyzeRequest) (*entity.PartialRecord, error)
}

const mimePDF = "application/pdf"

var dataURLPrefix = regexp.MustCompile(`^data:[\w.+-]+/[\w.+-]+;base64,`)

type extractionServiceImpl struct {
	extractor port.Extractor
	pdf       port.PageConverter
	metrics   Metrics
	logger    Logger
}

// NewExtractionService creates a new ExtractionService
func NewExtractionService(extractor port.Extractor, pdf port.PageConverter, metrics Metrics, logger Logger) ExtractionService {
	if metrics == nil {
		metrics = NopMetrics{}
	}
	return &extractionServiceImpl{
		extractor: extractor,
		pdf:       pdf,
		metrics:   metrics,
		logger:    logger,
	}
}

// Analyze validates the input, prepares the image and makes a single
// extractor call. There is no retry.
func (s *extractionServiceImpl) Analyze(ctx context.Context, req AnalyzeRequest) (*entity.PartialRecord, error) {
	in, err := s.prepare(req)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	result, err := s.extractor.Extract(ctx, in)
	s.metrics.ObserveExtraction(s.extractor.Name(), outcome(err), time.Since(start))
	if err != nil {
		s.logger.Error("Extraction failed",
			"provider", s.extractor.Name(),
			"error", err)
		return nil, err
	}

	s.logger.Info("Extraction succeeded",
		"provider", s.extractor.Name(),
		"duration_ms", time.Since(start).Milliseconds())
	return result, nil
}

func (s *extractionServiceImpl) prepare(req AnalyzeRequest) (port.ExtractionInput, error) {
	in := port.ExtractionInput{Text: req.Text, MIMEType: strings.TrimSpace(req.MIMEType)}

	payload := strings.TrimSpace(req.ImageBase64)
	if payload != "" {
		image, err := decodeImage(payload)
		if err != nil {
			return in, apperr.Validation("이미지 데이터가 올바르지 않습니다.")
		}
		in.Image = image
	}

	if !in.HasText() && !in.HasImage() {
		return in, apperr.Validation(apperr.MsgMissingInput)
	}
	if !in.HasImage() {
		in.MIMEType = ""
		return in, nil
	}

	if in.MIMEType == "" {
		in.MIMEType = http.DetectContentType(in.Image)
	}
	if in.MIMEType == mimePDF {
		if s.pdf == nil {
			return in, apperr.Validation("PDF 파일은 지원하지 않습니다.")
		}
		jpeg, err := s.pdf.FirstPageJPEG(in.Image)
		if err != nil {
			s.logger.Warn("Failed to convert PDF", "error", err)
			return in, apperr.Validation("PDF 파일을 읽을 수 없습니다.")
		}
		in.Image = jpeg
		in.MIMEType = "image/jpeg"
	}
	return in, nil
}

// decodeImage strips an optional data-URL prefix and decodes the base64 body
func decodeImage(payload string) ([]byte, error) {
	payload = dataURLPrefix.ReplaceAllString(payload, "")
	payload = strings.Map(func(r rune) rune {
		if r == '\n' || r == '\r' || r == ' ' {
			return -1
		}
		return r
	}, payload)

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return base64.RawStdEncoding.DecodeString(strings.TrimRight(payload, "="))
	}
	return data, nil
}
