// Package document maps a caregiver record onto the four issued documents
// and renders each as a fixed-size XHTML page.
package document

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"time"

	"github.com/garyjia/caredoc/internal/domain/apperr"
	"github.com/garyjia/caredoc/internal/domain/entity"
)

//go:embed templates/*.xhtml
var templateFS embed.FS

// Page is one document laid out for rasterization
type Page struct {
	Type   entity.DocumentType `json:"type"`
	Title  string              `json:"title"`
	Width  int                 `json:"width"`
	Height int                 `json:"height"`
	View   interface{}         `json:"view"`
	HTML   []byte              `json:"-"`
}

// Assets are the optional images and font embedded in every page
type Assets struct {
	// Stamp and Watermark are data URIs; empty means not drawn
	Stamp     string
	Watermark string
	// FontFile is a file name resolved next to the page by the rasterizer
	FontFile string
}

// Options configures a template set
type Options struct {
	Invoice InvoiceSettings
	Assets  Assets
	Now     func() time.Time
}

type builder func(r entity.CaregiverRecord) interface{}

// Templates holds the registered document templates
type Templates struct {
	set      *template.Template
	opts     Options
	builders map[entity.DocumentType]builder
	names    map[entity.DocumentType]string
}

type pageData struct {
	Title     string
	Width     int
	Height    int
	Stamp     template.URL
	Watermark template.URL
	FontFile  string
	View      interface{}
}

// NewTemplates parses the embedded templates and registers all four documents
func NewTemplates(opts Options) (*Templates, error) {
	set, err := template.New("pages").
		Funcs(template.FuncMap{"money": FormatMoney}).
		ParseFS(templateFS, "templates/*.xhtml")
	if err != nil {
		return nil, fmt.Errorf("failed to parse document templates: %w", err)
	}

	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Invoice.FeePerDay == 0 {
		opts.Invoice.FeePerDay = DefaultFeePerDay
	}
	if opts.Invoice.BankAccount == "" {
		opts.Invoice.BankAccount = DefaultBankAccount
	}
	if opts.Invoice.AccountHolder == "" {
		opts.Invoice.AccountHolder = DefaultAccountHolder
	}

	t := &Templates{
		set:      set,
		opts:     opts,
		builders: make(map[entity.DocumentType]builder),
		names:    make(map[entity.DocumentType]string),
	}
	t.register(entity.DocumentAffiliation, "affiliation", func(r entity.CaregiverRecord) interface{} {
		return NewAffiliationView(r, t.opts.Now())
	})
	t.register(entity.DocumentUsage, "usage", func(r entity.CaregiverRecord) interface{} {
		return NewUsageView(r)
	})
	t.register(entity.DocumentReceipt, "receipt", func(r entity.CaregiverRecord) interface{} {
		return NewReceiptView(r, t.opts.Now())
	})
	t.register(entity.DocumentInvoice, "invoice", func(r entity.CaregiverRecord) interface{} {
		return NewInvoiceView(r, t.opts.Invoice)
	})
	return t, nil
}

func (t *Templates) register(docType entity.DocumentType, name string, b builder) {
	t.builders[docType] = b
	t.names[docType] = name
}

// Has reports whether a template is registered for docType
func (t *Templates) Has(docType entity.DocumentType) bool {
	_, ok := t.builders[docType]
	return ok
}

// Build lays out one document for r
func (t *Templates) Build(docType entity.DocumentType, r entity.CaregiverRecord) (*Page, error) {
	b, ok := t.builders[docType]
	if !ok {
		return nil, apperr.Render(nil, "등록되지 않은 문서 양식입니다: %s", docType)
	}

	page := &Page{
		Type:   docType,
		Title:  docType.Title(),
		Width:  entity.PageWidth,
		Height: entity.PageHeight,
		View:   b(r),
	}

	data := pageData{
		Title:     page.Title,
		Width:     page.Width,
		Height:    page.Height,
		Stamp:     template.URL(t.opts.Assets.Stamp),
		Watermark: template.URL(t.opts.Assets.Watermark),
		FontFile:  t.opts.Assets.FontFile,
		View:      page.View,
	}

	var buf bytes.Buffer
	if err := t.set.ExecuteTemplate(&buf, t.names[docType], data); err != nil {
		return nil, apperr.Render(err, apperr.MsgRenderFailed)
	}
	page.HTML = buf.Bytes()
	return page, nil
}

// BuildAll lays out every document in export order
func (t *Templates) BuildAll(r entity.CaregiverRecord) ([]*Page, error) {
	pages := make([]*Page, 0, len(entity.ExportOrder))
	for _, docType := range entity.ExportOrder {
		page, err := t.Build(docType, r)
		if err != nil {
			return nil, err
		}
		pages = append(pages, page)
	}
	return pages, nil
}
