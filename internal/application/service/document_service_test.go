package service

import (
	"context"
	"encoding/base64"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/garyjia/caredoc/internal/domain/apperr"
	"github.com/garyjia/caredoc/internal/domain/document"
	"github.com/garyjia/caredoc/internal/domain/entity"
)

type documentFixture struct {
	svc        DocumentService
	rasterizer *mockRasterizer
	files      *mockFileStorage
	history    HistoryService
	metrics    *mockMetrics
}

func newDocumentFixture(t *testing.T, opts ExportOptions) *documentFixture {
	t.Helper()
	templates, err := document.NewTemplates(document.Options{Now: fixedClock})
	require.NoError(t, err)

	f := &documentFixture{
		rasterizer: &mockRasterizer{},
		files:      newMockFileStorage(),
		history:    NewHistoryService(newMockStore(), nil, fixedClock, &mockLogger{}),
		metrics:    &mockMetrics{},
	}
	f.svc = NewDocumentService(templates, f.rasterizer, f.files, f.history, opts, f.metrics, &mockLogger{})
	return f
}

func TestFileName(t *testing.T) {
	assert.Equal(t, "김철수_영수증_2026-10-06.png", FileName(entity.DocumentReceipt, sampleRecord()))
	assert.Equal(t, "환자_청구서_발급일.png", FileName(entity.DocumentInvoice, entity.CaregiverRecord{}))

	r := sampleRecord()
	r.PatientName = "../김/철수"
	assert.Equal(t, "_김_철수_소속확인서_2026-10-06.png", FileName(entity.DocumentAffiliation, r))
}

func TestDocumentService_Preview(t *testing.T) {
	f := newDocumentFixture(t, ExportOptions{})

	page, err := f.svc.Preview(entity.DocumentUsage, sampleRecord())
	require.NoError(t, err)
	assert.Equal(t, entity.DocumentUsage, page.Type)
	assert.Contains(t, string(page.HTML), "400,000 원")
	assert.Empty(t, f.rasterizer.rendered)
}

func TestDocumentService_RenderDataURL(t *testing.T) {
	f := newDocumentFixture(t, ExportOptions{})

	url, err := f.svc.RenderDataURL(context.Background(), entity.DocumentReceipt, sampleRecord())
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(url, "data:image/png;base64,"))
	raw, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(url, "data:image/png;base64,"))
	require.NoError(t, err)
	assert.Equal(t, "png:RECEIPT", string(raw))

	assert.Empty(t, f.files.order)
	assert.Empty(t, f.history.List(context.Background()))
	assert.Equal(t, []string{"RECEIPT:success"}, f.metrics.renders)
}

func TestDocumentService_RenderUnknownType(t *testing.T) {
	f := newDocumentFixture(t, ExportOptions{})

	_, err := f.svc.Render(context.Background(), entity.DocumentType("MEMO"), sampleRecord())
	assert.True(t, errors.Is(err, apperr.ErrRender))
	assert.Empty(t, f.rasterizer.rendered)
}

func TestDocumentService_Export(t *testing.T) {
	f := newDocumentFixture(t, ExportOptions{})
	ctx := context.Background()

	res, err := f.svc.Export(ctx, entity.DocumentInvoice, sampleRecord())
	require.NoError(t, err)
	assert.Equal(t, "김철수_청구서_2026-10-06.png", res.FileName)
	assert.Equal(t, "/exports/김철수_청구서_2026-10-06.png", res.Path)
	assert.Equal(t, len("png:INVOICE"), res.Size)
	require.NotNil(t, res.History)
	assert.Equal(t, entity.DocumentInvoice, res.History.DocumentType)

	entries := f.history.List(ctx)
	require.Len(t, entries, 1)
	assert.Equal(t, res.History.ID, entries[0].ID)
	assert.Equal(t, []string{"INVOICE"}, f.metrics.issued)
}

func TestDocumentService_ExportAllOrder(t *testing.T) {
	f := newDocumentFixture(t, ExportOptions{PacingDelay: 5 * time.Millisecond})
	ctx := context.Background()

	start := time.Now()
	results, err := f.svc.ExportAll(ctx, sampleRecord())
	require.NoError(t, err)
	assert.GreaterOrEqual(t, time.Since(start), 15*time.Millisecond)

	require.Len(t, results, 4)
	for i, docType := range entity.ExportOrder {
		assert.Equal(t, docType, results[i].DocumentType)
	}
	assert.Equal(t, entity.ExportOrder, f.rasterizer.rendered)
	assert.Equal(t, []string{
		"김철수_영수증_2026-10-06.png",
		"김철수_사용확인서_2026-10-06.png",
		"김철수_소속확인서_2026-10-06.png",
		"김철수_청구서_2026-10-06.png",
	}, f.files.order)

	entries := f.history.List(ctx)
	require.Len(t, entries, 4)
	assert.Equal(t, entity.DocumentInvoice, entries[0].DocumentType)
	assert.Equal(t, entity.DocumentReceipt, entries[3].DocumentType)
}

func TestDocumentService_ExportAllStopsAtFirstFailure(t *testing.T) {
	f := newDocumentFixture(t, ExportOptions{})
	f.rasterizer.rasterizeFunc = func(ctx context.Context, page *document.Page) ([]byte, error) {
		if page.Type == entity.DocumentAffiliation {
			return nil, apperr.Render(errors.New("engine crashed"), apperr.MsgRenderFailed)
		}
		return []byte("png"), nil
	}
	ctx := context.Background()

	results, err := f.svc.ExportAll(ctx, sampleRecord())
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperr.ErrRender))
	assert.Len(t, results, 2)
	assert.Len(t, f.history.List(ctx), 2)
	assert.NotContains(t, f.rasterizer.rendered, entity.DocumentInvoice)

	// the guard is released after a failed run
	_, err = f.svc.Export(ctx, entity.DocumentInvoice, sampleRecord())
	assert.NoError(t, err)
}

func TestDocumentService_BusyGuard(t *testing.T) {
	f := newDocumentFixture(t, ExportOptions{})
	started := make(chan struct{})
	release := make(chan struct{})
	var once sync.Once
	f.rasterizer.rasterizeFunc = func(ctx context.Context, page *document.Page) ([]byte, error) {
		once.Do(func() { close(started) })
		<-release
		return []byte("png"), nil
	}
	ctx := context.Background()

	done := make(chan error, 1)
	go func() {
		_, err := f.svc.ExportAll(ctx, sampleRecord())
		done <- err
	}()
	<-started

	_, err := f.svc.Export(ctx, entity.DocumentReceipt, sampleRecord())
	assert.ErrorIs(t, err, ErrBusy)
	_, err = f.svc.ExportAll(ctx, sampleRecord())
	assert.ErrorIs(t, err, ErrBusy)

	close(release)
	require.NoError(t, <-done)
}

func TestDocumentService_ExportAllCancelledDuringPacing(t *testing.T) {
	f := newDocumentFixture(t, ExportOptions{PacingDelay: time.Hour})
	ctx, cancel := context.WithCancel(context.Background())
	f.rasterizer.rasterizeFunc = func(context.Context, *document.Page) ([]byte, error) {
		cancel()
		return []byte("png"), nil
	}

	results, err := f.svc.ExportAll(ctx, sampleRecord())
	assert.ErrorIs(t, err, context.Canceled)
	assert.Len(t, results, 1)
}

func TestDocumentService_OpenAndDeleteExport(t *testing.T) {
	f := newDocumentFixture(t, ExportOptions{})
	ctx := context.Background()

	res, err := f.svc.Export(ctx, entity.DocumentReceipt, sampleRecord())
	require.NoError(t, err)

	data, err := f.svc.OpenExport(ctx, res.FileName)
	require.NoError(t, err)
	assert.Equal(t, "png:RECEIPT", string(data))

	_, err = f.svc.OpenExport(ctx, "김철수_청구서_2026-10-06.png")
	assert.ErrorIs(t, err, ErrExportNotFound)

	for _, name := range []string{"../secret.png", "a/b.png", "notes.txt", ""} {
		_, err = f.svc.OpenExport(ctx, name)
		assert.ErrorIs(t, err, apperr.ErrValidation, name)
		assert.ErrorIs(t, f.svc.DeleteExport(ctx, name), apperr.ErrValidation, name)
	}

	require.NoError(t, f.svc.DeleteExport(ctx, res.FileName))
	assert.ErrorIs(t, f.svc.DeleteExport(ctx, res.FileName), ErrExportNotFound)

	assert.Len(t, f.history.List(ctx), 1, "deleting the file keeps its history entry")
}

func TestDocumentService_OpenExportReadFailure(t *testing.T) {
	f := newDocumentFixture(t, ExportOptions{})
	ctx := context.Background()

	res, err := f.svc.Export(ctx, entity.DocumentUsage, sampleRecord())
	require.NoError(t, err)

	f.files.readErr = errors.New("disk gone")
	_, err = f.svc.OpenExport(ctx, res.FileName)
	assert.ErrorIs(t, err, apperr.ErrStorage)
}
