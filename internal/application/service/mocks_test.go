package service

import (
	"context"
	"sync"
	"time"

	"github.com/garyjia/caredoc/internal/application/port"
	"github.com/garyjia/caredoc/internal/domain/document"
	"github.com/garyjia/caredoc/internal/domain/entity"
)

type mockLogger struct{}

func (m *mockLogger) Info(msg string, keysAndValues ...interface{})  {}
func (m *mockLogger) Warn(msg string, keysAndValues ...interface{})  {}
func (m *mockLogger) Error(msg string, keysAndValues ...interface{}) {}

// mockStore is a map-backed key-value store with overridable failures
type mockStore struct {
	mu         sync.Mutex
	data       map[string][]byte
	setFunc    func(ctx context.Context, key string, value []byte) error
	deleteFunc func(ctx context.Context, key string) error
}

func newMockStore() *mockStore {
	return &mockStore{data: make(map[string][]byte)}
}

func (m *mockStore) Get(ctx context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	if !ok {
		return nil, port.ErrKeyNotFound
	}
	return v, nil
}

func (m *mockStore) Set(ctx context.Context, key string, value []byte) error {
	if m.setFunc != nil {
		if err := m.setFunc(ctx, key, value); err != nil {
			return err
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	return nil
}

func (m *mockStore) Delete(ctx context.Context, key string) error {
	if m.deleteFunc != nil {
		return m.deleteFunc(ctx, key)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

type mockExtractor struct {
	extractFunc func(ctx context.Context, in port.ExtractionInput) (*entity.PartialRecord, error)
	calls       []port.ExtractionInput
}

func (m *mockExtractor) Extract(ctx context.Context, in port.ExtractionInput) (*entity.PartialRecord, error) {
	m.calls = append(m.calls, in)
	if m.extractFunc != nil {
		return m.extractFunc(ctx, in)
	}
	return &entity.PartialRecord{}, nil
}

func (m *mockExtractor) Name() string { return "mock" }

type mockPageConverter struct {
	firstPageFunc func(pdf []byte) ([]byte, error)
}

func (m *mockPageConverter) FirstPageJPEG(pdf []byte) ([]byte, error) {
	if m.firstPageFunc != nil {
		return m.firstPageFunc(pdf)
	}
	return []byte{0xff, 0xd8, 0xff}, nil
}

type mockRasterizer struct {
	mu            sync.Mutex
	rasterizeFunc func(ctx context.Context, page *document.Page) ([]byte, error)
	rendered      []entity.DocumentType
}

func (m *mockRasterizer) Rasterize(ctx context.Context, page *document.Page) ([]byte, error) {
	m.mu.Lock()
	m.rendered = append(m.rendered, page.Type)
	m.mu.Unlock()
	if m.rasterizeFunc != nil {
		return m.rasterizeFunc(ctx, page)
	}
	return []byte("png:" + string(page.Type)), nil
}

type mockFileStorage struct {
	mu      sync.Mutex
	files   map[string][]byte
	order   []string
	readErr error
}

func newMockFileStorage() *mockFileStorage {
	return &mockFileStorage{files: make(map[string][]byte)}
}

func (m *mockFileStorage) Save(ctx context.Context, path string, content []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.files[path] = content
	m.order = append(m.order, path)
	return nil
}

func (m *mockFileStorage) Read(ctx context.Context, path string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.readErr != nil {
		return nil, m.readErr
	}
	return m.files[path], nil
}

func (m *mockFileStorage) Exists(ctx context.Context, path string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.files[path]
	return ok
}

func (m *mockFileStorage) Delete(ctx context.Context, path string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.files, path)
	return nil
}

func (m *mockFileStorage) GetFullPath(relativePath string) string {
	return "/exports/" + relativePath
}

type mockLedger struct {
	exportFunc func(entries []entity.IssueHistoryEntry) ([]byte, error)
}

func (m *mockLedger) ExportHistory(entries []entity.IssueHistoryEntry) ([]byte, error) {
	if m.exportFunc != nil {
		return m.exportFunc(entries)
	}
	return []byte("xlsx"), nil
}

type mockMetrics struct {
	mu          sync.Mutex
	extractions []string
	renders     []string
	issued      []string
}

func (m *mockMetrics) ObserveExtraction(provider, outcome string, d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.extractions = append(m.extractions, provider+":"+outcome)
}

func (m *mockMetrics) ObserveRender(docType, outcome string, d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.renders = append(m.renders, docType+":"+outcome)
}

func (m *mockMetrics) IncDocumentsIssued(docType string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.issued = append(m.issued, docType)
}

// 2026-10-01 03:04:05 UTC is 12:04:05 in UTC+9
var fixedNow = time.Date(2026, 10, 1, 3, 4, 5, 0, time.UTC)

func fixedClock() time.Time { return fixedNow }

func sampleRecord() entity.CaregiverRecord {
	return entity.CaregiverRecord{
		CompanyName:   "OOO 간병 서비스",
		CaregiverName: "홍길동",
		PatientName:   "김철수",
		StartDate:     "2026-10-01",
		EndDate:       "2026-10-05",
		TotalDays:     5,
		DailyRate:     80000,
		TotalAmount:   400000,
		IssueDate:     "2026-10-06",
	}
}
