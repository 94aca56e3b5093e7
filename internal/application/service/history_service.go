package service

import (
	"context"
	"encoding/json"
	"errors"
	"sync"

	"github.com/google/uuid"

	"github.com/garyjia/caredoc/internal/application/port"
	"github.com/garyjia/caredoc/internal/domain/apperr"
	"github.com/garyjia/caredoc/internal/domain/entity"
)

// ErrHistoryEntryNotFound is returned when deleting an unknown entry
var ErrHistoryEntryNotFound = errors.New("history entry not found")

// HistoryService keeps the newest-first list of issued documents
type HistoryService interface {
	Append(ctx context.Context, docType entity.DocumentType, r entity.CaregiverRecord) (*entity.IssueHistoryEntry, error)
	List(ctx context.Context) []entity.IssueHistoryEntry
	Delete(ctx context.Context, id string) error
	Clear(ctx context.Context) error
	Ledger(ctx context.Context) ([]byte, error)
}

type historyServiceImpl struct {
	mu     sync.Mutex
	store  port.KeyValueStore
	ledger port.LedgerExporter
	clock  Clock
	newID  func() string
	logger Logger
}

// NewHistoryService creates a new HistoryService
func NewHistoryService(store port.KeyValueStore, ledger port.LedgerExporter, clock Clock, logger Logger) HistoryService {
	return &historyServiceImpl{
		store:  store,
		ledger: ledger,
		clock:  clock,
		newID:  uuid.NewString,
		logger: logger,
	}
}

// Append records one issued document at the front of the list
func (s *historyServiceImpl) Append(ctx context.Context, docType entity.DocumentType, r entity.CaregiverRecord) (*entity.IssueHistoryEntry, error) {
	entry := entity.IssueHistoryEntry{
		ID:            s.newID(),
		IssueDateTime: s.clock().In(entity.KST).Format(entity.DateTimeLayout),
		DocumentType:  docType,
		PatientName:   orDash(r.PatientName),
		CaregiverName: orDash(r.CaregiverName),
		TotalAmount:   r.TotalAmount,
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	entries := s.load(ctx)
	entries = append([]entity.IssueHistoryEntry{entry}, entries...)
	if err := s.save(ctx, entries); err != nil {
		return nil, err
	}

	s.logger.Info("Issue recorded", "id", entry.ID, "document_type", string(docType))
	return &entry, nil
}

// List returns every entry, newest first
func (s *historyServiceImpl) List(ctx context.Context) []entity.IssueHistoryEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load(ctx)
}

// Delete removes one entry by id
func (s *historyServiceImpl) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries := s.load(ctx)
	kept := entries[:0]
	found := false
	for _, e := range entries {
		if e.ID == id {
			found = true
			continue
		}
		kept = append(kept, e)
	}
	if !found {
		return ErrHistoryEntryNotFound
	}
	return s.save(ctx, kept)
}

// Clear removes every entry
func (s *historyServiceImpl) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.store.Delete(ctx, entity.KeyIssueHistory); err != nil {
		s.logger.Error("Failed to clear history", "error", err)
		return apperr.Storage(err, "발급 내역을 삭제하지 못했습니다.")
	}
	s.logger.Info("History cleared")
	return nil
}

// Ledger returns the history as a spreadsheet, newest first
func (s *historyServiceImpl) Ledger(ctx context.Context) ([]byte, error) {
	if s.ledger == nil {
		return nil, apperr.Configuration("발급 내역 내보내기가 설정되지 않았습니다.")
	}
	data, err := s.ledger.ExportHistory(s.List(ctx))
	if err != nil {
		s.logger.Error("Failed to build history ledger", "error", err)
		return nil, apperr.Storage(err, "발급 내역 파일을 만들지 못했습니다.")
	}
	return data, nil
}

// load reads the stored list; anything unreadable counts as empty
func (s *historyServiceImpl) load(ctx context.Context) []entity.IssueHistoryEntry {
	data, err := s.store.Get(ctx, entity.KeyIssueHistory)
	if err != nil {
		if !errors.Is(err, port.ErrKeyNotFound) {
			s.logger.Warn("Failed to read history", "error", err)
		}
		return []entity.IssueHistoryEntry{}
	}

	var entries []entity.IssueHistoryEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		s.logger.Warn("Stored history is malformed, treating as empty", "error", err)
		return []entity.IssueHistoryEntry{}
	}
	if entries == nil {
		entries = []entity.IssueHistoryEntry{}
	}
	return entries
}

func (s *historyServiceImpl) save(ctx context.Context, entries []entity.IssueHistoryEntry) error {
	data, err := json.Marshal(entries)
	if err != nil {
		return apperr.Storage(err, "발급 내역을 저장하지 못했습니다.")
	}
	if err := s.store.Set(ctx, entity.KeyIssueHistory, data); err != nil {
		s.logger.Error("Failed to save history", "error", err)
		return apperr.Storage(err, "발급 내역을 저장하지 못했습니다.")
	}
	return nil
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
