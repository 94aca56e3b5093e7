package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/garyjia/caredoc/internal/domain/apperr"
	"github.com/garyjia/caredoc/internal/domain/entity"
)

func newTestHistory(store *mockStore, ledger *mockLedger) *historyServiceImpl {
	svc := NewHistoryService(store, ledger, fixedClock, &mockLogger{}).(*historyServiceImpl)
	n := 0
	svc.newID = func() string {
		n++
		return fmt.Sprintf("id-%d", n)
	}
	return svc
}

func TestHistoryService_AppendNewestFirst(t *testing.T) {
	svc := newTestHistory(newMockStore(), nil)
	ctx := context.Background()

	assert.Empty(t, svc.List(ctx))

	first, err := svc.Append(ctx, entity.DocumentReceipt, sampleRecord())
	require.NoError(t, err)
	assert.Equal(t, "id-1", first.ID)
	assert.Equal(t, "2026-10-01 12:04:05", first.IssueDateTime)
	assert.Equal(t, int64(400000), first.TotalAmount)

	_, err = svc.Append(ctx, entity.DocumentInvoice, entity.CaregiverRecord{})
	require.NoError(t, err)

	entries := svc.List(ctx)
	require.Len(t, entries, 2)
	assert.Equal(t, "id-2", entries[0].ID)
	assert.Equal(t, entity.DocumentInvoice, entries[0].DocumentType)
	assert.Equal(t, "-", entries[0].PatientName)
	assert.Equal(t, "-", entries[0].CaregiverName)
	assert.Equal(t, "id-1", entries[1].ID)
	assert.Equal(t, "김철수", entries[1].PatientName)
}

func TestHistoryService_DeleteAndClear(t *testing.T) {
	store := newMockStore()
	svc := newTestHistory(store, nil)
	ctx := context.Background()

	for _, docType := range entity.ExportOrder {
		_, err := svc.Append(ctx, docType, sampleRecord())
		require.NoError(t, err)
	}

	require.NoError(t, svc.Delete(ctx, "id-2"))
	entries := svc.List(ctx)
	require.Len(t, entries, 3)
	for _, e := range entries {
		assert.NotEqual(t, "id-2", e.ID)
	}

	assert.ErrorIs(t, svc.Delete(ctx, "missing"), ErrHistoryEntryNotFound)

	require.NoError(t, svc.Clear(ctx))
	assert.Empty(t, svc.List(ctx))
	_, ok := store.data[entity.KeyIssueHistory]
	assert.False(t, ok)
}

func TestHistoryService_MalformedIsEmpty(t *testing.T) {
	store := newMockStore()
	store.data[entity.KeyIssueHistory] = []byte(`{"oops":true}`)
	svc := newTestHistory(store, nil)
	ctx := context.Background()

	assert.Empty(t, svc.List(ctx))

	_, err := svc.Append(ctx, entity.DocumentUsage, sampleRecord())
	require.NoError(t, err)
	assert.Len(t, svc.List(ctx), 1)
}

func TestHistoryService_ClearFailure(t *testing.T) {
	store := newMockStore()
	store.deleteFunc = func(ctx context.Context, key string) error { return errors.New("locked") }
	svc := newTestHistory(store, nil)

	assert.True(t, errors.Is(svc.Clear(context.Background()), apperr.ErrStorage))
}

func TestHistoryService_ConcurrentAppend(t *testing.T) {
	svc := NewHistoryService(newMockStore(), nil, fixedClock, &mockLogger{})
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Append(ctx, entity.DocumentReceipt, sampleRecord())
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Len(t, svc.List(ctx), 20)
}

func TestHistoryService_Ledger(t *testing.T) {
	var got []entity.IssueHistoryEntry
	ledger := &mockLedger{exportFunc: func(entries []entity.IssueHistoryEntry) ([]byte, error) {
		got = entries
		return []byte("xlsx"), nil
	}}
	svc := newTestHistory(newMockStore(), ledger)
	ctx := context.Background()

	_, _ = svc.Append(ctx, entity.DocumentReceipt, sampleRecord())
	_, _ = svc.Append(ctx, entity.DocumentUsage, sampleRecord())

	data, err := svc.Ledger(ctx)
	require.NoError(t, err)
	assert.Equal(t, []byte("xlsx"), data)
	require.Len(t, got, 2)
	assert.Equal(t, entity.DocumentUsage, got[0].DocumentType)

	ledger.exportFunc = func([]entity.IssueHistoryEntry) ([]byte, error) { return nil, errors.New("boom") }
	_, err = svc.Ledger(ctx)
	assert.True(t, errors.Is(err, apperr.ErrStorage))

	noLedger := newTestHistory(newMockStore(), nil)
	_, err = noLedger.Ledger(ctx)
	assert.True(t, errors.Is(err, apperr.ErrConfiguration))
}
