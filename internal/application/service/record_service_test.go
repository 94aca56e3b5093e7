package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/garyjia/caredoc/internal/domain/apperr"
	"github.com/garyjia/caredoc/internal/domain/entity"
)

func TestRecordService_NewUsesSavedProfile(t *testing.T) {
	settings := NewSettingsService(newMockStore(), defaultProfile, &mockLogger{})
	svc := NewRecordService(settings, fixedClock)

	r := svc.New(context.Background())
	assert.Equal(t, defaultProfile.CompanyName, r.CompanyName)
	assert.Equal(t, defaultProfile.BusinessNumber, r.BusinessNumber)
	assert.Equal(t, "2026-10-01", r.IssueDate)
	assert.Empty(t, r.PatientName)
	assert.Zero(t, r.TotalDays)
}

func TestRecordService_MergeThenEdit(t *testing.T) {
	svc := NewRecordService(NewSettingsService(newMockStore(), defaultProfile, &mockLogger{}), fixedClock)
	s := func(v string) *string { return &v }
	rate := int64(80000)

	current := svc.New(context.Background())
	merged := svc.Merge(current, &entity.PartialRecord{
		CompanyName: s(""),
		PatientName: s("김철수"),
		StartDate:   s("2026-10-01"),
		EndDate:     s("2026-10-05"),
		DailyRate:   &rate,
	})
	assert.Equal(t, defaultProfile.CompanyName, merged.CompanyName)
	assert.Equal(t, int64(5), merged.TotalDays)
	assert.Equal(t, int64(400000), merged.TotalAmount)

	edited, err := svc.Edit(merged, "endDate", "2026-10-10")
	require.NoError(t, err)
	assert.Equal(t, int64(10), edited.TotalDays)
	assert.Equal(t, int64(800000), edited.TotalAmount)
	assert.Equal(t, "2026-10-05", merged.EndDate)

	edited, err = svc.Edit(edited, "dailyRate", "90,000")
	require.NoError(t, err)
	assert.Equal(t, int64(900000), edited.TotalAmount)
}

func TestRecordService_EditRejectsLeavesRecordUntouched(t *testing.T) {
	svc := NewRecordService(NewSettingsService(newMockStore(), defaultProfile, &mockLogger{}), fixedClock)
	current := sampleRecord()

	tests := []struct {
		field string
		value interface{}
	}{
		{"dailyRate", "-5"},
		{"dailyRate", "abc"},
		{"totalDays", 1.5},
		{"nickname", "x"},
	}
	for _, tt := range tests {
		got, err := svc.Edit(current, tt.field, tt.value)
		require.Error(t, err, tt.field)
		assert.True(t, errors.Is(err, apperr.ErrValidation))
		assert.Equal(t, current, got)
	}
}
