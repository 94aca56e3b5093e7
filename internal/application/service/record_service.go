package service

import (
	"context"

	"github.com/garyjia/caredoc/internal/domain/entity"
	"github.com/garyjia/caredoc/internal/domain/record"
)

// RecordService creates, merges and edits caregiver records. Records live
// with the client; every call works on the copy it is given.
type RecordService interface {
	New(ctx context.Context) entity.CaregiverRecord
	Merge(current entity.CaregiverRecord, extracted *entity.PartialRecord) entity.CaregiverRecord
	Edit(current entity.CaregiverRecord, field string, value interface{}) (entity.CaregiverRecord, error)
}

type recordServiceImpl struct {
	settings SettingsService
	clock    Clock
}

// NewRecordService creates a new RecordService
func NewRecordService(settings SettingsService, clock Clock) RecordService {
	return &recordServiceImpl{settings: settings, clock: clock}
}

// New returns a blank record with the saved issuer profile and today's date
func (s *recordServiceImpl) New(ctx context.Context) entity.CaregiverRecord {
	return record.New(s.settings.GetCompanyProfile(ctx), s.clock())
}

// Merge folds an extraction result into current
func (s *recordServiceImpl) Merge(current entity.CaregiverRecord, extracted *entity.PartialRecord) entity.CaregiverRecord {
	return record.Merge(current, extracted)
}

// Edit applies one field edit; current is left untouched on error
func (s *recordServiceImpl) Edit(current entity.CaregiverRecord, field string, value interface{}) (entity.CaregiverRecord, error) {
	edited := current
	if err := record.ApplyEdit(&edited, field, value); err != nil {
		return current, err
	}
	return edited, nil
}
