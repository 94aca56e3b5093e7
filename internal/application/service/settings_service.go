package service

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/garyjia/caredoc/internal/application/port"
	"github.com/garyjia/caredoc/internal/domain/apperr"
	"github.com/garyjia/caredoc/internal/domain/entity"
	"github.com/garyjia/caredoc/pkg/utils"
)

// SettingsService reads and replaces the persisted issuer profile
type SettingsService interface {
	GetCompanyProfile(ctx context.Context) entity.CompanyProfile
	SaveCompanyProfile(ctx context.Context, profile entity.CompanyProfile) error
}

type settingsServiceImpl struct {
	store    port.KeyValueStore
	defaults entity.CompanyProfile
	logger   Logger
}

// NewSettingsService creates a new SettingsService. defaults is returned
// until a profile has been saved.
func NewSettingsService(store port.KeyValueStore, defaults entity.CompanyProfile, logger Logger) SettingsService {
	return &settingsServiceImpl{
		store:    store,
		defaults: defaults,
		logger:   logger,
	}
}

// GetCompanyProfile returns the saved profile; a missing, unreadable or
// malformed value yields the defaults.
func (s *settingsServiceImpl) GetCompanyProfile(ctx context.Context) entity.CompanyProfile {
	data, err := s.store.Get(ctx, entity.KeyCompanyProfile)
	if err != nil {
		if !errors.Is(err, port.ErrKeyNotFound) {
			s.logger.Warn("Failed to read company profile", "error", err)
		}
		return s.defaults
	}

	var profile entity.CompanyProfile
	if err := json.Unmarshal(data, &profile); err != nil {
		s.logger.Warn("Stored company profile is malformed, using defaults", "error", err)
		return s.defaults
	}
	return profile
}

// SaveCompanyProfile replaces the stored profile
func (s *settingsServiceImpl) SaveCompanyProfile(ctx context.Context, profile entity.CompanyProfile) error {
	if err := utils.ValidateBusinessNumber(profile.BusinessNumber); err != nil {
		return apperr.Validation("사업자등록번호는 10자리 숫자여야 합니다.")
	}
	data, err := json.Marshal(profile)
	if err != nil {
		return apperr.Storage(err, "설정을 저장하지 못했습니다.")
	}
	if err := s.store.Set(ctx, entity.KeyCompanyProfile, data); err != nil {
		s.logger.Error("Failed to save company profile", "error", err)
		return apperr.Storage(err, "설정을 저장하지 못했습니다.")
	}

	s.logger.Info("Company profile saved", "company_name", profile.CompanyName)
	return nil
}
