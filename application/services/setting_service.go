package services

import (
	"context"
	"fmt"

	"smartproduct-backend/application/ports"
	"smartproduct-backend/domain/model"
	apperrors "smartproduct-backend/pkg/errors"
	"smartproduct-backend/pkg/utils"
)

// UpdateSettingRequest is the PUT /settings body.
type UpdateSettingRequest struct {
	AlertLevel       []string `json:"alertLevel"`
	SendNotification bool     `json:"sendNotification"`
}

// SettingService manages per-user alert preferences.
type SettingService struct {
	settings ports.SettingRepository
}

// NewSettingService creates a new SettingService.
func NewSettingService(settings ports.SettingRepository) *SettingService {
	return &SettingService{settings: settings}
}

// GetSetting returns the caller's alert preferences.
func (s *SettingService) GetSetting(ctx context.Context, userID string) (*model.UserSetting, error) {
	setting, err := s.settings.Get(ctx, userID)
	if err != nil {
		return nil, apperrors.NewFailure(apperrors.KindSettingRetrieveFailure,
			"failed to retrieve setting", err)
	}
	if setting == nil {
		return nil, apperrors.NewMissing(apperrors.KindMissingSetting, "setting not found")
	}
	return setting, nil
}

// UpdateSetting upserts the caller's alert preferences.
func (s *SettingService) UpdateSetting(ctx context.Context, userID string, req UpdateSettingRequest) (*model.UserSetting, error) {
	for _, level := range req.AlertLevel {
		if !model.ValidEventType(level) {
			return nil, apperrors.NewValidation(apperrors.KindInvalidSetting,
				fmt.Sprintf("unsupported alert level %q", level))
		}
	}

	now := utils.NowRFC3339()
	setting := &model.UserSetting{
		SettingID:        userID,
		AlertLevel:       req.AlertLevel,
		SendNotification: req.SendNotification,
		UpdatedAt:        now,
	}

	existing, err := s.settings.Get(ctx, userID)
	if err != nil {
		return nil, apperrors.NewFailure(apperrors.KindSettingRetrieveFailure,
			"failed to retrieve setting", err)
	}
	if existing != nil {
		setting.CreatedAt = existing.CreatedAt
	} else {
		setting.CreatedAt = now
	}

	if err := s.settings.Put(ctx, setting); err != nil {
		return nil, apperrors.NewFailure(apperrors.KindSettingUpdateFailure,
			"failed to save setting", err)
	}
	return setting, nil
}
