package services

import (
	"context"
	"testing"

	"smartproduct-backend/domain/model"
	apperrors "smartproduct-backend/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetSettingMissing(t *testing.T) {
	svc := NewSettingService(newMemSettings())

	_, err := svc.GetSetting(context.Background(), "user-1")
	assert.True(t, apperrors.IsKind(err, apperrors.KindMissingSetting))
}

func TestUpdateSettingUpserts(t *testing.T) {
	settings := newMemSettings()
	svc := NewSettingService(settings)

	created, err := svc.UpdateSetting(context.Background(), "user-1", UpdateSettingRequest{
		AlertLevel:       []string{model.EventError},
		SendNotification: true,
	})
	require.NoError(t, err)
	assert.Equal(t, "user-1", created.SettingID)
	assert.NotEmpty(t, created.CreatedAt)

	// A second update keeps the original creation time.
	updated, err := svc.UpdateSetting(context.Background(), "user-1", UpdateSettingRequest{
		AlertLevel:       []string{model.EventError, model.EventWarning},
		SendNotification: false,
	})
	require.NoError(t, err)
	assert.Equal(t, created.CreatedAt, updated.CreatedAt)
	assert.False(t, updated.SendNotification)

	got, err := svc.GetSetting(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Equal(t, []string{model.EventError, model.EventWarning}, got.AlertLevel)
}

func TestUpdateSettingRejectsUnknownLevel(t *testing.T) {
	svc := NewSettingService(newMemSettings())

	_, err := svc.UpdateSetting(context.Background(), "user-1", UpdateSettingRequest{
		AlertLevel: []string{"critical"},
	})
	assert.True(t, apperrors.IsKind(err, apperrors.KindInvalidSetting))
}
