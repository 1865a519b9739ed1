package services

import (
	"context"
	"errors"
	"testing"

	"smartproduct-backend/domain/model"
	apperrors "smartproduct-backend/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type alertFixture struct {
	svc      *AlertService
	regs     *memRegistrations
	settings *memSettings
	events   *memEvents
	identity *fakeIdentity
	sms      *fakeSMS
}

func newAlertFixture(t *testing.T) *alertFixture {
	t.Helper()
	f := &alertFixture{
		regs: newMemRegistrations(&model.Registration{
			UserID:     "user-1",
			DeviceID:   "device-1",
			DeviceName: "Living Room",
			Status:     model.RegistrationComplete,
		}),
		settings: newMemSettings(&model.UserSetting{
			SettingID:        "user-1",
			AlertLevel:       []string{model.EventError, model.EventWarning},
			SendNotification: true,
		}),
		events:   &memEvents{},
		identity: &fakeIdentity{phone: "+15555550100"},
		sms:      &fakeSMS{},
	}
	f.svc = NewAlertService(f.regs, f.settings, f.events, f.identity, f.sms,
		nopMetrics{}, zap.NewNop())
	return f
}

func errorEvent() *model.Event {
	return &model.Event{
		DeviceID: "device-1",
		ID:       "event-1",
		UserID:   "user-1",
		Type:     model.EventError,
		Message:  "compressor fault",
	}
}

func TestSendAlertDelivers(t *testing.T) {
	f := newAlertFixture(t)

	result, err := f.svc.SendAlert(context.Background(), errorEvent())
	require.NoError(t, err)

	assert.True(t, result.Sent)
	require.Len(t, f.sms.messages, 1)
	assert.Contains(t, f.sms.messages[0], "Living Room")
	assert.Contains(t, f.sms.messages[0], "compressor fault")
}

func TestSendAlertNotSubscribedType(t *testing.T) {
	f := newAlertFixture(t)

	ev := errorEvent()
	ev.Type = model.EventInfo

	result, err := f.svc.SendAlert(context.Background(), ev)
	require.NoError(t, err)

	// Suppression is a success, and the SMS transport is never touched.
	assert.False(t, result.Sent)
	assert.Equal(t, "alert not sent", result.Message)
	assert.Empty(t, f.sms.messages)
}

func TestSendAlertNotificationsDisabled(t *testing.T) {
	f := newAlertFixture(t)
	f.settings.settings["user-1"].SendNotification = false

	result, err := f.svc.SendAlert(context.Background(), errorEvent())
	require.NoError(t, err)
	assert.False(t, result.Sent)
	assert.Empty(t, f.sms.messages)
}

func TestSendAlertCollapsesInternalKinds(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*alertFixture)
		cause  apperrors.Kind
	}{
		{
			"missing registration",
			func(f *alertFixture) { f.regs.regs = map[string]*model.Registration{} },
			apperrors.KindMissingRegistration,
		},
		{
			"missing phone number",
			func(f *alertFixture) { f.identity.phone = "" },
			apperrors.KindMissingPhoneNumber,
		},
		{
			"missing user config",
			func(f *alertFixture) { f.settings.settings = map[string]*model.UserSetting{} },
			apperrors.KindMissingUserConfig,
		},
		{
			"sms delivery failure",
			func(f *alertFixture) { f.sms.err = errors.New("sns throttled") },
			apperrors.KindSendAlertFailure,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newAlertFixture(t)
			tt.mutate(f)

			_, err := f.svc.SendAlert(context.Background(), errorEvent())

			// Every internal failure surfaces as SendAlertFailure; the real
			// kind stays in the cause chain for the logs.
			require.Error(t, err)
			assert.True(t, apperrors.IsKind(err, apperrors.KindSendAlertFailure))
			appErr := apperrors.GetAppError(err)
			assert.Equal(t, tt.cause, apperrors.KindOf(appErr.Cause))
			assert.Empty(t, f.sms.messages)
		})
	}
}

func TestGetAlertsEmptySubscriptionShortCircuits(t *testing.T) {
	f := newAlertFixture(t)
	f.settings.settings["user-1"].AlertLevel = nil
	f.events.listErr = errors.New("must not be queried")

	list, err := f.svc.GetAlerts(context.Background(), "user-1", "", "")
	require.NoError(t, err)
	assert.Empty(t, list.Items)

	count, err := f.svc.GetAlertsCount(context.Background(), "user-1", "")
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestGetAlertsNoSettingRow(t *testing.T) {
	f := newAlertFixture(t)
	f.settings.settings = map[string]*model.UserSetting{}

	list, err := f.svc.GetAlerts(context.Background(), "user-1", "", "")
	require.NoError(t, err)
	assert.Empty(t, list.Items)
}

func TestGetAlertsJoinsDeviceName(t *testing.T) {
	f := newAlertFixture(t)
	f.events.events = append(f.events.events,
		&model.Event{DeviceID: "device-1", ID: "e1", UserID: "user-1", Type: model.EventError},
		&model.Event{DeviceID: "device-1", ID: "e2", UserID: "user-1", Type: model.EventError, Ack: true},
		&model.Event{DeviceID: "device-1", ID: "e3", UserID: "user-1", Type: model.EventInfo},
	)

	list, err := f.svc.GetAlerts(context.Background(), "user-1", "", "")
	require.NoError(t, err)

	// Acked events and unsubscribed types are excluded.
	require.Len(t, list.Items, 1)
	assert.Equal(t, "e1", list.Items[0].ID)
	assert.Equal(t, "Living Room", list.Items[0].DeviceName)

	count, err := f.svc.GetAlertsCount(context.Background(), "user-1", "")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}
