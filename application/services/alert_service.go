package services

import (
	"context"
	"fmt"
	"strings"

	"smartproduct-backend/application/ports"
	"smartproduct-backend/domain/model"
	apperrors "smartproduct-backend/pkg/errors"

	"go.uber.org/zap"
)

// AlertResult is the outcome of one alert evaluation. Both outcomes are
// successes; "not sent" means the user's preferences suppressed delivery.
type AlertResult struct {
	Sent    bool   `json:"sent"`
	Message string `json:"message"`
}

// AlertList is a paginated alert listing.
type AlertList struct {
	Items       []model.Event `json:"alerts"`
	LastEvalKey string        `json:"lastevalkey,omitempty"`
}

// AlertService evaluates device events against user alert preferences and
// delivers SMS notifications for subscribed event types.
type AlertService struct {
	registrations ports.RegistrationRepository
	settings      ports.SettingRepository
	events        ports.EventRepository
	identity      ports.IdentityProvider
	sms           ports.SMSSender
	metrics       ports.UsageMetrics
	logger        *zap.Logger
}

// NewAlertService creates a new AlertService.
func NewAlertService(
	registrations ports.RegistrationRepository,
	settings ports.SettingRepository,
	events ports.EventRepository,
	identity ports.IdentityProvider,
	sms ports.SMSSender,
	metrics ports.UsageMetrics,
	logger *zap.Logger,
) *AlertService {
	return &AlertService{
		registrations: registrations,
		settings:      settings,
		events:        events,
		identity:      identity,
		sms:           sms,
		metrics:       metrics,
		logger:        logger,
	}
}

// SendAlert runs the alert pipeline for one event. Every internal failure
// collapses to SendAlertFailure at this boundary; the alert path is driven by
// a fire-and-forget notifier and must not leak internal error detail. The
// underlying kind is logged before collapsing.
func (s *AlertService) SendAlert(ctx context.Context, ev *model.Event) (*AlertResult, error) {
	result, err := s.send(ctx, ev)
	if err != nil {
		s.logger.Error("alert pipeline failed",
			zap.String("deviceId", ev.DeviceID),
			zap.String("eventId", ev.ID),
			zap.String("kind", string(apperrors.KindOf(err))),
			zap.Error(err),
		)
		return nil, apperrors.NewFailure(apperrors.KindSendAlertFailure,
			"failed to send alert", err)
	}
	return result, nil
}

func (s *AlertService) send(ctx context.Context, ev *model.Event) (*AlertResult, error) {
	regs, err := s.registrations.ListByDevice(ctx, ev.DeviceID)
	if err != nil {
		return nil, apperrors.NewFailure(apperrors.KindRegistrationRetrieveFailure,
			"failed to resolve device owner", err)
	}
	if len(regs) == 0 {
		return nil, apperrors.NewMissing(apperrors.KindMissingRegistration,
			"no registration found for device")
	}
	reg := regs[0]

	phone, err := s.identity.PhoneNumber(ctx, reg.UserID)
	if err != nil {
		return nil, apperrors.NewFailure(apperrors.KindRegistrationRetrieveFailure,
			"failed to resolve phone number", err)
	}
	if phone == "" {
		return nil, apperrors.NewMissing(apperrors.KindMissingPhoneNumber,
			"user has no phone number")
	}

	setting, err := s.settings.Get(ctx, reg.UserID)
	if err != nil {
		return nil, apperrors.NewFailure(apperrors.KindSettingRetrieveFailure,
			"failed to retrieve user setting", err)
	}
	if setting == nil {
		return nil, apperrors.NewMissing(apperrors.KindMissingUserConfig,
			"user has no alert configuration")
	}

	if !setting.SendNotification || !setting.Subscribed(ev.Type) {
		s.metrics.RecordAlert(ctx, false)
		return &AlertResult{Sent: false, Message: "alert not sent"}, nil
	}

	body := formatAlertMessage(reg.DeviceName, ev)
	if err := s.sms.SendSMS(ctx, phone, body); err != nil {
		return nil, apperrors.NewFailure(apperrors.KindSendAlertFailure,
			"sms delivery failed", err)
	}

	s.metrics.RecordAlert(ctx, true)
	return &AlertResult{Sent: true, Message: "alert sent"}, nil
}

func formatAlertMessage(deviceName string, ev *model.Event) string {
	if deviceName == "" {
		deviceName = ev.DeviceID
	}
	return fmt.Sprintf("[%s] %s: %s", strings.ToUpper(ev.Type), deviceName, ev.Message)
}

// GetAlerts returns one filled page of the user's unacknowledged events whose
// type is in the user's alert level set. An empty set short-circuits to an
// empty result without touching the store.
func (s *AlertService) GetAlerts(ctx context.Context, userID, deviceID, cursor string) (*AlertList, error) {
	alertLevel, err := s.alertLevel(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(alertLevel) == 0 {
		return &AlertList{Items: []model.Event{}}, nil
	}

	page, err := s.events.ListAlerts(ctx, userID, alertLevel, deviceID, cursor)
	if err != nil {
		return nil, apperrors.Ensure(err, apperrors.KindEventQueryFailure,
			"failed to query alerts")
	}

	items, err := s.joinDeviceNames(ctx, userID, page.Items)
	if err != nil {
		return nil, err
	}

	return &AlertList{Items: items, LastEvalKey: page.NextToken}, nil
}

// GetAlertsCount returns the number of pending alerts, with the same empty
// subscription short-circuit as GetAlerts.
func (s *AlertService) GetAlertsCount(ctx context.Context, userID, deviceID string) (int, error) {
	alertLevel, err := s.alertLevel(ctx, userID)
	if err != nil {
		return 0, err
	}
	if len(alertLevel) == 0 {
		return 0, nil
	}

	count, err := s.events.CountAlerts(ctx, userID, alertLevel, deviceID)
	if err != nil {
		return 0, apperrors.NewFailure(apperrors.KindEventQueryFailure,
			"failed to count alerts", err)
	}
	return count, nil
}

// alertLevel resolves the user's subscription set. A user with no setting row
// simply has nothing subscribed.
func (s *AlertService) alertLevel(ctx context.Context, userID string) ([]string, error) {
	setting, err := s.settings.Get(ctx, userID)
	if err != nil {
		return nil, apperrors.NewFailure(apperrors.KindSettingRetrieveFailure,
			"failed to retrieve user setting", err)
	}
	if setting == nil {
		return nil, nil
	}
	return setting.AlertLevel, nil
}

func (s *AlertService) joinDeviceNames(ctx context.Context, userID string, events []model.Event) ([]model.Event, error) {
	if len(events) == 0 {
		return events, nil
	}

	regs, err := s.registrations.ListAllByUser(ctx, userID)
	if err != nil {
		return nil, apperrors.NewFailure(apperrors.KindRegistrationQueryFailure,
			"failed to load registrations", err)
	}

	names := make(map[string]string, len(regs))
	for _, reg := range regs {
		names[reg.DeviceID] = reg.DeviceName
	}
	for i := range events {
		events[i].DeviceName = names[events[i].DeviceID]
	}
	return events, nil
}
