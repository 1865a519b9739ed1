package services

import (
	"context"
	"fmt"

	"smartproduct-backend/application/ports"
	"smartproduct-backend/domain/model"
	apperrors "smartproduct-backend/pkg/errors"
	"smartproduct-backend/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CreateEventRequest is the device-originated event payload. The owning user
// is always resolved server-side from the device's registration.
type CreateEventRequest struct {
	Type      string                 `json:"type" validate:"required"`
	Message   string                 `json:"message" validate:"required"`
	Details   map[string]interface{} `json:"details,omitempty"`
	Timestamp string                 `json:"timestamp,omitempty"`
}

// EventList is a paginated event listing with the applied filters echoed back.
type EventList struct {
	Items       []model.Event `json:"events"`
	LastEvalKey string        `json:"lastevalkey,omitempty"`
	EventType   string        `json:"eventType,omitempty"`
	DeviceID    string        `json:"deviceId,omitempty"`
}

// EventService handles event ingestion and history reads.
type EventService struct {
	gate          *RegistrationGate
	events        ports.EventRepository
	registrations ports.RegistrationRepository
	logger        *zap.Logger
}

// NewEventService creates a new EventService.
func NewEventService(
	gate *RegistrationGate,
	events ports.EventRepository,
	registrations ports.RegistrationRepository,
	logger *zap.Logger,
) *EventService {
	return &EventService{
		gate:          gate,
		events:        events,
		registrations: registrations,
		logger:        logger,
	}
}

// CreateEvent persists a device-originated event. The owner is resolved via
// the deviceId index; more than one live registration for a device is a data
// integrity violation and is refused.
func (s *EventService) CreateEvent(ctx context.Context, deviceID string, req CreateEventRequest) (*model.Event, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, apperrors.NewValidation(apperrors.KindInvalidParameter, err.Error())
	}
	if !model.ValidEventType(req.Type) {
		return nil, apperrors.NewValidation(apperrors.KindInvalidParameter,
			fmt.Sprintf("unsupported event type %q", req.Type))
	}

	regs, err := s.registrations.ListByDevice(ctx, deviceID)
	if err != nil {
		return nil, apperrors.NewFailure(apperrors.KindRegistrationRetrieveFailure,
			"failed to resolve device owner", err)
	}
	if len(regs) == 0 {
		return nil, apperrors.NewMissing(apperrors.KindMissingRegistration,
			"no registration found for device")
	}
	if len(regs) > 1 {
		s.logger.Error("multiple live registrations for device",
			zap.String("deviceId", deviceID),
			zap.Int("count", len(regs)),
		)
		return nil, apperrors.NewFailure(apperrors.KindRegistrationRetrieveFailure,
			"ambiguous device registration", nil)
	}

	now := utils.NowRFC3339()
	timestamp := req.Timestamp
	if timestamp == "" {
		timestamp = now
	}

	ev := &model.Event{
		DeviceID:  deviceID,
		ID:        uuid.NewString(),
		UserID:    regs[0].UserID,
		Type:      req.Type,
		Message:   req.Message,
		Details:   req.Details,
		Ack:       false,
		Suppress:  false,
		Timestamp: timestamp,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.events.Create(ctx, ev); err != nil {
		return nil, apperrors.NewFailure(apperrors.KindEventCreateFailure,
			"failed to save event", err)
	}

	s.logger.Info("event created",
		zap.String("deviceId", deviceID),
		zap.String("eventId", ev.ID),
		zap.String("type", ev.Type),
	)

	return ev, nil
}

// GetEvent returns one event after ownership authorization.
func (s *EventService) GetEvent(ctx context.Context, userID, deviceID, eventID string) (*model.Event, error) {
	if err := s.gate.Authorize(ctx, deviceID, userID); err != nil {
		return nil, err
	}

	ev, err := s.events.Get(ctx, deviceID, eventID)
	if err != nil {
		return nil, apperrors.NewFailure(apperrors.KindEventRetrieveFailure,
			"failed to retrieve event", err)
	}
	if ev == nil {
		return nil, apperrors.NewMissing(apperrors.KindMissingEvent, "event not found")
	}
	return ev, nil
}

// AckEvent marks the event as viewed: ack and suppress both become true.
func (s *EventService) AckEvent(ctx context.Context, userID, deviceID, eventID string) (*model.Event, error) {
	ev, err := s.GetEvent(ctx, userID, deviceID, eventID)
	if err != nil {
		return nil, err
	}

	if err := s.events.MarkViewed(ctx, deviceID, eventID); err != nil {
		return nil, apperrors.NewFailure(apperrors.KindEventUpdateFailure,
			"failed to acknowledge event", err)
	}

	ev.Ack = true
	ev.Suppress = true
	ev.UpdatedAt = utils.NowRFC3339()
	return ev, nil
}

// GetEventHistory returns one filled page of a single device's events.
func (s *EventService) GetEventHistory(ctx context.Context, userID, deviceID, eventType, cursor string) (*EventList, error) {
	if err := validateEventTypeFilter(eventType); err != nil {
		return nil, err
	}
	if err := s.gate.Authorize(ctx, deviceID, userID); err != nil {
		return nil, err
	}

	page, err := s.events.ListByDevice(ctx, deviceID, eventType, cursor)
	if err != nil {
		return nil, apperrors.Ensure(err, apperrors.KindEventQueryFailure,
			"failed to query events")
	}

	items, err := s.joinDeviceNames(ctx, userID, page.Items)
	if err != nil {
		return nil, err
	}

	return &EventList{
		Items:       items,
		LastEvalKey: page.NextToken,
		EventType:   eventType,
		DeviceID:    deviceID,
	}, nil
}

// GetUserEventHistory returns one filled page of events across all of the
// user's devices, optionally narrowed to one device or event type.
func (s *EventService) GetUserEventHistory(ctx context.Context, userID, deviceID, eventType, cursor string) (*EventList, error) {
	if err := validateEventTypeFilter(eventType); err != nil {
		return nil, err
	}

	page, err := s.events.ListByUser(ctx, userID, deviceID, eventType, cursor)
	if err != nil {
		return nil, apperrors.Ensure(err, apperrors.KindEventQueryFailure,
			"failed to query events")
	}

	items, err := s.joinDeviceNames(ctx, userID, page.Items)
	if err != nil {
		return nil, err
	}

	return &EventList{
		Items:       items,
		LastEvalKey: page.NextToken,
		EventType:   eventType,
		DeviceID:    deviceID,
	}, nil
}

func validateEventTypeFilter(eventType string) error {
	if eventType != "" && !model.ValidEventType(eventType) {
		return apperrors.NewValidation(apperrors.KindInvalidParameter,
			fmt.Sprintf("unsupported event type %q", eventType))
	}
	return nil
}

// joinDeviceNames attaches deviceName by loading the user's registrations
// once and joining in memory. Events keep no redundant device name copy.
func (s *EventService) joinDeviceNames(ctx context.Context, userID string, events []model.Event) ([]model.Event, error) {
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
