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

// CreateCommandRequest is the POST /devices/{deviceId}/commands body.
type CreateCommandRequest struct {
	CommandDetails CommandDetailsRequest `json:"commandDetails" validate:"required"`
	ShadowDetails  ShadowDetailsRequest  `json:"shadowDetails" validate:"required"`
}

// CommandDetailsRequest carries the instruction. Value is informational on
// set-temp requests; the persisted value is derived from the shadow details.
type CommandDetailsRequest struct {
	Command string  `json:"command" validate:"required"`
	Value   float64 `json:"value"`
}

// ShadowDetailsRequest carries the desired device state.
type ShadowDetailsRequest struct {
	PowerStatus       string  `json:"powerStatus" validate:"required"`
	ActualTemperature float64 `json:"actualTemperature"`
	TargetTemperature float64 `json:"targetTemperature" validate:"required"`
}

// CommandList is a paginated command listing with the applied filter echoed
// back to the caller.
type CommandList struct {
	Items         []model.Command `json:"commands"`
	LastEvalKey   string          `json:"lastevalkey,omitempty"`
	CommandStatus string          `json:"commandStatus,omitempty"`
}

// CommandService drives the command state machine: validated, persisted,
// shadow-updated, published.
type CommandService struct {
	gate      *RegistrationGate
	commands  ports.CommandRepository
	shadow    ports.DeviceShadow
	publisher ports.TopicPublisher
	metrics   ports.UsageMetrics
	lifecycle ports.LifecycleEvents
	topic     string
	logger    *zap.Logger
}

// NewCommandService creates a new CommandService.
func NewCommandService(
	gate *RegistrationGate,
	commands ports.CommandRepository,
	shadow ports.DeviceShadow,
	publisher ports.TopicPublisher,
	metrics ports.UsageMetrics,
	lifecycle ports.LifecycleEvents,
	topic string,
	logger *zap.Logger,
) *CommandService {
	return &CommandService{
		gate:      gate,
		commands:  commands,
		shadow:    shadow,
		publisher: publisher,
		metrics:   metrics,
		lifecycle: lifecycle,
		topic:     topic,
		logger:    logger,
	}
}

// commandMessage is the payload published on the per-device command topic.
type commandMessage struct {
	CommandID string               `json:"commandId"`
	DeviceID  string               `json:"deviceId"`
	Status    string               `json:"status"`
	Details   model.CommandDetails `json:"details"`
}

// CreateCommand validates, persists and dispatches a new device command.
// The persisted row is NOT rolled back when the shadow update or the topic
// publish fails; the row survives in pending state and the failure is
// surfaced. Registration creation compensates, command creation does not.
func (s *CommandService) CreateCommand(ctx context.Context, userID, deviceID string, req CreateCommandRequest) (*model.Command, error) {
	if err := s.validate(req); err != nil {
		return nil, err
	}

	if err := s.gate.Authorize(ctx, deviceID, userID); err != nil {
		return nil, err
	}

	target := model.NormalizeTemperature(req.ShadowDetails.TargetTemperature)

	// set-temp persists the normalized target; set-mode persists the power
	// status. The raw payload value is never stored.
	value := target
	if req.CommandDetails.Command == model.CommandSetMode {
		value = req.ShadowDetails.PowerStatus
	}

	now := utils.NowRFC3339()
	cmd := &model.Command{
		DeviceID:  deviceID,
		CommandID: uuid.NewString(),
		UserID:    userID,
		Status:    model.CommandPending,
		Details: model.CommandDetails{
			Command: req.CommandDetails.Command,
			Value:   value,
		},
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.commands.Create(ctx, cmd); err != nil {
		s.metrics.RecordCommand(ctx, cmd.Details.Command, true)
		return nil, apperrors.NewFailure(apperrors.KindCommandCreateFailure,
			"failed to save command", err)
	}

	// The current shadow is read for versioning context only; a device with
	// no shadow yet is fine.
	if _, err := s.shadow.Get(ctx, deviceID); err != nil {
		return nil, s.dispatchFailure(ctx, cmd, "failed to read device shadow", err)
	}

	desired := map[string]interface{}{
		"powerStatus":       req.ShadowDetails.PowerStatus,
		"actualTemperature": model.NormalizeTemperature(req.ShadowDetails.ActualTemperature),
		"targetTemperature": target,
	}
	if err := s.shadow.UpdateDesired(ctx, deviceID, desired); err != nil {
		return nil, s.dispatchFailure(ctx, cmd, "failed to update device shadow", err)
	}

	msg := commandMessage{
		CommandID: cmd.CommandID,
		DeviceID:  cmd.DeviceID,
		Status:    cmd.Status,
		Details:   cmd.Details,
	}
	if err := s.publisher.Publish(ctx, fmt.Sprintf("%s/%s", s.topic, deviceID), msg); err != nil {
		return nil, s.dispatchFailure(ctx, cmd, "failed to publish command", err)
	}

	s.metrics.RecordCommand(ctx, cmd.Details.Command, false)
	if err := s.lifecycle.Publish(ctx, "CommandAccepted", msg); err != nil {
		s.logger.Warn("lifecycle publish failed", zap.Error(err))
	}

	s.logger.Info("command created",
		zap.String("deviceId", deviceID),
		zap.String("commandId", cmd.CommandID),
		zap.String("command", cmd.Details.Command),
	)

	return cmd, nil
}

func (s *CommandService) validate(req CreateCommandRequest) error {
	if err := utils.ValidateStruct(req); err != nil {
		return apperrors.NewValidation(apperrors.KindInvalidParameter, err.Error())
	}

	switch req.CommandDetails.Command {
	case model.CommandSetTemp, model.CommandSetMode:
	default:
		return apperrors.NewValidation(apperrors.KindInvalidParameter,
			fmt.Sprintf("unsupported command %q", req.CommandDetails.Command))
	}

	switch req.ShadowDetails.PowerStatus {
	case model.PowerHeat, model.PowerAC, model.PowerOff:
	default:
		return apperrors.NewValidation(apperrors.KindInvalidParameter,
			fmt.Sprintf("unsupported power status %q", req.ShadowDetails.PowerStatus))
	}

	return model.ValidateTargetTemperature(req.ShadowDetails.TargetTemperature)
}

func (s *CommandService) dispatchFailure(ctx context.Context, cmd *model.Command, message string, err error) error {
	// The pending row deliberately survives; the device never saw the
	// command and a retry will create a fresh one.
	s.logger.Error("command dispatch failed",
		zap.String("deviceId", cmd.DeviceID),
		zap.String("commandId", cmd.CommandID),
		zap.Error(err),
	)
	s.metrics.RecordCommand(ctx, cmd.Details.Command, true)
	return apperrors.NewFailure(apperrors.KindCommandCreateFailure, message, err)
}

// GetCommand returns one command after ownership authorization.
func (s *CommandService) GetCommand(ctx context.Context, userID, deviceID, commandID string) (*model.Command, error) {
	if err := s.gate.Authorize(ctx, deviceID, userID); err != nil {
		return nil, err
	}

	cmd, err := s.commands.Get(ctx, deviceID, commandID)
	if err != nil {
		return nil, apperrors.NewFailure(apperrors.KindCommandRetrieveFailure,
			"failed to retrieve command", err)
	}
	if cmd == nil {
		return nil, apperrors.NewMissing(apperrors.KindMissingCommand, "command not found")
	}
	return cmd, nil
}

// GetCommands returns one filled page of the device's commands, newest first,
// optionally filtered by status.
func (s *CommandService) GetCommands(ctx context.Context, userID, deviceID, status, cursor string) (*CommandList, error) {
	if status != "" {
		switch status {
		case model.CommandPending, model.CommandSuccess, model.CommandFailed:
		default:
			return nil, apperrors.NewValidation(apperrors.KindInvalidParameter,
				fmt.Sprintf("unsupported command status %q", status))
		}
	}

	if err := s.gate.Authorize(ctx, deviceID, userID); err != nil {
		return nil, err
	}

	page, err := s.commands.ListByDevice(ctx, deviceID, status, cursor)
	if err != nil {
		return nil, apperrors.Ensure(err, apperrors.KindCommandQueryFailure,
			"failed to query commands")
	}

	return &CommandList{
		Items:         page.Items,
		LastEvalKey:   page.NextToken,
		CommandStatus: status,
	}, nil
}
