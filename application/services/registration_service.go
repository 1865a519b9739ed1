package services

import (
	"context"

	"smartproduct-backend/application/ports"
	"smartproduct-backend/domain/model"
	apperrors "smartproduct-backend/pkg/errors"
	"smartproduct-backend/pkg/utils"

	"go.uber.org/zap"
)

// CreateRegistrationRequest is the POST /registration body.
type CreateRegistrationRequest struct {
	DeviceID    string `json:"deviceId" validate:"required"`
	DeviceName  string `json:"deviceName" validate:"required"`
	ModelNumber string `json:"modelNumber" validate:"required"`
}

// RegistrationList is a paginated registration listing.
type RegistrationList struct {
	Items       []model.Registration `json:"registrations"`
	LastEvalKey string               `json:"lastevalkey,omitempty"`
}

// RegistrationService owns the device-ownership lifecycle: create pending,
// soft delete, and the listing reads.
type RegistrationService struct {
	registrations ports.RegistrationRepository
	references    ports.ReferenceRepository
	registry      ports.DeviceRegistry
	metrics       ports.UsageMetrics
	lifecycle     ports.LifecycleEvents
	logger        *zap.Logger
}

// NewRegistrationService creates a new RegistrationService.
func NewRegistrationService(
	registrations ports.RegistrationRepository,
	references ports.ReferenceRepository,
	registry ports.DeviceRegistry,
	metrics ports.UsageMetrics,
	lifecycle ports.LifecycleEvents,
	logger *zap.Logger,
) *RegistrationService {
	return &RegistrationService{
		registrations: registrations,
		references:    references,
		registry:      registry,
		metrics:       metrics,
		lifecycle:     lifecycle,
		logger:        logger,
	}
}

// CreateRegistration persists a pending registration and creates the IoT
// thing for it. This is the one two-phase sequence that compensates: a
// thing-creation failure deletes the just-written row and surfaces the
// original error. A failed rollback is reported as DeviceRollBackFailure
// since it leaves an orphaned row behind.
func (s *RegistrationService) CreateRegistration(ctx context.Context, userID string, req CreateRegistrationRequest) (*model.Registration, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, apperrors.NewValidation(apperrors.KindInvalidParameter, err.Error())
	}

	details, err := s.references.Get(ctx, req.ModelNumber)
	if err != nil {
		return nil, apperrors.NewFailure(apperrors.KindRegistrationCreateFailure,
			"failed to look up model reference", err)
	}
	if details == nil {
		return nil, apperrors.NewMissing(apperrors.KindMissingDevice,
			"unknown model number")
	}

	// At most one live registration per device, enforced by querying the
	// deviceId index before the insert.
	existing, err := s.registrations.ListByDevice(ctx, req.DeviceID)
	if err != nil {
		return nil, apperrors.NewFailure(apperrors.KindRegistrationQueryFailure,
			"failed to check device registration", err)
	}
	if len(existing) > 0 {
		return nil, apperrors.NewFailure(apperrors.KindDeviceRegisteredFailure,
			"device is already registered", nil)
	}

	now := utils.NowRFC3339()
	reg := &model.Registration{
		UserID:      userID,
		DeviceID:    req.DeviceID,
		DeviceName:  req.DeviceName,
		ModelNumber: req.ModelNumber,
		Details:     details,
		Status:      model.RegistrationPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.registrations.Create(ctx, reg); err != nil {
		return nil, apperrors.NewFailure(apperrors.KindRegistrationCreateFailure,
			"failed to save registration", err)
	}

	if err := s.registry.CreateThing(ctx, req.DeviceID); err != nil {
		return nil, s.rollbackCreate(ctx, reg, err)
	}

	s.metrics.RecordRegistration(ctx, "created")
	if err := s.lifecycle.Publish(ctx, "RegistrationCreated", reg); err != nil {
		s.logger.Warn("lifecycle publish failed", zap.Error(err))
	}

	s.logger.Info("registration created",
		zap.String("deviceId", reg.DeviceID),
		zap.String("userId", reg.UserID),
	)

	return reg, nil
}

func (s *RegistrationService) rollbackCreate(ctx context.Context, reg *model.Registration, cause error) error {
	if err := s.registrations.HardDelete(ctx, reg.UserID, reg.DeviceID); err != nil {
		// The orphaned pending row is the worst reported state; flag it so
		// operators can clean up by hand.
		s.logger.Error("registration rollback failed",
			zap.String("deviceId", reg.DeviceID),
			zap.String("userId", reg.UserID),
			zap.Bool("orphanedRow", true),
			zap.NamedError("createError", cause),
			zap.Error(err),
		)
		return apperrors.NewFailure(apperrors.KindDeviceRollBackFailure,
			"failed to roll back registration", err)
	}

	s.logger.Warn("registration rolled back",
		zap.String("deviceId", reg.DeviceID),
		zap.Error(cause),
	)
	return apperrors.NewFailure(apperrors.KindRegistrationCreateFailure,
		"failed to create device thing", cause)
}

// ListRegistrations returns one filled page of the user's registrations.
func (s *RegistrationService) ListRegistrations(ctx context.Context, userID, cursor string) (*RegistrationList, error) {
	page, err := s.registrations.ListByUser(ctx, userID, cursor)
	if err != nil {
		return nil, apperrors.Ensure(err, apperrors.KindRegistrationQueryFailure,
			"failed to query registrations")
	}

	return &RegistrationList{Items: page.Items, LastEvalKey: page.NextToken}, nil
}

// DeleteRegistration soft-deletes the registration row and removes the IoT
// thing. The row is rewritten with status deleted, never removed, so the
// device id's history stays queryable.
func (s *RegistrationService) DeleteRegistration(ctx context.Context, userID, deviceID string) error {
	reg, err := s.registrations.Get(ctx, userID, deviceID)
	if err != nil {
		return apperrors.NewFailure(apperrors.KindRegistrationRetrieveFailure,
			"failed to retrieve registration", err)
	}
	if reg == nil || !reg.Active() {
		return apperrors.NewMissing(apperrors.KindMissingRegistration,
			"no registration found for device")
	}

	reg.Status = model.RegistrationDeleted
	reg.UpdatedAt = utils.NowRFC3339()
	if err := s.registrations.Update(ctx, reg); err != nil {
		return apperrors.NewFailure(apperrors.KindRegistrationDeleteFailure,
			"failed to delete registration", err)
	}

	if err := s.registry.DeleteThing(ctx, deviceID); err != nil {
		return apperrors.NewFailure(apperrors.KindRegistrationDeleteFailure,
			"failed to delete device thing", err)
	}

	s.metrics.RecordRegistration(ctx, "deleted")
	s.logger.Info("registration deleted",
		zap.String("deviceId", deviceID),
		zap.String("userId", userID),
	)
	return nil
}
