package services

import (
	"context"

	"smartproduct-backend/application/ports"
	apperrors "smartproduct-backend/pkg/errors"

	"go.uber.org/zap"
)

// RegistrationGate answers whether a non-deleted registration links a user to
// a device. Every command and event operation calls it first and fails closed.
type RegistrationGate struct {
	registrations ports.RegistrationRepository
	logger        *zap.Logger
}

// NewRegistrationGate creates a new RegistrationGate.
func NewRegistrationGate(registrations ports.RegistrationRepository, logger *zap.Logger) *RegistrationGate {
	return &RegistrationGate{registrations: registrations, logger: logger}
}

// Check resolves whether the user owns the device. A missing registration is a
// valid false result; errors are reserved for store failures.
func (g *RegistrationGate) Check(ctx context.Context, deviceID, userID string) (bool, error) {
	reg, err := g.registrations.Get(ctx, userID, deviceID)
	if err != nil {
		g.logger.Error("registration lookup failed",
			zap.String("deviceId", deviceID),
			zap.String("userId", userID),
			zap.Error(err),
		)
		return false, apperrors.NewFailure(apperrors.KindRegistrationRetrieveFailure,
			"failed to retrieve registration", err)
	}
	if reg == nil || !reg.Active() {
		return false, nil
	}
	return true, nil
}

// Authorize is Check with the fail-closed mapping applied: no registration
// becomes MissingRegistration.
func (g *RegistrationGate) Authorize(ctx context.Context, deviceID, userID string) error {
	ok, err := g.Check(ctx, deviceID, userID)
	if err != nil {
		return err
	}
	if !ok {
		return apperrors.NewMissing(apperrors.KindMissingRegistration,
			"no registration found for device")
	}
	return nil
}
