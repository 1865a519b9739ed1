package services

import (
	"context"

	"smartproduct-backend/application/ports"
	"smartproduct-backend/domain/model"
	apperrors "smartproduct-backend/pkg/errors"
	"smartproduct-backend/pkg/utils"

	"go.uber.org/zap"
)

// JITRService runs the just-in-time registration workflow: activate the
// device certificate on first connect, attach the thing and policy, and
// advance the matching pending registration to complete.
type JITRService struct {
	registrations ports.RegistrationRepository
	registry      ports.DeviceRegistry
	policyName    string
	metrics       ports.UsageMetrics
	lifecycle     ports.LifecycleEvents
	logger        *zap.Logger
}

// NewJITRService creates a new JITRService.
func NewJITRService(
	registrations ports.RegistrationRepository,
	registry ports.DeviceRegistry,
	policyName string,
	metrics ports.UsageMetrics,
	lifecycle ports.LifecycleEvents,
	logger *zap.Logger,
) *JITRService {
	return &JITRService{
		registrations: registrations,
		registry:      registry,
		policyName:    policyName,
		metrics:       metrics,
		lifecycle:     lifecycle,
		logger:        logger,
	}
}

// RegisterDevice handles one certificate-registration event. The thing name
// comes from the certificate subject's Common Name. When no pending
// registration matches, the certificate and policy stay attached and the
// failure is surfaced; there is no compensating detach.
func (s *JITRService) RegisterDevice(ctx context.Context, certificateID string) (*model.Registration, error) {
	certARN, thingName, err := s.registry.DescribeCertificate(ctx, certificateID)
	if err != nil {
		return nil, apperrors.NewFailure(apperrors.KindCertificateActivateFailure,
			"failed to describe certificate", err)
	}

	if err := s.registry.ActivateCertificate(ctx, certificateID); err != nil {
		return nil, apperrors.NewFailure(apperrors.KindCertificateActivateFailure,
			"failed to activate certificate", err)
	}

	if err := s.registry.CreateThing(ctx, thingName); err != nil {
		return nil, apperrors.NewFailure(apperrors.KindCertificateActivateFailure,
			"failed to create device thing", err)
	}
	if err := s.registry.AttachThingPrincipal(ctx, thingName, certARN); err != nil {
		return nil, apperrors.NewFailure(apperrors.KindCertificateActivateFailure,
			"failed to attach certificate to thing", err)
	}
	if err := s.registry.AttachPolicy(ctx, s.policyName, certARN); err != nil {
		return nil, apperrors.NewFailure(apperrors.KindCertificateActivateFailure,
			"failed to attach device policy", err)
	}

	pending, err := s.registrations.ListPendingByDevice(ctx, thingName)
	if err != nil {
		return nil, apperrors.NewFailure(apperrors.KindRegistrationRetrieveFailure,
			"failed to look up pending registration", err)
	}
	if len(pending) == 0 {
		s.logger.Error("no pending registration for onboarding device",
			zap.String("thingName", thingName),
			zap.String("certificateId", certificateID),
		)
		return nil, apperrors.NewMissing(apperrors.KindDeviceNotFoundFailure,
			"no pending registration for device")
	}

	reg := pending[0]
	now := utils.NowRFC3339()
	reg.Status = model.RegistrationComplete
	reg.ActivatedAt = now
	reg.UpdatedAt = now

	if err := s.registrations.Update(ctx, &reg); err != nil {
		return nil, apperrors.NewFailure(apperrors.KindRegistrationUpdateFailure,
			"failed to complete registration", err)
	}

	s.metrics.RecordRegistration(ctx, "activated")
	if err := s.lifecycle.Publish(ctx, "RegistrationCompleted", reg); err != nil {
		s.logger.Warn("lifecycle publish failed", zap.Error(err))
	}

	s.logger.Info("device registered",
		zap.String("thingName", thingName),
		zap.String("userId", reg.UserID),
	)

	return &reg, nil
}
