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

func TestRegistrationGateCheck(t *testing.T) {
	repo := newMemRegistrations(&model.Registration{
		UserID:   "user-1",
		DeviceID: "device-1",
		Status:   model.RegistrationComplete,
	})
	gate := NewRegistrationGate(repo, zap.NewNop())

	ok, err := gate.Check(context.Background(), "device-1", "user-1")
	require.NoError(t, err)
	assert.True(t, ok)

	// Missing registration is a valid false result, not an error.
	ok, err = gate.Check(context.Background(), "device-2", "user-1")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRegistrationGateDeletedRegistration(t *testing.T) {
	repo := newMemRegistrations(&model.Registration{
		UserID:   "user-1",
		DeviceID: "device-1",
		Status:   model.RegistrationDeleted,
	})
	gate := NewRegistrationGate(repo, zap.NewNop())

	ok, err := gate.Check(context.Background(), "device-1", "user-1")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRegistrationGateStoreError(t *testing.T) {
	repo := newMemRegistrations()
	repo.getErr = errors.New("dynamo down")
	gate := NewRegistrationGate(repo, zap.NewNop())

	_, err := gate.Check(context.Background(), "device-1", "user-1")
	assert.True(t, apperrors.IsKind(err, apperrors.KindRegistrationRetrieveFailure))
}

func TestRegistrationGateAuthorizeFailsClosed(t *testing.T) {
	gate := NewRegistrationGate(newMemRegistrations(), zap.NewNop())

	err := gate.Authorize(context.Background(), "device-1", "user-1")
	assert.True(t, apperrors.IsKind(err, apperrors.KindMissingRegistration))
}
