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

func newCommandFixture(t *testing.T) (*CommandService, *memCommands, *fakeShadow, *fakePublisher) {
	t.Helper()
	regs := newMemRegistrations(&model.Registration{
		UserID:   "user-1",
		DeviceID: "device-1",
		Status:   model.RegistrationComplete,
	})
	cmds := &memCommands{}
	shadow := &fakeShadow{}
	pub := &fakePublisher{}
	svc := NewCommandService(
		NewRegistrationGate(regs, zap.NewNop()),
		cmds, shadow, pub,
		nopMetrics{}, nopLifecycle{},
		"smartproduct/commands",
		zap.NewNop(),
	)
	return svc, cmds, shadow, pub
}

func validCommandRequest() CreateCommandRequest {
	return CreateCommandRequest{
		CommandDetails: CommandDetailsRequest{Command: model.CommandSetTemp, Value: 70},
		ShadowDetails: ShadowDetailsRequest{
			PowerStatus:       model.PowerHeat,
			ActualTemperature: 68,
			TargetTemperature: 70.5,
		},
	}
}

func TestCreateCommandSetTemp(t *testing.T) {
	svc, cmds, shadow, pub := newCommandFixture(t)

	// Payload value 70 with shadow target 70.5: the persisted value is the
	// normalized target temperature, not the raw payload value.
	cmd, err := svc.CreateCommand(context.Background(), "user-1", "device-1", validCommandRequest())
	require.NoError(t, err)

	assert.Equal(t, model.CommandPending, cmd.Status)
	assert.Equal(t, model.CommandSetTemp, cmd.Details.Command)
	assert.Equal(t, "70.5", cmd.Details.Value)
	assert.NotEmpty(t, cmd.CommandID)

	require.Len(t, cmds.cmds, 1)
	require.Len(t, shadow.updates, 1)
	assert.Equal(t, "70.5", shadow.updates[0]["targetTemperature"])
	assert.Equal(t, model.PowerHeat, shadow.updates[0]["powerStatus"])
	assert.Equal(t, []string{"smartproduct/commands/device-1"}, pub.topics)
}

func TestCreateCommandSetModePersistsPowerStatus(t *testing.T) {
	svc, cmds, _, _ := newCommandFixture(t)

	req := validCommandRequest()
	req.CommandDetails.Command = model.CommandSetMode
	req.ShadowDetails.PowerStatus = model.PowerOff

	cmd, err := svc.CreateCommand(context.Background(), "user-1", "device-1", req)
	require.NoError(t, err)
	assert.Equal(t, model.PowerOff, cmd.Details.Value)
	assert.Len(t, cmds.cmds, 1)
}

func TestCreateCommandValidation(t *testing.T) {
	svc, cmds, shadow, pub := newCommandFixture(t)

	tests := []struct {
		name   string
		mutate func(*CreateCommandRequest)
	}{
		{"unknown command", func(r *CreateCommandRequest) { r.CommandDetails.Command = "reboot" }},
		{"unknown power status", func(r *CreateCommandRequest) { r.ShadowDetails.PowerStatus = "ON" }},
		{"temperature below range", func(r *CreateCommandRequest) { r.ShadowDetails.TargetTemperature = 49.99 }},
		{"temperature above range", func(r *CreateCommandRequest) { r.ShadowDetails.TargetTemperature = 110.01 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validCommandRequest()
			tt.mutate(&req)

			_, err := svc.CreateCommand(context.Background(), "user-1", "device-1", req)
			assert.True(t, apperrors.IsKind(err, apperrors.KindInvalidParameter))
		})
	}

	// Validation fails before any store or device access.
	assert.Empty(t, cmds.cmds)
	assert.Empty(t, shadow.updates)
	assert.Empty(t, pub.topics)
}

func TestCreateCommandGated(t *testing.T) {
	svc, cmds, _, _ := newCommandFixture(t)

	_, err := svc.CreateCommand(context.Background(), "other-user", "device-1", validCommandRequest())
	assert.True(t, apperrors.IsKind(err, apperrors.KindMissingRegistration))
	assert.Empty(t, cmds.cmds)
}

func TestCreateCommandNoRollbackOnPublishFailure(t *testing.T) {
	svc, cmds, _, pub := newCommandFixture(t)
	pub.err = errors.New("broker unreachable")

	_, err := svc.CreateCommand(context.Background(), "user-1", "device-1", validCommandRequest())
	assert.True(t, apperrors.IsKind(err, apperrors.KindCommandCreateFailure))

	// The pending row survives: command creation does not compensate.
	require.Len(t, cmds.cmds, 1)
	assert.Equal(t, model.CommandPending, cmds.cmds[0].Status)
}

func TestCreateCommandShadowFailure(t *testing.T) {
	svc, cmds, shadow, _ := newCommandFixture(t)
	shadow.updateErr = errors.New("shadow rejected")

	_, err := svc.CreateCommand(context.Background(), "user-1", "device-1", validCommandRequest())
	assert.True(t, apperrors.IsKind(err, apperrors.KindCommandCreateFailure))
	assert.Len(t, cmds.cmds, 1)
}

func TestGetCommand(t *testing.T) {
	svc, cmds, _, _ := newCommandFixture(t)
	cmds.cmds = append(cmds.cmds, &model.Command{
		DeviceID:  "device-1",
		CommandID: "cmd-1",
		Status:    model.CommandPending,
	})

	cmd, err := svc.GetCommand(context.Background(), "user-1", "device-1", "cmd-1")
	require.NoError(t, err)
	assert.Equal(t, "cmd-1", cmd.CommandID)

	_, err = svc.GetCommand(context.Background(), "user-1", "device-1", "cmd-2")
	assert.True(t, apperrors.IsKind(err, apperrors.KindMissingCommand))
}

func TestGetCommandsStatusFilter(t *testing.T) {
	svc, cmds, _, _ := newCommandFixture(t)
	cmds.cmds = append(cmds.cmds,
		&model.Command{DeviceID: "device-1", CommandID: "a", Status: model.CommandPending},
		&model.Command{DeviceID: "device-1", CommandID: "b", Status: model.CommandSuccess},
	)

	list, err := svc.GetCommands(context.Background(), "user-1", "device-1", model.CommandPending, "")
	require.NoError(t, err)
	require.Len(t, list.Items, 1)
	assert.Equal(t, "a", list.Items[0].CommandID)
	assert.Equal(t, model.CommandPending, list.CommandStatus)

	_, err = svc.GetCommands(context.Background(), "user-1", "device-1", "bogus", "")
	assert.True(t, apperrors.IsKind(err, apperrors.KindInvalidParameter))
}
