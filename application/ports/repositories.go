package ports

import (
	"context"

	"smartproduct-backend/domain/model"
)

// Page carries a paginated result set together with the opaque continuation
// token callers must echo back to fetch the next page. An empty token is the
// authoritative end-of-data signal.
type Page[T any] struct {
	Items     []T
	NextToken string
}

// RegistrationRepository persists device-ownership records. Lookups that find
// nothing return (nil, nil); errors are reserved for store failures.
type RegistrationRepository interface {
	Get(ctx context.Context, userID, deviceID string) (*model.Registration, error)
	Create(ctx context.Context, reg *model.Registration) error
	Update(ctx context.Context, reg *model.Registration) error
	// HardDelete removes the row outright. Only the create-rollback leg uses it;
	// user-facing deletion rewrites the row as deleted instead.
	HardDelete(ctx context.Context, userID, deviceID string) error
	// ListByDevice queries the deviceId index, excluding deleted rows.
	ListByDevice(ctx context.Context, deviceID string) ([]model.Registration, error)
	// ListPendingByDevice queries the deviceId index filtered to pending rows.
	ListPendingByDevice(ctx context.Context, deviceID string) ([]model.Registration, error)
	ListByUser(ctx context.Context, userID, cursor string) (Page[model.Registration], error)
	// ListAllByUser loads every non-deleted registration of a user; used for
	// the in-memory deviceName join on event reads.
	ListAllByUser(ctx context.Context, userID string) ([]model.Registration, error)
}

// CommandRepository persists device commands.
type CommandRepository interface {
	Create(ctx context.Context, cmd *model.Command) error
	Get(ctx context.Context, deviceID, commandID string) (*model.Command, error)
	// ListByDevice returns commands in descending update order, optionally
	// post-filtered by status.
	ListByDevice(ctx context.Context, deviceID, status, cursor string) (Page[model.Command], error)
}

// EventRepository persists device events.
type EventRepository interface {
	Create(ctx context.Context, ev *model.Event) error
	Get(ctx context.Context, deviceID, eventID string) (*model.Event, error)
	// MarkViewed sets ack and suppress after a user opened the event detail.
	MarkViewed(ctx context.Context, deviceID, eventID string) error
	ListByDevice(ctx context.Context, deviceID, eventType, cursor string) (Page[model.Event], error)
	ListByUser(ctx context.Context, userID, deviceID, eventType, cursor string) (Page[model.Event], error)
	// ListAlerts returns unacknowledged events whose type is in alertLevel,
	// optionally restricted to one device.
	ListAlerts(ctx context.Context, userID string, alertLevel []string, deviceID, cursor string) (Page[model.Event], error)
	CountAlerts(ctx context.Context, userID string, alertLevel []string, deviceID string) (int, error)
}

// SettingRepository persists per-user alert preferences.
type SettingRepository interface {
	Get(ctx context.Context, settingID string) (*model.UserSetting, error)
	Put(ctx context.Context, setting *model.UserSetting) error
}

// ReferenceRepository looks up manufacturer reference data by model number.
// The matched details document is copied onto the registration at creation.
type ReferenceRepository interface {
	Get(ctx context.Context, modelNumber string) (map[string]interface{}, error)
}
