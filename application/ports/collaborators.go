package ports

import "context"

// DeviceShadow is the device's desired/reported state document held by the
// transport layer.
type DeviceShadow interface {
	// Get returns the current shadow state document, or (nil, nil) when the
	// device has no shadow yet.
	Get(ctx context.Context, thingName string) (map[string]interface{}, error)
	// UpdateDesired writes a partial desired-state document.
	UpdateDesired(ctx context.Context, thingName string, desired map[string]interface{}) error
}

// TopicPublisher publishes a payload on a device topic.
type TopicPublisher interface {
	Publish(ctx context.Context, topic string, payload interface{}) error
}

// DeviceRegistry covers the certificate/thing side of device onboarding.
type DeviceRegistry interface {
	// DescribeCertificate returns the certificate ARN and the Common Name of
	// its subject, which doubles as the thing name.
	DescribeCertificate(ctx context.Context, certificateID string) (arn, commonName string, err error)
	ActivateCertificate(ctx context.Context, certificateID string) error
	CreateThing(ctx context.Context, thingName string) error
	DeleteThing(ctx context.Context, thingName string) error
	AttachThingPrincipal(ctx context.Context, thingName, certificateARN string) error
	AttachPolicy(ctx context.Context, policyName, certificateARN string) error
}

// IdentityProvider resolves user attributes from the identity pool.
type IdentityProvider interface {
	// PhoneNumber returns the user's phone number, or "" when the attribute
	// is absent.
	PhoneNumber(ctx context.Context, sub string) (string, error)
}

// SMSSender delivers SMS-class notifications.
type SMSSender interface {
	SendSMS(ctx context.Context, phoneNumber, message string) error
}

// UsageMetrics is the fire-and-forget anonymous metrics side channel. Failures
// are logged and swallowed by implementations; callers never see them.
type UsageMetrics interface {
	RecordCommand(ctx context.Context, command string, failed bool)
	RecordAlert(ctx context.Context, sent bool)
	RecordRegistration(ctx context.Context, outcome string)
}

// LifecycleEvents publishes domain lifecycle notifications (command accepted,
// registration completed) to the internal event bus. Fire-and-forget.
type LifecycleEvents interface {
	Publish(ctx context.Context, detailType string, detail interface{}) error
}
