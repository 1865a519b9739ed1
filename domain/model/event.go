package model

// Event types emitted by devices.
const (
	EventError      = "error"
	EventWarning    = "warning"
	EventInfo       = "info"
	EventDiagnostic = "diagnostic"
)

// ValidEventType reports whether t is a known event type.
func ValidEventType(t string) bool {
	switch t {
	case EventError, EventWarning, EventInfo, EventDiagnostic:
		return true
	}
	return false
}

// Event is a device-originated occurrence. UserID is always resolved
// server-side from the device's registration, never trusted from the payload.
type Event struct {
	DeviceID   string                 `json:"deviceId"`
	ID         string                 `json:"id"`
	UserID     string                 `json:"userId"`
	Type       string                 `json:"type"`
	Message    string                 `json:"message"`
	Details    map[string]interface{} `json:"details,omitempty"`
	Ack        bool                   `json:"ack"`
	Suppress   bool                   `json:"suppress"`
	Timestamp  string                 `json:"timestamp"`
	CreatedAt  string                 `json:"createdAt"`
	UpdatedAt  string                 `json:"updatedAt"`
	SentAt     string                 `json:"sentAt,omitempty"`
	DeviceName string                 `json:"deviceName,omitempty"`
}
