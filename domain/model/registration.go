package model

// Registration lifecycle states. A registration is created pending, advances
// to complete when the device finishes certificate onboarding, and is soft
// deleted (rewritten, never removed) on explicit deletion.
const (
	RegistrationPending  = "pending"
	RegistrationComplete = "complete"
	RegistrationDeleted  = "deleted"
)

// Registration is the ownership link between a user and a device.
type Registration struct {
	UserID      string                 `json:"userId"`
	DeviceID    string                 `json:"deviceId"`
	DeviceName  string                 `json:"deviceName"`
	ModelNumber string                 `json:"modelNumber"`
	Details     map[string]interface{} `json:"details,omitempty"`
	Status      string                 `json:"status"`
	CreatedAt   string                 `json:"createdAt"`
	UpdatedAt   string                 `json:"updatedAt"`
	ActivatedAt string                 `json:"activatedAt,omitempty"`
}

// Active reports whether the registration still links the user to the device.
func (r *Registration) Active() bool {
	return r.Status != RegistrationDeleted
}
