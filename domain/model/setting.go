package model

// UserSetting is the per-user alerting preference. SettingID equals the
// owning user's id.
type UserSetting struct {
	SettingID        string   `json:"settingId"`
	AlertLevel       []string `json:"alertLevel"`
	SendNotification bool     `json:"sendNotification"`
	CreatedAt        string   `json:"createdAt"`
	UpdatedAt        string   `json:"updatedAt"`
}

// Subscribed reports whether the user is subscribed to the given event type.
func (s *UserSetting) Subscribed(eventType string) bool {
	for _, level := range s.AlertLevel {
		if level == eventType {
			return true
		}
	}
	return false
}
