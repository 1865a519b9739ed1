package model

// Command statuses. The engine only ever writes pending; shadow-sync
// processes transition commands to success or failed afterwards.
const (
	CommandPending = "pending"
	CommandSuccess = "success"
	CommandFailed  = "failed"
)

// Supported command verbs.
const (
	CommandSetTemp = "set-temp"
	CommandSetMode = "set-mode"
)

// Device power modes accepted in shadow details.
const (
	PowerHeat = "HEAT"
	PowerAC   = "AC"
	PowerOff  = "OFF"
)

// CommandDetails is the instruction carried by a command.
type CommandDetails struct {
	Command string `json:"command"`
	Value   string `json:"value"`
}

// Command is a single instruction issued to a device.
type Command struct {
	DeviceID  string         `json:"deviceId"`
	CommandID string         `json:"commandId"`
	UserID    string         `json:"userId"`
	Status    string         `json:"status"`
	Details   CommandDetails `json:"details"`
	CreatedAt string         `json:"createdAt"`
	UpdatedAt string         `json:"updatedAt"`
}
