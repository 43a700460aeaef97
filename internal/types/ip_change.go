package types

import "time"

// IPChangeAction represents what happened to the public IP
type IPChangeAction string

const (
	// IPChangeActionInitial is emitted the first time an IP is observed
	IPChangeActionInitial IPChangeAction = "initial"
	// IPChangeActionChanged is emitted when the observed IP differs from the saved one
	IPChangeActionChanged IPChangeAction = "changed"
)

// IPChange represents a public IP change event
type IPChange struct {
	Action    IPChangeAction `json:"action"`
	OldIP     string         `json:"old_ip,omitempty"`
	NewIP     string         `json:"new_ip"`
	Timestamp time.Time      `json:"timestamp"`
}

// IsInitial reports whether the change is the first observation
func (c *IPChange) IsInitial() bool {
	return c.Action == IPChangeActionInitial
}
