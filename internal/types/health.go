package types

import "time"

// HealthStatus represents the process health status
type HealthStatus struct {
	Healthy    bool          `json:"healthy"`
	InstanceID string        `json:"instance_id"`
	Version    string        `json:"version"`
	StartTime  time.Time     `json:"start_time"`
	Uptime     time.Duration `json:"uptime"`
	Timestamp  time.Time     `json:"timestamp"`
}
