package types

// SavedIPMissing is shown wherever no persisted IP exists yet
const SavedIPMissing = "None (file missing)"

// Status represents the current monitor settings as reported to users
type Status struct {
	Running   bool   `json:"running"`
	SavedIP   string `json:"saved_ip,omitempty"`
	Interval  int    `json:"interval_seconds"`
	ChannelID string `json:"channel_id"`
}

// SavedIPOrDefault returns the saved IP or the missing sentinel
func (s *Status) SavedIPOrDefault() string {
	if s.SavedIP == "" {
		return SavedIPMissing
	}
	return s.SavedIP
}

// RunningLabel returns the human readable monitoring state
func (s *Status) RunningLabel() string {
	if s.Running {
		return "Running"
	}
	return "Stopped"
}
