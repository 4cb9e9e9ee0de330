package tracker

import (
	"time"

	"backend-trailmeter/internal/locate"
)

// State of the tracking session lifecycle. At most one session is active.
type State string

const (
	StateIdle               State = "idle"
	StateAwaitingPermission State = "awaiting_permission"
	StateActive             State = "active"
)

// Snapshot is the presentable view of the session: everything the display
// layer shows, nothing more.
type Snapshot struct {
	State         State         `json:"state"`
	SessionID     string        `json:"session_id,omitempty"`
	StartedAt     time.Time     `json:"started_at,omitempty"`
	EndedAt       time.Time     `json:"ended_at,omitempty"`
	DistanceKm    float64       `json:"distance_km"`
	DistanceMiles float64       `json:"distance_miles"`
	Elapsed       string        `json:"elapsed"`
	LastError     *locate.Error `json:"last_error,omitempty"`
}
