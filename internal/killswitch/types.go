package killswitch

import (
	"errors"
	"time"
)

var ErrNotFound = errors.New("venue switch not found")

// Switch records why and when a venue was taken out of rotation.
type Switch struct {
	Venue      string    `json:"venue"`
	Reason     string    `json:"reason,omitempty"`
	DisabledAt time.Time `json:"disabled_at"`
}
