package model

import "time"

// WaitlistEntry maps a signup email to its stable queue position.
// Entries are immutable after insert.
type WaitlistEntry struct {
	Email     string
	Position  int
	CreatedAt time.Time
}
