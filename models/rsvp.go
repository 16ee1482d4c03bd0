package models

import "time"

type RsvpStatus string

const (
	RsvpStatusAccepted RsvpStatus = "accepted"
	RsvpStatusDeclined RsvpStatus = "declined"
)

// RsvpStatusPending is never stored: a (user, event) pair with no row is
// pending by definition. It only appears in derived views.
const RsvpStatusPending = "pending"

// ValidRsvpStatus reports whether s can be written to an Rsvp row.
func ValidRsvpStatus(s string) bool {
	switch RsvpStatus(s) {
	case RsvpStatusAccepted, RsvpStatusDeclined:
		return true
	}
	return false
}

// Rsvp records a user's response to an event. At most one row exists per
// (user, event) pair; the first response creates it and later responses
// update it in place.
type Rsvp struct {
	ID        uint       `json:"id" gorm:"primaryKey"`
	UserID    string     `json:"user_id" gorm:"not null;size:191;uniqueIndex:uk_rsvps_user_event"`
	EventID   string     `json:"event_id" gorm:"not null;size:191;uniqueIndex:uk_rsvps_user_event"`
	Status    RsvpStatus `json:"status" gorm:"not null;size:20"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`

	User  User  `json:"user,omitempty" gorm:"foreignKey:UserID"`
	Event Event `json:"event,omitempty" gorm:"foreignKey:EventID"`
}
