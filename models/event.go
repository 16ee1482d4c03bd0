package models

import (
	"time"
)

type Event struct {
	ID          string       `json:"id" gorm:"primaryKey;size:191"`
	Title       string       `json:"title" gorm:"not null;size:255"`
	Date        time.Time    `json:"date" gorm:"not null"`
	Location    string       `json:"location" gorm:"size:255"`
	Description string       `json:"description" gorm:"type:text"`
	ImageKey    string       `json:"image" gorm:"size:500"`
	Categories  CategoryList `json:"categories" gorm:"type:text"`
	HostID      string       `json:"host_id" gorm:"not null;size:191;index"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`

	Host     User      `json:"host,omitempty" gorm:"foreignKey:HostID"`
	Rsvps    []Rsvp    `json:"rsvps,omitempty" gorm:"foreignKey:EventID"`
	Comments []Comment `json:"comments,omitempty" gorm:"foreignKey:EventID"`
}

// FollowedUserStatus annotates one of the viewer's followees with their
// response on an event. Status is "pending" when the followee has no row.
type FollowedUserStatus struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	Status   string `json:"status"`
}

// EventAttendee is one user in an event's derived attendee lists.
type EventAttendee struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
}

// EventView is what GET endpoints return: the event itself plus derived
// attendee lists, and for an authenticated viewer the viewer's own
// response and the responses of up to a handful of users they follow.
type EventView struct {
	Event
	RsvpStatus    *string              `json:"rsvp_status,omitempty"`
	FollowedUsers []FollowedUserStatus `json:"followed_users,omitempty"`
	AcceptedUsers []EventAttendee      `json:"accepted_users,omitempty"`
	DeclinedUsers []EventAttendee      `json:"declined_users,omitempty"`
}
