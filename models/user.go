package models

import (
	"time"
)

type UserPrivacy string

const (
	UserPrivacyPublic  UserPrivacy = "public"
	UserPrivacyPrivate UserPrivacy = "private"
)

type User struct {
	ID        string      `json:"id" gorm:"primaryKey;size:191"`
	Username  string      `json:"username" gorm:"uniqueIndex;not null;size:50"`
	Email     string      `json:"email" gorm:"uniqueIndex;not null;size:255"`
	Password  string      `json:"-" gorm:"not null;size:255"`
	Privacy   UserPrivacy `json:"privacy" gorm:"not null;default:'public';size:20"`
	CreatedAt time.Time   `json:"created_at"`
	UpdatedAt time.Time   `json:"updated_at"`

	// Relationships
	HostedEvents []Event  `json:"hosted_events,omitempty" gorm:"foreignKey:HostID"`
	Rsvps        []Rsvp   `json:"rsvps,omitempty" gorm:"foreignKey:UserID"`
	SentFollows  []Follow `json:"sent_follows,omitempty" gorm:"foreignKey:FollowerID"`
}

// IsPublic reports whether other users may browse this user's follow lists.
func (u *User) IsPublic() bool {
	return u.Privacy == UserPrivacyPublic
}
