package models

import "time"

type FollowStatus string

const (
	FollowStatusPending  FollowStatus = "pending"
	FollowStatusAccepted FollowStatus = "accepted"
	FollowStatusDeclined FollowStatus = "declined"
)

// ValidFollowStatus reports whether s is usable as a status filter value.
func ValidFollowStatus(s string) bool {
	switch FollowStatus(s) {
	case FollowStatusPending, FollowStatusAccepted, FollowStatusDeclined:
		return true
	}
	return false
}

type Follow struct {
	ID         uint         `json:"id" gorm:"primaryKey"`
	FollowerID string       `json:"follower_id" gorm:"not null;size:191;uniqueIndex:uk_follows_follower_followee"`
	FolloweeID string       `json:"followee_id" gorm:"not null;size:191;uniqueIndex:uk_follows_follower_followee"`
	EventID    *string      `json:"event_id,omitempty" gorm:"size:191"` // optional contextual scoping
	Status     FollowStatus `json:"status" gorm:"not null;default:'pending';size:20"`
	CreatedAt  time.Time    `json:"created_at"`
	UpdatedAt  time.Time    `json:"updated_at"`

	Follower User `json:"follower,omitempty" gorm:"foreignKey:FollowerID"`
	Followee User `json:"followee,omitempty" gorm:"foreignKey:FolloweeID"`
}
