package models

import "time"

type InviteStatus string

const (
	InviteStatusPending  InviteStatus = "pending"
	InviteStatusAccepted InviteStatus = "accepted"
	InviteStatusDeclined InviteStatus = "declined"
)

// ValidInviteStatus reports whether s is usable as a status filter value.
func ValidInviteStatus(s string) bool {
	switch InviteStatus(s) {
	case InviteStatusPending, InviteStatusAccepted, InviteStatusDeclined:
		return true
	}
	return false
}

type Invite struct {
	ID        uint         `json:"id" gorm:"primaryKey"`
	EventID   string       `json:"event_id" gorm:"not null;size:191;uniqueIndex:uk_invites_inviter_event_invitee"`
	InviterID string       `json:"inviter_id" gorm:"not null;size:191;uniqueIndex:uk_invites_inviter_event_invitee"`
	InviteeID string       `json:"invitee_id" gorm:"not null;size:191;uniqueIndex:uk_invites_inviter_event_invitee"`
	Status    InviteStatus `json:"status" gorm:"not null;default:'pending';size:20"`
	CreatedAt time.Time    `json:"created_at"`
	UpdatedAt time.Time    `json:"updated_at"`

	Event   Event `json:"event,omitempty" gorm:"foreignKey:EventID"`
	Inviter User  `json:"inviter,omitempty" gorm:"foreignKey:InviterID"`
	Invitee User  `json:"invitee,omitempty" gorm:"foreignKey:InviteeID"`
}
