package dto

import "time"

type CreateSalonInput struct {
	Name string `json:"name" binding:"required,min=2,max=100"`
}

type InviteMemberInput struct {
	Username string `json:"username" binding:"required"`
}

type SalonResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	OwnerID   string    `json:"owner_id"`
	CreatedAt time.Time `json:"created_at"`
}

type MemberResponse struct {
	UserID      string     `json:"user_id"`
	Username    string     `json:"username"`
	DisplayName string     `json:"display_name"`
	Status      string     `json:"status"`
	InvitedAt   time.Time  `json:"invited_at"`
	AcceptedAt  *time.Time `json:"accepted_at,omitempty"`
}

type InviteResponse struct {
	SalonID   string    `json:"salon_id"`
	SalonName string    `json:"salon_name"`
	InvitedAt time.Time `json:"invited_at"`
}
