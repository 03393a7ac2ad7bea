package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Salon struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	OwnerID   uuid.UUID `gorm:"type:uuid;index;not null" json:"owner_id"`
	Owner     User      `gorm:"foreignKey:OwnerID" json:"-"`
	Name      string    `gorm:"size:100;not null" json:"name"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (s *Salon) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

const (
	MemberStatusPending  = "pending"
	MemberStatusAccepted = "accepted"
	MemberStatusDeclined = "declined"
)

// SalonMember ties a stylist to a salon. Only accepted members are eligible
// for salon challenge fan-out.
type SalonMember struct {
	ID         uint       `gorm:"primaryKey" json:"id"`
	SalonID    uuid.UUID  `gorm:"type:uuid;index:idx_salon_member,unique,priority:1;not null" json:"salon_id"`
	Salon      Salon      `gorm:"foreignKey:SalonID" json:"-"`
	UserID     uuid.UUID  `gorm:"type:uuid;index:idx_salon_member,unique,priority:2;not null" json:"user_id"`
	User       User       `gorm:"foreignKey:UserID" json:"user"`
	Status     string     `gorm:"size:20;not null;default:pending" json:"status"`
	InvitedAt  time.Time  `gorm:"autoCreateTime" json:"invited_at"`
	AcceptedAt *time.Time `json:"accepted_at,omitempty"`
}
