package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	NotificationTypeBadgeUnlocked      = "badge_unlocked"
	NotificationTypeChallengeCompleted = "challenge_completed"
	NotificationTypeSalonCompleted     = "salon_challenge_completed"
	NotificationTypeSalonInvite        = "salon_invite"
	NotificationTypeSalonChallenge     = "salon_challenge_started"
)

type Notification struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID     uuid.UUID `gorm:"type:uuid;index;not null" json:"user_id"`  // receiver
	ActorID    uuid.UUID `gorm:"type:uuid;not null" json:"actor_id"`       // who triggered it
	EntityID   uuid.UUID `gorm:"type:uuid;not null" json:"entity_id"`      // badge / enrollment / progress row
	EntityType string    `gorm:"size:50;not null" json:"entity_type"`      // 'badge', 'challenge', 'salon_challenge'
	Type       string    `gorm:"size:50;not null" json:"type"`
	Message    string    `gorm:"type:text" json:"message"`
	IsRead     bool      `gorm:"default:false" json:"is_read"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"created_at"`

	Actor *User `gorm:"foreignKey:ActorID" json:"actor,omitempty"`
}

func (n *Notification) BeforeCreate(tx *gorm.DB) error {
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	return nil
}
