package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	SalonChallengeStatusActive   = "active"
	SalonChallengeStatusFinished = "finished"
)

// SalonChallenge is an owner-authored challenge fanned out to the salon's
// accepted members at creation time.
type SalonChallenge struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	SalonID       uuid.UUID `gorm:"type:uuid;index;not null" json:"salon_id"`
	Salon         Salon     `gorm:"foreignKey:SalonID" json:"-"`
	Title         string    `gorm:"size:150;not null" json:"title"`
	DurationDays  int       `gorm:"not null" json:"duration_days"`
	PostsRequired int       `gorm:"not null" json:"posts_required"`
	RewardText    string    `gorm:"type:text" json:"reward_text"`
	Status        string    `gorm:"size:20;not null;default:active" json:"status"`
	CreatedAt     time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (c *SalonChallenge) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	if c.PostsRequired == 0 {
		c.PostsRequired = c.DurationDays
	}
	return nil
}

// StylistChallengeProgress mirrors UserChallenge per (salon challenge,
// stylist). OwnerNotifiedAt is the one-shot sentinel for the completion
// notification: NULL until a send succeeds, set at most once.
type StylistChallengeProgress struct {
	ID               uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	SalonChallengeID uuid.UUID      `gorm:"type:uuid;index:idx_stylist_progress,unique,priority:1;not null" json:"salon_challenge_id"`
	SalonChallenge   SalonChallenge `gorm:"foreignKey:SalonChallengeID" json:"-"`
	StylistID        uuid.UUID      `gorm:"type:uuid;index:idx_stylist_progress,unique,priority:2;not null" json:"stylist_id"`
	Stylist          User           `gorm:"foreignKey:StylistID" json:"stylist"`
	Status           string         `gorm:"size:20;not null;default:active" json:"status"`
	ActiveKey        *string        `gorm:"size:10" json:"-"`
	StartedAt        time.Time      `gorm:"not null" json:"started_at"`
	PostsCompleted   int            `gorm:"default:0" json:"posts_completed"`
	CurrentStreak    int            `gorm:"default:0" json:"current_streak"`
	LongestStreak    int            `gorm:"default:0" json:"longest_streak"`
	LastPostDate     *string        `gorm:"size:10" json:"last_post_date,omitempty"`
	CompletedAt      *time.Time     `json:"completed_at,omitempty"`
	OwnerNotifiedAt  *time.Time     `json:"owner_notified_at,omitempty"`
	CreatedAt        time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt        time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
}

func (p *StylistChallengeProgress) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
