package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ChallengeDefinition is read-only reference data: authored outside the
// engine, seeded at boot, never mutated by enrollment flows.
type ChallengeDefinition struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Slug          string    `gorm:"size:100;uniqueIndex;not null" json:"slug"`
	Title         string    `gorm:"size:150;not null" json:"title"`
	Description   string    `gorm:"type:text" json:"description"`
	DurationDays  int       `gorm:"not null" json:"duration_days"`
	PostsRequired int       `gorm:"not null" json:"posts_required"` // defaults to DurationDays when seeded as 0
	CreatedAt     time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (d *ChallengeDefinition) BeforeCreate(tx *gorm.DB) error {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	if d.PostsRequired == 0 {
		d.PostsRequired = d.DurationDays
	}
	return nil
}

const (
	ChallengeStatusActive    = "active"
	ChallengeStatusCompleted = "completed"
	ChallengeStatusAbandoned = "abandoned"
)

// UserChallenge is one attempt at a challenge. ActiveKey holds "active" while
// the row is active and NULL once terminal; the unique index over
// (user, challenge, active_key) allows any number of finished attempts but at
// most one live one.
type UserChallenge struct {
	ID             uuid.UUID           `gorm:"type:uuid;primaryKey" json:"id"`
	UserID         uuid.UUID           `gorm:"type:uuid;index:idx_active_enrollment,unique,priority:1;not null" json:"user_id"`
	User           User                `gorm:"foreignKey:UserID" json:"-"`
	ChallengeID    uuid.UUID           `gorm:"type:uuid;index:idx_active_enrollment,unique,priority:2;not null" json:"challenge_id"`
	Challenge      ChallengeDefinition `gorm:"foreignKey:ChallengeID" json:"challenge"`
	Status         string              `gorm:"size:20;not null;default:active" json:"status"`
	ActiveKey      *string             `gorm:"size:10;index:idx_active_enrollment,unique,priority:3" json:"-"`
	StartedAt      time.Time           `gorm:"not null" json:"started_at"`
	PostsCompleted int                 `gorm:"default:0" json:"posts_completed"`
	CurrentStreak  int                 `gorm:"default:0" json:"current_streak"`
	LongestStreak  int                 `gorm:"default:0" json:"longest_streak"`
	LastPostDate   *string             `gorm:"size:10" json:"last_post_date,omitempty"`
	CompletedAt    *time.Time          `json:"completed_at,omitempty"`
	CreatedAt      time.Time           `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time           `gorm:"autoUpdateTime" json:"updated_at"`
}

func (c *UserChallenge) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

// ActiveKeyValue is the marker stored in ActiveKey while an enrollment or a
// stylist progress row is live.
const ActiveKeyValue = "active"
