package entity

import (
	"time"

	"github.com/google/uuid"
)

// PostingLog is the append-only ledger of manual post confirmations. One row
// per user per calendar day; the unique index is the insert gate that
// serializes concurrent confirmations for the same day.
type PostingLog struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	UserID     uuid.UUID `gorm:"type:uuid;index:idx_posting_log_user_date,unique,priority:1;not null" json:"user_id"`
	User       User      `gorm:"foreignKey:UserID" json:"-"`
	Date       string    `gorm:"size:10;index:idx_posting_log_user_date,unique,priority:2;not null" json:"date"` // YYYY-MM-DD
	ContentRef *string   `gorm:"type:text" json:"content_ref,omitempty"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"created_at"`
}

// SocialPostSignal is an externally observed post, written by the
// social-activity ingest and read-only to the engine. Media uniqueness stops
// re-reports; the (user, date) index collapses a day to one countable signal.
type SocialPostSignal struct {
	ID              uint       `gorm:"primaryKey" json:"id"`
	UserID          uuid.UUID  `gorm:"type:uuid;index:idx_social_signal_user_date,unique,priority:1;not null" json:"user_id"`
	Date            string     `gorm:"size:10;index:idx_social_signal_user_date,unique,priority:2;not null" json:"date"`
	ExternalMediaID string     `gorm:"size:100;uniqueIndex;not null" json:"external_media_id"`
	ProcessedAt     *time.Time `gorm:"index" json:"processed_at,omitempty"`
	CreatedAt       time.Time  `gorm:"autoCreateTime" json:"created_at"`
}

// StreakDay marks a calendar day as counted toward the user's streak. The
// unique index is the cross-source arbiter: when the manual path and the
// social path race on the same date, only the insert that claims the marker
// moves the counters.
type StreakDay struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uuid.UUID `gorm:"type:uuid;index:idx_streak_day_user_date,unique,priority:1;not null" json:"user_id"`
	Date      string    `gorm:"size:10;index:idx_streak_day_user_date,unique,priority:2;not null" json:"date"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

// UserStreak is the denormalized per-user counter row. Mutated only by the
// streak engine, one transaction per accepted signal.
type UserStreak struct {
	UserID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"user_id"`
	User           User      `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	CurrentStreak  int       `gorm:"default:0" json:"current_streak"`
	LongestStreak  int       `gorm:"default:0" json:"longest_streak"`
	TotalPosts     int       `gorm:"default:0" json:"total_posts"`
	LastLoggedDate *string   `gorm:"size:10" json:"last_logged_date,omitempty"`
	UpdatedAt      time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// UserBadge marks a crossed streak milestone. Unique per user and threshold,
// so a badge unlocks at most once.
type UserBadge struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	UserID        uuid.UUID `gorm:"type:uuid;index:idx_user_badge,unique,priority:1;not null" json:"user_id"`
	MilestoneDays int       `gorm:"index:idx_user_badge,unique,priority:2;not null" json:"milestone_days"`
	UnlockedAt    time.Time `gorm:"autoCreateTime" json:"unlocked_at"`
}
