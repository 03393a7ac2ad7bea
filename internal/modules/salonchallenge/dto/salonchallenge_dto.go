package dto

import (
	"time"

	commonDto "anoa.com/salonstreak/pkg/dto"
)

type CreateSalonChallengeInput struct {
	Title         string `json:"title" binding:"required,min=2,max=150"`
	DurationDays  int    `json:"duration_days" binding:"required,min=1,max=365"`
	PostsRequired int    `json:"posts_required" binding:"omitempty,min=1,max=365"`
	RewardText    string `json:"reward_text" binding:"omitempty,max=500"`
}

type SalonChallengeResponse struct {
	ID             string    `json:"id"`
	SalonID        string    `json:"salon_id"`
	Title          string    `json:"title"`
	DurationDays   int       `json:"duration_days"`
	PostsRequired  int       `json:"posts_required"`
	RewardText     string    `json:"reward_text,omitempty"`
	Status         string    `json:"status"`
	EnrolledCount  int       `json:"enrolled_count,omitempty"`
	CompletedCount int       `json:"completed_count,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

type StylistProgressResponse struct {
	ID             string                    `json:"id"`
	Stylist        commonDto.StylistResponse `json:"stylist"`
	Status         string                    `json:"status"`
	StartedAt      time.Time                 `json:"started_at"`
	PostsCompleted int                       `json:"posts_completed"`
	CurrentStreak  int                       `json:"current_streak"`
	LongestStreak  int                       `json:"longest_streak"`
	LastPostDate   *string                   `json:"last_post_date,omitempty"`
	CompletedAt    *time.Time                `json:"completed_at,omitempty"`
}

// ChallengeBoardResponse is the owner's view: the challenge plus every
// stylist's progress, best first.
type ChallengeBoardResponse struct {
	Challenge SalonChallengeResponse    `json:"challenge"`
	Progress  []StylistProgressResponse `json:"progress"`
}

// MyProgressResponse is a stylist's own row with the parent challenge inlined.
type MyProgressResponse struct {
	ID             string                 `json:"id"`
	Challenge      SalonChallengeResponse `json:"challenge"`
	Status         string                 `json:"status"`
	PostsCompleted int                    `json:"posts_completed"`
	CurrentStreak  int                    `json:"current_streak"`
	LongestStreak  int                    `json:"longest_streak"`
	LastPostDate   *string                `json:"last_post_date,omitempty"`
	CompletedAt    *time.Time             `json:"completed_at,omitempty"`
}
