package dto

import "time"

type DefinitionResponse struct {
	ID            string `json:"id"`
	Slug          string `json:"slug"`
	Title         string `json:"title"`
	Description   string `json:"description"`
	DurationDays  int    `json:"duration_days"`
	PostsRequired int    `json:"posts_required"`
}

type EnrollmentResponse struct {
	ID             string             `json:"id"`
	Challenge      DefinitionResponse `json:"challenge"`
	Status         string             `json:"status"`
	StartedAt      time.Time          `json:"started_at"`
	PostsCompleted int                `json:"posts_completed"`
	CurrentStreak  int                `json:"current_streak"`
	LongestStreak  int                `json:"longest_streak"`
	LastPostDate   *string            `json:"last_post_date,omitempty"`
	CompletedAt    *time.Time         `json:"completed_at,omitempty"`
}
