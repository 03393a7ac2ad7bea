package dto

type LogPostInput struct {
	// Date defaults to today when omitted.
	Date       string  `json:"date" binding:"omitempty,datetime=2006-01-02"`
	ContentRef *string `json:"content_ref" binding:"omitempty,max=2048"`
}

type StreakSnapshot struct {
	CurrentStreak  int      `json:"current_streak"`
	LongestStreak  int      `json:"longest_streak"`
	TotalPosts     int      `json:"total_posts"`
	LastLoggedDate *string  `json:"last_logged_date,omitempty"`
	PostedToday    bool     `json:"posted_today"`
	RecentDates    []string `json:"recent_dates"`
	Badges         []int    `json:"badges"`
}
