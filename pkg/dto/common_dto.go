package dto

// StylistResponse is the public subset of a user shown on progress and
// leader-facing views.
type StylistResponse struct {
	Username    string  `json:"username"`
	DisplayName string  `json:"display_name"`
	AvatarURL   *string `json:"avatar_url"`
}
