package http

import (
	"net/http"

	"anoa.com/salonstreak/internal/modules/socialfeed/service"
	"anoa.com/salonstreak/pkg/response"
	"anoa.com/salonstreak/pkg/validator"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type socialSignalInput struct {
	UserID          string `json:"user_id" binding:"required,uuid"`
	Date            string `json:"date" binding:"required,datetime=2006-01-02"`
	ExternalMediaID string `json:"external_media_id" binding:"required,max=100"`
}

// SocialFeedHandler is the drop-off point for the external activity fetcher.
// Admin-only; stylists never write signals themselves.
type SocialFeedHandler struct {
	service service.SocialFeedService
}

func NewSocialFeedHandler(service service.SocialFeedService) *SocialFeedHandler {
	return &SocialFeedHandler{service: service}
}

func (h *SocialFeedHandler) IngestSignal(c *gin.Context) {
	var input socialSignalInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}

	userID, err := uuid.Parse(input.UserID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return
	}

	if err := h.service.IngestSignal(c.Request.Context(), userID, input.Date, input.ExternalMediaID); err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusAccepted, gin.H{"message": "signal accepted"})
}
