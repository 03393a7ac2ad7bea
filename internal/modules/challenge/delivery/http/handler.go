package http

import (
	"net/http"

	"anoa.com/salonstreak/internal/modules/challenge/service"
	"anoa.com/salonstreak/pkg/response"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type ChallengeHandler struct {
	challengeService service.ChallengeService
}

func NewChallengeHandler(challengeService service.ChallengeService) *ChallengeHandler {
	return &ChallengeHandler{challengeService: challengeService}
}

// ListDefinitions serves the challenge catalog. An optional ?q= query routes
// through full-text search.
func (h *ChallengeHandler) ListDefinitions(c *gin.Context) {
	defs, err := h.challengeService.ListDefinitions(c.Request.Context(), c.Query("q"))
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": defs})
}

func (h *ChallengeHandler) Start(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	challengeID, err := uuid.Parse(c.Param("challenge_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid challenge id"})
		return
	}

	enrollment, err := h.challengeService.Start(c.Request.Context(), userID, challengeID)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": enrollment})
}

func (h *ChallengeHandler) LogProgress(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	enrollmentID, err := uuid.Parse(c.Param("enrollment_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid enrollment id"})
		return
	}

	enrollment, err := h.challengeService.LogProgress(c.Request.Context(), userID, enrollmentID)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": enrollment})
}

func (h *ChallengeHandler) Abandon(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	enrollmentID, err := uuid.Parse(c.Param("enrollment_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid enrollment id"})
		return
	}

	if err := h.challengeService.Abandon(c.Request.Context(), userID, enrollmentID); err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Challenge abandoned"})
}

func (h *ChallengeHandler) MyEnrollments(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	enrollments, err := h.challengeService.MyEnrollments(c.Request.Context(), userID)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": enrollments})
}
