package http

import (
	"net/http"

	"anoa.com/salonstreak/internal/modules/salonchallenge/dto"
	"anoa.com/salonstreak/internal/modules/salonchallenge/service"
	"anoa.com/salonstreak/pkg/response"
	"anoa.com/salonstreak/pkg/validator"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type SalonChallengeHandler struct {
	salonChallengeService service.SalonChallengeService
}

func NewSalonChallengeHandler(salonChallengeService service.SalonChallengeService) *SalonChallengeHandler {
	return &SalonChallengeHandler{salonChallengeService: salonChallengeService}
}

func (h *SalonChallengeHandler) Create(c *gin.Context) {
	ownerID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	var input dto.CreateSalonChallengeInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}

	challenge, err := h.salonChallengeService.Create(c.Request.Context(), ownerID, input)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": challenge})
}

func (h *SalonChallengeHandler) List(c *gin.Context) {
	ownerID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	challenges, err := h.salonChallengeService.List(c.Request.Context(), ownerID)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": challenges})
}

func (h *SalonChallengeHandler) Finish(c *gin.Context) {
	ownerID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	challengeID, err := uuid.Parse(c.Param("challenge_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid challenge id"})
		return
	}

	if err := h.salonChallengeService.Finish(c.Request.Context(), ownerID, challengeID); err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Challenge finished"})
}

func (h *SalonChallengeHandler) Board(c *gin.Context) {
	ownerID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	challengeID, err := uuid.Parse(c.Param("challenge_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid challenge id"})
		return
	}

	board, err := h.salonChallengeService.Board(c.Request.Context(), ownerID, challengeID)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": board})
}

func (h *SalonChallengeHandler) LogProgress(c *gin.Context) {
	stylistID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	progressID, err := uuid.Parse(c.Param("progress_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid progress id"})
		return
	}

	progress, err := h.salonChallengeService.LogProgress(c.Request.Context(), stylistID, progressID)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": progress})
}

func (h *SalonChallengeHandler) MyProgress(c *gin.Context) {
	stylistID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	progresses, err := h.salonChallengeService.MyProgress(c.Request.Context(), stylistID)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": progresses})
}
