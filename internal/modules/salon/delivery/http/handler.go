package http

import (
	"net/http"

	"anoa.com/salonstreak/internal/modules/salon/dto"
	"anoa.com/salonstreak/internal/modules/salon/service"
	"anoa.com/salonstreak/pkg/response"
	"anoa.com/salonstreak/pkg/validator"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type SalonHandler struct {
	salonService service.SalonService
}

func NewSalonHandler(salonService service.SalonService) *SalonHandler {
	return &SalonHandler{salonService: salonService}
}

func (h *SalonHandler) CreateSalon(c *gin.Context) {
	ownerID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	var input dto.CreateSalonInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}

	salon, err := h.salonService.CreateSalon(c.Request.Context(), ownerID, input)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": salon})
}

func (h *SalonHandler) MySalon(c *gin.Context) {
	ownerID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	salon, err := h.salonService.MySalon(c.Request.Context(), ownerID)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": salon})
}

func (h *SalonHandler) InviteMember(c *gin.Context) {
	ownerID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	var input dto.InviteMemberInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}

	if err := h.salonService.InviteMember(c.Request.Context(), ownerID, input); err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "invite sent"})
}

func (h *SalonHandler) Members(c *gin.Context) {
	ownerID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	members, err := h.salonService.Members(c.Request.Context(), ownerID)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": members})
}

func (h *SalonHandler) MyInvites(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	invites, err := h.salonService.MyInvites(c.Request.Context(), userID)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": invites})
}

func (h *SalonHandler) AcceptInvite(c *gin.Context) {
	h.resolveInvite(c, true)
}

func (h *SalonHandler) DeclineInvite(c *gin.Context) {
	h.resolveInvite(c, false)
}

func (h *SalonHandler) resolveInvite(c *gin.Context, accept bool) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	salonID, err := uuid.Parse(c.Param("salon_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid salon id"})
		return
	}

	if accept {
		err = h.salonService.AcceptInvite(c.Request.Context(), salonID, userID)
	} else {
		err = h.salonService.DeclineInvite(c.Request.Context(), salonID, userID)
	}
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "invite resolved"})
}
