package http

import (
	"net/http"
	"strings"

	"anoa.com/salonstreak/internal/modules/streak/dto"
	"anoa.com/salonstreak/internal/modules/streak/service"
	"anoa.com/salonstreak/pkg/response"
	"anoa.com/salonstreak/pkg/storage"
	"anoa.com/salonstreak/pkg/validator"
	"github.com/gin-gonic/gin"
)

type StreakHandler struct {
	streakService service.StreakService
	proofStorage  storage.ProofStorage
}

func NewStreakHandler(streakService service.StreakService, proofStorage storage.ProofStorage) *StreakHandler {
	return &StreakHandler{
		streakService: streakService,
		proofStorage:  proofStorage,
	}
}

// LogPost confirms "I posted today" (or on an explicit date). Accepts JSON or
// a multipart form with an optional proof shot that becomes the content ref.
func (h *StreakHandler) LogPost(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	var input dto.LogPostInput

	if strings.HasPrefix(c.ContentType(), "multipart/form-data") {
		input.Date = c.PostForm("date")

		if fileHeader, err := c.FormFile("proof"); err == nil && fileHeader != nil {
			if h.proofStorage == nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "proof uploads are not enabled"})
				return
			}

			file, err := fileHeader.Open()
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read proof file"})
				return
			}
			defer file.Close()

			url, err := h.proofStorage.UploadProof(c.Request.Context(), file, fileHeader.Filename)
			if err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to store proof"})
				return
			}
			input.ContentRef = &url
		}
	} else {
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
			return
		}
	}

	entry, err := h.streakService.LogManualPost(c.Request.Context(), userID, input.Date, input.ContentRef)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": entry})
}

func (h *StreakHandler) GetSnapshot(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	snap, err := h.streakService.Snapshot(c.Request.Context(), userID)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": snap})
}

func (h *StreakHandler) PostedToday(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	posted, err := h.streakService.HasPostedToday(c.Request.Context(), userID)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"posted_today": posted})
}
