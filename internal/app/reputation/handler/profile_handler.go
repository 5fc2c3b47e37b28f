package handler

import (
	"net/http"

	"wafflemarket/internal/app/reputation/entity"
	"wafflemarket/internal/app/reputation/service"

	"github.com/gin-gonic/gin"
)

// ProfileHandler отдает публичные репутационные данные пользователя:
// температуру доверия и сводку манер. Температура видна всем
// аутентифицированным пользователям, не только владельцу профиля
type ProfileHandler struct {
	trustService service.TrustServiceInterface
}

func NewProfileHandler(trustService service.TrustServiceInterface) *ProfileHandler {
	return &ProfileHandler{
		trustService: trustService,
	}
}

// GetTemperature возвращает температуру доверия пользователя
func (h *ProfileHandler) GetTemperature(c *gin.Context) {
	userID, ok := pathUUID(c, "user_id")
	if !ok {
		return
	}

	score, err := h.trustService.TrustScore(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to compute trust score"})
		return
	}

	c.JSON(http.StatusOK, entity.TrustScoreResponse{
		UserID:      userID,
		Temperature: score,
	})
}

// GetMannerTally возвращает, сколько разных людей отметили каждую
// положительную черту манер пользователя
func (h *ProfileHandler) GetMannerTally(c *gin.Context) {
	userID, ok := pathUUID(c, "user_id")
	if !ok {
		return
	}

	tally, err := h.trustService.MannerTally(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get manner tally"})
		return
	}

	c.JSON(http.StatusOK, entity.MannerTallyResponse{
		UserID: userID,
		Manner: tally,
	})
}
