package handler

import (
	"errors"
	"net/http"

	"wafflemarket/internal/app/reputation/entity"
	"wafflemarket/internal/app/reputation/manner"
	"wafflemarket/internal/app/reputation/service"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// ReviewHandler обслуживает HTTP-маршруты отзывов по сделкам и peer-оценок
type ReviewHandler struct {
	reviewService service.ReviewServiceInterface
	validator     *validator.Validate
}

func NewReviewHandler(reviewService service.ReviewServiceInterface) *ReviewHandler {
	return &ReviewHandler{
		reviewService: reviewService,
		validator:     validator.New(),
	}
}

// callerID извлекает ID аутентифицированного пользователя из контекста Gin
func callerID(c *gin.Context) (uuid.UUID, bool) {
	raw, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return uuid.Nil, false
	}

	str, ok := raw.(string)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Invalid user ID"})
		return uuid.Nil, false
	}

	id, err := uuid.Parse(str)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid user ID"})
		return uuid.Nil, false
	}

	return id, true
}

// pathUUID парсит UUID-параметр пути; при ошибке пишет 400 и возвращает false
func pathUUID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid " + name})
		return uuid.Nil, false
	}
	return id, true
}

// respondReviewError переводит ошибки бизнес-логики в HTTP-статусы
func respondReviewError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrArticleNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Article not found"})
	case errors.Is(err, service.ErrUserNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
	case errors.Is(err, service.ErrReviewNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Review not found"})
	case errors.Is(err, service.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": "Access denied"})
	case errors.Is(err, service.ErrDuplicateReview):
		c.JSON(http.StatusConflict, gin.H{"error": "Review already exists for this article"})
	case errors.Is(err, manner.ErrUnknownTrait):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}

// CreateSellerReview - отзыв продавца о покупателе по завершенной сделке
func (h *ReviewHandler) CreateSellerReview(c *gin.Context) {
	h.createArticleReview(c, entity.ReviewTypeSeller)
}

// CreateBuyerReview - отзыв покупателя о продавце
func (h *ReviewHandler) CreateBuyerReview(c *gin.Context) {
	h.createArticleReview(c, entity.ReviewTypeBuyer)
}

func (h *ReviewHandler) createArticleReview(c *gin.Context, role entity.ReviewType) {
	caller, ok := callerID(c)
	if !ok {
		return
	}

	articleID, ok := pathUUID(c, "article_id")
	if !ok {
		return
	}

	var req entity.CreateArticleReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	if err := h.validator.Struct(req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": formatValidationError(err)})
		return
	}

	review, err := h.reviewService.CreateArticleReview(c.Request.Context(), articleID, caller, role, &req)
	if err != nil {
		respondReviewError(c, err)
		return
	}

	c.JSON(http.StatusCreated, review)
}

// GetSentReview возвращает отзыв, оставленный вызывающим по сделке
func (h *ReviewHandler) GetSentReview(c *gin.Context) {
	caller, ok := callerID(c)
	if !ok {
		return
	}

	articleID, ok := pathUUID(c, "article_id")
	if !ok {
		return
	}

	review, err := h.reviewService.GetSentReview(c.Request.Context(), articleID, caller)
	if err != nil {
		respondReviewError(c, err)
		return
	}

	c.JSON(http.StatusOK, review)
}

// DeleteSentReview удаляет отзыв вызывающего по сделке
func (h *ReviewHandler) DeleteSentReview(c *gin.Context) {
	caller, ok := callerID(c)
	if !ok {
		return
	}

	articleID, ok := pathUUID(c, "article_id")
	if !ok {
		return
	}

	if err := h.reviewService.DeleteSentReview(c.Request.Context(), articleID, caller); err != nil {
		respondReviewError(c, err)
		return
	}

	c.JSON(http.StatusOK, entity.SuccessResponse{
		Message: "Review deleted successfully",
	})
}

// GetReceivedReview возвращает отзыв встречной стороны о вызывающем
func (h *ReviewHandler) GetReceivedReview(c *gin.Context) {
	caller, ok := callerID(c)
	if !ok {
		return
	}

	articleID, ok := pathUUID(c, "article_id")
	if !ok {
		return
	}

	review, err := h.reviewService.GetReceivedReview(c.Request.Context(), articleID, caller)
	if err != nil {
		respondReviewError(c, err)
		return
	}

	c.JSON(http.StatusOK, review)
}

// UpsertPeerReview создает или замещает peer-оценку манер пользователя.
// 201 при первой оценке, 200 при замещении существующей
func (h *ReviewHandler) UpsertPeerReview(c *gin.Context) {
	caller, ok := callerID(c)
	if !ok {
		return
	}

	targetID, ok := pathUUID(c, "user_id")
	if !ok {
		return
	}

	var req entity.PeerReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	if err := h.validator.Struct(req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": formatValidationError(err)})
		return
	}

	review, created, err := h.reviewService.UpsertPeerReview(c.Request.Context(), caller, targetID, &req)
	if err != nil {
		respondReviewError(c, err)
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}

	c.JSON(status, review)
}

func formatValidationError(err error) string {
	if validationErrors, ok := err.(validator.ValidationErrors); ok {
		for _, fieldError := range validationErrors {
			return fieldError.Field() + " is " + fieldError.Tag()
		}
	}
	return "Validation failed"
}
