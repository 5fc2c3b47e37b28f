package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"wafflemarket/internal/app/reputation/entity"
	"wafflemarket/internal/app/reputation/manner"
	"wafflemarket/internal/app/reputation/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type MockReviewService struct {
	mock.Mock
}

func (m *MockReviewService) CreateArticleReview(ctx context.Context, articleID, callerID uuid.UUID, role entity.ReviewType, req *entity.CreateArticleReviewRequest) (*entity.ArticleReviewResponse, error) {
	args := m.Called(ctx, articleID, callerID, role, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.ArticleReviewResponse), args.Error(1)
}

func (m *MockReviewService) GetSentReview(ctx context.Context, articleID, callerID uuid.UUID) (*entity.ArticleReviewResponse, error) {
	args := m.Called(ctx, articleID, callerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.ArticleReviewResponse), args.Error(1)
}

func (m *MockReviewService) DeleteSentReview(ctx context.Context, articleID, callerID uuid.UUID) error {
	args := m.Called(ctx, articleID, callerID)
	return args.Error(0)
}

func (m *MockReviewService) GetReceivedReview(ctx context.Context, articleID, callerID uuid.UUID) (*entity.ArticleReviewResponse, error) {
	args := m.Called(ctx, articleID, callerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.ArticleReviewResponse), args.Error(1)
}

func (m *MockReviewService) UpsertPeerReview(ctx context.Context, callerID, targetID uuid.UUID, req *entity.PeerReviewRequest) (*entity.PeerReviewResponse, bool, error) {
	args := m.Called(ctx, callerID, targetID, req)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	return args.Get(0).(*entity.PeerReviewResponse), args.Bool(1), args.Error(2)
}

// setupReviewRouter поднимает маршруты отзывов с подставным user_id вместо JWT
func setupReviewRouter(svc service.ReviewServiceInterface, userID uuid.UUID) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()

	h := NewReviewHandler(svc)

	reviews := router.Group("/reviews")
	reviews.Use(func(c *gin.Context) {
		c.Set("user_id", userID.String())
		c.Next()
	})
	{
		reviews.POST("/article/:article_id/seller", h.CreateSellerReview)
		reviews.POST("/article/:article_id/buyer", h.CreateBuyerReview)
		reviews.GET("/article/:article_id/sent", h.GetSentReview)
		reviews.DELETE("/article/:article_id/sent", h.DeleteSentReview)
		reviews.GET("/article/:article_id/received", h.GetReceivedReview)
		reviews.POST("/user/:user_id/manner", h.UpsertPeerReview)
	}

	return router
}

func postJSON(router *gin.Engine, path string, payload interface{}) *httptest.ResponseRecorder {
	body, _ := json.Marshal(payload)
	req, _ := http.NewRequest(http.MethodPost, path, bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestCreateSellerReview_Success(t *testing.T) {
	userID := uuid.New()
	articleID := uuid.New()

	response := &entity.ArticleReviewResponse{
		Evaluation: []string{"kind and punctual", "detailed description"},
		Type:       "sent",
		ToView:     entity.ToView{Kind: "received", Exists: false},
	}

	mockService := new(MockReviewService)
	mockService.On("CreateArticleReview", mock.Anything, articleID, userID, entity.ReviewTypeSeller, mock.AnythingOfType("*entity.CreateArticleReviewRequest")).
		Return(response, nil)

	router := setupReviewRouter(mockService, userID)

	w := postJSON(router, "/reviews/article/"+articleID.String()+"/seller", entity.CreateArticleReviewRequest{
		MannerType: "good",
		MannerList: []string{"kind and punctual", "detailed description"},
	})

	assert.Equal(t, http.StatusCreated, w.Code)
	// Подсказка to_view сериализуется двухэлементным массивом
	assert.Contains(t, w.Body.String(), `"to_view":["received",false]`)
	mockService.AssertExpectations(t)
}

func TestCreateBuyerReview_RoutesBuyerRole(t *testing.T) {
	userID := uuid.New()
	articleID := uuid.New()

	response := &entity.ArticleReviewResponse{Type: "sent", ToView: entity.ToView{Kind: "received", Exists: true}}

	mockService := new(MockReviewService)
	mockService.On("CreateArticleReview", mock.Anything, articleID, userID, entity.ReviewTypeBuyer, mock.Anything).
		Return(response, nil)

	router := setupReviewRouter(mockService, userID)

	w := postJSON(router, "/reviews/article/"+articleID.String()+"/buyer", entity.CreateArticleReviewRequest{
		MannerType: "good",
		MannerList: []string{"responds quickly"},
	})

	assert.Equal(t, http.StatusCreated, w.Code)
	mockService.AssertExpectations(t)
}

func TestCreateSellerReview_Duplicate(t *testing.T) {
	userID := uuid.New()
	articleID := uuid.New()

	mockService := new(MockReviewService)
	mockService.On("CreateArticleReview", mock.Anything, articleID, userID, entity.ReviewTypeSeller, mock.Anything).
		Return(nil, service.ErrDuplicateReview)

	router := setupReviewRouter(mockService, userID)

	w := postJSON(router, "/reviews/article/"+articleID.String()+"/seller", entity.CreateArticleReviewRequest{
		MannerType: "good",
		MannerList: []string{"kind and punctual"},
	})

	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestCreateSellerReview_Forbidden(t *testing.T) {
	userID := uuid.New()
	articleID := uuid.New()

	mockService := new(MockReviewService)
	mockService.On("CreateArticleReview", mock.Anything, articleID, userID, entity.ReviewTypeSeller, mock.Anything).
		Return(nil, service.ErrForbidden)

	router := setupReviewRouter(mockService, userID)

	w := postJSON(router, "/reviews/article/"+articleID.String()+"/seller", entity.CreateArticleReviewRequest{
		MannerType: "good",
		MannerList: []string{"kind and punctual"},
	})

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestCreateSellerReview_UnknownTrait(t *testing.T) {
	userID := uuid.New()
	articleID := uuid.New()

	mockService := new(MockReviewService)
	mockService.On("CreateArticleReview", mock.Anything, articleID, userID, entity.ReviewTypeSeller, mock.Anything).
		Return(nil, manner.ErrUnknownTrait)

	router := setupReviewRouter(mockService, userID)

	w := postJSON(router, "/reviews/article/"+articleID.String()+"/seller", entity.CreateArticleReviewRequest{
		MannerType: "good",
		MannerList: []string{"totally made up"},
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCreateSellerReview_InvalidMannerType(t *testing.T) {
	userID := uuid.New()
	articleID := uuid.New()

	mockService := new(MockReviewService)
	router := setupReviewRouter(mockService, userID)

	w := postJSON(router, "/reviews/article/"+articleID.String()+"/seller", entity.CreateArticleReviewRequest{
		MannerType: "neutral",
		MannerList: []string{"kind and punctual"},
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	mockService.AssertNotCalled(t, "CreateArticleReview")
}

func TestCreateSellerReview_InvalidArticleID(t *testing.T) {
	mockService := new(MockReviewService)
	router := setupReviewRouter(mockService, uuid.New())

	w := postJSON(router, "/reviews/article/not-a-uuid/seller", entity.CreateArticleReviewRequest{
		MannerType: "good",
		MannerList: []string{"kind and punctual"},
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	mockService.AssertNotCalled(t, "CreateArticleReview")
}

func TestGetSentReview_NotFound(t *testing.T) {
	userID := uuid.New()
	articleID := uuid.New()

	mockService := new(MockReviewService)
	mockService.On("GetSentReview", mock.Anything, articleID, userID).Return(nil, service.ErrReviewNotFound)

	router := setupReviewRouter(mockService, userID)

	req, _ := http.NewRequest(http.MethodGet, "/reviews/article/"+articleID.String()+"/sent", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetReceivedReview_Success(t *testing.T) {
	userID := uuid.New()
	articleID := uuid.New()

	text := "quick and easy deal"
	response := &entity.ArticleReviewResponse{
		FreeText:   &text,
		Evaluation: []string{"responds quickly"},
		Type:       "received",
		ToView:     entity.ToView{Kind: "sent", Exists: true},
	}

	mockService := new(MockReviewService)
	mockService.On("GetReceivedReview", mock.Anything, articleID, userID).Return(response, nil)

	router := setupReviewRouter(mockService, userID)

	req, _ := http.NewRequest(http.MethodGet, "/reviews/article/"+articleID.String()+"/received", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"review":"quick and easy deal"`)
	assert.Contains(t, w.Body.String(), `"to_view":["sent",true]`)
}

func TestDeleteSentReview_Success(t *testing.T) {
	userID := uuid.New()
	articleID := uuid.New()

	mockService := new(MockReviewService)
	mockService.On("DeleteSentReview", mock.Anything, articleID, userID).Return(nil)

	router := setupReviewRouter(mockService, userID)

	req, _ := http.NewRequest(http.MethodDelete, "/reviews/article/"+articleID.String()+"/sent", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	mockService.AssertExpectations(t)
}

func TestUpsertPeerReview_Created(t *testing.T) {
	userID := uuid.New()
	targetID := uuid.New()

	response := &entity.PeerReviewResponse{
		MannerType: entity.MannerGood,
		Evaluation: []string{"kind", "punctual"},
	}

	mockService := new(MockReviewService)
	mockService.On("UpsertPeerReview", mock.Anything, userID, targetID, mock.Anything).Return(response, true, nil)

	router := setupReviewRouter(mockService, userID)

	w := postJSON(router, "/reviews/user/"+targetID.String()+"/manner", entity.PeerReviewRequest{
		MannerType: "good",
		MannerList: []string{"kind", "punctual"},
	})

	assert.Equal(t, http.StatusCreated, w.Code)
}

func TestUpsertPeerReview_Replaced(t *testing.T) {
	userID := uuid.New()
	targetID := uuid.New()

	response := &entity.PeerReviewResponse{
		MannerType: entity.MannerGood,
		Evaluation: []string{"responds quickly"},
	}

	mockService := new(MockReviewService)
	mockService.On("UpsertPeerReview", mock.Anything, userID, targetID, mock.Anything).Return(response, false, nil)

	router := setupReviewRouter(mockService, userID)

	w := postJSON(router, "/reviews/user/"+targetID.String()+"/manner", entity.PeerReviewRequest{
		MannerType: "good",
		MannerList: []string{"responds quickly"},
	})

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestUpsertPeerReview_TargetNotFound(t *testing.T) {
	userID := uuid.New()
	targetID := uuid.New()

	mockService := new(MockReviewService)
	mockService.On("UpsertPeerReview", mock.Anything, userID, targetID, mock.Anything).Return(nil, false, service.ErrUserNotFound)

	router := setupReviewRouter(mockService, userID)

	w := postJSON(router, "/reviews/user/"+targetID.String()+"/manner", entity.PeerReviewRequest{
		MannerType: "good",
		MannerList: []string{"kind"},
	})

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestReviewRoutes_Unauthorized(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()

	h := NewReviewHandler(new(MockReviewService))
	// Без middleware в контексте нет user_id
	router.POST("/reviews/article/:article_id/seller", h.CreateSellerReview)

	w := postJSON(router, "/reviews/article/"+uuid.NewString()+"/seller", entity.CreateArticleReviewRequest{
		MannerType: "good",
		MannerList: []string{"kind and punctual"},
	})

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
