package mocks

import (
	"context"
	"time"

	"wafflemarket/internal/app/reputation/entity"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// MockReviewRepository мок для ReviewRepository
type MockReviewRepository struct {
	mock.Mock
}

func (m *MockReviewRepository) Create(ctx context.Context, review *entity.Review) error {
	args := m.Called(ctx, review)
	return args.Error(0)
}

func (m *MockReviewRepository) GetByArticleAndReviewer(ctx context.Context, articleID, reviewerID uuid.UUID) (*entity.Review, error) {
	args := m.Called(ctx, articleID, reviewerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Review), args.Error(1)
}

func (m *MockReviewRepository) ExistsByArticleAndReviewer(ctx context.Context, articleID, reviewerID uuid.UUID) (bool, error) {
	args := m.Called(ctx, articleID, reviewerID)
	return args.Bool(0), args.Error(1)
}

func (m *MockReviewRepository) ExistsByArticleAndReviewyee(ctx context.Context, articleID, reviewyeeID uuid.UUID) (bool, error) {
	args := m.Called(ctx, articleID, reviewyeeID)
	return args.Bool(0), args.Error(1)
}

func (m *MockReviewRepository) DeleteByArticleAndReviewer(ctx context.Context, articleID, reviewerID uuid.UUID) error {
	args := m.Called(ctx, articleID, reviewerID)
	return args.Error(0)
}

func (m *MockReviewRepository) UpsertPeer(ctx context.Context, review *entity.Review) (bool, error) {
	args := m.Called(ctx, review)
	return args.Bool(0), args.Error(1)
}

func (m *MockReviewRepository) SumMannerBits(ctx context.Context, reviewyeeID uuid.UUID, reviewType entity.ReviewType, mannerType entity.MannerType) (int, error) {
	args := m.Called(ctx, reviewyeeID, reviewType, mannerType)
	return args.Int(0), args.Error(1)
}

func (m *MockReviewRepository) ListByReviewyee(ctx context.Context, reviewyeeID uuid.UUID, reviewType entity.ReviewType, mannerType entity.MannerType) ([]entity.Review, error) {
	args := m.Called(ctx, reviewyeeID, reviewType, mannerType)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.Review), args.Error(1)
}

func (m *MockReviewRepository) RecentReviewyees(ctx context.Context, since time.Time) ([]uuid.UUID, error) {
	args := m.Called(ctx, since)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]uuid.UUID), args.Error(1)
}

// MockArticleProvider мок для Article Service клиента
type MockArticleProvider struct {
	mock.Mock
}

func (m *MockArticleProvider) GetArticle(ctx context.Context, articleID uuid.UUID) (*entity.Article, error) {
	args := m.Called(ctx, articleID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Article), args.Error(1)
}

func (m *MockArticleProvider) GetTradeCounts(ctx context.Context, userID uuid.UUID) (*entity.TradeCounts, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.TradeCounts), args.Error(1)
}

// MockUserProvider мок для User Service клиента
type MockUserProvider struct {
	mock.Mock
}

func (m *MockUserProvider) Exists(ctx context.Context, userID uuid.UUID) (bool, error) {
	args := m.Called(ctx, userID)
	return args.Bool(0), args.Error(1)
}

func (m *MockUserProvider) GetLocation(ctx context.Context, userID uuid.UUID) (*string, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*string), args.Error(1)
}

// MockScoreCache мок для Redis кеша температуры
type MockScoreCache struct {
	mock.Mock
}

func (m *MockScoreCache) Get(ctx context.Context, userID uuid.UUID) (float64, bool, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(float64), args.Bool(1), args.Error(2)
}

func (m *MockScoreCache) Set(ctx context.Context, userID uuid.UUID, score float64) error {
	args := m.Called(ctx, userID, score)
	return args.Error(0)
}

func (m *MockScoreCache) Invalidate(ctx context.Context, userID uuid.UUID) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

// MockMessagePublisher мок для Kafka MessagePublisher
type MockMessagePublisher struct {
	mock.Mock
	Messages [][]byte
}

func (m *MockMessagePublisher) PublishMessage(ctx context.Context, key string, value []byte) error {
	m.Messages = append(m.Messages, value)
	args := m.Called(ctx, key, value)
	return args.Error(0)
}

func (m *MockMessagePublisher) Close() error {
	args := m.Called()
	return args.Error(0)
}
