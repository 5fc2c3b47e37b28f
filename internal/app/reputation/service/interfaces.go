package service

import (
	"context"

	"wafflemarket/internal/app/reputation/entity"

	"github.com/google/uuid"
)

type ReviewServiceInterface interface {
	CreateArticleReview(ctx context.Context, articleID, callerID uuid.UUID, role entity.ReviewType, req *entity.CreateArticleReviewRequest) (*entity.ArticleReviewResponse, error)
	GetSentReview(ctx context.Context, articleID, callerID uuid.UUID) (*entity.ArticleReviewResponse, error)
	DeleteSentReview(ctx context.Context, articleID, callerID uuid.UUID) error
	GetReceivedReview(ctx context.Context, articleID, callerID uuid.UUID) (*entity.ArticleReviewResponse, error)
	UpsertPeerReview(ctx context.Context, callerID, targetID uuid.UUID, req *entity.PeerReviewRequest) (*entity.PeerReviewResponse, bool, error)
}

type TrustServiceInterface interface {
	TrustScore(ctx context.Context, userID uuid.UUID) (float64, error)
	MannerTally(ctx context.Context, userID uuid.UUID) (map[string]int, error)
	RefreshRecentScores(ctx context.Context) error
	InvalidateScore(ctx context.Context, userID uuid.UUID, reason string) error
}
