package repository

import (
	"context"
	"errors"
	"time"

	"wafflemarket/internal/app/reputation/entity"

	"github.com/google/uuid"
)

var (
	// Стандартные ошибки репозитория для обработки в service layer
	ErrReviewNotFound  = errors.New("review not found")
	ErrDuplicateReview = errors.New("review already exists for this article and reviewer")
)

// ReviewRepository определяет методы для работы с отзывами в PostgreSQL.
// Уникальность (article, reviewer) и атомарность peer-upsert обеспечиваются
// индексами на уровне БД, а не проверками в коде - см. Migrate
type ReviewRepository interface {
	// Create вставляет отзыв по сделке; ErrDuplicateReview при повторной попытке
	Create(ctx context.Context, review *entity.Review) error

	GetByArticleAndReviewer(ctx context.Context, articleID, reviewerID uuid.UUID) (*entity.Review, error)
	ExistsByArticleAndReviewer(ctx context.Context, articleID, reviewerID uuid.UUID) (bool, error)
	ExistsByArticleAndReviewyee(ctx context.Context, articleID, reviewyeeID uuid.UUID) (bool, error)

	// DeleteByArticleAndReviewer удаляет только отзыв автора;
	// встречный отзыв второй стороны не затрагивается
	DeleteByArticleAndReviewer(ctx context.Context, articleID, reviewerID uuid.UUID) error

	// UpsertPeer атомарно вставляет или замещает peer-оценку
	// по ключу (reviewer, reviewyee, manner_type); created=false при замещении
	UpsertPeer(ctx context.Context, review *entity.Review) (created bool, err error)

	// SumMannerBits - сумма выставленных битов по всем отзывам
	// данного типа и полярности в адрес пользователя
	SumMannerBits(ctx context.Context, reviewyeeID uuid.UUID, reviewType entity.ReviewType, mannerType entity.MannerType) (int, error)

	ListByReviewyee(ctx context.Context, reviewyeeID uuid.UUID, reviewType entity.ReviewType, mannerType entity.MannerType) ([]entity.Review, error)

	// RecentReviewyees - кого оценивали начиная с момента since (для прогрева кеша)
	RecentReviewyees(ctx context.Context, since time.Time) ([]uuid.UUID, error)
}
