package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"wafflemarket/internal/app/reputation/entity"
	"wafflemarket/pkg/metrics"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const serviceName = "reputation-service"

// reviewRepository реализует ReviewRepository для работы с PostgreSQL через GORM
type reviewRepository struct {
	db *gorm.DB
}

// NewReviewRepository создает новый репозиторий отзывов
func NewReviewRepository(db *gorm.DB) ReviewRepository {
	return &reviewRepository{db: db}
}

// Create вставляет отзыв по сделке.
// Проверка "уже есть отзыв" не выполняется отдельным запросом:
// при конкурентной двойной отправке это гонка check-then-act.
// Вместо этого полагаемся на частичный уникальный индекс (article_id, reviewer_id)
func (r *reviewRepository) Create(ctx context.Context, review *entity.Review) error {
	timer := metrics.NewDbTimer(serviceName, metrics.DbOpInsert, "reviews")
	defer timer.ObserveDuration()

	result := r.db.WithContext(ctx).Create(review)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrDuplicatedKey) {
			return ErrDuplicateReview
		}
		metrics.RecordDbError(serviceName, metrics.DbOpInsert)
		return fmt.Errorf("failed to create review: %w", result.Error)
	}

	return nil
}

// GetByArticleAndReviewer получает отзыв, который автор оставил по сделке
func (r *reviewRepository) GetByArticleAndReviewer(ctx context.Context, articleID, reviewerID uuid.UUID) (*entity.Review, error) {
	var review entity.Review

	result := r.db.WithContext(ctx).
		Where("article_id = ? AND reviewer_id = ?", articleID, reviewerID).
		First(&review)

	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrReviewNotFound
		}
		return nil, fmt.Errorf("failed to get review: %w", result.Error)
	}

	return &review, nil
}

func (r *reviewRepository) ExistsByArticleAndReviewer(ctx context.Context, articleID, reviewerID uuid.UUID) (bool, error) {
	var count int64

	result := r.db.WithContext(ctx).
		Model(&entity.Review{}).
		Where("article_id = ? AND reviewer_id = ?", articleID, reviewerID).
		Count(&count)

	if result.Error != nil {
		return false, fmt.Errorf("failed to check review existence: %w", result.Error)
	}

	return count > 0, nil
}

func (r *reviewRepository) ExistsByArticleAndReviewyee(ctx context.Context, articleID, reviewyeeID uuid.UUID) (bool, error) {
	var count int64

	result := r.db.WithContext(ctx).
		Model(&entity.Review{}).
		Where("article_id = ? AND reviewyee_id = ?", articleID, reviewyeeID).
		Count(&count)

	if result.Error != nil {
		return false, fmt.Errorf("failed to check review existence: %w", result.Error)
	}

	return count > 0, nil
}

// DeleteByArticleAndReviewer физически удаляет отзыв автора по сделке.
// Soft-delete в этой таблице не используется
func (r *reviewRepository) DeleteByArticleAndReviewer(ctx context.Context, articleID, reviewerID uuid.UUID) error {
	timer := metrics.NewDbTimer(serviceName, metrics.DbOpDelete, "reviews")
	defer timer.ObserveDuration()

	result := r.db.WithContext(ctx).
		Where("article_id = ? AND reviewer_id = ?", articleID, reviewerID).
		Delete(&entity.Review{})

	if result.Error != nil {
		metrics.RecordDbError(serviceName, metrics.DbOpDelete)
		return fmt.Errorf("failed to delete review: %w", result.Error)
	}

	if result.RowsAffected == 0 {
		return ErrReviewNotFound
	}

	return nil
}

// upsertPeerRow - результат RETURNING peer-апсерта.
// xmax = 0 только у строки, вставленной текущей транзакцией,
// поэтому выражение отличает insert от update
type upsertPeerRow struct {
	ID        uuid.UUID `gorm:"column:id"`
	CreatedAt time.Time `gorm:"column:created_at"`
	Created   bool      `gorm:"column:created"`
}

// UpsertPeer вставляет или замещает peer-оценку одним SQL-выражением.
// Повторная оценка полностью затирает прежний битовый вектор,
// никакого слияния битов; created_at исходной строки сохраняется
func (r *reviewRepository) UpsertPeer(ctx context.Context, review *entity.Review) (bool, error) {
	timer := metrics.NewDbTimer(serviceName, metrics.DbOpInsert, "reviews")
	defer timer.ObserveDuration()

	var row upsertPeerRow

	result := r.db.WithContext(ctx).Raw(`
		INSERT INTO reviews (id, review_type, reviewer_id, reviewyee_id, manner_type, manner, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (reviewer_id, reviewyee_id, manner_type) WHERE review_type = 'peer'
		DO UPDATE SET manner = EXCLUDED.manner
		RETURNING id, created_at, (xmax = 0) AS created`,
		review.ID, review.ReviewType, review.ReviewerID, review.ReviewyeeID,
		review.MannerType, review.Manner, review.CreatedAt,
	).Scan(&row)

	if result.Error != nil {
		metrics.RecordDbError(serviceName, metrics.DbOpInsert)
		return false, fmt.Errorf("failed to upsert peer review: %w", result.Error)
	}

	review.ID = row.ID
	review.CreatedAt = row.CreatedAt
	return row.Created, nil
}

// SumMannerBits суммирует биты прямо в SQL: количество '1' в строке -
// это длина строки после удаления всех '0'
func (r *reviewRepository) SumMannerBits(ctx context.Context, reviewyeeID uuid.UUID, reviewType entity.ReviewType, mannerType entity.MannerType) (int, error) {
	timer := metrics.NewDbTimer(serviceName, metrics.DbOpSelect, "reviews")
	defer timer.ObserveDuration()

	var total int64

	result := r.db.WithContext(ctx).
		Model(&entity.Review{}).
		Select("COALESCE(SUM(LENGTH(REPLACE(manner, '0', ''))), 0)").
		Where("reviewyee_id = ? AND review_type = ? AND manner_type = ?", reviewyeeID, reviewType, mannerType).
		Scan(&total)

	if result.Error != nil {
		metrics.RecordDbError(serviceName, metrics.DbOpSelect)
		return 0, fmt.Errorf("failed to sum manner bits: %w", result.Error)
	}

	return int(total), nil
}

// ListByReviewyee получает все отзывы данного типа и полярности в адрес пользователя
func (r *reviewRepository) ListByReviewyee(ctx context.Context, reviewyeeID uuid.UUID, reviewType entity.ReviewType, mannerType entity.MannerType) ([]entity.Review, error) {
	var reviews []entity.Review

	result := r.db.WithContext(ctx).
		Where("reviewyee_id = ? AND review_type = ? AND manner_type = ?", reviewyeeID, reviewType, mannerType).
		Order("created_at DESC").
		Find(&reviews)

	if result.Error != nil {
		return nil, fmt.Errorf("failed to list reviews: %w", result.Error)
	}

	return reviews, nil
}

// RecentReviewyees возвращает пользователей, получивших отзывы начиная с since
func (r *reviewRepository) RecentReviewyees(ctx context.Context, since time.Time) ([]uuid.UUID, error) {
	var ids []uuid.UUID

	result := r.db.WithContext(ctx).
		Model(&entity.Review{}).
		Distinct("reviewyee_id").
		Where("created_at >= ?", since).
		Pluck("reviewyee_id", &ids)

	if result.Error != nil {
		return nil, fmt.Errorf("failed to list recent reviewyees: %w", result.Error)
	}

	return ids, nil
}
