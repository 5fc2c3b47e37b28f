package repository

import (
	"fmt"

	"wafflemarket/internal/app/reputation/entity"

	"gorm.io/gorm"
)

// Migrate создает таблицу отзывов и индексы целостности.
// Оба уникальных индекса частичные, поэтому объявлены явным SQL,
// а не тегами GORM:
//   - один отзыв на сделку от каждого автора (peer-строки с NULL article_id
//     под индекс не попадают);
//   - одна peer-оценка на (автор, субъект, полярность) - ключ апсерта
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&entity.Review{}); err != nil {
		return fmt.Errorf("failed to migrate reviews table: %w", err)
	}

	statements := []string{
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_reviews_article_reviewer
			ON reviews (article_id, reviewer_id)
			WHERE article_id IS NOT NULL`,
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_reviews_peer_pair
			ON reviews (reviewer_id, reviewyee_id, manner_type)
			WHERE review_type = 'peer'`,
	}

	for _, stmt := range statements {
		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("failed to create index: %w", err)
		}
	}

	return nil
}
