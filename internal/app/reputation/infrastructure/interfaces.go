package infrastructure

import (
	"context"
	"errors"

	"wafflemarket/internal/app/reputation/entity"

	"github.com/google/uuid"
)

var (
	ErrArticleNotFound = errors.New("article not found")
	ErrUserNotFound    = errors.New("user not found")
)

// MessagePublisher интерфейс для отправки сообщений в очередь (Kafka)
// Используется для dependency injection и упрощения тестирования
type MessagePublisher interface {
	PublishMessage(ctx context.Context, key string, value []byte) error
	Close() error
}

// ArticleProvider - доступ к сделкам в Article Service.
// Ядро репутации ничего не знает про объявления,
// ему нужны только стороны сделки, момент продажи и счетчики
type ArticleProvider interface {
	GetArticle(ctx context.Context, articleID uuid.UUID) (*entity.Article, error)
	GetTradeCounts(ctx context.Context, userID uuid.UUID) (*entity.TradeCounts, error)
}

// UserProvider - доступ к пользователям в User Service
type UserProvider interface {
	Exists(ctx context.Context, userID uuid.UUID) (bool, error)
	// GetLocation возвращает текущий район пользователя, nil если не указан
	GetLocation(ctx context.Context, userID uuid.UUID) (*string, error)
}

// ScoreCache - кеш вычисленной температуры доверия.
// Температура всегда деривативна; кеш - оптимизация с явной инвалидацией
// при любой мутации отзывов и при событиях Article Service
type ScoreCache interface {
	Get(ctx context.Context, userID uuid.UUID) (score float64, ok bool, err error)
	Set(ctx context.Context, userID uuid.UUID, score float64) error
	Invalidate(ctx context.Context, userID uuid.UUID) error
}
