package entity

import (
	"time"

	"github.com/google/uuid"
)

// ReviewType определяет, кем и о чем оставлен отзыв
type ReviewType string

const (
	ReviewTypeSeller ReviewType = "seller" // Отзыв продавца о покупателе по сделке
	ReviewTypeBuyer  ReviewType = "buyer"  // Отзыв покупателя о продавце по сделке
	ReviewTypePeer   ReviewType = "peer"   // Оценка манер пользователя вне сделки
)

// MannerType - полярность оценки: похвала или жалоба, никогда обе сразу
type MannerType string

const (
	MannerGood MannerType = "good"
	MannerBad  MannerType = "bad"
)

// Review представляет отзыв в системе репутации.
// Единственная персистентная сущность ядра: и отзывы по сделкам,
// и оценки манер пользователь-пользователю хранятся в одной таблице.
type Review struct {
	ID         uuid.UUID  `json:"id" gorm:"type:uuid;primaryKey"`
	ReviewType ReviewType `json:"review_type" gorm:"type:varchar(20);not null;index:idx_reviews_reviewyee,priority:2"`

	// Автор. Слабая ссылка: при удалении пользователя отзыв переживает автора
	ReviewerID *uuid.UUID `json:"reviewer_id" gorm:"type:uuid"`
	// Субъект. Владеющая связь: удаление субъекта каскадно удаляет отзыв
	ReviewyeeID uuid.UUID `json:"reviewyee_id" gorm:"type:uuid;not null;index:idx_reviews_reviewyee,priority:1"`

	// Сделка из Article Service. Обязательна для seller/buyer, всегда NULL для peer
	ArticleID *uuid.UUID `json:"article_id,omitempty" gorm:"type:uuid"`

	// Свободный текст и район автора на момент написания.
	// Район заполняется только вместе с текстом - правило предметной области
	FreeText       *string `json:"review,omitempty" gorm:"type:varchar(255)"`
	ReviewLocation *string `json:"review_location,omitempty" gorm:"type:varchar(255)"`

	MannerType MannerType `json:"manner_type" gorm:"type:varchar(20);not null"`
	// Битовая строка из '0'/'1' фиксированной ширины (словарь манер).
	// В памяти сервис работает с manner.Vector, строка - только формат хранения
	Manner string `json:"manner" gorm:"type:varchar(100);not null"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
}

// TableName указывает имя таблицы для GORM
func (Review) TableName() string {
	return "reviews"
}

// IsTransaction сообщает, привязан ли отзыв к сделке
func (t ReviewType) IsTransaction() bool {
	return t == ReviewTypeSeller || t == ReviewTypeBuyer
}

// Article - сведения о сделке из Article Service (внешний коллаборатор)
type Article struct {
	ID       uuid.UUID  `json:"id"`
	SellerID uuid.UUID  `json:"seller_id"`
	BuyerID  *uuid.UUID `json:"buyer_id"`
	SoldAt   *time.Time `json:"sold_at"` // NULL пока сделка не завершена
}

// TradeCounts - счетчики сделок пользователя из Article Service.
// Sold учитывает только сделки с проставленным sold_at
type TradeCounts struct {
	Listed int `json:"listed"`
	Sold   int `json:"sold"`
	Bought int `json:"bought"`
}

// События для Kafka
const (
	EventReviewCreated    = "REVIEW_CREATED"
	EventReviewDeleted    = "REVIEW_DELETED"
	EventPeerReviewUpsert = "PEER_REVIEW_UPSERTED"
)

// ReviewEvent представляет событие изменения отзыва для Kafka
type ReviewEvent struct {
	EventType   string     `json:"event_type"`
	ReviewID    uuid.UUID  `json:"review_id"`
	ReviewType  ReviewType `json:"review_type"`
	ReviewerID  *uuid.UUID `json:"reviewer_id"`
	ReviewyeeID uuid.UUID  `json:"reviewyee_id"`
	ArticleID   *uuid.UUID `json:"article_id,omitempty"`
	MannerType  MannerType `json:"manner_type"`
	Timestamp   time.Time  `json:"timestamp"`
}

// ArticleEvent представляет событие из топика article_events.
// Любое из них меняет счетчики сделок, значит кеш температуры устаревает
type ArticleEvent struct {
	EventType string     `json:"event_type"` // ARTICLE_CREATED, ARTICLE_SOLD, ARTICLE_DELETED
	ArticleID uuid.UUID  `json:"article_id"`
	SellerID  uuid.UUID  `json:"seller_id"`
	BuyerID   *uuid.UUID `json:"buyer_id,omitempty"`
	Timestamp time.Time  `json:"timestamp"`
}
