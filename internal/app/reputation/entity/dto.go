package entity

import (
	"encoding/json"

	"github.com/google/uuid"
)

// CreateArticleReviewRequest - запрос на создание отзыва по сделке
type CreateArticleReviewRequest struct {
	FreeText   string   `json:"review"` // Свободный текст, необязателен
	MannerType string   `json:"manner_type" validate:"required,oneof=good bad"`
	MannerList []string `json:"manner_list" validate:"required"`
}

// PeerReviewRequest - запрос на оценку манер пользователя вне сделки
type PeerReviewRequest struct {
	MannerType string   `json:"manner_type" validate:"required,oneof=good bad"`
	MannerList []string `json:"manner_list" validate:"required"`
}

// ToView - подсказка клиенту, какую встречную вьюху предложить дальше:
// после просмотра "sent" можно сразу открыть "received" и наоборот
type ToView struct {
	Kind   string
	Exists bool
}

// MarshalJSON сериализует подсказку как двухэлементный массив ["received", true] -
// исторический формат ответа, на который завязаны клиенты
func (v ToView) MarshalJSON() ([]byte, error) {
	return json.Marshal([]interface{}{v.Kind, v.Exists})
}

// UnmarshalJSON принимает тот же массив обратно (нужно тестам и клиентским SDK)
func (v *ToView) UnmarshalJSON(data []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw[0], &v.Kind); err != nil {
			return err
		}
	}
	if len(raw) > 1 {
		if err := json.Unmarshal(raw[1], &v.Exists); err != nil {
			return err
		}
	}
	return nil
}

// ArticleReviewResponse - ответ по отзыву о сделке (создание и обе вьюхи)
type ArticleReviewResponse struct {
	FreeText   *string  `json:"review"`
	Evaluation []string `json:"evaluation"` // Расшифрованный список манер в порядке словаря
	Type       string   `json:"type"`       // sent / received
	ToView     ToView   `json:"to_view"`
}

// PeerReviewResponse - ответ на оценку манер пользователя
type PeerReviewResponse struct {
	MannerType MannerType `json:"manner_type"`
	Evaluation []string   `json:"evaluation"`
}

// TrustScoreResponse - температура доверия пользователя, всегда в [0, 99]
type TrustScoreResponse struct {
	UserID      uuid.UUID `json:"user_id"`
	Temperature float64   `json:"temperature"`
}

// MannerTallyResponse - сколько разных пользователей отметили каждую манеру
type MannerTallyResponse struct {
	UserID uuid.UUID      `json:"user_id"`
	Manner map[string]int `json:"manner"`
}

// ErrorResponse - стандартный ответ об ошибке
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// SuccessResponse - стандартный ответ об успехе
type SuccessResponse struct {
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}
