package http

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"wafflemarket/internal/app/reputation/entity"
	"wafflemarket/internal/app/reputation/infrastructure"

	"github.com/google/uuid"
)

// ArticleClient клиент для взаимодействия с Article Service.
// Используется для проверки сторон сделки при создании отзыва
// и для получения счетчиков сделок при расчете температуры
type ArticleClient struct {
	baseURL    string
	httpClient *http.Client
	authToken  string // JWT токен для аутентификации в Article Service
}

// NewArticleClient создает новый клиент для Article Service
func NewArticleClient(baseURL string) *ArticleClient {
	return &ArticleClient{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// SetAuthToken устанавливает JWT токен для аутентификации
func (c *ArticleClient) SetAuthToken(token string) {
	c.authToken = token
}

// GetArticle получает стороны и момент завершения сделки
func (c *ArticleClient) GetArticle(ctx context.Context, articleID uuid.UUID) (*entity.Article, error) {
	url := fmt.Sprintf("%s/articles/%s", c.baseURL, articleID.String())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	if c.authToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.authToken)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, infrastructure.ErrArticleNotFound
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	var article entity.Article
	if err := json.NewDecoder(resp.Body).Decode(&article); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	return &article, nil
}

// GetTradeCounts получает счетчики сделок пользователя:
// сколько выставил, сколько продал (только завершенные), сколько купил
func (c *ArticleClient) GetTradeCounts(ctx context.Context, userID uuid.UUID) (*entity.TradeCounts, error) {
	url := fmt.Sprintf("%s/users/%s/trade-counts", c.baseURL, userID.String())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	if c.authToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.authToken)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, infrastructure.ErrUserNotFound
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	var counts entity.TradeCounts
	if err := json.NewDecoder(resp.Body).Decode(&counts); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	return &counts, nil
}
