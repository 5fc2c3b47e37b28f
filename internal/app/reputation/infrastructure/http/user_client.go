package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"wafflemarket/internal/app/reputation/infrastructure"

	"github.com/google/uuid"
)

// UserClient клиент для взаимодействия с User Service
type UserClient struct {
	baseURL    string
	httpClient *http.Client
	authToken  string
}

// NewUserClient создает новый клиент для User Service
func NewUserClient(baseURL string) *UserClient {
	return &UserClient{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// SetAuthToken устанавливает JWT токен для аутентификации
func (c *UserClient) SetAuthToken(token string) {
	c.authToken = token
}

// userProfile - нужная ядру часть профиля из User Service
type userProfile struct {
	ID       uuid.UUID `json:"id"`
	Location *struct {
		Name string `json:"name"`
	} `json:"location"`
}

func (c *UserClient) getProfile(ctx context.Context, userID uuid.UUID) (*userProfile, error) {
	url := fmt.Sprintf("%s/users/%s", c.baseURL, userID.String())

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

	var profile userProfile
	if err := json.NewDecoder(resp.Body).Decode(&profile); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	return &profile, nil
}

// Exists проверяет, что пользователь существует в User Service
func (c *UserClient) Exists(ctx context.Context, userID uuid.UUID) (bool, error) {
	_, err := c.getProfile(ctx, userID)
	if err != nil {
		if errors.Is(err, infrastructure.ErrUserNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// GetLocation возвращает текущий район пользователя, nil если район не указан
func (c *UserClient) GetLocation(ctx context.Context, userID uuid.UUID) (*string, error) {
	profile, err := c.getProfile(ctx, userID)
	if err != nil {
		return nil, err
	}

	if profile.Location == nil {
		return nil, nil
	}

	name := profile.Location.Name
	return &name, nil
}
