package service

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"jobboard_chat/internal/domain"
	apperrors "jobboard_chat/pkg/errors"
)

// ProfileFetcher - внешний поиск профиля кандидата
type ProfileFetcher interface {
	FetchProfile(ctx context.Context, applicantID string) (*domain.Profile, error)
}

// ProfileClient ходит в REST бэкенд job-board за профилем кандидата
type ProfileClient struct {
	httpClient *resty.Client
}

// Поля, в которых бэкенд может вернуть имя, в порядке приоритета
var profileNameFields = []string{"fullName", "fullname", "name", "username", "email"}

func NewProfileClient(baseURL, token string, timeout time.Duration) *ProfileClient {
	client := resty.New().
		SetBaseURL(strings.TrimRight(baseURL, "/")).
		SetHeader("Accept", "application/json").
		SetTimeout(timeout)
	if token != "" {
		client.SetAuthToken(token)
	}
	return &ProfileClient{httpClient: client}
}

// FetchProfile запрашивает GET /profiles/{id}. Ответ может быть как голым объектом, так и обернутым в data.
func (c *ProfileClient) FetchProfile(ctx context.Context, applicantID string) (*domain.Profile, error) {
	var body map[string]interface{}

	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetPathParam("id", applicantID).
		SetResult(&body).
		Get("/profiles/{id}")
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}

	if resp.StatusCode() == http.StatusNotFound {
		return nil, apperrors.ErrProfileNotFound
	}
	if resp.IsError() {
		return nil, fmt.Errorf("profile service returned status %d: %s", resp.StatusCode(), resp.String())
	}

	name := extractDisplayName(body)
	if name == "" {
		return nil, apperrors.ErrProfileHasNoName
	}

	return &domain.Profile{ID: applicantID, DisplayName: name}, nil
}

func extractDisplayName(body map[string]interface{}) string {
	payload := body
	if data, ok := body["data"].(map[string]interface{}); ok {
		payload = data
	}

	for _, field := range profileNameFields {
		if value, ok := payload[field].(string); ok && strings.TrimSpace(value) != "" {
			return strings.TrimSpace(value)
		}
	}
	return ""
}
