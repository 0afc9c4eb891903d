package masking

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/shaiso/maskctl/internal/domain"
)

// Credentials — учётные данные пользователя engine.
type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	Authorization string `json:"Authorization"`
}

// Login получает токен сессии.
//
// Пустой токен в успешном ответе считается отказом в авторизации.
func (c *Client) Login(ctx context.Context, creds Credentials) (domain.Session, error) {
	var resp loginResponse
	if err := c.roundTrip(ctx, "", http.MethodPost, "/login", creds, &resp); err != nil {
		return domain.Session{}, fmt.Errorf("login: %w", err)
	}

	if resp.Authorization == "" {
		return domain.Session{}, fmt.Errorf("login: %w: empty token in response", ErrUnauthorized)
	}

	c.logger.Info("logged in", "username", creds.Username)

	return domain.Session{
		Token:    resp.Authorization,
		Username: creds.Username,
		IssuedAt: time.Now(),
	}, nil
}
