package clients

import (
	"context"
	"net/http"
)

// AuthClient proxies auth-service endpoints.
type AuthClient struct {
	base *BaseClient
}

// NewAuthClient returns client.
func NewAuthClient(baseURL string, httpClient HTTPDoer) *AuthClient {
	return &AuthClient{base: NewBaseClient(baseURL, httpClient)}
}

// Register forwards the registration payload.
func (c *AuthClient) Register(ctx context.Context, body []byte) (int, []byte, error) {
	return c.base.Do(ctx, Request{Method: http.MethodPost, Path: "/auth/register", Body: body})
}

// Login forwards login payload.
func (c *AuthClient) Login(ctx context.Context, body []byte) (int, []byte, error) {
	return c.base.Do(ctx, Request{Method: http.MethodPost, Path: "/auth/login", Body: body})
}

// Me forwards the caller's bearer token for validation.
func (c *AuthClient) Me(ctx context.Context, authorization string) (int, []byte, error) {
	return c.base.Do(ctx, Request{Method: http.MethodGet, Path: "/auth/me", Headers: map[string]string{"Authorization": authorization}})
}
