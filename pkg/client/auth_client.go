package client

import (
	"context"
	"errors"
	"net/http"
)

// AuthClient provides access to the /api/auth endpoints
type AuthClient struct {
	client *Client
}

type authReply struct {
	User
	Token string `json:"token"`
}

// Register creates an account and stores the returned session.
func (c *AuthClient) Register(ctx context.Context, name, email, password, photoURL string) (User, error) {
	req := map[string]string{"name": name, "email": email, "password": password}
	if photoURL != "" {
		req["photoURL"] = photoURL
	}
	return c.authenticate(ctx, "/api/auth/register", req)
}

// Login exchanges credentials for a token and stores the session.
func (c *AuthClient) Login(ctx context.Context, email, password string) (User, error) {
	return c.authenticate(ctx, "/api/auth/login", map[string]string{"email": email, "password": password})
}

func (c *AuthClient) authenticate(ctx context.Context, path string, req any) (User, error) {
	var resp authReply
	if err := c.client.doJSON(ctx, http.MethodPost, path, req, &resp); err != nil {
		return User{}, err
	}
	if c.client.Session != nil {
		if err := c.client.Session.Login(resp.User, resp.Token); err != nil {
			return resp.User, err
		}
	}
	return resp.User, nil
}

// Logout forgets the stored session. There is no server-side logout.
func (c *AuthClient) Logout() error {
	if c.client.Session == nil {
		return nil
	}
	return c.client.Session.Logout()
}

// Me returns the user the current token belongs to.
func (c *AuthClient) Me(ctx context.Context) (User, error) {
	var resp User
	if err := c.client.doJSON(ctx, http.MethodGet, "/api/auth/me", nil, &resp); err != nil {
		return resp, err
	}
	return resp, nil
}

// IsUnauthorized reports whether err is a 401 from the API, meaning the
// stored token is missing, expired or names a deleted user.
func IsUnauthorized(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusUnauthorized
}
