package apiclient

import (
	"context"
	"net/http"
	"strings"

	"training_portal/internal/model"
)

// PlaceholderEmail is sent on registration when the user gives no address.
func PlaceholderEmail(username string) string {
	return strings.ToLower(strings.TrimSpace(username)) + "@no-email.local"
}

func (c *Client) Login(ctx context.Context, req model.LoginRequest) (*model.AuthResponse, error) {
	var out model.AuthResponse
	err := c.call(ctx, request{
		method:   http.MethodPost,
		endpoint: "/api/login",
		path:     "/api/login",
		body:     req,
		out:      &out,
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Register(ctx context.Context, req model.RegisterRequest) (*model.AuthResponse, error) {
	if strings.TrimSpace(req.Email) == "" {
		req.Email = PlaceholderEmail(req.Username)
	}
	var out model.AuthResponse
	err := c.call(ctx, request{
		method:   http.MethodPost,
		endpoint: "/api/register",
		path:     "/api/register",
		body:     req,
		out:      &out,
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// Me returns the user the client's token belongs to.
func (c *Client) Me(ctx context.Context) (*model.User, error) {
	var out struct {
		User model.User `json:"user"`
	}
	err := c.call(ctx, request{
		method:   http.MethodGet,
		endpoint: "/api/me",
		path:     "/api/me",
		out:      &out,
	})
	if err != nil {
		return nil, err
	}
	return &out.User, nil
}
