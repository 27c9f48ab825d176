package apiclient

import (
	"context"
	"fmt"
	"net/http"

	"training_portal/internal/model"
)

func (c *Client) ListResources(ctx context.Context) ([]model.Resource, error) {
	var out struct {
		Resources []model.Resource `json:"resources" validate:"dive"`
	}
	err := c.call(ctx, request{
		method:   http.MethodGet,
		endpoint: "/api/resources",
		path:     "/api/resources",
		out:      &out,
	})
	if err != nil {
		return nil, err
	}
	return out.Resources, nil
}

func (c *Client) GetResource(ctx context.Context, resourceID int) (*model.Resource, error) {
	var out struct {
		Resource model.Resource `json:"resource"`
	}
	err := c.call(ctx, request{
		method:   http.MethodGet,
		endpoint: "/api/resources/:id",
		path:     fmt.Sprintf("/api/resources/%d", resourceID),
		out:      &out,
	})
	if err != nil {
		return nil, err
	}
	return &out.Resource, nil
}

func (c *Client) CreateResource(ctx context.Context, req model.CreateResourceRequest) (*model.Resource, error) {
	var out struct {
		Resource model.Resource `json:"resource"`
	}
	err := c.call(ctx, request{
		method:   http.MethodPost,
		endpoint: "/api/resources",
		path:     "/api/resources",
		body:     req,
		out:      &out,
	})
	if err != nil {
		return nil, err
	}
	return &out.Resource, nil
}
