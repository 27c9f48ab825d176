package apiclient

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"training_portal/internal/model"
)

const DefaultNotificationLimit = 20

func (c *Client) ListNotifications(ctx context.Context, limit int) ([]model.Notification, error) {
	if limit <= 0 {
		limit = DefaultNotificationLimit
	}
	var out struct {
		Notifications []model.Notification `json:"notifications" validate:"dive"`
	}
	err := c.call(ctx, request{
		method:   http.MethodGet,
		endpoint: "/api/notifications",
		path:     "/api/notifications",
		query:    url.Values{"limit": {strconv.Itoa(limit)}},
		out:      &out,
	})
	if err != nil {
		return nil, err
	}
	return out.Notifications, nil
}

func (c *Client) UnreadNotificationCount(ctx context.Context) (int, error) {
	var out struct {
		Count int `json:"count" validate:"min=0"`
	}
	err := c.call(ctx, request{
		method:   http.MethodGet,
		endpoint: "/api/notifications/unread-count",
		path:     "/api/notifications/unread-count",
		out:      &out,
	})
	if err != nil {
		return 0, err
	}
	return out.Count, nil
}

// MarkNotificationRead only needs a 2xx; the body is not inspected.
func (c *Client) MarkNotificationRead(ctx context.Context, notificationID int) error {
	return c.call(ctx, request{
		method:   http.MethodPost,
		endpoint: "/api/notifications/:id/read",
		path:     fmt.Sprintf("/api/notifications/%d/read", notificationID),
		lenient:  true,
	})
}

func (c *Client) MarkAllNotificationsRead(ctx context.Context) error {
	return c.call(ctx, request{
		method:   http.MethodPost,
		endpoint: "/api/notifications/mark-all-read",
		path:     "/api/notifications/mark-all-read",
		lenient:  true,
	})
}
