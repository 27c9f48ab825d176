package service

import (
	"context"

	"training_portal/internal/apiclient"
	"training_portal/internal/model"
)

type NotificationService struct {
	Hub *LiveHub
}

func NewNotificationService(hub *LiveHub) *NotificationService {
	return &NotificationService{Hub: hub}
}

// Feed loads the latest notifications together with the unread count.
func (s *NotificationService) Feed(ctx context.Context, api *apiclient.Client) (*model.NotificationFeed, error) {
	return loadNotificationFeed(ctx, api)
}

func loadNotificationFeed(ctx context.Context, api *apiclient.Client) (*model.NotificationFeed, error) {
	list, err := api.ListNotifications(ctx, apiclient.DefaultNotificationLimit)
	if err != nil {
		return nil, err
	}
	count, err := api.UnreadNotificationCount(ctx)
	if err != nil {
		return nil, err
	}
	return &model.NotificationFeed{Notifications: list, UnreadCount: count}, nil
}

// MarkRead marks one notification upstream, then updates the feeds the
// session's live views hold. The returned feed is the local one when a live
// view exists, otherwise a fresh fetch.
func (s *NotificationService) MarkRead(ctx context.Context, sessionID string, api *apiclient.Client, notificationID int) (*model.NotificationFeed, error) {
	if err := api.MarkNotificationRead(ctx, notificationID); err != nil {
		return nil, err
	}
	if s.Hub != nil {
		if feed, ok := s.Hub.UpdateNotifications(sessionID, func(f *model.NotificationFeed) { f.MarkRead(notificationID) }); ok {
			return feed, nil
		}
	}
	return s.Feed(ctx, api)
}

func (s *NotificationService) MarkAllRead(ctx context.Context, sessionID string, api *apiclient.Client) (*model.NotificationFeed, error) {
	if err := api.MarkAllNotificationsRead(ctx); err != nil {
		return nil, err
	}
	if s.Hub != nil {
		if feed, ok := s.Hub.UpdateNotifications(sessionID, func(f *model.NotificationFeed) { f.MarkAllRead() }); ok {
			return feed, nil
		}
	}
	return s.Feed(ctx, api)
}
