package model

// swagger:model Notification
type Notification struct {
	ID          int    `json:"id" validate:"required"`
	Title       string `json:"title"`
	Message     string `json:"message"`
	IsRead      bool   `json:"is_read"`
	RelatedType string `json:"related_type,omitempty"`
	RelatedID   *int   `json:"related_id,omitempty"`
	CreatedAt   Time   `json:"created_at"`
}

type NotificationFeed struct {
	Notifications []Notification `json:"notifications"`
	UnreadCount   int            `json:"unread_count"`
}

// MarkRead flags one notification as read. The unread count drops by one
// unless the notification was already known to be read, and never goes below zero.
func (f *NotificationFeed) MarkRead(id int) {
	for i := range f.Notifications {
		if f.Notifications[i].ID != id {
			continue
		}
		if f.Notifications[i].IsRead {
			return
		}
		f.Notifications[i].IsRead = true
		break
	}
	if f.UnreadCount > 0 {
		f.UnreadCount--
	}
}

func (f *NotificationFeed) MarkAllRead() {
	for i := range f.Notifications {
		f.Notifications[i].IsRead = true
	}
	f.UnreadCount = 0
}

// Clone returns a copy that shares nothing with f.
func (f NotificationFeed) Clone() NotificationFeed {
	f.Notifications = append([]Notification(nil), f.Notifications...)
	return f
}
