package model

import "time"

// Session is the only state the portal keeps: who is signed in and the
// bearer token issued by the training API.
type Session struct {
	ID        string    `json:"id"`
	Token     string    `json:"token"`
	User      User      `json:"user"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

func (s *Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && now.After(s.ExpiresAt)
}

// SessionRecord is the relational form of a Session for the database store.
type SessionRecord struct {
	ID        string    `gorm:"primaryKey;type:varchar(36)"`
	Token     string    `gorm:"type:text;not null"`
	UserJSON  string    `gorm:"type:text;not null"`
	CreatedAt time.Time
	ExpiresAt time.Time `gorm:"index"`
}

func (SessionRecord) TableName() string {
	return "portal_sessions"
}
