package repository

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"training_portal/internal/model"
	"training_portal/pkg/logger"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var ErrSessionNotFound = errors.New("session not found")

type sessionDeleter interface {
	Delete(ctx context.Context, id string) error
}

func dropExpired(ctx context.Context, store sessionDeleter, id string) {
	if err := store.Delete(ctx, id); err != nil {
		logger.Log.Warn("Failed to delete expired session", zap.Error(err))
	}
}

// SessionStore keeps portal sessions. Implementations must treat an expired
// session as absent.
type SessionStore interface {
	Save(ctx context.Context, s *model.Session) error
	Get(ctx context.Context, id string) (*model.Session, error)
	Delete(ctx context.Context, id string) error
	Ping(ctx context.Context) error
}

type MemorySessionStore struct {
	mu       sync.RWMutex
	sessions map[string]model.Session
	now      func() time.Time
}

func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{sessions: make(map[string]model.Session), now: time.Now}
}

func (r *MemorySessionStore) Save(ctx context.Context, s *model.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[s.ID] = *s
	return nil
}

func (r *MemorySessionStore) Get(ctx context.Context, id string) (*model.Session, error) {
	r.mu.RLock()
	s, ok := r.sessions[id]
	r.mu.RUnlock()
	if !ok {
		return nil, ErrSessionNotFound
	}
	if s.Expired(r.now()) {
		dropExpired(ctx, r, id)
		return nil, ErrSessionNotFound
	}
	return &s, nil
}

func (r *MemorySessionStore) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, id)
	return nil
}

func (r *MemorySessionStore) Ping(ctx context.Context) error {
	return nil
}

// RedisSessionStore stores sessions as JSON under portal:session:<id>, expiring with the session.
type RedisSessionStore struct {
	Redis *redis.Client
}

func NewRedisSessionStore(rdb *redis.Client) *RedisSessionStore {
	return &RedisSessionStore{Redis: rdb}
}

func sessionKey(id string) string {
	return "portal:session:" + id
}

func (r *RedisSessionStore) Save(ctx context.Context, s *model.Session) error {
	data, err := json.Marshal(s)
	if err != nil {
		return err
	}
	var ttl time.Duration
	if !s.ExpiresAt.IsZero() {
		ttl = time.Until(s.ExpiresAt)
		if ttl <= 0 {
			return nil
		}
	}
	return r.Redis.Set(ctx, sessionKey(s.ID), data, ttl).Err()
}

func (r *RedisSessionStore) Get(ctx context.Context, id string) (*model.Session, error) {
	data, err := r.Redis.Get(ctx, sessionKey(id)).Bytes()
	if err == redis.Nil {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, err
	}
	var s model.Session
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *RedisSessionStore) Delete(ctx context.Context, id string) error {
	return r.Redis.Del(ctx, sessionKey(id)).Err()
}

func (r *RedisSessionStore) Ping(ctx context.Context) error {
	return r.Redis.Ping(ctx).Err()
}

type DBSessionStore struct {
	DB *gorm.DB
}

func NewDBSessionStore(db *gorm.DB) *DBSessionStore {
	return &DBSessionStore{DB: db}
}

func (r *DBSessionStore) Save(ctx context.Context, s *model.Session) error {
	user, err := json.Marshal(s.User)
	if err != nil {
		return err
	}
	rec := model.SessionRecord{
		ID:        s.ID,
		Token:     s.Token,
		UserJSON:  string(user),
		CreatedAt: s.CreatedAt,
		ExpiresAt: s.ExpiresAt,
	}
	return r.DB.WithContext(ctx).Save(&rec).Error
}

func (r *DBSessionStore) Get(ctx context.Context, id string) (*model.Session, error) {
	var rec model.SessionRecord
	err := r.DB.WithContext(ctx).Where("id = ?", id).First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, err
	}

	s := &model.Session{
		ID:        rec.ID,
		Token:     rec.Token,
		CreatedAt: rec.CreatedAt,
		ExpiresAt: rec.ExpiresAt,
	}
	if err := json.Unmarshal([]byte(rec.UserJSON), &s.User); err != nil {
		return nil, err
	}
	if s.Expired(time.Now()) {
		dropExpired(ctx, r, id)
		return nil, ErrSessionNotFound
	}
	return s, nil
}

func (r *DBSessionStore) Delete(ctx context.Context, id string) error {
	return r.DB.WithContext(ctx).Where("id = ?", id).Delete(&model.SessionRecord{}).Error
}

// PurgeExpired removes sessions past their expiry and returns how many went.
func (r *DBSessionStore) PurgeExpired(ctx context.Context) (int64, error) {
	res := r.DB.WithContext(ctx).Where("expires_at < ?", time.Now()).Delete(&model.SessionRecord{})
	return res.RowsAffected, res.Error
}

func (r *DBSessionStore) Ping(ctx context.Context) error {
	sqlDB, err := r.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}
