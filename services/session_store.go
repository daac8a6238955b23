package services

import (
	"context"
	"fmt"
	"time"

	"goaltracker/database"
	"goaltracker/logger"
	"goaltracker/models"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm/clause"
)

// SessionStore remembers logged-out session ids until they expire.
type SessionStore interface {
	Revoke(ctx context.Context, sessionID uuid.UUID, userID uint, expiresAt time.Time) error
	IsRevoked(ctx context.Context, sessionID uuid.UUID) (bool, error)
	PurgeExpired(ctx context.Context) (int64, error)
}

// DBSessionStore keeps revocations in the revoked_sessions table.
type DBSessionStore struct {
	db *database.Database
}

func NewDBSessionStore(db *database.Database) *DBSessionStore {
	return &DBSessionStore{db: db}
}

func (s *DBSessionStore) Revoke(ctx context.Context, sessionID uuid.UUID, userID uint, expiresAt time.Time) error {
	row := models.RevokedSession{TokenID: sessionID, UserID: userID, ExpiresAt: expiresAt.UTC()}
	err := s.db.DB.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&row).Error
	if err != nil {
		return storageError("revoke session", err)
	}
	return nil
}

func (s *DBSessionStore) IsRevoked(ctx context.Context, sessionID uuid.UUID) (bool, error) {
	var count int64
	err := s.db.DB.WithContext(ctx).Model(&models.RevokedSession{}).Where("token_id = ?", sessionID).Count(&count).Error
	if err != nil {
		return false, storageError("check session", err)
	}
	return count > 0, nil
}

func (s *DBSessionStore) PurgeExpired(ctx context.Context) (int64, error) {
	result := s.db.DB.WithContext(ctx).Where("expires_at < ?", time.Now().UTC()).Delete(&models.RevokedSession{})
	if result.Error != nil {
		return 0, storageError("purge sessions", result.Error)
	}
	return result.RowsAffected, nil
}

// RedisSessionStore keeps one key per revoked session, expiring with the
// session itself.
type RedisSessionStore struct {
	rdb    *redis.Client
	prefix string
}

// NewRedisSessionStore connects to url (redis://host:port/db) and verifies the
// connection.
func NewRedisSessionStore(ctx context.Context, url string) (*RedisSessionStore, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}

	rdb := redis.NewClient(opt)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	logger.Info("Redis connected", "addr", opt.Addr)
	return &RedisSessionStore{rdb: rdb, prefix: "goaltracker:revoked:"}, nil
}

func (s *RedisSessionStore) key(sessionID uuid.UUID) string {
	return s.prefix + sessionID.String()
}

func (s *RedisSessionStore) Revoke(ctx context.Context, sessionID uuid.UUID, userID uint, expiresAt time.Time) error {
	ttl := time.Until(expiresAt)
	if ttl <= 0 {
		return nil
	}
	if err := s.rdb.Set(ctx, s.key(sessionID), userID, ttl).Err(); err != nil {
		return storageError("revoke session", err)
	}
	return nil
}

func (s *RedisSessionStore) IsRevoked(ctx context.Context, sessionID uuid.UUID) (bool, error) {
	n, err := s.rdb.Exists(ctx, s.key(sessionID)).Result()
	if err != nil {
		return false, storageError("check session", err)
	}
	return n > 0, nil
}

// PurgeExpired is a no-op: keys carry their own TTL.
func (s *RedisSessionStore) PurgeExpired(ctx context.Context) (int64, error) {
	return 0, nil
}

func (s *RedisSessionStore) Close() error {
	return s.rdb.Close()
}
