package accounts

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

const userCacheKeyPrefix = "accounts:user:"

// CachedUserStore decorates a UserStore with a redis read-through cache on
// FindByID. Cache failures fall through to the inner store, and writes that
// change a user invalidate its entry, bounding staleness to the TTL.
type CachedUserStore struct {
	UserStore
	rdb    redis.UniversalClient
	ttl    time.Duration
	logger Logger
}

// NewCachedUserStore wraps store with a redis cache holding entries for ttl.
func NewCachedUserStore(store UserStore, rdb redis.UniversalClient, ttl time.Duration, logger Logger) *CachedUserStore {
	if logger == nil {
		logger = defLogger{}
	}
	return &CachedUserStore{
		UserStore: store,
		rdb:       rdb,
		ttl:       ttl,
		logger:    logger,
	}
}

var _ UserStore = (*CachedUserStore)(nil)

func (c *CachedUserStore) FindByID(ctx context.Context, id string) (*User, error) {
	key := userCacheKeyPrefix + id

	payload, err := c.rdb.Get(ctx, key).Bytes()
	if err == nil {
		user := &User{}
		if err := json.Unmarshal(payload, user); err == nil {
			return user, nil
		}
		// undecodable entry, fall through and refresh it
	} else if !errors.Is(err, redis.Nil) {
		c.logger.Debug("user cache read failed", "id", id, "error", err)
	}

	user, err := c.UserStore.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if payload, err := json.Marshal(user); err == nil {
		if err := c.rdb.Set(ctx, key, payload, c.ttl).Err(); err != nil {
			c.logger.Debug("user cache write failed", "id", id, "error", err)
		}
	}

	return user, nil
}

func (c *CachedUserStore) UpdatePasswordHash(ctx context.Context, id, passwordHash string) error {
	if err := c.UserStore.UpdatePasswordHash(ctx, id, passwordHash); err != nil {
		return err
	}
	c.invalidate(ctx, id)
	return nil
}

func (c *CachedUserStore) SetEmailVerified(ctx context.Context, id, address string) error {
	if err := c.UserStore.SetEmailVerified(ctx, id, address); err != nil {
		return err
	}
	c.invalidate(ctx, id)
	return nil
}

func (c *CachedUserStore) invalidate(ctx context.Context, id string) {
	if err := c.rdb.Del(ctx, userCacheKeyPrefix+id).Err(); err != nil {
		c.logger.Debug("user cache invalidation failed", "id", id, "error", err)
	}
}
