package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/dakshgoel/schedulr/config"
	"github.com/redis/go-redis/v9"
)

// RedisCache holds short-lived OAuth access tokens exchanged from the
// identity provider, so repeated calendar calls for the same host do not
// hit the provider every time.
type RedisCache struct {
	client   *redis.Client
	tokenTTL time.Duration
}

func NewRedisCache(cfg config.RedisConfig, tokenTTL time.Duration) *RedisCache {
	return &RedisCache{
		client:   redis.NewClient(&redis.Options{Addr: cfg.Addr, Password: cfg.Password, DB: cfg.DB}),
		tokenTTL: tokenTTL,
	}
}

func (c *RedisCache) GetAccessToken(ctx context.Context, clerkUserID, provider string) (string, error) {
	token, err := c.client.Get(ctx, tokenKey(clerkUserID, provider)).Result()
	if err != nil {
		if err == redis.Nil {
			return "", nil
		}
		return "", err
	}
	return token, nil
}

func (c *RedisCache) SetAccessToken(ctx context.Context, clerkUserID, provider, token string) error {
	return c.client.Set(ctx, tokenKey(clerkUserID, provider), token, c.tokenTTL).Err()
}

func tokenKey(clerkUserID, provider string) string {
	return fmt.Sprintf("oauth:%s:%s", provider, clerkUserID)
}
