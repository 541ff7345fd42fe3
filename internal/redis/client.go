package redis

import (
	"context"
	"fmt"
	"strconv"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

// Client wraps a Redis connection for session and rate-limiting operations.
type Client struct {
	rdb *goredis.Client
}

// NewClient creates a Redis client from a URL and verifies the connection.
func NewClient(redisURL string) (*Client, error) {
	opts, err := goredis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parsing redis URL: %w", err)
	}
	rdb := goredis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("connecting to redis: %w", err)
	}
	return &Client{rdb: rdb}, nil
}

// Ping checks the Redis connection.
func (c *Client) Ping(ctx context.Context) error {
	return c.rdb.Ping(ctx).Err()
}

// Close closes the Redis connection.
func (c *Client) Close() error {
	return c.rdb.Close()
}

const (
	sessionPrefix      = "session:"
	userSessionsPrefix = "user_sessions:"
)

// StoreSession maps a session ID to a user ID and tracks it in the user's
// session set so the whole set can be revoked at once.
func (c *Client) StoreSession(ctx context.Context, sessionID string, userID int64, ttl time.Duration) error {
	setKey := userSessionsPrefix + strconv.FormatInt(userID, 10)

	pipe := c.rdb.TxPipeline()
	pipe.Set(ctx, sessionPrefix+sessionID, userID, ttl)
	pipe.SAdd(ctx, setKey, sessionID)
	pipe.Expire(ctx, setKey, ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("storing session: %w", err)
	}
	return nil
}

// SessionUserID returns the user ID behind a session, or 0 if the session
// does not exist or has expired.
func (c *Client) SessionUserID(ctx context.Context, sessionID string) (int64, error) {
	val, err := c.rdb.Get(ctx, sessionPrefix+sessionID).Result()
	if err == goredis.Nil {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("getting session: %w", err)
	}

	userID, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parsing user ID: %w", err)
	}
	return userID, nil
}

// RevokeUserSessions deletes every session belonging to a user and returns
// how many were removed.
func (c *Client) RevokeUserSessions(ctx context.Context, userID int64) (int, error) {
	setKey := userSessionsPrefix + strconv.FormatInt(userID, 10)

	ids, err := c.rdb.SMembers(ctx, setKey).Result()
	if err != nil {
		return 0, fmt.Errorf("listing sessions: %w", err)
	}

	keys := make([]string, 0, len(ids)+1)
	for _, id := range ids {
		keys = append(keys, sessionPrefix+id)
	}
	keys = append(keys, setKey)
	if err := c.rdb.Del(ctx, keys...).Err(); err != nil {
		return 0, fmt.Errorf("revoking sessions: %w", err)
	}
	return len(ids), nil
}

// rateLimitScript atomically increments a counter, sets its TTL on first use,
// and reports the counter with its remaining window.
var rateLimitScript = goredis.NewScript(`
local count = redis.call("INCR", KEYS[1])
if count == 1 then
    redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
local ttl = redis.call("PTTL", KEYS[1])
return {count, ttl}
`)

// CheckRateLimit runs a fixed-window counter for the key. It returns whether
// the request is allowed, the current count, and the window's remaining
// milliseconds.
func (c *Client) CheckRateLimit(ctx context.Context, key string, limit int, window time.Duration) (bool, int64, int64, error) {
	vals, err := rateLimitScript.Run(ctx, c.rdb, []string{key}, window.Milliseconds()).Int64Slice()
	if err != nil {
		return false, 0, 0, fmt.Errorf("checking rate limit: %w", err)
	}
	if len(vals) != 2 {
		return false, 0, 0, fmt.Errorf("checking rate limit: unexpected reply %v", vals)
	}
	count, ttlMs := vals[0], vals[1]
	return count <= int64(limit), count, ttlMs, nil
}
