package redis

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ikkim/storerating-backend/config"
	"github.com/ikkim/storerating-backend/pkg/logger"
	"github.com/redis/go-redis/v9"
)

var client *redis.Client

// Init initializes Redis connection
func Init(cfg *config.RedisConfig) error {
	logger.Info("Initializing Redis connection", map[string]interface{}{
		"host": cfg.Host,
		"port": cfg.Port,
		"db":   cfg.DB,
	})

	client = redis.NewClient(&redis.Options{
		Addr:     cfg.Addr(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		logger.Error("Failed to connect to Redis", err, map[string]interface{}{
			"host": cfg.Host,
			"port": cfg.Port,
		})
		return fmt.Errorf("failed to connect to Redis: %w", err)
	}

	logger.Info("Redis connection established successfully")
	return nil
}

// GetClient returns the Redis client instance
func GetClient() *redis.Client {
	return client
}

// Close closes the Redis connection
func Close() error {
	if client != nil {
		logger.Info("Closing Redis connection")
		return client.Close()
	}
	return nil
}

// LoginGuard counts failed logins per email in a fixed window that starts
// with the first failure.
type LoginGuard struct {
	client      *redis.Client
	maxFailures int64
	window      time.Duration
}

func NewLoginGuard(c *redis.Client, cfg config.LoginGuardConfig) *LoginGuard {
	return &LoginGuard{client: c, maxFailures: cfg.MaxFailures, window: cfg.Window}
}

func failureKey(email string) string {
	return "login:failures:" + strings.ToLower(strings.TrimSpace(email))
}

// Blocked reports whether email has reached the failure limit.
func (g *LoginGuard) Blocked(ctx context.Context, email string) (bool, error) {
	n, err := g.client.Get(ctx, failureKey(email)).Int64()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		logger.Error("Failed to read login failure counter", err)
		return false, err
	}
	return n >= g.maxFailures, nil
}

// RecordFailure increments the counter and returns the new count. The key
// is created with the window TTL and incremented in one MULTI, so a counter
// never exists without an expiry.
func (g *LoginGuard) RecordFailure(ctx context.Context, email string) (int64, error) {
	key := failureKey(email)

	var incr *redis.IntCmd
	_, err := g.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.SetNX(ctx, key, 0, g.window)
		incr = pipe.Incr(ctx, key)
		return nil
	})
	if err != nil {
		logger.Error("Failed to record login failure", err)
		return 0, err
	}

	n := incr.Val()
	logger.Debug("Login failure recorded", map[string]interface{}{
		"failures": n,
		"limit":    g.maxFailures,
	})
	return n, nil
}

// Reset clears the counter after a successful login.
func (g *LoginGuard) Reset(ctx context.Context, email string) error {
	if err := g.client.Del(ctx, failureKey(email)).Err(); err != nil {
		logger.Error("Failed to reset login failure counter", err)
		return err
	}
	return nil
}
