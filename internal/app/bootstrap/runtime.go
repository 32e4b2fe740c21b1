package bootstrap

import (
	"context"
	"crypto/tls"
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"

	appconfig "github.com/wolfman30/monday-lead-relay/internal/config"
	"github.com/wolfman30/monday-lead-relay/internal/leads"
	"github.com/wolfman30/monday-lead-relay/pkg/logging"
)

// BuildRedisClient returns a configured Redis client or nil when disabled.
// When verify is true, a ping is issued and failures return nil.
func BuildRedisClient(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger, verify bool) *redis.Client {
	if cfg == nil || strings.TrimSpace(cfg.RedisAddr) == "" {
		return nil
	}
	if logger == nil {
		logger = logging.Default()
	}
	if ctx == nil {
		ctx = context.Background()
	}

	redisOptions := &redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	}
	if cfg.RedisTLS {
		redisOptions.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}
	client := redis.NewClient(redisOptions)
	if !verify {
		return client
	}
	if err := client.Ping(ctx).Err(); err != nil {
		logger.Warn("redis not available", "error", err)
		_ = client.Close()
		return nil
	}
	return client
}

// BuildGuard picks the duplicate guard: Redis when a client is available,
// then DynamoDB when DUPLICATE_TABLE is set, otherwise process memory.
func BuildGuard(ctx context.Context, redisClient *redis.Client, cfg *appconfig.Config, logger *logging.Logger) (leads.Guard, error) {
	if logger == nil {
		logger = logging.Default()
	}
	window := cfg.DuplicateWindow
	switch {
	case redisClient != nil:
		logger.Info("duplicate guard using redis", "window", window.String())
		return leads.NewRedisGuard(redisClient, window), nil
	case cfg.DuplicateTable != "":
		awsCfg, err := LoadAWSConfig(ctx, cfg)
		if err != nil {
			return nil, fmt.Errorf("bootstrap: load aws config: %w", err)
		}
		logger.Info("duplicate guard using dynamodb", "table", cfg.DuplicateTable, "window", window.String())
		return leads.NewDynamoGuard(NewDynamoClient(awsCfg, cfg), cfg.DuplicateTable, window), nil
	default:
		logger.Info("duplicate guard using process memory", "window", window.String())
		return leads.NewMemoryGuard(window), nil
	}
}
