package cache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/w3wave/social-digest/pkg/config"
	"github.com/w3wave/social-digest/pkg/logger"
	"go.uber.org/fx"
)

const keyPrefix = "social-digest:"

type Opts struct {
	fx.In
	Lifecycle fx.Lifecycle
	Config    *config.Config
	Logger    logger.Logger
}

// New picks redis when REDIS_ADDR is set and an in-process LRU otherwise. An
// unreachable redis at startup degrades to the LRU.
func New(opts Opts) (Cache, error) {
	log := opts.Logger.WithComponent("Cache")

	if opts.Config.Redis.Addr == "" {
		log.Info("REDIS_ADDR not set, using in-memory cache")
		return NewMemory(DefaultSize)
	}

	client := redis.NewClient(&redis.Options{
		Addr:         opts.Config.Redis.Addr,
		Password:     opts.Config.Redis.Password,
		DB:           opts.Config.Redis.DB,
		DialTimeout:  3 * time.Second,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 2 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		log.Warn("Redis unreachable, falling back to in-memory cache", "addr", opts.Config.Redis.Addr, "error", err)
		_ = client.Close()
		return NewMemory(DefaultSize)
	}

	opts.Lifecycle.Append(fx.Hook{
		OnStop: func(context.Context) error {
			return client.Close()
		},
	})

	log.Info("Connected to redis", "addr", opts.Config.Redis.Addr)
	return NewRedis(client, keyPrefix), nil
}

var FxOption = fx.Provide(New)
