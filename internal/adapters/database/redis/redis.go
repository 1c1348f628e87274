package redis

import (
	"context"
	"fmt"

	"github.com/bcplughub/backend/internal/adapters/database/redis/goated"
	"github.com/bcplughub/backend/internal/adapters/database/redis/insights"
	"github.com/redis/go-redis/v9"
)

type Client struct {
	Insights *insights.Storage
	Goated   *goated.Storage
}

type Options struct {
	Host     string
	Port     string
	Password string
}

func New(opts Options) (*Client, error) {
	insightsStorage := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%s", opts.Host, opts.Port),
		Password: opts.Password,
		DB:       0,
	})
	if err := insightsStorage.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("failed to ping insights storage: %w", err)
	}

	goatedStorage := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%s", opts.Host, opts.Port),
		Password: opts.Password,
		DB:       1,
	})
	if err := goatedStorage.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("failed to ping goated storage: %w", err)
	}

	return &Client{
		Insights: insights.NewStorage(insightsStorage),
		Goated:   goated.NewStorage(goatedStorage),
	}, nil
}
