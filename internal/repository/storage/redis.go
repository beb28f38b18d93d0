package storage

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// New - opens a Redis client and checks the connection.
func New(ctx context.Context, addr string, db int) (*redis.Client, error) {
	conn := redis.NewClient(&redis.Options{
		Addr: addr,
		DB:   db,
	})

	if err := conn.Ping(ctx).Err(); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return conn, nil
}
