// Package leaderboard mirrors fighter ratings into a Redis sorted set
// so rankings survive restarts even though session state does not.
package leaderboard

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

const ratingKey = "leaderboard:rating"

// Board wraps a Redis client. A nil Board is valid and disables
// mirroring, matching the storage package's nil-safe convention.
type Board struct {
	rdb *redis.Client
}

// New connects to Redis at addr and verifies the connection.
func New(ctx context.Context, addr string) (*Board, error) {
	rdb := redis.NewClient(&redis.Options{Addr: addr})
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("connect to redis: %w", err)
	}
	return &Board{rdb: rdb}, nil
}

// Entry is one leaderboard row.
type Entry struct {
	Name   string
	Rating int
}

// SetRating records a fighter's current rating.
func (b *Board) SetRating(ctx context.Context, name string, rating int) error {
	if b == nil {
		return nil
	}
	return b.rdb.ZAdd(ctx, ratingKey, redis.Z{Score: float64(rating), Member: name}).Err()
}

// Top returns the highest-rated fighters, best first.
func (b *Board) Top(ctx context.Context, limit int64) ([]Entry, error) {
	if b == nil {
		return nil, nil
	}
	rows, err := b.rdb.ZRevRangeWithScores(ctx, ratingKey, 0, limit-1).Result()
	if err != nil {
		return nil, err
	}
	entries := make([]Entry, 0, len(rows))
	for _, z := range rows {
		name, _ := z.Member.(string)
		entries = append(entries, Entry{Name: name, Rating: int(z.Score)})
	}
	return entries, nil
}

// Close releases the Redis connection.
func (b *Board) Close() error {
	if b == nil {
		return nil
	}
	return b.rdb.Close()
}
