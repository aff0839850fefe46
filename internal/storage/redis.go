package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	redis "github.com/redis/go-redis/v9"
)

const (
	redisRunPrefix = "pizza-teams:run:"
	redisIndexKey  = "pizza-teams:runs"
)

// RedisStorage stores runs as JSON documents in Redis. Runs expire after ttl
// and the index of recent runs is capped at maxRuns entries.
type RedisStorage struct {
	rdb     *redis.Client
	ttl     time.Duration
	maxRuns int
}

// NewRedisStorage connects to the Redis server at url (redis://...) and verifies the connection.
func NewRedisStorage(ctx context.Context, url string, ttl time.Duration, maxRuns int) (*RedisStorage, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	rdb := redis.NewClient(opt)
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	if maxRuns <= 0 {
		maxRuns = defaultMaxRuns
	}
	return &RedisStorage{rdb: rdb, ttl: ttl, maxRuns: maxRuns}, nil
}

func (s *RedisStorage) SaveRun(ctx context.Context, run Run) error {
	if run.ID == "" {
		return ErrInvalidRun
	}
	data, err := json.Marshal(run)
	if err != nil {
		return fmt.Errorf("encode run: %w", err)
	}

	pipe := s.rdb.TxPipeline()
	pipe.Set(ctx, redisRunPrefix+run.ID, data, s.ttl)
	pipe.LRem(ctx, redisIndexKey, 0, run.ID)
	pipe.LPush(ctx, redisIndexKey, run.ID)
	pipe.LTrim(ctx, redisIndexKey, 0, int64(s.maxRuns-1))
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("store run: %w", err)
	}
	return nil
}

func (s *RedisStorage) GetRun(ctx context.Context, id string) (Run, error) {
	data, err := s.rdb.Get(ctx, redisRunPrefix+id).Bytes()
	if errors.Is(err, redis.Nil) {
		return Run{}, ErrNotFound
	}
	if err != nil {
		return Run{}, fmt.Errorf("load run: %w", err)
	}

	var run Run
	if err := json.Unmarshal(data, &run); err != nil {
		return Run{}, fmt.Errorf("decode run: %w", err)
	}
	return run, nil
}

// ListRuns skips ids whose documents have already expired.
func (s *RedisStorage) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	stop := int64(-1)
	if limit > 0 {
		stop = int64(limit - 1)
	}
	ids, err := s.rdb.LRange(ctx, redisIndexKey, 0, stop).Result()
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}

	runs := make([]Run, 0, len(ids))
	for _, id := range ids {
		run, err := s.GetRun(ctx, id)
		if errors.Is(err, ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, nil
}

// Close releases the Redis connection pool.
func (s *RedisStorage) Close() error {
	return s.rdb.Close()
}
