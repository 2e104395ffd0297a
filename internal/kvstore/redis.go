package kvstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "cfg:"

func InitRedis(addr string, password string, db int) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx := context.Background()
	_, err := rdb.Ping(ctx).Result()
	if err != nil {
		return nil, err
	}

	return rdb, nil
}

// RedisStore maps every config key onto one Redis string key. Batches run
// inside MULTI/EXEC so readers never observe half a batch.
type RedisStore struct {
	rdb *redis.Client
}

func NewRedisStore(rdb *redis.Client) *RedisStore {
	return &RedisStore{rdb: rdb}
}

func (s *RedisStore) ReadValue(ctx context.Context, key string, dst any) (bool, error) {
	raw, err := s.rdb.Get(ctx, redisKeyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("redis get %q: %w", key, err)
	}
	return decodeInto(key, raw, dst)
}

func (s *RedisStore) ReadValues(ctx context.Context, keys []string) (map[string]json.RawMessage, error) {
	out := make(map[string]json.RawMessage, len(keys))
	if len(keys) == 0 {
		return out, nil
	}

	prefixed := make([]string, len(keys))
	for i, k := range keys {
		prefixed[i] = redisKeyPrefix + k
	}
	vals, err := s.rdb.MGet(ctx, prefixed...).Result()
	if err != nil {
		return nil, fmt.Errorf("redis mget: %w", err)
	}
	for i, v := range vals {
		str, ok := v.(string)
		if !ok || str == "" || str == "null" {
			continue
		}
		out[keys[i]] = json.RawMessage(str)
	}
	return out, nil
}

func (s *RedisStore) UpsertItems(ctx context.Context, items []Item) error {
	encoded, err := encodeItems(items)
	if err != nil {
		return err
	}

	_, err = s.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for i, item := range items {
			if item.op() == OpDelete {
				pipe.Del(ctx, redisKeyPrefix+item.Key)
				continue
			}
			pipe.Set(ctx, redisKeyPrefix+item.Key, encoded[i], 0)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis write batch: %w", err)
	}
	return nil
}
