package sessions

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "session:"

// RedisStore backs sessions with redis; TTLs are native key expiry.
type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func key(sessionID string) string {
	return keyPrefix + sessionID
}

func (s *RedisStore) Create(ctx context.Context, sessionID string, data Data, ttl time.Duration) error {
	raw, err := json.Marshal(data)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, key(sessionID), raw, ttl).Err()
}

func (s *RedisStore) Get(ctx context.Context, sessionID string) (Data, error) {
	raw, err := s.client.Get(ctx, key(sessionID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	var data Data
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, err
	}
	return data, nil
}

func (s *RedisStore) Update(ctx context.Context, sessionID string, data Data, ttl time.Duration, preserveTTL bool) error {
	raw, err := json.Marshal(data)
	if err != nil {
		return err
	}
	k := key(sessionID)
	if preserveTTL {
		ok, err := s.client.SetXX(ctx, k, raw, redis.KeepTTL).Result()
		if err != nil {
			return err
		}
		if !ok {
			return ErrNotFound
		}
		return nil
	}
	ok, err := s.client.SetXX(ctx, k, raw, ttl).Result()
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotFound
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, sessionID string) error {
	return s.client.Del(ctx, key(sessionID)).Err()
}

func (s *RedisStore) Exists(ctx context.Context, sessionID string) (bool, error) {
	n, err := s.client.Exists(ctx, key(sessionID)).Result()
	return n > 0, err
}

func (s *RedisStore) TTL(ctx context.Context, sessionID string) (time.Duration, error) {
	d, err := s.client.TTL(ctx, key(sessionID)).Result()
	if err != nil {
		return 0, err
	}
	if d < 0 {
		return 0, ErrNotFound
	}
	return d, nil
}

func (s *RedisStore) Extend(ctx context.Context, sessionID string, ttl time.Duration) error {
	ok, err := s.client.Expire(ctx, key(sessionID), ttl).Result()
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotFound
	}
	return nil
}

// VerifyCode runs an optimistic WATCH transaction so that two concurrent
// verifications of the same session cannot both succeed.
func (s *RedisStore) VerifyCode(ctx context.Context, sessionID, code string) (Data, error) {
	k := key(sessionID)
	var result Data

	txn := func(tx *redis.Tx) error {
		raw, err := tx.Get(ctx, k).Bytes()
		if errors.Is(err, redis.Nil) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}

		var data Data
		if err := json.Unmarshal(raw, &data); err != nil {
			return err
		}
		if verified(data) {
			return ErrAlreadyVerified
		}
		if codeOf(data) != code {
			return ErrCodeMismatch
		}

		data[fieldVerified] = true
		updated, err := json.Marshal(data)
		if err != nil {
			return err
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, k, updated, redis.KeepTTL)
			return nil
		})
		if err != nil {
			return err
		}
		result = data
		return nil
	}

	for i := 0; i < 3; i++ {
		err := s.client.Watch(ctx, txn, k)
		if errors.Is(err, redis.TxFailedErr) {
			continue // key changed underneath, retry
		}
		if err != nil {
			return nil, err
		}
		return result, nil
	}
	return nil, redis.TxFailedErr
}
