// Package redisstate keeps the volatile per-room state in Redis: presence
// sets, last-activity timestamps and rate-limit counters.
package redisstate

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"
)

// Presence keys expire on their own so a crashed server does not leave
// ghosts behind forever; the hub refreshes them while clients are connected.
const presenceTTL = 24 * time.Hour

// RedisStateRepository implements repository.StateRepository.
type RedisStateRepository struct {
	client    *redis.Client
	keyPrefix string
}

func NewRedisStateRepository(client *redis.Client, keyPrefix string) *RedisStateRepository {
	if client == nil {
		panic("redis client cannot be nil for RedisStateRepository")
	}
	if keyPrefix == "" {
		keyPrefix = "collab:"
	}
	return &RedisStateRepository{client: client, keyPrefix: keyPrefix}
}

func (r *RedisStateRepository) presenceKey(roomID uint) string {
	return fmt.Sprintf("%sroom:%d:presence", r.keyPrefix, roomID)
}

func (r *RedisStateRepository) activityKey() string {
	return r.keyPrefix + "rooms:last_active"
}

func (r *RedisStateRepository) AddPresence(ctx context.Context, roomID, userID uint) error {
	key := r.presenceKey(roomID)
	pipe := r.client.Pipeline()
	pipe.SAdd(ctx, key, userID)
	pipe.Expire(ctx, key, presenceTTL)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis: add presence (room %d, user %d): %w", roomID, userID, err)
	}
	return nil
}

func (r *RedisStateRepository) RemovePresence(ctx context.Context, roomID, userID uint) error {
	if err := r.client.SRem(ctx, r.presenceKey(roomID), userID).Err(); err != nil {
		return fmt.Errorf("redis: remove presence (room %d, user %d): %w", roomID, userID, err)
	}
	return nil
}

func (r *RedisStateRepository) PresentUserIDs(ctx context.Context, roomID uint) ([]uint, error) {
	members, err := r.client.SMembers(ctx, r.presenceKey(roomID)).Result()
	if err != nil {
		return nil, fmt.Errorf("redis: presence members for room %d: %w", roomID, err)
	}
	ids := make([]uint, 0, len(members))
	for _, m := range members {
		id, parseErr := strconv.ParseUint(m, 10, 64)
		if parseErr != nil {
			logrus.WithField("member", m).Warn("Skipping unparsable presence entry")
			continue
		}
		ids = append(ids, uint(id))
	}
	return ids, nil
}

func (r *RedisStateRepository) ClearPresence(ctx context.Context, roomID uint) error {
	if err := r.client.Del(ctx, r.presenceKey(roomID)).Err(); err != nil {
		return fmt.Errorf("redis: clear presence for room %d: %w", roomID, err)
	}
	return nil
}

func (r *RedisStateRepository) TouchRoomActivity(ctx context.Context, roomID uint) error {
	score := float64(time.Now().Unix())
	err := r.client.ZAdd(ctx, r.activityKey(), &redis.Z{Score: score, Member: roomID}).Err()
	if err != nil {
		return fmt.Errorf("redis: touch activity for room %d: %w", roomID, err)
	}
	return nil
}

func (r *RedisStateRepository) LastRoomActivity(ctx context.Context, roomID uint) (time.Time, error) {
	score, err := r.client.ZScore(ctx, r.activityKey(), strconv.FormatUint(uint64(roomID), 10)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return time.Time{}, nil
		}
		return time.Time{}, fmt.Errorf("redis: last activity for room %d: %w", roomID, err)
	}
	return time.Unix(int64(score), 0), nil
}

func (r *RedisStateRepository) ActiveRoomIDs(ctx context.Context) ([]uint, error) {
	members, err := r.client.ZRange(ctx, r.activityKey(), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("redis: list active rooms: %w", err)
	}
	ids := make([]uint, 0, len(members))
	for _, m := range members {
		id, parseErr := strconv.ParseUint(m, 10, 64)
		if parseErr != nil {
			continue
		}
		ids = append(ids, uint(id))
	}
	return ids, nil
}

func (r *RedisStateRepository) ClearRoomActivity(ctx context.Context, roomID uint) error {
	err := r.client.ZRem(ctx, r.activityKey(), strconv.FormatUint(uint64(roomID), 10)).Err()
	if err != nil {
		return fmt.Errorf("redis: clear activity for room %d: %w", roomID, err)
	}
	return nil
}

func (r *RedisStateRepository) CheckRateLimit(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	pipe := r.client.Pipeline()
	incrCmd := pipe.Incr(ctx, key)
	pipe.Expire(ctx, key, window)
	if _, err := pipe.Exec(ctx); err != nil {
		return false, fmt.Errorf("redis: rate limit pipeline for %s: %w", key, err)
	}
	count, err := incrCmd.Result()
	if err != nil {
		return false, fmt.Errorf("redis: rate limit count for %s: %w", key, err)
	}
	return count > int64(limit), nil
}
