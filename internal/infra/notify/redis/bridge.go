// Package redisnotify implements the change-notification bridge on Redis
// pub/sub. Each room gets one channel per record kind; payloads are the full
// changed record serialized as JSON.
package redisnotify

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"

	"github.com/Divyagaur16/codehuddle-collabspace/internal/domain"
	"github.com/Divyagaur16/codehuddle-collabspace/internal/repository"
)

// RedisChangeBridge implements ChangePublisher and ChangeSubscriber.
type RedisChangeBridge struct {
	client    *redis.Client
	keyPrefix string
}

func NewRedisChangeBridge(client *redis.Client, keyPrefix string) *RedisChangeBridge {
	if client == nil {
		panic("redis client cannot be nil for RedisChangeBridge")
	}
	if keyPrefix == "" {
		keyPrefix = "collab:"
	}
	return &RedisChangeBridge{client: client, keyPrefix: keyPrefix}
}

func (b *RedisChangeBridge) channel(roomID uint, kind domain.EventKind) string {
	return fmt.Sprintf("%sroom:%d:%s", b.keyPrefix, roomID, kind)
}

func (b *RedisChangeBridge) publish(ctx context.Context, ev domain.ChangeEvent) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("redis: marshal change event for room %d: %w", ev.RoomID, err)
	}
	ch := b.channel(ev.RoomID, ev.Kind)
	if err := b.client.Publish(ctx, ch, payload).Err(); err != nil {
		logrus.WithFields(logrus.Fields{
			"channel":      ch,
			"room_id":      ev.RoomID,
			"payload_size": len(payload),
		}).WithError(err).Error("Redis publish failed")
		return fmt.Errorf("redis: publish to %s: %w", ch, err)
	}
	return nil
}

func (b *RedisChangeBridge) PublishMessageInserted(ctx context.Context, msg domain.Message) error {
	return b.publish(ctx, domain.ChangeEvent{Kind: domain.EventMessages, RoomID: msg.RoomID, Message: &msg})
}

func (b *RedisChangeBridge) PublishCodeFileUpdated(ctx context.Context, f domain.CodeFile) error {
	return b.publish(ctx, domain.ChangeEvent{Kind: domain.EventCode, RoomID: f.RoomID, CodeFile: &f})
}

func (b *RedisChangeBridge) PublishRunCompleted(ctx context.Context, res domain.RunResult) error {
	return b.publish(ctx, domain.ChangeEvent{Kind: domain.EventRuns, RoomID: res.RoomID, RunResult: &res})
}

// Subscribe opens the pub/sub channel for (roomID, kind) and pumps decoded
// events until Unsubscribe is called or the transport drops the feed.
func (b *RedisChangeBridge) Subscribe(ctx context.Context, roomID uint, kind domain.EventKind) (repository.Subscription, error) {
	ch := b.channel(roomID, kind)
	ps := b.client.Subscribe(ctx, ch)
	// Receive confirms the SUBSCRIBE round trip so a broken connection
	// fails here instead of silently delivering nothing.
	if _, err := ps.Receive(ctx); err != nil {
		_ = ps.Close()
		return nil, fmt.Errorf("redis: subscribe to %s: %w", ch, err)
	}

	sub := &redisSubscription{
		ps:     ps,
		events: make(chan domain.ChangeEvent, 64),
	}
	go sub.pump(ch)
	return sub, nil
}

type redisSubscription struct {
	ps     *redis.PubSub
	events chan domain.ChangeEvent
	once   sync.Once
}

func (s *redisSubscription) pump(channelName string) {
	defer close(s.events)
	logCtx := logrus.WithField("channel", channelName)
	for msg := range s.ps.Channel() {
		var ev domain.ChangeEvent
		if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
			logCtx.WithError(err).Warn("Dropping undecodable change event")
			continue
		}
		select {
		case s.events <- ev:
		default:
			// Slow consumer; dropping is acceptable because consumers
			// rehydrate from the store on (re)entry, not from the feed.
			logCtx.Warn("Subscription buffer full, dropping change event")
		}
	}
}

func (s *redisSubscription) Events() <-chan domain.ChangeEvent { return s.events }

// Unsubscribe closes the pub/sub feed. Safe to call any number of times.
func (s *redisSubscription) Unsubscribe() {
	s.once.Do(func() {
		if err := s.ps.Close(); err != nil {
			logrus.WithError(err).Debug("Closing pub/sub subscription")
		}
	})
}
