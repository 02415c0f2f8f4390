package realtime

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"jobboard_chat/pkg/logger"
)

// RedisNotifier рассылает уведомления через Redis pub/sub, чтобы их видели все инстансы сервиса
type RedisNotifier struct {
	rdb *redis.Client
	log logger.Logger
}

func NewRedisNotifier(rdb *redis.Client, log logger.Logger) *RedisNotifier {
	return &RedisNotifier{rdb: rdb, log: log}
}

func (n *RedisNotifier) Publish(ctx context.Context, topic string) error {
	payload := strconv.FormatInt(time.Now().UnixNano(), 10)
	if err := n.rdb.Publish(ctx, topic, payload).Err(); err != nil {
		n.log.Error("Failed to publish change notification", "topic", topic, "error", err)
		return fmt.Errorf("failed to publish: %w", err)
	}
	return nil
}

func (n *RedisNotifier) Subscribe(ctx context.Context, topics ...string) (Feed, error) {
	pubsub := n.rdb.Subscribe(ctx, topics...)

	// Ждем подтверждения подписки, иначе можно пропустить изменения между снапшотом и подпиской
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		n.log.Error("Failed to subscribe", "topics", topics, "error", err)
		return nil, fmt.Errorf("failed to subscribe: %w", err)
	}

	feed := &redisFeed{
		pubsub: pubsub,
		ch:     make(chan string, defaultFeedBuffer),
	}
	go feed.forward()

	return feed, nil
}

// Close ничего не делает: клиентом Redis владеет main
func (n *RedisNotifier) Close() error {
	return nil
}

type redisFeed struct {
	pubsub *redis.PubSub
	ch     chan string
}

func (f *redisFeed) forward() {
	defer close(f.ch)
	for msg := range f.pubsub.Channel() {
		select {
		case f.ch <- msg.Channel:
		default:
		}
	}
}

func (f *redisFeed) C() <-chan string {
	return f.ch
}

func (f *redisFeed) Close() error {
	return f.pubsub.Close()
}
