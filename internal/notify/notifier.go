package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	notifyQueueKey = "notification_events"
)

// Notification - структура для данных уведомления пользователя
type Notification struct {
	Title     string            `json:"title"`
	Body      string            `json:"body"`
	Metadata  map[string]string `json:"metadata,omitempty"`
	Timestamp time.Time         `json:"timestamp"`
}

// Notifier - интерфейс для отправки уведомлений. Доставка best-effort:
// корректность трекинга от неё не зависит.
type Notifier interface {
	Send(ctx context.Context, n Notification) error
}

// RedisNotifyPublisher - реализация Notifier, использующая очередь Redis
type RedisNotifyPublisher struct {
	redisClient *redis.Client
}

// NewRedisNotifyPublisher создает новый RedisNotifyPublisher
func NewRedisNotifyPublisher(client *redis.Client) *RedisNotifyPublisher {
	return &RedisNotifyPublisher{
		redisClient: client,
	}
}

// Send публикует уведомление в очередь Redis
func (p *RedisNotifyPublisher) Send(ctx context.Context, n Notification) error {
	if n.Timestamp.IsZero() {
		n.Timestamp = time.Now()
	}
	payload, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("failed to marshal notification: %w", err)
	}

	// Используем LPUSH для добавления уведомления в левую часть списка (очереди)
	if err := p.redisClient.LPush(ctx, notifyQueueKey, payload).Err(); err != nil {
		return fmt.Errorf("failed to publish notification to Redis: %w", err)
	}
	return nil
}
