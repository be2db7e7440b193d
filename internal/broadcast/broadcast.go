package broadcast

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const trackingChangedChannel = "tracking.changed"

// Виды изменений сессии
const (
	ChangeClockIn       = "clock_in"
	ChangeClockOut      = "clock_out"
	ChangePendingExit   = "pending_exit"
	ChangeResumed       = "resumed"
	ChangeManualCreated = "manual_created"
	ChangeManualUpdated = "manual_updated"
	ChangeManualDeleted = "manual_deleted"
	ChangeReconciled    = "reconciled"
)

// Event - полезная нагрузка широковещательного сообщения tracking-changed.
// Слушатели (календарь/UI) используют его как сигнал перечитать состояние.
type Event struct {
	LocationID uuid.UUID `json:"location_id"`
	SessionID  uuid.UUID `json:"session_id"`
	Change     string    `json:"change"`
	State      string    `json:"state"`
	Timestamp  time.Time `json:"timestamp"`
}

// Broadcaster - интерфейс fire-and-forget оповещения об изменении сессий
type Broadcaster interface {
	TrackingChanged(ctx context.Context, event Event) error
}

// RedisBroadcaster публикует изменения в Pub/Sub канал Redis.
// Pub/Sub, а не очередь: слушатели эфемерны, пропущенное сообщение
// ничего не ломает - состояние всегда можно перечитать из бд.
type RedisBroadcaster struct {
	redisClient *redis.Client
}

func NewRedisBroadcaster(client *redis.Client) *RedisBroadcaster {
	return &RedisBroadcaster{redisClient: client}
}

// TrackingChanged публикует событие изменения сессии
func (b *RedisBroadcaster) TrackingChanged(ctx context.Context, event Event) error {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal tracking-changed event: %w", err)
	}
	if err := b.redisClient.Publish(ctx, trackingChangedChannel, payload).Err(); err != nil {
		return fmt.Errorf("failed to publish tracking-changed event: %w", err)
	}
	return nil
}
