package position

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/lukashondrich/open-workinghours-sub004/internal/models"
	"github.com/lukashondrich/open-workinghours-sub004/internal/service"
)

const lastPositionKey = "position:last"

// RedisPositionReader - серверная замена getCurrentPosition: устройства
// периодически присылают свои показания, самое свежее лежит в Redis.
// Чтение показания старше таймаута эквивалентно таймауту сенсора.
type RedisPositionReader struct {
	redisClient *redis.Client
}

func NewRedisPositionReader(client *redis.Client) *RedisPositionReader {
	return &RedisPositionReader{redisClient: client}
}

// Report сохраняет присланное устройством показание позиции
func (r *RedisPositionReader) Report(ctx context.Context, p *models.Position) error {
	if p.Timestamp.IsZero() {
		p.Timestamp = time.Now()
	}
	val, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("failed to marshal position: %w", err)
	}
	if err := r.redisClient.Set(ctx, lastPositionKey, val, 0).Err(); err != nil {
		return fmt.Errorf("failed to store position: %w", err)
	}
	return nil
}

// CurrentPosition возвращает последнее показание, если оно моложе maxAge.
// Отсутствующее или протухшее показание - ErrPositionUnavailable.
func (r *RedisPositionReader) CurrentPosition(ctx context.Context, maxAge time.Duration) (*models.Position, error) {
	val, err := r.redisClient.Get(ctx, lastPositionKey).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, service.ErrPositionUnavailable
		}
		return nil, fmt.Errorf("failed to read position: %w", err)
	}

	p := &models.Position{}
	if err := json.Unmarshal(val, p); err != nil {
		return nil, fmt.Errorf("failed to unmarshal position: %w", err)
	}
	if time.Since(p.Timestamp) > maxAge {
		return nil, service.ErrPositionUnavailable
	}
	return p, nil
}
