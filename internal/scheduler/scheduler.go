package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	dueSetKey      = "scheduler:due"
	payloadHashKey = "scheduler:payloads"
)

// RedisScheduler - долговечный планировщик отложенных пробуждений.
// Задание - это член sorted set со score = unix-время срабатывания и
// полезной нагрузкой в соседнем hash. И то и другое переживает
// перезапуск процесса, поэтому проверка, запланированная до падения,
// всё равно сработает после рестарта.
type RedisScheduler struct {
	redisClient *redis.Client
}

func NewRedisScheduler(client *redis.Client) *RedisScheduler {
	return &RedisScheduler{redisClient: client}
}

// Schedule ставит задание на срабатывание через delay.
// Повторная постановка с тем же id перезаписывает время и нагрузку.
func (s *RedisScheduler) Schedule(ctx context.Context, id string, delay time.Duration, payload []byte) error {
	due := time.Now().Add(delay)
	pipe := s.redisClient.TxPipeline()
	pipe.ZAdd(ctx, dueSetKey, redis.Z{Score: float64(due.UnixMilli()), Member: id})
	pipe.HSet(ctx, payloadHashKey, id, payload)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to schedule task %s: %w", id, err)
	}
	return nil
}

// Cancel снимает задание. Отмена несуществующего задания - no-op:
// гонка между отменой и срабатыванием разрешается идемпотентностью
// обработчика.
func (s *RedisScheduler) Cancel(ctx context.Context, id string) error {
	pipe := s.redisClient.TxPipeline()
	pipe.ZRem(ctx, dueSetKey, id)
	pipe.HDel(ctx, payloadHashKey, id)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to cancel task %s: %w", id, err)
	}
	return nil
}
