package geofence

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/lukashondrich/open-workinghours-sub004/internal/models"
)

const (
	regionsHashKey     = "geofence:regions"
	regionsSyncChannel = "geofence.regions"
)

// RegionMonitor - обёртка над мониторингом регионов на устройствах.
// Устройства подписаны на канал синхронизации и держат у себя
// актуальный набор регионов; сигналы enter/exit они доставляют
// асинхронно через API независимо от времени регистрации.
type RegionMonitor interface {
	Register(ctx context.Context, loc *models.WorkLocation) error
	Unregister(ctx context.Context, locationID uuid.UUID) error
}

// RedisRegionMonitor держит текущий набор регионов в hash Redis и
// оповещает устройства о каждом изменении через Pub/Sub
type RedisRegionMonitor struct {
	redisClient *redis.Client
}

func NewRedisRegionMonitor(client *redis.Client) *RedisRegionMonitor {
	return &RedisRegionMonitor{redisClient: client}
}

// Register публикует регион для мониторинга. Повторная регистрация
// того же региона безопасна - именно так работает перерегистрация
// после холодного старта.
func (m *RedisRegionMonitor) Register(ctx context.Context, loc *models.WorkLocation) error {
	val, err := json.Marshal(loc)
	if err != nil {
		return fmt.Errorf("failed to marshal region: %w", err)
	}
	if err := m.redisClient.HSet(ctx, regionsHashKey, loc.ID.String(), val).Err(); err != nil {
		return fmt.Errorf("failed to register region %s: %w", loc.ID, err)
	}
	if err := m.redisClient.Publish(ctx, regionsSyncChannel, val).Err(); err != nil {
		return fmt.Errorf("failed to announce region %s: %w", loc.ID, err)
	}
	return nil
}

// Unregister снимает регион с мониторинга
func (m *RedisRegionMonitor) Unregister(ctx context.Context, locationID uuid.UUID) error {
	if err := m.redisClient.HDel(ctx, regionsHashKey, locationID.String()).Err(); err != nil {
		return fmt.Errorf("failed to unregister region %s: %w", locationID, err)
	}
	if err := m.redisClient.Publish(ctx, regionsSyncChannel, locationID.String()).Err(); err != nil {
		return fmt.Errorf("failed to announce removal of region %s: %w", locationID, err)
	}
	return nil
}
