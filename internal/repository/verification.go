package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/lukashondrich/open-workinghours-sub004/internal/models"
	"github.com/lukashondrich/open-workinghours-sub004/internal/service"
)

// VerificationStore хранит состояние поэтапной проверки выхода в Redis.
// Redis переживает перезапуск процесса, поэтому пробуждение после
// холодного рестарта находит то же состояние, что и до падения.
type VerificationStore struct {
	redisClient *redis.Client
}

func NewVerificationStore(redisClient *redis.Client) service.VerificationStore {
	return &VerificationStore{redisClient: redisClient}
}

func verificationKey(locationID uuid.UUID) string {
	return fmt.Sprintf("verification:%s", locationID.String())
}

// Save сохраняет состояние проверки. Ключ - локация: на локацию может
// быть не больше одной открытой сессии, а значит и одной проверки.
func (s *VerificationStore) Save(ctx context.Context, state *models.VerificationState) error {
	val, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("failed to marshal verification state: %w", err)
	}
	if err := s.redisClient.Set(ctx, verificationKey(state.LocationID), val, 0).Err(); err != nil {
		return fmt.Errorf("failed to save verification state: %w", err)
	}
	return nil
}

// Get возвращает состояние проверки для локации или (nil, nil),
// если проверка не запущена
func (s *VerificationStore) Get(ctx context.Context, locationID uuid.UUID) (*models.VerificationState, error) {
	val, err := s.redisClient.Get(ctx, verificationKey(locationID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get verification state: %w", err)
	}

	state := &models.VerificationState{}
	if err := json.Unmarshal(val, state); err != nil {
		return nil, fmt.Errorf("failed to unmarshal verification state: %w", err)
	}
	return state, nil
}

// Delete удаляет состояние проверки. Удаление отсутствующего ключа - no-op.
func (s *VerificationStore) Delete(ctx context.Context, locationID uuid.UUID) error {
	if err := s.redisClient.Del(ctx, verificationKey(locationID)).Err(); err != nil {
		return fmt.Errorf("failed to delete verification state: %w", err)
	}
	return nil
}
