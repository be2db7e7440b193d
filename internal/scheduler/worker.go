package scheduler

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/lukashondrich/open-workinghours-sub004/internal/config"
)

// DispatchFunc вызывается для каждого созревшего задания.
// Ошибки обработчика логируются, но не роняют воркер: необработанное
// пробуждение подберёт выверка.
type DispatchFunc func(ctx context.Context, id string, payload []byte) error

// Worker опрашивает sorted set и выполняет созревшие задания.
type Worker struct {
	redisClient *redis.Client
	logger      *logrus.Logger
	cfg         *config.Config
	dispatch    DispatchFunc
}

func NewWorker(redisClient *redis.Client, logger *logrus.Logger, cfg *config.Config, dispatch DispatchFunc) *Worker {
	return &Worker{
		redisClient: redisClient,
		logger:      logger,
		cfg:         cfg,
		dispatch:    dispatch,
	}
}

// Start запускает горутину опроса планировщика
func (w *Worker) Start(ctx context.Context) {
	w.logger.Info("Starting scheduler worker...")
	go func() {
		ticker := time.NewTicker(w.cfg.SchedulerPollInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				w.logger.Info("Stopping scheduler worker.")
				return
			case <-ticker.C:
				w.runDue(ctx)
			}
		}
	}()
}

// runDue извлекает и выполняет все задания, чьё время наступило
func (w *Worker) runDue(ctx context.Context) {
	now := strconv.FormatInt(time.Now().UnixMilli(), 10)
	ids, err := w.redisClient.ZRangeByScore(ctx, dueSetKey, &redis.ZRangeBy{
		Min: "-inf",
		Max: now,
	}).Result()
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return
		}
		w.logger.WithError(err).Error("Failed to poll scheduled tasks from Redis")
		return
	}

	for _, id := range ids {
		// ZRem до выполнения: если два воркера опрашивают одновременно,
		// задание достаётся тому, кто успел удалить член
		removed, err := w.redisClient.ZRem(ctx, dueSetKey, id).Result()
		if err != nil {
			w.logger.WithError(err).WithField("task_id", id).Error("Failed to claim scheduled task")
			continue
		}
		if removed == 0 {
			continue
		}

		payload, err := w.redisClient.HGet(ctx, payloadHashKey, id).Bytes()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				// Отмена успела удалить нагрузку: задание снято
				continue
			}
			w.logger.WithError(err).WithField("task_id", id).Error("Failed to load task payload")
			continue
		}
		if err := w.redisClient.HDel(ctx, payloadHashKey, id).Err(); err != nil {
			w.logger.WithError(err).WithField("task_id", id).Warn("Failed to delete task payload")
		}

		// Обработчик вызывается из OS-подобного колбэка: любые ошибки
		// гасим логом, а не паникой или пробросом
		if err := w.dispatch(ctx, id, payload); err != nil {
			w.logger.WithError(err).WithField("task_id", id).Error("Scheduled task dispatch failed")
		}
	}
}
