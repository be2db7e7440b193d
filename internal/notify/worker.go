package notify

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/lukashondrich/open-workinghours-sub004/internal/config"
)

// Worker - структура для обработки и доставки уведомлений
type Worker struct {
	redisClient *redis.Client
	logger      *logrus.Logger
	cfg         *config.Config
	httpClient  *http.Client
}

// NewWorker создает новый Worker доставки уведомлений
func NewWorker(redisClient *redis.Client, logger *logrus.Logger, cfg *config.Config) *Worker {
	return &Worker{
		redisClient: redisClient,
		logger:      logger,
		cfg:         cfg,
		httpClient: &http.Client{
			Timeout: cfg.NotifyTimeout,
		},
	}
}

// Start запускает горутину для обработки очереди уведомлений
func (w *Worker) Start(ctx context.Context) {
	w.logger.Info("Starting notification worker...")
	go func() {
		for {
			select {
			case <-ctx.Done():
				w.logger.Info("Stopping notification worker.")
				return
			default:
				// BRPOP - блокирующее извлечение из правой части списка (очереди)
				// 0 означает бесконечное ожидание
				result, err := w.redisClient.BRPop(ctx, 0, notifyQueueKey).Result()
				if err != nil {
					if errors.Is(err, context.Canceled) {
						continue // Контекст отменен, но не ошибка Redis
					}
					w.logger.WithError(err).Error("Failed to pop notification from Redis")
					time.Sleep(w.cfg.NotifyTimeout) // Ждем перед повторной попыткой
					continue
				}

				// result[0] - ключ, result[1] - значение
				payload := result[1]
				var n Notification
				if err := json.Unmarshal([]byte(payload), &n); err != nil {
					w.logger.WithError(err).Error("Failed to unmarshal notification from Redis")
					continue
				}

				w.deliver(ctx, n, payload)
			}
		}
	}()
}

// deliver доставляет уведомление на настроенный endpoint.
// Провал доставки не критичен: логируем и бросаем.
func (w *Worker) deliver(ctx context.Context, n Notification, rawPayload string) {
	log := w.logger.WithField("notification_title", n.Title)
	log.Debug("Delivering notification...")

	if w.cfg.NotifyURL == "" {
		log.Warn("Notification URL is not configured. Skipping delivery.")
		return
	}

	maxRetries := w.cfg.NotifyMaxRetries
	baseDelay := w.cfg.NotifyBaseDelay

	for i := 0; i < maxRetries; i++ {
		req, err := http.NewRequestWithContext(ctx, "POST", w.cfg.NotifyURL, bytes.NewBufferString(rawPayload))
		if err != nil {
			log.WithError(err).Errorf("Failed to create notification request. Retries left: %d", maxRetries-1-i)
			continue
		}

		req.Header.Set("Content-Type", "application/json")

		// Добавляем HMAC подпись, если NOTIFY_SECRET задан
		if w.cfg.NotifySecret != "" {
			signature := generateHMACSHA256(rawPayload, w.cfg.NotifySecret)
			req.Header.Set("X-Notification-Signature", signature)
		}

		resp, err := w.httpClient.Do(req)
		if err != nil {
			log.WithError(err).Warnf("Failed to send notification. Retrying in %v. Retries left: %d", baseDelay, maxRetries-1-i)
			time.Sleep(baseDelay)
			baseDelay *= 2 // Экспоненциальная задержка
			continue
		}
		resp.Body.Close()

		if resp.StatusCode >= 200 && resp.StatusCode < 300 {
			log.Info("Notification delivered successfully.")
			return
		}
		log.Warnf("Notification delivery failed with status code %d. Retrying in %v. Retries left: %d", resp.StatusCode, baseDelay, maxRetries-1-i)
		time.Sleep(baseDelay)
		baseDelay *= 2 // Экспоненциальная задержка
	}

	log.Errorf("Failed to deliver notification after %d retries.", maxRetries)
}

// generateHMACSHA256 генерирует HMAC-SHA256 подпись для данных
func generateHMACSHA256(data, secret string) string {
	h := hmac.New(sha256.New, []byte(secret))
	h.Write([]byte(data))
	return hex.EncodeToString(h.Sum(nil))
}
