package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config - структура для хранения конфигурации приложения.
// Числовые константы трекинга подобраны эмпирически, поэтому все они
// вынесены в именованные поля с переопределением через окружение.
type Config struct {
	DatabaseURL string `env:"DATABASE_URL"`
	HTTPPort    string `env:"HTTP_PORT" envDefault:"8080"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat   string `env:"LOG_FORMAT" envDefault:"json"`

	// Redis Config
	RedisAddr string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPass string `env:"REDIS_PASSWORD"`
	RedisDB   int    `env:"REDIS_DB" envDefault:"0"`

	// Tracking Config - конвейер фильтрации событий
	EventCooldown         time.Duration `env:"TRACKING_EVENT_COOLDOWN" envDefault:"10s"`
	MaxExitAccuracy       float64       `env:"TRACKING_MAX_EXIT_ACCURACY_M" envDefault:"100"`
	DegradationFactor     float64       `env:"TRACKING_DEGRADATION_FACTOR" envDefault:"3"`
	ImmediateExitAccuracy float64       `env:"TRACKING_IMMEDIATE_EXIT_ACCURACY_M" envDefault:"50"`
	MinSessionDuration    time.Duration `env:"TRACKING_MIN_SESSION" envDefault:"5m"`

	// Tracking Config - гистерезис и выверка
	HysteresisWindow   time.Duration `env:"TRACKING_HYSTERESIS_WINDOW" envDefault:"5m"`
	StalePendingFactor int           `env:"TRACKING_STALE_PENDING_FACTOR" envDefault:"2"`

	// Verification Config - поэтапная проверка выхода
	CheckOffsets         []time.Duration `env:"VERIFICATION_CHECK_OFFSETS" envDefault:"1m,3m,5m"`
	PositionCheckTimeout time.Duration   `env:"VERIFICATION_POSITION_TIMEOUT" envDefault:"5s"`

	// Scheduler Config
	SchedulerPollInterval time.Duration `env:"SCHEDULER_POLL_INTERVAL" envDefault:"1s"`

	// Notification Config
	NotifyURL        string        `env:"NOTIFY_URL"`
	NotifySecret     string        `env:"NOTIFY_SECRET"`
	NotifyTimeout    time.Duration `env:"NOTIFY_TIMEOUT" envDefault:"5s"`
	NotifyMaxRetries int           `env:"NOTIFY_MAX_RETRIES" envDefault:"3"`
	NotifyBaseDelay  time.Duration `env:"NOTIFY_BASE_DELAY" envDefault:"1s"`

	// Stats Config
	StatsTimeWindowMinutes int `env:"STATS_TIME_WINDOW_MINUTES" envDefault:"1440"`

	// API Keys for authentication
	APIKeys []string `env:"API_KEYS"`
}

// StalePendingAge возвращает возраст, после которого незавершённый выход
// считается протухшим. Всегда строго больше окна гистерезиса.
func (c *Config) StalePendingAge() time.Duration {
	factor := c.StalePendingFactor
	if factor < 2 {
		factor = 2
	}
	return c.HysteresisWindow * time.Duration(factor)
}

// LoadConfig загружает конфигурацию из переменных окружения и .env файла
func LoadConfig() (*Config, error) {
	// Загрузка переменных окружения из .env файла (если есть)
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("ошибка загрузки файла .env: %w", err)
	}

	cfg := &Config{
		DatabaseURL: os.Getenv("DATABASE_URL"),
		HTTPPort:    getEnv("HTTP_PORT", "8080"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		LogFormat:   getEnv("LOG_FORMAT", "json"),
		RedisAddr:   getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPass:   os.Getenv("REDIS_PASSWORD"),
		RedisDB:     getEnvAsInt("REDIS_DB", 0),

		EventCooldown:         getEnvAsDuration("TRACKING_EVENT_COOLDOWN", 10*time.Second),
		MaxExitAccuracy:       getEnvAsFloat("TRACKING_MAX_EXIT_ACCURACY_M", 100),
		DegradationFactor:     getEnvAsFloat("TRACKING_DEGRADATION_FACTOR", 3),
		ImmediateExitAccuracy: getEnvAsFloat("TRACKING_IMMEDIATE_EXIT_ACCURACY_M", 50),
		MinSessionDuration:    getEnvAsDuration("TRACKING_MIN_SESSION", 5*time.Minute),

		HysteresisWindow:   getEnvAsDuration("TRACKING_HYSTERESIS_WINDOW", 5*time.Minute),
		StalePendingFactor: getEnvAsInt("TRACKING_STALE_PENDING_FACTOR", 2),

		CheckOffsets:         getEnvAsDurations("VERIFICATION_CHECK_OFFSETS", []time.Duration{1 * time.Minute, 3 * time.Minute, 5 * time.Minute}),
		PositionCheckTimeout: getEnvAsDuration("VERIFICATION_POSITION_TIMEOUT", 5*time.Second),

		SchedulerPollInterval: getEnvAsDuration("SCHEDULER_POLL_INTERVAL", time.Second),

		NotifyURL:        os.Getenv("NOTIFY_URL"),
		NotifySecret:     os.Getenv("NOTIFY_SECRET"),
		NotifyTimeout:    getEnvAsDuration("NOTIFY_TIMEOUT", 5*time.Second),
		NotifyMaxRetries: getEnvAsInt("NOTIFY_MAX_RETRIES", 3),
		NotifyBaseDelay:  getEnvAsDuration("NOTIFY_BASE_DELAY", time.Second),

		StatsTimeWindowMinutes: getEnvAsInt("STATS_TIME_WINDOW_MINUTES", 1440),
	}

	// Загрузка API ключей
	apiKeysStr := os.Getenv("API_KEYS")
	if apiKeysStr != "" {
		cfg.APIKeys = strings.Split(apiKeysStr, ",")
		for i, key := range cfg.APIKeys {
			cfg.APIKeys[i] = strings.TrimSpace(key)
		}
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL environment variable is required")
	}

	return cfg, nil
}

// getEnv возвращает значение переменной окружения или значение по умолчанию
func getEnv(key string, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

// getEnvAsInt возвращает значение переменной окружения как int или значение по умолчанию
func getEnvAsInt(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getEnvAsFloat возвращает значение переменной окружения как float64 или значение по умолчанию
func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value, exists := os.LookupEnv(key); exists {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

// getEnvAsDuration возвращает значение переменной окружения как time.Duration или значение по умолчанию
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		if durationValue, err := time.ParseDuration(value); err == nil {
			return durationValue
		}
	}
	return defaultValue
}

// getEnvAsDurations разбирает список длительностей через запятую
func getEnvAsDurations(key string, defaultValue []time.Duration) []time.Duration {
	value, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	parts := strings.Split(value, ",")
	out := make([]time.Duration, 0, len(parts))
	for _, p := range parts {
		d, err := time.ParseDuration(strings.TrimSpace(p))
		if err != nil {
			return defaultValue
		}
		out = append(out, d)
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
