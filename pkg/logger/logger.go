package logger

import (
	"os"

	"github.com/sirupsen/logrus"
)

// New создает логгер с заданным уровнем и форматом вывода.
// Формат "text" удобен при локальном запуске, "json" - при работе под супервизором.
func New(logLevel, logFormat string) *logrus.Logger {
	log := logrus.New()

	if logFormat == "text" {
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	} else {
		log.SetFormatter(&logrus.JSONFormatter{})
	}

	log.SetOutput(os.Stdout)

	// Уровень логирования
	level, err := logrus.ParseLevel(logLevel)
	if err != nil {
		level = logrus.InfoLevel // Уровень по умолчанию, если передан некорректный
	}
	log.SetLevel(level)
	return log
}
