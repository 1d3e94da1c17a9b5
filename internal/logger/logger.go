package logger

import (
	"storefront-payments/internal/config"

	"github.com/sirupsen/logrus"
)

// New builds a logrus logger from the LOG_LEVEL / LOG_FORMAT config.
func New(cfg *config.Log) *logrus.Logger {
	log := logrus.New()

	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	log.SetLevel(level)

	if cfg.Format == "json" {
		log.SetFormatter(&logrus.JSONFormatter{})
	} else {
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	return log
}
