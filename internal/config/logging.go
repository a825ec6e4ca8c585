package config

import (
	"os"

	"github.com/sirupsen/logrus"
)

// NewLogger builds the process logger. VERBOSE switches to debug level.
func NewLogger(cfg *Config) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(os.Stdout)
	logger.SetLevel(logrus.InfoLevel)

	if cfg == nil {
		return logger
	}

	if cfg.Verbose {
		logger.SetLevel(logrus.DebugLevel)
	}

	if cfg.JSONLogs || cfg.Environment == "production" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	return logger
}
