package infrastructures

import (
	"github.com/sirupsen/logrus"
)

var logger *logrus.Logger

func init() {
	logger = logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
}

// GetLogger returns the global logger instance
func GetLogger() *logrus.Logger {
	return logger
}

// ConfigureLogger applies the configured level to the global logger and
// to the logrus standard logger used by package-level calls.
func ConfigureLogger(cfg *AppConfig) {
	level, err := logrus.ParseLevel(cfg.LOG_LEVEL)
	if err != nil {
		logger.Warnf("unknown log level %q, using info", cfg.LOG_LEVEL)
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)
	logrus.SetLevel(level)
	logrus.SetFormatter(&logrus.JSONFormatter{})
}
