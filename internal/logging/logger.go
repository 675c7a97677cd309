package logging

import (
	"github.com/sirupsen/logrus"
)

// New returns the process-wide logger. Timestamped text output, matching
// what the bot has always printed to its container logs.
func New() *logrus.Logger {
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})
	logger.SetLevel(logrus.InfoLevel)
	return logger
}
