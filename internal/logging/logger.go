package logging

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

// New creates a configured logrus logger. An empty or unparsable level
// falls back to debug in development and info elsewhere.
func New(appName, env, level string) *logrus.Logger {
	return NewWithOutput(os.Stdout, appName, env, level)
}

func NewWithOutput(out io.Writer, appName, env, level string) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(out)
	if env == "development" {
		logger.SetLevel(logrus.DebugLevel)
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	} else {
		logger.SetLevel(logrus.InfoLevel)
		logger.SetFormatter(&logrus.JSONFormatter{})
	}
	if level != "" {
		if lvl, err := logrus.ParseLevel(level); err == nil {
			logger.SetLevel(lvl)
		}
	}
	logger.WithFields(logrus.Fields{"app": appName, "env": env}).Debug("logger initialized")
	return logger
}

// Discard returns a logger that drops everything, for tests and tools.
func Discard() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

// LogError keeps error logging uniform across packages.
func LogError(logger logrus.FieldLogger, msg string, err error, fields logrus.Fields) {
	if fields == nil {
		fields = logrus.Fields{}
	}
	if err != nil {
		fields["error"] = err.Error()
	}
	logger.WithFields(fields).Error(msg)
}
