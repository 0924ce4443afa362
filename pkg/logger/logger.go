package logger

import (
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

// New configures the process-wide logrus logger and returns it so callers can
// hand it to middleware explicitly.
func New(level, format string) *logrus.Logger {
	log := logrus.StandardLogger()
	log.SetOutput(os.Stdout)

	lvl, err := logrus.ParseLevel(strings.ToLower(level))
	if err != nil {
		lvl = logrus.InfoLevel
	}
	log.SetLevel(lvl)

	if strings.EqualFold(format, "json") {
		log.SetFormatter(&logrus.JSONFormatter{})
	} else {
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	if err != nil && level != "" {
		log.WithField("level", level).Warn("unknown log level, falling back to info")
	}

	return log
}
