package utils

import (
	"os"

	"github.com/sirupsen/logrus"
)

// NewLogger builds the application logger. Level names follow logrus
// (debug, info, warn, error); unknown names fall back to info.
func NewLogger(level string) *logrus.Logger {
	log := logrus.New()
	log.Out = os.Stdout
	log.Formatter = &logrus.JSONFormatter{
		FieldMap: logrus.FieldMap{
			logrus.FieldKeyTime:  "timestamp",
			logrus.FieldKeyLevel: "severity",
			logrus.FieldKeyMsg:   "message",
		},
		TimestampFormat: "2006-01-02T15:04:05.000Z07:00",
	}

	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	log.SetLevel(lvl)
	return log
}
