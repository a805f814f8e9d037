package logger

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

// New инициализирует логгер. В продакшн режиме (GIN_MODE=release) пишет JSON с уровнем Info, иначе текст
// с уровнем Debug. LOG_LEVEL, если задан и корректен, переопределяет уровень.
func New(output io.Writer) *logrus.Logger {
	l := logrus.New()
	l.SetOutput(output)

	if os.Getenv("GIN_MODE") == "release" {
		l.SetFormatter(&logrus.JSONFormatter{TimestampFormat: "2006-01-02T15:04:05.000Z07:00"})
		l.SetLevel(logrus.InfoLevel)
	} else {
		l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
		l.SetLevel(logrus.DebugLevel)
	}

	if lvl, err := logrus.ParseLevel(os.Getenv("LOG_LEVEL")); err == nil {
		l.SetLevel(lvl)
	}
	return l
}
