package middlewares

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// Logger пишет в лог каждый запрос. Приватные ошибки видны только здесь.
func Logger(l *logrus.Logger) gin.HandlerFunc {
	entry := l.WithFields(logrus.Fields{
		"component": "api",
		"module":    "http",
	})
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		fields := logrus.Fields{
			"method":  c.Request.Method,
			"path":    c.Request.URL.Path,
			"status":  c.Writer.Status(),
			"latency": time.Since(start).String(),
		}
		reqLog := entry.WithFields(fields)

		if private := c.Errors.ByType(gin.ErrorTypePrivate); len(private) > 0 {
			reqLog.WithError(private[0].Err).Warn("request failed")
			return
		}
		reqLog.Info("request")
	}
}
