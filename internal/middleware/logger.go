package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// RequestLogger emits one structured log line per handled request.
func RequestLogger(log *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		fields := logrus.Fields{
			"method":  c.Request.Method,
			"path":    c.Request.URL.Path,
			"status":  c.Writer.Status(),
			"latency": time.Since(start).String(),
		}
		if len(c.Errors) > 0 {
			log.WithFields(fields).Error(c.Errors.String())
			return
		}
		if c.Writer.Status() >= 500 {
			log.WithFields(fields).Error("request failed")
			return
		}
		log.WithFields(fields).Info("request handled")
	}
}
