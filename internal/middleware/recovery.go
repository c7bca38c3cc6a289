package middleware

import (
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

func RecoveryWithLog(log logrus.FieldLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				log.WithFields(logrus.Fields{
					"panic":  r,
					"method": c.Request.Method,
					"path":   c.Request.URL.Path,
					"stack":  string(debug.Stack()),
				}).Error("panic recovered")
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"status": false, "error": "internal server error"})
			}
		}()
		c.Next()
	}
}
