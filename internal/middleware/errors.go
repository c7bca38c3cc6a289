package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// ErrorReporter turns the last error a handler attached with c.Error
// into a 500 {status:false, error} response.
func ErrorReporter(log logrus.FieldLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}
		err := c.Errors.Last().Err

		log.WithError(err).WithFields(logrus.Fields{
			"method": c.Request.Method,
			"path":   c.Request.URL.Path,
		}).Error("request failed")

		if c.Writer.Written() {
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"status": false, "error": err.Error()})
	}
}
