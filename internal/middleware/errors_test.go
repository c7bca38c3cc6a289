package middleware_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"todo-tracker/backend/internal/middleware"
)

func TestErrorReporter_RendersLastError(t *testing.T) {
	gin.SetMode(gin.TestMode)
	log, hook := test.NewNullLogger()

	router := gin.New()
	router.Use(middleware.ErrorReporter(log))
	router.POST("/fail", func(c *gin.Context) {
		c.Error(errors.New("first"))
		c.Error(errors.New("User does not exist"))
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/fail", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"status":false,"error":"User does not exist"}`, w.Body.String())

	require.NotNil(t, hook.LastEntry())
	assert.Equal(t, logrus.ErrorLevel, hook.LastEntry().Level)
}

func TestErrorReporter_LeavesSuccessAlone(t *testing.T) {
	gin.SetMode(gin.TestMode)
	log, hook := test.NewNullLogger()

	router := gin.New()
	router.Use(middleware.ErrorReporter(log))
	router.GET("/ok", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": true})
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ok", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, hook.AllEntries())
}

func TestErrorReporter_DoesNotOverwriteWrittenResponse(t *testing.T) {
	gin.SetMode(gin.TestMode)
	log, _ := test.NewNullLogger()

	router := gin.New()
	router.Use(middleware.ErrorReporter(log))
	router.GET("/written", func(c *gin.Context) {
		c.JSON(http.StatusBadRequest, gin.H{"status": false, "message": "bad"})
		c.Error(errors.New("ignored"))
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/written", nil))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"status":false,"message":"bad"}`, w.Body.String())
}
