package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"todo-tracker/backend/internal/services"
)

type AuthHandler struct {
	authService services.AuthService
	log         logrus.FieldLogger
}

func NewAuthHandler(authService services.AuthService, log logrus.FieldLogger) *AuthHandler {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &AuthHandler{authService: authService, log: log.WithField("handler", "auth")}
}

type credentialsInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type changePasswordInput struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	NewPassword string `json:"newPassword"`
}

// Register handles POST /register. Failures go to the error reporter.
func (h *AuthHandler) Register(c *gin.Context) {
	var input credentialsInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.Error(services.ErrMissingCredentials)
		return
	}

	user, err := h.authService.RegisterUser(c.Request.Context(), input.Email, input.Password)
	if err != nil {
		c.Error(err)
		return
	}

	h.log.WithField("user_id", user.ID.String()).Debug("register succeeded")
	c.JSON(http.StatusOK, gin.H{"status": true, "success": "User registered successfully"})
}

func (h *AuthHandler) Login(c *gin.Context) {
	var input credentialsInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.Error(services.ErrMissingCredentials)
		return
	}

	_, token, err := h.authService.Authenticate(c.Request.Context(), input.Email, input.Password)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": true, "success": "sendData", "token": token})
}

func (h *AuthHandler) ChangePassword(c *gin.Context) {
	var input changePasswordInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.Error(services.ErrMissingCredentials)
		return
	}

	if _, err := h.authService.ChangePassword(c.Request.Context(), input.Email, input.Password, input.NewPassword); err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": true, "success": "Password updated successfully"})
}
