package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/layer-3/todo/core"
	"github.com/layer-3/todo/service"
)

// AuthHandlers contains HTTP handlers for auth endpoints
type AuthHandlers struct {
	authService *service.AuthService
}

// NewAuthHandlers creates new auth handlers
func NewAuthHandlers(authService *service.AuthService) *AuthHandlers {
	return &AuthHandlers{
		authService: authService,
	}
}

// Auth logs in an existing user or registers a new one
func (h *AuthHandlers) Auth(c *gin.Context) {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	result, err := h.authService.LoginOrRegister(c.Request.Context(), core.Credentials{
		Identifier: req.Username,
		Password:   req.Password,
	})
	if err != nil {
		statusCode := http.StatusInternalServerError
		errorMsg := "Internal server error"

		// Map specific errors to appropriate status codes
		switch {
		case errors.Is(err, core.ErrInvalidInput):
			statusCode = http.StatusBadRequest
			errorMsg = "Username and password are required"
		case errors.Is(err, core.ErrInvalidCredentials):
			statusCode = http.StatusUnauthorized
			errorMsg = "Invalid credentials"
		}

		c.JSON(statusCode, gin.H{"error": errorMsg})
		return
	}

	statusCode := http.StatusOK
	if result.Outcome == core.OutcomeRegistered {
		statusCode = http.StatusCreated
	}

	c.JSON(statusCode, gin.H{
		"token":      result.Token.Value,
		"token_type": "Bearer",
		"expires_in": int(core.TokenTTL.Seconds()),
	})
}

// Me returns the identity of the authenticated user
func (h *AuthHandlers) Me(c *gin.Context) {
	// Set by the auth middleware
	username, exists := c.Get(ContextUsernameKey)
	if !exists {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "User not found in context"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"username": username,
	})
}
