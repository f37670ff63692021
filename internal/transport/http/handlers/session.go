package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/NazwanSM/nusavarta-auth/internal/usecase"
	"github.com/NazwanSM/nusavarta-auth/internal/validation"
)

// SessionHandler exposes the session snapshot and the pure validators.
type SessionHandler struct {
	session *usecase.SessionManager
}

func NewSessionHandler(session *usecase.SessionManager) *SessionHandler {
	return &SessionHandler{session: session}
}

// RegisterRoutes binds the session and validation routes.
func (h *SessionHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/session", h.snapshot)
	r.POST("/validation/password-strength", h.passwordStrength)
}

func (h *SessionHandler) snapshot(c *gin.Context) {
	session := h.session.Snapshot()
	c.JSON(http.StatusOK, SessionResponse{
		State:     string(session.State),
		IsLoading: session.IsLoading,
		User:      toUserResponse(session.Profile),
	})
}

func (h *SessionHandler) passwordStrength(c *gin.Context) {
	var req PasswordStrengthRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid password payload"))
		return
	}

	strength := validation.CheckPasswordStrength(req.Password)
	feedback := strength.Feedback
	if feedback == nil {
		feedback = []string{}
	}
	c.JSON(http.StatusOK, PasswordStrengthResponse{
		Score:    strength.Score,
		Label:    validation.PasswordStrengthLabel(strength.Score),
		Feedback: feedback,
	})
}
