package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/NazwanSM/nusavarta-auth/internal/infra/telemetry"
	"github.com/NazwanSM/nusavarta-auth/internal/usecase"
	"github.com/NazwanSM/nusavarta-auth/internal/validation"
)

// AuthHandler exposes the authentication endpoints. All operations run
// through the session manager so loading state stays coherent.
type AuthHandler struct {
	session *usecase.SessionManager
	metrics *telemetry.Provider
}

func NewAuthHandler(session *usecase.SessionManager, metrics *telemetry.Provider) *AuthHandler {
	return &AuthHandler{session: session, metrics: metrics}
}

// RegisterRoutes binds the auth routes.
func (h *AuthHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("/login", h.login)
	r.POST("/register", h.register)
	r.POST("/google", h.loginWithGoogle)
	r.POST("/logout", h.logout)
	r.POST("/password-reset", h.resetPassword)
	r.GET("/credentials", h.savedCredentials)
}

func (h *AuthHandler) login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid login payload"))
		return
	}

	if result := validation.ValidateLoginForm(req.Email, req.Password); !result.IsValid {
		c.JSON(http.StatusBadRequest, ValidationErrorResponse{
			Error:  validation.FormatErrorMessage(result.Errors),
			Errors: result.Errors,
		})
		return
	}

	result := h.session.Login(c.Request.Context(), usecase.LoginInput{
		Email:      req.Email,
		Password:   req.Password,
		RememberMe: req.RememberMe,
	})
	h.metrics.RecordOperation("login", result.Success)

	if !result.Success {
		c.JSON(http.StatusUnauthorized, AuthResponse{Success: false, Error: result.Error})
		return
	}
	c.JSON(http.StatusOK, AuthResponse{Success: true, User: toUserResponse(result.User)})
}

func (h *AuthHandler) register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid registration payload"))
		return
	}

	result := validation.ValidateRegistrationForm(req.FirstName, req.LastName, req.Email, req.Password, req.ConfirmPassword)
	if !result.IsValid {
		c.JSON(http.StatusBadRequest, ValidationErrorResponse{
			Error:  validation.FormatErrorMessage(result.Errors),
			Errors: result.Errors,
		})
		return
	}

	outcome := h.session.Register(c.Request.Context(), usecase.RegisterInput{
		Email:     req.Email,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	})
	h.metrics.RecordOperation("register", outcome.Success)

	if !outcome.Success {
		c.JSON(http.StatusBadRequest, AuthResponse{Success: false, Error: outcome.Error})
		return
	}
	c.JSON(http.StatusCreated, AuthResponse{Success: true, User: toUserResponse(outcome.User)})
}

func (h *AuthHandler) loginWithGoogle(c *gin.Context) {
	var req GoogleLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.IDToken == "" {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid google login payload"))
		return
	}

	result := h.session.LoginWithGoogle(c.Request.Context(), req.IDToken)
	h.metrics.RecordOperation("login_google", result.Success)

	if !result.Success {
		c.JSON(http.StatusUnauthorized, AuthResponse{Success: false, Error: result.Error})
		return
	}
	c.JSON(http.StatusOK, AuthResponse{Success: true, User: toUserResponse(result.User)})
}

func (h *AuthHandler) logout(c *gin.Context) {
	result := h.session.Logout(c.Request.Context())
	h.metrics.RecordOperation("logout", result.Success)

	if !result.Success {
		c.JSON(http.StatusInternalServerError, AuthResponse{Success: false, Error: result.Error})
		return
	}
	c.JSON(http.StatusOK, AuthResponse{Success: true})
}

func (h *AuthHandler) resetPassword(c *gin.Context) {
	var req ResetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid reset payload"))
		return
	}

	result := h.session.ResetPassword(c.Request.Context(), req.Email)
	h.metrics.RecordOperation("reset_password", result.Success)

	if !result.Success {
		c.JSON(http.StatusBadRequest, AuthResponse{Success: false, Error: result.Error})
		return
	}
	c.JSON(http.StatusOK, AuthResponse{Success: true})
}

func (h *AuthHandler) savedCredentials(c *gin.Context) {
	creds := h.session.SavedCredentials(c.Request.Context())
	c.JSON(http.StatusOK, SavedCredentialsResponse{
		Email:      creds.Email,
		RememberMe: creds.RememberMe,
	})
}
