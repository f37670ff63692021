package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/NazwanSM/nusavarta-auth/internal/infra/telemetry"
	"github.com/NazwanSM/nusavarta-auth/internal/usecase"
)

// ProfileHandler exposes the profile read/update endpoints.
type ProfileHandler struct {
	profiles *usecase.ProfileService
	metrics  *telemetry.Provider
}

func NewProfileHandler(profiles *usecase.ProfileService, metrics *telemetry.Provider) *ProfileHandler {
	return &ProfileHandler{profiles: profiles, metrics: metrics}
}

// RegisterRoutes binds the profile routes.
func (h *ProfileHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/email-availability", h.emailAvailability)
	r.PUT("/email", h.updateEmail)
	r.PUT("/password", h.updatePassword)
	r.DELETE("", h.deleteAccount)
	r.POST("/validate", h.validatePatch)
	r.GET("/:uid", h.getProfile)
	r.PATCH("/:uid", h.updateProfile)
	r.GET("/:uid/activity", h.activitySummary)
}

func (h *ProfileHandler) getProfile(c *gin.Context) {
	result := h.profiles.GetProfile(c.Request.Context(), c.Param("uid"))
	if !result.Success {
		status := http.StatusNotFound
		if result.Error != "User profile not found" {
			status = http.StatusInternalServerError
		}
		c.JSON(status, AuthResponse{Success: false, Error: result.Error})
		return
	}
	c.JSON(http.StatusOK, AuthResponse{Success: true, User: toUserResponse(result.User)})
}

func (h *ProfileHandler) updateProfile(c *gin.Context) {
	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid profile payload"))
		return
	}

	input := usecase.UpdateProfileInput{
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		DisplayName: req.DisplayName,
		PhotoURL:    req.PhotoURL,
	}

	if valid, errs := usecase.ValidateProfileData(input); !valid {
		c.JSON(http.StatusBadRequest, ValidationErrorResponse{
			Error:  errs[0],
			Errors: errs,
		})
		return
	}

	result := h.profiles.UpdateProfile(c.Request.Context(), c.Param("uid"), input)
	h.metrics.RecordOperation("update_profile", result.Success)

	if !result.Success {
		c.JSON(profileFailureStatus(result.Error), AuthResponse{Success: false, Error: result.Error})
		return
	}
	c.JSON(http.StatusOK, AuthResponse{Success: true, User: toUserResponse(result.User)})
}

func (h *ProfileHandler) updateEmail(c *gin.Context) {
	var req UpdateEmailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid email payload"))
		return
	}

	result := h.profiles.UpdateEmail(c.Request.Context(), usecase.UpdateEmailInput{
		NewEmail:        req.NewEmail,
		CurrentPassword: req.CurrentPassword,
	})
	h.metrics.RecordOperation("update_email", result.Success)

	if !result.Success {
		c.JSON(profileFailureStatus(result.Error), AuthResponse{Success: false, Error: result.Error})
		return
	}
	c.JSON(http.StatusOK, AuthResponse{Success: true, User: toUserResponse(result.User)})
}

func (h *ProfileHandler) updatePassword(c *gin.Context) {
	var req UpdatePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid password payload"))
		return
	}

	result := h.profiles.UpdatePassword(c.Request.Context(), usecase.UpdatePasswordInput{
		CurrentPassword: req.CurrentPassword,
		NewPassword:     req.NewPassword,
	})
	h.metrics.RecordOperation("update_password", result.Success)

	if !result.Success {
		c.JSON(profileFailureStatus(result.Error), AuthResponse{Success: false, Error: result.Error})
		return
	}
	c.JSON(http.StatusOK, AuthResponse{Success: true})
}

func (h *ProfileHandler) deleteAccount(c *gin.Context) {
	var req DeleteAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid delete payload"))
		return
	}

	result := h.profiles.DeleteAccount(c.Request.Context(), req.Password)
	h.metrics.RecordOperation("delete_account", result.Success)

	if !result.Success {
		c.JSON(profileFailureStatus(result.Error), AuthResponse{Success: false, Error: result.Error})
		return
	}
	c.JSON(http.StatusOK, AuthResponse{Success: true})
}

func (h *ProfileHandler) emailAvailability(c *gin.Context) {
	email := c.Query("email")
	if email == "" {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "email query parameter is required"))
		return
	}

	availability := h.profiles.IsEmailAvailable(c.Request.Context(), email)
	c.JSON(http.StatusOK, EmailAvailabilityResponse{
		Available: availability.Available,
		Error:     availability.Error,
	})
}

func (h *ProfileHandler) activitySummary(c *gin.Context) {
	result := h.profiles.ActivitySummary(c.Request.Context(), c.Param("uid"))
	if !result.Success {
		c.JSON(http.StatusNotFound, NewErrorResponse(c, result.Error))
		return
	}
	c.JSON(http.StatusOK, ActivitySummaryResponse{
		JoinDate:            result.Data.JoinDate,
		LastLogin:           result.Data.LastLogin,
		ProfileCompleteness: result.Data.ProfileCompleteness,
	})
}

func (h *ProfileHandler) validatePatch(c *gin.Context) {
	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid profile payload"))
		return
	}

	valid, errs := usecase.ValidateProfileData(usecase.UpdateProfileInput{
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		DisplayName: req.DisplayName,
		PhotoURL:    req.PhotoURL,
	})
	if errs == nil {
		errs = []string{}
	}
	c.JSON(http.StatusOK, ValidationResponse{IsValid: valid, Errors: errs})
}

// profileFailureStatus maps the display message onto an HTTP status. The
// message set is closed, so string matching here is stable.
func profileFailureStatus(message string) int {
	switch message {
	case "User not authenticated":
		return http.StatusUnauthorized
	case "Current password is incorrect", "Password is incorrect":
		return http.StatusUnauthorized
	case "User profile not found":
		return http.StatusNotFound
	case "This email is already in use by another account":
		return http.StatusConflict
	case "Please enter a valid email address",
		"New password must be at least 6 characters long",
		"New password is too weak":
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
