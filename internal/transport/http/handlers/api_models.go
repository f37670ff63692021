package handlers

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/NazwanSM/nusavarta-auth/internal/core/domain"
	appLogger "github.com/NazwanSM/nusavarta-auth/internal/infra/logger"
)

// ErrorResponse is the uniform error payload.
type ErrorResponse struct {
	Error     string `json:"error"`
	RequestID string `json:"request_id,omitempty"`
}

// NewErrorResponse builds an error payload carrying the request correlation id.
func NewErrorResponse(c *gin.Context, errorMsg string) ErrorResponse {
	requestID, _ := c.Request.Context().Value(appLogger.RequestIDKey{}).(string)
	return ErrorResponse{
		Error:     errorMsg,
		RequestID: requestID,
	}
}

// ValidationErrorResponse carries client-side validation failures.
type ValidationErrorResponse struct {
	Error  string   `json:"error"`
	Errors []string `json:"errors"`
}

// UserResponse is the wire shape of a user profile.
type UserResponse struct {
	UID             string     `json:"uid"`
	Email           string     `json:"email"`
	FirstName       string     `json:"firstName"`
	LastName        string     `json:"lastName"`
	DisplayName     string     `json:"displayName"`
	PhotoURL        string     `json:"photoURL,omitempty"`
	CreatedAt       time.Time  `json:"createdAt"`
	LastLoginAt     time.Time  `json:"lastLoginAt"`
	LastUpdatedAt   *time.Time `json:"lastUpdatedAt,omitempty"`
	IsEmailVerified bool       `json:"isEmailVerified"`
}

func toUserResponse(profile *domain.UserProfile) *UserResponse {
	if profile == nil {
		return nil
	}
	return &UserResponse{
		UID:             profile.ID,
		Email:           profile.Email,
		FirstName:       profile.FirstName,
		LastName:        profile.LastName,
		DisplayName:     profile.DisplayName,
		PhotoURL:        profile.PhotoURL,
		CreatedAt:       profile.CreatedAt,
		LastLoginAt:     profile.LastLoginAt,
		LastUpdatedAt:   profile.LastUpdatedAt,
		IsEmailVerified: profile.IsEmailVerified,
	}
}

// AuthResponse is the uniform outcome shape for auth and profile operations.
type AuthResponse struct {
	Success bool          `json:"success"`
	User    *UserResponse `json:"user,omitempty"`
	Error   string        `json:"error,omitempty"`
}

// LoginRequest is the email/password login payload.
type LoginRequest struct {
	Email      string `json:"email"`
	Password   string `json:"password"`
	RememberMe bool   `json:"rememberMe"`
}

// RegisterRequest is the account registration payload.
type RegisterRequest struct {
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
	FirstName       string `json:"firstName"`
	LastName        string `json:"lastName"`
}

// GoogleLoginRequest carries the federated ID token.
type GoogleLoginRequest struct {
	IDToken string `json:"idToken"`
}

// ResetPasswordRequest triggers a password-reset email.
type ResetPasswordRequest struct {
	Email string `json:"email"`
}

// SavedCredentialsResponse is the remember-me snapshot.
type SavedCredentialsResponse struct {
	Email      string `json:"email"`
	RememberMe bool   `json:"rememberMe"`
}

// SessionResponse is a point-in-time session snapshot.
type SessionResponse struct {
	State     string        `json:"state"`
	IsLoading bool          `json:"isLoading"`
	User      *UserResponse `json:"user,omitempty"`
}

// UpdateProfileRequest is a partial profile mutation; absent fields are left
// untouched.
type UpdateProfileRequest struct {
	FirstName   *string `json:"firstName"`
	LastName    *string `json:"lastName"`
	DisplayName *string `json:"displayName"`
	PhotoURL    *string `json:"photoURL"`
}

// UpdateEmailRequest changes the account email after reauthentication.
type UpdateEmailRequest struct {
	NewEmail        string `json:"newEmail"`
	CurrentPassword string `json:"currentPassword"`
}

// UpdatePasswordRequest rotates the password after reauthentication.
type UpdatePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

// DeleteAccountRequest confirms deletion with the current password.
type DeleteAccountRequest struct {
	Password string `json:"password"`
}

// EmailAvailabilityResponse is the best-effort duplicate probe result.
type EmailAvailabilityResponse struct {
	Available bool   `json:"available"`
	Error     string `json:"error,omitempty"`
}

// ActivitySummaryResponse condenses profile activity.
type ActivitySummaryResponse struct {
	JoinDate            time.Time `json:"joinDate"`
	LastLogin           time.Time `json:"lastLogin"`
	ProfileCompleteness int       `json:"profileCompleteness"`
}

// ValidationResponse is the outcome of a pure validation call.
type ValidationResponse struct {
	IsValid bool     `json:"isValid"`
	Errors  []string `json:"errors"`
}

// PasswordStrengthRequest scores a candidate password.
type PasswordStrengthRequest struct {
	Password string `json:"password"`
}

// PasswordStrengthResponse carries the 0-4 score with feedback.
type PasswordStrengthResponse struct {
	Score    int      `json:"score"`
	Label    string   `json:"label"`
	Feedback []string `json:"feedback"`
}

// HealthResponse reports liveness.
type HealthResponse struct {
	Status    string    `json:"status"`
	StartedAt time.Time `json:"started_at"`
	Timestamp time.Time `json:"timestamp"`
}

// ReadyResponse describes readiness probe results with dependency checks.
type ReadyResponse struct {
	Status    string            `json:"status"`
	Checks    map[string]string `json:"checks,omitempty"`
	Timestamp time.Time         `json:"timestamp"`
}
