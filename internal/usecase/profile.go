package usecase

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/NazwanSM/nusavarta-auth/internal/core/domain"
	"github.com/NazwanSM/nusavarta-auth/internal/core/port"
	"github.com/NazwanSM/nusavarta-auth/internal/fault"
	"github.com/NazwanSM/nusavarta-auth/internal/repository"
)

// ProfileResult mirrors AuthResult for profile operations.
type ProfileResult struct {
	Success bool
	User    *domain.UserProfile
	Error   string
}

func profileFailure(message string) ProfileResult {
	return ProfileResult{Success: false, Error: message}
}

// UpdateProfileInput is a partial profile mutation; nil fields are untouched.
type UpdateProfileInput struct {
	FirstName   *string
	LastName    *string
	DisplayName *string
	PhotoURL    *string
}

// UpdateEmailInput carries an email change plus the reauthentication password.
type UpdateEmailInput struct {
	NewEmail        string
	CurrentPassword string
}

// UpdatePasswordInput carries a password change request.
type UpdatePasswordInput struct {
	CurrentPassword string
	NewPassword     string
}

// EmailAvailability is the best-effort duplicate probe result.
type EmailAvailability struct {
	Available bool
	Error     string
}

// ActivitySummaryResult wraps the profile activity summary.
type ActivitySummaryResult struct {
	Success bool
	Data    *domain.ActivitySummary
	Error   string
}

// ProfileService implements the profile read/update flows, including the
// sensitive mutations that require reauthentication.
type ProfileService struct {
	identity port.IdentityProvider
	profiles port.ProfileRepository
	reporter fault.Reporter
	logger   *zap.Logger
}

func NewProfileService(
	identity port.IdentityProvider,
	profiles port.ProfileRepository,
	reporter fault.Reporter,
	logger *zap.Logger,
) *ProfileService {
	return &ProfileService{
		identity: identity,
		profiles: profiles,
		reporter: reporter,
		logger:   logger,
	}
}

func (s *ProfileService) GetProfile(ctx context.Context, uid string) ProfileResult {
	profile, err := s.profiles.Get(ctx, uid)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return profileFailure("User profile not found")
		}
		s.logger.Error("load profile failed", zap.String("uid", uid), zap.Error(err))
		s.reportIfNeeded(ctx, err)
		return profileFailure("Failed to load user profile")
	}
	return ProfileResult{Success: true, User: profile}
}

// UpdateProfile applies a partial mutation to the caller's own profile. When
// first or last name changes without an explicit display name, the display
// name is recomputed from the merged name fields. Display name and photo
// changes are also pushed to the identity record.
func (s *ProfileService) UpdateProfile(ctx context.Context, uid string, input UpdateProfileInput) ProfileResult {
	current := s.identity.CurrentIdentity()
	if current == nil || current.UID != uid {
		return profileFailure("User not authenticated")
	}

	now := time.Now().UTC()
	patch := domain.ProfilePatch{
		FirstName:     input.FirstName,
		LastName:      input.LastName,
		DisplayName:   input.DisplayName,
		PhotoURL:      input.PhotoURL,
		LastUpdatedAt: &now,
	}

	if input.DisplayName == nil && (input.FirstName != nil || input.LastName != nil) {
		if existing, err := s.profiles.Get(ctx, uid); err == nil {
			firstName := existing.FirstName
			if input.FirstName != nil {
				firstName = *input.FirstName
			}
			lastName := existing.LastName
			if input.LastName != nil {
				lastName = *input.LastName
			}
			displayName := domain.ComposeDisplayName(firstName, lastName)
			patch.DisplayName = &displayName
		}
	}

	if err := s.profiles.Patch(ctx, uid, patch); err != nil {
		s.logger.Error("update profile failed", zap.String("uid", uid), zap.Error(err))
		s.reportIfNeeded(ctx, err)
		return profileFailure("Failed to update profile")
	}

	if patch.DisplayName != nil || input.PhotoURL != nil {
		update := port.DisplayProfileUpdate{
			DisplayName: patch.DisplayName,
			PhotoURL:    input.PhotoURL,
		}
		if err := s.identity.UpdateDisplayProfile(ctx, uid, update); err != nil {
			s.logger.Error("push display profile failed", zap.String("uid", uid), zap.Error(err))
			s.reportIfNeeded(ctx, err)
			return profileFailure("Failed to update profile")
		}
	}

	return s.GetProfile(ctx, uid)
}

// UpdateEmail changes the account email on both the identity record and the
// profile document. The two writes are sequential, not transactional; a
// failure between them leaves the stores diverged and is reported.
func (s *ProfileService) UpdateEmail(ctx context.Context, input UpdateEmailInput) ProfileResult {
	current := s.identity.CurrentIdentity()
	if current == nil || current.Email == "" {
		return profileFailure("User not authenticated")
	}

	if err := s.identity.Reauthenticate(ctx, current.Email, input.CurrentPassword); err != nil {
		if fault.CodeOf(err) == "auth/wrong-password" || fault.CodeOf(err) == "auth/invalid-credential" {
			return profileFailure("Current password is incorrect")
		}
		s.reportIfNeeded(ctx, err)
		return profileFailure("Failed to update email")
	}

	if err := s.identity.UpdateEmail(ctx, current.UID, input.NewEmail); err != nil {
		switch fault.CodeOf(err) {
		case "auth/email-already-in-use":
			return profileFailure("This email is already in use by another account")
		case "auth/invalid-email":
			return profileFailure("Please enter a valid email address")
		}
		s.reportIfNeeded(ctx, err)
		return profileFailure("Failed to update email")
	}

	now := time.Now().UTC()
	patch := domain.ProfilePatch{
		Email:         &input.NewEmail,
		LastUpdatedAt: &now,
	}
	if err := s.profiles.Patch(ctx, current.UID, patch); err != nil {
		// Identity already carries the new email; the stores are now
		// diverged, which always goes to diagnostics.
		s.logger.Error("profile email update failed after identity change",
			zap.String("uid", current.UID), zap.Error(err))
		s.report(ctx, err)
		return profileFailure("Failed to update email")
	}

	return s.GetProfile(ctx, current.UID)
}

// UpdatePassword rotates the account password after reauthentication. Only
// lastUpdatedAt changes on the profile document.
func (s *ProfileService) UpdatePassword(ctx context.Context, input UpdatePasswordInput) ProfileResult {
	current := s.identity.CurrentIdentity()
	if current == nil || current.Email == "" {
		return profileFailure("User not authenticated")
	}

	if len(input.NewPassword) < 6 {
		return profileFailure("New password must be at least 6 characters long")
	}

	if err := s.identity.Reauthenticate(ctx, current.Email, input.CurrentPassword); err != nil {
		if fault.CodeOf(err) == "auth/wrong-password" || fault.CodeOf(err) == "auth/invalid-credential" {
			return profileFailure("Current password is incorrect")
		}
		s.reportIfNeeded(ctx, err)
		return profileFailure("Failed to update password")
	}

	if err := s.identity.UpdatePassword(ctx, current.UID, input.NewPassword); err != nil {
		if fault.CodeOf(err) == "auth/weak-password" {
			return profileFailure("New password is too weak")
		}
		s.reportIfNeeded(ctx, err)
		return profileFailure("Failed to update password")
	}

	now := time.Now().UTC()
	if err := s.profiles.Patch(ctx, current.UID, domain.ProfilePatch{LastUpdatedAt: &now}); err != nil {
		s.logger.Error("touch profile after password change failed",
			zap.String("uid", current.UID), zap.Error(err))
		s.reportIfNeeded(ctx, err)
		return profileFailure("Failed to update password")
	}

	return ProfileResult{Success: true}
}

// DeleteAccount removes the profile document, then the identity. If identity
// deletion fails after the document is gone, the identity is orphaned with no
// profile data; that inconsistency is surfaced as a failure and reported.
func (s *ProfileService) DeleteAccount(ctx context.Context, password string) ProfileResult {
	current := s.identity.CurrentIdentity()
	if current == nil || current.Email == "" {
		return profileFailure("User not authenticated")
	}

	if err := s.identity.Reauthenticate(ctx, current.Email, password); err != nil {
		if fault.CodeOf(err) == "auth/wrong-password" || fault.CodeOf(err) == "auth/invalid-credential" {
			return profileFailure("Password is incorrect")
		}
		s.reportIfNeeded(ctx, err)
		return profileFailure("Failed to delete account")
	}

	if err := s.profiles.Delete(ctx, current.UID); err != nil {
		s.logger.Error("delete profile failed", zap.String("uid", current.UID), zap.Error(err))
		s.reportIfNeeded(ctx, err)
		return profileFailure("Failed to delete account")
	}

	if err := s.identity.DeleteUser(ctx, current.UID); err != nil {
		s.logger.Error("delete identity failed after profile removal",
			zap.String("uid", current.UID), zap.Error(err))
		s.report(ctx, err)
		return profileFailure("Failed to delete account")
	}

	return ProfileResult{Success: true}
}

// IsEmailAvailable probes the profile store for an existing record with the
// given email. Best-effort only; the identity provider remains the authority
// on uniqueness.
func (s *ProfileService) IsEmailAvailable(ctx context.Context, email string) EmailAvailability {
	_, err := s.profiles.FindByEmail(ctx, email)
	if errors.Is(err, repository.ErrNotFound) {
		return EmailAvailability{Available: true}
	}
	if err != nil {
		s.logger.Warn("email availability check failed", zap.Error(err))
		return EmailAvailability{Available: false, Error: "Failed to check email availability"}
	}
	return EmailAvailability{Available: false}
}

// ActivitySummary condenses join date, last login, and profile completeness.
func (s *ProfileService) ActivitySummary(ctx context.Context, uid string) ActivitySummaryResult {
	result := s.GetProfile(ctx, uid)
	if !result.Success {
		return ActivitySummaryResult{Success: false, Error: "User profile not found"}
	}

	profile := result.User
	return ActivitySummaryResult{
		Success: true,
		Data: &domain.ActivitySummary{
			JoinDate:            profile.CreatedAt,
			LastLogin:           profile.LastLoginAt,
			ProfileCompleteness: profile.Completeness(),
		},
	}
}

// ValidateProfileData is the pure pre-flight check for UpdateProfile inputs.
func ValidateProfileData(input UpdateProfileInput) (bool, []string) {
	var errs []string

	if input.FirstName != nil {
		errs = append(errs, validatePatchName(*input.FirstName, "First name")...)
	}
	if input.LastName != nil {
		errs = append(errs, validatePatchName(*input.LastName, "Last name")...)
	}
	if input.PhotoURL != nil && *input.PhotoURL != "" {
		if !isWellFormedURL(*input.PhotoURL) {
			errs = append(errs, "Photo URL must be a valid URL")
		}
	}

	return len(errs) == 0, errs
}

func validatePatchName(value, field string) []string {
	trimmed := strings.TrimSpace(value)
	switch {
	case trimmed == "":
		return []string{field + " cannot be empty"}
	case len(trimmed) < 2:
		return []string{field + " must be at least 2 characters long"}
	case len(trimmed) > 50:
		return []string{field + " must be less than 50 characters"}
	}
	return nil
}

func isWellFormedURL(raw string) bool {
	parsed, err := url.ParseRequestURI(raw)
	if err != nil {
		return false
	}
	return parsed.Scheme != "" && parsed.Host != ""
}

func (s *ProfileService) reportIfNeeded(ctx context.Context, err error) {
	details := fault.Classify(err)
	if details.ShouldReport {
		s.reporter.Report(ctx, details, err)
	}
}

func (s *ProfileService) report(ctx context.Context, err error) {
	s.reporter.Report(ctx, fault.Classify(err), err)
}
