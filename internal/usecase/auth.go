package usecase

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/NazwanSM/nusavarta-auth/internal/core/domain"
	"github.com/NazwanSM/nusavarta-auth/internal/core/port"
	"github.com/NazwanSM/nusavarta-auth/internal/fault"
	"github.com/NazwanSM/nusavarta-auth/internal/repository"
	"github.com/nbutton23/zxcvbn-go"
)

var emailFormat = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// AuthResult is the uniform outcome shape for every auth operation. Failures
// carry a display-safe message; raw backend errors never cross this boundary.
type AuthResult struct {
	Success bool
	User    *domain.UserProfile
	Error   string
}

func authFailure(message string) AuthResult {
	return AuthResult{Success: false, Error: message}
}

// LoginInput carries the email/password login request.
type LoginInput struct {
	Email      string
	Password   string
	RememberMe bool
}

// RegisterInput carries the account registration request.
type RegisterInput struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
}

// AuthPolicy tunes optional registration checks. A zero MinPasswordScore
// disables the strength gate.
type AuthPolicy struct {
	MinPasswordScore int
}

// AuthService implements the login, registration, and session-credential
// flows against the identity provider and the profile store.
type AuthService struct {
	identity port.IdentityProvider
	profiles port.ProfileRepository
	creds    port.CredentialStore
	reporter fault.Reporter
	policy   AuthPolicy
	logger   *zap.Logger
}

func NewAuthService(
	identity port.IdentityProvider,
	profiles port.ProfileRepository,
	creds port.CredentialStore,
	reporter fault.Reporter,
	policy AuthPolicy,
	logger *zap.Logger,
) *AuthService {
	return &AuthService{
		identity: identity,
		profiles: profiles,
		creds:    creds,
		reporter: reporter,
		policy:   policy,
		logger:   logger,
	}
}

// LoginWithEmail authenticates with email/password. On success the
// remember-me snapshot is saved or cleared per the request, and the user
// profile is loaded from the store; a missing profile document is synthesized
// from identity metadata and written back.
func (s *AuthService) LoginWithEmail(ctx context.Context, input LoginInput) AuthResult {
	email := strings.TrimSpace(input.Email)
	if email == "" {
		return authFailure("Email is required")
	}
	if strings.TrimSpace(input.Password) == "" {
		return authFailure("Password is required")
	}
	if !emailFormat.MatchString(email) {
		return authFailure("Please enter a valid email address")
	}

	identity, err := s.identity.SignInWithPassword(ctx, email, input.Password)
	if err != nil {
		s.reportIfNeeded(ctx, err)
		return authFailure(s.loginErrorMessage(err))
	}

	if input.RememberMe {
		err = s.creds.Save(ctx, domain.Credentials{Email: email, RememberMe: true})
	} else {
		err = s.creds.Clear(ctx)
	}
	if err != nil {
		// Credential persistence is a convenience feature; a broken snapshot
		// store must not fail an otherwise valid login.
		s.logger.Warn("persist credential snapshot failed", zap.Error(err))
	}

	profile := s.resolveProfileAfterLogin(ctx, identity)
	return AuthResult{Success: true, User: profile}
}

// resolveProfileAfterLogin fetches the stored profile, bumping lastLoginAt
// for existing documents. When no document exists, a minimal profile is
// synthesized from the identity record and written back so the account heals
// itself; the write is best-effort.
func (s *AuthService) resolveProfileAfterLogin(ctx context.Context, identity *domain.Identity) *domain.UserProfile {
	profile, err := s.profiles.Get(ctx, identity.UID)
	if err == nil {
		now := time.Now().UTC()
		if patchErr := s.profiles.Patch(ctx, identity.UID, domain.ProfilePatch{LastLoginAt: &now}); patchErr != nil {
			s.logger.Warn("update last login failed", zap.String("uid", identity.UID), zap.Error(patchErr))
		} else {
			profile.LastLoginAt = now
		}
		return profile
	}
	if !errors.Is(err, repository.ErrNotFound) {
		s.logger.Warn("load profile failed", zap.String("uid", identity.UID), zap.Error(err))
		s.reportIfNeeded(ctx, err)
	}

	now := time.Now().UTC()
	fallback := domain.UserProfile{
		ID:              identity.UID,
		Email:           identity.Email,
		DisplayName:     identity.DisplayName,
		PhotoURL:        identity.PhotoURL,
		CreatedAt:       now,
		LastLoginAt:     now,
		IsEmailVerified: identity.EmailVerified,
	}

	if putErr := s.profiles.Put(ctx, fallback); putErr != nil {
		s.logger.Error("create fallback profile failed", zap.String("uid", identity.UID), zap.Error(putErr))
		s.reportIfNeeded(ctx, putErr)
	}

	return &fallback
}

// RegisterWithEmail provisions a new account: create identity, push the
// display name to the identity record, write the profile document. Partial
// creation (identity exists, document write failed) is reported rather than
// rolled back.
func (s *AuthService) RegisterWithEmail(ctx context.Context, input RegisterInput) AuthResult {
	firstName := strings.TrimSpace(input.FirstName)
	lastName := strings.TrimSpace(input.LastName)
	email := strings.TrimSpace(input.Email)

	if firstName == "" {
		return authFailure("First name is required")
	}
	if lastName == "" {
		return authFailure("Last name is required")
	}
	if email == "" {
		return authFailure("Email is required")
	}
	if strings.TrimSpace(input.Password) == "" {
		return authFailure("Password is required")
	}
	if !emailFormat.MatchString(email) {
		return authFailure("Please enter a valid email address")
	}
	if len(input.Password) < 6 {
		return authFailure("Password must be at least 6 characters long")
	}
	if s.policy.MinPasswordScore > 0 {
		strength := zxcvbn.PasswordStrength(input.Password, []string{email, firstName, lastName})
		if strength.Score < s.policy.MinPasswordScore {
			return authFailure("Password is too weak. Please use at least 6 characters")
		}
	}

	if exists := s.checkEmailExists(ctx, email); exists {
		return authFailure("Email already exists. Please use a different email or try logging in.")
	}

	identity, err := s.identity.CreateUser(ctx, email, input.Password)
	if err != nil {
		s.reportIfNeeded(ctx, err)
		return authFailure(s.loginErrorMessage(err))
	}

	displayName := domain.ComposeDisplayName(firstName, lastName)
	if err := s.identity.UpdateDisplayProfile(ctx, identity.UID, port.DisplayProfileUpdate{DisplayName: &displayName}); err != nil {
		s.reportIfNeeded(ctx, err)
		return authFailure(s.loginErrorMessage(err))
	}

	now := time.Now().UTC()
	profile := domain.UserProfile{
		ID:              identity.UID,
		Email:           identity.Email,
		FirstName:       firstName,
		LastName:        lastName,
		DisplayName:     displayName,
		PhotoURL:        identity.PhotoURL,
		CreatedAt:       now,
		LastLoginAt:     now,
		IsEmailVerified: identity.EmailVerified,
	}

	if err := s.profiles.Put(ctx, profile); err != nil {
		// Identity already exists; losing the document here leaves a
		// partially created account, so it is always forwarded to
		// diagnostics.
		s.logger.Error("write profile after registration failed",
			zap.String("uid", identity.UID), zap.Error(err))
		s.report(ctx, err)
		return authFailure(s.loginErrorMessage(err))
	}

	return AuthResult{Success: true, User: &profile}
}

// LoginWithGoogle exchanges a Google ID token for a session. First-time
// identities get a profile document derived from the federated display name;
// returning ones get a lastLoginAt bump.
func (s *AuthService) LoginWithGoogle(ctx context.Context, idToken string) AuthResult {
	identity, err := s.identity.SignInWithIDToken(ctx, idToken)
	if err != nil {
		s.reportIfNeeded(ctx, err)
		return authFailure(s.loginErrorMessage(err))
	}

	profile, err := s.profiles.Get(ctx, identity.UID)
	if err == nil {
		now := time.Now().UTC()
		if patchErr := s.profiles.Patch(ctx, identity.UID, domain.ProfilePatch{LastLoginAt: &now}); patchErr != nil {
			s.logger.Warn("update last login failed", zap.String("uid", identity.UID), zap.Error(patchErr))
		} else {
			profile.LastLoginAt = now
		}
		return AuthResult{Success: true, User: profile}
	}
	if !errors.Is(err, repository.ErrNotFound) {
		s.reportIfNeeded(ctx, err)
		return authFailure(s.loginErrorMessage(err))
	}

	firstName, lastName := domain.SplitDisplayName(identity.DisplayName)
	now := time.Now().UTC()
	created := domain.UserProfile{
		ID:              identity.UID,
		Email:           identity.Email,
		FirstName:       firstName,
		LastName:        lastName,
		DisplayName:     identity.DisplayName,
		PhotoURL:        identity.PhotoURL,
		CreatedAt:       now,
		LastLoginAt:     now,
		IsEmailVerified: identity.EmailVerified,
	}

	if err := s.profiles.Put(ctx, created); err != nil {
		s.reportIfNeeded(ctx, err)
		return authFailure(s.loginErrorMessage(err))
	}

	return AuthResult{Success: true, User: &created}
}

// Logout ends the identity session and clears the remember-me snapshot
// unconditionally.
func (s *AuthService) Logout(ctx context.Context) AuthResult {
	if err := s.identity.SignOut(ctx); err != nil {
		s.logger.Error("sign out failed", zap.Error(err))
		return authFailure("Failed to logout")
	}
	if err := s.creds.Clear(ctx); err != nil {
		s.logger.Error("clear credential snapshot failed", zap.Error(err))
		return authFailure("Failed to logout")
	}
	return AuthResult{Success: true}
}

// ResetPassword triggers the provider's password-reset email. The response
// does not reveal whether the account exists beyond what the provider itself
// discloses.
func (s *AuthService) ResetPassword(ctx context.Context, email string) AuthResult {
	email = strings.TrimSpace(email)
	if email == "" {
		return authFailure("Email is required")
	}
	if !emailFormat.MatchString(email) {
		return authFailure("Please enter a valid email address")
	}

	if err := s.identity.SendPasswordReset(ctx, email); err != nil {
		s.reportIfNeeded(ctx, err)
		return authFailure(s.loginErrorMessage(err))
	}
	return AuthResult{Success: true}
}

// SavedCredentials returns the remember-me snapshot. The email is only
// populated while the remember-me flag is set; store failures degrade to the
// empty snapshot.
func (s *AuthService) SavedCredentials(ctx context.Context) domain.Credentials {
	creds, err := s.creds.Load(ctx)
	if err != nil {
		s.logger.Warn("load credential snapshot failed", zap.Error(err))
		return domain.Credentials{}
	}
	if !creds.RememberMe {
		return domain.Credentials{}
	}
	return creds
}

// checkEmailExists is a pre-registration duplicate probe. It is deliberately
// inert: a definitive answer would enable account enumeration, so uniqueness
// is left to the identity provider's own create-time enforcement.
func (s *AuthService) checkEmailExists(ctx context.Context, email string) bool {
	return false
}

// loginErrorMessage maps a provider error code onto the short, display-safe
// message shown on auth forms. Codes outside the table collapse to a generic
// retry message.
func (s *AuthService) loginErrorMessage(err error) string {
	if msg, ok := authFormMessages[fault.CodeOf(err)]; ok {
		return msg
	}
	return "An error occurred. Please try again"
}

var authFormMessages = map[string]string{
	"auth/user-not-found":         "No account found with this email address",
	"auth/wrong-password":         "Incorrect password",
	"auth/invalid-email":          "Invalid email address",
	"auth/user-disabled":          "This account has been disabled",
	"auth/too-many-requests":      "Too many failed attempts. Please try again later",
	"auth/email-already-in-use":   "Email already exists. Please use a different email or try logging in",
	"auth/weak-password":          "Password is too weak. Please use at least 6 characters",
	"auth/network-request-failed": "Network error. Please check your internet connection",
	"auth/invalid-credential":     "Invalid credentials. Please check your email and password",
}

// reportIfNeeded forwards the fault to diagnostics when its classification
// marks it reportable.
func (s *AuthService) reportIfNeeded(ctx context.Context, err error) {
	details := fault.Classify(err)
	if details.ShouldReport {
		s.reporter.Report(ctx, details, err)
	}
}

// report forwards unconditionally, for inconsistencies that must reach
// diagnostics regardless of their mapped classification.
func (s *AuthService) report(ctx context.Context, err error) {
	s.reporter.Report(ctx, fault.Classify(err), err)
}
