package port

import (
	"context"

	"github.com/NazwanSM/nusavarta-auth/internal/core/domain"
)

// AuthState is one event on the identity provider's auth-state stream.
// Identity is nil when the principal signed out.
type AuthState struct {
	Identity *domain.Identity
}

// DisplayProfileUpdate carries the identity-record fields pushed alongside
// profile mutations. Nil fields are left untouched.
type DisplayProfileUpdate struct {
	DisplayName *string
	PhotoURL    *string
}

// IdentityProvider wraps the external identity service. Implementations keep
// track of the currently signed-in principal and notify subscribers whenever
// it changes, matching the provider's own auth-state notification stream.
//
// Failures surface as *fault.BackendError carrying the provider error code so
// callers can map them onto user-facing messages.
type IdentityProvider interface {
	// SignInWithPassword authenticates with email/password credentials.
	SignInWithPassword(ctx context.Context, email, password string) (*domain.Identity, error)
	// SignInWithIDToken exchanges a federated (Google) ID token for a session.
	SignInWithIDToken(ctx context.Context, idToken string) (*domain.Identity, error)
	// CreateUser provisions a new identity with password credentials.
	CreateUser(ctx context.Context, email, password string) (*domain.Identity, error)
	// Reauthenticate re-proves the current credentials ahead of a sensitive
	// mutation. It does not alter the signed-in principal.
	Reauthenticate(ctx context.Context, email, password string) error
	// UpdateDisplayProfile pushes display name and/or photo to the identity record.
	UpdateDisplayProfile(ctx context.Context, uid string, update DisplayProfileUpdate) error
	UpdateEmail(ctx context.Context, uid, newEmail string) error
	UpdatePassword(ctx context.Context, uid, newPassword string) error
	SendPasswordReset(ctx context.Context, email string) error
	DeleteUser(ctx context.Context, uid string) error
	// SignOut ends the current session and emits a nil-identity auth state.
	SignOut(ctx context.Context) error

	// CurrentIdentity returns the signed-in principal, or nil.
	CurrentIdentity() *domain.Identity
	// AuthStateChanges returns the auth-state notification stream. The
	// returned channel is owned by the provider and closed on shutdown.
	AuthStateChanges() <-chan AuthState
}
