package port

import (
	"context"

	"github.com/NazwanSM/nusavarta-auth/internal/core/domain"
)

// ProfileRepository exposes document-store persistence for user profiles.
// Documents are keyed by the identity UID.
type ProfileRepository interface {
	Get(ctx context.Context, id string) (*domain.UserProfile, error)
	// Put stores the full profile document, replacing any existing one.
	Put(ctx context.Context, profile domain.UserProfile) error
	// Patch merges non-nil patch fields into the existing document.
	Patch(ctx context.Context, id string, patch domain.ProfilePatch) error
	Delete(ctx context.Context, id string) error
	// FindByEmail returns the profile with the given email, if any.
	FindByEmail(ctx context.Context, email string) (*domain.UserProfile, error)
}
