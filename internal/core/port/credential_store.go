package port

import (
	"context"

	"github.com/NazwanSM/nusavarta-auth/internal/core/domain"
)

// CredentialStore persists the remember-me credentials snapshot. Writes are
// last-write-wins; concurrent access needs no coordination beyond that.
type CredentialStore interface {
	// Load returns the saved snapshot, or a zero-value snapshot when nothing
	// is stored.
	Load(ctx context.Context) (domain.Credentials, error)
	Save(ctx context.Context, creds domain.Credentials) error
	Clear(ctx context.Context) error
}
