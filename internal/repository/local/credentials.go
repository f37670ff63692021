package local

import (
	"context"
	"sync"

	"github.com/NazwanSM/nusavarta-auth/internal/core/domain"
	"github.com/NazwanSM/nusavarta-auth/internal/core/port"
)

// CredentialStore keeps the remember-me snapshot in process memory.
type CredentialStore struct {
	mu    sync.RWMutex
	creds domain.Credentials
}

func NewCredentialStore() *CredentialStore {
	return &CredentialStore{}
}

func (s *CredentialStore) Load(ctx context.Context) (domain.Credentials, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.creds.RememberMe {
		return domain.Credentials{}, nil
	}
	return s.creds, nil
}

func (s *CredentialStore) Save(ctx context.Context, creds domain.Credentials) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.creds = creds
	return nil
}

func (s *CredentialStore) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.creds = domain.Credentials{}
	return nil
}

var _ port.CredentialStore = (*CredentialStore)(nil)
