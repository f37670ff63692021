package local

import (
	"context"
	"strings"
	"sync"

	"github.com/NazwanSM/nusavarta-auth/internal/core/domain"
	"github.com/NazwanSM/nusavarta-auth/internal/core/port"
	"github.com/NazwanSM/nusavarta-auth/internal/repository"
)

// ProfileRepository is an in-memory profile store for development and tests.
type ProfileRepository struct {
	mu   sync.RWMutex
	docs map[string]domain.UserProfile
}

func NewProfileRepository() *ProfileRepository {
	return &ProfileRepository{
		docs: make(map[string]domain.UserProfile),
	}
}

func (r *ProfileRepository) Get(ctx context.Context, id string) (*domain.UserProfile, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	doc, ok := r.docs[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &doc, nil
}

func (r *ProfileRepository) Put(ctx context.Context, profile domain.UserProfile) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.docs[profile.ID] = profile
	return nil
}

func (r *ProfileRepository) Patch(ctx context.Context, id string, patch domain.ProfilePatch) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	doc, ok := r.docs[id]
	if !ok {
		return repository.ErrNotFound
	}

	if patch.FirstName != nil {
		doc.FirstName = *patch.FirstName
	}
	if patch.LastName != nil {
		doc.LastName = *patch.LastName
	}
	if patch.DisplayName != nil {
		doc.DisplayName = *patch.DisplayName
	}
	if patch.PhotoURL != nil {
		doc.PhotoURL = *patch.PhotoURL
	}
	if patch.Email != nil {
		doc.Email = *patch.Email
	}
	if patch.LastLoginAt != nil {
		doc.LastLoginAt = *patch.LastLoginAt
	}
	if patch.LastUpdatedAt != nil {
		doc.LastUpdatedAt = patch.LastUpdatedAt
	}

	r.docs[id] = doc
	return nil
}

func (r *ProfileRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.docs, id)
	return nil
}

func (r *ProfileRepository) FindByEmail(ctx context.Context, email string) (*domain.UserProfile, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	needle := strings.ToLower(strings.TrimSpace(email))
	for _, doc := range r.docs {
		if strings.ToLower(doc.Email) == needle {
			found := doc
			return &found, nil
		}
	}
	return nil, repository.ErrNotFound
}

var _ port.ProfileRepository = (*ProfileRepository)(nil)
