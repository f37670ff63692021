package firestore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"go.uber.org/zap"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/NazwanSM/nusavarta-auth/internal/core/domain"
	"github.com/NazwanSM/nusavarta-auth/internal/core/port"
	"github.com/NazwanSM/nusavarta-auth/internal/fault"
	"github.com/NazwanSM/nusavarta-auth/internal/repository"
)

// ProfileRepository stores user profile documents in a Firestore collection.
// Document IDs are the identity UIDs, matching the mobile clients that read
// the same collection.
type ProfileRepository struct {
	client     *firestore.Client
	collection string
	logger     *zap.Logger
}

func NewProfileRepository(client *firestore.Client, collection string, logger *zap.Logger) *ProfileRepository {
	if collection == "" {
		collection = "users"
	}
	return &ProfileRepository{
		client:     client,
		collection: collection,
		logger:     logger,
	}
}

// userDoc mirrors the document shape the mobile clients wrote; field names
// must stay stable across both writers.
type userDoc struct {
	UID             string     `firestore:"uid"`
	Email           string     `firestore:"email"`
	FirstName       string     `firestore:"firstName"`
	LastName        string     `firestore:"lastName"`
	DisplayName     string     `firestore:"displayName"`
	PhotoURL        string     `firestore:"photoURL"`
	CreatedAt       time.Time  `firestore:"createdAt"`
	LastLoginAt     time.Time  `firestore:"lastLoginAt"`
	LastUpdatedAt   *time.Time `firestore:"lastUpdatedAt,omitempty"`
	IsEmailVerified bool       `firestore:"isEmailVerified"`
}

func (d userDoc) toDomain() domain.UserProfile {
	return domain.UserProfile{
		ID:              d.UID,
		Email:           d.Email,
		FirstName:       d.FirstName,
		LastName:        d.LastName,
		DisplayName:     d.DisplayName,
		PhotoURL:        d.PhotoURL,
		CreatedAt:       d.CreatedAt,
		LastLoginAt:     d.LastLoginAt,
		LastUpdatedAt:   d.LastUpdatedAt,
		IsEmailVerified: d.IsEmailVerified,
	}
}

func docFromDomain(p domain.UserProfile) userDoc {
	return userDoc{
		UID:             p.ID,
		Email:           p.Email,
		FirstName:       p.FirstName,
		LastName:        p.LastName,
		DisplayName:     p.DisplayName,
		PhotoURL:        p.PhotoURL,
		CreatedAt:       p.CreatedAt,
		LastLoginAt:     p.LastLoginAt,
		LastUpdatedAt:   p.LastUpdatedAt,
		IsEmailVerified: p.IsEmailVerified,
	}
}

func (r *ProfileRepository) Get(ctx context.Context, id string) (*domain.UserProfile, error) {
	snap, err := r.client.Collection(r.collection).Doc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, repository.ErrNotFound
		}
		return nil, wrapStoreError("get profile", err)
	}

	var doc userDoc
	if err := snap.DataTo(&doc); err != nil {
		return nil, fmt.Errorf("decode profile document: %w", err)
	}
	profile := doc.toDomain()
	return &profile, nil
}

func (r *ProfileRepository) Put(ctx context.Context, profile domain.UserProfile) error {
	_, err := r.client.Collection(r.collection).Doc(profile.ID).Set(ctx, docFromDomain(profile))
	if err != nil {
		return wrapStoreError("put profile", err)
	}
	return nil
}

func (r *ProfileRepository) Patch(ctx context.Context, id string, patch domain.ProfilePatch) error {
	updates := buildUpdates(patch)
	if len(updates) == 0 {
		return nil
	}

	_, err := r.client.Collection(r.collection).Doc(id).Update(ctx, updates)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return repository.ErrNotFound
		}
		return wrapStoreError("patch profile", err)
	}
	return nil
}

func buildUpdates(patch domain.ProfilePatch) []firestore.Update {
	var updates []firestore.Update
	if patch.FirstName != nil {
		updates = append(updates, firestore.Update{Path: "firstName", Value: *patch.FirstName})
	}
	if patch.LastName != nil {
		updates = append(updates, firestore.Update{Path: "lastName", Value: *patch.LastName})
	}
	if patch.DisplayName != nil {
		updates = append(updates, firestore.Update{Path: "displayName", Value: *patch.DisplayName})
	}
	if patch.PhotoURL != nil {
		updates = append(updates, firestore.Update{Path: "photoURL", Value: *patch.PhotoURL})
	}
	if patch.Email != nil {
		updates = append(updates, firestore.Update{Path: "email", Value: *patch.Email})
	}
	if patch.LastLoginAt != nil {
		updates = append(updates, firestore.Update{Path: "lastLoginAt", Value: *patch.LastLoginAt})
	}
	if patch.LastUpdatedAt != nil {
		updates = append(updates, firestore.Update{Path: "lastUpdatedAt", Value: *patch.LastUpdatedAt})
	}
	return updates
}

func (r *ProfileRepository) Delete(ctx context.Context, id string) error {
	_, err := r.client.Collection(r.collection).Doc(id).Delete(ctx)
	if err != nil {
		return wrapStoreError("delete profile", err)
	}
	return nil
}

func (r *ProfileRepository) FindByEmail(ctx context.Context, email string) (*domain.UserProfile, error) {
	iter := r.client.Collection(r.collection).
		Where("email", "==", email).
		Limit(1).
		Documents(ctx)
	defer iter.Stop()

	snap, err := iter.Next()
	if errors.Is(err, iterator.Done) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, wrapStoreError("find profile by email", err)
	}

	var doc userDoc
	if err := snap.DataTo(&doc); err != nil {
		return nil, fmt.Errorf("decode profile document: %w", err)
	}
	profile := doc.toDomain()
	return &profile, nil
}

// wrapStoreError converts a Firestore gRPC status into a coded backend error
// so the classifier can map it to a user-facing message.
func wrapStoreError(op string, err error) error {
	code := "unknown"
	switch status.Code(err) {
	case codes.NotFound:
		code = "not-found"
	case codes.PermissionDenied:
		code = "permission-denied"
	case codes.Unavailable:
		code = "unavailable"
	case codes.DeadlineExceeded:
		code = "deadline-exceeded"
	case codes.ResourceExhausted:
		code = "resource-exhausted"
	case codes.Unauthenticated:
		code = "unauthenticated"
	case codes.InvalidArgument:
		code = "invalid-argument"
	case codes.AlreadyExists:
		code = "already-exists"
	case codes.FailedPrecondition:
		code = "failed-precondition"
	case codes.Aborted:
		code = "aborted"
	case codes.OutOfRange:
		code = "out-of-range"
	case codes.Canceled:
		code = "cancelled"
	}
	return &fault.BackendError{
		Code:    code,
		Message: fmt.Sprintf("%s: %v", op, err),
		Err:     err,
	}
}

var _ port.ProfileRepository = (*ProfileRepository)(nil)
