package redis

import (
	"context"
	"errors"
	"fmt"

	goredis "github.com/redis/go-redis/v9"

	"github.com/NazwanSM/nusavarta-auth/internal/core/domain"
	"github.com/NazwanSM/nusavarta-auth/internal/core/port"
)

// CredentialStore persists the remember-me snapshot in Redis. Two keys are
// kept under the configured prefix: the saved email and the remember-me
// flag, stored as the strings "true"/"false".
type CredentialStore struct {
	client *goredis.Client
	prefix string
}

func NewCredentialStore(client *goredis.Client, prefix string) *CredentialStore {
	if prefix == "" {
		prefix = "nusavarta:credentials"
	}
	return &CredentialStore{
		client: client,
		prefix: prefix,
	}
}

func (s *CredentialStore) emailKey() string {
	return s.prefix + ":saved_email"
}

func (s *CredentialStore) rememberKey() string {
	return s.prefix + ":remember_me"
}

// Load returns the saved snapshot. The email is only surfaced when the
// remember-me flag reads exactly "true"; a missing or malformed flag yields
// an empty snapshot, never an error.
func (s *CredentialStore) Load(ctx context.Context) (domain.Credentials, error) {
	remember, err := s.client.Get(ctx, s.rememberKey()).Result()
	if errors.Is(err, goredis.Nil) {
		return domain.Credentials{}, nil
	}
	if err != nil {
		return domain.Credentials{}, fmt.Errorf("load remember flag: %w", err)
	}

	if remember != "true" {
		return domain.Credentials{}, nil
	}

	email, err := s.client.Get(ctx, s.emailKey()).Result()
	if errors.Is(err, goredis.Nil) {
		return domain.Credentials{}, nil
	}
	if err != nil {
		return domain.Credentials{}, fmt.Errorf("load saved email: %w", err)
	}

	return domain.Credentials{Email: email, RememberMe: true}, nil
}

func (s *CredentialStore) Save(ctx context.Context, creds domain.Credentials) error {
	remember := "false"
	if creds.RememberMe {
		remember = "true"
	}

	pipe := s.client.TxPipeline()
	pipe.Set(ctx, s.emailKey(), creds.Email, 0)
	pipe.Set(ctx, s.rememberKey(), remember, 0)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("save credentials: %w", err)
	}
	return nil
}

func (s *CredentialStore) Clear(ctx context.Context) error {
	if err := s.client.Del(ctx, s.emailKey(), s.rememberKey()).Err(); err != nil {
		return fmt.Errorf("clear credentials: %w", err)
	}
	return nil
}

var _ port.CredentialStore = (*CredentialStore)(nil)
