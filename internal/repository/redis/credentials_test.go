package redis

import (
	"context"
	"testing"

	miniredis "github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"

	"github.com/NazwanSM/nusavarta-auth/internal/core/domain"
)

func newTestStore(t *testing.T) (*CredentialStore, *miniredis.Miniredis) {
	t.Helper()

	server, err := miniredis.Run()
	if err != nil {
		t.Fatalf("failed to start miniredis: %v", err)
	}

	client := goredis.NewClient(&goredis.Options{Addr: server.Addr()})

	t.Cleanup(func() {
		_ = client.Close()
		server.Close()
	})

	return NewCredentialStore(client, "test:credentials"), server
}

func TestCredentialStore_SaveAndLoad(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	creds := domain.Credentials{Email: "jane@example.com", RememberMe: true}
	if err := store.Save(ctx, creds); err != nil {
		t.Fatalf("Save returned error: %v", err)
	}

	loaded, err := store.Load(ctx)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if loaded != creds {
		t.Fatalf("Load = %+v, want %+v", loaded, creds)
	}
}

func TestCredentialStore_LoadEmptyWhenNothingStored(t *testing.T) {
	store, _ := newTestStore(t)

	loaded, err := store.Load(context.Background())
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if loaded != (domain.Credentials{}) {
		t.Fatalf("Load = %+v, want empty", loaded)
	}
}

func TestCredentialStore_RememberFlagGatesEmail(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	if err := store.Save(ctx, domain.Credentials{Email: "jane@example.com", RememberMe: false}); err != nil {
		t.Fatalf("Save returned error: %v", err)
	}

	loaded, err := store.Load(ctx)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if loaded != (domain.Credentials{}) {
		t.Fatalf("Load = %+v, want empty when remember-me is off", loaded)
	}
}

func TestCredentialStore_MalformedFlagYieldsEmpty(t *testing.T) {
	store, server := newTestStore(t)

	server.Set("test:credentials:remember_me", "yes")
	server.Set("test:credentials:saved_email", "jane@example.com")

	loaded, err := store.Load(context.Background())
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if loaded != (domain.Credentials{}) {
		t.Fatalf("Load = %+v, want empty for malformed flag", loaded)
	}
}

func TestCredentialStore_Clear(t *testing.T) {
	store, server := newTestStore(t)
	ctx := context.Background()

	if err := store.Save(ctx, domain.Credentials{Email: "jane@example.com", RememberMe: true}); err != nil {
		t.Fatalf("Save returned error: %v", err)
	}
	if err := store.Clear(ctx); err != nil {
		t.Fatalf("Clear returned error: %v", err)
	}

	if server.Exists("test:credentials:saved_email") || server.Exists("test:credentials:remember_me") {
		t.Fatal("keys survived Clear")
	}

	loaded, err := store.Load(ctx)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if loaded != (domain.Credentials{}) {
		t.Fatalf("Load = %+v, want empty after Clear", loaded)
	}
}

func TestCredentialStore_SaveOverwrites(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	if err := store.Save(ctx, domain.Credentials{Email: "old@example.com", RememberMe: true}); err != nil {
		t.Fatalf("Save returned error: %v", err)
	}
	if err := store.Save(ctx, domain.Credentials{Email: "new@example.com", RememberMe: true}); err != nil {
		t.Fatalf("Save returned error: %v", err)
	}

	loaded, err := store.Load(ctx)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if loaded.Email != "new@example.com" {
		t.Fatalf("Email = %q, want new@example.com", loaded.Email)
	}
}
