package local

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"testing"

	"go.uber.org/zap/zaptest"

	"github.com/NazwanSM/nusavarta-auth/internal/core/port"
	"github.com/NazwanSM/nusavarta-auth/internal/fault"
)

func newTestProvider(t *testing.T) *IdentityProvider {
	t.Helper()
	provider := NewIdentityProvider(zaptest.NewLogger(t))
	t.Cleanup(provider.Close)
	return provider
}

// unverifiedToken builds a JWT-shaped string with the given claims and a
// placeholder signature, enough for unverified parsing.
func unverifiedToken(t *testing.T, claims map[string]any) string {
	t.Helper()

	header, err := json.Marshal(map[string]string{"alg": "RS256", "typ": "JWT"})
	if err != nil {
		t.Fatalf("marshal header: %v", err)
	}
	payload, err := json.Marshal(claims)
	if err != nil {
		t.Fatalf("marshal claims: %v", err)
	}

	enc := base64.RawURLEncoding
	return enc.EncodeToString(header) + "." + enc.EncodeToString(payload) + "." + enc.EncodeToString([]byte("sig"))
}

func TestCreateUserAndSignIn(t *testing.T) {
	provider := newTestProvider(t)
	ctx := context.Background()

	created, err := provider.CreateUser(ctx, "jane@example.com", "secret1")
	if err != nil {
		t.Fatalf("CreateUser returned error: %v", err)
	}
	if created.UID == "" || created.Email != "jane@example.com" {
		t.Fatalf("identity = %+v", created)
	}
	if created.EmailVerified {
		t.Fatal("new password accounts must start unverified")
	}

	identity, err := provider.SignInWithPassword(ctx, "jane@example.com", "secret1")
	if err != nil {
		t.Fatalf("SignInWithPassword returned error: %v", err)
	}
	if identity.UID != created.UID {
		t.Fatalf("UID = %q, want %q", identity.UID, created.UID)
	}

	if current := provider.CurrentIdentity(); current == nil || current.UID != created.UID {
		t.Fatalf("CurrentIdentity = %+v", current)
	}
}

func TestSignInErrors(t *testing.T) {
	provider := newTestProvider(t)
	ctx := context.Background()

	if _, err := provider.CreateUser(ctx, "jane@example.com", "secret1"); err != nil {
		t.Fatalf("CreateUser returned error: %v", err)
	}

	_, err := provider.SignInWithPassword(ctx, "ghost@example.com", "secret1")
	if fault.CodeOf(err) != "auth/user-not-found" {
		t.Fatalf("code = %q, want auth/user-not-found", fault.CodeOf(err))
	}

	_, err = provider.SignInWithPassword(ctx, "jane@example.com", "wrong")
	if fault.CodeOf(err) != "auth/wrong-password" {
		t.Fatalf("code = %q, want auth/wrong-password", fault.CodeOf(err))
	}
}

func TestSignInEmailIsCaseInsensitive(t *testing.T) {
	provider := newTestProvider(t)
	ctx := context.Background()

	if _, err := provider.CreateUser(ctx, "Jane@Example.com", "secret1"); err != nil {
		t.Fatalf("CreateUser returned error: %v", err)
	}

	if _, err := provider.SignInWithPassword(ctx, "jane@example.com", "secret1"); err != nil {
		t.Fatalf("SignInWithPassword returned error: %v", err)
	}
}

func TestCreateUserDuplicateEmail(t *testing.T) {
	provider := newTestProvider(t)
	ctx := context.Background()

	if _, err := provider.CreateUser(ctx, "jane@example.com", "secret1"); err != nil {
		t.Fatalf("CreateUser returned error: %v", err)
	}

	_, err := provider.CreateUser(ctx, "JANE@example.com", "other-password")
	if fault.CodeOf(err) != "auth/email-already-in-use" {
		t.Fatalf("code = %q, want auth/email-already-in-use", fault.CodeOf(err))
	}
}

func TestSignInWithIDTokenProvisionsAccount(t *testing.T) {
	provider := newTestProvider(t)
	ctx := context.Background()

	token := unverifiedToken(t, map[string]any{
		"email":   "jane@example.com",
		"name":    "Jane van Doe",
		"picture": "https://lh3.example.com/photo.jpg",
	})

	identity, err := provider.SignInWithIDToken(ctx, token)
	if err != nil {
		t.Fatalf("SignInWithIDToken returned error: %v", err)
	}
	if identity.DisplayName != "Jane van Doe" || identity.PhotoURL != "https://lh3.example.com/photo.jpg" {
		t.Fatalf("identity = %+v", identity)
	}
	if !identity.EmailVerified {
		t.Fatal("federated accounts are provisioned verified")
	}

	// The same subject signs in again without creating a second account.
	again, err := provider.SignInWithIDToken(ctx, token)
	if err != nil {
		t.Fatalf("second SignInWithIDToken returned error: %v", err)
	}
	if again.UID != identity.UID {
		t.Fatalf("UID changed across sign-ins: %q vs %q", again.UID, identity.UID)
	}
}

func TestSignInWithIDTokenRejectsBadTokens(t *testing.T) {
	provider := newTestProvider(t)
	ctx := context.Background()

	_, err := provider.SignInWithIDToken(ctx, "not-a-jwt")
	if fault.CodeOf(err) != "auth/invalid-credential" {
		t.Fatalf("code = %q, want auth/invalid-credential", fault.CodeOf(err))
	}

	noEmail := unverifiedToken(t, map[string]any{"name": "Jane"})
	_, err = provider.SignInWithIDToken(ctx, noEmail)
	if fault.CodeOf(err) != "auth/invalid-credential" {
		t.Fatalf("code = %q, want auth/invalid-credential", fault.CodeOf(err))
	}
}

func TestReauthenticate(t *testing.T) {
	provider := newTestProvider(t)
	ctx := context.Background()

	if _, err := provider.CreateUser(ctx, "jane@example.com", "secret1"); err != nil {
		t.Fatalf("CreateUser returned error: %v", err)
	}

	if err := provider.Reauthenticate(ctx, "jane@example.com", "secret1"); err != nil {
		t.Fatalf("Reauthenticate returned error: %v", err)
	}
	if err := provider.Reauthenticate(ctx, "jane@example.com", "wrong"); fault.CodeOf(err) != "auth/wrong-password" {
		t.Fatalf("code = %q, want auth/wrong-password", fault.CodeOf(err))
	}
}

func TestUpdateDisplayProfileRefreshesCurrent(t *testing.T) {
	provider := newTestProvider(t)
	ctx := context.Background()

	created, err := provider.CreateUser(ctx, "jane@example.com", "secret1")
	if err != nil {
		t.Fatalf("CreateUser returned error: %v", err)
	}

	displayName := "Jane Doe"
	photo := "https://cdn.example.com/a.png"
	err = provider.UpdateDisplayProfile(ctx, created.UID, port.DisplayProfileUpdate{
		DisplayName: &displayName,
		PhotoURL:    &photo,
	})
	if err != nil {
		t.Fatalf("UpdateDisplayProfile returned error: %v", err)
	}

	current := provider.CurrentIdentity()
	if current.DisplayName != displayName || current.PhotoURL != photo {
		t.Fatalf("current = %+v", current)
	}
}

func TestUpdateEmailReindexesAndResetsVerification(t *testing.T) {
	provider := newTestProvider(t)
	ctx := context.Background()

	token := unverifiedToken(t, map[string]any{"email": "jane@example.com", "name": "Jane"})
	created, err := provider.SignInWithIDToken(ctx, token)
	if err != nil {
		t.Fatalf("SignInWithIDToken returned error: %v", err)
	}

	if err := provider.UpdateEmail(ctx, created.UID, "new@example.com"); err != nil {
		t.Fatalf("UpdateEmail returned error: %v", err)
	}

	current := provider.CurrentIdentity()
	if current.Email != "new@example.com" {
		t.Fatalf("Email = %q", current.Email)
	}
	if current.EmailVerified {
		t.Fatal("verification must reset on email change")
	}

	// The old address is free again, the new one is taken.
	if _, err := provider.CreateUser(ctx, "jane@example.com", "secret1"); err != nil {
		t.Fatalf("old email still taken: %v", err)
	}
	if _, err := provider.CreateUser(ctx, "new@example.com", "secret1"); fault.CodeOf(err) != "auth/email-already-in-use" {
		t.Fatalf("code = %q, want auth/email-already-in-use", fault.CodeOf(err))
	}
}

func TestUpdateEmailTaken(t *testing.T) {
	provider := newTestProvider(t)
	ctx := context.Background()

	first, err := provider.CreateUser(ctx, "jane@example.com", "secret1")
	if err != nil {
		t.Fatalf("CreateUser returned error: %v", err)
	}
	if _, err := provider.CreateUser(ctx, "taken@example.com", "secret1"); err != nil {
		t.Fatalf("CreateUser returned error: %v", err)
	}

	if err := provider.UpdateEmail(ctx, first.UID, "taken@example.com"); fault.CodeOf(err) != "auth/email-already-in-use" {
		t.Fatalf("code = %q, want auth/email-already-in-use", fault.CodeOf(err))
	}
}

func TestUpdatePassword(t *testing.T) {
	provider := newTestProvider(t)
	ctx := context.Background()

	created, err := provider.CreateUser(ctx, "jane@example.com", "secret1")
	if err != nil {
		t.Fatalf("CreateUser returned error: %v", err)
	}

	if err := provider.UpdatePassword(ctx, created.UID, "rotated2"); err != nil {
		t.Fatalf("UpdatePassword returned error: %v", err)
	}

	if _, err := provider.SignInWithPassword(ctx, "jane@example.com", "secret1"); fault.CodeOf(err) != "auth/wrong-password" {
		t.Fatalf("old password still works: %v", err)
	}
	if _, err := provider.SignInWithPassword(ctx, "jane@example.com", "rotated2"); err != nil {
		t.Fatalf("new password rejected: %v", err)
	}
}

func TestSendPasswordReset(t *testing.T) {
	provider := newTestProvider(t)
	ctx := context.Background()

	if _, err := provider.CreateUser(ctx, "jane@example.com", "secret1"); err != nil {
		t.Fatalf("CreateUser returned error: %v", err)
	}

	if err := provider.SendPasswordReset(ctx, "jane@example.com"); err != nil {
		t.Fatalf("SendPasswordReset returned error: %v", err)
	}
	if err := provider.SendPasswordReset(ctx, "ghost@example.com"); fault.CodeOf(err) != "auth/user-not-found" {
		t.Fatalf("code = %q, want auth/user-not-found", fault.CodeOf(err))
	}
}

func TestDeleteUserSignsOutCurrent(t *testing.T) {
	provider := newTestProvider(t)
	ctx := context.Background()

	created, err := provider.CreateUser(ctx, "jane@example.com", "secret1")
	if err != nil {
		t.Fatalf("CreateUser returned error: %v", err)
	}

	if err := provider.DeleteUser(ctx, created.UID); err != nil {
		t.Fatalf("DeleteUser returned error: %v", err)
	}
	if provider.CurrentIdentity() != nil {
		t.Fatal("deleted principal still current")
	}
	if _, err := provider.SignInWithPassword(ctx, "jane@example.com", "secret1"); fault.CodeOf(err) != "auth/user-not-found" {
		t.Fatalf("account survived deletion: %v", err)
	}
}

func TestSignOutEmitsNilState(t *testing.T) {
	provider := newTestProvider(t)
	ctx := context.Background()

	if _, err := provider.CreateUser(ctx, "jane@example.com", "secret1"); err != nil {
		t.Fatalf("CreateUser returned error: %v", err)
	}
	if err := provider.SignOut(ctx); err != nil {
		t.Fatalf("SignOut returned error: %v", err)
	}
	if provider.CurrentIdentity() != nil {
		t.Fatal("identity survived sign-out")
	}

	// Drain the stream: the last event must be the signed-out state.
	var sawSignOut bool
	for {
		select {
		case state := <-provider.AuthStateChanges():
			sawSignOut = state.Identity == nil
			continue
		default:
		}
		break
	}
	if !sawSignOut {
		t.Fatal("no signed-out event on the stream")
	}
}
