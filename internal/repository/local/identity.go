package local

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/NazwanSM/nusavarta-auth/internal/core/domain"
	"github.com/NazwanSM/nusavarta-auth/internal/core/port"
	"github.com/NazwanSM/nusavarta-auth/internal/fault"
	"github.com/NazwanSM/nusavarta-auth/internal/infra/security"
	"github.com/NazwanSM/nusavarta-auth/internal/repository/authstate"
)

// IdentityProvider is an in-memory identity backend for development and
// tests. Accounts live only for the process lifetime; password reset emails
// are logged instead of sent.
type IdentityProvider struct {
	mu       sync.RWMutex
	accounts map[string]*account
	byEmail  map[string]string

	state  *authstate.Tracker
	logger *zap.Logger
}

type account struct {
	uid           string
	email         string
	passwordHash  string
	displayName   string
	photoURL      string
	emailVerified bool
	disabled      bool
}

func NewIdentityProvider(logger *zap.Logger) *IdentityProvider {
	return &IdentityProvider{
		accounts: make(map[string]*account),
		byEmail:  make(map[string]string),
		state:    authstate.NewTracker(),
		logger:   logger,
	}
}

func (p *IdentityProvider) SignInWithPassword(ctx context.Context, email, password string) (*domain.Identity, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	acct, err := p.verifyLocked(email, password)
	if err != nil {
		return nil, err
	}

	identity := acct.toIdentity()
	p.state.Set(identity)
	return identity, nil
}

// SignInWithIDToken accepts a Google ID token. The token signature is not
// verified here; this backend exists for development where no Google keys
// are available. Unknown subjects get an account provisioned on the fly,
// mirroring the hosted provider's federated sign-in.
func (p *IdentityProvider) SignInWithIDToken(ctx context.Context, idToken string) (*domain.Identity, error) {
	claims := jwt.MapClaims{}
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(idToken, claims); err != nil {
		return nil, &fault.BackendError{
			Code:    "auth/invalid-credential",
			Message: fmt.Sprintf("parse google id token: %v", err),
			Err:     err,
		}
	}

	email, _ := claims["email"].(string)
	if email == "" {
		return nil, &fault.BackendError{
			Code:    "auth/invalid-credential",
			Message: "google id token carries no email claim",
		}
	}
	name, _ := claims["name"].(string)
	picture, _ := claims["picture"].(string)

	p.mu.Lock()
	defer p.mu.Unlock()

	key := normalizeEmail(email)
	uid, ok := p.byEmail[key]
	if !ok {
		uid = uuid.NewString()
		p.accounts[uid] = &account{
			uid:           uid,
			email:         email,
			displayName:   name,
			photoURL:      picture,
			emailVerified: true,
		}
		p.byEmail[key] = uid
	}

	identity := p.accounts[uid].toIdentity()
	p.state.Set(identity)
	return identity, nil
}

func (p *IdentityProvider) CreateUser(ctx context.Context, email, password string) (*domain.Identity, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	key := normalizeEmail(email)
	if _, exists := p.byEmail[key]; exists {
		return nil, &fault.BackendError{
			Code:    "auth/email-already-in-use",
			Message: "email already registered",
		}
	}

	hash, err := security.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	uid := uuid.NewString()
	p.accounts[uid] = &account{
		uid:          uid,
		email:        email,
		passwordHash: hash,
	}
	p.byEmail[key] = uid

	identity := p.accounts[uid].toIdentity()
	p.state.Set(identity)
	return identity, nil
}

func (p *IdentityProvider) Reauthenticate(ctx context.Context, email, password string) error {
	p.mu.RLock()
	defer p.mu.RUnlock()

	_, err := p.verifyLocked(email, password)
	return err
}

func (p *IdentityProvider) UpdateDisplayProfile(ctx context.Context, uid string, update port.DisplayProfileUpdate) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	acct, err := p.lookupLocked(uid)
	if err != nil {
		return err
	}

	if update.DisplayName != nil {
		acct.displayName = *update.DisplayName
	}
	if update.PhotoURL != nil {
		acct.photoURL = *update.PhotoURL
	}

	p.refreshCurrentLocked(acct)
	return nil
}

func (p *IdentityProvider) UpdateEmail(ctx context.Context, uid, newEmail string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	acct, err := p.lookupLocked(uid)
	if err != nil {
		return err
	}

	newKey := normalizeEmail(newEmail)
	if owner, exists := p.byEmail[newKey]; exists && owner != uid {
		return &fault.BackendError{
			Code:    "auth/email-already-in-use",
			Message: "email already registered",
		}
	}

	delete(p.byEmail, normalizeEmail(acct.email))
	acct.email = newEmail
	acct.emailVerified = false
	p.byEmail[newKey] = uid

	p.refreshCurrentLocked(acct)
	return nil
}

func (p *IdentityProvider) UpdatePassword(ctx context.Context, uid, newPassword string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	acct, err := p.lookupLocked(uid)
	if err != nil {
		return err
	}

	hash, err := security.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	acct.passwordHash = hash
	return nil
}

func (p *IdentityProvider) SendPasswordReset(ctx context.Context, email string) error {
	p.mu.RLock()
	_, known := p.byEmail[normalizeEmail(email)]
	p.mu.RUnlock()

	if !known {
		return &fault.BackendError{
			Code:    "auth/user-not-found",
			Message: "no account for email",
		}
	}

	p.logger.Info("password reset requested", zap.String("email", email))
	return nil
}

func (p *IdentityProvider) DeleteUser(ctx context.Context, uid string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	acct, err := p.lookupLocked(uid)
	if err != nil {
		return err
	}

	delete(p.byEmail, normalizeEmail(acct.email))
	delete(p.accounts, uid)

	if current := p.state.Current(); current != nil && current.UID == uid {
		p.state.Set(nil)
	}
	return nil
}

func (p *IdentityProvider) SignOut(ctx context.Context) error {
	p.state.Set(nil)
	return nil
}

func (p *IdentityProvider) CurrentIdentity() *domain.Identity {
	return p.state.Current()
}

func (p *IdentityProvider) AuthStateChanges() <-chan port.AuthState {
	return p.state.Changes()
}

func (p *IdentityProvider) Close() {
	p.state.Close()
}

// verifyLocked checks the credentials against the account table. Callers
// hold at least the read lock.
func (p *IdentityProvider) verifyLocked(email, password string) (*account, error) {
	uid, ok := p.byEmail[normalizeEmail(email)]
	if !ok {
		return nil, &fault.BackendError{
			Code:    "auth/user-not-found",
			Message: "no account for email",
		}
	}

	acct := p.accounts[uid]
	if acct.disabled {
		return nil, &fault.BackendError{
			Code:    "auth/user-disabled",
			Message: "account disabled",
		}
	}

	ok, err := security.VerifyPassword(password, acct.passwordHash)
	if err != nil {
		return nil, fmt.Errorf("verify password: %w", err)
	}
	if !ok {
		return nil, &fault.BackendError{
			Code:    "auth/wrong-password",
			Message: "password mismatch",
		}
	}

	return acct, nil
}

func (p *IdentityProvider) lookupLocked(uid string) (*account, error) {
	acct, ok := p.accounts[uid]
	if !ok {
		return nil, &fault.BackendError{
			Code:    "auth/user-not-found",
			Message: "no account for uid",
		}
	}
	return acct, nil
}

func (p *IdentityProvider) refreshCurrentLocked(acct *account) {
	if current := p.state.Current(); current != nil && current.UID == acct.uid {
		p.state.Set(acct.toIdentity())
	}
}

func (a *account) toIdentity() *domain.Identity {
	return &domain.Identity{
		UID:           a.uid,
		Email:         a.email,
		DisplayName:   a.displayName,
		PhotoURL:      a.photoURL,
		EmailVerified: a.emailVerified,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

var _ port.IdentityProvider = (*IdentityProvider)(nil)
