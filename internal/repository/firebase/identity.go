package firebase

import (
	"context"
	"fmt"

	firebase "firebase.google.com/go"
	"firebase.google.com/go/auth"
	"go.uber.org/zap"
	"google.golang.org/api/option"

	"github.com/NazwanSM/nusavarta-auth/internal/core/domain"
	"github.com/NazwanSM/nusavarta-auth/internal/core/port"
	"github.com/NazwanSM/nusavarta-auth/internal/fault"
	"github.com/NazwanSM/nusavarta-auth/internal/infra/config"
	"github.com/NazwanSM/nusavarta-auth/internal/repository/authstate"
)

// IdentityProvider implements the identity port against Firebase. User
// management runs through the Admin SDK; credential verification runs
// through the Identity Toolkit REST API because the Admin SDK cannot check
// passwords.
type IdentityProvider struct {
	admin  *auth.Client
	rest   *restClient
	state  *authstate.Tracker
	logger *zap.Logger
}

func NewIdentityProvider(ctx context.Context, cfg config.FirebaseSettings, logger *zap.Logger) (*IdentityProvider, error) {
	var opts []option.ClientOption
	if cfg.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
	}

	app, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: cfg.ProjectID}, opts...)
	if err != nil {
		return nil, fmt.Errorf("initialize firebase app: %w", err)
	}

	admin, err := app.Auth(ctx)
	if err != nil {
		return nil, fmt.Errorf("initialize firebase auth client: %w", err)
	}

	return &IdentityProvider{
		admin:  admin,
		rest:   newRESTClient(cfg.APIKey, cfg.RequestTimeout),
		state:  authstate.NewTracker(),
		logger: logger,
	}, nil
}

func (p *IdentityProvider) SignInWithPassword(ctx context.Context, email, password string) (*domain.Identity, error) {
	resp, err := p.rest.signInWithPassword(ctx, email, password)
	if err != nil {
		return nil, err
	}

	identity, err := p.loadIdentity(ctx, resp.LocalID)
	if err != nil {
		return nil, err
	}

	p.state.Set(identity)
	return identity, nil
}

func (p *IdentityProvider) SignInWithIDToken(ctx context.Context, idToken string) (*domain.Identity, error) {
	resp, err := p.rest.signInWithIDP(ctx, idToken)
	if err != nil {
		return nil, err
	}

	identity, err := p.loadIdentity(ctx, resp.LocalID)
	if err != nil {
		return nil, err
	}

	p.state.Set(identity)
	return identity, nil
}

func (p *IdentityProvider) CreateUser(ctx context.Context, email, password string) (*domain.Identity, error) {
	params := (&auth.UserToCreate{}).
		Email(email).
		Password(password)

	record, err := p.admin.CreateUser(ctx, params)
	if err != nil {
		return nil, adminError("create user", err)
	}

	identity := recordToIdentity(record)
	p.state.Set(identity)
	return identity, nil
}

// Reauthenticate re-verifies the password without touching the tracked
// sign-in state.
func (p *IdentityProvider) Reauthenticate(ctx context.Context, email, password string) error {
	_, err := p.rest.signInWithPassword(ctx, email, password)
	return err
}

func (p *IdentityProvider) UpdateDisplayProfile(ctx context.Context, uid string, update port.DisplayProfileUpdate) error {
	params := &auth.UserToUpdate{}
	changed := false
	if update.DisplayName != nil {
		params = params.DisplayName(*update.DisplayName)
		changed = true
	}
	if update.PhotoURL != nil {
		params = params.PhotoURL(*update.PhotoURL)
		changed = true
	}
	if !changed {
		return nil
	}

	record, err := p.admin.UpdateUser(ctx, uid, params)
	if err != nil {
		return adminError("update display profile", err)
	}

	p.refreshCurrent(record)
	return nil
}

func (p *IdentityProvider) UpdateEmail(ctx context.Context, uid, newEmail string) error {
	record, err := p.admin.UpdateUser(ctx, uid, (&auth.UserToUpdate{}).Email(newEmail))
	if err != nil {
		return adminError("update email", err)
	}

	p.refreshCurrent(record)
	return nil
}

func (p *IdentityProvider) UpdatePassword(ctx context.Context, uid, newPassword string) error {
	if _, err := p.admin.UpdateUser(ctx, uid, (&auth.UserToUpdate{}).Password(newPassword)); err != nil {
		return adminError("update password", err)
	}
	return nil
}

func (p *IdentityProvider) SendPasswordReset(ctx context.Context, email string) error {
	return p.rest.sendPasswordReset(ctx, email)
}

func (p *IdentityProvider) DeleteUser(ctx context.Context, uid string) error {
	if err := p.admin.DeleteUser(ctx, uid); err != nil {
		return adminError("delete user", err)
	}

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

func (p *IdentityProvider) loadIdentity(ctx context.Context, uid string) (*domain.Identity, error) {
	record, err := p.admin.GetUser(ctx, uid)
	if err != nil {
		return nil, adminError("get user", err)
	}
	return recordToIdentity(record), nil
}

// refreshCurrent keeps the tracked principal in sync when a mutation touched
// the signed-in user's identity record.
func (p *IdentityProvider) refreshCurrent(record *auth.UserRecord) {
	if current := p.state.Current(); current != nil && current.UID == record.UID {
		p.state.Set(recordToIdentity(record))
	}
}

func recordToIdentity(record *auth.UserRecord) *domain.Identity {
	return &domain.Identity{
		UID:           record.UID,
		Email:         record.Email,
		DisplayName:   record.DisplayName,
		PhotoURL:      record.PhotoURL,
		EmailVerified: record.EmailVerified,
	}
}

func adminError(op string, err error) error {
	code := "auth/internal-error"
	switch {
	case auth.IsUserNotFound(err):
		code = "auth/user-not-found"
	case auth.IsEmailAlreadyExists(err):
		code = "auth/email-already-in-use"
	}
	return &fault.BackendError{
		Code:    code,
		Message: fmt.Sprintf("%s: %v", op, err),
		Err:     err,
	}
}
