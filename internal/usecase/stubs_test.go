package usecase

import (
	"context"
	"sync"

	"github.com/NazwanSM/nusavarta-auth/internal/core/domain"
	"github.com/NazwanSM/nusavarta-auth/internal/core/port"
	"github.com/NazwanSM/nusavarta-auth/internal/fault"
)

type stubIdentityProvider struct {
	mu sync.Mutex

	signInResult *domain.Identity
	signInErr    error
	signInCalls  int
	signInEmail  string

	idTokenResult *domain.Identity
	idTokenErr    error
	idTokenCalls  int

	createResult *domain.Identity
	createErr    error
	createCalls  int
	createEmail  string

	reauthErr      error
	reauthCalls    int
	reauthPassword string

	displayErr     error
	displayUpdates []port.DisplayProfileUpdate

	updateEmailErr  error
	updatedEmail    string
	updateEmailUID  string
	updateEmailCall int

	updatePasswordErr   error
	updatedPassword     string
	updatePasswordCalls int

	resetErr    error
	resetEmails []string

	deleteErr   error
	deletedUIDs []string

	signOutErr   error
	signOutCalls int

	current *domain.Identity
	changes chan port.AuthState
}

func newStubIdentityProvider() *stubIdentityProvider {
	return &stubIdentityProvider{changes: make(chan port.AuthState, 8)}
}

func (p *stubIdentityProvider) SignInWithPassword(_ context.Context, email, _ string) (*domain.Identity, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.signInCalls++
	p.signInEmail = email
	if p.signInErr != nil {
		return nil, p.signInErr
	}
	identity := *p.signInResult
	p.current = &identity
	return &identity, nil
}

func (p *stubIdentityProvider) SignInWithIDToken(context.Context, string) (*domain.Identity, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.idTokenCalls++
	if p.idTokenErr != nil {
		return nil, p.idTokenErr
	}
	identity := *p.idTokenResult
	p.current = &identity
	return &identity, nil
}

func (p *stubIdentityProvider) CreateUser(_ context.Context, email, _ string) (*domain.Identity, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.createCalls++
	p.createEmail = email
	if p.createErr != nil {
		return nil, p.createErr
	}
	identity := *p.createResult
	p.current = &identity
	return &identity, nil
}

func (p *stubIdentityProvider) Reauthenticate(_ context.Context, _, password string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.reauthCalls++
	p.reauthPassword = password
	return p.reauthErr
}

func (p *stubIdentityProvider) UpdateDisplayProfile(_ context.Context, _ string, update port.DisplayProfileUpdate) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.displayUpdates = append(p.displayUpdates, update)
	return p.displayErr
}

func (p *stubIdentityProvider) UpdateEmail(_ context.Context, uid, newEmail string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.updateEmailCall++
	p.updateEmailUID = uid
	if p.updateEmailErr != nil {
		return p.updateEmailErr
	}
	p.updatedEmail = newEmail
	return nil
}

func (p *stubIdentityProvider) UpdatePassword(_ context.Context, _, newPassword string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.updatePasswordCalls++
	if p.updatePasswordErr != nil {
		return p.updatePasswordErr
	}
	p.updatedPassword = newPassword
	return nil
}

func (p *stubIdentityProvider) SendPasswordReset(_ context.Context, email string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.resetEmails = append(p.resetEmails, email)
	return p.resetErr
}

func (p *stubIdentityProvider) DeleteUser(_ context.Context, uid string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.deletedUIDs = append(p.deletedUIDs, uid)
	return p.deleteErr
}

func (p *stubIdentityProvider) SignOut(context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.signOutCalls++
	if p.signOutErr != nil {
		return p.signOutErr
	}
	p.current = nil
	return nil
}

func (p *stubIdentityProvider) CurrentIdentity() *domain.Identity {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.current == nil {
		return nil
	}
	identity := *p.current
	return &identity
}

func (p *stubIdentityProvider) AuthStateChanges() <-chan port.AuthState {
	return p.changes
}

func (p *stubIdentityProvider) emit(identity *domain.Identity) {
	p.changes <- port.AuthState{Identity: identity}
}

type stubProfileRepo struct {
	mu sync.Mutex

	getResult *domain.UserProfile
	getErr    error
	getCalls  int
	getLastID string

	putErr   error
	putCalls int
	lastPut  domain.UserProfile

	patchErr    error
	patchCalls  int
	lastPatch   domain.ProfilePatch
	lastPatchID string

	deleteErr   error
	deleteCalls int
	deletedID   string

	findResult *domain.UserProfile
	findErr    error
	findEmail  string
}

func (r *stubProfileRepo) Get(_ context.Context, id string) (*domain.UserProfile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.getCalls++
	r.getLastID = id
	if r.getErr != nil {
		return nil, r.getErr
	}
	profile := *r.getResult
	return &profile, nil
}

func (r *stubProfileRepo) Put(_ context.Context, profile domain.UserProfile) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.putCalls++
	r.lastPut = profile
	return r.putErr
}

func (r *stubProfileRepo) Patch(_ context.Context, id string, patch domain.ProfilePatch) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.patchCalls++
	r.lastPatchID = id
	r.lastPatch = patch
	return r.patchErr
}

func (r *stubProfileRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.deleteCalls++
	r.deletedID = id
	return r.deleteErr
}

func (r *stubProfileRepo) FindByEmail(_ context.Context, email string) (*domain.UserProfile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.findEmail = email
	if r.findErr != nil {
		return nil, r.findErr
	}
	profile := *r.findResult
	return &profile, nil
}

type stubCredentialStore struct {
	mu sync.Mutex

	loaded  domain.Credentials
	loadErr error

	saveErr   error
	saveCalls int
	saved     domain.Credentials

	clearErr   error
	clearCalls int
}

func (s *stubCredentialStore) Load(context.Context) (domain.Credentials, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.loadErr != nil {
		return domain.Credentials{}, s.loadErr
	}
	return s.loaded, nil
}

func (s *stubCredentialStore) Save(_ context.Context, creds domain.Credentials) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saveCalls++
	if s.saveErr != nil {
		return s.saveErr
	}
	s.saved = creds
	s.loaded = creds
	return nil
}

func (s *stubCredentialStore) Clear(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clearCalls++
	if s.clearErr != nil {
		return s.clearErr
	}
	s.loaded = domain.Credentials{}
	return nil
}

type stubReporter struct {
	mu      sync.Mutex
	reports []fault.Details
}

func (r *stubReporter) Report(_ context.Context, details fault.Details, _ error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.reports = append(r.reports, details)
}

func (r *stubReporter) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.reports)
}
