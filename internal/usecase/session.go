package usecase

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"

	"github.com/NazwanSM/nusavarta-auth/internal/core/domain"
	"github.com/NazwanSM/nusavarta-auth/internal/core/port"
	"github.com/NazwanSM/nusavarta-auth/internal/repository"
)

// SessionManager tracks the session lifecycle: Initializing until the first
// auth-state event, then Unauthenticated or Authenticated as the identity
// provider reports. It is constructed explicitly and passed to consumers;
// there is no ambient global session.
//
// A single watcher goroutine consumes the provider's auth-state stream and
// is the only writer of the session state. Profile loads triggered by state
// changes resolve asynchronously; a generation counter discards results that
// arrive after a newer state change, so a late fetch can never resurrect a
// stale session.
type SessionManager struct {
	auth     *AuthService
	profiles port.ProfileRepository
	identity port.IdentityProvider
	logger   *zap.Logger

	mu          sync.RWMutex
	state       domain.SessionState
	current     *domain.Identity
	profile     *domain.UserProfile
	generation  uint64
	initialized bool
	pendingLoad bool
	opsInFlight int

	done      chan struct{}
	closeOnce sync.Once
	wg        sync.WaitGroup
}

func NewSessionManager(
	auth *AuthService,
	profiles port.ProfileRepository,
	identity port.IdentityProvider,
	logger *zap.Logger,
) *SessionManager {
	m := &SessionManager{
		auth:     auth,
		profiles: profiles,
		identity: identity,
		logger:   logger,
		state:    domain.SessionInitializing,
		done:     make(chan struct{}),
	}

	m.wg.Add(1)
	go m.watch()

	return m
}

// watch is the sole writer of session state.
func (m *SessionManager) watch() {
	defer m.wg.Done()

	changes := m.identity.AuthStateChanges()
	for {
		select {
		case <-m.done:
			return
		case state, ok := <-changes:
			if !ok {
				return
			}
			m.applyAuthState(state)
		}
	}
}

func (m *SessionManager) applyAuthState(state port.AuthState) {
	m.mu.Lock()
	m.generation++
	gen := m.generation
	m.initialized = true

	if state.Identity == nil {
		m.state = domain.SessionUnauthenticated
		m.current = nil
		m.profile = nil
		m.pendingLoad = false
		m.mu.Unlock()
		return
	}

	m.state = domain.SessionAuthenticated
	m.current = state.Identity
	m.profile = nil
	m.pendingLoad = true
	uid := state.Identity.UID
	m.mu.Unlock()

	m.wg.Add(1)
	go m.loadProfile(gen, uid)
}

// loadProfile resolves the profile for the state change identified by gen.
// Results for superseded generations are dropped.
func (m *SessionManager) loadProfile(gen uint64, uid string) {
	defer m.wg.Done()

	profile, err := m.profiles.Get(context.Background(), uid)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		m.logger.Warn("session profile load failed", zap.String("uid", uid), zap.Error(err))
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.generation != gen {
		return
	}
	m.pendingLoad = false
	if err == nil {
		m.profile = profile
	}
}

// Snapshot returns a point-in-time copy of the session.
func (m *SessionManager) Snapshot() domain.Session {
	m.mu.RLock()
	defer m.mu.RUnlock()

	session := domain.Session{
		State:     m.state,
		IsLoading: !m.initialized || m.pendingLoad || m.opsInFlight > 0,
	}
	if m.current != nil {
		identity := *m.current
		session.Identity = &identity
	}
	if m.profile != nil {
		profile := *m.profile
		session.Profile = &profile
	}
	return session
}

func (m *SessionManager) beginOp() {
	m.mu.Lock()
	m.opsInFlight++
	m.mu.Unlock()
}

func (m *SessionManager) endOp() {
	m.mu.Lock()
	m.opsInFlight--
	m.mu.Unlock()
}

// Login runs the email/password flow. The session transition itself arrives
// through the auth-state stream, not from this call.
func (m *SessionManager) Login(ctx context.Context, input LoginInput) AuthResult {
	m.beginOp()
	defer m.endOp()
	return m.auth.LoginWithEmail(ctx, input)
}

func (m *SessionManager) Register(ctx context.Context, input RegisterInput) AuthResult {
	m.beginOp()
	defer m.endOp()
	return m.auth.RegisterWithEmail(ctx, input)
}

func (m *SessionManager) LoginWithGoogle(ctx context.Context, idToken string) AuthResult {
	m.beginOp()
	defer m.endOp()
	return m.auth.LoginWithGoogle(ctx, idToken)
}

func (m *SessionManager) Logout(ctx context.Context) AuthResult {
	m.beginOp()
	defer m.endOp()
	return m.auth.Logout(ctx)
}

// ResetPassword toggles only its own loading; it never changes session state.
func (m *SessionManager) ResetPassword(ctx context.Context, email string) AuthResult {
	m.beginOp()
	defer m.endOp()
	return m.auth.ResetPassword(ctx, email)
}

func (m *SessionManager) SavedCredentials(ctx context.Context) domain.Credentials {
	m.beginOp()
	defer m.endOp()
	return m.auth.SavedCredentials(ctx)
}

// Close detaches from the auth-state stream and waits for in-flight profile
// loads to settle.
func (m *SessionManager) Close() {
	m.closeOnce.Do(func() {
		close(m.done)
	})
	m.wg.Wait()
}
