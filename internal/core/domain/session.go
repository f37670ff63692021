package domain

// Identity is the opaque handle issued by the identity provider for an
// authenticated principal. It carries only what the provider knows; the
// denormalized UserProfile lives in the profile store.
type Identity struct {
	UID           string
	Email         string
	DisplayName   string
	PhotoURL      string
	EmailVerified bool
}

// Credentials is the locally persisted remember-me snapshot.
type Credentials struct {
	Email      string
	RememberMe bool
}

// SessionState enumerates the logical session lifecycle states.
type SessionState string

const (
	// SessionInitializing holds until the first auth-state event arrives.
	SessionInitializing    SessionState = "initializing"
	SessionUnauthenticated SessionState = "unauthenticated"
	SessionAuthenticated   SessionState = "authenticated"
)

// Session is a read-only snapshot of the session context. Profile is only
// populated while Identity is present.
type Session struct {
	State     SessionState
	Identity  *Identity
	Profile   *UserProfile
	IsLoading bool
}
