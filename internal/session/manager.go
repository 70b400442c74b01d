package session

import (
	"context"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/salmacher/Rag-project/internal/api"
)

// Status is the session lifecycle state.
type Status int

const (
	StatusUnauthenticated Status = iota
	StatusVerifying
	StatusAuthenticated
)

func (s Status) String() string {
	switch s {
	case StatusVerifying:
		return "verifying"
	case StatusAuthenticated:
		return "authenticated"
	default:
		return "unauthenticated"
	}
}

// Manager owns the authentication session: the persisted credential, the
// verified profile, and the Unauthenticated -> Verifying -> Authenticated
// machine. All state mutation happens on the event loop via Update; the
// returned tea.Cmd thunks only perform network and file I/O.
//
// Invariant: the profile is non-nil exactly when status is Authenticated.
type Manager struct {
	ctx    context.Context
	client *api.Client
	store  *Store
	log    *zap.Logger

	status  Status
	profile *api.UserProfile
	lastErr error

	// seq invalidates in-flight verifications: a result tagged with an older
	// sequence is discarded, which covers both supersession and logout.
	seq    uint64
	flight singleflight.Group
}

// authResultMsg carries the outcome of a bootstrap, login or register flow
// back onto the event loop.
type authResultMsg struct {
	seq     uint64
	profile *api.UserProfile
	err     error
	// silent failures (bootstrap verification) reset the session without
	// surfacing an error to the user.
	silent bool
}

func NewManager(ctx context.Context, client *api.Client, store *Store, log *zap.Logger) *Manager {
	return &Manager{
		ctx:    ctx,
		client: client,
		store:  store,
		log:    log,
		status: StatusUnauthenticated,
	}
}

func (m *Manager) Status() Status { return m.status }

// CurrentUser returns the verified profile, or nil unless Authenticated.
func (m *Manager) CurrentUser() *api.UserProfile { return m.profile }

// Err returns the last login/register failure for display. Verification
// failures recover silently and never appear here.
func (m *Manager) Err() error { return m.lastErr }

func (m *Manager) DismissErr() { m.lastErr = nil }

// Bootstrap verifies any persisted credential. With no token (or one already
// expired by its own exp claim) the session stays Unauthenticated with no
// network call. A second call while Verifying is a no-op.
func (m *Manager) Bootstrap() tea.Cmd {
	if m.status == StatusVerifying {
		return nil
	}
	token := m.store.Token()
	if token == "" {
		return nil
	}
	if tokenExpired(token, time.Now()) {
		m.log.Info("persisted token expired, discarding")
		_ = m.store.Clear()
		return nil
	}

	m.status = StatusVerifying
	m.seq++
	seq := m.seq
	return func() tea.Msg {
		profile, err := m.verify()
		return authResultMsg{seq: seq, profile: profile, err: err, silent: true}
	}
}

// Login exchanges credentials, persists the token, then verifies the profile.
// Rejected while a verification is already in flight. On a rejected exchange
// nothing is persisted and the failure is surfaced via Err.
func (m *Manager) Login(email, password string) tea.Cmd {
	if m.status == StatusVerifying {
		return nil
	}
	m.status = StatusVerifying
	m.lastErr = nil
	m.seq++
	login := m.loginFunc(m.seq, email, password)
	return func() tea.Msg {
		return login()
	}
}

// Register creates the account, then runs the login flow with the same
// credentials. A rejected registration leaves the session untouched.
func (m *Manager) Register(email, password, fullName string) tea.Cmd {
	if m.status == StatusVerifying {
		return nil
	}
	m.status = StatusVerifying
	m.lastErr = nil
	m.seq++
	seq := m.seq
	login := m.loginFunc(seq, email, password)
	return func() tea.Msg {
		if err := m.client.Register(m.ctx, email, password, fullName); err != nil {
			return authResultMsg{seq: seq, err: err}
		}
		return login()
	}
}

// loginFunc is the shared exchange-persist-verify step used by Login and
// Register, bound to an already-claimed sequence number.
func (m *Manager) loginFunc(seq uint64, email, password string) func() tea.Msg {
	return func() tea.Msg {
		tok, err := m.client.Login(m.ctx, email, password)
		if err != nil {
			return authResultMsg{seq: seq, err: err}
		}
		if err := m.store.Save(tok.AccessToken); err != nil {
			return authResultMsg{seq: seq, err: err}
		}
		profile, err := m.verify()
		if err != nil {
			// The token exchanged fine but cannot be verified; do not keep a
			// credential the session cannot stand behind.
			_ = m.store.Clear()
			return authResultMsg{seq: seq, err: err}
		}
		return authResultMsg{seq: seq, profile: profile}
	}
}

// Logout synchronously clears the profile, the token and the durable
// credential. It never fails and needs no network. Bumping seq discards any
// verification still in flight.
func (m *Manager) Logout() {
	m.seq++
	m.status = StatusUnauthenticated
	m.profile = nil
	m.lastErr = nil
	if err := m.store.Clear(); err != nil {
		m.log.Warn("clearing credential failed", zap.Error(err))
	}
	m.log.Info("session closed")
}

// Update applies auth results produced by this manager's commands. Messages
// from superseded requests are discarded.
func (m *Manager) Update(msg tea.Msg) tea.Cmd {
	res, ok := msg.(authResultMsg)
	if !ok {
		return nil
	}
	if res.seq != m.seq || m.status != StatusVerifying {
		m.log.Info("discarding stale verification result")
		return nil
	}
	if res.err != nil {
		m.status = StatusUnauthenticated
		m.profile = nil
		if res.silent {
			// Bootstrap verification failed: drop the credential and recover
			// quietly, exactly like a first run with no token.
			_ = m.store.Clear()
			m.log.Info("verification failed, session reset", zap.Error(res.err))
		} else {
			m.lastErr = res.err
			m.log.Info("authentication failed", zap.Error(res.err))
		}
		return nil
	}
	m.status = StatusAuthenticated
	m.profile = res.profile
	m.log.Info("session established", zap.String("email", res.profile.Email))
	return nil
}

// verify fetches the profile for the current token. Concurrent verifications
// coalesce into a single request.
func (m *Manager) verify() (*api.UserProfile, error) {
	v, err, _ := m.flight.Do("verify", func() (interface{}, error) {
		return m.client.CurrentUser(m.ctx)
	})
	if err != nil {
		return nil, fmt.Errorf("verify session: %w", err)
	}
	return v.(*api.UserProfile), nil
}

// tokenExpired inspects the token's own exp claim without verifying the
// signature (the client has no key). Tokens without a readable exp are left
// for the backend to judge.
func tokenExpired(token string, now time.Time) bool {
	parsed, _, err := jwt.NewParser().ParseUnverified(token, jwt.MapClaims{})
	if err != nil {
		return false
	}
	exp, err := parsed.Claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}
	return exp.Before(now)
}
