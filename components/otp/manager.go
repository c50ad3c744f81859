package otp

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Purpose names what a verification session unlocks.
type Purpose string

const (
	PurposeVerifyEmail   Purpose = "verify_email"
	PurposePasswordReset Purpose = "password_reset"
)

// Valid reports whether p is a known purpose.
func (p Purpose) Valid() bool {
	return p == PurposeVerifyEmail || p == PurposePasswordReset
}

// NextRoute is where the user goes after a successful verification.
func (p Purpose) NextRoute() string {
	if p == PurposePasswordReset {
		return "/auth/reset-password"
	}
	return "/auth/login"
}

var (
	// ErrSessionNotFound is returned when no open session has the requested id.
	ErrSessionNotFound = errors.New("otp: session not found")
	// ErrUnknownPurpose is returned when starting a session with an unsupported purpose.
	ErrUnknownPurpose = errors.New("otp: unknown purpose")
	errMissingIssuer  = errors.New("otp: issuer is required")
)

// ManagerOptions configures a Manager. A positive IdleTTL lets Sweep close
// sessions that saw no activity for that long; cooldown ticks do not count
// as activity.
type ManagerOptions struct {
	Issuer        Issuer
	Length        int
	Cooldown      int
	Tick          time.Duration
	VerifyTimeout time.Duration
	Clock         Clock
	Hook          UpdateHook
	Telemetry     Telemetry
	NewID         func() string
	IdleTTL       time.Duration
	Now           func() time.Time
}

// Manager tracks open sessions by id and binds each to the Issuer that
// produced its code. Sessions leave the manager once verified, when closed,
// or when Sweep finds them idle.
type Manager struct {
	opts     ManagerOptions
	mu       sync.RWMutex
	sessions map[string]*trackedSession
}

type trackedSession struct {
	session    *Session
	lastActive time.Time
}

// NewManager builds a Manager. Without an Issuer it falls back to a
// MemoryIssuer that discards deliveries.
func NewManager(opts ManagerOptions) *Manager {
	if opts.Issuer == nil {
		opts.Issuer = NewMemoryIssuer(WithCodeLength(opts.Length))
	}
	if opts.NewID == nil {
		opts.NewID = func() string { return uuid.NewString() }
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	opts.Telemetry = normalizeTelemetry(opts.Telemetry)
	return &Manager{
		opts:     opts,
		sessions: map[string]*trackedSession{},
	}
}

// Start issues a code to email and opens a session to verify it.
func (m *Manager) Start(ctx context.Context, purpose Purpose, email string) (*Session, error) {
	if m.opts.Issuer == nil {
		return nil, errMissingIssuer
	}
	if !purpose.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrUnknownPurpose, purpose)
	}
	email = normalizeEmail(email)
	if err := m.opts.Issuer.Issue(ctx, email); err != nil {
		return nil, err
	}
	issuer := m.opts.Issuer
	session, err := NewSession(SessionOptions{
		ID:            m.opts.NewID(),
		Purpose:       purpose,
		Email:         email,
		Length:        m.opts.Length,
		Cooldown:      m.opts.Cooldown,
		Tick:          m.opts.Tick,
		VerifyTimeout: m.opts.VerifyTimeout,
		Clock:         m.opts.Clock,
		Hook:          Hooks{m.opts.Hook, managerHook{m: m}},
		Telemetry:     m.opts.Telemetry,
		Verifier: VerifierFunc(func(ctx context.Context, code string) error {
			return issuer.Verify(ctx, email, code)
		}),
		Sender: CodeSenderFunc(func(ctx context.Context) error {
			return issuer.Issue(ctx, email)
		}),
	})
	if err != nil {
		return nil, err
	}
	m.mu.Lock()
	m.sessions[session.ID()] = &trackedSession{session: session, lastActive: m.opts.Now()}
	m.mu.Unlock()
	m.opts.Telemetry.Record(ctx, "otp.session.start", map[string]any{
		"session_id": session.ID(),
		"purpose":    string(purpose),
	})
	return session, nil
}

// Get returns the open session with id.
func (m *Manager) Get(id string) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	tracked, ok := m.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return tracked.session, nil
}

// Close closes and forgets the session with id.
func (m *Manager) Close(id string) error {
	m.mu.Lock()
	tracked, ok := m.sessions[id]
	delete(m.sessions, id)
	m.mu.Unlock()
	if !ok {
		return ErrSessionNotFound
	}
	tracked.session.Close()
	return nil
}

// CloseAll closes every open session.
func (m *Manager) CloseAll() {
	m.mu.Lock()
	sessions := m.sessions
	m.sessions = map[string]*trackedSession{}
	m.mu.Unlock()
	for _, tracked := range sessions {
		tracked.session.Close()
	}
}

// Sweep closes and forgets the sessions idle for longer than IdleTTL at now
// and returns how many it removed. It does nothing without an IdleTTL.
func (m *Manager) Sweep(now time.Time) int {
	if m.opts.IdleTTL <= 0 {
		return 0
	}
	var expired []*Session
	m.mu.Lock()
	for id, tracked := range m.sessions {
		if now.Sub(tracked.lastActive) > m.opts.IdleTTL {
			expired = append(expired, tracked.session)
			delete(m.sessions, id)
		}
	}
	m.mu.Unlock()
	for _, session := range expired {
		session.Close()
		m.opts.Telemetry.Record(context.Background(), "otp.session.expired", map[string]any{
			"session_id": session.ID(),
			"purpose":    string(session.Purpose()),
		})
	}
	return len(expired)
}

// RunJanitor sweeps idle sessions every interval until ctx ends. A
// non-positive interval defaults to half the IdleTTL.
func (m *Manager) RunJanitor(ctx context.Context, interval time.Duration) {
	if m.opts.IdleTTL <= 0 {
		return
	}
	if interval <= 0 {
		interval = m.opts.IdleTTL / 2
	}
	clock := m.opts.Clock
	if clock == nil {
		clock = SystemClock()
	}
	ticker := clock.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C():
			m.Sweep(m.opts.Now())
		}
	}
}

// Len returns the number of open sessions.
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// managerHook keeps the manager's view of a session current: activity
// refreshes its idle clock and verification evicts it. It runs under the
// session lock, so the evicted session is closed once that lock is released.
type managerHook struct {
	m *Manager
}

func (h managerHook) SessionUpdated(_ context.Context, event SessionEvent) error {
	h.m.mu.Lock()
	tracked, ok := h.m.sessions[event.SessionID]
	if !ok {
		h.m.mu.Unlock()
		return nil
	}
	switch event.Reason {
	case "verified":
		delete(h.m.sessions, event.SessionID)
		h.m.mu.Unlock()
		go tracked.session.Close()
		return nil
	case "tick":
	default:
		tracked.lastActive = h.m.opts.Now()
	}
	h.m.mu.Unlock()
	return nil
}
