package otp

import (
	"context"
	"errors"
	"sync"
	"time"
)

const (
	// DefaultTick is the length of one cooldown unit.
	DefaultTick = time.Second
	// DefaultVerifyTimeout bounds a single verification attempt.
	DefaultVerifyTimeout = 10 * time.Second
)

var errMissingVerifier = errors.New("otp: verifier is required")

// SessionOptions configures a Session.
// A zero Cooldown selects DefaultCooldown; a negative one disables it.
type SessionOptions struct {
	ID            string
	Purpose       Purpose
	Email         string
	Length        int
	Cooldown      int
	Tick          time.Duration
	VerifyTimeout time.Duration
	Verifier      Verifier
	Sender        CodeSender
	Clock         Clock
	Hook          UpdateHook
	Telemetry     Telemetry
}

// Session owns one Entry and serialises every event against it. Verification
// runs asynchronously; its result is applied only if no newer submission
// started and the session is still open.
type Session struct {
	opts SessionOptions

	mu         sync.Mutex
	entry      Entry
	generation uint64
	closed     bool
	ticker     Ticker

	ctx    context.Context
	cancel context.CancelFunc
}

// NewSession creates a session and starts its cooldown.
func NewSession(opts SessionOptions) (*Session, error) {
	if opts.Verifier == nil {
		return nil, errMissingVerifier
	}
	if opts.Length <= 0 {
		opts.Length = DefaultLength
	}
	switch {
	case opts.Cooldown == 0:
		opts.Cooldown = DefaultCooldown
	case opts.Cooldown < 0:
		opts.Cooldown = 0
	}
	if opts.Tick <= 0 {
		opts.Tick = DefaultTick
	}
	if opts.VerifyTimeout <= 0 {
		opts.VerifyTimeout = DefaultVerifyTimeout
	}
	if opts.Clock == nil {
		opts.Clock = SystemClock()
	}
	if opts.Hook == nil {
		opts.Hook = noopHook{}
	}
	opts.Telemetry = normalizeTelemetry(opts.Telemetry)

	ctx, cancel := context.WithCancel(context.Background())
	s := &Session{
		opts:   opts,
		entry:  NewEntry(opts.Length, opts.Cooldown),
		ctx:    ctx,
		cancel: cancel,
	}
	s.mu.Lock()
	s.startTickerLocked()
	s.mu.Unlock()
	return s, nil
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.opts.ID }

// Purpose returns what the session verifies.
func (s *Session) Purpose() Purpose { return s.opts.Purpose }

// Snapshot returns the current state.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// Closed reports whether Close has been called.
func (s *Session) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// TypeDigit applies a keystroke to slot index.
func (s *Session) TypeDigit(ctx context.Context, index int, char string) (Snapshot, error) {
	return s.edit(ctx, "type", func(e Entry) (Entry, bool) { return e.TypeDigit(index, char) })
}

// Backspace applies a backspace to slot index.
func (s *Session) Backspace(ctx context.Context, index int) (Snapshot, error) {
	return s.edit(ctx, "backspace", func(e Entry) (Entry, bool) { return e.Backspace(index) })
}

// Paste distributes text over the slots.
func (s *Session) Paste(ctx context.Context, text string) (Snapshot, error) {
	return s.edit(ctx, "paste", func(e Entry) (Entry, bool) { return e.Paste(text) })
}

func (s *Session) edit(ctx context.Context, reason string, fn func(Entry) (Entry, bool)) (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return s.snapshotLocked(), ErrSessionClosed
	}
	next, changed := fn(s.entry)
	if changed {
		s.entry = next
		s.notifyLocked(ctx, reason)
	}
	return s.snapshotLocked(), nil
}

// Submit starts verification of a complete code. The returned channel
// receives the resolved snapshot once, or is closed without a value when the
// result is discarded.
func (s *Session) Submit(ctx context.Context) (Snapshot, <-chan Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return s.snapshotLocked(), nil, ErrSessionClosed
	}
	next, code, ok := s.entry.Submit()
	if !ok {
		return s.snapshotLocked(), nil, s.submitError()
	}
	s.entry = next
	s.generation++
	generation := s.generation

	base := context.WithoutCancel(ctx)
	verifyCtx, cancel := context.WithTimeout(base, s.opts.VerifyTimeout)
	stop := context.AfterFunc(s.ctx, cancel)
	done := make(chan Snapshot, 1)
	go s.verify(verifyCtx, func() { stop(); cancel() }, generation, code, done)

	s.notifyLocked(ctx, "submit")
	s.opts.Telemetry.Record(ctx, "otp.submit", s.payloadLocked())
	return s.snapshotLocked(), done, nil
}

func (s *Session) submitError() error {
	switch s.entry.Status() {
	case StatusVerified:
		return ErrAlreadyVerified
	case StatusEntering:
		return ErrIncompleteCode
	case StatusError:
		if !s.entry.Filled() {
			return ErrIncompleteCode
		}
	}
	return ErrNotSubmittable
}

func (s *Session) verify(ctx context.Context, release func(), generation uint64, code string, done chan<- Snapshot) {
	defer release()
	result := make(chan error, 1)
	go func() { result <- s.opts.Verifier.Verify(ctx, code) }()

	var err error
	select {
	case err = <-result:
	case <-ctx.Done():
		err = ctx.Err()
	}
	if errors.Is(err, context.DeadlineExceeded) {
		err = ErrVerifyTimeout
	}
	s.resolve(ctx, generation, err, done)
}

func (s *Session) resolve(ctx context.Context, generation uint64, err error, done chan<- Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	defer close(done)
	if s.closed || generation != s.generation {
		return
	}
	next, ok := s.entry.Resolve(err)
	if !ok {
		return
	}
	s.entry = next
	reason := "verified"
	if err != nil {
		reason = "failed"
	}
	s.notifyLocked(ctx, reason)
	payload := s.payloadLocked()
	if err != nil {
		payload["error"] = err.Error()
	}
	s.opts.Telemetry.Record(ctx, "otp."+reason, payload)
	done <- s.snapshotLocked()
}

// Resend requests a new code once the cooldown has elapsed. The cooldown
// restarts before the sender runs; a sender error leaves the state as is.
func (s *Session) Resend(ctx context.Context) (Snapshot, error) {
	s.mu.Lock()
	if s.closed {
		snap := s.snapshotLocked()
		s.mu.Unlock()
		return snap, ErrSessionClosed
	}
	next, ok := s.entry.Resend()
	if !ok {
		snap := s.snapshotLocked()
		err := ErrCooldownActive
		if s.entry.Status() == StatusVerified {
			err = ErrAlreadyVerified
		}
		s.mu.Unlock()
		return snap, err
	}
	s.entry = next
	s.startTickerLocked()
	s.notifyLocked(ctx, "resend")
	s.opts.Telemetry.Record(ctx, "otp.resend", s.payloadLocked())
	snap := s.snapshotLocked()
	s.mu.Unlock()

	if s.opts.Sender != nil {
		if err := s.opts.Sender.SendCode(ctx); err != nil {
			return snap, err
		}
	}
	return snap, nil
}

// Close stops the ticker and discards any in-flight verification. It is safe
// to call more than once.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	s.generation++
	s.stopTickerLocked()
	s.cancel()
}

func (s *Session) startTickerLocked() {
	if s.closed || s.ticker != nil || s.entry.Cooldown().Ready() {
		return
	}
	ticker := s.opts.Clock.NewTicker(s.opts.Tick)
	s.ticker = ticker
	go s.runTicker(ticker)
}

func (s *Session) stopTickerLocked() {
	if s.ticker != nil {
		s.ticker.Stop()
		s.ticker = nil
	}
}

func (s *Session) runTicker(ticker Ticker) {
	for {
		select {
		case <-s.ctx.Done():
			return
		case <-ticker.C():
			if !s.tick(ticker) {
				return
			}
		}
	}
}

// tick applies one cooldown unit and reports whether the ticker should keep running.
func (s *Session) tick(ticker Ticker) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || s.ticker != ticker {
		return false
	}
	next, changed := s.entry.Tick()
	if changed {
		s.entry = next
		s.notifyLocked(s.ctx, "tick")
	}
	if s.entry.Cooldown().Ready() {
		s.stopTickerLocked()
		return false
	}
	return true
}

func (s *Session) notifyLocked(ctx context.Context, reason string) {
	event := SessionEvent{
		SessionID: s.opts.ID,
		Reason:    reason,
		Snapshot:  s.snapshotLocked(),
	}
	if err := s.opts.Hook.SessionUpdated(ctx, event); err != nil {
		s.opts.Telemetry.Record(ctx, "otp.hook.error", map[string]any{
			"session_id": s.opts.ID,
			"reason":     reason,
			"error":      err.Error(),
		})
	}
}

func (s *Session) snapshotLocked() Snapshot {
	snap := s.entry.Snapshot()
	snap.SessionID = s.opts.ID
	snap.Purpose = s.opts.Purpose
	snap.Email = s.opts.Email
	if snap.Status == StatusVerified {
		snap.Next = s.opts.Purpose.NextRoute()
	}
	return snap
}

func (s *Session) payloadLocked() map[string]any {
	return map[string]any{
		"session_id": s.opts.ID,
		"purpose":    string(s.opts.Purpose),
		"status":     string(s.entry.Status()),
	}
}
