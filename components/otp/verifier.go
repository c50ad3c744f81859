package otp

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"math/big"
	"strings"
	"sync"

	"golang.org/x/crypto/bcrypt"
)

var (
	// ErrIncompleteCode is returned when a submit is attempted before every slot is filled.
	ErrIncompleteCode = errors.New("otp: verification code incomplete")
	// ErrInvalidCode is returned by verifiers when the code does not match.
	ErrInvalidCode = errors.New("otp: invalid verification code")
	// ErrVerifyTimeout is reported when verification outlives the session's timeout.
	ErrVerifyTimeout = errors.New("otp: verification timed out")
	// ErrCooldownActive is returned when a resend is requested too early.
	ErrCooldownActive = errors.New("otp: resend cooldown active")
	// ErrAlreadyVerified is returned for operations a verified session refuses.
	ErrAlreadyVerified = errors.New("otp: session already verified")
	// ErrNotSubmittable is returned when the session is not in a submittable state.
	ErrNotSubmittable = errors.New("otp: session cannot be submitted in its current state")
	// ErrSessionClosed is returned for operations on a closed session.
	ErrSessionClosed = errors.New("otp: session closed")
	// ErrNoCodeIssued is returned when verifying an address that never received a code.
	ErrNoCodeIssued = errors.New("otp: no code issued for address")
)

// Verifier decides whether a submitted code is correct. Implementations should
// honour ctx cancellation; a nil error means the code is valid.
type Verifier interface {
	Verify(ctx context.Context, code string) error
}

// VerifierFunc adapts a function to Verifier.
type VerifierFunc func(ctx context.Context, code string) error

// Verify implements Verifier.
func (f VerifierFunc) Verify(ctx context.Context, code string) error { return f(ctx, code) }

// CodeSender delivers a fresh code when the user asks for a resend.
type CodeSender interface {
	SendCode(ctx context.Context) error
}

// CodeSenderFunc adapts a function to CodeSender.
type CodeSenderFunc func(ctx context.Context) error

// SendCode implements CodeSender.
func (f CodeSenderFunc) SendCode(ctx context.Context) error { return f(ctx) }

// Issuer generates codes for an address and checks them later.
type Issuer interface {
	Issue(ctx context.Context, email string) error
	Verify(ctx context.Context, email, code string) error
}

// DeliveryFunc hands an issued code to whatever transport reaches the user.
type DeliveryFunc func(ctx context.Context, email, code string) error

// MemoryIssuer keeps bcrypt hashes of issued codes in memory. A code is valid
// once: a successful Verify forgets it.
type MemoryIssuer struct {
	mu       sync.Mutex
	hashes   map[string][]byte
	length   int
	cost     int
	random   io.Reader
	delivery DeliveryFunc
}

// MemoryIssuerOption customises a MemoryIssuer.
type MemoryIssuerOption func(*MemoryIssuer)

// WithCodeLength sets the number of digits per code.
func WithCodeLength(length int) MemoryIssuerOption {
	return func(m *MemoryIssuer) {
		if length > 0 {
			m.length = length
		}
	}
}

// WithHashCost overrides the bcrypt cost.
func WithHashCost(cost int) MemoryIssuerOption {
	return func(m *MemoryIssuer) {
		if cost >= bcrypt.MinCost && cost <= bcrypt.MaxCost {
			m.cost = cost
		}
	}
}

// WithDelivery sets the function that delivers issued codes.
func WithDelivery(fn DeliveryFunc) MemoryIssuerOption {
	return func(m *MemoryIssuer) {
		if fn != nil {
			m.delivery = fn
		}
	}
}

// WithRandom overrides the entropy source used to draw digits.
func WithRandom(r io.Reader) MemoryIssuerOption {
	return func(m *MemoryIssuer) {
		if r != nil {
			m.random = r
		}
	}
}

// NewMemoryIssuer builds an issuer that draws digits from crypto/rand.
func NewMemoryIssuer(opts ...MemoryIssuerOption) *MemoryIssuer {
	m := &MemoryIssuer{
		hashes:   map[string][]byte{},
		length:   DefaultLength,
		cost:     bcrypt.DefaultCost,
		random:   rand.Reader,
		delivery: func(context.Context, string, string) error { return nil },
	}
	for _, opt := range opts {
		if opt != nil {
			opt(m)
		}
	}
	return m
}

// Issue draws a new code for email, replacing any previous one, and delivers it.
func (m *MemoryIssuer) Issue(ctx context.Context, email string) error {
	email = normalizeEmail(email)
	if email == "" {
		return fmt.Errorf("otp: issue code: email is required")
	}
	code, err := m.draw()
	if err != nil {
		return fmt.Errorf("otp: draw code: %w", err)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(code), m.cost)
	if err != nil {
		return fmt.Errorf("otp: hash code: %w", err)
	}
	m.mu.Lock()
	m.hashes[email] = hash
	m.mu.Unlock()
	if err := m.delivery(ctx, email, code); err != nil {
		return fmt.Errorf("otp: deliver code: %w", err)
	}
	return nil
}

// Verify checks code against the last code issued to email.
func (m *MemoryIssuer) Verify(ctx context.Context, email, code string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	email = normalizeEmail(email)
	m.mu.Lock()
	hash, ok := m.hashes[email]
	m.mu.Unlock()
	if !ok {
		return ErrNoCodeIssued
	}
	if err := bcrypt.CompareHashAndPassword(hash, []byte(code)); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return ErrInvalidCode
		}
		return fmt.Errorf("otp: compare code: %w", err)
	}
	m.mu.Lock()
	if current, ok := m.hashes[email]; ok && string(current) == string(hash) {
		delete(m.hashes, email)
	}
	m.mu.Unlock()
	return nil
}

// Pending reports whether email holds an unverified code.
func (m *MemoryIssuer) Pending(email string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.hashes[normalizeEmail(email)]
	return ok
}

func (m *MemoryIssuer) draw() (string, error) {
	var b strings.Builder
	ten := big.NewInt(10)
	for range m.length {
		n, err := rand.Int(m.random, ten)
		if err != nil {
			return "", err
		}
		b.WriteByte(byte('0' + n.Int64()))
	}
	return b.String(), nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
