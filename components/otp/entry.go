package otp

import (
	"errors"
	"strings"
)

const (
	// DefaultLength is the number of digits in a code.
	DefaultLength = 6
	// DefaultCooldown is the number of ticks before a code may be resent.
	DefaultCooldown = 30
)

// Status is the lifecycle position of an Entry.
type Status string

const (
	StatusEntering   Status = "entering"
	StatusComplete   Status = "complete"
	StatusSubmitting Status = "submitting"
	StatusError      Status = "error"
	StatusVerified   Status = "verified"
)

const (
	messageInvalidCode = "Invalid verification code"
	messageIncomplete  = "Please enter the complete verification code"
	messageTimeout     = "Verification timed out. Please try again."
	messageFailure     = "An error occurred. Please try again."
)

// Entry is the immutable state of a one-time-code input: a fixed number of
// single-digit slots, the focused slot, the lifecycle status and the resend
// cooldown. Transitions return a new Entry and report whether anything
// changed; rejected input is a silent no-op.
type Entry struct {
	digits   []byte
	focus    int
	status   Status
	message  string
	cooldown Cooldown
}

// NewEntry returns an empty entry focused on slot 0. A non-positive length
// falls back to DefaultLength; a non-positive cooldown disables it.
func NewEntry(length, cooldown int) Entry {
	if length <= 0 {
		length = DefaultLength
	}
	return Entry{
		digits:   make([]byte, length),
		status:   StatusEntering,
		cooldown: NewCooldown(cooldown),
	}
}

// Len is the number of slots.
func (e Entry) Len() int { return len(e.digits) }

// Status returns the lifecycle status.
func (e Entry) Status() Status { return e.status }

// Focus returns the focused slot index.
func (e Entry) Focus() int { return e.focus }

// Cooldown returns the resend cooldown.
func (e Entry) Cooldown() Cooldown { return e.cooldown }

// Code joins the filled slots.
func (e Entry) Code() string {
	var b strings.Builder
	for _, d := range e.digits {
		if d != 0 {
			b.WriteByte(d)
		}
	}
	return b.String()
}

// Filled reports whether every slot holds a digit.
func (e Entry) Filled() bool {
	for _, d := range e.digits {
		if d == 0 {
			return false
		}
	}
	return true
}

// TypeDigit writes char into slot index and moves focus to the next slot.
// Anything other than a single ASCII digit is rejected.
func (e Entry) TypeDigit(index int, char string) (Entry, bool) {
	if !e.editable() || !e.inRange(index) || !isDigit(char) {
		return e, false
	}
	next := e.withDigits()
	next.digits[index] = char[0]
	if index < len(next.digits)-1 {
		next.focus = index + 1
	} else {
		next.focus = index
	}
	return next.settle(), true
}

// Backspace clears slot index when it holds a digit. On an empty slot it
// moves focus one slot back without touching any digit.
func (e Entry) Backspace(index int) (Entry, bool) {
	if !e.editable() || !e.inRange(index) {
		return e, false
	}
	if e.digits[index] == 0 {
		if index == 0 {
			return e, false
		}
		e.focus = index - 1
		return e, true
	}
	next := e.withDigits()
	next.digits[index] = 0
	next.focus = index
	return next.settle(), true
}

// Paste distributes text over the slots from slot 0. Text that is empty or
// contains any non-digit is rejected as a whole.
func (e Entry) Paste(text string) (Entry, bool) {
	if !e.editable() || text == "" {
		return e, false
	}
	for i := 0; i < len(text); i++ {
		if text[i] < '0' || text[i] > '9' {
			return e, false
		}
	}
	next := e.withDigits()
	k := min(len(text), len(next.digits))
	copy(next.digits[:k], text[:k])
	next.focus = min(len(text), len(next.digits)-1)
	return next.settle(), true
}

// Submit moves a complete entry to submitting and yields the code to verify.
func (e Entry) Submit() (Entry, string, bool) {
	if e.status != StatusComplete {
		return e, "", false
	}
	e.status = StatusSubmitting
	e.message = ""
	return e, e.Code(), true
}

// Resolve applies the verification outcome to a submitting entry. A nil err
// verifies the entry; otherwise the entry moves to error and keeps its digits.
func (e Entry) Resolve(err error) (Entry, bool) {
	if e.status != StatusSubmitting {
		return e, false
	}
	if err == nil {
		e.status = StatusVerified
		e.message = ""
		return e, true
	}
	e.status = StatusError
	e.message = FailureMessage(err)
	return e, true
}

// Resend restarts the cooldown. It is refused while the cooldown is running
// and after verification. Digits and status are kept.
func (e Entry) Resend() (Entry, bool) {
	if e.status == StatusVerified || !e.cooldown.Ready() {
		return e, false
	}
	e.cooldown = e.cooldown.Restart()
	return e, true
}

// Tick advances the cooldown by one unit.
func (e Entry) Tick() (Entry, bool) {
	next := e.cooldown.Tick()
	if next == e.cooldown {
		return e, false
	}
	e.cooldown = next
	return e, true
}

// Snapshot exposes the entry for rendering.
func (e Entry) Snapshot() Snapshot {
	digits := make([]string, len(e.digits))
	for i, d := range e.digits {
		if d != 0 {
			digits[i] = string(d)
		}
	}
	return Snapshot{
		Digits:    digits,
		Focus:     e.focus,
		Status:    e.status,
		Error:     e.message,
		Cooldown:  e.cooldown.Remaining,
		CanResend: e.cooldown.Ready() && e.status != StatusVerified,
	}
}

// FailureMessage converts a verification error into the message shown to the user.
func FailureMessage(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrInvalidCode):
		return messageInvalidCode
	case errors.Is(err, ErrIncompleteCode):
		return messageIncomplete
	case errors.Is(err, ErrVerifyTimeout):
		return messageTimeout
	default:
		return messageFailure
	}
}

func (e Entry) editable() bool {
	return e.status != StatusSubmitting && e.status != StatusVerified
}

func (e Entry) inRange(index int) bool {
	return index >= 0 && index < len(e.digits)
}

func (e Entry) withDigits() Entry {
	digits := make([]byte, len(e.digits))
	copy(digits, e.digits)
	e.digits = digits
	return e
}

// settle recomputes the status after the digits changed and clears any error.
func (e Entry) settle() Entry {
	e.message = ""
	if e.Filled() {
		e.status = StatusComplete
	} else {
		e.status = StatusEntering
	}
	return e
}

func isDigit(char string) bool {
	return len(char) == 1 && char[0] >= '0' && char[0] <= '9'
}

// Cooldown counts down the units left before a code may be resent.
type Cooldown struct {
	Remaining int `json:"remaining"`
	Duration  int `json:"duration"`
}

// NewCooldown starts a cooldown at its full duration.
func NewCooldown(duration int) Cooldown {
	duration = max(duration, 0)
	return Cooldown{Remaining: duration, Duration: duration}
}

// Tick decrements the remaining units, never below zero.
func (c Cooldown) Tick() Cooldown {
	if c.Remaining > 0 {
		c.Remaining--
	}
	return c
}

// Ready reports whether the cooldown has elapsed.
func (c Cooldown) Ready() bool { return c.Remaining <= 0 }

// Restart resets the cooldown to its full duration.
func (c Cooldown) Restart() Cooldown {
	c.Remaining = c.Duration
	return c
}

// Snapshot is the read model of an entry (and, when produced by a Session,
// of its session).
type Snapshot struct {
	SessionID string   `json:"session_id,omitempty"`
	Purpose   Purpose  `json:"purpose,omitempty"`
	Email     string   `json:"email,omitempty"`
	Digits    []string `json:"digits"`
	Focus     int      `json:"focus"`
	Status    Status   `json:"status"`
	Error     string   `json:"error,omitempty"`
	Cooldown  int      `json:"cooldown"`
	CanResend bool     `json:"can_resend"`
	Next      string   `json:"next,omitempty"`
}

// Code joins the digits of the snapshot.
func (s Snapshot) Code() string {
	return strings.Join(s.Digits, "")
}
