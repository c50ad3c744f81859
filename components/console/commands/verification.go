package commands

import (
	"context"
	"errors"

	gocommand "github.com/goliatone/go-command"

	"github.com/goliatone/go-admin-console/components/console"
	"github.com/goliatone/go-admin-console/components/otp"
)

var errMissingAuth = errors.New("verification command requires auth flow")

// authFlow is the part of console.AuthFlow the verification commands drive.
type authFlow interface {
	Start(ctx context.Context, req console.StartRequest) (otp.Snapshot, error)
	Session(id string) (*otp.Session, error)
	Close(id string) error
}

// StartVerificationInput opens a session. Result receives the initial
// snapshot when set.
type StartVerificationInput struct {
	Request console.StartRequest
	Result  *otp.Snapshot
}

// StartVerificationCommand issues a code and opens a session.
type StartVerificationCommand struct {
	auth      authFlow
	telemetry Telemetry
}

// NewStartVerificationCommand creates the command.
func NewStartVerificationCommand(auth authFlow, telemetry Telemetry) *StartVerificationCommand {
	return &StartVerificationCommand{auth: auth, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[StartVerificationInput] = (*StartVerificationCommand)(nil)

// Execute starts the session.
func (c *StartVerificationCommand) Execute(ctx context.Context, msg StartVerificationInput) error {
	if c.auth == nil {
		return errMissingAuth
	}
	snap, err := c.auth.Start(ctx, msg.Request)
	if err != nil {
		return err
	}
	if msg.Result != nil {
		*msg.Result = snap
	}
	c.telemetry.Record(ctx, "console.otp.start", map[string]any{
		"session_id": snap.SessionID,
		"purpose":    string(snap.Purpose),
	})
	return nil
}

// EditAction names a change to the code buffer.
type EditAction string

const (
	EditType      EditAction = "type"
	EditBackspace EditAction = "backspace"
	EditPaste     EditAction = "paste"
)

// EditCodeInput changes the digits of a session. Index addresses the slot
// for type and backspace; Value is the typed character or pasted text.
type EditCodeInput struct {
	SessionID string     `json:"-"`
	Action    EditAction `json:"action"`
	Index     int        `json:"index"`
	Value     string     `json:"value"`
}

// EditCodeCommand applies typing, backspace and paste to a session.
type EditCodeCommand struct {
	auth      authFlow
	telemetry Telemetry
}

// NewEditCodeCommand creates the command.
func NewEditCodeCommand(auth authFlow, telemetry Telemetry) *EditCodeCommand {
	return &EditCodeCommand{auth: auth, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[EditCodeInput] = (*EditCodeCommand)(nil)

// Execute applies the edit. Edits the entry rejects are silent no-ops.
func (c *EditCodeCommand) Execute(ctx context.Context, msg EditCodeInput) error {
	if c.auth == nil {
		return errMissingAuth
	}
	session, err := c.auth.Session(msg.SessionID)
	if err != nil {
		return err
	}
	switch msg.Action {
	case EditType:
		_, err = session.TypeDigit(ctx, msg.Index, msg.Value)
	case EditBackspace:
		_, err = session.Backspace(ctx, msg.Index)
	case EditPaste:
		_, err = session.Paste(ctx, msg.Value)
	default:
		return console.ErrInvalidRequest
	}
	return err
}

// SubmitCodeInput starts verification. With Wait the command blocks until
// the result resolves or ctx ends. Result receives the submitted snapshot,
// replaced by the resolved one when waiting, since a verified session is
// no longer addressable by id.
type SubmitCodeInput struct {
	SessionID string        `json:"-"`
	Wait      bool          `json:"wait"`
	Result    *otp.Snapshot `json:"-"`
}

// SubmitCodeCommand submits a complete code.
type SubmitCodeCommand struct {
	auth      authFlow
	telemetry Telemetry
}

// NewSubmitCodeCommand creates the command.
func NewSubmitCodeCommand(auth authFlow, telemetry Telemetry) *SubmitCodeCommand {
	return &SubmitCodeCommand{auth: auth, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[SubmitCodeInput] = (*SubmitCodeCommand)(nil)

// Execute submits the session's code.
func (c *SubmitCodeCommand) Execute(ctx context.Context, msg SubmitCodeInput) error {
	if c.auth == nil {
		return errMissingAuth
	}
	session, err := c.auth.Session(msg.SessionID)
	if err != nil {
		return err
	}
	snap, done, err := session.Submit(ctx)
	if err != nil {
		return err
	}
	if msg.Result != nil {
		*msg.Result = snap
	}
	c.telemetry.Record(ctx, "console.otp.submit", map[string]any{"session_id": msg.SessionID})
	if !msg.Wait {
		return nil
	}
	select {
	case resolved, ok := <-done:
		if msg.Result != nil {
			if !ok {
				resolved = session.Snapshot()
			}
			*msg.Result = resolved
		}
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// SessionInput addresses one session.
type SessionInput struct {
	SessionID string `json:"-"`
}

// ResendCodeCommand requests a new code once the cooldown allows it.
type ResendCodeCommand struct {
	auth      authFlow
	telemetry Telemetry
}

// NewResendCodeCommand creates the command.
func NewResendCodeCommand(auth authFlow, telemetry Telemetry) *ResendCodeCommand {
	return &ResendCodeCommand{auth: auth, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[SessionInput] = (*ResendCodeCommand)(nil)

// Execute resends the code.
func (c *ResendCodeCommand) Execute(ctx context.Context, msg SessionInput) error {
	if c.auth == nil {
		return errMissingAuth
	}
	session, err := c.auth.Session(msg.SessionID)
	if err != nil {
		return err
	}
	if _, err := session.Resend(ctx); err != nil {
		return err
	}
	c.telemetry.Record(ctx, "console.otp.resend", map[string]any{"session_id": msg.SessionID})
	return nil
}

// CloseSessionCommand ends a session and discards pending verification.
type CloseSessionCommand struct {
	auth authFlow
}

// NewCloseSessionCommand creates the command.
func NewCloseSessionCommand(auth authFlow) *CloseSessionCommand {
	return &CloseSessionCommand{auth: auth}
}

var _ gocommand.Commander[SessionInput] = (*CloseSessionCommand)(nil)

// Execute closes the session.
func (c *CloseSessionCommand) Execute(_ context.Context, msg SessionInput) error {
	if c.auth == nil {
		return errMissingAuth
	}
	return c.auth.Close(msg.SessionID)
}
