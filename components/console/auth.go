package console

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/goliatone/go-admin-console/components/otp"
	"github.com/goliatone/go-admin-console/pkg/activity"
)

const otpObjectType = "otp_session"

// StartRequest opens a verification session.
type StartRequest struct {
	Email   string      `json:"email"`
	Purpose otp.Purpose `json:"purpose"`
}

// AuthOptions configures an AuthFlow.
type AuthOptions struct {
	Issuer         otp.Issuer
	Length         int
	Cooldown       int
	Tick           time.Duration
	VerifyTimeout  time.Duration
	IdleTTL        time.Duration
	Clock          otp.Clock
	Broadcast      *otp.BroadcastHook
	ActivityHooks  activity.Hooks
	ActivityConfig activity.Config
	Telemetry      Telemetry
	Logger         *slog.Logger
}

// AuthFlow runs the email verification and password reset code entry on
// top of an otp.Manager. Session changes are broadcast to subscribers and
// outcomes are emitted as activity events.
type AuthFlow struct {
	manager   *otp.Manager
	broadcast *otp.BroadcastHook
	emitter   *activity.Emitter
	telemetry Telemetry
	logger    *slog.Logger
	stop      context.CancelFunc
}

// NewAuthFlow builds an AuthFlow with safe defaults. With an IdleTTL it runs
// a janitor that closes abandoned sessions until Shutdown.
func NewAuthFlow(opts AuthOptions) *AuthFlow {
	if opts.Broadcast == nil {
		opts.Broadcast = otp.NewBroadcastHook()
	}
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.DiscardHandler)
	}
	opts.Telemetry = normalizeTelemetry(opts.Telemetry)
	flow := &AuthFlow{
		broadcast: opts.Broadcast,
		emitter:   activity.NewEmitter(opts.ActivityHooks, opts.ActivityConfig),
		telemetry: opts.Telemetry,
		logger:    opts.Logger,
	}
	flow.manager = otp.NewManager(otp.ManagerOptions{
		Issuer:        opts.Issuer,
		Length:        opts.Length,
		Cooldown:      opts.Cooldown,
		Tick:          opts.Tick,
		VerifyTimeout: opts.VerifyTimeout,
		Clock:         opts.Clock,
		Telemetry:     opts.Telemetry,
		IdleTTL:       opts.IdleTTL,
		Hook:          otp.Hooks{opts.Broadcast, activityHook{flow: flow}},
	})
	ctx, cancel := context.WithCancel(context.Background())
	flow.stop = cancel
	if opts.IdleTTL > 0 {
		go flow.manager.RunJanitor(ctx, 0)
	}
	return flow
}

// ValidateStartRequest checks req against the auth_start schema.
func ValidateStartRequest(req StartRequest) error {
	schema, err := compiledSchema("auth_start.json")
	if err != nil {
		return err
	}
	doc := map[string]any{
		"email":   req.Email,
		"purpose": string(req.Purpose),
	}
	if err := schema.Validate(doc); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}
	return nil
}

// Start validates req, issues a code and opens a session.
func (a *AuthFlow) Start(ctx context.Context, req StartRequest) (otp.Snapshot, error) {
	if a == nil || a.manager == nil {
		return otp.Snapshot{}, errMissingAuthFlow
	}
	req.Email = strings.TrimSpace(req.Email)
	if err := ValidateStartRequest(req); err != nil {
		return otp.Snapshot{}, err
	}
	session, err := a.manager.Start(ctx, req.Purpose, req.Email)
	if err != nil {
		return otp.Snapshot{}, err
	}
	snap := session.Snapshot()
	a.logger.InfoContext(ctx, "verification session started",
		slog.String("session_id", snap.SessionID),
		slog.String("purpose", string(snap.Purpose)),
	)
	a.emit(ctx, "started", snap, nil)
	return snap, nil
}

// Session returns the open session with id.
func (a *AuthFlow) Session(id string) (*otp.Session, error) {
	if a == nil || a.manager == nil {
		return nil, errMissingAuthFlow
	}
	return a.manager.Get(id)
}

// Close ends the session with id.
func (a *AuthFlow) Close(id string) error {
	if a == nil || a.manager == nil {
		return errMissingAuthFlow
	}
	return a.manager.Close(id)
}

// Shutdown closes every open session.
func (a *AuthFlow) Shutdown() {
	if a == nil {
		return
	}
	if a.stop != nil {
		a.stop()
	}
	if a.manager != nil {
		a.manager.CloseAll()
	}
}

// Broadcast exposes the hook streaming session updates.
func (a *AuthFlow) Broadcast() *otp.BroadcastHook { return a.broadcast }

func (a *AuthFlow) emit(ctx context.Context, verb string, snap otp.Snapshot, extra map[string]any) error {
	meta := activityContextFrom(ctx)
	metadata := map[string]any{
		"purpose": string(snap.Purpose),
		"status":  string(snap.Status),
	}
	for k, v := range extra {
		metadata[k] = v
	}
	var recipients []string
	if snap.Email != "" {
		recipients = []string{snap.Email}
	}
	err := a.emitter.Emit(ctx, activity.Event{
		Verb:           verb,
		ActorID:        meta.ActorID,
		UserID:         meta.UserID,
		TenantID:       meta.TenantID,
		ObjectType:     otpObjectType,
		ObjectID:       snap.SessionID,
		DefinitionCode: "otp:" + verb,
		Recipients:     recipients,
		Metadata:       metadata,
	})
	if err != nil {
		a.logger.WarnContext(ctx, "activity emit failed",
			slog.String("verb", verb),
			slog.Any("error", err),
		)
	}
	return err
}

// activityHook turns session outcomes into activity events.
type activityHook struct {
	flow *AuthFlow
}

func (h activityHook) SessionUpdated(ctx context.Context, event otp.SessionEvent) error {
	switch event.Reason {
	case "verified", "resend":
		return h.flow.emit(ctx, event.Reason, event.Snapshot, nil)
	case "failed":
		return h.flow.emit(ctx, event.Reason, event.Snapshot, map[string]any{"error": event.Snapshot.Error})
	}
	return nil
}
