package commands

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/goliatone/go-admin-console/components/console"
	"github.com/goliatone/go-admin-console/components/otp"
)

type stubTelemetry struct {
	mu     sync.Mutex
	events []string
}

func (s *stubTelemetry) Record(_ context.Context, event string, _ map[string]any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
}

type inbox struct {
	mu    sync.Mutex
	codes map[string]string
}

func (i *inbox) deliver(_ context.Context, email, code string) error {
	i.mu.Lock()
	defer i.mu.Unlock()
	if i.codes == nil {
		i.codes = map[string]string{}
	}
	i.codes[email] = code
	return nil
}

func (i *inbox) last(email string) string {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.codes[email]
}

func newFlow(box *inbox) *console.AuthFlow {
	return console.NewAuthFlow(console.AuthOptions{
		Issuer:        otp.NewMemoryIssuer(otp.WithHashCost(bcrypt.MinCost), otp.WithDelivery(box.deliver)),
		Cooldown:      -1,
		VerifyTimeout: time.Second,
	})
}

func startSession(t *testing.T, flow *console.AuthFlow, email string) otp.Snapshot {
	t.Helper()
	var snap otp.Snapshot
	cmd := NewStartVerificationCommand(flow, nil)
	err := cmd.Execute(context.Background(), StartVerificationInput{
		Request: console.StartRequest{Email: email, Purpose: otp.PurposeVerifyEmail},
		Result:  &snap,
	})
	if err != nil {
		t.Fatalf("start returned error: %v", err)
	}
	if snap.SessionID == "" {
		t.Fatalf("expected session id in result")
	}
	return snap
}

func TestVerificationCommandsHappyPath(t *testing.T) {
	box := &inbox{}
	flow := newFlow(box)
	defer flow.Shutdown()
	telemetry := &stubTelemetry{}
	ctx := context.Background()

	snap := startSession(t, flow, "ada@example.com")
	code := box.last("ada@example.com")

	edit := NewEditCodeCommand(flow, telemetry)
	if err := edit.Execute(ctx, EditCodeInput{SessionID: snap.SessionID, Action: EditType, Index: 0, Value: code[:1]}); err != nil {
		t.Fatalf("type returned error: %v", err)
	}
	if err := edit.Execute(ctx, EditCodeInput{SessionID: snap.SessionID, Action: EditBackspace, Index: 0}); err != nil {
		t.Fatalf("backspace returned error: %v", err)
	}
	if err := edit.Execute(ctx, EditCodeInput{SessionID: snap.SessionID, Action: EditPaste, Value: code}); err != nil {
		t.Fatalf("paste returned error: %v", err)
	}

	submit := NewSubmitCodeCommand(flow, telemetry)
	var resolved otp.Snapshot
	if err := submit.Execute(ctx, SubmitCodeInput{SessionID: snap.SessionID, Wait: true, Result: &resolved}); err != nil {
		t.Fatalf("submit returned error: %v", err)
	}
	if resolved.Status != otp.StatusVerified {
		t.Fatalf("expected verified, got %s", resolved.Status)
	}
	if _, err := flow.Session(snap.SessionID); !errors.Is(err, otp.ErrSessionNotFound) {
		t.Fatalf("expected verified session to be evicted, got %v", err)
	}
	if len(telemetry.events) != 1 || telemetry.events[0] != "console.otp.submit" {
		t.Fatalf("unexpected telemetry %v", telemetry.events)
	}

	resend := NewResendCodeCommand(flow, nil)
	if err := resend.Execute(ctx, SessionInput{SessionID: snap.SessionID}); !errors.Is(err, otp.ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}
}

func TestSubmitIncompleteCode(t *testing.T) {
	flow := newFlow(&inbox{})
	defer flow.Shutdown()
	snap := startSession(t, flow, "ada@example.com")

	err := NewSubmitCodeCommand(flow, nil).Execute(context.Background(), SubmitCodeInput{SessionID: snap.SessionID})
	if !errors.Is(err, otp.ErrIncompleteCode) {
		t.Fatalf("expected ErrIncompleteCode, got %v", err)
	}
}

func TestEditCodeRejectsUnknownAction(t *testing.T) {
	flow := newFlow(&inbox{})
	defer flow.Shutdown()
	snap := startSession(t, flow, "ada@example.com")

	err := NewEditCodeCommand(flow, nil).Execute(context.Background(), EditCodeInput{SessionID: snap.SessionID, Action: "shout"})
	if !errors.Is(err, console.ErrInvalidRequest) {
		t.Fatalf("expected ErrInvalidRequest, got %v", err)
	}
}

func TestCommandsReportMissingSession(t *testing.T) {
	flow := newFlow(&inbox{})
	defer flow.Shutdown()
	ctx := context.Background()

	if err := NewEditCodeCommand(flow, nil).Execute(ctx, EditCodeInput{SessionID: "nope", Action: EditPaste}); !errors.Is(err, otp.ErrSessionNotFound) {
		t.Fatalf("edit: expected ErrSessionNotFound, got %v", err)
	}
	if err := NewResendCodeCommand(flow, nil).Execute(ctx, SessionInput{SessionID: "nope"}); !errors.Is(err, otp.ErrSessionNotFound) {
		t.Fatalf("resend: expected ErrSessionNotFound, got %v", err)
	}
	if err := NewCloseSessionCommand(flow).Execute(ctx, SessionInput{SessionID: "nope"}); !errors.Is(err, otp.ErrSessionNotFound) {
		t.Fatalf("close: expected ErrSessionNotFound, got %v", err)
	}
}

func TestCommandsRequireAuthFlow(t *testing.T) {
	if err := NewSubmitCodeCommand(nil, nil).Execute(context.Background(), SubmitCodeInput{}); err == nil {
		t.Fatalf("expected error without auth flow")
	}
}

type stubResetService struct {
	calls  int
	screen console.Screen
	err    error
}

func (s *stubResetService) Reset(_ context.Context, _ console.ViewerContext, screen console.Screen) error {
	s.calls++
	s.screen = screen
	return s.err
}

func TestResetListCommand(t *testing.T) {
	service := &stubResetService{}
	telemetry := &stubTelemetry{}
	cmd := NewResetListCommand(service, telemetry)
	if err := cmd.Execute(context.Background(), ResetListInput{Screen: console.ScreenUsers}); err != nil {
		t.Fatalf("Execute returned error: %v", err)
	}
	if service.calls != 1 || service.screen != console.ScreenUsers {
		t.Fatalf("expected reset of users, got %d %s", service.calls, service.screen)
	}
	if len(telemetry.events) != 1 {
		t.Fatalf("expected telemetry event")
	}

	service.err = console.ErrUnknownScreen
	if err := cmd.Execute(context.Background(), ResetListInput{Screen: "x"}); !errors.Is(err, console.ErrUnknownScreen) {
		t.Fatalf("expected ErrUnknownScreen, got %v", err)
	}
}
