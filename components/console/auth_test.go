package console

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/goliatone/go-admin-console/components/otp"
	"github.com/goliatone/go-admin-console/pkg/activity"
)

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

func newTestAuthFlow(box *inbox, capture *activity.CaptureHook) *AuthFlow {
	return NewAuthFlow(AuthOptions{
		Issuer:         otp.NewMemoryIssuer(otp.WithHashCost(bcrypt.MinCost), otp.WithDelivery(box.deliver)),
		Cooldown:       -1,
		VerifyTimeout:  time.Second,
		ActivityHooks:  activity.Hooks{capture},
		ActivityConfig: activity.Config{Enabled: true},
	})
}

func awaitSnapshot(t *testing.T, done <-chan otp.Snapshot) otp.Snapshot {
	t.Helper()
	select {
	case snap, ok := <-done:
		require.True(t, ok, "verification result discarded")
		return snap
	case <-time.After(2 * time.Second):
		t.Fatal("verification did not resolve")
	}
	return otp.Snapshot{}
}

func TestValidateStartRequest(t *testing.T) {
	assert.NoError(t, ValidateStartRequest(StartRequest{Email: "ada@example.com", Purpose: otp.PurposeVerifyEmail}))
	assert.NoError(t, ValidateStartRequest(StartRequest{Email: "ada@example.com", Purpose: otp.PurposePasswordReset}))
	assert.ErrorIs(t, ValidateStartRequest(StartRequest{Email: "ada", Purpose: otp.PurposeVerifyEmail}), ErrInvalidRequest)
	assert.ErrorIs(t, ValidateStartRequest(StartRequest{Email: "ada@example.com", Purpose: "login"}), ErrInvalidRequest)
	assert.ErrorIs(t, ValidateStartRequest(StartRequest{}), ErrInvalidRequest)
}

func TestAuthFlowVerifiesIssuedCode(t *testing.T) {
	box := &inbox{}
	capture := &activity.CaptureHook{}
	flow := newTestAuthFlow(box, capture)
	defer flow.Shutdown()

	ctx := ContextWithActivity(context.Background(), ActivityContext{ActorID: "actor-1"})
	snap, err := flow.Start(ctx, StartRequest{Email: " ada@example.com ", Purpose: otp.PurposePasswordReset})
	require.NoError(t, err)
	require.NotEmpty(t, snap.SessionID)
	assert.Equal(t, otp.StatusEntering, snap.Status)

	events, cancel := flow.Broadcast().Subscribe(snap.SessionID)
	defer cancel()

	session, err := flow.Session(snap.SessionID)
	require.NoError(t, err)
	_, err = session.Paste(ctx, box.last("ada@example.com"))
	require.NoError(t, err)
	_, done, err := session.Submit(ctx)
	require.NoError(t, err)

	final := awaitSnapshot(t, done)
	assert.Equal(t, otp.StatusVerified, final.Status)
	assert.Equal(t, "/auth/reset-password", final.Next)

	var reasons []string
	for len(reasons) < 3 {
		select {
		case evt := <-events:
			reasons = append(reasons, evt.Reason)
		case <-time.After(time.Second):
			t.Fatalf("missing broadcast events, got %v", reasons)
		}
	}
	assert.Equal(t, []string{"paste", "submit", "verified"}, reasons)

	recorded := capture.Snapshot()
	require.Len(t, recorded, 2)
	assert.Equal(t, "started", recorded[0].Verb)
	assert.Equal(t, "verified", recorded[1].Verb)
	assert.Equal(t, "otp_session", recorded[1].ObjectType)
	assert.Equal(t, snap.SessionID, recorded[1].ObjectID)
	assert.Equal(t, "actor-1", recorded[1].ActorID)
	assert.Equal(t, activity.DefaultChannel, recorded[1].Channel)
	assert.Equal(t, []string{"ada@example.com"}, recorded[1].Recipients)
	assert.Equal(t, "password_reset", recorded[1].Metadata["purpose"])
}

func TestAuthFlowRecordsFailureAndResend(t *testing.T) {
	box := &inbox{}
	capture := &activity.CaptureHook{}
	flow := newTestAuthFlow(box, capture)
	defer flow.Shutdown()
	ctx := context.Background()

	snap, err := flow.Start(ctx, StartRequest{Email: "grace@example.com", Purpose: otp.PurposeVerifyEmail})
	require.NoError(t, err)
	session, err := flow.Session(snap.SessionID)
	require.NoError(t, err)

	wrong := "000000"
	if box.last("grace@example.com") == wrong {
		wrong = "111111"
	}
	_, err = session.Paste(ctx, wrong)
	require.NoError(t, err)
	_, done, err := session.Submit(ctx)
	require.NoError(t, err)
	final := awaitSnapshot(t, done)
	assert.Equal(t, otp.StatusError, final.Status)
	assert.Equal(t, "Invalid verification code", final.Error)

	_, err = session.Resend(ctx)
	require.NoError(t, err)

	recorded := capture.Snapshot()
	require.Len(t, recorded, 3)
	assert.Equal(t, "failed", recorded[1].Verb)
	assert.Equal(t, "Invalid verification code", recorded[1].Metadata["error"])
	assert.Equal(t, "resend", recorded[2].Verb)
}

func TestAuthFlowRejectsInvalidStart(t *testing.T) {
	box := &inbox{}
	capture := &activity.CaptureHook{}
	flow := newTestAuthFlow(box, capture)
	defer flow.Shutdown()

	_, err := flow.Start(context.Background(), StartRequest{Email: "nope", Purpose: otp.PurposeVerifyEmail})
	assert.ErrorIs(t, err, ErrInvalidRequest)
	assert.Empty(t, capture.Snapshot())
	assert.Empty(t, box.last("nope"))
}

func TestAuthFlowClose(t *testing.T) {
	flow := newTestAuthFlow(&inbox{}, &activity.CaptureHook{})
	snap, err := flow.Start(context.Background(), StartRequest{Email: "ada@example.com", Purpose: otp.PurposeVerifyEmail})
	require.NoError(t, err)

	require.NoError(t, flow.Close(snap.SessionID))
	_, err = flow.Session(snap.SessionID)
	assert.ErrorIs(t, err, otp.ErrSessionNotFound)
	assert.ErrorIs(t, flow.Close(snap.SessionID), otp.ErrSessionNotFound)
}

func TestAuthFlowClosesIdleSessions(t *testing.T) {
	flow := NewAuthFlow(AuthOptions{
		Issuer:   otp.NewMemoryIssuer(otp.WithHashCost(bcrypt.MinCost)),
		Cooldown: -1,
		IdleTTL:  20 * time.Millisecond,
	})
	defer flow.Shutdown()

	snap, err := flow.Start(context.Background(), StartRequest{Email: "ada@example.com", Purpose: otp.PurposeVerifyEmail})
	require.NoError(t, err)
	session, err := flow.Session(snap.SessionID)
	require.NoError(t, err)

	assert.Eventually(t, session.Closed, 2*time.Second, 10*time.Millisecond)
	_, err = flow.Session(snap.SessionID)
	assert.ErrorIs(t, err, otp.ErrSessionNotFound)
}

func TestNilAuthFlow(t *testing.T) {
	var flow *AuthFlow
	_, err := flow.Start(context.Background(), StartRequest{})
	assert.ErrorIs(t, err, errMissingAuthFlow)
}
