package otp

import (
	"context"
	"errors"
)

// Telemetry records verification events for observability.
type Telemetry interface {
	Record(ctx context.Context, event string, payload map[string]any)
}

type noopTelemetry struct{}

func (noopTelemetry) Record(context.Context, string, map[string]any) {}

func normalizeTelemetry(t Telemetry) Telemetry {
	if t == nil {
		return noopTelemetry{}
	}
	return t
}

// UpdateHook is notified after every change to a session. Hooks run while the
// session lock is held and must not call back into the session.
type UpdateHook interface {
	SessionUpdated(ctx context.Context, event SessionEvent) error
}

// SessionEvent describes a session change.
type SessionEvent struct {
	SessionID string   `json:"session_id"`
	Reason    string   `json:"reason"`
	Snapshot  Snapshot `json:"snapshot"`
}

type noopHook struct{}

func (noopHook) SessionUpdated(context.Context, SessionEvent) error { return nil }

// Hooks notifies several hooks in order and joins their errors.
type Hooks []UpdateHook

// SessionUpdated implements UpdateHook.
func (h Hooks) SessionUpdated(ctx context.Context, event SessionEvent) error {
	var errs []error
	for _, hook := range h {
		if hook == nil {
			continue
		}
		if err := hook.SessionUpdated(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
