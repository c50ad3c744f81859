package activity

import (
	"context"
	"errors"
	"sync"
)

// Hook receives activity events.
type Hook interface {
	Notify(ctx context.Context, evt Event) error
}

// HookFunc adapts a function to Hook.
type HookFunc func(ctx context.Context, evt Event) error

// Notify implements Hook.
func (f HookFunc) Notify(ctx context.Context, evt Event) error { return f(ctx, evt) }

// Hooks fans an event out to several hooks.
type Hooks []Hook

// Notify normalizes evt and delivers it to every hook. Invalid events are
// dropped; hook errors are joined.
func (h Hooks) Notify(ctx context.Context, evt Event) error {
	evt = NormalizeEvent(evt)
	if !evt.Valid() {
		return nil
	}
	var errs []error
	for _, hook := range h {
		if hook == nil {
			continue
		}
		if err := hook.Notify(ctx, evt); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// CaptureHook records events in memory.
type CaptureHook struct {
	mu     sync.Mutex
	Events []Event
}

// Notify implements Hook.
func (c *CaptureHook) Notify(_ context.Context, evt Event) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Events = append(c.Events, evt)
	return nil
}

// Snapshot returns a copy of the captured events.
func (c *CaptureHook) Snapshot() []Event {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Event(nil), c.Events...)
}
