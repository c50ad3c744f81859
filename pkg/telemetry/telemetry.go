// Package telemetry provides Record sinks for the console, OTP and command
// packages.
package telemetry

import "context"

// Recorder matches the Telemetry interface of the console packages.
type Recorder interface {
	Record(ctx context.Context, event string, payload map[string]any)
}

// Multi fans a record out to every recorder.
type Multi []Recorder

// Record forwards the event to each non-nil recorder in order.
func (m Multi) Record(ctx context.Context, event string, payload map[string]any) {
	for _, r := range m {
		if r != nil {
			r.Record(ctx, event, payload)
		}
	}
}
