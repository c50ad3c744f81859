package telemetry

import (
	"context"
	"fmt"
	"slices"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// InstrumentationName scopes the meter the console counters live on.
const InstrumentationName = "github.com/goliatone/go-admin-console"

// DefaultAttributeKeys are the payload keys copied onto counter attributes.
// They are all low cardinality.
var DefaultAttributeKeys = []string{"screen", "purpose", "reason", "status", "action"}

// OTel counts telemetry events on an OpenTelemetry Int64Counter.
type OTel struct {
	counter metric.Int64Counter
	keys    []string
}

// OTelOption customizes NewOTel.
type OTelOption func(*OTel)

// WithAttributeKeys replaces the payload keys recorded as attributes.
func WithAttributeKeys(keys ...string) OTelOption {
	return func(o *OTel) {
		o.keys = slices.Clone(keys)
	}
}

// NewOTel creates the console.events counter on meter, or on the global
// meter provider when meter is nil. The global provider is a no-op until
// the program installs one with otel.SetMeterProvider; NewMeterProvider
// builds an SDK provider for that.
func NewOTel(meter metric.Meter, opts ...OTelOption) (*OTel, error) {
	if meter == nil {
		meter = otel.GetMeterProvider().Meter(InstrumentationName)
	}
	counter, err := meter.Int64Counter("console.events",
		metric.WithDescription("Console, list and verification events"),
		metric.WithUnit("{event}"),
	)
	if err != nil {
		return nil, fmt.Errorf("telemetry: create counter: %w", err)
	}
	o := &OTel{counter: counter, keys: slices.Clone(DefaultAttributeKeys)}
	for _, opt := range opts {
		opt(o)
	}
	return o, nil
}

// Record adds one to the counter for event.
func (o *OTel) Record(ctx context.Context, event string, payload map[string]any) {
	o.counter.Add(ctx, 1, metric.WithAttributes(o.attributes(event, payload)...))
}

func (o *OTel) attributes(event string, payload map[string]any) []attribute.KeyValue {
	attrs := []attribute.KeyValue{attribute.String("event", event)}
	for _, key := range o.keys {
		v, ok := payload[key]
		if !ok {
			continue
		}
		switch value := v.(type) {
		case string:
			if value != "" {
				attrs = append(attrs, attribute.String(key, value))
			}
		case fmt.Stringer:
			attrs = append(attrs, attribute.String(key, value.String()))
		case bool:
			attrs = append(attrs, attribute.Bool(key, value))
		case int:
			attrs = append(attrs, attribute.Int(key, value))
		}
	}
	return attrs
}
