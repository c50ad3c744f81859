package telemetry

import (
	"errors"
	"fmt"
	"io"
	"time"

	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

// Exporter names accepted by NewMeterProvider.
const (
	ExporterNone   = ""
	ExporterStdout = "stdout"
)

// ErrUnknownExporter is returned for an exporter name NewMeterProvider does not know.
var ErrUnknownExporter = errors.New("telemetry: unknown metrics exporter")

// NewMeterProvider builds an SDK meter provider that exports on interval.
// ExporterStdout writes JSON to w. ExporterNone returns a nil provider, in
// which case NewOTel falls back to whatever global provider the embedding
// program installed with otel.SetMeterProvider.
func NewMeterProvider(exporter string, w io.Writer, interval time.Duration) (*sdkmetric.MeterProvider, error) {
	switch exporter {
	case ExporterNone:
		return nil, nil
	case ExporterStdout:
		exp, err := stdoutmetric.New(stdoutmetric.WithWriter(w))
		if err != nil {
			return nil, fmt.Errorf("telemetry: stdout exporter: %w", err)
		}
		var opts []sdkmetric.PeriodicReaderOption
		if interval > 0 {
			opts = append(opts, sdkmetric.WithInterval(interval))
		}
		return sdkmetric.NewMeterProvider(
			sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exp, opts...)),
		), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownExporter, exporter)
	}
}
