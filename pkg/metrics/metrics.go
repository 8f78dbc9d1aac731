// Package metrics creates OpenTelemetry instruments from the global meter
// provider. Without a configured provider the instruments are no-ops.
package metrics

import (
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
)

const instrumentationPrefix = "github.com/AliAliAhmad/inspection-system-sub003/"

// Meter returns the named meter for a subsystem.
func Meter(subsystem string) metric.Meter {
	return otel.Meter(instrumentationPrefix + subsystem)
}

// Counter creates an Int64Counter. Creation errors are reported to the global
// otel error handler and a no-op counter is returned.
func Counter(m metric.Meter, name, description, unit string) metric.Int64Counter {
	c, err := m.Int64Counter(name,
		metric.WithDescription(description),
		metric.WithUnit(unit),
	)
	if err != nil {
		otel.Handle(err)
		return noop.Int64Counter{}
	}
	return c
}
