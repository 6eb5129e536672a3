/*
Copyright 2026 Chainlit Authors
SPDX-License-Identifier: Apache-2.0
*/

// Package metrics provides OpenTelemetry metrics for the instrumentation
// layer itself: how many steps were recorded and how many were dropped
// before reaching the step transport.
package metrics

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
)

// AttributeEnricher enriches metric attributes with additional context.
// The enricher receives the base attributes (provider, interface, method) and
// returns an enriched set, letting applications add their own dimensions
// without coupling the instrumentation to a specific deployment.
type AttributeEnricher func(ctx context.Context, baseAttrs []attribute.KeyValue) []attribute.KeyValue

// Steps counts step emission outcomes. Uses graceful degradation: if a
// counter fails to initialize, a no-op counter takes its place and the
// instrumented call path is unaffected.
type Steps struct {
	meter        metric.Meter
	recorded     metric.Int64Counter
	dropped      metric.Int64Counter
	attrEnricher AttributeEnricher
}

// NewSteps creates a Steps metrics instance on the named meter. The meter
// name should be unified across the instrumentation (e.g.
// "chainlit.instrument"), with provider and interface as dimensions.
func NewSteps(meterName string) *Steps {
	meter := otel.Meter(meterName, metric.WithInstrumentationVersion("1.0.0"))

	recorded, err := meter.Int64Counter("instrument.steps.recorded",
		metric.WithDescription("The number of steps scheduled for delivery"),
		metric.WithUnit("{steps}"))
	if err != nil {
		slog.Warn("Failed to create recorded-steps counter, metrics will be disabled", "error", err, "meter", meterName)
		recorded = noop.Int64Counter{}
	}

	dropped, err := meter.Int64Counter("instrument.steps.dropped",
		metric.WithDescription("The number of steps dropped before delivery"),
		metric.WithUnit("{steps}"))
	if err != nil {
		slog.Warn("Failed to create dropped-steps counter, metrics will be disabled", "error", err, "meter", meterName)
		dropped = noop.Int64Counter{}
	}

	return &Steps{
		meter:    meter,
		recorded: recorded,
		dropped:  dropped,
	}
}

// SetAttributeEnricher sets the attribute enricher for this metrics instance.
// The enricher is called before recording each metric.
func (m *Steps) SetAttributeEnricher(enricher AttributeEnricher) {
	m.attrEnricher = enricher
}

// RecordStep counts one step scheduled for delivery.
func (m *Steps) RecordStep(ctx context.Context, provider, iface, method string) {
	m.recorded.Add(ctx, 1, metric.WithAttributes(m.attrs(ctx, provider, iface, method)...))
}

// RecordDrop counts one step dropped before delivery.
func (m *Steps) RecordDrop(ctx context.Context, provider, iface, method string) {
	m.dropped.Add(ctx, 1, metric.WithAttributes(m.attrs(ctx, provider, iface, method)...))
}

func (m *Steps) attrs(ctx context.Context, provider, iface, method string) []attribute.KeyValue {
	baseAttrs := []attribute.KeyValue{
		attribute.String("provider", provider),
		attribute.String("interface", iface),
		attribute.String("method", method),
	}
	if m.attrEnricher != nil {
		baseAttrs = m.attrEnricher(ctx, baseAttrs)
	}
	return baseAttrs
}
