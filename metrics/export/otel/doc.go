// Package otel bridges the authflow controller's flow counters into
// OpenTelemetry observable instruments. The exporter polls a metrics
// source through a registered callback; it holds no state of its own
// beyond the registration.
package otel
