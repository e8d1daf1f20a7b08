// Package telemetry provides OpenTelemetry initialization and helpers
// for distributed tracing across the Basil recipe service.
//
// The package configures OTLP HTTP export for traces and logs, with
// support for managed collectors and local backends.
package telemetry
