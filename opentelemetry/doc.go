// Package opentelemetry provides span-error helpers shared by packages that
// open their own spans instead of owning a TracerProvider.
package opentelemetry
