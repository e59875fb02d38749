// Package circuitbreaker wraps a single sony/gobreaker breaker for guarding
// one external collaborator (such as an outbound transport) against being
// hammered while it is down.
package circuitbreaker
