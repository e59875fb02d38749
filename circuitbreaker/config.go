package circuitbreaker

import "time"

// DefaultConfig provides balanced settings for guarding an outbound transport:
// five consecutive failures trip the breaker, which then waits 30s before
// letting a single probe request through.
func DefaultConfig(name string) Config {
	return Config{
		Name:                name,
		MaxRequests:         1,
		Interval:            time.Minute,
		Timeout:             30 * time.Second,
		ConsecutiveFailures: 5,
	}
}
