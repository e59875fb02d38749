//go:build unit

package runtime

import (
	"context"
	"fmt"

	libLog "github.com/lucas-zimerman/sentry-spool-go/log"
)

// simpleLogger is a minimal logger for examples.
type simpleLogger struct{}

func (l *simpleLogger) Log(_ context.Context, _ libLog.Level, _ string, _ ...libLog.Field) {}
func (l *simpleLogger) With(_ ...libLog.Field) libLog.Logger                               { return l }
func (l *simpleLogger) WithGroup(_ string) libLog.Logger                                   { return l }
func (l *simpleLogger) Enabled(_ libLog.Level) bool                                        { return false }
func (l *simpleLogger) Sync(_ context.Context) error                                      { return nil }

func ExampleSafeGoWithContextAndComponent() {
	ctx := context.Background()
	logger := &simpleLogger{}

	// Launch a goroutine with panic recovery and observability
	done := make(chan struct{})

	SafeGoWithContextAndComponent(ctx, logger, "transaction", "example-worker", KeepRunning,
		func(ctx context.Context) {
			defer close(done)

			fmt.Println("Worker started")
			// Work happens here...
			fmt.Println("Worker completed")
		})

	<-done
	// Output:
	// Worker started
	// Worker completed
}

func ExampleRecoverAndLogWithContext() {
	ctx := context.Background()
	logger := &simpleLogger{}

	func() {
		defer RecoverAndLogWithContext(ctx, logger, "example", "handler")

		fmt.Println("Before panic")
		// If a panic occurred here, it would be recovered and logged
		fmt.Println("After (no panic)")
	}()

	fmt.Println("Function completed normally")
	// Output:
	// Before panic
	// After (no panic)
	// Function completed normally
}

