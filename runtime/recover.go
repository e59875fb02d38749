// Package runtime provides panic recovery and supervised goroutine helpers
// shared by background workers.
package runtime

import (
	"context"
	stdruntime "runtime"

	"github.com/lucas-zimerman/sentry-spool-go/log"
)

// Logger is the log.Logger the recovery helpers log through.
type Logger = log.Logger

// RestartPolicy controls what SafeGo does after a supervised function panics.
type RestartPolicy int

const (
	// KeepRunning restarts the supervised function after logging the panic.
	KeepRunning RestartPolicy = iota
	// CrashProcess re-panics after logging, terminating the process.
	CrashProcess
)

const stackBufSize = 8192

func captureStack() []byte {
	buf := make([]byte, stackBufSize)
	n := stdruntime.Stack(buf, false)

	return buf[:n]
}

func logPanic(logger Logger, goroutineName string, panicValue any) {
	logPanicWithStack(logger, goroutineName, panicValue, captureStack())
}

func logPanicWithStack(logger Logger, goroutineName string, panicValue any, stack []byte) {
	logPanicWithStackContext(context.Background(), logger, "", goroutineName, panicValue, stack)
}

func logPanicWithStackContext(ctx context.Context, logger Logger, component, goroutineName string, panicValue any, stack []byte) {
	if logger == nil {
		return
	}

	fields := []log.Field{
		log.Any("panic", panicValue),
		log.String("goroutine", goroutineName),
		log.String("stack", string(stack)),
	}

	if component != "" {
		fields = append(fields, log.String("component", component))
	}

	logger.Log(ctx, log.LevelError, "recovered from panic", fields...)
}

// RecoverAndLog recovers a panic, logs it, and lets the goroutine exit normally.
// Call as `defer RecoverAndLog(logger, "worker-name")`.
func RecoverAndLog(logger Logger, goroutineName string) {
	if r := recover(); r != nil {
		logPanicWithStack(logger, goroutineName, r, captureStack())
	}
}

// RecoverAndLogWithContext is RecoverAndLog with a context threaded through
// for trace correlation.
func RecoverAndLogWithContext(ctx context.Context, logger Logger, component, goroutineName string) {
	if r := recover(); r != nil {
		logPanicWithStackContext(ctx, logger, component, goroutineName, r, captureStack())
	}
}

// RecoverAndCrash recovers a panic, logs it, and re-panics.
func RecoverAndCrash(logger Logger, goroutineName string) {
	if r := recover(); r != nil {
		logPanicWithStack(logger, goroutineName, r, captureStack())
		panic(r)
	}
}

// RecoverAndCrashWithContext is RecoverAndCrash with context-aware logging.
func RecoverAndCrashWithContext(ctx context.Context, logger Logger, component, goroutineName string) {
	if r := recover(); r != nil {
		logPanicWithStackContext(ctx, logger, component, goroutineName, r, captureStack())
		panic(r)
	}
}

// RecoverWithPolicy recovers a panic, logs it, and either lets the goroutine
// exit (KeepRunning) or re-panics (CrashProcess).
func RecoverWithPolicy(logger Logger, goroutineName string, policy RestartPolicy) {
	if r := recover(); r != nil {
		logPanicWithStack(logger, goroutineName, r, captureStack())

		if policy == CrashProcess {
			panic(r)
		}
	}
}

// RecoverWithPolicyAndContext is RecoverWithPolicy with context-aware logging.
func RecoverWithPolicyAndContext(ctx context.Context, logger Logger, component, goroutineName string, policy RestartPolicy) {
	if r := recover(); r != nil {
		logPanicWithStackContext(ctx, logger, component, goroutineName, r, captureStack())

		if policy == CrashProcess {
			panic(r)
		}
	}
}

// HandlePanicValue logs an already-recovered panic value. Use this when the
// caller does its own recover() (e.g. inside a loop that must also perform a
// backoff sleep after the panic) and just needs the standard observability.
func HandlePanicValue(ctx context.Context, logger Logger, panicValue any, component, goroutineName string) {
	if panicValue == nil {
		return
	}

	logPanicWithStackContext(ctx, logger, component, goroutineName, panicValue, captureStack())
}

// SafeGo launches fn in a new goroutine, restarting it per policy whenever it panics.
func SafeGo(logger Logger, goroutineName string, policy RestartPolicy, fn func()) {
	go runSupervised(context.Background(), logger, "", goroutineName, policy, func(context.Context) { fn() })
}

// SafeGoWithContextAndComponent launches fn in a new goroutine under ctx, restarting
// it per policy whenever it panics, until ctx is cancelled.
func SafeGoWithContextAndComponent(ctx context.Context, logger Logger, component, goroutineName string, policy RestartPolicy, fn func(context.Context)) {
	go runSupervised(ctx, logger, component, goroutineName, policy, fn)
}

func runSupervised(ctx context.Context, logger Logger, component, goroutineName string, policy RestartPolicy, fn func(context.Context)) {
	for {
		if ctx.Err() != nil {
			return
		}

		stopped := runOnce(ctx, logger, component, goroutineName, policy, fn)
		if stopped || policy != KeepRunning {
			return
		}
	}
}

// runOnce runs fn once, recovering and logging any panic; under CrashProcess
// the panic is re-raised after logging. It reports whether the caller should
// stop restarting: true when fn returned without panicking.
func runOnce(ctx context.Context, logger Logger, component, goroutineName string, policy RestartPolicy, fn func(context.Context)) (stop bool) {
	defer func() {
		if r := recover(); r != nil {
			logPanicWithStackContext(ctx, logger, component, goroutineName, r, captureStack())

			if policy == CrashProcess {
				panic(r)
			}
		}
	}()

	fn(ctx)

	return true
}
