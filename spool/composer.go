package spool

import (
	"context"
	"errors"
	"strings"

	"github.com/lucas-zimerman/sentry-spool-go/log"
)

// Compose chooses between the raw inner transport and a CachingTransport
// wrapping it, based on options.CacheRoot, and runs a bounded startup flush
// when options.CacheFlushTimeout > 0. Compose does not own any worker task;
// whichever transport it returns does. The returned value satisfies
// InnerTransport either way, since CachingTransport's Send signature
// matches it.
func Compose(options Options, opts ...Option) (InnerTransport, error) {
	merged := options
	for _, opt := range opts {
		opt(&merged)
	}

	if strings.TrimSpace(merged.CacheRoot) == "" {
		return merged.InnerTransport, nil
	}

	transport, err := New(options, opts...)
	if err != nil {
		return nil, err
	}

	if transport.opts.CacheFlushTimeout > 0 {
		runStartupFlush(transport, transport.opts)
	}

	return transport, nil
}

// runStartupFlush invokes Flush under a deadline tied to
// options.CacheFlushTimeout. A timeout is logged at warn; any other failure
// is logged at fatal. Neither prevents Compose from returning the transport.
func runStartupFlush(transport *CachingTransport, opts Options) {
	ctx, cancel := context.WithTimeout(context.Background(), opts.CacheFlushTimeout)
	defer cancel()

	err := transport.Flush(ctx)

	switch {
	case err == nil:
		return
	case errors.Is(err, context.DeadlineExceeded):
		opts.Logger.Log(context.Background(), log.LevelWarn, "spool: startup flush timed out", log.Err(err))
	default:
		opts.Logger.Log(context.Background(), log.LevelFatal, "spool: startup flush failed", log.Err(err))
	}
}
