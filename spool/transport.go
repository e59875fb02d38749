package spool

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/lucas-zimerman/sentry-spool-go/backoff"
	"github.com/lucas-zimerman/sentry-spool-go/log"
	"github.com/lucas-zimerman/sentry-spool-go/opentelemetry"
	"github.com/lucas-zimerman/sentry-spool-go/runtime"
)

// CachingTransport is the public facade producers and Composer drive. It
// owns exactly one background worker goroutine, started at construction and
// joined during Dispose.
type CachingTransport struct {
	opts   Options
	dir    *SpoolDirectory
	lock   *Lock
	signal *Signal

	metrics *transportMetrics
	tracer  trace.Tracer

	cancel     context.CancelFunc
	workerDone chan struct{}

	disposeOnce sync.Once
	mu          sync.Mutex
	disposed    bool
}

// New constructs a CachingTransport: computes the isolated root, reclaims
// any files left in __processing by a prior process, arms a pre-released
// Signal so the worker flushes leftovers even without a new Send, and spawns
// the background worker.
func New(options Options, opts ...Option) (*CachingTransport, error) {
	normalized, err := options.normalize(opts...)
	if err != nil {
		return nil, err
	}

	root := filepath.Join(normalized.CacheRoot, "Sentry", isolatedRootName(normalized.DSN))
	dir := NewSpoolDirectory(root)

	if err := dir.ReclaimProcessing(); err != nil {
		return nil, err
	}

	t := &CachingTransport{
		opts:   normalized,
		dir:    dir,
		lock:   NewLock(),
		signal: NewSignal(true),
	}

	t.tracer = normalized.tracer
	if t.tracer == nil {
		t.tracer = otel.Tracer("spool")
	}

	metrics, err := newTransportMetrics(normalized.meterProvider, func() int64 { return int64(t.QueueLength()) })
	if err != nil {
		return nil, fmt.Errorf("spool: metrics init: %w", err)
	}

	t.metrics = metrics

	ctx, cancel := context.WithCancel(context.Background())
	t.cancel = cancel
	t.workerDone = make(chan struct{})

	go t.runWorker(ctx)

	return t, nil
}

func (t *CachingTransport) keepCount() int {
	if t.opts.MaxQueueItems < 1 {
		return 0
	}

	return t.opts.MaxQueueItems - 1
}

func (t *CachingTransport) isDisposed() bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.disposed
}

// Send is the durable write path: it returns as soon as the envelope is on
// stable storage and never blocks on network I/O. Eviction and the write
// happen under the same Lock claim; if the write fails the lock is released
// but Signal is not, and the error is surfaced to the caller.
func (t *CachingTransport) Send(ctx context.Context, envelope Envelope) error {
	if t.isDisposed() {
		return ErrTransportDisposed
	}

	ctx, span := t.tracer.Start(ctx, "spool.Send")
	defer span.End()

	claim, err := t.lock.Acquire(ctx)
	if err != nil {
		return err
	}

	defer claim.Release()

	evicted, err := t.dir.EvictExcess(t.keepCount())
	if err != nil {
		opentelemetry.HandleSpanError(span, "evict failed", err)

		return err
	}

	if evicted > 0 {
		t.metrics.envelopesEvicted.Add(ctx, int64(evicted))
	}

	if _, err := t.dir.Store(ctx, envelope); err != nil {
		opentelemetry.HandleSpanError(span, "store failed", err)

		return err
	}

	t.metrics.envelopesQueued.Add(ctx, 1)
	t.signal.Release()

	return nil
}

// Flush drains everything currently on disk through the inner transport,
// synchronously from the caller's perspective. It re-enters the same drain
// routine the worker uses and is only coordinated with it via Lock.
func (t *CachingTransport) Flush(ctx context.Context) error {
	if t.isDisposed() {
		return ErrTransportDisposed
	}

	ctx, span := t.tracer.Start(ctx, "spool.Flush")
	defer span.End()

	start := time.Now()
	err := t.processCache(ctx)
	t.metrics.flushLatency.Record(ctx, float64(time.Since(start).Milliseconds()))

	if err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded) {
		opentelemetry.HandleSpanError(span, "flush failed", err)
	}

	return err
}

// QueueLength reports the number of ready files. It is advisory and may be
// stale by the time the caller observes it.
func (t *CachingTransport) QueueLength() int {
	ready, err := t.dir.ListReady()
	if err != nil {
		return 0
	}

	return len(ready)
}

// Dispose cancels the worker, joins it, disposes Signal, and disposes the
// inner transport if it implements Disposable. Lock needs no separate
// disposal: any pending Acquire already unblocks when its caller's context
// is cancelled, and the worker's context is cancelled first. Dispose never
// returns a failure; errors are logged and swallowed, and repeat calls are
// no-ops.
func (t *CachingTransport) Dispose(ctx context.Context) error {
	t.disposeOnce.Do(func() {
		t.mu.Lock()
		t.disposed = true
		t.mu.Unlock()

		t.cancel()
		<-t.workerDone

		t.signal.Dispose()

		if disposable, ok := t.opts.InnerTransport.(Disposable); ok {
			if err := disposable.Dispose(ctx); err != nil {
				log.SafeError(t.opts.Logger, ctx, "spool: inner transport dispose failed", err, t.opts.Production)
			}
		}
	})

	return nil
}

// runWorker is the background worker loop: wait for a signal, drain as far
// as possible, and on any non-cancellation error log and back off before
// retrying. It returns once ctx is cancelled.
func (t *CachingTransport) runWorker(ctx context.Context) {
	defer close(t.workerDone)

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		err := t.workerTick(ctx)
		if err == nil {
			continue
		}

		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) || errors.Is(err, ErrSignalDisposed) {
			return
		}

		log.SafeError(t.opts.Logger, ctx, "spool: worker tick failed", err, t.opts.Production)

		if werr := backoff.WaitContext(ctx, t.opts.workerBackoff); werr != nil {
			return
		}
	}
}

// workerTick runs one wait+drain cycle. A panic in the body is recovered
// and turned into an error so the caller applies the same backoff as any
// other worker-loop failure, matching the "Bug" row of the error taxonomy.
func (t *CachingTransport) workerTick(ctx context.Context) (err error) {
	defer func() {
		if r := recover(); r != nil {
			runtime.HandlePanicValue(ctx, t.opts.Logger, r, "spool.worker", "spool-worker")

			err = fmt.Errorf("spool: worker panic: %v", r)
		}
	}()

	if werr := t.signal.Wait(ctx); werr != nil {
		return werr
	}

	drainCtx, span := t.tracer.Start(ctx, "spool.drain")
	defer span.End()

	if derr := t.processCache(drainCtx); derr != nil {
		if !errors.Is(derr, context.Canceled) && !errors.Is(derr, context.DeadlineExceeded) {
			opentelemetry.HandleSpanError(span, "drain failed", derr)
		}

		return derr
	}

	return nil
}

// processCache repeatedly claims the oldest ready file and sends it until
// the ready set is empty or an error aborts the drain.
func (t *CachingTransport) processCache(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		path, err := t.claimNext(ctx)
		if err != nil {
			return err
		}

		if path == "" {
			return nil
		}

		if err := t.processOne(ctx, path); err != nil {
			return err
		}
	}
}

func (t *CachingTransport) claimNext(ctx context.Context) (string, error) {
	claim, err := t.lock.Acquire(ctx)
	if err != nil {
		return "", err
	}

	defer claim.Release()

	return t.dir.ClaimOldest()
}

// processOne sends the single processing file at path. A network-unreachable
// failure or cancellation aborts the drain with the file left in
// __processing for the next startup's reclaim; any other failure is logged
// and the file is discarded so the drain continues with the next file.
func (t *CachingTransport) processOne(ctx context.Context, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("%w: read %s: %w", ErrStorage, path, err)
	}

	envelope, err := t.opts.Decoder(data)
	if err != nil {
		log.SafeError(t.opts.Logger, ctx, "spool: envelope decode failed, discarding", err, t.opts.Production, log.SafeString("path", path))
		t.metrics.envelopesDropped.Add(ctx, 1)

		return t.removeProcessing(path)
	}

	sendErr := t.sendThroughBreaker(ctx, envelope)
	if sendErr == nil {
		t.metrics.envelopesSent.Add(ctx, 1)

		return t.removeProcessing(path)
	}

	if errors.Is(sendErr, context.Canceled) || errors.Is(sendErr, context.DeadlineExceeded) {
		return sendErr
	}

	if errors.Is(sendErr, ErrNetworkUnreachable) {
		return sendErr
	}

	if t.opts.retryClassifier.IsNetworkUnreachable(sendErr) {
		return fmt.Errorf("%w: %w", ErrNetworkUnreachable, sendErr)
	}

	permanentErr := fmt.Errorf("%w: %w", ErrPermanentSendFailure, sendErr)
	log.SafeError(t.opts.Logger, ctx, "spool: permanent send failure, discarding", permanentErr, t.opts.Production, log.SafeString("path", path))
	t.metrics.envelopesDropped.Add(ctx, 1)

	return t.removeProcessing(path)
}

func (t *CachingTransport) sendThroughBreaker(ctx context.Context, envelope Envelope) error {
	if t.opts.breaker == nil {
		return t.opts.InnerTransport.Send(ctx, envelope)
	}

	called := false

	_, err := t.opts.breaker.Execute(func() (any, error) {
		called = true

		return nil, t.opts.InnerTransport.Send(ctx, envelope)
	})

	// An open or probing breaker rejects without reaching the inner
	// transport; that is the endpoint being down, not a rejected envelope.
	if err != nil && !called {
		return fmt.Errorf("%w: circuit breaker rejected send: %w", ErrNetworkUnreachable, err)
	}

	return err
}

func (t *CachingTransport) removeProcessing(path string) error {
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%w: remove %s: %w", ErrStorage, path, err)
	}

	return nil
}
