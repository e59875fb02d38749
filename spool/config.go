package spool

import (
	"strings"
	"time"

	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/lucas-zimerman/sentry-spool-go/circuitbreaker"
	"github.com/lucas-zimerman/sentry-spool-go/internal/nilcheck"
	"github.com/lucas-zimerman/sentry-spool-go/log"
)

const defaultWorkerBackoff = 500 * time.Millisecond

// Options configures Compose and CachingTransport. Only CacheRoot,
// InnerTransport and Decoder are meaningfully required; everything else
// defaults per the on-disk layout and error-handling contract.
type Options struct {
	// CacheRoot is the directory under which the per-DSN spool lives. Empty
	// or whitespace-only disables the spool entirely: Compose returns the
	// raw InnerTransport.
	CacheRoot string

	// DSN identifies the remote endpoint; it is hashed to derive the
	// isolated spool root. Empty uses the literal "no-dsn" directory name.
	DSN string

	// MaxQueueItems bounds the ready set. Values below 1 are treated as 0,
	// meaning every write evicts the entire existing ready set first.
	MaxQueueItems int

	// CacheFlushTimeout bounds Compose's startup flush. Zero disables it.
	CacheFlushTimeout time.Duration

	// InnerTransport performs the actual network send.
	InnerTransport InnerTransport

	// Logger receives fire-and-forget debug/warn/error/fatal messages.
	// Defaults to log.NewNop().
	Logger log.Logger

	// Production redacts error text down to its type in every log.SafeError
	// call the worker makes, so raw remote-response or decode-failure text
	// (which may carry caller-supplied data) never reaches a production log
	// sink. Defaults to false.
	Production bool

	// Decoder reconstructs an Envelope from bytes read back off disk. The
	// caller's SDK data model owns serialization; the spool is opaque to it.
	Decoder EnvelopeDecoder

	retryClassifier TransportErrorClassifier
	breaker         *circuitbreaker.Breaker
	meterProvider   metric.MeterProvider
	tracer          trace.Tracer
	workerBackoff   time.Duration
}

// Option mutates Options at construction time.
type Option func(*Options)

// WithRetryClassifier overrides the default network-failure classifier.
func WithRetryClassifier(classifier TransportErrorClassifier) Option {
	return func(o *Options) { o.retryClassifier = classifier }
}

// WithCircuitBreaker wraps InnerTransport.Send calls in breaker, so
// consecutive failed sends (of any kind) stop the worker from retrying
// against an already-down endpoint every cycle.
func WithCircuitBreaker(breaker *circuitbreaker.Breaker) Option {
	return func(o *Options) { o.breaker = breaker }
}

// WithMeterProvider overrides the OpenTelemetry MeterProvider used for
// transport metrics. Defaults to otel.GetMeterProvider().
func WithMeterProvider(provider metric.MeterProvider) Option {
	return func(o *Options) { o.meterProvider = provider }
}

// WithTracer overrides the tracer used to span Send, Flush, and each drain
// cycle. Defaults to otel.Tracer("spool").
func WithTracer(tracer trace.Tracer) Option {
	return func(o *Options) { o.tracer = tracer }
}

// WithWorkerBackoff overrides the worker loop's fixed backoff after an
// error. Defaults to 500ms.
func WithWorkerBackoff(d time.Duration) Option {
	return func(o *Options) { o.workerBackoff = d }
}

// normalize applies options, fills defaults, and validates required fields.
// Returns ErrInvalidConfig if CacheRoot is empty after TrimSpace, or if
// InnerTransport or Decoder is nil.
func (o Options) normalize(opts ...Option) (Options, error) {
	for _, opt := range opts {
		opt(&o)
	}

	if strings.TrimSpace(o.CacheRoot) == "" {
		return o, ErrInvalidConfig
	}

	if nilcheck.Interface(o.InnerTransport) {
		return o, ErrInvalidConfig
	}

	if o.Decoder == nil {
		return o, ErrInvalidConfig
	}

	if o.MaxQueueItems < 1 {
		o.MaxQueueItems = 0
	}

	if nilcheck.Interface(o.Logger) {
		o.Logger = log.NewNop()
	}

	if o.retryClassifier == nil {
		o.retryClassifier = DefaultNetworkClassifier()
	}

	if o.workerBackoff <= 0 {
		o.workerBackoff = defaultWorkerBackoff
	}

	return o, nil
}
