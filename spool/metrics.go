package spool

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

// transportMetrics mirrors the teacher's dispatcherMetrics shape: one
// instrument per counter/gauge/histogram, created once at construction and
// held for the transport's lifetime.
type transportMetrics struct {
	queueDepth       metric.Int64ObservableGauge
	envelopesQueued  metric.Int64Counter
	envelopesSent    metric.Int64Counter
	envelopesDropped metric.Int64Counter
	envelopesEvicted metric.Int64Counter
	flushLatency     metric.Float64Histogram

	observeQueueDepth func() int64
}

// newTransportMetrics creates every instrument under meter "spool". A nil
// provider falls back to otel.GetMeterProvider(). observeQueueDepth backs
// the async queueDepth gauge; it is called at each collection tick.
func newTransportMetrics(provider metric.MeterProvider, observeQueueDepth func() int64) (*transportMetrics, error) {
	if provider == nil {
		provider = otel.GetMeterProvider()
	}

	meter := provider.Meter("spool")

	m := &transportMetrics{observeQueueDepth: observeQueueDepth}

	var err error

	m.queueDepth, err = meter.Int64ObservableGauge(
		"spool.queue.depth",
		metric.WithDescription("number of envelopes in the ready set"),
	)
	if err != nil {
		return nil, err
	}

	m.envelopesQueued, err = meter.Int64Counter(
		"spool.envelopes.queued",
		metric.WithDescription("envelopes durably written to the spool"),
	)
	if err != nil {
		return nil, err
	}

	m.envelopesSent, err = meter.Int64Counter(
		"spool.envelopes.sent",
		metric.WithDescription("envelopes successfully handed to the inner transport"),
	)
	if err != nil {
		return nil, err
	}

	m.envelopesDropped, err = meter.Int64Counter(
		"spool.envelopes.discarded",
		metric.WithDescription("envelopes discarded after a permanent send failure"),
	)
	if err != nil {
		return nil, err
	}

	m.envelopesEvicted, err = meter.Int64Counter(
		"spool.envelopes.evicted",
		metric.WithDescription("envelopes evicted to respect max_queue_items"),
	)
	if err != nil {
		return nil, err
	}

	m.flushLatency, err = meter.Float64Histogram(
		"spool.flush.latency",
		metric.WithDescription("duration of one drain cycle, in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	_, err = meter.RegisterCallback(func(_ context.Context, obs metric.Observer) error {
		obs.ObserveInt64(m.queueDepth, m.observeQueueDepth())

		return nil
	}, m.queueDepth)
	if err != nil {
		return nil, err
	}

	return m, nil
}
