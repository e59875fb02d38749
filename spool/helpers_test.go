package spool

import (
	"bytes"
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

func secondsToTime(seconds int64) time.Time {
	return time.Unix(seconds, 0)
}

// fakeEnvelope is a minimal Envelope for tests. An empty eventID is assigned
// a freshly generated uuid at construction, matching how a real SDK assigns
// one when the caller doesn't supply it. Serialize/decodeFakeEnvelope frame
// eventID and hash alongside the payload so a round trip through disk
// preserves identity, the same way a real envelope's headers survive it.
type fakeEnvelope struct {
	eventID string
	hash    int64
	payload []byte
}

func newFakeEnvelope(eventID string, hash int64, payload []byte) fakeEnvelope {
	if eventID == "" {
		eventID = strings.ReplaceAll(uuid.New().String(), "-", "")
	}

	return fakeEnvelope{eventID: eventID, hash: hash, payload: payload}
}

func (e fakeEnvelope) Serialize() ([]byte, error) {
	header := fmt.Sprintf("%s %d\n", e.eventID, e.hash)

	return append([]byte(header), e.payload...), nil
}

func (e fakeEnvelope) EventID() string    { return e.eventID }
func (e fakeEnvelope) ContentHash() int64 { return e.hash }

func decodeFakeEnvelope(data []byte) (Envelope, error) {
	idx := bytes.IndexByte(data, '\n')
	if idx < 0 {
		return nil, fmt.Errorf("fakeEnvelope: missing header separator")
	}

	fields := bytes.SplitN(data[:idx], []byte(" "), 2)
	if len(fields) != 2 {
		return nil, fmt.Errorf("fakeEnvelope: malformed header %q", data[:idx])
	}

	hash, err := strconv.ParseInt(string(fields[1]), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("fakeEnvelope: malformed hash: %w", err)
	}

	return fakeEnvelope{eventID: string(fields[0]), hash: hash, payload: data[idx+1:]}, nil
}

// fakeInnerTransport records every Send call and lets tests override its
// behavior via sendFunc, defaulting to always-succeed.
type fakeInnerTransport struct {
	mu       sync.Mutex
	calls    []Envelope
	sendFunc func(ctx context.Context, envelope Envelope) error
	disposed bool
}

func (f *fakeInnerTransport) Send(ctx context.Context, envelope Envelope) error {
	f.mu.Lock()
	f.calls = append(f.calls, envelope)
	fn := f.sendFunc
	f.mu.Unlock()

	if fn != nil {
		return fn(ctx, envelope)
	}

	return nil
}

func (f *fakeInnerTransport) Dispose(_ context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.disposed = true

	return nil
}

func (f *fakeInnerTransport) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()

	return len(f.calls)
}

func (f *fakeInnerTransport) wasDisposed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.disposed
}

// blockingUntil returns a sendFunc that blocks until release is closed, then
// returns nil. Useful for pausing the worker mid-drain.
func blockingUntil(release <-chan struct{}) func(ctx context.Context, envelope Envelope) error {
	return func(ctx context.Context, envelope Envelope) error {
		select {
		case <-release:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
