package spool

import (
	"errors"
	"net"
	"net/url"
)

// TransportErrorClassifier distinguishes a transient, socket-level failure
// from the inner transport (retry after the next startup's reclaim) from
// any other rejection (discard).
type TransportErrorClassifier interface {
	IsNetworkUnreachable(err error) bool
}

// TransportErrorClassifierFunc adapts a function to TransportErrorClassifier.
type TransportErrorClassifierFunc func(err error) bool

// IsNetworkUnreachable implements TransportErrorClassifier.
func (fn TransportErrorClassifierFunc) IsNetworkUnreachable(err error) bool {
	if fn == nil {
		return false
	}

	return fn(err)
}

// defaultClassifier walks the error chain for a net.Error (dial/socket
// failures, timeouts reaching the remote host) and treats everything else
// the inner transport returns, including non-2xx responses it surfaces as
// plain errors, as permanent.
type defaultClassifier struct{}

// DefaultNetworkClassifier returns the classifier CachingTransport uses when
// none is supplied via WithRetryClassifier.
func DefaultNetworkClassifier() TransportErrorClassifier {
	return defaultClassifier{}
}

func (defaultClassifier) IsNetworkUnreachable(err error) bool {
	if err == nil {
		return false
	}

	if errors.Is(err, ErrNetworkUnreachable) {
		return true
	}

	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		err = urlErr.Err
	}

	var netErr net.Error

	return errors.As(err, &netErr)
}
