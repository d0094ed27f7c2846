package probe

import (
	"context"
	"errors"
	"io"
	"net"
	"os"
	"syscall"
)

// classifyTransportError maps an error returned by the HTTP client before
// any response arrived. connected reports whether a connection to the
// server was established; a timeout before that is a connection failure.
func classifyTransportError(err error, connected bool) Kind {
	if isTimeout(err) {
		if !connected {
			return KindConnectionFailure
		}
		return KindTimeout
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) && opErr.Op == "dial" {
		return KindConnectionFailure
	}
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return KindConnectionFailure
	}
	if errors.Is(err, syscall.ECONNREFUSED) || errors.Is(err, syscall.ECONNRESET) {
		return KindConnectionFailure
	}
	// server closed the connection without answering
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return KindConnectionFailure
	}
	return KindUnexpected
}

// classifyBodyError maps an error hit while reading a response body.
func classifyBodyError(err error) Kind {
	if isTimeout(err) {
		return KindTimeout
	}
	return KindUnexpected
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, os.ErrDeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
