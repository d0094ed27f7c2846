package probe

import (
	"fmt"
	"time"
)

// Kind tags the outcome of one probe.
type Kind int

const (
	KindSuccess Kind = iota
	KindHTTPError
	KindConnectionFailure
	KindTimeout
	KindUnexpected
)

func (k Kind) String() string {
	switch k {
	case KindSuccess:
		return "success"
	case KindHTTPError:
		return "http-error"
	case KindConnectionFailure:
		return "connection-failure"
	case KindTimeout:
		return "timeout"
	case KindUnexpected:
		return "unexpected-error"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Result is the classified outcome of one request. StatusCode and Body are
// set only when a response was received; Truncated marks a Body cut at
// utils.MaxBodyBytes.
type Result struct {
	Kind       Kind
	StatusCode int
	Body       string
	Truncated  bool
	Message    string
	Err        error
	RequestID  string
	Started    time.Time
	Finished   time.Time
}

func (r Result) OK() bool {
	return r.Kind == KindSuccess
}

func (r Result) Duration() time.Duration {
	return r.Finished.Sub(r.Started)
}

// AsError describes a failed result as an error; nil on success.
func (r Result) AsError() error {
	switch r.Kind {
	case KindSuccess:
		return nil
	case KindHTTPError:
		return fmt.Errorf("http status %d: %s", r.StatusCode, r.Body)
	default:
		return fmt.Errorf("%s: %s", r.Kind, r.Message)
	}
}
