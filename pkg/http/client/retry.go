package client

import (
	"errors"
	"io"
	"net"
	"net/http"
	"syscall"

	"github.com/samber/lo"
)

// transientConnErrors are connection failures typical of a pod being
// replaced. They are safe to retry on a different pooled connection.
var transientConnErrors = []error{
	syscall.ECONNREFUSED,
	syscall.ECONNRESET,
	syscall.ENETUNREACH,
	syscall.EPIPE,
	io.EOF,
	io.ErrUnexpectedEOF,
	net.ErrClosed,
}

// retryTransport retries connection level failures immediately. When the
// retries are used up it drops idle connections and makes one final attempt.
// It is the only layer retrying connection failures; status based retries
// with backoff are done by Client. Requests whose body cannot be replayed are
// sent once.
type retryTransport struct {
	base       http.RoundTripper
	transport  *http.Transport // nil if base is not *http.Transport
	maxRetries int
}

func (t *retryTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if !replayable(req) {
		return t.base.RoundTrip(req)
	}
	for attempt := 0; attempt <= t.maxRetries; {
		resp, err := t.send(req, attempt)
		if err == nil {
			return resp, nil
		}
		if errors.Is(err, ErrConnExpired) {
			continue
		}
		if !isTransientConnError(err) {
			return nil, err
		}
		attempt++
	}

	if t.transport != nil {
		t.transport.CloseIdleConnections()
	}
	return t.send(req, t.maxRetries+1)
}

func (t *retryTransport) send(req *http.Request, attempt int) (*http.Response, error) {
	if attempt == 0 {
		return t.base.RoundTrip(req)
	}
	retry, err := rewind(req)
	if err != nil {
		return nil, err
	}
	return t.base.RoundTrip(retry)
}

// replayable reports whether req can be sent again: it has no body or can
// recreate it through GetBody.
func replayable(req *http.Request) bool {
	return req.Body == nil || req.Body == http.NoBody || req.GetBody != nil
}

// rewind clones req with a fresh body. Requests without GetBody are cloned as is.
func rewind(req *http.Request) (*http.Request, error) {
	clone := req.Clone(req.Context())
	if req.GetBody != nil {
		body, err := req.GetBody()
		if err != nil {
			return nil, err
		}
		clone.Body = body
	}
	return clone, nil
}

func isTransientConnError(err error) bool {
	return lo.ContainsBy(transientConnErrors, func(target error) bool {
		return errors.Is(err, target)
	})
}
