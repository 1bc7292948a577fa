package client

import (
	"context"
	"errors"
	"net"
	"time"
)

// ErrConnExpired is returned when a connection exceeds its max lifetime.
// retryTransport does not count it as a retry attempt.
var ErrConnExpired = errors.New("connection expired")

// timedConn reports itself as closed once maxLifetime has passed, so the
// transport dials a fresh connection with a new DNS lookup.
type timedConn struct {
	net.Conn
	createdAt   time.Time
	maxLifetime time.Duration
}

func dialTimed(dialer *net.Dialer, maxLifetime time.Duration) func(ctx context.Context, network, addr string) (net.Conn, error) {
	return func(ctx context.Context, network, addr string) (net.Conn, error) {
		conn, err := dialer.DialContext(ctx, network, addr)
		if err != nil {
			return nil, err
		}
		return &timedConn{Conn: conn, createdAt: time.Now(), maxLifetime: maxLifetime}, nil
	}
}

func (c *timedConn) isExpired() bool {
	return time.Since(c.createdAt) > c.maxLifetime
}

func (c *timedConn) Read(b []byte) (n int, err error) {
	if c.isExpired() {
		_ = c.Close() //nolint:errcheck // Best effort cleanup on expiry
		return 0, ErrConnExpired
	}
	return c.Conn.Read(b)
}

func (c *timedConn) Write(b []byte) (n int, err error) {
	if c.isExpired() {
		_ = c.Close() //nolint:errcheck // Best effort cleanup on expiry
		return 0, ErrConnExpired
	}
	return c.Conn.Write(b)
}
