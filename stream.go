package sslrelay

import (
	"errors"
	"io"
	"net"
	"time"
)

// StreamKind tags a DataStream as plain TCP or TLS-wrapped TCP. Both cases
// expose the identical read/write/shutdown capability set, so the engine
// and workers never branch on it.
type StreamKind int

const (
	KindRaw StreamKind = iota
	KindTLS
)

func (k StreamKind) String() string {
	if k == KindTLS {
		return "tls"
	}
	return "raw"
}

// Stream is a tagged byte-oriented duplex endpoint. It is owned by exactly
// one I/O worker from the moment the FDC hands it over until that worker's
// call to Shutdown; no two goroutines ever operate on the same Stream
// concurrently.
type Stream struct {
	kind StreamKind
	conn net.Conn
}

// NewRawStream wraps a plain TCP (or test) connection.
func NewRawStream(c net.Conn) *Stream { return &Stream{kind: KindRaw, conn: c} }

// NewTLSStream wraps a connection that has already completed its TLS
// handshake (accept or connect).
func NewTLSStream(c net.Conn) *Stream { return &Stream{kind: KindTLS, conn: c} }

func (s *Stream) Kind() StreamKind { return s.kind }

// ReadAvailable performs one non-blocking-equivalent read: it arms a read
// deadline timeout in the future, then issues a single Read. A deadline
// expiring with no bytes read is reported back to the caller as a timeout
// error (see IsWouldBlock), which the worker treats as "would block".
func (s *Stream) ReadAvailable(buf []byte, timeout time.Duration) (int, error) {
	if err := s.conn.SetReadDeadline(time.Now().Add(timeout)); err != nil {
		return 0, err
	}
	return s.conn.Read(buf)
}

// WriteAll writes b in full or returns the first error encountered. net.Conn
// (and tls.Conn) already satisfy the "write fully or fail" contract that
// write_all has in the source.
func (s *Stream) WriteAll(b []byte) error {
	if len(b) == 0 {
		return nil
	}
	_, err := s.conn.Write(b)
	return err
}

// Flush is a no-op: neither net.Conn nor tls.Conn buffer writes. It exists
// to keep the DataStream contract from the spec explicit at call sites.
func (s *Stream) Flush() error { return nil }

// Shutdown closes both directions of the stream. Safe to call at most once
// per the owning worker's lifetime; the spec requires no socket be visibly
// closed twice, so callers must not call it more than once.
func (s *Stream) Shutdown() error { return s.conn.Close() }

// IsWouldBlock reports whether err is the "read timed out with nothing
// available" condition ReadAvailable uses in place of a true non-blocking
// read.
func IsWouldBlock(err error) bool {
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}

// IsPeerClosedOrReset reports whether err indicates the peer cleanly
// half-closed (EOF) or reset the connection. Both are treated identically
// by the worker: emit a shutdown event and tear down the stream.
func IsPeerClosedOrReset(err error) bool {
	if err == nil || IsWouldBlock(err) {
		return false
	}
	if errors.Is(err, io.EOF) || errors.Is(err, net.ErrClosed) {
		return true
	}
	var oe *net.OpError
	return errors.As(err, &oe)
}
