//go:build linux

package sslrelay

import (
	"net"

	"golang.org/x/sys/unix"
)

// applySocketOptions configures TCP performance options on conn's raw file
// descriptor: Nagle's algorithm disabled (the relay's latency budget is
// dominated by the transform callback, not small-packet coalescing) and
// keepalive enabled so a half-dead peer is detected instead of leaving a
// worker blocked on a socket that will never produce another byte.
// Adapted from the teacher proxy's dialer-side Control callback; applied
// here to both the upstream dial and accepted downstream connections.
func applySocketOptions(conn net.Conn) error {
	tc, ok := conn.(*net.TCPConn)
	if !ok {
		return nil
	}
	raw, err := tc.SyscallConn()
	if err != nil {
		return err
	}

	var sysErr error
	err = raw.Control(func(fd uintptr) {
		if e := unix.SetsockoptInt(int(fd), unix.IPPROTO_TCP, unix.TCP_NODELAY, 1); e != nil {
			sysErr = e
			return
		}
		if e := unix.SetsockoptInt(int(fd), unix.SOL_SOCKET, unix.SO_KEEPALIVE, 1); e != nil {
			sysErr = e
			return
		}
		if e := unix.SetsockoptInt(int(fd), unix.IPPROTO_TCP, unix.TCP_KEEPIDLE, 30); e != nil {
			sysErr = e
			return
		}
		if e := unix.SetsockoptInt(int(fd), unix.IPPROTO_TCP, unix.TCP_KEEPINTVL, 10); e != nil {
			sysErr = e
			return
		}
		if e := unix.SetsockoptInt(int(fd), unix.IPPROTO_TCP, unix.TCP_KEEPCNT, 3); e != nil {
			sysErr = e
			return
		}
	})
	if err != nil {
		return err
	}
	return sysErr
}
