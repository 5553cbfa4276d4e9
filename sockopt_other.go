//go:build !linux

package sslrelay

import "net"

// applySocketOptions is a no-op on non-Linux platforms. The Linux-specific
// version in sockopt_linux.go sets TCP_NODELAY and keepalive options.
func applySocketOptions(conn net.Conn) error {
	return nil
}
