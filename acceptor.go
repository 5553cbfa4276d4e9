package sslrelay

import (
	"crypto/tls"
	"errors"
	"fmt"
	"net"
)

// Relay is the top-level entry point: bind a listener per Config, and for
// each accepted connection construct a fresh FDC and let it run
// independently. It mirrors the source's SSLRelay type — New + Start — and
// the teacher's StartProxy accept loop.
type Relay struct {
	cfg     *Config
	handler Handler
	opts    EngineOptions

	tlsConfig *tls.Config
	listener  net.Listener
}

// New builds a Relay from a decoded Config and a user Handler. handler may
// be BaseHandler{} (or an embedding of it) to get pass-through defaults.
func New(cfg *Config, handler Handler, opts EngineOptions) (*Relay, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	opts = opts.withDefaults()
	opts.VerifyUpstreamCert = cfg.VerifyUpstreamCert
	if cfg.ReadTimeout > 0 {
		opts.PollInterval = cfg.ReadTimeout
	}
	if cfg.MaxBufferBytes != 0 {
		opts.MaxBufferBytes = cfg.MaxBufferBytes
	}

	r := &Relay{cfg: cfg, handler: handler, opts: opts}

	if cfg.DownstreamKind == KindTLS {
		cert, err := tls.X509KeyPair(cfg.TLSMaterial.CertPEM, cfg.TLSMaterial.KeyPEM)
		if err != nil {
			return nil, newConfigError("tls_material", fmt.Errorf("parse certificate/key: %w", err))
		}
		r.tlsConfig = &tls.Config{Certificates: []tls.Certificate{cert}}
	}

	return r, nil
}

// Run binds the listener and accepts connections until the listener is
// closed; any other Accept error is logged and the loop continues. It never returns nil
// on a clean bind error: that is a fatal configuration/bind error per
// spec.md §7 and is the caller's responsibility to treat as such (e.g. by
// calling log.Fatal in cmd/sslrelay).
func (r *Relay) Run() error {
	ln, err := net.Listen("tcp", r.cfg.BindAddress())
	if err != nil {
		return fmt.Errorf("bind %s: %w", r.cfg.BindAddress(), err)
	}
	r.listener = ln
	defer ln.Close()

	r.opts.Logger.Printf("[SSLRelay] listening on %s (downstream=%s) -> %s:%d (upstream=%s)",
		r.cfg.BindAddress(), r.cfg.DownstreamKind, r.cfg.RemoteHost, r.cfg.RemotePort, r.cfg.UpstreamKind)

	for {
		conn, err := ln.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				return nil
			}
			r.opts.Logger.Printf("[SSLRelay] accept error: %v", err)
			continue
		}
		go r.acceptOne(conn)
	}
}

// Close stops the listener, causing a blocked Run to return.
func (r *Relay) Close() error {
	if r.listener == nil {
		return nil
	}
	return r.listener.Close()
}

// acceptOne performs the optional downstream TLS accept and, on success,
// constructs and drives a fresh FDC. It never blocks the acceptor loop
// beyond this one connection's handshake.
func (r *Relay) acceptOne(conn net.Conn) {
	_ = applySocketOptions(conn)

	var ds *Stream
	if r.cfg.DownstreamKind == KindTLS {
		tlsConn := tls.Server(conn, r.tlsConfig)
		if err := tlsConn.Handshake(); err != nil {
			r.opts.Logger.Printf("[SSLRelay] downstream TLS handshake failed: %v", err)
			_ = conn.Close()
			return
		}
		ds = NewTLSStream(tlsConn)
	} else {
		ds = NewRawStream(conn)
	}

	fdc, err := NewFDC(ds, r.cfg.UpstreamKind, r.cfg.RemoteHost, r.cfg.RemotePort, r.handler, r.opts)
	if err != nil {
		r.opts.Logger.Printf("[SSLRelay] %v", err)
		return
	}
	fdc.Handle()
}
