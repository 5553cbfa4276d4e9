package sslrelay

// VerdictKind enumerates the CallbackVerdict sum type from the spec: a
// transform callback returns exactly one of these, and the bytes attached
// to Relay/Spoof fully replace the read.
type VerdictKind int

const (
	// VerdictRelay forwards the (possibly rewritten) bytes onward: a
	// downstream-read transform relays to upstream, an upstream-read
	// transform relays to downstream.
	VerdictRelay VerdictKind = iota
	// VerdictSpoof sends the bytes back toward the peer the read came
	// from, as if the opposite side had produced them.
	VerdictSpoof
	// VerdictFreeze silently discards the read.
	VerdictFreeze
	// VerdictShutdown tears down both sides of the connection.
	VerdictShutdown
)

// Verdict is the return value of a transform callback. Construct one with
// Relay, Spoof, Freeze, or ShutdownVerdict.
type Verdict struct {
	Kind VerdictKind
	Data []byte
}

// Relay forwards b onward unchanged (or rewritten by the caller) to the
// opposite stream.
func Relay(b []byte) Verdict { return Verdict{Kind: VerdictRelay, Data: b} }

// Spoof sends b back toward the peer that produced the read, without ever
// reaching the opposite stream.
func Spoof(b []byte) Verdict { return Verdict{Kind: VerdictSpoof, Data: b} }

// Freeze discards the read: nothing is written to either side.
func Freeze() Verdict { return Verdict{Kind: VerdictFreeze} }

// ShutdownVerdict tears down both sides of the connection. Named to avoid
// colliding with the DataStream Shutdown operation.
func ShutdownVerdict() Verdict { return Verdict{Kind: VerdictShutdown} }

// Handler is the user-supplied capability the FDC drives at every splice
// point. Observe operations return nothing and run on a detached goroutine
// with a copy of the bytes; they can never affect the data path. Transform
// operations run inline on the FDC goroutine and their verdict decides the
// data path for that read.
//
// A Handler value is shared across every connection the relay serves and
// across the observer/transform goroutines of a single connection, so an
// implementation that carries mutable state must synchronize it itself —
// the engine places no lock around calls into the handler.
type Handler interface {
	OnDownstreamReadObserve(data []byte)
	OnDownstreamReadTransform(data []byte) Verdict
	OnUpstreamReadObserve(data []byte)
	OnUpstreamReadTransform(data []byte) Verdict
}

// BaseHandler implements Handler with the spec's defaults: observe is a
// no-op, transform relays the input unchanged. Embed it in a handler type
// to override only the operations you need.
type BaseHandler struct{}

func (BaseHandler) OnDownstreamReadObserve(data []byte) {}

func (BaseHandler) OnDownstreamReadTransform(data []byte) Verdict { return Relay(data) }

func (BaseHandler) OnUpstreamReadObserve(data []byte) {}

func (BaseHandler) OnUpstreamReadTransform(data []byte) Verdict { return Relay(data) }

var _ Handler = BaseHandler{}
