package sslrelay

// role identifies which side of the connection a worker owns. Naming of
// the events a worker emits follows the direction of the intended write,
// not the worker's own role — see eventKind below.
type role int

const (
	roleDownstream role = iota
	roleUpstream
)

func (r role) String() string {
	if r == roleDownstream {
		return "downstream"
	}
	return "upstream"
}

type eventKind int

const (
	// evDownstreamWrite carries bytes read from the upstream worker that
	// are destined (pending callback dispatch) for a write toward the
	// downstream peer.
	evDownstreamWrite eventKind = iota
	// evUpstreamWrite is the symmetric case: bytes read from the
	// downstream worker, destined for the upstream peer.
	evUpstreamWrite
	evDownstreamShutdown
	evUpstreamShutdown
)

// workerEvent is a Worker -> FDC message (FullDuplexTcpState in spec terms).
type workerEvent struct {
	kind eventKind
	data []byte
}

type cmdKind int

const (
	cmdWrite cmdKind = iota
	cmdShutdown
)

// command is an FDC -> Worker message (DataPipe in spec terms).
type command struct {
	kind cmdKind
	data []byte
}
