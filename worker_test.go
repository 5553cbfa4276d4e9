package sslrelay

import (
	"io"
	"log"
	"net"
	"testing"
	"time"
)

func newTestLogger(t *testing.T) *log.Logger {
	t.Helper()
	return log.New(testWriter{t}, "", 0)
}

type testWriter struct{ t *testing.T }

func (w testWriter) Write(p []byte) (int, error) {
	w.t.Logf("%s", p)
	return len(p), nil
}

// newPipeWorker wires a worker to one end of an in-memory net.Pipe and
// returns the worker, the peer's end of the pipe, and the channels a test
// drives/observes.
func newPipeWorker(t *testing.T, r role) (w *worker, peer net.Conn, cmdCh chan command, stateCh chan workerEvent) {
	t.Helper()
	local, remote := net.Pipe()
	cmdCh = make(chan command, 4)
	stateCh = make(chan workerEvent, 4)
	w = newWorker(r, NewRawStream(local), cmdCh, stateCh, 20*time.Millisecond, 0, newTestLogger(t))
	return w, remote, cmdCh, stateCh
}

func TestWorkerEmitsWriteEventForOppositeDirection(t *testing.T) {
	w, peer, _, stateCh := newPipeWorker(t, roleDownstream)
	go w.run()
	defer peer.Close()

	done := make(chan struct{})
	go func() {
		peer.Write([]byte("abc"))
		close(done)
	}()
	<-done

	select {
	case ev := <-stateCh:
		if ev.kind != evUpstreamWrite {
			t.Fatalf("downstream worker read should emit evUpstreamWrite, got %v", ev.kind)
		}
		if string(ev.data) != "abc" {
			t.Fatalf("got data %q, want %q", ev.data, "abc")
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for write event")
	}
}

func TestWorkerUpstreamEmitsDownstreamWrite(t *testing.T) {
	w, peer, _, stateCh := newPipeWorker(t, roleUpstream)
	go w.run()
	defer peer.Close()

	go peer.Write([]byte("xyz"))

	select {
	case ev := <-stateCh:
		if ev.kind != evDownstreamWrite {
			t.Fatalf("upstream worker read should emit evDownstreamWrite, got %v", ev.kind)
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for write event")
	}
}

func TestWorkerWriteCommandReachesPeer(t *testing.T) {
	w, peer, cmdCh, _ := newPipeWorker(t, roleDownstream)
	go w.run()
	defer peer.Close()

	readDone := make(chan []byte, 1)
	go func() {
		buf := make([]byte, 16)
		n, _ := peer.Read(buf)
		readDone <- buf[:n]
	}()

	cmdCh <- command{kind: cmdWrite, data: []byte("hello")}

	select {
	case got := <-readDone:
		if string(got) != "hello" {
			t.Fatalf("peer got %q, want %q", got, "hello")
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for peer to receive write command")
	}
}

func TestWorkerShutdownCommandClosesStream(t *testing.T) {
	w, peer, cmdCh, _ := newPipeWorker(t, roleDownstream)
	go w.run()
	defer peer.Close()

	cmdCh <- command{kind: cmdShutdown}

	select {
	case <-w.done:
	case <-time.After(time.Second):
		t.Fatal("worker did not exit after Shutdown command")
	}

	buf := make([]byte, 1)
	if _, err := peer.Read(buf); err != io.ErrClosedPipe && err != io.EOF {
		t.Fatalf("expected peer to observe closed stream, got %v", err)
	}
}

func TestWorkerEmitsShutdownOnPeerClose(t *testing.T) {
	w, peer, _, stateCh := newPipeWorker(t, roleDownstream)
	go w.run()

	peer.Close()

	select {
	case ev := <-stateCh:
		if ev.kind != evDownstreamShutdown {
			t.Fatalf("expected evDownstreamShutdown, got %v", ev.kind)
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for shutdown event")
	}

	select {
	case <-w.done:
	case <-time.After(time.Second):
		t.Fatal("worker did not exit after peer close")
	}
}

func TestWorkerExitsOnDisconnectedCommandChannel(t *testing.T) {
	local, remote := net.Pipe()
	defer remote.Close()
	cmdCh := make(chan command)
	stateCh := make(chan workerEvent, 4)
	w := newWorker(roleDownstream, NewRawStream(local), cmdCh, stateCh, 10*time.Millisecond, 0, newTestLogger(t))

	done := make(chan struct{})
	go func() {
		w.run()
		close(done)
	}()

	close(cmdCh)

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("worker did not exit after command channel closed")
	}
}
