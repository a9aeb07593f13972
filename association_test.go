package sctp

import (
	"testing"
	"time"

	"github.com/pion/logging"
	"github.com/pion/transport/v4/test"
	"github.com/stretchr/testify/require"
)

// pipeConn is an in-memory, lossless, ordered datagram transport
// connecting two Associations in tests, standing in for the DTLS/UDP
// transport this module treats as out of scope (§1).
type pipeConn struct {
	out chan []byte
	in  chan []byte
}

func newPipePair() (Conn, Conn) {
	ab := make(chan []byte, 64)
	ba := make(chan []byte, 64)
	return &pipeConn{out: ab, in: ba}, &pipeConn{out: ba, in: ab}
}

func (p *pipeConn) ReadTimeout(buf []byte, timeout time.Duration) (int, error) {
	select {
	case data := <-p.in:
		return copy(buf, data), nil
	case <-time.After(timeout):
		return 0, errReadTimeout
	}
}

func (p *pipeConn) Write(buf []byte) (int, error) {
	cp := append([]byte(nil), buf...)
	p.out <- cp
	return len(buf), nil
}

func (p *pipeConn) Close() error { return nil }

func TestAssociationHandshakeAndDataTransfer(t *testing.T) {
	lim := test.TimeOut(10 * time.Second)
	defer lim.Stop()
	report := test.CheckRoutines(t)
	defer report()

	clientConn, serverConn := newPipePair()
	lf := logging.NewDefaultLoggerFactory()

	serverReady := make(chan *Stream, 1)

	// Server blocks until the handshake completes, which needs the
	// client's INIT, so it runs alongside Client.
	type serverResult struct {
		a   *Association
		err error
	}
	serverCh := make(chan serverResult, 1)
	go func() {
		a, err := Server(Config{NetConn: serverConn, LoggerFactory: lf})
		serverCh <- serverResult{a: a, err: err}
	}()

	client, err := Client(Config{NetConn: clientConn, LoggerFactory: lf})
	require.NoError(t, err)
	defer client.Close() //nolint:errcheck

	res := <-serverCh
	require.NoError(t, res.err)
	server := res.a
	defer server.Close() //nolint:errcheck

	server.SetListener(AssociationListener{
		OnRawStream: func(s *Stream) { serverReady <- s },
	})

	waitForState(t, client, established)
	waitForState(t, server, established)

	clientStream, err := client.OpenStream("test", PayloadTypeWebRTCString)
	require.NoError(t, err)

	_, err = clientStream.WriteSCTP([]byte("ping"), PayloadTypeWebRTCString)
	require.NoError(t, err)

	var serverStream *Stream
	select {
	case serverStream = <-serverReady:
	case <-time.After(5 * time.Second):
		t.Fatal("server never observed the new stream")
	}

	buf := make([]byte, 64)
	n, err := serverStream.ReadSCTP(buf)
	require.NoError(t, err)
	require.Equal(t, "ping", string(buf[:n]))

	_, err = serverStream.WriteSCTP([]byte("pong"), PayloadTypeWebRTCString)
	require.NoError(t, err)

	n, err = clientStream.ReadSCTP(buf)
	require.NoError(t, err)
	require.Equal(t, "pong", string(buf[:n]))
}

func waitForState(t *testing.T, a *Association, want associationState) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if a.getState() == want {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("association never reached state %s, stuck at %s", want, a.getState())
}
