package sctp

import (
	"net"
	"time"
)

// udpConn adapts a connected *net.UDPConn to the Conn interface (§6).
// WebRTC normally terminates this association over DTLS; udpConn exists
// so cmd/sctp-echo can demonstrate the engine without pulling in a DTLS
// stack, which is out of scope here (§1).
type udpConn struct {
	*net.UDPConn
}

// NewUDPConn wraps an already-connected UDP socket for use as an
// association's transport.
func NewUDPConn(c *net.UDPConn) Conn {
	return &udpConn{UDPConn: c}
}

func (u *udpConn) ReadTimeout(buf []byte, timeout time.Duration) (int, error) {
	if err := u.SetReadDeadline(time.Now().Add(timeout)); err != nil {
		return 0, err
	}
	n, err := u.Read(buf)
	if err != nil {
		if ne, ok := err.(net.Error); ok && ne.Timeout() {
			return 0, errReadTimeout
		}
		return 0, err
	}
	return n, nil
}
