// Command sctp-echo drives a bare-bones SCTP association over UDP: the
// server side reflects every message it receives back on the same
// stream, the client side sends one -message and prints what comes
// back. It exists to exercise association.go end to end without a
// DTLS stack, which this module treats as an external collaborator
// (§1).
package main

import (
	"flag"
	"fmt"
	"log"
	"net"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/pion/logging"

	"github.com/pion/sctp"
)

func main() {
	listenAddr := flag.String("listen", "", "local UDP address to bind as server")
	remoteAddr := flag.String("remote", "", "peer's UDP address (required for -listen, and the target for -connect)")
	connect := flag.Bool("connect", false, "run as client instead of server")
	message := flag.String("message", "hello", "message to echo as a client")
	flag.Parse()

	loggerFactory := logging.NewDefaultLoggerFactory()

	switch {
	case *connect:
		if err := runClient(*remoteAddr, *message, loggerFactory); err != nil {
			log.Fatal(err)
		}
	case *listenAddr != "":
		if err := runServer(*listenAddr, *remoteAddr, loggerFactory); err != nil {
			log.Fatal(err)
		}
	default:
		fmt.Fprintln(os.Stderr, "usage: sctp-echo -listen local -remote peer | -connect -remote peer")
		os.Exit(2)
	}
}

// runServer dials the peer address up front, mirroring the fixed-peer
// assumption a WebRTC data channel's DTLS transport already provides
// (no multi-homing or path discovery, per the Non-goals this core
// inherits from the association layer).
func runServer(localAddr, remoteAddr string, lf logging.LoggerFactory) error {
	local, err := net.ResolveUDPAddr("udp", localAddr)
	if err != nil {
		return err
	}
	remote, err := net.ResolveUDPAddr("udp", remoteAddr)
	if err != nil {
		return err
	}
	conn, err := net.DialUDP("udp", local, remote)
	if err != nil {
		return err
	}

	a, err := sctp.Server(sctp.Config{NetConn: sctp.NewUDPConn(conn), LoggerFactory: lf})
	if err != nil {
		return err
	}
	defer a.Close() //nolint:errcheck

	a.SetListener(sctp.AssociationListener{
		OnRawStream: func(s *sctp.Stream) {
			go echoStream(s)
		},
	})

	select {} //nolint:gosimple
}

func echoStream(s *sctp.Stream) {
	buf := make([]byte, 65536)
	for {
		n, err := s.ReadSCTP(buf)
		if err != nil {
			return
		}
		if _, err := s.WriteSCTP(buf[:n], sctp.PayloadTypeWebRTCString); err != nil {
			return
		}
	}
}

func runClient(addr, message string, lf logging.LoggerFactory) error {
	udpAddr, err := net.ResolveUDPAddr("udp", addr)
	if err != nil {
		return err
	}
	conn, err := net.DialUDP("udp", nil, udpAddr)
	if err != nil {
		return err
	}

	a, err := sctp.Client(sctp.Config{NetConn: sctp.NewUDPConn(conn), LoggerFactory: lf})
	if err != nil {
		return err
	}
	defer a.Close() //nolint:errcheck

	// The stream label itself carries no protocol meaning at this layer
	// (DCEP label negotiation is out of scope, §1); a random label just
	// keeps repeated demo runs from colliding in server-side logs.
	s, err := a.OpenStream(uuid.NewString(), sctp.PayloadTypeWebRTCString)
	if err != nil {
		return err
	}
	if _, err := s.WriteSCTP([]byte(message), sctp.PayloadTypeWebRTCString); err != nil {
		return err
	}

	buf := make([]byte, 65536)
	n, err := s.ReadSCTP(buf)
	if err != nil {
		return err
	}
	fmt.Printf("echoed: %s\n", buf[:n])
	time.Sleep(100 * time.Millisecond)
	return nil
}
