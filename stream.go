package sctp

import (
	"io"
	"sync"
	"time"
)

// reliabilityType names the partial-reliability policy of a stream (§3).
type reliabilityType int

const (
	reliabilityTypeReliable reliabilityType = iota
	reliabilityTypeRexmit
	reliabilityTypeTimed
)

func (r reliabilityType) String() string {
	switch r {
	case reliabilityTypeReliable:
		return "Reliable"
	case reliabilityTypeRexmit:
		return "Rexmit"
	case reliabilityTypeTimed:
		return "Timed"
	default:
		return "Unknown"
	}
}

// streamState mirrors the lifecycle of one logical stream.
type streamState int

const (
	streamStateOpen streamState = iota
	streamStateClosing
	streamStateClosed
)

// Stream is one logical SCTP stream multiplexed inside an association
// (§3 "Stream"). It exposes an io.Reader/io.Writer-shaped API, the
// surface a pluggable reassembly/DCEP consumer (kept out of scope by
// spec.md §1) is expected to drive — see SPEC_FULL.md §4.
type Stream struct {
	association *Association
	id          uint16
	label       string

	lock sync.RWMutex

	reliabilityType  reliabilityType
	reliabilityValue uint32
	unordered        bool

	nextMessageSeqIn  uint16
	haveSeqIn         bool
	nextMessageSeqOut uint16

	state streamState

	reassembly map[uint16]*fragmentedMessage

	readCh    chan []byte
	readErrCh chan error
	closeOnce sync.Once
}

// fragmentedMessage accumulates DATA chunks sharing one stream sequence
// number until the ending fragment arrives.
type fragmentedMessage struct {
	ppi   PayloadProtocolIdentifier
	parts [][]byte
}

func newStream(a *Association, id uint16, label string) *Stream {
	return &Stream{
		association: a,
		id:          id,
		label:       label,
		reassembly:  map[uint16]*fragmentedMessage{},
		readCh:      make(chan []byte, 64),
		readErrCh:   make(chan error, 1),
	}
}

// StreamIdentifier returns the stream's numeric identifier (§3).
func (s *Stream) StreamIdentifier() uint16 { return s.id }

// Label returns the stream's human-readable label, if any.
func (s *Stream) Label() string { return s.label }

// SetReliabilityParams configures partial reliability for subsequent
// writes (§3 "Stream", §8 scenario 5).
func (s *Stream) SetReliabilityParams(unordered bool, typ reliabilityType, value uint32) {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.unordered = unordered
	s.reliabilityType = typ
	s.reliabilityValue = value
}

// WriteSCTP fragments p (if needed) into DATA chunks and enqueues them
// on the association's pending queue for the next gather iteration
// (§4.2.2.b). ppi is the payload protocol identifier carried on each
// chunk (DCEP vs. user binary/string, per the caller's choice).
func (s *Stream) WriteSCTP(p []byte, ppi PayloadProtocolIdentifier) (int, error) {
	s.lock.Lock()
	if s.state != streamStateOpen {
		s.lock.Unlock()
		return 0, ErrStreamClosed
	}
	assoc := s.association
	maxPayload := assoc.maxPayloadSize()
	if len(p) > assoc.maxMessageSize() {
		s.lock.Unlock()
		return 0, ErrPayloadDataTooLarge
	}
	ssn := s.nextMessageSeqOut
	s.nextMessageSeqOut++
	unordered := s.unordered
	relType := s.reliabilityType
	relValue := s.reliabilityValue
	s.lock.Unlock()

	if len(p) == 0 {
		// A truly empty-payload DATA chunk is reserved in this engine
		// for stream-reset markers (§4.2.2.b); an empty user message is
		// instead sent as one zero byte tagged with the "Empty" PPI
		// variant, the same trick pion's datachannel layer uses.
		assoc.pendingQueue.push(&chunkPayloadData{
			streamIdentifier:     s.id,
			streamSequenceNumber: ssn,
			payloadType:          emptyPPI(ppi),
			userData:             []byte{0},
			beginningFragment:    true,
			endingFragment:       true,
			unordered:            unordered,
		})
		return 0, nil
	}

	for offset := 0; offset < len(p); offset += maxPayload {
		end := offset + maxPayload
		if end > len(p) {
			end = len(p)
		}
		chunkData := append([]byte(nil), p[offset:end]...)
		c := &chunkPayloadData{
			streamIdentifier:     s.id,
			streamSequenceNumber: ssn,
			payloadType:          ppi,
			userData:             chunkData,
			beginningFragment:    offset == 0,
			endingFragment:       end == len(p),
			unordered:            unordered,
		}
		applyReliability(c, relType, relValue)
		assoc.pendingQueue.push(c)
	}

	assoc.notifySend()
	return len(p), nil
}

func emptyPPI(ppi PayloadProtocolIdentifier) PayloadProtocolIdentifier {
	switch ppi {
	case PayloadTypeWebRTCString:
		return PayloadTypeWebRTCStringEmpty
	case PayloadTypeWebRTCBinary:
		return PayloadTypeWebRTCBinaryEmpty
	default:
		return ppi
	}
}

func applyReliability(c *chunkPayloadData, typ reliabilityType, value uint32) {
	c.reliabilityType = typ
	c.reliabilityValue = value
	c.createdAt = time.Now()
}

// ReadSCTP blocks until a full message is reassembled for this stream,
// or the stream/association closes.
func (s *Stream) ReadSCTP(p []byte) (int, error) {
	select {
	case data, ok := <-s.readCh:
		if !ok {
			return 0, io.EOF
		}
		n := copy(p, data)
		return n, nil
	case err := <-s.readErrCh:
		return 0, err
	}
}

// handleData feeds one in-order DATA chunk into this stream's
// reassembly state, delivering a full message to readCh once its
// ending fragment arrives (§4.3 "DATA handling").
func (s *Stream) handleData(c *chunkPayloadData) {
	s.lock.Lock()
	if s.state != streamStateOpen {
		s.lock.Unlock()
		return
	}

	if !c.unordered {
		// Open Question (§9): retain the greatest SSN seen via serial
		// comparison, rather than unconditionally overwriting it.
		if !s.haveSeqIn || sna16GT(c.streamSequenceNumber, s.nextMessageSeqIn) {
			s.nextMessageSeqIn = c.streamSequenceNumber
			s.haveSeqIn = true
		}
	}

	fm, ok := s.reassembly[c.streamSequenceNumber]
	if !ok {
		fm = &fragmentedMessage{ppi: c.payloadType}
		s.reassembly[c.streamSequenceNumber] = fm
	}
	fm.parts = append(fm.parts, c.userData)

	var complete []byte
	delivered := false
	if c.endingFragment {
		switch fm.ppi {
		case PayloadTypeWebRTCStringEmpty, PayloadTypeWebRTCBinaryEmpty:
			complete = []byte{}
		default:
			total := 0
			for _, part := range fm.parts {
				total += len(part)
			}
			complete = make([]byte, 0, total)
			for _, part := range fm.parts {
				complete = append(complete, part...)
			}
		}
		delete(s.reassembly, c.streamSequenceNumber)
		delivered = true
	}
	s.lock.Unlock()

	if delivered {
		select {
		case s.readCh <- complete:
		default:
			// Slow reader: drop rather than block the receive loop
			// under the association lock (§5 "No operation may suspend
			// while holding the lock except on send/receive IO").
		}
	}
}

// fastForwardSSN discards any fragments of messages at or before ssn
// that will now never complete, because the peer abandoned them under
// partial reliability and announced so via FORWARD-TSN (§4.4 step 7).
func (s *Stream) fastForwardSSN(ssn uint16) {
	s.lock.Lock()
	defer s.lock.Unlock()
	for seq := range s.reassembly {
		if sna16LTE(seq, ssn) {
			delete(s.reassembly, seq)
		}
	}
	if !s.haveSeqIn || sna16GT(ssn, s.nextMessageSeqIn) {
		s.nextMessageSeqIn = ssn
		s.haveSeqIn = true
	}
}

// handleRemoteReset closes the receive side once the peer has
// performed a reset request naming this stream (§4.7).
func (s *Stream) handleRemoteReset() {
	s.closeLocal(nil)
}

// closeLocal marks the stream closed and unblocks any pending reader;
// invoked once the association has confirmed a reset (§4.7).
func (s *Stream) closeLocal(err error) {
	s.closeOnce.Do(func() {
		s.lock.Lock()
		s.state = streamStateClosed
		s.lock.Unlock()
		if err == nil {
			close(s.readCh)
		} else {
			s.readErrCh <- err
		}
	})
}

// Close requests a graceful reset of this stream (§4.7, §8 scenario 6).
func (s *Stream) Close() error {
	return s.association.resetStream(s.id)
}
