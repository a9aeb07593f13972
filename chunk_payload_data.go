package sctp

import (
	"encoding/binary"
	"fmt"
	"time"
)

// payloadDataHeaderSize is the 12-byte DATA-specific header that follows
// the 4-byte chunk header (§6): tsn:32, sid:16, ssn:16, ppid:32.
const payloadDataHeaderSize = 12

const (
	dataChunkFlagEnd        uint8 = 1 << 0
	dataChunkFlagBeginning  uint8 = 1 << 1
	dataChunkFlagUnordered  uint8 = 1 << 2
	dataChunkFlagImmediate  uint8 = 1 << 3
)

// chunkPayloadData is a DATA chunk carrying (a fragment of) one user
// message. It is also the element type of the pending/inflight/payload
// queues described in §3.
type chunkPayloadData struct {
	tsn                  uint32
	streamIdentifier     uint16
	streamSequenceNumber uint16
	payloadType          PayloadProtocolIdentifier
	userData             []byte

	beginningFragment bool
	endingFragment    bool
	unordered         bool
	immediateSack     bool

	// bookkeeping maintained by the association/queues, not on the wire.
	acked        bool
	abandoned    bool
	retransmit   bool
	nSent        uint32
	missIndicator uint32
	retryCount    uint32
	sentTime      time.Time
	retryTime     time.Time

	// resetMarker, when true, means this is not real user data but a
	// placeholder enqueued on the pending queue to request a stream
	// reset once prior DATA on that stream has been sent (§4.2.2.b).
	resetMarker bool

	// reliability policy copied from the owning stream at enqueue time,
	// consulted by the gatherer's abandonment check (§4.2.2.b, §8
	// scenario 5).
	reliabilityType  reliabilityType
	reliabilityValue uint32
	createdAt        time.Time
}

func (d *chunkPayloadData) unmarshal(raw []byte) error {
	var h chunkHeader
	if err := h.unmarshal(raw); err != nil {
		return err
	}
	if h.typ != ctData {
		return fmt.Errorf("%w: expected DATA got %s", ErrUnmarshalUnknownChunkType, h.typ)
	}
	if len(raw) < chunkHeaderSize+payloadDataHeaderSize {
		return fmt.Errorf("%w: %d", ErrChunkTooSmall, len(raw))
	}

	d.endingFragment = h.flags&dataChunkFlagEnd != 0
	d.beginningFragment = h.flags&dataChunkFlagBeginning != 0
	d.unordered = h.flags&dataChunkFlagUnordered != 0
	d.immediateSack = h.flags&dataChunkFlagImmediate != 0

	body := raw[chunkHeaderSize:h.length]
	d.tsn = binary.BigEndian.Uint32(body[0:4])
	d.streamIdentifier = binary.BigEndian.Uint16(body[4:6])
	d.streamSequenceNumber = binary.BigEndian.Uint16(body[6:8])
	d.payloadType = PayloadProtocolIdentifier(binary.BigEndian.Uint32(body[8:12]))
	d.userData = append([]byte(nil), body[payloadDataHeaderSize:]...)

	return nil
}

func (d *chunkPayloadData) marshal() ([]byte, error) {
	flags := uint8(0)
	if d.endingFragment {
		flags |= dataChunkFlagEnd
	}
	if d.beginningFragment {
		flags |= dataChunkFlagBeginning
	}
	if d.unordered {
		flags |= dataChunkFlagUnordered
	}
	if d.immediateSack {
		flags |= dataChunkFlagImmediate
	}

	raw := make([]byte, chunkHeaderSize+payloadDataHeaderSize+len(d.userData))
	h := chunkHeader{typ: ctData, flags: flags, length: uint16(chunkHeaderSize + d.valueLength())}
	copy(raw, h.marshal())

	binary.BigEndian.PutUint32(raw[chunkHeaderSize:], d.tsn)
	binary.BigEndian.PutUint16(raw[chunkHeaderSize+4:], d.streamIdentifier)
	binary.BigEndian.PutUint16(raw[chunkHeaderSize+6:], d.streamSequenceNumber)
	binary.BigEndian.PutUint32(raw[chunkHeaderSize+8:], uint32(d.payloadType))
	copy(raw[chunkHeaderSize+payloadDataHeaderSize:], d.userData)

	return raw, nil
}

func (d *chunkPayloadData) check() (bool, error) {
	return false, nil
}

func (d *chunkPayloadData) valueLength() int {
	return payloadDataHeaderSize + len(d.userData)
}

func (d *chunkPayloadData) String() string {
	return fmt.Sprintf("DATA(tsn=%d sid=%d ssn=%d len=%d begin=%v end=%v)",
		d.tsn, d.streamIdentifier, d.streamSequenceNumber, len(d.userData), d.beginningFragment, d.endingFragment)
}
