package sctp

import (
	"encoding/binary"
	"fmt"
)

// forwardTSNStream names the last SSN abandoned on one stream, one of
// which is carried per affected stream in a FORWARD-TSN chunk (§4.2.2.f,
// GLOSSARY "FORWARD-TSN").
type forwardTSNStream struct {
	identifier uint16
	sequence   uint16
}

const forwardTSNFixedLength = 4

// chunkForwardTSN advances the peer's cumulative ack point past
// abandoned chunks under partial reliability (§4.4 step 7, §9 Open
// Questions: this type was unimplemented in the teacher lineage and is
// built out fully here).
type chunkForwardTSN struct {
	newCumulativeTSN uint32
	streams          []forwardTSNStream
}

func (f *chunkForwardTSN) unmarshal(raw []byte) error {
	var h chunkHeader
	if err := h.unmarshal(raw); err != nil {
		return err
	}
	if h.typ != ctForwardTSN {
		return fmt.Errorf("%w: expected FORWARD-TSN got %s", ErrUnmarshalUnknownChunkType, h.typ)
	}
	if len(raw) < chunkHeaderSize+forwardTSNFixedLength {
		return fmt.Errorf("%w: %d", ErrChunkTooSmall, len(raw))
	}
	body := raw[chunkHeaderSize:h.length]
	f.newCumulativeTSN = binary.BigEndian.Uint32(body[0:4])

	for off := forwardTSNFixedLength; off+4 <= len(body); off += 4 {
		f.streams = append(f.streams, forwardTSNStream{
			identifier: binary.BigEndian.Uint16(body[off : off+2]),
			sequence:   binary.BigEndian.Uint16(body[off+2 : off+4]),
		})
	}
	return nil
}

func (f *chunkForwardTSN) marshal() ([]byte, error) {
	body := make([]byte, forwardTSNFixedLength+4*len(f.streams))
	binary.BigEndian.PutUint32(body[0:4], f.newCumulativeTSN)
	for i, s := range f.streams {
		off := forwardTSNFixedLength + 4*i
		binary.BigEndian.PutUint16(body[off:off+2], s.identifier)
		binary.BigEndian.PutUint16(body[off+2:off+4], s.sequence)
	}
	h := chunkHeader{typ: ctForwardTSN, length: uint16(chunkHeaderSize + len(body))}
	return append(h.marshal(), body...), nil
}

func (f *chunkForwardTSN) check() (bool, error) { return false, nil }

func (f *chunkForwardTSN) valueLength() int {
	return forwardTSNFixedLength + 4*len(f.streams)
}

func (f *chunkForwardTSN) String() string {
	return fmt.Sprintf("FORWARD-TSN(newCumTSN=%d streams=%d)", f.newCumulativeTSN, len(f.streams))
}
