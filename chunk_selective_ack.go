package sctp

import (
	"encoding/binary"
	"fmt"
)

// gapAckBlock is one (start, end) pair of TSNs relative to cumulativeTSNAck
// that the peer has received out of order (§4.4).
type gapAckBlock struct {
	start uint16
	end   uint16
}

const sackFixedLength = 12 // cumAck:32, arwnd:32, numGapBlocks:16, numDup:16

// chunkSelectiveAck reports the cumulative ack point, the receiver
// window, gap-ack blocks for out-of-order data, and duplicate TSNs
// (§4.4, GLOSSARY "SACK").
type chunkSelectiveAck struct {
	cumulativeTSNAck               uint32
	advertisedReceiverWindowCredit uint32
	gapAckBlocks                   []gapAckBlock
	duplicateTSN                   []uint32
}

func (s *chunkSelectiveAck) unmarshal(raw []byte) error {
	var h chunkHeader
	if err := h.unmarshal(raw); err != nil {
		return err
	}
	if h.typ != ctSack {
		return fmt.Errorf("%w: expected SACK got %s", ErrUnmarshalUnknownChunkType, h.typ)
	}
	if len(raw) < chunkHeaderSize+sackFixedLength {
		return fmt.Errorf("%w: %d", ErrChunkTooSmall, len(raw))
	}
	body := raw[chunkHeaderSize:h.length]

	s.cumulativeTSNAck = binary.BigEndian.Uint32(body[0:4])
	s.advertisedReceiverWindowCredit = binary.BigEndian.Uint32(body[4:8])
	numGapBlocks := binary.BigEndian.Uint16(body[8:10])
	numDup := binary.BigEndian.Uint16(body[10:12])

	offset := sackFixedLength
	for i := uint16(0); i < numGapBlocks; i++ {
		if offset+4 > len(body) {
			return fmt.Errorf("%w: gap-ack block truncated", ErrChunkTooSmall)
		}
		s.gapAckBlocks = append(s.gapAckBlocks, gapAckBlock{
			start: binary.BigEndian.Uint16(body[offset : offset+2]),
			end:   binary.BigEndian.Uint16(body[offset+2 : offset+4]),
		})
		offset += 4
	}
	for i := uint16(0); i < numDup; i++ {
		if offset+4 > len(body) {
			return fmt.Errorf("%w: duplicate TSN list truncated", ErrChunkTooSmall)
		}
		s.duplicateTSN = append(s.duplicateTSN, binary.BigEndian.Uint32(body[offset:offset+4]))
		offset += 4
	}

	return nil
}

func (s *chunkSelectiveAck) marshal() ([]byte, error) {
	body := make([]byte, sackFixedLength+4*len(s.gapAckBlocks)+4*len(s.duplicateTSN))
	binary.BigEndian.PutUint32(body[0:4], s.cumulativeTSNAck)
	binary.BigEndian.PutUint32(body[4:8], s.advertisedReceiverWindowCredit)
	binary.BigEndian.PutUint16(body[8:10], uint16(len(s.gapAckBlocks)))
	binary.BigEndian.PutUint16(body[10:12], uint16(len(s.duplicateTSN)))

	offset := sackFixedLength
	for _, g := range s.gapAckBlocks {
		binary.BigEndian.PutUint16(body[offset:offset+2], g.start)
		binary.BigEndian.PutUint16(body[offset+2:offset+4], g.end)
		offset += 4
	}
	for _, d := range s.duplicateTSN {
		binary.BigEndian.PutUint32(body[offset:offset+4], d)
		offset += 4
	}

	h := chunkHeader{typ: ctSack, length: uint16(chunkHeaderSize + len(body))}
	return append(h.marshal(), body...), nil
}

func (s *chunkSelectiveAck) check() (bool, error) { return false, nil }

func (s *chunkSelectiveAck) valueLength() int {
	return sackFixedLength + 4*len(s.gapAckBlocks) + 4*len(s.duplicateTSN)
}

func (s *chunkSelectiveAck) String() string {
	return fmt.Sprintf("SACK(cumAck=%d arwnd=%d gaps=%d dups=%d)",
		s.cumulativeTSNAck, s.advertisedReceiverWindowCredit, len(s.gapAckBlocks), len(s.duplicateTSN))
}
