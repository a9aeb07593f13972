package sctp

import (
	"encoding/binary"
	"fmt"
	"hash/crc32"
)

// castagnoliTable is the CRC32c table used for the common-header checksum.
var castagnoliTable = crc32.MakeTable(crc32.Castagnoli) //nolint:gochecknoglobals

// fourZeroes stands in for the checksum field while it is being computed.
var fourZeroes = [4]byte{} //nolint:gochecknoglobals

// packet represents one SCTP datagram: a 12-byte common header followed
// by one or more chunks (§6 wire format).
type packet struct {
	sourcePort      uint16
	destinationPort uint16
	verificationTag uint32
	chunks          []chunk
}

func (p *packet) unmarshal(raw []byte) error { //nolint:cyclop
	if len(raw) < commonHeaderSize {
		return fmt.Errorf("%w: raw only %d bytes, %d is the minimum length", ErrPacketRawTooSmall, len(raw), commonHeaderSize)
	}

	// An inbound INIT or COOKIE-ECHO always carries a checksum; do not
	// trust a zero checksum field to mean "skip validation" for those
	// chunk types (see SPEC_FULL.md's correction vs. the pack reference).
	doChecksum := false
	if commonHeaderSize+chunkHeaderSize <= len(raw) {
		switch chunkType(raw[commonHeaderSize]) {
		case ctInit, ctCookieEcho:
			doChecksum = true
		default:
		}
	}
	theirChecksum := binary.LittleEndian.Uint32(raw[commonHeaderChecksumOffset:])
	if doChecksum || theirChecksum != 0 {
		ourChecksum := generatePacketChecksum(raw)
		if theirChecksum != ourChecksum {
			return fmt.Errorf("%w: theirs %d ours %d", ErrChecksumMismatch, theirChecksum, ourChecksum)
		}
	}

	p.sourcePort = binary.BigEndian.Uint16(raw[0:])
	p.destinationPort = binary.BigEndian.Uint16(raw[2:])
	p.verificationTag = binary.BigEndian.Uint32(raw[4:])

	offset := commonHeaderSize
	for {
		if offset == len(raw) {
			break
		} else if offset+chunkHeaderSize > len(raw) {
			return fmt.Errorf("%w: offset %d remaining %d", ErrParseSCTPChunkNotEnoughData, offset, len(raw))
		}

		c, err := buildChunk(chunkType(raw[offset]))
		if err != nil {
			return err
		}
		if err := c.unmarshal(raw[offset:]); err != nil {
			return err
		}

		p.chunks = append(p.chunks, c)
		padding := getPadding(c.valueLength() + chunkHeaderSize)
		offset += chunkHeaderSize + c.valueLength() + padding
	}

	return nil
}

func buildChunk(t chunkType) (chunk, error) {
	switch t {
	case ctInit:
		return &chunkInit{}, nil
	case ctInitAck:
		return &chunkInitAck{}, nil
	case ctAbort:
		return &chunkAbort{}, nil
	case ctCookieEcho:
		return &chunkCookieEcho{}, nil
	case ctCookieAck:
		return &chunkCookieAck{}, nil
	case ctHeartbeat:
		return &chunkHeartbeat{}, nil
	case ctHeartbeatAck:
		return &chunkHeartbeatAck{}, nil
	case ctData:
		return &chunkPayloadData{}, nil
	case ctSack:
		return &chunkSelectiveAck{}, nil
	case ctReconfig:
		return &chunkReconfig{}, nil
	case ctForwardTSN:
		return &chunkForwardTSN{}, nil
	case ctError:
		return &chunkError{}, nil
	case ctShutdown:
		return &chunkShutdown{}, nil
	case ctShutdownAck:
		return &chunkShutdownAck{}, nil
	case ctShutdownComplete:
		return &chunkShutdownComplete{}, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnmarshalUnknownChunkType, t)
	}
}

func (p *packet) marshal() ([]byte, error) {
	raw := make([]byte, commonHeaderSize)

	binary.BigEndian.PutUint16(raw[0:], p.sourcePort)
	binary.BigEndian.PutUint16(raw[2:], p.destinationPort)
	binary.BigEndian.PutUint32(raw[4:], p.verificationTag)

	doChecksum := false
	for _, c := range p.chunks {
		chunkRaw, err := c.marshal()
		if err != nil {
			return nil, err
		}
		raw = append(raw, chunkRaw...)

		if padding := getPadding(len(raw)); padding != 0 {
			raw = append(raw, make([]byte, padding)...)
		}
	}

	if len(p.chunks) > 0 {
		switch p.chunks[0].(type) {
		case *chunkInit, *chunkCookieEcho:
			doChecksum = true
		}
	}
	if doChecksum {
		binary.LittleEndian.PutUint32(raw[commonHeaderChecksumOffset:], generatePacketChecksum(raw))
	}

	return raw, nil
}

// generatePacketChecksum computes the CRC32c over raw with the checksum
// field itself treated as zero, per RFC 4960 Appendix B.
func generatePacketChecksum(raw []byte) uint32 {
	sum := crc32.Update(0, castagnoliTable, raw[0:commonHeaderChecksumOffset])
	sum = crc32.Update(sum, castagnoliTable, fourZeroes[:])
	sum = crc32.Update(sum, castagnoliTable, raw[commonHeaderChecksumOffset+4:])
	return sum
}

func (p *packet) String() string {
	s := fmt.Sprintf("Packet: srcPort=%d dstPort=%d verifyTag=%d chunks=%d",
		p.sourcePort, p.destinationPort, p.verificationTag, len(p.chunks))
	for i, c := range p.chunks {
		s += fmt.Sprintf("\n  [%d] %s", i, c.String())
	}
	return s
}
