package sctp

import (
	"encoding/binary"
	"fmt"
)

// initChunkFixedLength is the fixed portion following the chunk header:
// initiate tag:32, a_rwnd:32, num outbound streams:16, num inbound
// streams:16, initial TSN:32.
const initChunkFixedLength = 16

// chunkInit represents both INIT and INIT-ACK; isAck distinguishes them.
type chunkInit struct {
	isAck bool

	initiateTag                   uint32
	advertisedReceiverWindowCredit uint32
	numOutboundStreams            uint16
	numInboundStreams             uint16
	initialTSN                    uint32

	supportedExtensions []chunkType

	// cookie is only present on INIT-ACK.
	cookie []byte
}

func (c *chunkInit) unmarshal(raw []byte) error {
	var h chunkHeader
	if err := h.unmarshal(raw); err != nil {
		return err
	}
	if h.typ != ctInit && h.typ != ctInitAck {
		return fmt.Errorf("%w: expected INIT/INIT-ACK got %s", ErrUnmarshalUnknownChunkType, h.typ)
	}
	c.isAck = h.typ == ctInitAck

	if len(raw) < chunkHeaderSize+initChunkFixedLength {
		return fmt.Errorf("%w: %d", ErrChunkTooSmall, len(raw))
	}
	body := raw[chunkHeaderSize:h.length]

	c.initiateTag = binary.BigEndian.Uint32(body[0:4])
	c.advertisedReceiverWindowCredit = binary.BigEndian.Uint32(body[4:8])
	c.numOutboundStreams = binary.BigEndian.Uint16(body[8:10])
	c.numInboundStreams = binary.BigEndian.Uint16(body[10:12])
	c.initialTSN = binary.BigEndian.Uint32(body[12:16])

	offset := initChunkFixedLength
	for offset < len(body) {
		var ph paramHeader
		n, err := ph.unmarshal(body[offset:])
		if err != nil {
			break // optional parameters, tolerate trailing garbage
		}
		switch ph.typ {
		case paramTypeSupportedExtensions:
			for _, b := range ph.raw {
				c.supportedExtensions = append(c.supportedExtensions, chunkType(b))
			}
		case paramTypeStateCookie:
			c.cookie = append([]byte(nil), ph.raw...)
		default:
			// unrecognized optional parameter; ignore.
		}
		padded := n + getPadding(n)
		if padded <= 0 {
			break
		}
		offset += padded
	}

	return nil
}

const paramTypeStateCookie paramType = 7

func (c *chunkInit) marshal() ([]byte, error) {
	body := make([]byte, initChunkFixedLength)
	binary.BigEndian.PutUint32(body[0:4], c.initiateTag)
	binary.BigEndian.PutUint32(body[4:8], c.advertisedReceiverWindowCredit)
	binary.BigEndian.PutUint16(body[8:10], c.numOutboundStreams)
	binary.BigEndian.PutUint16(body[10:12], c.numInboundStreams)
	binary.BigEndian.PutUint32(body[12:16], c.initialTSN)

	if len(c.supportedExtensions) > 0 {
		raw := make([]byte, len(c.supportedExtensions))
		for i, ct := range c.supportedExtensions {
			raw[i] = uint8(ct)
		}
		ph := paramHeader{typ: paramTypeSupportedExtensions, raw: raw}
		body = appendParam(body, ph.marshal())
	}
	if c.isAck && len(c.cookie) > 0 {
		ph := paramHeader{typ: paramTypeStateCookie, raw: c.cookie}
		body = appendParam(body, ph.marshal())
	}

	typ := ctInit
	if c.isAck {
		typ = ctInitAck
	}
	h := chunkHeader{typ: typ, length: uint16(chunkHeaderSize + len(body))}
	return append(h.marshal(), body...), nil
}

// appendParam appends a marshaled TLV parameter, padded to a 4-byte
// boundary, to body.
func appendParam(body, raw []byte) []byte {
	body = append(body, raw...)
	if padding := getPadding(len(raw)); padding != 0 {
		body = append(body, make([]byte, padding)...)
	}
	return body
}

func (c *chunkInit) check() (bool, error) {
	return false, nil
}

func (c *chunkInit) valueLength() int {
	l := initChunkFixedLength
	if len(c.supportedExtensions) > 0 {
		l += paramHeaderSize + len(c.supportedExtensions)
		l += getPadding(paramHeaderSize + len(c.supportedExtensions))
	}
	if c.isAck && len(c.cookie) > 0 {
		l += paramHeaderSize + len(c.cookie)
		l += getPadding(paramHeaderSize + len(c.cookie))
	}
	return l
}

func (c *chunkInit) String() string {
	name := "INIT"
	if c.isAck {
		name = "INIT-ACK"
	}
	return fmt.Sprintf("%s(tag=%#x arwnd=%d initialTSN=%d cookieLen=%d)",
		name, c.initiateTag, c.advertisedReceiverWindowCredit, c.initialTSN, len(c.cookie))
}

// chunkInitAck is a thin alias kept for readability at call sites;
// wire behavior is identical to chunkInit with isAck=true.
type chunkInitAck = chunkInit
