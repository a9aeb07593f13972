package sctp

import (
	"encoding/binary"
	"fmt"
)

// errorCause identifiers; only StaleCookie is produced by this core (§4.1).
type errorCause uint16

const (
	errorCauseStaleCookie errorCause = 3
)

// chunkError carries one or more error causes, here restricted to the
// StaleCookie cause the handshake can emit (§4.1, §7).
type chunkError struct {
	cause       errorCause
	// measure is the microsecond overflow reported for StaleCookie.
	measure uint32
}

const errorCauseHeaderSize = 4
const staleCookieCauseLength = errorCauseHeaderSize + 4

func (c *chunkError) unmarshal(raw []byte) error {
	var h chunkHeader
	if err := h.unmarshal(raw); err != nil {
		return err
	}
	if h.typ != ctError {
		return fmt.Errorf("%w: expected ERROR got %s", ErrUnmarshalUnknownChunkType, h.typ)
	}
	body := raw[chunkHeaderSize:h.length]
	if len(body) < errorCauseHeaderSize {
		return nil
	}
	c.cause = errorCause(binary.BigEndian.Uint16(body[0:2]))
	if c.cause == errorCauseStaleCookie && len(body) >= staleCookieCauseLength {
		c.measure = binary.BigEndian.Uint32(body[errorCauseHeaderSize:staleCookieCauseLength])
	}
	return nil
}

func (c *chunkError) marshal() ([]byte, error) {
	body := make([]byte, staleCookieCauseLength)
	binary.BigEndian.PutUint16(body[0:2], uint16(c.cause))
	binary.BigEndian.PutUint16(body[2:4], staleCookieCauseLength)
	binary.BigEndian.PutUint32(body[errorCauseHeaderSize:], c.measure)

	h := chunkHeader{typ: ctError, length: uint16(chunkHeaderSize + len(body))}
	return append(h.marshal(), body...), nil
}

func (c *chunkError) check() (bool, error) { return false, nil }

func (c *chunkError) valueLength() int { return staleCookieCauseLength }

func (c *chunkError) String() string {
	return fmt.Sprintf("ERROR(cause=%d measure=%d)", c.cause, c.measure)
}
