package sctp

import "fmt"

// chunkAbort closes an association unceremoniously (§4.1, §9 supplement).
// Error causes are not modeled in detail; the core only needs to send
// and recognize ABORT, not interpret its causes.
type chunkAbort struct {
	errorCauses []byte
}

func (c *chunkAbort) unmarshal(raw []byte) error {
	var h chunkHeader
	if err := h.unmarshal(raw); err != nil {
		return err
	}
	if h.typ != ctAbort {
		return fmt.Errorf("%w: expected ABORT got %s", ErrUnmarshalUnknownChunkType, h.typ)
	}
	c.errorCauses = append([]byte(nil), raw[chunkHeaderSize:h.length]...)
	return nil
}

func (c *chunkAbort) marshal() ([]byte, error) {
	h := chunkHeader{typ: ctAbort, length: uint16(chunkHeaderSize + len(c.errorCauses))}
	return append(h.marshal(), c.errorCauses...), nil
}

func (c *chunkAbort) check() (bool, error) { return false, nil }

func (c *chunkAbort) valueLength() int { return len(c.errorCauses) }

func (c *chunkAbort) String() string { return "ABORT" }
