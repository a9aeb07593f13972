package sctp

import "fmt"

// chunkCookieAck acknowledges a valid COOKIE-ECHO (§4.1).
type chunkCookieAck struct{}

func (c *chunkCookieAck) unmarshal(raw []byte) error {
	var h chunkHeader
	if err := h.unmarshal(raw); err != nil {
		return err
	}
	if h.typ != ctCookieAck {
		return fmt.Errorf("%w: expected COOKIE-ACK got %s", ErrUnmarshalUnknownChunkType, h.typ)
	}
	return nil
}

func (c *chunkCookieAck) marshal() ([]byte, error) {
	h := chunkHeader{typ: ctCookieAck, length: chunkHeaderSize}
	return h.marshal(), nil
}

func (c *chunkCookieAck) check() (bool, error) { return false, nil }

func (c *chunkCookieAck) valueLength() int { return 0 }

func (c *chunkCookieAck) String() string { return "COOKIE-ACK" }
