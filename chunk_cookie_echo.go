package sctp

import "fmt"

// chunkCookieEcho carries the cookie the peer was issued in INIT-ACK
// back to the sender of that cookie (§4.1).
type chunkCookieEcho struct {
	cookie []byte
}

func (c *chunkCookieEcho) unmarshal(raw []byte) error {
	var h chunkHeader
	if err := h.unmarshal(raw); err != nil {
		return err
	}
	if h.typ != ctCookieEcho {
		return fmt.Errorf("%w: expected COOKIE-ECHO got %s", ErrUnmarshalUnknownChunkType, h.typ)
	}
	c.cookie = append([]byte(nil), raw[chunkHeaderSize:h.length]...)
	return nil
}

func (c *chunkCookieEcho) marshal() ([]byte, error) {
	h := chunkHeader{typ: ctCookieEcho, length: uint16(chunkHeaderSize + len(c.cookie))}
	return append(h.marshal(), c.cookie...), nil
}

func (c *chunkCookieEcho) check() (bool, error) { return false, nil }

func (c *chunkCookieEcho) valueLength() int { return len(c.cookie) }

func (c *chunkCookieEcho) String() string {
	return fmt.Sprintf("COOKIE-ECHO(len=%d)", len(c.cookie))
}
