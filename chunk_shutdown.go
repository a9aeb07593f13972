package sctp

import (
	"encoding/binary"
	"fmt"
)

// chunkShutdown, chunkShutdownAck, chunkShutdownComplete make the
// Shutdown* states of §3 reachable on the wire. Their triggering
// transitions beyond ABORT receipt are explicitly left undefined by
// spec.md §9; this core parses/emits them but does not drive a full
// shutdown sequence.
type chunkShutdown struct {
	cumulativeTSNAck uint32
}

func (c *chunkShutdown) unmarshal(raw []byte) error {
	var h chunkHeader
	if err := h.unmarshal(raw); err != nil {
		return err
	}
	if h.typ != ctShutdown {
		return fmt.Errorf("%w: expected SHUTDOWN got %s", ErrUnmarshalUnknownChunkType, h.typ)
	}
	if len(raw) < chunkHeaderSize+4 {
		return fmt.Errorf("%w: %d", ErrChunkTooSmall, len(raw))
	}
	c.cumulativeTSNAck = binary.BigEndian.Uint32(raw[chunkHeaderSize:])
	return nil
}

func (c *chunkShutdown) marshal() ([]byte, error) {
	body := make([]byte, 4)
	binary.BigEndian.PutUint32(body, c.cumulativeTSNAck)
	h := chunkHeader{typ: ctShutdown, length: uint16(chunkHeaderSize + len(body))}
	return append(h.marshal(), body...), nil
}

func (c *chunkShutdown) check() (bool, error) { return false, nil }
func (c *chunkShutdown) valueLength() int     { return 4 }
func (c *chunkShutdown) String() string       { return fmt.Sprintf("SHUTDOWN(cumTSN=%d)", c.cumulativeTSNAck) }

type chunkShutdownAck struct{}

func (c *chunkShutdownAck) unmarshal(raw []byte) error {
	var h chunkHeader
	if err := h.unmarshal(raw); err != nil {
		return err
	}
	if h.typ != ctShutdownAck {
		return fmt.Errorf("%w: expected SHUTDOWN-ACK got %s", ErrUnmarshalUnknownChunkType, h.typ)
	}
	return nil
}

func (c *chunkShutdownAck) marshal() ([]byte, error) {
	h := chunkHeader{typ: ctShutdownAck, length: chunkHeaderSize}
	return h.marshal(), nil
}

func (c *chunkShutdownAck) check() (bool, error) { return false, nil }
func (c *chunkShutdownAck) valueLength() int     { return 0 }
func (c *chunkShutdownAck) String() string       { return "SHUTDOWN-ACK" }

type chunkShutdownComplete struct{}

func (c *chunkShutdownComplete) unmarshal(raw []byte) error {
	var h chunkHeader
	if err := h.unmarshal(raw); err != nil {
		return err
	}
	if h.typ != ctShutdownComplete {
		return fmt.Errorf("%w: expected SHUTDOWN-COMPLETE got %s", ErrUnmarshalUnknownChunkType, h.typ)
	}
	return nil
}

func (c *chunkShutdownComplete) marshal() ([]byte, error) {
	h := chunkHeader{typ: ctShutdownComplete, length: chunkHeaderSize}
	return h.marshal(), nil
}

func (c *chunkShutdownComplete) check() (bool, error) { return false, nil }
func (c *chunkShutdownComplete) valueLength() int     { return 0 }
func (c *chunkShutdownComplete) String() string       { return "SHUTDOWN-COMPLETE" }
