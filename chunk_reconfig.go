package sctp

import (
	"encoding/binary"
	"fmt"
)

// reconfigResult mirrors RFC 6525 §4.4's result codes; only the two this
// core produces/consumes are named (§4.7).
type reconfigResult uint32

const (
	reconfigResultSuccessPerformed reconfigResult = 1
	reconfigResultInProgress      reconfigResult = 6
)

// paramOutgoingResetRequest is the "Outgoing SSN Reset Request"
// parameter: a peer asking us to stop accepting SSNs on the named
// streams (§4.7).
type paramOutgoingResetRequest struct {
	reconfigRequestSequenceNumber            uint32
	reconfigResponseSequenceNumber           uint32
	senderLastTSN                            uint32
	streamIdentifiers                        []uint16
}

const outgoingResetRequestFixedLength = 12

func (p *paramOutgoingResetRequest) unmarshal(raw []byte) error {
	if len(raw) < outgoingResetRequestFixedLength {
		return ErrParamHeaderTooShort
	}
	p.reconfigRequestSequenceNumber = binary.BigEndian.Uint32(raw[0:4])
	p.reconfigResponseSequenceNumber = binary.BigEndian.Uint32(raw[4:8])
	p.senderLastTSN = binary.BigEndian.Uint32(raw[8:12])
	for off := outgoingResetRequestFixedLength; off+2 <= len(raw); off += 2 {
		p.streamIdentifiers = append(p.streamIdentifiers, binary.BigEndian.Uint16(raw[off:off+2]))
	}
	return nil
}

func (p *paramOutgoingResetRequest) marshal() []byte {
	raw := make([]byte, outgoingResetRequestFixedLength+2*len(p.streamIdentifiers))
	binary.BigEndian.PutUint32(raw[0:4], p.reconfigRequestSequenceNumber)
	binary.BigEndian.PutUint32(raw[4:8], p.reconfigResponseSequenceNumber)
	binary.BigEndian.PutUint32(raw[8:12], p.senderLastTSN)
	for i, sid := range p.streamIdentifiers {
		binary.BigEndian.PutUint16(raw[outgoingResetRequestFixedLength+2*i:], sid)
	}
	ph := paramHeader{typ: paramTypeOutgoingSSNResetReq, raw: raw}
	return ph.marshal()
}

// paramReconfigResponse acknowledges a reset request (§4.7).
type paramReconfigResponse struct {
	reconfigResponseSequenceNumber uint32
	result                         reconfigResult
}

const reconfigResponseLength = 8

func (p *paramReconfigResponse) unmarshal(raw []byte) error {
	if len(raw) < reconfigResponseLength {
		return ErrParamHeaderTooShort
	}
	p.reconfigResponseSequenceNumber = binary.BigEndian.Uint32(raw[0:4])
	p.result = reconfigResult(binary.BigEndian.Uint32(raw[4:8]))
	return nil
}

func (p *paramReconfigResponse) marshal() []byte {
	raw := make([]byte, reconfigResponseLength)
	binary.BigEndian.PutUint32(raw[0:4], p.reconfigResponseSequenceNumber)
	binary.BigEndian.PutUint32(raw[4:8], uint32(p.result))
	ph := paramHeader{typ: paramTypeReconfigResponse, raw: raw}
	return ph.marshal()
}

// chunkReconfig carries one or two RE-CONFIG parameters: the core only
// needs the outgoing-reset-request / response pair (§4.7); incoming
// stream additions are out of scope.
type chunkReconfig struct {
	paramA rawReconfigParam
	paramB rawReconfigParam

	decodedLength int
}

// rawReconfigParam is either nil or a decoded parameter, kept generic so
// chunkReconfig can carry request+response or a lone request/response.
type rawReconfigParam struct {
	present  bool
	typ      paramType
	request  *paramOutgoingResetRequest
	response *paramReconfigResponse
}

func (c *chunkReconfig) unmarshal(raw []byte) error {
	var h chunkHeader
	if err := h.unmarshal(raw); err != nil {
		return err
	}
	if h.typ != ctReconfig {
		return fmt.Errorf("%w: expected RECONFIG got %s", ErrUnmarshalUnknownChunkType, h.typ)
	}
	body := raw[chunkHeaderSize:h.length]

	slots := []*rawReconfigParam{&c.paramA, &c.paramB}
	offset := 0
	for _, slot := range slots {
		if offset >= len(body) {
			break
		}
		var ph paramHeader
		n, err := ph.unmarshal(body[offset:])
		if err != nil {
			return err
		}
		slot.present = true
		slot.typ = ph.typ
		switch ph.typ {
		case paramTypeOutgoingSSNResetReq:
			req := &paramOutgoingResetRequest{}
			if err := req.unmarshal(ph.raw); err != nil {
				return err
			}
			slot.request = req
		case paramTypeReconfigResponse:
			resp := &paramReconfigResponse{}
			if err := resp.unmarshal(ph.raw); err != nil {
				return err
			}
			slot.response = resp
		default:
			slot.present = false
		}
		offset += n + getPadding(n)
	}
	c.decodedLength = len(body)

	return nil
}

func (c *chunkReconfig) marshal() ([]byte, error) {
	var body []byte
	for _, slot := range []*rawReconfigParam{&c.paramA, &c.paramB} {
		if !slot.present {
			continue
		}
		var raw []byte
		switch {
		case slot.request != nil:
			raw = slot.request.marshal()
		case slot.response != nil:
			raw = slot.response.marshal()
		default:
			continue
		}
		body = appendParam(body, raw)
	}
	h := chunkHeader{typ: ctReconfig, length: uint16(chunkHeaderSize + len(body))}
	return append(h.marshal(), body...), nil
}

func (c *chunkReconfig) check() (bool, error) { return false, nil }

func (c *chunkReconfig) valueLength() int {
	if c.decodedLength > 0 {
		return c.decodedLength
	}
	raw, _ := c.marshal()
	return len(raw) - chunkHeaderSize
}

func (c *chunkReconfig) String() string {
	return "RECONFIG"
}
