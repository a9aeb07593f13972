package sctp

import (
	"encoding/binary"
	"fmt"
)

// paramType enumerates the TLV parameter types used inside INIT/INIT-ACK
// and RE-CONFIG chunks.
type paramType uint16

const (
	paramTypeSupportedExtensions   paramType = 0x8008
	paramTypeOutgoingSSNResetReq   paramType = 13
	paramTypeIncomingSSNResetReq   paramType = 14
	paramTypeSSNTSNResetReq        paramType = 15
	paramTypeReconfigResponse      paramType = 16
	paramTypeAddOutgoingStreamsReq paramType = 17
	paramTypeAddIncomingStreamsReq paramType = 18
)

// paramHeader is the generic 4-byte TLV header used by INIT optional
// parameters and RE-CONFIG parameters (§6, §4.7).
type paramHeader struct {
	typ   paramType
	// length is the total TLV length including the 4-byte header.
	length int
	raw    []byte
}

func (p *paramHeader) unmarshal(raw []byte) (int, error) {
	if len(raw) < paramHeaderSize {
		return 0, fmt.Errorf("%w: %d", ErrParamHeaderTooShort, len(raw))
	}
	p.typ = paramType(binary.BigEndian.Uint16(raw[0:2]))
	p.length = int(binary.BigEndian.Uint16(raw[2:4]))
	if p.length < paramHeaderSize {
		return 0, ErrParamHeaderSelfReportedLengthShorter
	}
	if p.length > len(raw) {
		return 0, ErrParamHeaderSelfReportedLengthLonger
	}
	p.raw = raw[paramHeaderSize:p.length]
	return p.length, nil
}

func (p *paramHeader) marshal() []byte {
	paramLengthPlusHeader := paramHeaderSize + len(p.raw)
	raw := make([]byte, paramLengthPlusHeader)
	binary.BigEndian.PutUint16(raw[0:2], uint16(p.typ))
	binary.BigEndian.PutUint16(raw[2:4], uint16(paramLengthPlusHeader))
	copy(raw[paramHeaderSize:], p.raw)
	return raw
}
