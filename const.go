package sctp

import "time"

const (
	commonHeaderSize    = 12
	dataChunkHeaderSize = 16
	paramHeaderSize     = 4

	initialMTU       = 1228
	receiveMTU       = 8192
	initialRecvBuf   = 1024 * 1024
	defaultMaxMessage = 65536

	cookieSize       = 32
	validCookieLife  = 60 * time.Second

	acceptChLen = 16

	// rtoInitial, rtoMin, rtoMax per RFC 6298 defaults used by RFC 4960 SCTP.
	rtoInitial = 3 * time.Second
	rtoMin     = 1 * time.Second
	rtoMax     = 60 * time.Second
	rtoAlpha   = 0.125
	rtoBeta    = 0.25

	maxInitRetrans = 8

	// tick is the period of the association's send loop wakeups.
	tick = 1 * time.Second

	maxTSNAddOne = uint32(1) << 32

	commonHeaderChecksumOffset = 8
)

// payload protocol identifiers, negotiated over DCEP by stream users;
// only relevant to the association as an opaque uint32 carried in DATA.
type PayloadProtocolIdentifier uint32

const (
	PayloadTypeWebRTCDCEP            PayloadProtocolIdentifier = 50
	PayloadTypeWebRTCString          PayloadProtocolIdentifier = 51
	PayloadTypeWebRTCBinary          PayloadProtocolIdentifier = 53
	PayloadTypeWebRTCStringEmpty     PayloadProtocolIdentifier = 56
	PayloadTypeWebRTCBinaryEmpty     PayloadProtocolIdentifier = 57
)

// extension chunk types the core negotiates; RE_CONFIG is the only one
// required per spec.md §3 "supported_extensions".
const extensionReconfig = uint8(ctReconfig)
