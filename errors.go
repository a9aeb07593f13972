package sctp

import "errors"

// Packet/chunk parsing errors (protocol violations, §7 "Protocol violation").
var (
	ErrPacketRawTooSmall           = errors.New("sctp: raw is smaller than the minimum length for a SCTP packet")
	ErrParseSCTPChunkNotEnoughData = errors.New("sctp: unable to parse SCTP chunk, not enough data for complete header")
	ErrUnmarshalUnknownChunkType   = errors.New("sctp: unmarshal failed, unknown chunk type")
	ErrChecksumMismatch            = errors.New("sctp: checksum mismatch")
	ErrChunkTooSmall               = errors.New("sctp: chunk too small")
	ErrParamHeaderTooShort         = errors.New("sctp: param header too short")
	ErrParamHeaderSelfReportedLengthShorter = errors.New("sctp: param self reported length is shorter than header length")
	ErrParamHeaderSelfReportedLengthLonger  = errors.New("sctp: param self reported length is longer than available data")
)

// Association-level protocol violations; logged and locally recovered,
// never surfaced to the listener (§7).
var (
	ErrInitNotBundled       = errors.New("sctp: INIT chunk must not be bundled with other chunks")
	ErrInitToEstablished    = errors.New("sctp: INIT received in state other than closed/cookie-wait/cookie-echoed")
	ErrZeroSourcePort       = errors.New("sctp: source port 0 is not allowed")
	ErrZeroDestinationPort  = errors.New("sctp: destination port 0 is not allowed")
	ErrVerificationTagMismatch = errors.New("sctp: verification tag mismatch")
	ErrSSNNoFragment        = errors.New("sctp: SSN given but chunk not fragmented")
	ErrInflightQueueTSNPop  = errors.New("sctp: requested non-existent TSN while removing from inflight queue")
	ErrCookieTooShort       = errors.New("sctp: cookie too short")
	ErrInvalidCookie        = errors.New("sctp: invalid cookie")
)

// Handshake failures; surfaced to the listener (§7).
var (
	ErrHandshakeInitAck    = errors.New("sctp: handshake failed, could not complete INIT/INIT-ACK exchange")
	ErrHandshakeCookieEcho = errors.New("sctp: handshake failed, could not complete COOKIE-ECHO/COOKIE-ACK exchange")
)

// Transport/lifecycle failures (§7).
var (
	ErrAssociationClosed      = errors.New("sctp: association closed")
	ErrAssociationClosedByUser = errors.New("sctp: association closed by user")
	ErrShutdownNonEstablished  = errors.New("sctp: shutdown called on non-established association")
)

// Stream-level errors.
var (
	ErrStreamClosed          = errors.New("sctp: stream closed")
	ErrStreamNotExist        = errors.New("sctp: stream does not exist")
	ErrStreamAlreadyExist    = errors.New("sctp: stream already exists")
	ErrPayloadDataTooLarge   = errors.New("sctp: payload data exceeds max message size")
	ErrOutboundPacketTooLarge = errors.New("sctp: outbound packet larger than MTU")
)

// Reconfig errors.
var (
	ErrReconfigRequestAlreadyExists = errors.New("sctp: reconfig request already exists for stream")
	ErrStreamRequestOutOfRange      = errors.New("sctp: stream request parameter out of range")
)
