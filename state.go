package sctp

// associationState enumerates the handshake/lifecycle states of §3.
type associationState int

const (
	closed associationState = iota
	cookieWait
	cookieEchoed
	established
	shutdownPending
	shutdownSent
	shutdownReceived
	shutdownAckSent
)

func (a associationState) String() string {
	switch a {
	case closed:
		return "Closed"
	case cookieWait:
		return "CookieWait"
	case cookieEchoed:
		return "CookieEchoed"
	case established:
		return "Established"
	case shutdownPending:
		return "ShutdownPending"
	case shutdownSent:
		return "ShutdownSent"
	case shutdownReceived:
		return "ShutdownReceived"
	case shutdownAckSent:
		return "ShutdownAckSent"
	default:
		return "Invalid"
	}
}

// ackState drives SACK scheduling (§4.3).
type ackState int

const (
	ackStateIdle ackState = iota
	ackStateImmediate
	ackStateDelay
)

func (a ackState) String() string {
	switch a {
	case ackStateIdle:
		return "Idle"
	case ackStateImmediate:
		return "Immediate"
	case ackStateDelay:
		return "Delay"
	default:
		return "Invalid"
	}
}
