package sctp

// onRetransmissionTimeout dispatches a timer's timeout callback under
// the association lock; callbacks re-enter the lock per §9 "Timers",
// §5 "Timer callbacks re-enter this lock".
func (a *Association) onRetransmissionTimeout(id rtoTimerType, nRtos int) {
	a.lock.Lock()
	defer a.lock.Unlock()

	switch id {
	case timerT1Init:
		a.log.Debugf("[%s] T1-init timeout (n=%d), resending INIT", a.id, nRtos)
		if a.storedInit != nil {
			a.controlQueue.push(a.storedInit)
			a.notifySend()
		}
	case timerT1Cookie:
		a.log.Debugf("[%s] T1-cookie timeout (n=%d), resending COOKIE-ECHO", a.id, nRtos)
		if a.storedCookieEcho != nil {
			a.controlQueue.push(a.storedCookieEcho)
			a.notifySend()
		}
	case timerT3RTX:
		a.log.Debugf("[%s] T3-rtx timeout (n=%d)", a.id, nRtos)
		// §4.6 T3-rtx table: halve ssthresh, collapse cwnd to one MTU,
		// mark everything inflight for retransmission.
		a.ssthresh = max32(a.cwnd/2, 4*a.mtu)
		a.cwnd = a.mtu
		a.partialBytesAcked = 0
		a.inflightQueue.markAllToRetransmit()
		a.advanceForwardTSNOnAbandon()
		a.notifySend()
	case timerReconfig:
		a.log.Debugf("[%s] reconfig timeout (n=%d)", a.id, nRtos)
		a.willRetransmitReconfig = true
		a.notifySend()
	}
}

// onRetransmissionFailure surfaces an exhausted handshake timer (§4.6,
// §7 "Handshake failure"). T3-rtx/reconfig never fail (maxRetries=0).
func (a *Association) onRetransmissionFailure(id rtoTimerType) {
	switch id {
	case timerT1Init:
		a.handshakeError(ErrHandshakeInitAck)
	case timerT1Cookie:
		a.handshakeError(ErrHandshakeCookieEcho)
	}
}

// onAckTimerTimeout fires ack_state = Immediate (§4.6 "Ack timer").
func (a *Association) onAckTimerTimeout(rtoTimerType, int) {
	a.lock.Lock()
	a.ackStateVal = ackStateImmediate
	a.lock.Unlock()
	a.notifySend()
}
