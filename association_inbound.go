package sctp

import "time"

// handleInboundPacket validates and dispatches one packet read off the
// transport (§4.3). Caller holds a.lock.
func (a *Association) handleInboundPacket(p *packet) {
	if p.sourcePort == 0 || p.destinationPort == 0 {
		a.log.Warnf("[%s] dropping packet: zero port", a.id)
		return
	}
	if !a.rateLimiter.Allow() {
		a.log.Tracef("[%s] dropping packet: inbound rate exceeded", a.id)
		return
	}

	for i, c := range p.chunks {
		if ci, ok := c.(*chunkInit); ok && !ci.isAck {
			if len(p.chunks) != 1 {
				a.log.Warnf("[%s] dropping packet: %v", a.id, ErrInitNotBundled)
				return
			}
		}
		a.dispatchChunk(p, c, i == 0, i == len(p.chunks)-1)
	}
}

// dispatchChunk routes one chunk to its handler. first/last identify
// the chunk's position in the packet, used to collapse SACK/ack-state
// bookkeeping that should only run once per packet (§4.3 "handleChunkStart
// / handleChunkEnd").
func (a *Association) dispatchChunk(p *packet, c chunk, first, last bool) {
	switch v := c.(type) {
	case *chunkInit:
		if v.isAck {
			a.handleInitAck(v)
		} else {
			a.handleInit(p, v)
		}
	case *chunkCookieEcho:
		a.handleCookieEcho(p, v)
	case *chunkCookieAck:
		a.handleCookieAck()
	case *chunkAbort:
		a.log.Warnf("[%s] received ABORT, closing", a.id)
		go a.handshakeError(ErrAssociationClosed)
	case *chunkError:
		a.log.Warnf("[%s] received ERROR cause=%d", a.id, v.cause)
	case *chunkPayloadData:
		a.handleData(v)
		if last {
			a.ackAfterData()
		}
	case *chunkSelectiveAck:
		a.handleSack(v)
	case *chunkReconfig:
		a.handleReconfig(v)
	case *chunkForwardTSN:
		a.handleForwardTSN(v)
		a.ackAfterData()
	case *chunkHeartbeat, *chunkHeartbeatAck:
		// Non-goal (§1): path management. Parsed only to stay on the
		// wire, never acted on.
	case *chunkShutdown, *chunkShutdownAck, *chunkShutdownComplete:
		a.log.Debugf("[%s] received %s, shutdown sequencing out of scope", a.id, v)
	}
}

// handleInit processes a peer-initiated handshake (§4.1 server path):
// mint a cookie, answer with INIT-ACK, stay Closed until COOKIE-ECHO
// arrives.
func (a *Association) handleInit(p *packet, in *chunkInit) {
	if a.state != closed && a.state != cookieWait && a.state != cookieEchoed {
		a.log.Warnf("[%s] %v", a.id, ErrInitToEstablished)
		return
	}

	a.peerVerificationTag = in.initiateTag
	a.peerLastTSN = in.initialTSN - 1
	a.rwnd = in.advertisedReceiverWindowCredit
	a.destinationPort = p.sourcePort
	for _, ct := range in.supportedExtensions {
		a.supportedExtensions[ct] = struct{}{}
	}
	if _, ok := a.supportedExtensions[ctReconfig]; ok {
		a.useForwardTSN = true
	}

	cookie, err := a.cookies.generate()
	if err != nil {
		a.log.Errorf("[%s] failed to generate cookie: %v", a.id, err)
		return
	}

	ack := &chunkInit{
		isAck:                          true,
		initiateTag:                    a.myVerificationTag,
		advertisedReceiverWindowCredit: a.maxReceiveBufferSize,
		numOutboundStreams:             sctpMaxStreams,
		numInboundStreams:              sctpMaxStreams,
		initialTSN:                     a.myNextTSN,
		supportedExtensions:            []chunkType{ctReconfig},
		cookie:                         cookie,
	}
	a.controlQueue.push(ack)
	a.notifySend()
}

// handleInitAck completes the client's view of the parameter exchange
// and moves to CookieEchoed (§4.1).
func (a *Association) handleInitAck(ack *chunkInit) {
	if a.state != cookieWait {
		return
	}
	a.t1Init.stop()

	a.peerVerificationTag = ack.initiateTag
	a.peerLastTSN = ack.initialTSN - 1
	a.rwnd = ack.advertisedReceiverWindowCredit
	for _, ct := range ack.supportedExtensions {
		a.supportedExtensions[ct] = struct{}{}
	}
	if _, ok := a.supportedExtensions[ctReconfig]; ok {
		a.useForwardTSN = true
	}

	echo := &chunkCookieEcho{cookie: ack.cookie}
	a.storedCookieEcho = echo
	a.setState(cookieEchoed)
	a.controlQueue.push(echo)
	a.t1Cookie.start(a.rtoMgr.getRTO())
	a.notifySend()
}

// handleCookieEcho validates the returned cookie and, on success,
// completes the server side of the handshake (§4.1).
func (a *Association) handleCookieEcho(p *packet, echo *chunkCookieEcho) {
	result, staleMicros := a.cookies.check(echo.cookie, time.Now())
	switch result {
	case cookieUnknown:
		a.log.Warnf("[%s] %v", a.id, ErrInvalidCookie)
		return
	case cookieStale:
		errChunk := &chunkError{cause: errorCauseStaleCookie, measure: staleMicros}
		a.controlQueue.push(errChunk)
		a.notifySend()
		return
	}

	a.cookies.clearExcept(echo.cookie)
	a.destinationPort = p.sourcePort
	wasEstablished := a.state == established
	a.setState(established)
	a.controlQueue.push(&chunkCookieAck{})
	a.notifySend()

	if !wasEstablished {
		a.completeHandshake(nil)
	}
}

// handleCookieAck finishes the client side of the handshake (§4.1).
func (a *Association) handleCookieAck() {
	if a.state != cookieEchoed {
		return
	}
	a.t1Cookie.stop()
	a.setState(established)
	a.completeHandshake(nil)
}

func (a *Association) completeHandshake(err error) {
	select {
	case a.handshakeCompletedCh <- err:
	default:
	}
	if l := a.listener.OnAssociated; l != nil {
		go l(a)
	}
}

// handleData places an inbound DATA chunk into recvQueue and, if it
// fills the next expected TSN, drains the contiguous run to its stream
// (§4.3 "DATA handling"). A chunk arriving with no receive credit left
// is dropped outright rather than grown past maxReceiveBufferSize
// (§4.3 "receive credit > 0", §5 resource bounds); the sender will
// retransmit it once our SACK reopens the window.
func (a *Association) handleData(c *chunkPayloadData) {
	if a.myReceiverWindowCredit() == 0 && !a.recvQueue.has(c.tsn) {
		return
	}
	if !a.recvQueue.push(c, a.peerLastTSN) {
		return // duplicate or already-delivered TSN, recorded for the next SACK
	}
	a.drainRecvQueue()

	if c.immediateSack {
		a.ackStateVal = ackStateImmediate
	}
}

// ackAfterData schedules a SACK per §4.3's delayed/immediate rules: the
// first packet since the last SACK arms the ack timer; a second arrival
// before it fires escalates to Immediate.
func (a *Association) ackAfterData() {
	switch a.ackStateVal {
	case ackStateIdle:
		a.ackStateVal = ackStateDelay
		a.ackTimer.start(200 * time.Millisecond)
	case ackStateDelay:
		a.ackStateVal = ackStateImmediate
		a.ackTimer.stop()
		a.notifySend()
	case ackStateImmediate:
		a.notifySend()
	}
}
