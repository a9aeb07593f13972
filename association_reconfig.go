package sctp

// advanceForwardTSNOnAbandon recomputes advancedPeerTSNAckPoint by
// scanning forward from the current value while every subsequent TSN
// in the inflight queue is either acked or abandoned, and records the
// highest abandoned SSN per affected stream for the next FORWARD-TSN
// (§4.4 step 7, §4.2.2.f). Caller holds a.lock.
func (a *Association) advanceForwardTSNOnAbandon() {
	if !a.useForwardTSN {
		return
	}

	cursor := a.advancedPeerTSNAckPoint
	if cursor == 0 {
		cursor = a.cumulativeTSNAckPoint
	}

	advanced := false
	for {
		next := cursor + 1
		c, ok := a.inflightQueue.get(next)
		if !ok {
			break
		}
		if !c.acked && !c.abandoned {
			break
		}
		cursor = next
		advanced = true
		if c.abandoned {
			a.recordAbandonedStream(c)
		}
	}

	if advanced {
		a.advancedPeerTSNAckPoint = cursor
		a.willSendForwardTSN = true
		a.notifySend()
	}
}

func (a *Association) recordAbandonedStream(c *chunkPayloadData) {
	for i, s := range a.forwardTSNStreams {
		if s.identifier == c.streamIdentifier {
			if sna16LT(s.sequence, c.streamSequenceNumber) {
				a.forwardTSNStreams[i].sequence = c.streamSequenceNumber
			}
			return
		}
	}
	a.forwardTSNStreams = append(a.forwardTSNStreams, forwardTSNStream{
		identifier: c.streamIdentifier,
		sequence:   c.streamSequenceNumber,
	})
}

// buildForwardTSN constructs the FORWARD-TSN chunk announced by
// advanceForwardTSNOnAbandon and clears the pending stream list.
// Caller holds a.lock.
func (a *Association) buildForwardTSN() *chunkForwardTSN {
	f := &chunkForwardTSN{
		newCumulativeTSN: a.advancedPeerTSNAckPoint,
		streams:          a.forwardTSNStreams,
	}
	a.forwardTSNStreams = nil
	a.willSendForwardTSN = false
	return f
}

// handleForwardTSN folds the peer's announced abandonment into our
// receive state: anything at or below newCumulativeTSN is treated as
// delivered for ordering purposes even though it never arrived
// (§4.4 step 7). Caller holds a.lock.
func (a *Association) handleForwardTSN(f *chunkForwardTSN) {
	if sna32LTE(f.newCumulativeTSN, a.peerLastTSN) {
		return
	}
	for tsn := a.peerLastTSN + 1; sna32LTE(tsn, f.newCumulativeTSN); tsn++ {
		a.recvQueue.pop(tsn)
	}
	a.peerLastTSN = f.newCumulativeTSN

	for _, s := range f.streams {
		if stream, ok := a.streams.get(s.identifier); ok {
			stream.fastForwardSSN(s.sequence)
		}
	}

	a.ackStateVal = ackStateImmediate
	a.drainRecvQueue()
}

// drainRecvQueue delivers every contiguous chunk immediately following
// peerLastTSN, advancing it as it goes, and hands each to its owning
// stream (§4.3 "DATA handling"). Caller holds a.lock.
func (a *Association) drainRecvQueue() {
	for {
		c, ok := a.recvQueue.pop(a.peerLastTSN + 1)
		if !ok {
			return
		}
		a.peerLastTSN++

		isNew := !a.streams.has(c.streamIdentifier)
		s := a.streams.getOrCreate(a, c.streamIdentifier)
		if isNew {
			a.notifyNewStream(s)
		}
		s.handleData(c)
	}
}

// notifyNewStream surfaces a peer-opened stream through the listener's
// OnRawStream (§6). OnDCEPStream is never called by this core: DCEP
// negotiation is out of scope here (§1), so a caller that speaks DCEP
// does so over the raw stream itself.
func (a *Association) notifyNewStream(s *Stream) {
	if l := a.listener.OnRawStream; l != nil {
		go l(s)
	}
}

// resetStream queues an outgoing stream-reset request for id, to be
// sent as a RE-CONFIG chunk by the gatherer once all DATA already
// pending for that stream has been transmitted (§4.2.2.b, §4.7).
func (a *Association) resetStream(id uint16) error {
	a.lock.Lock()
	defer a.lock.Unlock()
	c := &chunkPayloadData{streamIdentifier: id, resetMarker: true}
	a.pendingQueue.push(c)
	a.notifySend()
	return nil
}

// buildReconfigRequestPacket emits one outstanding outgoing reset
// request, either a fresh one built from sisToReset or a retransmit of
// the oldest still-unacknowledged request (§4.7, §4.6 "reconfig
// timer"). Caller holds a.lock.
func (a *Association) buildReconfigRequestPacket() *packet {
	if len(a.sisToReset) > 0 {
		rsn := a.generateNextRSN()
		req := &outgoingReconfigRequest{
			requestSequenceNumber: rsn,
			lastTSN:               a.myNextTSN - 1,
			streamIdentifiers:     a.sisToReset,
		}
		a.reconfig.addOutgoing(req)
		a.sisToReset = nil
		return a.singletonPacket(reconfigChunkFromRequest(req))
	}

	var oldest *outgoingReconfigRequest
	for _, req := range a.reconfig.requests {
		if oldest == nil || sna32LT(req.requestSequenceNumber, oldest.requestSequenceNumber) {
			oldest = req
		}
	}
	if oldest != nil {
		return a.singletonPacket(reconfigChunkFromRequest(oldest))
	}
	return nil
}

func reconfigChunkFromRequest(req *outgoingReconfigRequest) *chunkReconfig {
	return &chunkReconfig{
		paramA: rawReconfigParam{
			present: true,
			typ:     paramTypeOutgoingSSNResetReq,
			request: &paramOutgoingResetRequest{
				reconfigRequestSequenceNumber: req.requestSequenceNumber,
				senderLastTSN:                 req.lastTSN,
				streamIdentifiers:             req.streamIdentifiers,
			},
		},
	}
}

// handleReconfig dispatches the one or two parameters of an inbound
// RE-CONFIG chunk (§4.7).
func (a *Association) handleReconfig(c *chunkReconfig) {
	for _, slot := range []*rawReconfigParam{&c.paramA, &c.paramB} {
		if !slot.present {
			continue
		}
		switch {
		case slot.request != nil:
			a.handleResetRequest(slot.request)
		case slot.response != nil:
			a.handleResetResponse(slot.response)
		}
	}
}

// handleResetRequest performs (or re-acknowledges) a peer's request to
// reset streams, closing each named stream's receive side, removing it
// from the stream registry, and queuing
// a response (§4.7, §8 scenario 6). If the peer's senderLastTSN hasn't
// arrived yet, the streams can't be reset without losing data still in
// flight, so we report InProgress and retry once more DATA drains in.
func (a *Association) handleResetRequest(req *paramOutgoingResetRequest) {
	rsn := req.reconfigRequestSequenceNumber

	if sna32GT(req.senderLastTSN, a.peerLastTSN) {
		resp := &chunkReconfig{paramA: rawReconfigParam{
			present: true,
			typ:     paramTypeReconfigResponse,
			response: &paramReconfigResponse{
				reconfigResponseSequenceNumber: rsn,
				result:                         reconfigResultInProgress,
			},
		}}
		a.controlQueue.push(resp)
		a.notifySend()
		return
	}

	if !a.reconfig.alreadyProcessed(rsn) {
		for _, sid := range req.streamIdentifiers {
			if s, ok := a.streams.get(sid); ok {
				s.handleRemoteReset()
				a.streams.delete(sid)
			}
		}
		a.reconfig.markProcessed(rsn)
	}

	resp := &chunkReconfig{paramA: rawReconfigParam{
		present: true,
		typ:     paramTypeReconfigResponse,
		response: &paramReconfigResponse{
			reconfigResponseSequenceNumber: rsn,
			result:                         reconfigResultSuccessPerformed,
		},
	}}
	a.controlQueue.push(resp)
	a.notifySend()
}

// handleResetResponse completes our own outstanding reset request once
// the peer reports it performed (§4.7).
func (a *Association) handleResetResponse(resp *paramReconfigResponse) {
	if resp.result != reconfigResultSuccessPerformed {
		return
	}
	if _, ok := a.reconfig.get(resp.reconfigResponseSequenceNumber); !ok {
		return
	}
	a.reconfig.remove(resp.reconfigResponseSequenceNumber)
}
