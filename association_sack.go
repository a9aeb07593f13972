package sctp

import "time"

// handleSack processes an inbound SACK: retires acknowledged inflight
// chunks, runs congestion control, samples RTT (Karn's algorithm), and
// decides whether a fast retransmit is warranted (§4.4, §4.5, §4.6).
// Caller holds a.lock.
func (a *Association) handleSack(s *chunkSelectiveAck) {
	if sna32GT(a.cumulativeTSNAckPoint, s.cumulativeTSNAck) {
		return // stale SACK, already superseded
	}

	advanced := sna32GT(s.cumulativeTSNAck, a.cumulativeTSNAckPoint)
	bytesAcked, rttEligible := a.retireAcked(s.cumulativeTSNAck)
	htna := a.markGapAcked(s)

	a.cumulativeTSNAckPoint = s.cumulativeTSNAck
	a.rwnd = s.advertisedReceiverWindowCredit

	if advanced {
		a.t3RTX.stop()
		if a.inflightQueue.size() > 0 {
			a.t3RTX.start(a.rtoMgr.getRTO())
		}
		if rttEligible {
			// Karn's algorithm: the RTT sample is only trustworthy for
			// chunks sent once (nSent==1), tracked via minTSNToMeasureRTT
			// (§4.6 "RTO manager").
			a.rtoMgr.setNewRTT(time.Since(a.lastAckSampleTime))
		}
		a.applyCongestionControl(bytesAcked)
	}

	a.detectFastRetransmit(htna)

	if len(s.duplicateTSN) > 0 || advanced {
		a.notifySend()
	}
}

// retireAcked removes every inflight chunk at or below cumTSNAck,
// returning the bytes freed and whether any retired chunk is eligible
// for an RTT sample.
func (a *Association) retireAcked(cumTSNAck uint32) (uint32, bool) {
	var bytesAcked uint32
	rttEligible := false
	for tsn := a.cumulativeTSNAckPoint + 1; sna32LTE(tsn, cumTSNAck); tsn++ {
		c, ok := a.inflightQueue.get(tsn)
		if !ok {
			continue
		}
		c.acked = true
		bytesAcked += uint32(len(c.userData))
		if c.nSent == 1 && sna32GTE(tsn, a.minTSNToMeasureRTT) {
			rttEligible = true
			a.lastAckSampleTime = c.sentTime
			a.minTSNToMeasureRTT = a.myNextTSN
		}
		a.inflightQueue.remove(tsn)
	}
	return bytesAcked, rttEligible
}

// markGapAcked applies the SACK's gap-ack blocks to inflight chunks
// above cumTSNAck, incrementing missIndicator on chunks the peer has
// now reported seeing past without acking, and returns HTNA (Highest
// TSN Newly Acknowledged) for fast-retransmit detection (§4.5).
func (a *Association) markGapAcked(s *chunkSelectiveAck) uint32 {
	htna := s.cumulativeTSNAck
	for _, g := range s.gapAckBlocks {
		start := s.cumulativeTSNAck + uint32(g.start)
		end := s.cumulativeTSNAck + uint32(g.end)
		for tsn := start; sna32LTE(tsn, end); tsn++ {
			if c, ok := a.inflightQueue.get(tsn); ok && !c.acked {
				c.acked = true
				a.inflightQueue.remove(tsn)
			}
		}
		if sna32GT(end, htna) {
			htna = end
		}
	}

	for _, c := range a.inflightQueue.sorted() {
		if c.acked || c.abandoned {
			continue
		}
		if sna32LT(c.tsn, htna) {
			c.missIndicator++
		}
	}

	return htna
}

// applyCongestionControl advances cwnd per RFC 4960 §7.2: slow start
// while cwnd<=ssthresh, congestion avoidance (partial-bytes-acked
// accounting) above it (§4.6 "Congestion control").
func (a *Association) applyCongestionControl(bytesAcked uint32) {
	if a.inFastRecovery {
		if sna32GTE(a.cumulativeTSNAckPoint, a.fastRecoverExitPoint) {
			a.inFastRecovery = false
			a.partialBytesAcked = 0
		}
		return
	}

	if a.pendingQueue.size() == 0 {
		return
	}

	if a.cwnd <= a.ssthresh {
		// slow start, TCP variant (§4.4): cwnd grows by the full amount
		// acked, capped at cwnd itself, so it can double per RTT.
		inc := min32(bytesAcked, a.cwnd)
		a.cwnd += inc
		return
	}

	a.partialBytesAcked += bytesAcked
	if a.partialBytesAcked >= a.cwnd {
		a.partialBytesAcked -= a.cwnd
		a.cwnd += a.mtu
	}
}

// detectFastRetransmit implements the HTNA missIndicator>=3 rule of
// §4.5: entering fast recovery halves cwnd/ssthresh once per recovery
// period and arms willRetransmitFast for the gatherer.
func (a *Association) detectFastRetransmit(htna uint32) {
	if a.inFastRecovery {
		return
	}
	triggered := false
	for _, c := range a.inflightQueue.sorted() {
		if !c.acked && !c.abandoned && c.missIndicator >= 3 {
			triggered = true
			break
		}
	}
	if !triggered {
		return
	}

	a.inFastRecovery = true
	a.fastRecoverExitPoint = htna
	a.ssthresh = max32(a.cwnd/2, 4*a.mtu)
	a.cwnd = a.ssthresh
	a.partialBytesAcked = 0
	a.willRetransmitFast = true
	if a.stats != nil {
		a.stats.IncFastRecovery()
	}
}

// buildSACK constructs the next outbound SACK from recvQueue/peerLastTSN
// state (§4.2.2.e, §4.4). Caller holds a.lock.
func (a *Association) buildSACK() *chunkSelectiveAck {
	return &chunkSelectiveAck{
		cumulativeTSNAck:               a.peerLastTSN,
		advertisedReceiverWindowCredit: a.myReceiverWindowCredit(),
		gapAckBlocks:                   a.recvQueue.gapAckBlocks(a.peerLastTSN),
		duplicateTSN:                   a.recvQueue.popDuplicates(),
	}
}

// myReceiverWindowCredit reports how much buffer space we still offer
// the peer, never below zero (§4.2.2.a "rwnd").
func (a *Association) myReceiverWindowCredit() uint32 {
	used := uint32(a.recvQueue.size()) * a.mtu
	if used >= a.maxReceiveBufferSize {
		return 0
	}
	return a.maxReceiveBufferSize - used
}
