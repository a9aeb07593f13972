package sctp

import "time"

// gatherOutbound runs the outbound packet gatherer (§4.2) under the
// association lock; caller holds a.lock.
func (a *Association) gatherOutbound() []*packet {
	var packets []*packet

	controls := a.controlQueue.popAll()
	for _, c := range controls {
		packets = append(packets, a.singletonPacket(c))
	}

	var dataChunks []*chunkPayloadData
	if a.state == established {
		dataChunks = append(dataChunks, a.gatherRetransmits()...)
		dataChunks = append(dataChunks, a.gatherNewData()...)
	}
	packets = append(packets, a.bundleData(dataChunks)...)

	if a.willRetransmitFast {
		packets = append(packets, a.bundleFastRetransmit()...)
		a.willRetransmitFast = false
	}

	if a.ackStateVal == ackStateImmediate {
		packets = append(packets, a.singletonPacket(a.buildSACK()))
		a.ackStateVal = ackStateIdle
		a.ackTimer.stop()
	}

	if a.willSendForwardTSN {
		packets = append(packets, a.singletonPacket(a.buildForwardTSN()))
	}

	if len(a.sisToReset) > 0 || a.willRetransmitReconfig {
		if reconfigPkt := a.buildReconfigRequestPacket(); reconfigPkt != nil {
			packets = append(packets, reconfigPkt)
		}
		a.tReconfig.start(a.rtoMgr.getRTO())
		a.willRetransmitReconfig = false
	}

	if a.stats != nil {
		a.stats.SetWindows(a.cwnd, a.rwnd, a.ssthresh, uint32(a.inflightQueue.getNumBytes()))
	}

	return packets
}

// gatherRetransmits selects inflight chunks marked retransmit=true, in
// ascending TSN, bounded by awnd; the first chunk may be sent as a
// zero-window probe even if rwnd is exhausted (§4.2.2.a).
func (a *Association) gatherRetransmits() []*chunkPayloadData {
	var out []*chunkPayloadData
	bytesBudget := a.awnd()
	first := true

	for _, c := range a.inflightQueue.sorted() {
		if !c.retransmit {
			continue
		}
		if c.acked || c.abandoned {
			c.retransmit = false
			continue
		}
		size := uint32(len(c.userData))
		if size > bytesBudget && !first {
			break
		}
		c.retransmit = false
		c.nSent++
		c.retryCount++
		if a.checkAbandon(c) {
			c.abandoned = true
			a.advanceForwardTSNOnAbandon()
			continue
		}
		c.sentTime = time.Now()
		out = append(out, c)
		if size < bytesBudget {
			bytesBudget -= size
		} else {
			bytesBudget = 0
		}
		first = false
		if a.stats != nil {
			a.stats.IncRetransmit()
		}
	}
	return out
}

// gatherNewData pops from the pending queue in order, moving reset
// markers to sisToReset and moving real DATA to the inflight queue
// bounded by cwnd-inflight and rwnd (§4.2.2.b).
func (a *Association) gatherNewData() []*chunkPayloadData {
	var out []*chunkPayloadData

	for {
		c := a.pendingQueue.peek()
		if c == nil {
			break
		}
		if c.resetMarker {
			a.pendingQueue.pop(c)
			a.sisToReset = append(a.sisToReset, c.streamIdentifier)
			continue
		}

		inflightBytes := uint32(a.inflightQueue.getNumBytes())
		size := uint32(len(c.userData))
		cwndBudget := uint32(0)
		if a.cwnd > inflightBytes {
			cwndBudget = a.cwnd - inflightBytes
		}
		if size > cwndBudget && inflightBytes > 0 {
			break
		}
		if size > a.rwnd && inflightBytes > 0 {
			break
		}

		a.pendingQueue.pop(c)
		c.tsn = a.generateNextTSN()
		c.nSent = 1
		c.retryCount = 1
		c.sentTime = time.Now()
		c.retryTime = time.Now().Add(a.rtoMgr.getRTO() - time.Nanosecond)

		if a.checkAbandon(c) {
			c.abandoned = true
			a.advanceForwardTSNOnAbandon()
			continue
		}

		a.inflightQueue.pushNoCheck(c)
		out = append(out, c)

		if !a.t3RTX.isRunning() {
			a.t3RTX.start(a.rtoMgr.getRTO())
		}
	}

	return out
}

// bundleData packs DATA chunks into MTU-sized packets, one common
// header per packet (§4.2.2.c).
func (a *Association) bundleData(chunks []*chunkPayloadData) []*packet {
	generic := make([]chunk, len(chunks))
	for i, c := range chunks {
		generic[i] = c
	}
	return a.bundle(generic)
}

// bundleFastRetransmit selects chunks with nSent==1 and missIndicator>=3,
// bundled into one packet bounded only by MTU, ignoring cwnd per RFC
// 4960 §7.2.4 (§4.2.2.d, §4.5).
func (a *Association) bundleFastRetransmit() []*packet {
	var toSend []chunk
	budget := a.mtu - commonHeaderSize
	var used uint32
	for _, c := range a.inflightQueue.sorted() {
		if c.acked || c.abandoned {
			continue
		}
		if c.nSent == 1 && c.missIndicator >= 3 {
			size := uint32(chunkHeaderSize + c.valueLength())
			size += uint32(getPadding(int(size)))
			if used+size > budget {
				break
			}
			used += size
			c.nSent++
			c.retryCount++
			c.sentTime = time.Now()
			toSend = append(toSend, c)
			if a.stats != nil {
				a.stats.IncRetransmit()
			}
		}
	}
	if len(toSend) == 0 {
		return nil
	}
	return a.bundle(toSend)
}

// bundle packs chunks greedily into packets no larger than a.mtu,
// counting one commonHeaderSize per packet (§4.2.2.c).
func (a *Association) bundle(chunks []chunk) []*packet {
	var packets []*packet
	var cur *packet
	curSize := uint32(commonHeaderSize)

	flush := func() {
		if cur != nil && len(cur.chunks) > 0 {
			packets = append(packets, cur)
		}
		cur = nil
		curSize = commonHeaderSize
	}

	for _, c := range chunks {
		size := uint32(chunkHeaderSize + c.valueLength())
		size += uint32(getPadding(int(size)))
		if cur != nil && curSize+size > a.mtu {
			flush()
		}
		if cur == nil {
			cur = a.newPacket()
		}
		cur.chunks = append(cur.chunks, c)
		curSize += size
	}
	flush()

	return packets
}

func (a *Association) newPacket() *packet {
	return &packet{
		sourcePort:      a.sourcePort,
		destinationPort: a.destinationPort,
		verificationTag: a.peerVerificationTag,
	}
}

func (a *Association) singletonPacket(c chunk) *packet {
	p := a.newPacket()
	p.chunks = []chunk{c}
	return p
}

// checkAbandon applies the partial-reliability policy of a DATA chunk,
// returning true if it should never (or no longer) be transmitted
// (§8 scenario 5, SPEC_FULL.md §4).
func (a *Association) checkAbandon(c *chunkPayloadData) bool {
	switch c.reliabilityType {
	case reliabilityTypeRexmit:
		return c.nSent > 0 && uint32(c.nSent-1) >= c.reliabilityValue+1
	case reliabilityTypeTimed:
		return c.reliabilityValue > 0 && time.Since(c.createdAt) > time.Duration(c.reliabilityValue)*time.Millisecond
	default:
		return false
	}
}
