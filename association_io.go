package sctp

import (
	"errors"
	"time"
)

// startLoops launches the receive and send tasks (§5). Both run for the
// lifetime of the association and exit on a.ctx cancellation.
func (a *Association) startLoops() {
	a.wg.Add(2)
	go a.receiveLoop()
	go a.sendLoop()
}

// receiveLoop blocks on transport reads, parses one packet at a time,
// and dispatches it under the association lock (§5 "Receive task").
func (a *Association) receiveLoop() {
	defer a.wg.Done()

	buf := make([]byte, receiveMTU)
	for {
		select {
		case <-a.ctx.Done():
			return
		default:
		}

		n, err := a.netConn.ReadTimeout(buf, tick)
		if err != nil {
			if errors.Is(err, errReadTimeout) {
				continue
			}
			select {
			case <-a.ctx.Done():
			default:
				a.unexpectedClose(err)
			}
			return
		}
		if n == 0 {
			continue
		}

		var p packet
		if uerr := p.unmarshal(buf[:n]); uerr != nil {
			a.log.Warnf("[%s] dropping malformed packet: %v", a.id, uerr)
			continue
		}
		a.lock.Lock()
		if p.verificationTag != a.myVerificationTag && a.state != closed {
			isInit := false
			if len(p.chunks) > 0 {
				_, isInit = p.chunks[0].(*chunkInit)
			}
			if !(isInit && p.verificationTag == 0) {
				a.log.Warnf("[%s] %v", a.id, ErrVerificationTagMismatch)
				a.lock.Unlock()
				continue
			}
		}
		a.handleInboundPacket(&p)
		a.lock.Unlock()
	}
}

// errReadTimeout is a sentinel the Conn implementation may return from
// ReadTimeout to mean "nothing arrived, try again" without signaling a
// transport failure (§6 "Transport interface").
var errReadTimeout = errors.New("sctp: read timeout")

// sendLoop wakes on the tick or a nudge, runs the gatherer, and writes
// every resulting packet (§5 "Send task").
func (a *Association) sendLoop() {
	defer a.wg.Done()

	ticker := time.NewTicker(tick)
	defer ticker.Stop()

	for {
		select {
		case <-a.ctx.Done():
			return
		case <-ticker.C:
		case <-a.sendNudgeCh:
		}

		a.lock.Lock()
		packets := a.gatherOutbound()
		a.lock.Unlock()

		for _, p := range packets {
			raw, err := p.marshal()
			if err != nil {
				a.log.Errorf("[%s] failed to marshal outbound packet: %v", a.id, err)
				continue
			}
			if _, err := a.netConn.Write(raw); err != nil {
				select {
				case <-a.ctx.Done():
				default:
					a.unexpectedClose(err)
				}
				return
			}
		}
	}
}
