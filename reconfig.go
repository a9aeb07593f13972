package sctp

// outgoingReconfigRequest tracks one outstanding stream-reset request we
// sent, retained until acknowledged (§4.7).
type outgoingReconfigRequest struct {
	requestSequenceNumber uint32
	lastTSN               uint32
	streamIdentifiers     []uint16
}

// reconfigState is the association's reconfig bookkeeping (§2 component
// 4 "Reconfig State"): outstanding outgoing requests keyed by RSN, and
// the set of incoming requests already matured (acted on) so a
// retransmitted request doesn't run twice.
type reconfigState struct {
	myNextRSN      uint32
	requests       map[uint32]*outgoingReconfigRequest
	lastProcessedIncomingRSN uint32
	haveProcessedIncoming    bool
}

func newReconfigState() *reconfigState {
	return &reconfigState{requests: map[uint32]*outgoingReconfigRequest{}}
}

func (r *reconfigState) nextRSN() uint32 {
	rsn := r.myNextRSN
	r.myNextRSN++
	return rsn
}

func (r *reconfigState) addOutgoing(req *outgoingReconfigRequest) {
	r.requests[req.requestSequenceNumber] = req
}

func (r *reconfigState) remove(rsn uint32) {
	delete(r.requests, rsn)
}

func (r *reconfigState) get(rsn uint32) (*outgoingReconfigRequest, bool) {
	req, ok := r.requests[rsn]
	return req, ok
}

func (r *reconfigState) empty() bool {
	return len(r.requests) == 0
}

// alreadyProcessed reports whether an incoming reset request with this
// RSN was already performed, so a retransmitted request is answered
// again without re-running the side effects (SuccessPerformed is
// idempotent).
func (r *reconfigState) alreadyProcessed(rsn uint32) bool {
	return r.haveProcessedIncoming && sna32LTE(rsn, r.lastProcessedIncomingRSN)
}

func (r *reconfigState) markProcessed(rsn uint32) {
	r.lastProcessedIncomingRSN = rsn
	r.haveProcessedIncoming = true
}
