package sctp

// OpenStream allocates a new locally initiated stream (§3 "Stream",
// §4.7). The caller is expected to drive DCEP negotiation (or whatever
// pluggable protocol a reassembly layer above this core implements)
// over the returned Stream itself; that layer is out of scope here
// (§1).
func (a *Association) OpenStream(label string, ppi PayloadProtocolIdentifier) (*Stream, error) {
	a.lock.Lock()
	defer a.lock.Unlock()
	if a.state != established {
		return nil, ErrAssociationClosed
	}
	s := a.streams.create(a, label)
	return s, nil
}

// sendAbort queues an ABORT chunk and tears the association down
// locally; supplements the handshake-only ABORT handling with the
// ability to originate one (SPEC_FULL.md "Supplemented features").
func (a *Association) sendAbort(reason string) {
	a.lock.Lock()
	c := &chunkAbort{errorCauses: []byte(reason)}
	a.controlQueue.push(c)
	a.lock.Unlock()
	a.notifySend()
	_ = a.Close()
}
