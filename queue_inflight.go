package sctp

import (
	"sort"
	"sync"
)

// inflightQueue holds DATA chunks that have been sent and are awaiting
// SACK acknowledgement, keyed by TSN (§3 "Payload Queues"). Invariant:
// every chunk in the queue satisfies tsn > cumulativeTSNAckPoint until
// it is acked and popped.
type inflightQueue struct {
	mu      sync.Mutex
	chunkMap map[uint32]*chunkPayloadData
	nBytes  int
}

func newInflightQueue() *inflightQueue {
	return &inflightQueue{chunkMap: map[uint32]*chunkPayloadData{}}
}

func (q *inflightQueue) pushNoCheck(c *chunkPayloadData) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.chunkMap[c.tsn] = c
	q.nBytes += len(c.userData)
}

func (q *inflightQueue) get(tsn uint32) (*chunkPayloadData, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	c, ok := q.chunkMap[tsn]
	return c, ok
}

// remove deletes the chunk at tsn and subtracts its bytes from the
// queue's byte count, returning whether it existed.
func (q *inflightQueue) remove(tsn uint32) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	c, ok := q.chunkMap[tsn]
	if !ok {
		return false
	}
	delete(q.chunkMap, tsn)
	q.nBytes -= len(c.userData)
	return true
}

func (q *inflightQueue) size() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.chunkMap)
}

func (q *inflightQueue) getNumBytes() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.nBytes
}

// sorted returns all inflight chunks ordered ascending by TSN. Callers
// mutate the returned chunks in place (they are pointers into the map).
func (q *inflightQueue) sorted() []*chunkPayloadData {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := make([]*chunkPayloadData, 0, len(q.chunkMap))
	for _, c := range q.chunkMap {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return sna32LT(out[i].tsn, out[j].tsn) })
	return out
}

// markAllToRetransmit sets retransmit=true on every chunk still
// inflight; used by the T3-rtx timeout handler (§4.6).
func (q *inflightQueue) markAllToRetransmit() {
	q.mu.Lock()
	defer q.mu.Unlock()
	for _, c := range q.chunkMap {
		if !c.acked && !c.abandoned {
			c.retransmit = true
		}
	}
}
