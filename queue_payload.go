package sctp

import (
	"sort"
	"sync"
)

// payloadQueue holds received DATA chunks awaiting in-order delivery,
// keyed by TSN (§3 "Payload Queues"). It does not track delivery
// itself: push takes the caller's peerLastTSN and records a TSN at or
// below it, or one already held, as a duplicate for the next SACK.
type payloadQueue struct {
	mu            sync.Mutex
	chunkMap      map[uint32]*chunkPayloadData
	dupTSN        []uint32
}

func newPayloadQueue() *payloadQueue {
	return &payloadQueue{chunkMap: map[uint32]*chunkPayloadData{}}
}

func (q *payloadQueue) push(c *chunkPayloadData, peerLastTSN uint32) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	if _, ok := q.chunkMap[c.tsn]; ok {
		q.dupTSN = append(q.dupTSN, c.tsn)
		return false
	}
	if !sna32GT(c.tsn, peerLastTSN) {
		q.dupTSN = append(q.dupTSN, c.tsn)
		return false
	}
	q.chunkMap[c.tsn] = c
	return true
}

// pop removes and returns the chunk at tsn if present, used while
// advancing peerLastTSN (§4.3).
func (q *payloadQueue) pop(tsn uint32) (*chunkPayloadData, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	c, ok := q.chunkMap[tsn]
	if ok {
		delete(q.chunkMap, tsn)
	}
	return c, ok
}

func (q *payloadQueue) has(tsn uint32) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	_, ok := q.chunkMap[tsn]
	return ok
}

func (q *payloadQueue) size() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.chunkMap)
}

// popDuplicates drains and returns the duplicate TSNs observed since the
// last SACK, for inclusion in the next one (§4.2.2.e).
func (q *payloadQueue) popDuplicates() []uint32 {
	q.mu.Lock()
	defer q.mu.Unlock()
	d := q.dupTSN
	q.dupTSN = nil
	return d
}

// gapAckBlocks builds the SACK gap-ack blocks relative to cumulativeTSN,
// for every contiguous run of held TSNs above it (§4.2.2.e).
func (q *payloadQueue) gapAckBlocks(cumulativeTSN uint32) []gapAckBlock {
	q.mu.Lock()
	tsns := make([]uint32, 0, len(q.chunkMap))
	for tsn := range q.chunkMap {
		if sna32GT(tsn, cumulativeTSN) {
			tsns = append(tsns, tsn)
		}
	}
	q.mu.Unlock()

	if len(tsns) == 0 {
		return nil
	}
	sort.Slice(tsns, func(i, j int) bool { return tsns[i] < tsns[j] })

	var blocks []gapAckBlock
	start := tsns[0]
	prev := tsns[0]
	for _, tsn := range tsns[1:] {
		if tsn == prev+1 {
			prev = tsn
			continue
		}
		blocks = append(blocks, gapAckBlock{
			start: uint16(start - cumulativeTSN),
			end:   uint16(prev - cumulativeTSN),
		})
		start = tsn
		prev = tsn
	}
	blocks = append(blocks, gapAckBlock{
		start: uint16(start - cumulativeTSN),
		end:   uint16(prev - cumulativeTSN),
	})
	return blocks
}
