package sctp

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPayloadQueuePushOrderAndDuplicates(t *testing.T) {
	q := newPayloadQueue()

	assert.True(t, q.push(&chunkPayloadData{tsn: 2}, 0))
	assert.True(t, q.push(&chunkPayloadData{tsn: 1}, 0))
	assert.False(t, q.push(&chunkPayloadData{tsn: 1}, 0), "duplicate TSN rejected")
	assert.False(t, q.push(&chunkPayloadData{tsn: 5}, 10), "already below peerLastTSN rejected")

	dups := q.popDuplicates()
	assert.ElementsMatch(t, []uint32{1, 5}, dups)

	c, ok := q.pop(1)
	assert.True(t, ok)
	assert.Equal(t, uint32(1), c.tsn)

	_, ok = q.pop(1)
	assert.False(t, ok, "already popped")
}

func TestPayloadQueueGapAckBlocks(t *testing.T) {
	q := newPayloadQueue()
	q.push(&chunkPayloadData{tsn: 2}, 0)
	q.push(&chunkPayloadData{tsn: 3}, 0)
	q.push(&chunkPayloadData{tsn: 6}, 0)

	blocks := q.gapAckBlocks(0)
	assert.Equal(t, []gapAckBlock{{start: 2, end: 3}, {start: 6, end: 6}}, blocks)
}
