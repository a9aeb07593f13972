package sctp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInflightQueueSortedAndBytes(t *testing.T) {
	q := newInflightQueue()
	q.pushNoCheck(&chunkPayloadData{tsn: 3, userData: []byte("abc")})
	q.pushNoCheck(&chunkPayloadData{tsn: 1, userData: []byte("a")})
	q.pushNoCheck(&chunkPayloadData{tsn: 2, userData: []byte("ab")})

	sorted := q.sorted()
	require.Len(t, sorted, 3)
	assert.Equal(t, []uint32{1, 2, 3}, []uint32{sorted[0].tsn, sorted[1].tsn, sorted[2].tsn})
	assert.Equal(t, 6, q.getNumBytes())

	assert.True(t, q.remove(2))
	assert.Equal(t, 4, q.getNumBytes())
	assert.False(t, q.remove(2), "already removed")
}

func TestInflightQueueMarkAllToRetransmit(t *testing.T) {
	q := newInflightQueue()
	q.pushNoCheck(&chunkPayloadData{tsn: 1})
	acked := &chunkPayloadData{tsn: 2, acked: true}
	q.pushNoCheck(acked)

	q.markAllToRetransmit()

	c, _ := q.get(1)
	assert.True(t, c.retransmit)
	assert.False(t, acked.retransmit, "acked chunks are not retransmitted")
}
