package sctp

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestReconfigStateOutgoingRequests(t *testing.T) {
	r := newReconfigState()
	assert.True(t, r.empty())

	rsn := r.nextRSN()
	req := &outgoingReconfigRequest{requestSequenceNumber: rsn, streamIdentifiers: []uint16{4}}
	r.addOutgoing(req)
	assert.False(t, r.empty())

	got, ok := r.get(rsn)
	assert.True(t, ok)
	assert.Equal(t, req, got)

	r.remove(rsn)
	assert.True(t, r.empty())
}

func TestReconfigStateIncomingIdempotence(t *testing.T) {
	r := newReconfigState()
	assert.False(t, r.alreadyProcessed(5))

	r.markProcessed(5)
	assert.True(t, r.alreadyProcessed(5))
	assert.True(t, r.alreadyProcessed(3), "anything at or below the high-water mark counts as processed")
	assert.False(t, r.alreadyProcessed(6))
}
