package sctp

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// nopConn is a Conn that never produces data, used to build an
// Association for unit tests that exercise stream/gather logic without
// driving the real send/receive loops.
type nopConn struct{}

func (nopConn) ReadTimeout(buf []byte, timeout time.Duration) (int, error) {
	time.Sleep(timeout)
	return 0, nil
}
func (nopConn) Write(buf []byte) (int, error) { return len(buf), nil }
func (nopConn) Close() error                  { return nil }

func testAssociation(t *testing.T) *Association {
	t.Helper()
	a := createAssociation(Config{NetConn: nopConn{}}, true)
	a.setState(established)
	return a
}

func TestStreamWriteSCTPFragments(t *testing.T) {
	a := testAssociation(t)
	s := a.streams.create(a, "test")

	a.maxPayloadSizeV = 4
	big := []byte("0123456789")
	n, err := s.WriteSCTP(big, PayloadTypeWebRTCBinary)
	require.NoError(t, err)
	assert.Equal(t, len(big), n)
	assert.Equal(t, 3, a.pendingQueue.size())

	var reassembled []byte
	for a.pendingQueue.size() > 0 {
		c := a.pendingQueue.peek()
		a.pendingQueue.pop(c)
		reassembled = append(reassembled, c.userData...)
	}
	assert.Equal(t, big, reassembled)
}

func TestStreamWriteSCTPEmptyUsesEmptyPPID(t *testing.T) {
	a := testAssociation(t)
	s := a.streams.create(a, "test")

	_, err := s.WriteSCTP(nil, PayloadTypeWebRTCString)
	require.NoError(t, err)

	require.Equal(t, 1, a.pendingQueue.size())
	c := a.pendingQueue.peek()
	assert.Equal(t, PayloadTypeWebRTCStringEmpty, c.payloadType)
	assert.False(t, c.resetMarker)
}

func TestStreamHandleDataReassemblesFragments(t *testing.T) {
	a := testAssociation(t)
	s := a.streams.create(a, "test")

	s.handleData(&chunkPayloadData{
		streamSequenceNumber: 1,
		payloadType:          PayloadTypeWebRTCBinary,
		userData:             []byte("hel"),
		beginningFragment:    true,
	})
	s.handleData(&chunkPayloadData{
		streamSequenceNumber: 1,
		payloadType:          PayloadTypeWebRTCBinary,
		userData:             []byte("lo"),
		endingFragment:       true,
	})

	buf := make([]byte, 16)
	n, err := s.ReadSCTP(buf)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(buf[:n]))
}

func TestStreamHandleDataGreatestSSNRetention(t *testing.T) {
	a := testAssociation(t)
	s := a.streams.create(a, "test")

	s.handleData(&chunkPayloadData{streamSequenceNumber: 5, beginningFragment: true, endingFragment: true, userData: []byte("a")})
	assert.Equal(t, uint16(5), s.nextMessageSeqIn)

	// an older SSN arriving after must not regress the retained value.
	s.handleData(&chunkPayloadData{streamSequenceNumber: 2, beginningFragment: true, endingFragment: true, userData: []byte("b")})
	assert.Equal(t, uint16(5), s.nextMessageSeqIn)
}

func TestStreamCloseRequestsReset(t *testing.T) {
	a := testAssociation(t)
	s := a.streams.create(a, "test")

	require.NoError(t, s.Close())
	require.Equal(t, 1, a.pendingQueue.size())
	c := a.pendingQueue.peek()
	assert.True(t, c.resetMarker)
	assert.Equal(t, s.id, c.streamIdentifier)
}
