package sctp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPacketMarshalUnmarshalInit(t *testing.T) {
	p := &packet{
		sourcePort:      5000,
		destinationPort: 5000,
		verificationTag: 0,
		chunks: []chunk{&chunkInit{
			initiateTag:                    0xdeadbeef,
			advertisedReceiverWindowCredit: 1024 * 1024,
			numOutboundStreams:             65535,
			numInboundStreams:              65535,
			initialTSN:                     12345,
			supportedExtensions:            []chunkType{ctReconfig},
		}},
	}

	raw, err := p.marshal()
	require.NoError(t, err)

	var out packet
	require.NoError(t, out.unmarshal(raw))

	assert.Equal(t, p.sourcePort, out.sourcePort)
	assert.Equal(t, p.destinationPort, out.destinationPort)
	require.Len(t, out.chunks, 1)

	init, ok := out.chunks[0].(*chunkInit)
	require.True(t, ok)
	assert.Equal(t, uint32(0xdeadbeef), init.initiateTag)
	assert.Equal(t, uint32(12345), init.initialTSN)
	assert.Contains(t, init.supportedExtensions, ctReconfig)
}

func TestPacketChecksumMismatch(t *testing.T) {
	p := &packet{chunks: []chunk{&chunkInit{initiateTag: 1, initialTSN: 1}}}
	raw, err := p.marshal()
	require.NoError(t, err)

	raw[commonHeaderChecksumOffset] ^= 0xff

	var out packet
	err = out.unmarshal(raw)
	assert.ErrorIs(t, err, ErrChecksumMismatch)
}

func TestPacketMarshalUnmarshalData(t *testing.T) {
	p := &packet{
		sourcePort:      1,
		destinationPort: 1,
		verificationTag: 42,
		chunks: []chunk{&chunkPayloadData{
			tsn:                  7,
			streamIdentifier:     3,
			streamSequenceNumber: 1,
			payloadType:          PayloadTypeWebRTCBinary,
			userData:             []byte("hello"),
			beginningFragment:    true,
			endingFragment:       true,
		}},
	}

	raw, err := p.marshal()
	require.NoError(t, err)

	var out packet
	require.NoError(t, out.unmarshal(raw))
	require.Len(t, out.chunks, 1)

	d, ok := out.chunks[0].(*chunkPayloadData)
	require.True(t, ok)
	assert.Equal(t, uint32(7), d.tsn)
	assert.Equal(t, []byte("hello"), d.userData)
	assert.True(t, d.beginningFragment)
	assert.True(t, d.endingFragment)
}
