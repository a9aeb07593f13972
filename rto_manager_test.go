package sctp

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRTOManagerInitialSampleIsTakenDirectly(t *testing.T) {
	m := newRTOManager()
	assert.Equal(t, rtoInitial, m.getRTO())

	rto := m.setNewRTT(500 * time.Millisecond)
	assert.Equal(t, 500*time.Millisecond, m.srtt, "first sample becomes srtt directly, not blended")
	assert.Equal(t, rto, m.getRTO())
}

func TestRTOManagerClampsToMinMax(t *testing.T) {
	m := newRTOManager()
	m.setNewRTT(1 * time.Microsecond)
	assert.GreaterOrEqual(t, m.getRTO(), rtoMin)

	m.reset()
	m.setNewRTT(500 * time.Second)
	assert.LessOrEqual(t, m.getRTO(), rtoMax)
}

func TestRTOManagerReset(t *testing.T) {
	m := newRTOManager()
	m.setNewRTT(time.Second)
	m.reset()
	assert.Equal(t, rtoInitial, m.getRTO())
	assert.True(t, m.noUpdate)
}
