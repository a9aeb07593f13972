package sctp

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRTXTimerFiresAndCountsRtos(t *testing.T) {
	var fires int32
	timer := newRTXTimer(timerT3RTX, 0, func(id rtoTimerType, n int) {
		atomic.AddInt32(&fires, 1)
	}, func(rtoTimerType) {})

	timer.start(10 * time.Millisecond)
	time.Sleep(50 * time.Millisecond)
	timer.stop()

	assert.GreaterOrEqual(t, atomic.LoadInt32(&fires), int32(1))
}

func TestRTXTimerStopPreventsStaleFire(t *testing.T) {
	var fired atomic.Bool
	timer := newRTXTimer(timerAck, 1, func(rtoTimerType, int) {
		fired.Store(true)
	}, func(rtoTimerType) {})

	timer.start(5 * time.Millisecond)
	timer.stop()
	time.Sleep(30 * time.Millisecond)

	assert.False(t, fired.Load(), "stopped timer must not invoke its callback")
}

func TestRTXTimerFailureAfterMaxRetries(t *testing.T) {
	var failed atomic.Bool
	timer := newRTXTimer(timerT1Init, 1, func(rtoTimerType, int) {}, func(rtoTimerType) {
		failed.Store(true)
	})

	timer.start(5 * time.Millisecond)
	time.Sleep(40 * time.Millisecond)

	assert.True(t, failed.Load())
	assert.False(t, timer.isRunning())
}
