package sctp

import (
	"sync"
	"time"
)

// rtoTimerType names which timer fired, so callbacks can share one
// dispatch function on the association (§4.6).
type rtoTimerType int

const (
	timerT1Init rtoTimerType = iota
	timerT1Cookie
	timerT3RTX
	timerReconfig
	timerAck
)

// onTimeout is invoked once per expiry with the number of consecutive
// timeouts observed so far (n=1 on the first fire). onFailure is invoked
// once, at most, when the retry cap is reached (§4.6).
type onTimeout func(id rtoTimerType, nRtos int)
type onFailure func(id rtoTimerType)

// rtxTimer is a cancellable, restartable retransmission timer: once
// started it fires every rto until stopped or until the retry cap is
// reached. start/stop may be called concurrently with the timer firing;
// the internal generation counter discards callbacks from a timer that
// was stopped and restarted before they ran, so a stale fire never
// reaches the association's handlers in association_timers.go.
type rtxTimer struct {
	mu         sync.Mutex
	name       rtoTimerType
	timer      *time.Timer
	generation uint64
	nRtos      int
	maxRetries int // 0 means unlimited
	running    bool
	onTimeoutCB onTimeout
	onFailureCB onFailure
}

func newRTXTimer(name rtoTimerType, maxRetries int, onT onTimeout, onF onFailure) *rtxTimer {
	return &rtxTimer{name: name, maxRetries: maxRetries, onTimeoutCB: onT, onFailureCB: onF}
}

// start (re)arms the timer for rto, canceling any prior pending fire.
func (t *rtxTimer) start(rto time.Duration) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.timer != nil {
		t.timer.Stop()
	}
	t.running = true
	t.generation++
	gen := t.generation
	t.timer = time.AfterFunc(rto, func() { t.fire(gen, rto) })
}

// stop cancels any pending fire; the timer can be started again later.
func (t *rtxTimer) stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.timer != nil {
		t.timer.Stop()
	}
	t.running = false
	t.generation++
	t.nRtos = 0
}

// close stops the timer exactly as stop does; it is idempotent (§5
// "Cancellation"). A later start arms the timer again.
func (t *rtxTimer) close() {
	t.stop()
}

func (t *rtxTimer) isRunning() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.running
}

func (t *rtxTimer) fire(gen uint64, rto time.Duration) {
	t.mu.Lock()
	if gen != t.generation || !t.running {
		t.mu.Unlock()
		return
	}
	t.nRtos++
	n := t.nRtos
	failed := t.maxRetries > 0 && n > t.maxRetries
	if failed {
		t.running = false
	} else {
		t.timer = time.AfterFunc(rto, func() { t.fire(gen, rto) })
	}
	t.mu.Unlock()

	if failed {
		if t.onFailureCB != nil {
			t.onFailureCB(t.name)
		}
		return
	}
	if t.onTimeoutCB != nil {
		t.onTimeoutCB(t.name, n)
	}
}
