package sctp

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/pion/logging"
	"github.com/pion/randutil"
	"github.com/rs/xid"
	"golang.org/x/time/rate"

	"github.com/pion/sctp/internal/stats"
)

// mathRandomGenerator and cryptoRandomGenerator mirror the teacher's
// split in github.com/pion/randutil. Verification tags and initial TSNs
// come from the crypto generator; cookie bytes come from crypto/rand
// (cookie.go). Nothing in the engine draws from mathRandomGenerator.
var mathRandomGenerator = randutil.NewMathRandomGenerator()   //nolint:gochecknoglobals
var cryptoRandomGenerator = randutil.NewCryptoRandomGenerator() //nolint:gochecknoglobals

// Config configures a new Association, mirroring the teacher's
// SettingEngine pattern of named fields with defaults filled in by
// fillDefaults rather than a builder (SPEC_FULL.md §2).
type Config struct {
	NetConn              Conn
	MaxReceiveBufferSize uint32
	MaxMessageSize       uint32
	// Port is used for both source and destination SCTP ports; WebRTC
	// data channels always use 5000 on both ends since DTLS already
	// demultiplexes peers (§6 wire format note: "Port 0 is forbidden").
	Port                 uint16
	LoggerFactory        logging.LoggerFactory
	// Stats, when non-nil, receives live congestion/queue gauges for the
	// lifetime of the association (SPEC_FULL.md DOMAIN STACK).
	Stats *stats.Collector
}

func (c Config) fillDefaults() Config {
	if c.MaxReceiveBufferSize == 0 {
		c.MaxReceiveBufferSize = initialRecvBuf
	}
	if c.MaxMessageSize == 0 {
		c.MaxMessageSize = defaultMaxMessage
	}
	if c.LoggerFactory == nil {
		c.LoggerFactory = logging.NewDefaultLoggerFactory()
	}
	if c.Port == 0 {
		c.Port = 5000
	}
	return c
}

// AssociationListener receives the association-level lifecycle events
// (§6 "Association listener"). Any handler left nil is simply not
// called.
type AssociationListener struct {
	OnAssociated    func(*Association)
	OnDisassociated func(*Association)
	OnRawStream     func(*Stream)
	OnDCEPStream    func(s *Stream, label string, ppid PayloadProtocolIdentifier)
}

// Association is a single SCTP association with one peer (§3). It owns
// the handshake state machine, the send/receive loops, the outbound
// gatherer, SACK-driven congestion control, and the stream registry.
type Association struct {
	id xid.ID

	lock sync.Mutex

	netConn Conn
	log     logging.LeveledLogger
	stats   *stats.Collector

	sourcePort      uint16
	destinationPort uint16

	isClient bool

	myVerificationTag   uint32
	peerVerificationTag uint32

	state associationState

	myNextTSN   uint32
	peerLastTSN uint32

	cumulativeTSNAckPoint    uint32
	advancedPeerTSNAckPoint  uint32
	useForwardTSN            bool
	minTSNToMeasureRTT       uint32
	lastAckSampleTime        time.Time

	cwnd             uint32
	rwnd             uint32
	ssthresh         uint32
	partialBytesAcked uint32
	inFastRecovery   bool
	fastRecoverExitPoint uint32

	mtu              uint32
	maxPayloadSizeV  uint32
	maxReceiveBufferSize uint32
	maxMessageSizeV  uint32

	ackStateVal ackState

	willRetransmitFast     bool
	willRetransmitReconfig bool
	willSendForwardTSN     bool
	sisToReset             []uint16
	forwardTSNStreams      []forwardTSNStream

	supportedExtensions map[chunkType]struct{}

	pendingQueue  *pendingQueue
	inflightQueue *inflightQueue
	recvQueue     *payloadQueue
	controlQueue  *controlQueue

	reconfig    *reconfigState
	cookies     *cookieStore
	rtoMgr      *rtoManager
	rateLimiter *rate.Limiter

	streams *streamMap

	storedInit       *chunkInit
	storedCookieEcho *chunkCookieEcho

	t1Init     *rtxTimer
	t1Cookie   *rtxTimer
	t3RTX      *rtxTimer
	tReconfig  *rtxTimer
	ackTimer   *rtxTimer

	listener AssociationListener

	handshakeCompletedCh chan error
	closeOnce            sync.Once
	closeCh              chan struct{}
	sendNudgeCh          chan struct{}

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// Server starts an association that waits passively for an inbound
// INIT (§4.1: server path stays Closed until one arrives, then the
// receive loop drives the rest of the handshake), blocking until the
// handshake completes or fails.
func Server(config Config) (*Association, error) {
	a := createAssociation(config, false)
	a.startLoops()
	if err := <-a.handshakeCompletedCh; err != nil {
		return nil, err
	}
	return a, nil
}

// Client starts an association that actively opens the handshake
// (§4.1: client path builds INIT, stores it, sends it, starts T1-init),
// blocking until the handshake completes or fails so callers never see
// an Association that isn't yet Established.
func Client(config Config) (*Association, error) {
	a := createAssociation(config, true)
	a.startLoops()
	a.lock.Lock()
	err := a.associate()
	a.lock.Unlock()
	if err != nil {
		return nil, err
	}
	if err := <-a.handshakeCompletedCh; err != nil {
		return nil, err
	}
	return a, nil
}

func createAssociation(config Config, isClient bool) *Association {
	config = config.fillDefaults()

	tsn := cryptoRandomGenerator.Uint32()
	a := &Association{
		id:                   xid.New(),
		netConn:              config.NetConn,
		log:                  config.LoggerFactory.NewLogger("sctp"),
		stats:                config.Stats,
		sourcePort:           config.Port,
		destinationPort:      config.Port,
		isClient:             isClient,
		myVerificationTag:    cryptoRandomGenerator.Uint32(),
		state:                closed,
		myNextTSN:            tsn,
		minTSNToMeasureRTT:   tsn,
		mtu:                  initialMTU,
		maxReceiveBufferSize: config.MaxReceiveBufferSize,
		maxMessageSizeV:      config.MaxMessageSize,
		useForwardTSN:        false,
		supportedExtensions:  map[chunkType]struct{}{},
		pendingQueue:         newPendingQueue(),
		inflightQueue:        newInflightQueue(),
		recvQueue:            newPayloadQueue(),
		controlQueue:         newControlQueue(),
		reconfig:             newReconfigState(),
		cookies:              newCookieStore(),
		rtoMgr:               newRTOManager(),
		rateLimiter:          rate.NewLimiter(rate.Limit(256), 16),
		streams:              nil,
		handshakeCompletedCh: make(chan error, 1),
		closeCh:              make(chan struct{}),
		sendNudgeCh:          make(chan struct{}, 1),
	}
	a.maxPayloadSizeV = a.mtu - commonHeaderSize - dataChunkHeaderSize
	a.cwnd = max32(2*a.mtu, 4380)
	a.ssthresh = 1 << 30
	a.streams = newStreamMap(isClient)
	a.ctx, a.cancel = context.WithCancel(context.Background())

	a.t1Init = newRTXTimer(timerT1Init, maxInitRetrans, a.onRetransmissionTimeout, a.onRetransmissionFailure)
	a.t1Cookie = newRTXTimer(timerT1Cookie, maxInitRetrans, a.onRetransmissionTimeout, a.onRetransmissionFailure)
	a.t3RTX = newRTXTimer(timerT3RTX, 0, a.onRetransmissionTimeout, a.onRetransmissionFailure)
	a.tReconfig = newRTXTimer(timerReconfig, 0, a.onRetransmissionTimeout, a.onRetransmissionFailure)
	a.ackTimer = newRTXTimer(timerAck, 1, a.onAckTimerTimeout, func(rtoTimerType) {})

	return a
}

// SetListener installs the listener callbacks of §6. Server and Client
// return only after the handshake has completed, so a listener set here
// does not receive OnAssociated for that handshake; streams the peer
// opens before the call are not reported through OnRawStream.
func (a *Association) SetListener(l AssociationListener) {
	a.lock.Lock()
	defer a.lock.Unlock()
	a.listener = l
}

func (a *Association) maxPayloadSize() int { return int(a.maxPayloadSizeV) }
func (a *Association) maxMessageSize() int { return int(a.maxMessageSizeV) }

// notifySend wakes the send loop immediately instead of waiting for the
// next tick (§5 "wakes every TICK or on external nudge").
func (a *Association) notifySend() {
	select {
	case a.sendNudgeCh <- struct{}{}:
	default:
	}
}

// generateNextTSN assigns and advances myNextTSN; caller holds a.lock.
func (a *Association) generateNextTSN() uint32 {
	tsn := a.myNextTSN
	a.myNextTSN++
	return tsn
}

func (a *Association) generateNextRSN() uint32 {
	return a.reconfig.nextRSN()
}

// associate builds and queues the initial INIT chunk and starts T1-init
// (§4.1 "Closed (client) -> associate()"). Caller holds a.lock.
func (a *Association) associate() error {
	init := &chunkInit{
		initiateTag:                    a.myVerificationTag,
		advertisedReceiverWindowCredit: a.maxReceiveBufferSize,
		numOutboundStreams:             sctpMaxStreams,
		numInboundStreams:              sctpMaxStreams,
		initialTSN:                     a.myNextTSN,
		supportedExtensions:            []chunkType{ctReconfig},
	}
	a.storedInit = init
	a.state = cookieWait
	a.controlQueue.push(init)
	a.t1Init.start(a.rtoMgr.getRTO())
	a.notifySend()
	return nil
}

const sctpMaxStreams = uint16(65535)

// setState transitions the association, logging at the density the
// teacher logs connection state changes.
func (a *Association) setState(s associationState) {
	if a.state == s {
		return
	}
	a.log.Debugf("[%s] state: %s -> %s", a.id, a.state, s)
	a.state = s
}

func (a *Association) getState() associationState {
	a.lock.Lock()
	defer a.lock.Unlock()
	return a.state
}

// Close shuts the association down: cancels both tasks, closes all
// timers (idempotent), closes the transport, and invokes the
// disassociated callback exactly once (§5 "Cancellation").
func (a *Association) Close() error {
	var err error
	a.closeOnce.Do(func() {
		a.lock.Lock()
		a.setState(closed)
		for _, s := range a.streams.all() {
			s.closeLocal(ErrAssociationClosedByUser)
		}
		a.lock.Unlock()

		a.t1Init.close()
		a.t1Cookie.close()
		a.t3RTX.close()
		a.tReconfig.close()
		a.ackTimer.close()

		a.cancel()
		close(a.closeCh)
		err = a.netConn.Close()
		a.wg.Wait()

		a.lock.Lock()
		l := a.listener.OnDisassociated
		a.lock.Unlock()
		if l != nil {
			l(a)
		}
	})
	return err
}

// unexpectedClose handles transport EOF/close (§7 "Transport failure"):
// stop tasks, close timers, notify listener, transition to Closed.
func (a *Association) unexpectedClose(cause error) {
	a.log.Warnf("[%s] transport closed unexpectedly: %v", a.id, cause)
	_ = a.Close()
}

// handshakeError surfaces a handshake failure to the listener and
// closes the association (§7 "Handshake failure").
func (a *Association) handshakeError(err error) {
	a.log.Errorf("[%s] handshake failed: %v", a.id, err)
	select {
	case a.handshakeCompletedCh <- err:
	default:
	}
	_ = a.Close()
}

func (a *Association) String() string {
	return fmt.Sprintf("Association(%s isClient=%v state=%s)", a.id, a.isClient, a.state)
}

// awnd is min(cwnd, rwnd), the allowed-window the gatherer bounds new
// sends and retransmits by (§4.2.2.a).
func (a *Association) awnd() uint32 {
	return min32(a.cwnd, a.rwnd)
}
