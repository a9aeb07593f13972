package sctp

import "sync"

// streamMap is the Stream Registry (§2 component 6, §4.7): a mapping
// from stream identifier to the owning *Stream, plus the local next-ID
// counter used when the application opens a new stream.
type streamMap struct {
	mu      sync.RWMutex
	streams map[uint16]*Stream
	nextID  uint16
}

// newStreamMap seeds the counter per §4.7: client streams are even
// starting at 0, server streams are odd starting at 1.
func newStreamMap(isClient bool) *streamMap {
	start := uint16(1)
	if isClient {
		start = 0
	}
	return &streamMap{streams: map[uint16]*Stream{}, nextID: start}
}

func (m *streamMap) get(id uint16) (*Stream, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.streams[id]
	return s, ok
}

func (m *streamMap) getOrCreate(a *Association, id uint16) *Stream {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.streams[id]; ok {
		return s
	}
	s := newStream(a, id, "")
	m.streams[id] = s
	return s
}

// create allocates a new locally initiated stream using the next
// available ID for this side's parity, incrementing by 2 (§4.7).
func (m *streamMap) create(a *Association, label string) *Stream {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := m.nextID
	m.nextID += 2
	s := newStream(a, id, label)
	m.streams[id] = s
	return s
}

func (m *streamMap) delete(id uint16) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.streams, id)
}

func (m *streamMap) has(id uint16) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.streams[id]
	return ok
}

// all returns a snapshot of every registered stream, used when closing
// the association down.
func (m *streamMap) all() []*Stream {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*Stream, 0, len(m.streams))
	for _, s := range m.streams {
		out = append(out, s)
	}
	return out
}
