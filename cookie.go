package sctp

import (
	"bytes"
	"crypto/rand"
	"sync"
	"time"
)

// cookieHolder is a server-issued cookie remembered until it is either
// redeemed by a matching COOKIE-ECHO or ages past validCookieLife (§3,
// §9 "Cookies": the source's plaintext-list approach, not a signed
// HMAC cookie).
type cookieHolder struct {
	cookieData []byte
	createdAt  time.Time
}

// cookieStore remembers locally issued cookies for COOKIE-ECHO
// validation (§2 component 7 "Cookie Store"). Only one cookie survives
// once the association reaches Established (§3 invariant).
type cookieStore struct {
	mu      sync.Mutex
	cookies []*cookieHolder
}

func newCookieStore() *cookieStore {
	return &cookieStore{}
}

// generate mints a fresh cookieSize-byte cookie, remembers it, and
// returns its bytes for embedding in an INIT-ACK.
func (s *cookieStore) generate() ([]byte, error) {
	data := make([]byte, cookieSize)
	if _, err := rand.Read(data); err != nil {
		return nil, err
	}
	s.mu.Lock()
	s.cookies = append(s.cookies, &cookieHolder{cookieData: data, createdAt: time.Now()})
	s.mu.Unlock()
	return data, nil
}

// cookieCheckResult distinguishes the three outcomes of §4.1's cookie
// validation.
type cookieCheckResult int

const (
	cookieValid cookieCheckResult = iota
	cookieStale
	cookieUnknown
)

// check validates candidate against the stored list. A valid cookie is
// kept, so a replayed COOKIE-ECHO validates again; a stale one is
// removed, and its staleness is reported as the overflow in
// microseconds for the StaleCookie cause.
func (s *cookieStore) check(candidate []byte, now time.Time) (result cookieCheckResult, staleSinceMicros uint32) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, h := range s.cookies {
		if !bytes.Equal(h.cookieData, candidate) {
			continue
		}
		age := now.Sub(h.createdAt)
		if age > validCookieLife {
			s.cookies = append(s.cookies[:i], s.cookies[i+1:]...)
			return cookieStale, uint32((age - validCookieLife).Microseconds())
		}
		// Cookie idempotence (§8): do not remove it here. A replayed
		// valid COOKIE-ECHO must be able to find the same cookie again
		// and return another COOKIE-ACK without side effects.
		return cookieValid, 0
	}
	return cookieUnknown, 0
}

// clearAll drops every stored cookie once the association is
// Established and no further COOKIE-ECHO is expected to matter, save
// for the idempotent-replay case which check() already tolerates while
// any cookie remains; the association keeps the winning cookie via
// clearExcept instead of calling this eagerly.
func (s *cookieStore) clearAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cookies = nil
}

// clearExcept retains only the cookie equal to keep, enforcing "only one
// cookie per association survives once ESTABLISHED" (§3 invariant).
func (s *cookieStore) clearExcept(keep []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, h := range s.cookies {
		if bytes.Equal(h.cookieData, keep) {
			s.cookies = []*cookieHolder{h}
			return
		}
	}
	s.cookies = nil
}

