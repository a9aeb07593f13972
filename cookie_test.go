package sctp

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCookieStoreValidAndIdempotent(t *testing.T) {
	s := newCookieStore()
	cookie, err := s.generate()
	require.NoError(t, err)

	result, _ := s.check(cookie, time.Now())
	assert.Equal(t, cookieValid, result)

	// a replayed COOKIE-ECHO must still validate (idempotent, §8).
	result, _ = s.check(cookie, time.Now())
	assert.Equal(t, cookieValid, result)
}

func TestCookieStoreUnknown(t *testing.T) {
	s := newCookieStore()
	result, _ := s.check([]byte("not-a-real-cookie"), time.Now())
	assert.Equal(t, cookieUnknown, result)
}

func TestCookieStoreStale(t *testing.T) {
	s := newCookieStore()
	cookie, err := s.generate()
	require.NoError(t, err)

	result, staleMicros := s.check(cookie, time.Now().Add(validCookieLife+time.Second))
	assert.Equal(t, cookieStale, result)
	assert.Greater(t, staleMicros, uint32(0))

	// a stale cookie is pruned, so checking it again reports unknown.
	result, _ = s.check(cookie, time.Now())
	assert.Equal(t, cookieUnknown, result)
}

func TestCookieStoreClearExcept(t *testing.T) {
	s := newCookieStore()
	a, _ := s.generate()
	b, _ := s.generate()

	s.clearExcept(a)

	result, _ := s.check(a, time.Now())
	assert.Equal(t, cookieValid, result)
	result, _ = s.check(b, time.Now())
	assert.Equal(t, cookieUnknown, result)
}
