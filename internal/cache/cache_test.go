package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetGet_RoundTrips(t *testing.T) {
	s := New(Config{})
	s.Set("k", []byte("v"), time.Minute)

	got, ok := s.Get("k")
	require.True(t, ok)
	assert.Equal(t, []byte("v"), got)
}

func TestGet_MissingKey(t *testing.T) {
	s := New(Config{})
	_, ok := s.Get("missing")
	assert.False(t, ok)
}

func TestSet_NonPositiveTTLIsNoop(t *testing.T) {
	s := New(Config{})
	s.Set("k", []byte("v"), 0)
	_, ok := s.Get("k")
	assert.False(t, ok)
}

func TestGet_ExpiredEntryIsPruned(t *testing.T) {
	now := time.Now()
	s := New(Config{Now: func() time.Time { return now }})
	s.Set("k", []byte("v"), time.Second)

	now = now.Add(2 * time.Second)
	_, ok := s.Get("k")
	assert.False(t, ok)
	assert.Equal(t, 0, s.Len())
}

func TestSet_EvictsLeastRecentlyUsedOverCapacity(t *testing.T) {
	s := New(Config{Capacity: 2})
	s.Set("a", []byte("1"), time.Minute)
	s.Set("b", []byte("2"), time.Minute)
	s.Get("a") // touch a, making b the LRU victim
	s.Set("c", []byte("3"), time.Minute)

	_, ok := s.Get("b")
	assert.False(t, ok)
	_, ok = s.Get("a")
	assert.True(t, ok)
	_, ok = s.Get("c")
	assert.True(t, ok)
}

func TestGet_ReturnsDefensiveCopy(t *testing.T) {
	s := New(Config{})
	original := []byte("v")
	s.Set("k", original, time.Minute)

	got, _ := s.Get("k")
	got[0] = 'x'

	again, _ := s.Get("k")
	assert.Equal(t, []byte("v"), again)
}

func TestDelete_RemovesEntry(t *testing.T) {
	s := New(Config{})
	s.Set("k", []byte("v"), time.Minute)
	s.Delete("k")
	_, ok := s.Get("k")
	assert.False(t, ok)
}
