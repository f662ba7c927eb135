// Package resourcestore implements §4.12 (C13): an in-process, TTL and
// capacity-bounded cache of retrieved packets, keyed by source id and
// addressable through webfetch:// resource URIs.
package resourcestore

import (
	"container/list"
	"sort"
	"sync"
	"time"

	"github.com/custodia-labs/web-fetch-core/internal/core/domain"
)

const (
	// DefaultCapacity is the maximum number of distinct source ids retained.
	DefaultCapacity = 100
	// DefaultTTL matches the documented CACHE_TTL_S default.
	DefaultTTL = 300 * time.Second
)

type item struct {
	entry     domain.ResourceEntry
	expiresAt time.Time
	elem      *list.Element // elem.Value is sourceID, order = most-recently-set at front
}

// Store is an in-process TTL cache of domain.ResourceEntry values, bounded
// to Capacity distinct source ids and listable in retrieved_at-desc order.
// Safe for concurrent use.
type Store struct {
	capacity int
	ttl      time.Duration
	now      func() time.Time

	mu       sync.Mutex
	items    map[string]*item
	order    *list.List // front = most recently set
	onChange func()
}

// Config configures a Store.
type Config struct {
	Capacity int           // default DefaultCapacity
	TTL      time.Duration // default DefaultTTL
	Now      func() time.Time
}

// New builds a Store.
func New(cfg Config) *Store {
	capacity := cfg.Capacity
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	return &Store{
		capacity: capacity,
		ttl:      ttl,
		now:      now,
		items:    make(map[string]*item),
		order:    list.New(),
	}
}

// Set stores packet under its SourceID, refreshing its TTL and recency.
// Returns true if this source id was not already present, firing the
// registered list-changed callback (if any) in that case.
func (s *Store) Set(packet domain.Packet) bool {
	s.mu.Lock()
	isNew := false
	if existing, ok := s.items[packet.SourceID]; ok {
		existing.entry = domain.ResourceEntry{Packet: packet}
		existing.expiresAt = s.now().Add(s.ttl)
		s.order.MoveToFront(existing.elem)
	} else {
		isNew = true
		it := &item{
			entry:     domain.ResourceEntry{Packet: packet},
			expiresAt: s.now().Add(s.ttl),
		}
		it.elem = s.order.PushFront(packet.SourceID)
		s.items[packet.SourceID] = it
		for len(s.items) > s.capacity {
			oldest := s.order.Back()
			if oldest == nil {
				break
			}
			s.removeLocked(oldest.Value.(string))
		}
	}
	cb := s.onChange
	s.mu.Unlock()

	if isNew && cb != nil {
		s.fireBestEffort(cb)
	}
	return isNew
}

// fireBestEffort invokes cb, swallowing any panic so a misbehaving
// subscriber cannot take down the caller of Set.
func (s *Store) fireBestEffort(cb func()) {
	defer func() { _ = recover() }()
	cb()
}

// Get returns the entry for sourceID, or ok=false if absent or expired.
func (s *Store) Get(sourceID string) (domain.ResourceEntry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	it, ok := s.items[sourceID]
	if !ok {
		return domain.ResourceEntry{}, false
	}
	if s.now().After(it.expiresAt) {
		s.removeLocked(sourceID)
		return domain.ResourceEntry{}, false
	}
	return it.entry, true
}

// List returns live entries ordered by retrieved_at desc, source_id asc,
// pruning expired entries as it walks.
func (s *Store) List() []domain.ResourceEntry {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	for back := s.order.Back(); back != nil; {
		id := back.Value.(string)
		prev := back.Prev()
		if it, ok := s.items[id]; ok && now.After(it.expiresAt) {
			s.removeLocked(id)
		}
		back = prev
	}

	entries := make([]domain.ResourceEntry, 0, len(s.items))
	for _, it := range s.items {
		entries = append(entries, it.entry)
	}
	sort.Slice(entries, func(i, j int) bool {
		ti, tj := entries[i].RetrievedAt(), entries[j].RetrievedAt()
		if !ti.Equal(tj) {
			return ti.After(tj)
		}
		return entries[i].SourceID() < entries[j].SourceID()
	})
	return entries
}

// OnListChanged registers a best-effort callback invoked after Set adds a
// new source id. Only one callback is retained; re-registering replaces it.
func (s *Store) OnListChanged(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onChange = fn
}

func (s *Store) removeLocked(sourceID string) {
	if it, ok := s.items[sourceID]; ok {
		s.order.Remove(it.elem)
		delete(s.items, sourceID)
	}
}
