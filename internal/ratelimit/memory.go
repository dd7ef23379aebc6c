package ratelimit

import (
	"container/list"
	"context"
	"sync"
	"time"
)

const minSweepInterval = time.Minute

type entry struct {
	key      string
	accepted time.Time
}

// MemoryStore keeps last-accepted timestamps in process memory.
//
// Entries are ordered by last acceptance, most recent first. Entries older
// than the window are swept periodically; they are indistinguishable from
// absent ones, so sweeping never changes a decision. When maxEntries is
// reached the least recently accepted key is evicted.
type MemoryStore struct {
	mu         sync.Mutex
	window     time.Duration
	maxEntries int
	entries    map[string]*list.Element
	order      *list.List
	now        func() time.Time

	stop     chan struct{}
	stopOnce sync.Once
}

// NewMemoryStore creates the store and starts its sweeper. Call Close to
// stop the sweeper. maxEntries <= 0 disables the size cap.
func NewMemoryStore(window time.Duration, maxEntries int) *MemoryStore {
	s := newMemoryStore(window, maxEntries, time.Now)

	interval := window
	if interval < minSweepInterval {
		interval = minSweepInterval
	}
	go s.sweepLoop(interval)

	return s
}

func newMemoryStore(window time.Duration, maxEntries int, now func() time.Time) *MemoryStore {
	return &MemoryStore{
		window:     window,
		maxEntries: maxEntries,
		entries:    make(map[string]*list.Element),
		order:      list.New(),
		now:        now,
		stop:       make(chan struct{}),
	}
}

func (s *MemoryStore) Allow(_ context.Context, key string) (bool, error) {
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()

	if el, ok := s.entries[key]; ok {
		e := el.Value.(*entry)
		if now.Sub(e.accepted) < s.window {
			return false, nil
		}
		e.accepted = now
		s.order.MoveToFront(el)
		return true, nil
	}

	if s.maxEntries > 0 && len(s.entries) >= s.maxEntries {
		s.sweepLocked(now)
		if len(s.entries) >= s.maxEntries {
			s.removeLocked(s.order.Back())
		}
	}

	s.entries[key] = s.order.PushFront(&entry{key: key, accepted: now})
	return true, nil
}

// LastAccepted returns the recorded time for key, if any.
func (s *MemoryStore) LastAccepted(key string) (time.Time, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	el, ok := s.entries[key]
	if !ok {
		return time.Time{}, false
	}
	return el.Value.(*entry).accepted, true
}

// Len returns the number of tracked keys.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// Sweep drops entries whose window has elapsed and returns how many were removed.
func (s *MemoryStore) Sweep() int {
	now := s.now()
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sweepLocked(now)
}

func (s *MemoryStore) Close() error {
	s.stopOnce.Do(func() { close(s.stop) })
	return nil
}

func (s *MemoryStore) sweepLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.Sweep()
		case <-s.stop:
			return
		}
	}
}

func (s *MemoryStore) sweepLocked(now time.Time) int {
	removed := 0
	for el := s.order.Back(); el != nil; el = s.order.Back() {
		if now.Sub(el.Value.(*entry).accepted) < s.window {
			break
		}
		s.removeLocked(el)
		removed++
	}
	return removed
}

func (s *MemoryStore) removeLocked(el *list.Element) {
	if el == nil {
		return
	}
	s.order.Remove(el)
	delete(s.entries, el.Value.(*entry).key)
}
