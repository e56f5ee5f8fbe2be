package cache

import (
	"container/list"
	"sync"
)

// entry is one cached payload on the recency list.
type entry struct {
	key     uint64
	payload []byte
}

// lruShard is one slice of the cache: a recency list plus an index,
// bounded by a byte budget.
type lruShard struct {
	mu       sync.Mutex
	maxBytes uint64
	curBytes uint64
	order    *list.List
	elems    map[uint64]*list.Element
}

func newLruShard(maxBytes uint64) *lruShard {
	return &lruShard{
		maxBytes: maxBytes,
		order:    list.New(),
		elems:    make(map[uint64]*list.Element),
	}
}

func (s *lruShard) get(key uint64) ([]byte, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	elem, ok := s.elems[key]
	if !ok {
		return nil, false
	}
	s.order.MoveToFront(elem)
	return elem.Value.(*entry).payload, true
}

// add stores the payload and returns how many entries were evicted to
// fit it. Payloads larger than the whole shard are not cached at all.
func (s *lruShard) add(key uint64, payload []byte) (stored bool, evicted int) {
	size := uint64(len(payload))
	if size > s.maxBytes {
		return false, 0
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if elem, ok := s.elems[key]; ok {
		old := elem.Value.(*entry)
		s.curBytes -= uint64(len(old.payload))
		old.payload = payload
		s.curBytes += size
		s.order.MoveToFront(elem)
	} else {
		s.elems[key] = s.order.PushFront(&entry{key: key, payload: payload})
		s.curBytes += size
	}

	for s.curBytes > s.maxBytes {
		if !s.dropOldest() {
			break
		}
		evicted++
	}
	return true, evicted
}

func (s *lruShard) remove(key uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	elem, ok := s.elems[key]
	if !ok {
		return false
	}
	s.drop(elem)
	return true
}

func (s *lruShard) purge() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := len(s.elems)
	s.order.Init()
	s.elems = make(map[uint64]*list.Element)
	s.curBytes = 0
	return n
}

func (s *lruShard) len() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.elems)
}

func (s *lruShard) bytes() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.curBytes
}

// dropOldest removes the least recently used entry. Callers must hold
// the lock.
func (s *lruShard) dropOldest() bool {
	elem := s.order.Back()
	if elem == nil {
		return false
	}
	s.drop(elem)
	return true
}

// drop removes one element. Callers must hold the lock.
func (s *lruShard) drop(elem *list.Element) {
	e := elem.Value.(*entry)
	s.order.Remove(elem)
	delete(s.elems, e.key)
	s.curBytes -= uint64(len(e.payload))
}
