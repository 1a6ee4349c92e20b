package lxtax

import (
	"iter"
	"sort"
	"time"
)

// TimeMap is an append-only ordered collection indexed by timestamp, where
// duplicate timestamps are allowed and first-inserted entries come first.
// Entries can only leave through PopFirst or PopMax; there is no way to
// replace or delete by key, so nothing is ever silently dropped.
type TimeMap[V any] struct {
	entries []Entry[V]
	nextSeq uint64
}

// Entry is a stored (timestamp, value) pair. Popped entries keep their
// internal sequence number so that Reinsert can put a partially consumed
// entry back in its original place.
type Entry[V any] struct {
	Time  time.Time
	Value V
	seq   uint64
}

// before orders entries by (time, insertion sequence).
func (e Entry[V]) before(f Entry[V]) bool {
	if !e.Time.Equal(f.Time) {
		return e.Time.Before(f.Time)
	}
	return e.seq < f.seq
}

// Len returns the number of stored entries.
func (m *TimeMap[V]) Len() int { return len(m.entries) }

// Insert stores a value at the given time. Inserting the same value twice,
// even at the same timestamp, stores it twice.
func (m *TimeMap[V]) Insert(t time.Time, v V) {
	m.reinsert(Entry[V]{Time: t, Value: v, seq: m.nextSeq})
	m.nextSeq++
}

// Reinsert puts a previously popped entry back, preserving its original
// timestamp and insertion order relative to the remaining entries.
func (m *TimeMap[V]) Reinsert(e Entry[V]) {
	m.reinsert(e)
}

func (m *TimeMap[V]) reinsert(e Entry[V]) {
	i := sort.Search(len(m.entries), func(i int) bool {
		return e.before(m.entries[i])
	})
	m.entries = append(m.entries, Entry[V]{})
	copy(m.entries[i+1:], m.entries[i:])
	m.entries[i] = e
}

// First returns the earliest entry without removing it.
func (m *TimeMap[V]) First() (Entry[V], bool) {
	if len(m.entries) == 0 {
		return Entry[V]{}, false
	}
	return m.entries[0], true
}

// PopFirst removes and returns the earliest entry.
func (m *TimeMap[V]) PopFirst() (Entry[V], bool) {
	if len(m.entries) == 0 {
		return Entry[V]{}, false
	}
	e := m.entries[0]
	m.entries = m.entries[1:]
	return e, true
}

// PopMax removes and returns the entry whose value is maximal under the
// given ordering, where more(a, b) reports that a is strictly greater than
// b. Ties go to the earliest entry. It is O(n); this map is built for
// modest batch workloads, not hot paths.
func (m *TimeMap[V]) PopMax(more func(a, b V) bool) (Entry[V], bool) {
	if len(m.entries) == 0 {
		return Entry[V]{}, false
	}
	best := 0
	for i := 1; i < len(m.entries); i++ {
		if more(m.entries[i].Value, m.entries[best].Value) {
			best = i
		}
	}
	e := m.entries[best]
	m.entries = append(m.entries[:best], m.entries[best+1:]...)
	return e, true
}

// MostRecent returns the entry with the largest timestamp strictly before
// asOf.
func (m *TimeMap[V]) MostRecent(asOf time.Time) (Entry[V], bool) {
	i := sort.Search(len(m.entries), func(i int) bool {
		return !m.entries[i].Time.Before(asOf)
	})
	if i == 0 {
		return Entry[V]{}, false
	}
	return m.entries[i-1], true
}

// All iterates over (time, value) pairs in ascending (time, insertion)
// order.
func (m *TimeMap[V]) All() iter.Seq2[time.Time, V] {
	return func(yield func(time.Time, V) bool) {
		for _, e := range m.entries {
			if !yield(e.Time, e.Value) {
				return
			}
		}
	}
}

// Values iterates over values in ascending (time, insertion) order.
func (m *TimeMap[V]) Values() iter.Seq[V] {
	return func(yield func(V) bool) {
		for _, e := range m.entries {
			if !yield(e.Value) {
				return
			}
		}
	}
}
