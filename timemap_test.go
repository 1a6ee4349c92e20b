package lxtax

import (
	"testing"
	"time"
)

func collect(m *TimeMap[string]) []string {
	var out []string
	for v := range m.Values() {
		out = append(out, v)
	}
	return out
}

func TestTimeMapOrdering(t *testing.T) {
	var m TimeMap[string]
	t1 := date("2022-01-01T00:00:00Z")
	t2 := date("2022-06-01T00:00:00Z")

	m.Insert(t2, "c")
	m.Insert(t1, "a")
	m.Insert(t1, "b") // duplicate key keeps insertion order
	m.Insert(t2.Add(time.Hour), "d")

	want := []string{"a", "b", "c", "d"}
	got := collect(&m)
	if len(got) != len(want) {
		t.Fatalf("Values() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Values() = %v, want %v", got, want)
		}
	}
}

func TestTimeMapPopFirst(t *testing.T) {
	var m TimeMap[string]
	m.Insert(date("2022-02-01T00:00:00Z"), "later")
	m.Insert(date("2022-01-01T00:00:00Z"), "earlier")

	if first, ok := m.First(); !ok || first.Value != "earlier" {
		t.Fatalf("First() = %v, %v", first.Value, ok)
	}
	if m.Len() != 2 {
		t.Fatal("First() removed an entry")
	}

	e, ok := m.PopFirst()
	if !ok || e.Value != "earlier" {
		t.Fatalf("PopFirst() = %v, %v", e.Value, ok)
	}
	e, ok = m.PopFirst()
	if !ok || e.Value != "later" {
		t.Fatalf("PopFirst() = %v, %v", e.Value, ok)
	}
	if _, ok := m.PopFirst(); ok {
		t.Fatal("PopFirst() on empty map reported an entry")
	}
}

func TestTimeMapPopMax(t *testing.T) {
	var m TimeMap[int]
	at := date("2022-01-01T00:00:00Z")
	m.Insert(at, 10)
	m.Insert(at.Add(time.Hour), 30)
	m.Insert(at.Add(2*time.Hour), 30) // tie: earlier entry wins
	m.Insert(at.Add(3*time.Hour), 20)

	more := func(a, b int) bool { return a > b }

	e, _ := m.PopMax(more)
	if e.Value != 30 || !e.Time.Equal(at.Add(time.Hour)) {
		t.Fatalf("PopMax = %d at %s, want first 30", e.Value, e.Time)
	}
	e, _ = m.PopMax(more)
	if e.Value != 30 || !e.Time.Equal(at.Add(2*time.Hour)) {
		t.Fatalf("PopMax = %d at %s, want second 30", e.Value, e.Time)
	}
	e, _ = m.PopMax(more)
	if e.Value != 20 {
		t.Fatalf("PopMax = %d, want 20", e.Value)
	}
	e, _ = m.PopMax(more)
	if e.Value != 10 {
		t.Fatalf("PopMax = %d, want 10", e.Value)
	}
	if _, ok := m.PopMax(more); ok {
		t.Fatal("PopMax on empty map reported an entry")
	}
}

func TestTimeMapReinsertKeepsPlace(t *testing.T) {
	var m TimeMap[string]
	at := date("2022-01-01T00:00:00Z")
	m.Insert(at, "a")
	m.Insert(at, "b")

	e, _ := m.PopFirst()
	if e.Value != "a" {
		t.Fatalf("PopFirst = %q", e.Value)
	}
	e.Value = "a2"
	m.Reinsert(e)

	// The reinserted entry keeps its original sequence, so it still
	// precedes "b" despite being inserted later.
	e, _ = m.PopFirst()
	if e.Value != "a2" {
		t.Fatalf("after Reinsert, PopFirst = %q, want %q", e.Value, "a2")
	}
}

func TestTimeMapMostRecent(t *testing.T) {
	var m TimeMap[string]
	t1 := date("2022-01-01T00:00:00Z")
	t2 := date("2022-02-01T00:00:00Z")
	m.Insert(t1, "jan")
	m.Insert(t2, "feb")

	if _, ok := m.MostRecent(t1); ok {
		t.Error("MostRecent at the first key should find nothing (strictly before)")
	}
	if e, ok := m.MostRecent(t1.Add(time.Second)); !ok || e.Value != "jan" {
		t.Errorf("MostRecent just after t1 = %v, %v", e.Value, ok)
	}
	if e, ok := m.MostRecent(date("2023-01-01T00:00:00Z")); !ok || e.Value != "feb" {
		t.Errorf("MostRecent far future = %v, %v", e.Value, ok)
	}
}
