// ABOUTME: Tests for the bounded inbox queue
// ABOUTME: Covers FIFO ordering, drop-oldest overflow, and buffer copying
package transport

import (
	"fmt"
	"testing"
)

func TestInboxFIFO(t *testing.T) {
	q := NewInbox(4)
	q.Push([]byte{1}, "a")
	q.Push([]byte{2}, "b")

	data, addr, ok := q.Pop()
	if !ok || data[0] != 1 || addr != "a" {
		t.Errorf("expected frame 1 from a, got %v from %q (ok=%v)", data, addr, ok)
	}

	data, addr, ok = q.Pop()
	if !ok || data[0] != 2 || addr != "b" {
		t.Errorf("expected frame 2 from b, got %v from %q (ok=%v)", data, addr, ok)
	}

	if _, _, ok := q.Pop(); ok {
		t.Error("expected empty inbox")
	}
}

func TestInboxOverflowDropsOldest(t *testing.T) {
	q := NewInbox(3)
	for i := 1; i <= 5; i++ {
		q.Push([]byte{byte(i)}, fmt.Sprintf("n%d", i))
	}

	if q.Dropped() != 2 {
		t.Errorf("expected 2 dropped frames, got %d", q.Dropped())
	}

	// Frames 1 and 2 were displaced; 3, 4, 5 remain in order
	for _, want := range []byte{3, 4, 5} {
		data, _, ok := q.Pop()
		if !ok || data[0] != want {
			t.Errorf("expected frame %d, got %v (ok=%v)", want, data, ok)
		}
	}
}

func TestInboxCopiesData(t *testing.T) {
	q := NewInbox(2)
	buf := []byte{42}
	q.Push(buf, "x")
	buf[0] = 0

	data, _, _ := q.Pop()
	if data[0] != 42 {
		t.Error("inbox aliases the producer's buffer")
	}
}

func TestInboxWrapAround(t *testing.T) {
	q := NewInbox(2)
	for round := 0; round < 5; round++ {
		q.Push([]byte{byte(round)}, "a")
		data, _, ok := q.Pop()
		if !ok || data[0] != byte(round) {
			t.Fatalf("round %d: got %v (ok=%v)", round, data, ok)
		}
	}
	if q.Len() != 0 {
		t.Errorf("expected empty inbox, len=%d", q.Len())
	}
}
