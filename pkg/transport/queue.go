// ABOUTME: Bounded inbox queue between receive goroutines and the sync cycle
// ABOUTME: Fixed capacity ring that drops the oldest frame on overflow
package transport

import "sync"

// DefaultInboxCapacity bounds pending frames per transport. At the default
// 2s broadcast interval this holds many full rounds from a 10-peer domain.
const DefaultInboxCapacity = 32

type inboxFrame struct {
	data []byte
	addr string
}

// Inbox is a fixed-capacity frame queue. The producer side is called from a
// receive goroutine (socket reader, websocket read pump, or a simulated
// sender); the consumer side is the sync cycle's poll. On overflow the oldest
// unread frame is dropped: bounded staleness beats growing memory on a
// constrained device. Critical sections are short and never block.
type Inbox struct {
	mu      sync.Mutex
	frames  []inboxFrame
	head    int
	count   int
	dropped uint64
}

// NewInbox creates an inbox. A non-positive capacity selects the default.
func NewInbox(capacity int) *Inbox {
	if capacity <= 0 {
		capacity = DefaultInboxCapacity
	}
	return &Inbox{frames: make([]inboxFrame, capacity)}
}

// Push enqueues a frame, copying the data so the caller may reuse its buffer.
func (q *Inbox) Push(data []byte, addr string) {
	frame := inboxFrame{data: append([]byte(nil), data...), addr: addr}

	q.mu.Lock()
	defer q.mu.Unlock()

	if q.count == len(q.frames) {
		// Full: overwrite the oldest slot
		q.head = (q.head + 1) % len(q.frames)
		q.count--
		q.dropped++
	}

	q.frames[(q.head+q.count)%len(q.frames)] = frame
	q.count++
}

// Pop dequeues the oldest frame, or reports ok=false when empty.
func (q *Inbox) Pop() (data []byte, addr string, ok bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.count == 0 {
		return nil, "", false
	}

	frame := q.frames[q.head]
	q.frames[q.head] = inboxFrame{}
	q.head = (q.head + 1) % len(q.frames)
	q.count--

	return frame.data, frame.addr, true
}

// Len returns the number of pending frames.
func (q *Inbox) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.count
}

// Dropped returns the number of frames lost to overflow.
func (q *Inbox) Dropped() uint64 {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.dropped
}
