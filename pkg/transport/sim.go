// ABOUTME: In-process simulated broadcast mesh
// ABOUTME: Deterministic multi-node transport for hardware-free protocol tests
package transport

import (
	"fmt"
	"sync"
)

// Mesh is an in-process broadcast domain connecting simulated transports.
// Delivery is synchronous and deterministic: SendBroadcast places the frame
// directly into every other member's inbox. No goroutines, no timers.
type Mesh struct {
	mu      sync.Mutex
	members map[string]*SimTransport
}

// NewMesh creates an empty broadcast domain.
func NewMesh() *Mesh {
	return &Mesh{members: make(map[string]*SimTransport)}
}

// Join adds a node to the domain under the given link address and returns its
// transport endpoint. Joining an address twice replaces the earlier member.
func (m *Mesh) Join(addr string) *SimTransport {
	tr := &SimTransport{
		mesh:  m,
		addr:  addr,
		inbox: NewInbox(0),
	}

	m.mu.Lock()
	m.members[addr] = tr
	m.mu.Unlock()

	return tr
}

// SimTransport is one endpoint of a simulated mesh.
type SimTransport struct {
	mesh  *Mesh
	addr  string
	inbox *Inbox

	mu          sync.Mutex
	partitioned bool
	closed      bool
}

// SendBroadcast delivers the frame to every other non-partitioned member.
func (t *SimTransport) SendBroadcast(frame []byte) error {
	t.mu.Lock()
	partitioned, closed := t.partitioned, t.closed
	t.mu.Unlock()

	if closed {
		return fmt.Errorf("%w: transport closed", ErrTransmit)
	}
	if partitioned {
		return fmt.Errorf("%w: node partitioned from mesh", ErrTransmit)
	}

	t.mesh.mu.Lock()
	defer t.mesh.mu.Unlock()

	for addr, member := range t.mesh.members {
		if addr == t.addr {
			continue
		}
		member.mu.Lock()
		reachable := !member.partitioned && !member.closed
		member.mu.Unlock()
		if reachable {
			member.inbox.Push(frame, t.addr)
		}
	}

	return nil
}

// PollReceive returns the oldest pending frame, non-blocking.
func (t *SimTransport) PollReceive() ([]byte, string, bool) {
	return t.inbox.Pop()
}

// LocalAddr returns the link address this endpoint joined under.
func (t *SimTransport) LocalAddr() string {
	return t.addr
}

// SetPartitioned isolates the node from the mesh in both directions, leaving
// already-queued frames readable.
func (t *SimTransport) SetPartitioned(partitioned bool) {
	t.mu.Lock()
	t.partitioned = partitioned
	t.mu.Unlock()
}

// DroppedFrames reports inbox overflow drops.
func (t *SimTransport) DroppedFrames() uint64 {
	return t.inbox.Dropped()
}

// Close removes the endpoint from the mesh.
func (t *SimTransport) Close() error {
	t.mu.Lock()
	t.closed = true
	t.mu.Unlock()

	t.mesh.mu.Lock()
	delete(t.mesh.members, t.addr)
	t.mesh.mu.Unlock()

	return nil
}
