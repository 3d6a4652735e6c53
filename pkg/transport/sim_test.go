// ABOUTME: Tests for the simulated broadcast mesh
// ABOUTME: Covers fan-out delivery, self-exclusion, and partitioning
package transport

import (
	"errors"
	"testing"
)

func TestMeshBroadcastFanOut(t *testing.T) {
	mesh := NewMesh()
	a := mesh.Join("node-a")
	b := mesh.Join("node-b")
	c := mesh.Join("node-c")

	if err := a.SendBroadcast([]byte{0xAB}); err != nil {
		t.Fatalf("broadcast failed: %v", err)
	}

	for _, peer := range []*SimTransport{b, c} {
		data, addr, ok := peer.PollReceive()
		if !ok {
			t.Fatalf("%s: expected a frame", peer.LocalAddr())
		}
		if data[0] != 0xAB || addr != "node-a" {
			t.Errorf("%s: got %v from %q", peer.LocalAddr(), data, addr)
		}
	}

	// Sender never hears its own broadcast
	if _, _, ok := a.PollReceive(); ok {
		t.Error("sender received its own frame")
	}
}

func TestMeshPartition(t *testing.T) {
	mesh := NewMesh()
	a := mesh.Join("a")
	b := mesh.Join("b")

	b.SetPartitioned(true)

	if err := a.SendBroadcast([]byte{1}); err != nil {
		t.Fatalf("broadcast failed: %v", err)
	}
	if _, _, ok := b.PollReceive(); ok {
		t.Error("partitioned node received a frame")
	}

	if err := b.SendBroadcast([]byte{2}); !errors.Is(err, ErrTransmit) {
		t.Errorf("expected ErrTransmit from partitioned sender, got %v", err)
	}

	b.SetPartitioned(false)
	if err := a.SendBroadcast([]byte{3}); err != nil {
		t.Fatalf("broadcast failed: %v", err)
	}
	if data, _, ok := b.PollReceive(); !ok || data[0] != 3 {
		t.Errorf("expected frame 3 after heal, got %v (ok=%v)", data, ok)
	}
}

func TestMeshClose(t *testing.T) {
	mesh := NewMesh()
	a := mesh.Join("a")
	b := mesh.Join("b")

	if err := b.Close(); err != nil {
		t.Fatalf("close failed: %v", err)
	}

	if err := a.SendBroadcast([]byte{1}); err != nil {
		t.Fatalf("broadcast failed: %v", err)
	}
	if err := b.SendBroadcast([]byte{2}); !errors.Is(err, ErrTransmit) {
		t.Errorf("expected ErrTransmit from closed transport, got %v", err)
	}
}
