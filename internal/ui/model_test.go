// ABOUTME: Tests for TUI model and state management
// ABOUTME: Tests status updates, rendering, and debug toggling
package ui

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/MeshTime-Protocol/meshtime-go/pkg/timesync"
)

func TestNewModel(t *testing.T) {
	model := NewModel(nil)

	if model.showDebug {
		t.Error("expected showDebug to be false initially")
	}
	if len(model.peers) != 0 {
		t.Error("expected no peers initially")
	}
}

func TestApplyStatus(t *testing.T) {
	model := NewModel(nil)

	model.applyStatus(StatusMsg{
		NodeID:          0x1234,
		Transport:       "sim",
		CorrectedMicros: 5000,
		OffsetMicros:    -40,
		Quality:         0.75,
		Peers: []timesync.SyncPeer{
			{NodeID: 0x99, QualityScore: 0.5, TimeDiffMicros: 120, SyncCount: 3},
		},
		Stats: timesync.SyncStats{Converged: true, PeerCount: 1},
	})

	if model.nodeID != 0x1234 {
		t.Errorf("expected node ID 0x1234, got 0x%x", model.nodeID)
	}
	if model.transport != "sim" {
		t.Errorf("expected transport 'sim', got %q", model.transport)
	}
	if model.offset != -40 {
		t.Errorf("expected offset -40, got %d", model.offset)
	}
	if len(model.peers) != 1 {
		t.Fatalf("expected 1 peer, got %d", len(model.peers))
	}
}

func TestViewShowsPeers(t *testing.T) {
	model := NewModel(nil)
	model.applyStatus(StatusMsg{
		NodeID: 1,
		Peers: []timesync.SyncPeer{
			{NodeID: 0xAB, QualityScore: 0.8, TimeDiffMicros: 42, SyncCount: 7, LinkAddr: "node-b"},
		},
	})

	view := model.View()
	if !strings.Contains(view, "0x000000AB") {
		t.Errorf("expected peer ID in view, got:\n%s", view)
	}
	if !strings.Contains(view, "node-b") {
		t.Errorf("expected link address in view, got:\n%s", view)
	}
}

func TestViewEmptyPeerTable(t *testing.T) {
	model := NewModel(nil)
	if !strings.Contains(model.View(), "No peers") {
		t.Error("expected empty-table placeholder in view")
	}
}

func TestDebugToggle(t *testing.T) {
	model := NewModel(nil)

	updated, _ := model.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'d'}})
	m := updated.(Model)
	if !m.showDebug {
		t.Error("expected debug enabled after pressing d")
	}

	updated, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'d'}})
	m = updated.(Model)
	if m.showDebug {
		t.Error("expected debug disabled after pressing d again")
	}
}

func TestQuitSignalsNode(t *testing.T) {
	quitChan := make(chan QuitMsg, 1)
	model := NewModel(quitChan)

	model.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})

	select {
	case <-quitChan:
	default:
		t.Error("expected a quit signal on the channel")
	}
}
