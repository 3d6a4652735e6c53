// ABOUTME: Tests for mDNS discovery
// ABOUTME: Tests manager construction and entry channel wiring
package discovery

import (
	"testing"
)

func TestNewManager(t *testing.T) {
	config := Config{
		InstanceName: "test-node",
		Port:         47700,
	}

	mgr := NewManager(config)
	if mgr == nil {
		t.Fatal("expected manager to be created")
	}

	if mgr.Entries() == nil {
		t.Error("expected a non-nil entries channel")
	}

	mgr.Stop()
}

func TestNewManagerRelayMode(t *testing.T) {
	mgr := NewManager(Config{
		InstanceName: "test-relay",
		Port:         8930,
		RelayMode:    true,
	})
	if mgr == nil {
		t.Fatal("expected manager to be created")
	}
	mgr.Stop()
}
