// ABOUTME: Tests for node application configuration
// ABOUTME: Covers defaulting, transport selection, and group parsing
package app

import (
	"testing"
)

func TestNewDefaultsCycleInterval(t *testing.T) {
	node := New(Config{})
	if node.config.CycleInterval <= 0 {
		t.Error("expected a positive default cycle interval")
	}
}

func TestBuildTransportRejectsUnknown(t *testing.T) {
	node := New(Config{Transport: "carrier-pigeon"})
	if _, err := node.buildTransport(); err == nil {
		t.Error("expected an error for an unknown transport")
	}
}

func TestGroupPort(t *testing.T) {
	if got := groupPort("239.84.77.83:47700"); got != 47700 {
		t.Errorf("expected 47700, got %d", got)
	}
	if got := groupPort(""); got != 47700 {
		t.Errorf("expected default group port 47700, got %d", got)
	}
	if got := groupPort("bogus"); got != 0 {
		t.Errorf("expected 0 for an unparsable group, got %d", got)
	}
}
