// ABOUTME: Tests for sync configuration validation
// ABOUTME: Covers range checks, defaults, and node ID derivation
package timesync

import (
	"errors"
	"testing"
	"time"
)

func TestDefaultConfigValid(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config must validate, got %v", err)
	}

	if cfg.SyncInterval != 2*time.Second {
		t.Errorf("expected 2s interval, got %v", cfg.SyncInterval)
	}
	if cfg.MaxCorrectionThresholdMicros != 100000 {
		t.Errorf("expected 100000us threshold, got %d", cfg.MaxCorrectionThresholdMicros)
	}
	if cfg.AccelerationFactor != 0.8 || cfg.DecelerationFactor != 0.6 {
		t.Errorf("expected factors 0.8/0.6, got %v/%v", cfg.AccelerationFactor, cfg.DecelerationFactor)
	}
	if cfg.MaxPeers != 10 {
		t.Errorf("expected 10 max peers, got %d", cfg.MaxPeers)
	}
}

func TestValidateRejectsBadRanges(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*SyncConfig)
	}{
		{"acceleration below zero", func(c *SyncConfig) { c.AccelerationFactor = -0.1 }},
		{"acceleration above one", func(c *SyncConfig) { c.AccelerationFactor = 1.5 }},
		{"deceleration below zero", func(c *SyncConfig) { c.DecelerationFactor = -0.1 }},
		{"deceleration above one", func(c *SyncConfig) { c.DecelerationFactor = 2 }},
		{"zero max peers", func(c *SyncConfig) { c.MaxPeers = 0 }},
		{"negative interval", func(c *SyncConfig) { c.SyncInterval = -time.Second }},
		{"zero threshold", func(c *SyncConfig) { c.MaxCorrectionThresholdMicros = 0 }},
		{"negative peer timeout", func(c *SyncConfig) { c.PeerTimeoutCycles = -1 }},
	}

	for _, tc := range cases {
		cfg := DefaultConfig()
		tc.mutate(&cfg)
		if err := cfg.Validate(); !errors.Is(err, ErrInvalidConfig) {
			t.Errorf("%s: expected ErrInvalidConfig, got %v", tc.name, err)
		}
	}
}

func TestEffectiveNodeID(t *testing.T) {
	cfg := DefaultConfig()
	cfg.NodeID = 0x42
	if got := cfg.EffectiveNodeID(); got != 0x42 {
		t.Errorf("expected configured ID 0x42, got 0x%x", got)
	}

	cfg.NodeID = 0
	if got := cfg.EffectiveNodeID(); got == 0 {
		t.Error("derived node ID must not be zero")
	}
}

func TestManualClock(t *testing.T) {
	clock := NewManualClock(100)
	if clock.NowMicros() != 100 {
		t.Errorf("expected 100, got %d", clock.NowMicros())
	}
	clock.Advance(50)
	if clock.NowMicros() != 150 {
		t.Errorf("expected 150, got %d", clock.NowMicros())
	}
}

func TestMonotonicClockAdvances(t *testing.T) {
	clock := NewMonotonicClock()
	a := clock.NowMicros()
	time.Sleep(2 * time.Millisecond)
	b := clock.NowMicros()
	if b <= a {
		t.Errorf("expected clock to advance, got %d then %d", a, b)
	}
}
