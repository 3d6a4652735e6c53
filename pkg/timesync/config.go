// ABOUTME: Synchronization configuration and validation
// ABOUTME: Immutable after construction; invalid ranges fail the manager constructor
package timesync

import (
	"encoding/binary"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ErrInvalidConfig indicates an out-of-range configuration value. It is fatal
// to SyncManager construction.
var ErrInvalidConfig = errors.New("invalid sync config")

// SyncConfig holds the tunables of the synchronization subsystem. It is
// treated as immutable once handed to NewSyncManager.
type SyncConfig struct {
	// NodeID uniquely identifies this node in the broadcast domain.
	// Zero means "derive one" (see EffectiveNodeID).
	NodeID uint32
	// SyncInterval is the self-throttled broadcast period.
	SyncInterval time.Duration
	// MaxCorrectionThresholdMicros bounds a single applied correction.
	MaxCorrectionThresholdMicros uint64
	// AccelerationFactor scales corrections in the converged regime, [0, 1].
	AccelerationFactor float64
	// DecelerationFactor scales corrections in the diverged regime, [0, 1].
	DecelerationFactor float64
	// MaxPeers caps the peer table.
	MaxPeers int
	// AdaptiveFrequency stretches the broadcast interval to 2x while converged.
	AdaptiveFrequency bool
	// PeerTimeoutCycles evicts peers unseen for this many sync intervals.
	// Zero keeps stale peers forever.
	PeerTimeoutCycles int
}

// DefaultConfig returns the stock configuration.
func DefaultConfig() SyncConfig {
	return SyncConfig{
		SyncInterval:                 2 * time.Second,
		MaxCorrectionThresholdMicros: 100000, // 100ms
		AccelerationFactor:           0.8,
		DecelerationFactor:           0.6,
		MaxPeers:                     10,
		AdaptiveFrequency:            true,
	}
}

// Validate checks all ranges.
func (c *SyncConfig) Validate() error {
	if c.AccelerationFactor < 0 || c.AccelerationFactor > 1 {
		return fmt.Errorf("%w: acceleration factor %v outside [0, 1]", ErrInvalidConfig, c.AccelerationFactor)
	}
	if c.DecelerationFactor < 0 || c.DecelerationFactor > 1 {
		return fmt.Errorf("%w: deceleration factor %v outside [0, 1]", ErrInvalidConfig, c.DecelerationFactor)
	}
	if c.MaxPeers <= 0 {
		return fmt.Errorf("%w: max peers must be positive, got %d", ErrInvalidConfig, c.MaxPeers)
	}
	if c.SyncInterval <= 0 {
		return fmt.Errorf("%w: sync interval must be positive, got %v", ErrInvalidConfig, c.SyncInterval)
	}
	if c.MaxCorrectionThresholdMicros == 0 {
		return fmt.Errorf("%w: max correction threshold must be positive", ErrInvalidConfig)
	}
	if c.PeerTimeoutCycles < 0 {
		return fmt.Errorf("%w: peer timeout cycles must not be negative, got %d", ErrInvalidConfig, c.PeerTimeoutCycles)
	}
	return nil
}

// EffectiveNodeID returns the configured node ID, deriving a random one from
// a fresh UUID when unset.
func (c *SyncConfig) EffectiveNodeID() uint32 {
	if c.NodeID != 0 {
		return c.NodeID
	}
	return DeriveNodeID()
}

// DeriveNodeID produces a random non-zero node ID.
func DeriveNodeID() uint32 {
	for {
		u := uuid.New()
		if id := binary.LittleEndian.Uint32(u[:4]); id != 0 {
			return id
		}
	}
}
