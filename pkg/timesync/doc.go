// ABOUTME: Package doc for the synchronization manager
// ABOUTME: Describes the cycle-driven Local Voting Protocol controller

// Package timesync implements the MeshTime synchronization controller: a
// cycle-driven manager that broadcasts its corrected time, folds peer
// observations into a quality-weighted vote, and applies the resulting
// correction to a virtual clock offset that never lets corrected time run
// backwards.
//
// The manager owns no goroutines. An external scheduler calls
// ProcessSyncCycle at whatever cadence it likes; the manager self-throttles
// its broadcasts against its own interval.
package timesync
