// ABOUTME: Peer record for the synchronization table
// ABOUTME: Remembers the last observation and quality score per remote node
package timesync

// InitialQualityScore is the trust assigned to a newly observed peer.
const InitialQualityScore = 0.5

// SyncPeer is the remembered observation of one remote node.
type SyncPeer struct {
	// NodeID is the peer's unique identifier.
	NodeID uint32
	// LinkAddr is the transport-level address the peer was last heard from.
	// It identifies the last hop, not the peer itself: behind a relay every
	// peer reports the relay's address. Peer identity is NodeID alone.
	LinkAddr string
	// QualityScore is the consensus weight, clamped to [0, 1].
	QualityScore float64
	// TimeDiffMicros is the last observed remote-minus-local delta.
	TimeDiffMicros int64
	// SyncCount counts observations from this peer.
	SyncCount uint32
	// LastSeenMicros is the local corrected time of the last observation.
	LastSeenMicros uint64
}

// NewSyncPeer creates a peer record with the initial quality score.
func NewSyncPeer(nodeID uint32, linkAddr string) SyncPeer {
	return SyncPeer{
		NodeID:       nodeID,
		LinkAddr:     linkAddr,
		QualityScore: InitialQualityScore,
	}
}
