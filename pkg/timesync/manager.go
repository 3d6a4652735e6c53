// ABOUTME: Synchronization manager driving the Local Voting Protocol cycle
// ABOUTME: Owns the peer table, virtual offset, and the monotonic corrected clock
package timesync

import (
	"errors"
	"fmt"
	"log"
	"math"
	"sort"
	"sync"

	"github.com/MeshTime-Protocol/meshtime-go/pkg/protocol"
	"github.com/MeshTime-Protocol/meshtime-go/pkg/transport"
	"github.com/MeshTime-Protocol/meshtime-go/pkg/voting"
)

// Errors returned by AddPeer.
var (
	ErrPeerTableFull   = errors.New("peer table full")
	ErrDuplicateNodeID = errors.New("duplicate node id")
)

// syncState is the manager's outer and convergence state combined:
// Disabled -> Enabled(Diverged) <-> Enabled(Converged).
type syncState int

const (
	stateDisabled syncState = iota
	stateDiverged
	stateConverged
)

// SyncStats is the per-cycle diagnostic snapshot.
type SyncStats struct {
	PeerCount         int
	AvgTimeDiffMicros float64
	MinTimeDiffMicros int64
	MaxTimeDiffMicros int64
	// LastCorrectionMicros is the correction the vote computed, recorded even
	// when the applied delta was clamped to zero by the monotonicity guard.
	LastCorrectionMicros   int64
	LastWeightedDiffMicros float64
	Converged              bool
	MessagesSent           uint64
	MessagesReceived       uint64
	MalformedFrames        uint64
	DroppedObservations    uint64
}

// SyncManager orchestrates one node's participation in the Local Voting
// Protocol. It has no goroutines of its own: an external scheduler calls
// ProcessSyncCycle, and the mutex only exists so diagnostics accessors may be
// read from another goroutine (a TUI, an RPC handler) while cycles run.
type SyncManager struct {
	mu sync.Mutex

	cfg    SyncConfig
	nodeID uint32
	clock  Clock
	tr     transport.Transport

	state               syncState
	offsetMicros        int64
	lastBroadcastMicros uint64
	haveBroadcast       bool
	sequence            uint32
	peers               map[uint32]*SyncPeer

	// lastSampleMicros is the monotonicity floor: no corrected-time sample
	// may ever fall below a previously returned one.
	lastSampleMicros uint64

	lastWeightedDiff float64
	haveVote         bool

	stats SyncStats
}

// NewSyncManager validates the configuration and builds a manager around the
// given clock and transport. There is no process-wide instance: callers own
// the manager and hand it to their scheduler.
func NewSyncManager(cfg SyncConfig, clock Clock, tr transport.Transport) (*SyncManager, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if clock == nil {
		return nil, fmt.Errorf("%w: nil clock", ErrInvalidConfig)
	}
	if tr == nil {
		return nil, fmt.Errorf("%w: nil transport", ErrInvalidConfig)
	}

	return &SyncManager{
		cfg:    cfg,
		nodeID: cfg.EffectiveNodeID(),
		clock:  clock,
		tr:     tr,
		state:  stateDisabled,
		peers:  make(map[uint32]*SyncPeer, cfg.MaxPeers),
	}, nil
}

// NodeID returns the identifier this manager participates under.
func (m *SyncManager) NodeID() uint32 {
	return m.nodeID
}

// EnableSync starts synchronization. The first enabled cycle broadcasts
// immediately rather than waiting out a full interval.
func (m *SyncManager) EnableSync() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state == stateDisabled {
		m.state = stateDiverged
	}
}

// DisableSync stops cycle effects at the next call boundary. Peer state and
// the accumulated offset survive a disable/enable round trip.
func (m *SyncManager) DisableSync() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state = stateDisabled
}

// IsSyncEnabled reports whether cycles currently have any effect.
func (m *SyncManager) IsSyncEnabled() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state != stateDisabled
}

// ProcessSyncCycle runs one synchronization cycle: broadcast if the interval
// elapsed, drain inbound observations, vote, apply the correction under the
// monotonicity guard, refresh stats. No-op while disabled. Never blocks.
func (m *SyncManager) ProcessSyncCycle() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state == stateDisabled {
		return
	}

	m.maybeBroadcastLocked()
	m.drainInboundLocked()
	m.voteLocked()
	m.evictStaleLocked()
	m.refreshStatsLocked()
}

// maybeBroadcastLocked sends a SyncRequest when the broadcast interval has
// elapsed. Transmit failure is logged and retried at the next interval.
func (m *SyncManager) maybeBroadcastLocked() {
	now := m.correctedNowLocked()

	interval := uint64(m.cfg.SyncInterval.Microseconds())
	if m.cfg.AdaptiveFrequency && m.state == stateConverged {
		interval *= 2
	}

	if m.haveBroadcast && now-m.lastBroadcastMicros < interval {
		return
	}

	msg := protocol.NewSyncRequest(m.nodeID, now, m.sequence)
	if err := m.tr.SendBroadcast(msg.Encode()); err != nil {
		log.Printf("sync broadcast failed: %v", err)
	} else {
		m.sequence++
		m.stats.MessagesSent++
	}

	m.haveBroadcast = true
	m.lastBroadcastMicros = now
}

// drainInboundLocked consumes every pending frame and folds valid
// observations into the peer table.
func (m *SyncManager) drainInboundLocked() {
	for {
		frame, linkAddr, ok := m.tr.PollReceive()
		if !ok {
			return
		}

		msg, err := protocol.Decode(frame)
		if err != nil {
			m.stats.MalformedFrames++
			continue
		}

		// Broadcast media may loop our own frames back
		if msg.SourceNodeID == m.nodeID {
			continue
		}
		if msg.TargetNodeID != protocol.BroadcastNodeID && msg.TargetNodeID != m.nodeID {
			continue
		}

		m.stats.MessagesReceived++

		now := m.correctedNowLocked()
		diff := int64(msg.TimestampMicros) - int64(now)

		if peer, known := m.peers[msg.SourceNodeID]; known {
			peer.TimeDiffMicros = diff
			peer.SyncCount++
			peer.LastSeenMicros = now
			peer.LinkAddr = linkAddr
			continue
		}

		if len(m.peers) >= m.cfg.MaxPeers {
			// Table full: the observation is discarded, never an eviction
			m.stats.DroppedObservations++
			continue
		}

		peer := NewSyncPeer(msg.SourceNodeID, linkAddr)
		peer.TimeDiffMicros = diff
		peer.SyncCount = 1
		peer.LastSeenMicros = now
		m.peers[msg.SourceNodeID] = &peer
	}
}

// voteLocked runs the Local Voting Protocol over the peer table and applies
// its outcome.
func (m *SyncManager) voteLocked() {
	if len(m.peers) == 0 {
		return
	}

	observations := make([]voting.Observation, 0, len(m.peers))
	for _, peer := range m.peers {
		observations = append(observations, voting.Observation{
			NodeID:         peer.NodeID,
			TimeDiffMicros: peer.TimeDiffMicros,
			QualityScore:   peer.QualityScore,
		})
	}

	outcome := voting.Compute(observations, voting.Params{
		MaxCorrectionThresholdMicros: m.cfg.MaxCorrectionThresholdMicros,
		AccelerationFactor:           m.cfg.AccelerationFactor,
		DecelerationFactor:           m.cfg.DecelerationFactor,
	})
	if !outcome.Valid {
		return
	}

	m.lastWeightedDiff = outcome.WeightedDiffMicros
	m.haveVote = true
	m.stats.LastCorrectionMicros = outcome.CorrectionMicros
	m.stats.LastWeightedDiffMicros = outcome.WeightedDiffMicros

	for nodeID, score := range outcome.Quality {
		if peer, ok := m.peers[nodeID]; ok {
			peer.QualityScore = score
		}
	}

	m.applyCorrectionLocked(outcome.CorrectionMicros)

	if outcome.Converged {
		m.state = stateConverged
	} else {
		m.state = stateDiverged
	}
}

// applyCorrectionLocked folds a correction into the virtual offset, unless
// doing so would let the next corrected-time sample regress below the last
// one handed out. In that case the delta is skipped for this cycle; the
// computed value already landed in stats and quality bookkeeping proceeded.
func (m *SyncManager) applyCorrectionLocked(deltaMicros int64) {
	if deltaMicros == 0 {
		return
	}

	candidate := int64(m.clock.NowMicros()) + m.offsetMicros + deltaMicros
	if candidate < int64(m.lastSampleMicros) {
		return
	}

	m.offsetMicros += deltaMicros
}

// evictStaleLocked drops peers unseen for PeerTimeoutCycles sync intervals.
// Disabled when the timeout is zero.
func (m *SyncManager) evictStaleLocked() {
	if m.cfg.PeerTimeoutCycles <= 0 {
		return
	}

	timeout := uint64(m.cfg.SyncInterval.Microseconds()) * uint64(m.cfg.PeerTimeoutCycles)
	now := m.correctedNowLocked()

	for nodeID, peer := range m.peers {
		if now-peer.LastSeenMicros > timeout {
			log.Printf("evicting stale peer 0x%08x (unseen for %dus)", nodeID, now-peer.LastSeenMicros)
			delete(m.peers, nodeID)
		}
	}
}

func (m *SyncManager) refreshStatsLocked() {
	m.stats.PeerCount = len(m.peers)
	m.stats.Converged = m.state == stateConverged

	if len(m.peers) == 0 {
		m.stats.AvgTimeDiffMicros = 0
		m.stats.MinTimeDiffMicros = 0
		m.stats.MaxTimeDiffMicros = 0
		return
	}

	var sum int64
	min := int64(math.MaxInt64)
	max := int64(math.MinInt64)
	for _, peer := range m.peers {
		sum += peer.TimeDiffMicros
		if peer.TimeDiffMicros < min {
			min = peer.TimeDiffMicros
		}
		if peer.TimeDiffMicros > max {
			max = peer.TimeDiffMicros
		}
	}

	m.stats.AvgTimeDiffMicros = float64(sum) / float64(len(m.peers))
	m.stats.MinTimeDiffMicros = min
	m.stats.MaxTimeDiffMicros = max
}

// correctedNowLocked samples the corrected clock and advances the
// monotonicity floor. The floor also guards against a raw clock that stalls
// while a negative offset is pending.
func (m *SyncManager) correctedNowLocked() uint64 {
	t := int64(m.clock.NowMicros()) + m.offsetMicros
	if t < int64(m.lastSampleMicros) {
		return m.lastSampleMicros
	}
	m.lastSampleMicros = uint64(t)
	return uint64(t)
}

// CorrectedTimeMicros returns raw time plus the virtual offset. Successive
// samples are non-decreasing regardless of the corrections applied between
// them.
func (m *SyncManager) CorrectedTimeMicros() uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.correctedNowLocked()
}

// TimeOffsetMicros returns the accumulated virtual correction.
func (m *SyncManager) TimeOffsetMicros() int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.offsetMicros
}

// SyncQuality returns the mean peer quality score, or 1.0 with no peers (a
// lone node is trivially in sync with itself).
func (m *SyncManager) SyncQuality() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.peers) == 0 {
		return 1.0
	}

	var total float64
	for _, peer := range m.peers {
		total += peer.QualityScore
	}
	return total / float64(len(m.peers))
}

// IsSynchronized reports whether the last weighted peer difference is within
// the tolerance. Always false before the first vote.
func (m *SyncManager) IsSynchronized(toleranceMicros uint64) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.haveVote {
		return false
	}
	return math.Abs(m.lastWeightedDiff) <= float64(toleranceMicros)
}

// Peers returns a copy of the peer table, ordered by node ID.
func (m *SyncManager) Peers() []SyncPeer {
	m.mu.Lock()
	defer m.mu.Unlock()

	peers := make([]SyncPeer, 0, len(m.peers))
	for _, peer := range m.peers {
		peers = append(peers, *peer)
	}
	sort.Slice(peers, func(i, j int) bool { return peers[i].NodeID < peers[j].NodeID })
	return peers
}

// Stats returns the latest diagnostic snapshot.
func (m *SyncManager) Stats() SyncStats {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.stats
}

// AddPeer registers a peer explicitly, ahead of any observed traffic.
func (m *SyncManager) AddPeer(peer SyncPeer) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.peers[peer.NodeID]; exists {
		return fmt.Errorf("%w: 0x%08x", ErrDuplicateNodeID, peer.NodeID)
	}
	if len(m.peers) >= m.cfg.MaxPeers {
		return fmt.Errorf("%w: capacity %d", ErrPeerTableFull, m.cfg.MaxPeers)
	}

	peer.QualityScore = math.Max(0, math.Min(1, peer.QualityScore))
	// Count registration as a sighting so the stale-eviction policy cannot
	// drop the peer before it has a chance to be heard from.
	peer.LastSeenMicros = m.correctedNowLocked()
	m.peers[peer.NodeID] = &peer
	return nil
}
