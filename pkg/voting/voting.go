// ABOUTME: Local Voting Protocol consensus computation
// ABOUTME: Pure weighted-average correction with convergence detection and quality scoring
package voting

import "math"

// Quality score adjustments per cycle. Rewarding good cycles faster than
// penalizing poor ones lets a recovering peer regain influence quickly.
const (
	qualityReward  = 0.1
	qualityPenalty = 0.05
)

// Observation is one peer's contribution to a voting round: the last observed
// remote-minus-local time difference, weighted by the peer's quality score.
type Observation struct {
	NodeID         uint32
	TimeDiffMicros int64
	QualityScore   float64
}

// Params are the tunables of the correction computation.
type Params struct {
	MaxCorrectionThresholdMicros uint64
	AccelerationFactor           float64
	DecelerationFactor           float64
}

// ConvergenceThresholdMicros is the boundary between the converged and
// diverged regimes: half the maximum correction threshold.
func (p Params) ConvergenceThresholdMicros() float64 {
	return float64(p.MaxCorrectionThresholdMicros) / 2
}

// Outcome is the result of one voting round.
type Outcome struct {
	// Valid is false when no observation qualified (no peer with positive
	// quality); nothing else in the outcome is meaningful then.
	Valid bool
	// WeightedDiffMicros is the quality-weighted consensus time difference.
	WeightedDiffMicros float64
	// CorrectionMicros is the final correction, clamped to the threshold.
	CorrectionMicros int64
	// Converged reports whether the weighted difference is within the
	// convergence threshold.
	Converged bool
	// Quality holds the updated score for every contributing peer.
	Quality map[uint32]float64
}

// Compute runs one round of the Local Voting Protocol over a snapshot of peer
// observations. It is pure: no I/O, no state retained between calls.
//
// When the consensus is already near (converged regime) the acceleration
// factor drives fine corrections quickly; when it is far, the deceleration
// factor damps the step so a single noisy peer cannot cause oscillation.
func Compute(observations []Observation, p Params) Outcome {
	var weightedSum, totalWeight float64
	for _, obs := range observations {
		if obs.QualityScore <= 0 {
			continue
		}
		weightedSum += float64(obs.TimeDiffMicros) * obs.QualityScore
		totalWeight += obs.QualityScore
	}

	if totalWeight <= 0 {
		return Outcome{}
	}

	weightedDiff := weightedSum / totalWeight
	threshold := p.ConvergenceThresholdMicros()
	converged := math.Abs(weightedDiff) <= threshold

	factor := p.DecelerationFactor
	if converged {
		factor = p.AccelerationFactor
	}

	correction := clampCorrection(weightedDiff*factor, p.MaxCorrectionThresholdMicros)

	// A "good" cycle rewards every contributor, a poor one penalizes them;
	// scores stay clamped to [0, 1].
	goodCycle := math.Abs(float64(correction)) < threshold
	quality := make(map[uint32]float64, len(observations))
	for _, obs := range observations {
		if obs.QualityScore <= 0 {
			continue
		}
		if goodCycle {
			quality[obs.NodeID] = math.Min(obs.QualityScore+qualityReward, 1.0)
		} else {
			quality[obs.NodeID] = math.Max(obs.QualityScore-qualityPenalty, 0.0)
		}
	}

	return Outcome{
		Valid:              true,
		WeightedDiffMicros: weightedDiff,
		CorrectionMicros:   correction,
		Converged:          converged,
		Quality:            quality,
	}
}

func clampCorrection(raw float64, maxMicros uint64) int64 {
	limit := float64(maxMicros)
	if raw > limit {
		return int64(limit)
	}
	if raw < -limit {
		return int64(-limit)
	}
	return int64(raw)
}
