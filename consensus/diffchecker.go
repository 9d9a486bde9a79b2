package consensus

import (
	"sync/atomic"

	"github.com/eth2030/eclipsemon/types"
)

// DiffChecker is the PoW/PoS-aware difficulty and timing policy the
// monitor runs on every runtime header. minDiff is recomputed on every
// checkpoint roll from the completed window's difficulty median.
type DiffChecker struct {
	minDiffPercent uint8 // fixed-point numerator against 128
	maxWaitTime    uint64
	minDiff        atomic.Uint64
}

// NewDiffChecker creates a DiffChecker with the given liveness bound and
// minimum-difficulty percentage (numerator over 128).
func NewDiffChecker(minDiffPercent uint8, maxWaitTime uint64) *DiffChecker {
	return &DiffChecker{minDiffPercent: minDiffPercent, maxWaitTime: maxWaitTime}
}

// OnChkptUpd recomputes minDiff from the just-completed checkpoint
// window's difficulty median: minDiff = (median >> 7) * minDiffPercent.
func (d *DiffChecker) OnChkptUpd(median uint64) {
	d.minDiff.Store((median >> 7) * uint64(d.minDiffPercent))
}

// MinDiff returns the current minimum-difficulty floor.
func (d *DiffChecker) MinDiff() uint64 { return d.minDiff.Load() }

// isPoS reports whether blockNumber is at or past the Paris transition,
// where these checks degrade to always-true.
func isPoS(blockNumber uint64) bool { return blockNumber >= ParisBlock }

// CheckDifficulty validates a newly-attached header against its parent:
// strictly increasing trusted time, within maxWaitTime of the parent, and
// difficulty at or above the current floor. Always true at or past Paris.
func (d *DiffChecker) CheckDifficulty(parent, current *types.HeaderMgr) bool {
	if isPoS(current.Number()) {
		return true
	}
	if current.TrustedTime() <= parent.TrustedTime() {
		return false
	}
	if current.TrustedTime()-parent.TrustedTime() > d.maxWaitTime {
		return false
	}
	return current.Difficulty() >= d.minDiff.Load()
}

// CheckEstDifficulty projects whether a fork tip is still viable: true iff
// now is within maxWaitTime of the tip's trusted time and the difficulty
// estimator, applied to a synthetic header at time now, is still at or
// above the floor. Used to expire stalled active tips. Always true at or
// past Paris.
func (d *DiffChecker) CheckEstDifficulty(parent *types.HeaderMgr, now uint64) bool {
	if isPoS(parent.Number() + 1) {
		return true
	}
	if now-parent.TrustedTime() > d.maxWaitTime {
		return false
	}
	est, err := EstimateDifficulty(parent, now)
	if err != nil {
		return false
	}
	return est >= d.minDiff.Load()
}
