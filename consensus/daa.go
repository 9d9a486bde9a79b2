// Package consensus implements per-fork difficulty-adjustment calculators,
// the single-header validator, and the PoW/PoS-aware difficulty and timing
// policy ("DiffChecker") the monitor runs on every runtime header.
package consensus

import (
	"errors"

	"github.com/eth2030/eclipsemon/types"
)

// Mainnet fork activation block numbers.
const (
	HomesteadBlock    = 1_150_000
	ByzantiumBlock    = 4_370_000
	ConstantinopleBlock = 5_000_000
	MuirGlacierBlock  = 9_000_000
	LondonBlock       = 12_965_000
	ArrowGlacierBlock = 13_773_000
	GrayGlacierBlock  = 15_050_000
	ParisBlock        = 15_537_394

	minimumDifficulty = 131072
	frontierDurationLimit = 13
	expDiffPeriod         = 100000
)

// ErrPoSBlock is returned when a DAA calculator or estimator is invoked for
// a block at or past the Paris transition, where difficulty is not a
// consensus quantity.
var ErrPoSBlock = errors.New("consensus: block is at or past the proof-of-stake transition")

// ErrEstimatorUnsupported is returned by the estimator for any fork rule
// before EIP-5133 (Gray Glacier), since those rules need the parent's
// uncle flag, which is not knowable before the next block exists.
var ErrEstimatorUnsupported = errors.New("consensus: difficulty estimator requires EIP-5133 (Gray Glacier) or later")

// HeaderFacts is the minimal set of header fields a DAA calculation reads.
// A real types.HeaderMgr is converted with factsOf; the estimator builds
// its synthetic "next header" as a HeaderFacts literal.
type HeaderFacts struct {
	Number     uint64
	Time       uint64
	Difficulty uint64
	HasUncle   bool
}

func factsOf(h *types.HeaderMgr) HeaderFacts {
	return HeaderFacts{
		Number:     h.Number(),
		Time:       h.Time(),
		Difficulty: h.Difficulty(),
		HasUncle:   h.HasUncle(),
	}
}

// CalcDifficulty computes the expected difficulty of current given parent,
// selecting the calculator by current.Number against the mainnet fork
// schedule. Any call at or past Paris is an error.
func CalcDifficulty(parent, current *types.HeaderMgr) (uint64, error) {
	num := current.Number()
	if num >= ParisBlock {
		return 0, ErrPoSBlock
	}
	p, c := factsOf(parent), factsOf(current)
	switch {
	case num >= ByzantiumBlock:
		return byzantiumDifficulty(p, c, true), nil
	case num >= HomesteadBlock:
		return homesteadDifficulty(p, c), nil
	default:
		return frontierDifficulty(p, c), nil
	}
}

// byzantiumDifficulty implements the Byzantium-and-later formula (deltaDivisor
// 9, considerUncle true, ice-age bomb with bomb-delay adjustment to the fake
// block number).
func byzantiumDifficulty(parent, current HeaderFacts, hasMaxCheck bool) uint64 {
	return adjustDifficulty(parent, current, 9, true, hasMaxCheck, true, bombDelayFor(current.Number))
}

// homesteadDifficulty implements the Homestead formula: deltaDivisor 10,
// uncles not considered, no bomb delay.
func homesteadDifficulty(parent, current HeaderFacts) uint64 {
	return adjustDifficulty(parent, current, 10, false, true, false, 0)
}

// bombDelayFor returns the ice-age bomb-delay constant in effect at the
// given current block number (0 before any delay was scheduled). Each fork
// that pushed the bomb back installed its own delay constant rather than
// building on the previous one, so every tier must be listed explicitly.
func bombDelayFor(currentNumber uint64) uint64 {
	switch {
	case currentNumber >= GrayGlacierBlock:
		return 11_400_000
	case currentNumber >= ArrowGlacierBlock:
		return 10_700_000
	case currentNumber >= LondonBlock:
		return 9_700_000
	case currentNumber >= MuirGlacierBlock:
		return 9_000_000
	case currentNumber >= ConstantinopleBlock:
		return 5_000_000
	case currentNumber >= ByzantiumBlock:
		return 3_000_000
	default:
		return 0
	}
}

// adjustDifficulty implements the shared Homestead/Byzantium-family
// difficulty-adjustment shape described by the spec's pseudocode.
func adjustDifficulty(parent, current HeaderFacts, deltaDivisor uint64, considerUncle, hasMaxCheck, hasBombDelay bool, bombDelay uint64) uint64 {
	deltaT := current.Time - parent.Time
	x := deltaT / deltaDivisor

	var base uint64 = 1
	if considerUncle && parent.HasUncle {
		base = 2
	}

	var reducing bool
	if x > base {
		reducing = true
		x = x - base
	} else {
		reducing = false
		x = base - x
	}
	if hasMaxCheck && reducing && x > 99 {
		x = 99
	}

	y := parent.Difficulty >> 11
	x = y * x

	var newDiff uint64
	if reducing {
		if x > parent.Difficulty {
			newDiff = 0
		} else {
			newDiff = parent.Difficulty - x
		}
	} else {
		newDiff = parent.Difficulty + x
	}
	if newDiff < minimumDifficulty {
		newDiff = minimumDifficulty
	}

	var fake uint64
	if hasBombDelay {
		if parent.Number >= bombDelay-1 {
			fake = parent.Number - (bombDelay - 1)
		} else {
			fake = 0
		}
	} else {
		fake = parent.Number + 1
	}
	period := fake / expDiffPeriod
	if period > 1 {
		newDiff += 1 << (period - 2)
	}
	return newDiff
}

// frontierDifficulty implements the original Frontier rule: adjust by
// parent.difficulty/2048, direction decided by a fixed 13-second duration
// limit (no uncle consideration, no bomb delay beyond the raw parent
// number).
func frontierDifficulty(parent, current HeaderFacts) uint64 {
	adjust := parent.Difficulty >> 11
	var newDiff uint64
	if current.Time-parent.Time < frontierDurationLimit {
		newDiff = parent.Difficulty + adjust
	} else {
		if adjust > parent.Difficulty {
			newDiff = 0
		} else {
			newDiff = parent.Difficulty - adjust
		}
	}
	if newDiff < minimumDifficulty {
		newDiff = minimumDifficulty
	}
	period := (parent.Number + 1) / expDiffPeriod
	if period > 1 {
		newDiff += 1 << (period - 2)
	}
	return newDiff
}

// GoerliDifficulty is the Clique test-net DAA stub: the calculator simply
// returns current's self-reported difficulty.
func GoerliDifficulty(parent, current *types.HeaderMgr) (uint64, error) {
	return current.Difficulty(), nil
}

// GoerliEstimate is the Clique test-net estimator stub: always 2.
func GoerliEstimate(parent *types.HeaderMgr, now uint64) (uint64, error) {
	return 2, nil
}

// EstimateDifficulty projects the next block's difficulty given only the
// current header and a candidate timestamp, for expiring stalled fork
// tips. Only supported at or after Gray Glacier (EIP-5133): earlier rules
// need the parent's uncle flag, which cannot be known before the next
// block exists. Unlike CalcDifficulty, the estimate runs with hasMaxCheck
// false: the 99-period cap on the reducing branch exists to keep a
// validated, already-mined header's jump bounded, and does not apply when
// projecting forward from a candidate timestamp that was never mined.
func EstimateDifficulty(parent *types.HeaderMgr, now uint64) (uint64, error) {
	num := parent.Number() + 1
	if num >= ParisBlock {
		return 0, ErrPoSBlock
	}
	if num < GrayGlacierBlock {
		return 0, ErrEstimatorUnsupported
	}
	p := factsOf(parent)
	synthetic := HeaderFacts{Number: num, Time: now, HasUncle: false}
	return byzantiumDifficulty(p, synthetic, false), nil
}
